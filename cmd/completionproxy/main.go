package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/basexlabs/basex-oracle/bootstrap"
	"github.com/basexlabs/basex-oracle/completionproxy"
	"github.com/basexlabs/basex-oracle/integration/pkg/api/monitoring"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "completionproxy: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := bootstrap.LoadEnvFiles(); err != nil {
		return err
	}
	lggr, err := bootstrap.NewLogger("completionproxy", os.Getenv(bootstrap.LogLevelEnv), os.Getenv(bootstrap.LogFormatEnv))
	if err != nil {
		return err
	}

	cfg, err := completionproxy.LoadConfig(os.Getenv)
	if err != nil {
		lggr.Errorw("Failed to load configuration", "error", err)
		return err
	}
	if !cfg.Configured() {
		lggr.Warnw("Provider is not configured, every request will fail",
			"providerURLVar", completionproxy.ProviderURLEnvVar,
			"apiKeyVar", completionproxy.APIKeyEnvVar,
		)
	}

	httpMonitoring, err := monitoring.InitHTTPMonitoring("basex_completion_proxy")
	if err != nil {
		return fmt.Errorf("failed to initialize monitoring: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	proxy := completionproxy.NewProxy(lggr, cfg, nil)
	router := completionproxy.NewRouter(lggr, proxy, httpMonitoring, httpMonitoring.Handler())
	server := bootstrap.NewHTTPServer(lggr, "CompletionProxy", cfg.Port, router)

	lggr.Infow("Completion proxy configured", "port", cfg.Port, "providerURL", cfg.ProviderURL)
	return bootstrap.Run(context.Background(), lggr, server)
}
