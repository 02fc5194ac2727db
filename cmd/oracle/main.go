package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/basexlabs/basex-oracle/bootstrap"
	"github.com/basexlabs/basex-oracle/integration/pkg/accessors"
	"github.com/basexlabs/basex-oracle/integration/pkg/accessors/evm"
	"github.com/basexlabs/basex-oracle/integration/pkg/analysisclient"
	"github.com/basexlabs/basex-oracle/integration/pkg/chainconn"
	"github.com/basexlabs/basex-oracle/integration/pkg/registry"
	"github.com/basexlabs/basex-oracle/oracle"
	"github.com/basexlabs/basex-oracle/oracle/pkg/monitoring"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/basexlabs/basex-oracle/protocol/common/health"
)

const configPathEnvVar = "ORACLE_CONFIG_PATH"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "oracle: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	//
	// Load configuration
	// ------------------------------------------------------------------------------------------------
	if err := bootstrap.LoadEnvFiles(); err != nil {
		return err
	}
	var configPath string
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	if envConfig := os.Getenv(configPathEnvVar); envConfig != "" {
		configPath = envConfig
	}

	cfg, err := oracle.LoadConfiguration(configPath, os.Getenv)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	//
	// Initialize logger
	// ------------------------------------------------------------------------------------------------
	lggr, err := bootstrap.NewLogger("oracle", cfg.LogLevel, os.Getenv(bootstrap.LogFormatEnv))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		lggr.Errorw("Failed to validate configuration", "path", configPath, "error", err)
		return err
	}
	lggr.Infow("Oracle configuration", "config", cfg.String())

	if _, err := bootstrap.StartProfiling("basex-oracle", cfg.PyroscopeURL); err != nil {
		lggr.Errorw("Failed to start pyroscope", "error", err)
	}

	//
	// Setup monitoring
	// ------------------------------------------------------------------------------------------------
	oracleMonitoring, err := monitoring.InitMonitoring()
	if err != nil {
		return fmt.Errorf("failed to initialize monitoring: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	//
	// Connect networks
	// ------------------------------------------------------------------------------------------------
	key, err := chainconn.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("%w: %w", protocol.ErrConfiguration, err)
	}

	networks, err := registry.Connect(ctx, registry.Params{
		Lggr:         lggr,
		Networks:     cfg.Networks,
		Key:          key,
		ProbeTimeout: cfg.GetProbeTimeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to create network registry: %w", err)
	}
	defer networks.Close()

	chains := accessors.NewRegistry()
	factory := evm.NewFactory(lggr, evm.Options{
		GasLimit:            cfg.GasLimit,
		ConfirmationTimeout: cfg.GetConfirmationTimeout(),
		PollInterval:        cfg.GetPollInterval(),
		CacheExpiry:         cfg.GetReaderCacheExpiry(),
		Observer:            oracle.NewMetricsObserver(lggr, oracleMonitoring),
	})
	if err := chains.Build(ctx, lggr, networks.Connections(), factory); err != nil {
		return fmt.Errorf("failed to build chain accessors: %w", err)
	}

	//
	// Initialize oracle components
	// ------------------------------------------------------------------------------------------------
	analysisClient, err := analysisclient.New(lggr, analysisclient.Config{
		BaseURL:  cfg.AnalysisAPIURL,
		Timeout:  cfg.GetAnalysisTimeout(),
		Interval: cfg.GetAnalysisInterval(),
	})
	if err != nil {
		return fmt.Errorf("failed to create analysis client: %w", err)
	}

	contracts := func(network string) (protocol.OracleContract, bool) {
		accessor, ok := chains.GetAccessor(network)
		if !ok {
			return nil, false
		}
		return accessor, true
	}
	processor, err := oracle.NewRequestProcessor(lggr, analysisClient, contracts, oracleMonitoring, cfg.GetSkipFulfilled())
	if err != nil {
		return fmt.Errorf("failed to create request processor: %w", err)
	}

	sources := make(map[string]protocol.RequestSource)
	for _, network := range chains.Networks() {
		accessor, _ := chains.GetAccessor(network)
		sources[network] = accessor.RequestSource()
	}
	relay, err := oracle.NewRelay(oracle.RelayParams{
		Lggr:              lggr,
		Sources:           sources,
		Processor:         processor,
		Monitoring:        oracleMonitoring,
		WorkersPerNetwork: cfg.GetWorkersPerNetwork(),
		ResubscribeDelay:  cfg.GetResubscribeDelay(),
	})
	if err != nil {
		return fmt.Errorf("failed to create relay: %w", err)
	}

	//
	// Serve metrics and health
	// ------------------------------------------------------------------------------------------------
	mux := http.NewServeMux()
	mux.Handle("/metrics", oracleMonitoring.Handler())
	mux.Handle("/health", health.ReadinessHandler(networks, relay))
	metricsServer := bootstrap.NewHTTPServer(lggr, "MetricsServer", cfg.MetricsPort, mux)

	//
	// Run until signalled
	// ------------------------------------------------------------------------------------------------
	lggr.Infow("Oracle started", "networks", chains.Networks(), "failed", networks.Failures())
	return bootstrap.Run(ctx, lggr, metricsServer, relay)
}
