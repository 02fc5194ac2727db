package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/basexlabs/basex-oracle/analysis"
	"github.com/basexlabs/basex-oracle/analysis/api"
	"github.com/basexlabs/basex-oracle/analysis/cache"
	"github.com/basexlabs/basex-oracle/analysis/completion"
	"github.com/basexlabs/basex-oracle/analysis/youtube"
	"github.com/basexlabs/basex-oracle/bootstrap"
	"github.com/basexlabs/basex-oracle/integration/pkg/accessors"
	"github.com/basexlabs/basex-oracle/integration/pkg/accessors/evm"
	"github.com/basexlabs/basex-oracle/integration/pkg/api/monitoring"
	"github.com/basexlabs/basex-oracle/integration/pkg/chainconn"
	"github.com/basexlabs/basex-oracle/integration/pkg/registry"
	"github.com/basexlabs/basex-oracle/oracle"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

const redisDialTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "analysis: %v\n", err)
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
	cfg, err := analysis.LoadConfig(os.Getenv)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	//
	// Initialize logger
	// ------------------------------------------------------------------------------------------------
	lggr, err := bootstrap.NewLogger("analysis", cfg.LogLevel, os.Getenv(bootstrap.LogFormatEnv))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		lggr.Errorw("Failed to validate configuration", "error", err)
		return err
	}

	if _, err := bootstrap.StartProfiling("basex-analysis", cfg.PyroscopeURL); err != nil {
		lggr.Errorw("Failed to start pyroscope", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	//
	// Initialize analysis components
	// ------------------------------------------------------------------------------------------------
	videos, err := youtube.NewClient(lggr, youtube.Config{
		BaseURL:           cfg.YouTubeAPIURL,
		APIKey:            cfg.YouTubeAPIKey,
		RequestsPerSecond: cfg.YouTubeRPS,
	})
	if err != nil {
		return fmt.Errorf("failed to create YouTube client: %w", err)
	}

	store := newStore(ctx, lggr, cfg)
	defer func() {
		if err := store.Close(); err != nil {
			lggr.Errorw("Failed to close cache store", "error", err)
		}
	}()
	cachedVideos, err := cache.NewCachedVideoSource(lggr, store, videos, cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("failed to create video cache: %w", err)
	}

	completer, err := completion.NewClient(lggr, completion.Config{
		URL:   cfg.CompletionURL,
		Model: cfg.CompletionModel,
	})
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}

	service, err := analysis.NewService(lggr, cachedVideos, completer)
	if err != nil {
		return fmt.Errorf("failed to create analysis service: %w", err)
	}

	//
	// Connect networks for the result routes
	// ------------------------------------------------------------------------------------------------
	chains, reporters, closeChains := connectChains(ctx, lggr)
	defer closeChains()

	//
	// Serve the HTTP API
	// ------------------------------------------------------------------------------------------------
	httpMonitoring, err := monitoring.InitHTTPMonitoring("basex_analysis")
	if err != nil {
		return fmt.Errorf("failed to initialize monitoring: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := api.NewHTTPAPI(api.Params{
		Lggr:             lggr,
		Analyzer:         service,
		Chains:           chains,
		HealthReporters:  reporters,
		Metrics:          httpMonitoring,
		MetricsHandler:   httpMonitoring.Handler(),
		AnalyzeRateLimit: cfg.AnalyzeRateLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP API: %w", err)
	}
	server := bootstrap.NewHTTPServer(lggr, "AnalysisServer", cfg.Port, router)

	return bootstrap.Run(ctx, lggr, server)
}

// newStore uses Redis when REDIS_URL is set and reachable, otherwise an in-process cache.
func newStore(ctx context.Context, lggr logger.Logger, cfg analysis.Config) cache.Store {
	if cfg.RedisURL == "" {
		lggr.Infow("REDIS_URL not set, using in-memory cache")
		return cache.NewMemoryStore(cache.DefaultMemoryEntries, cfg.CacheTTL)
	}
	dialCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	store, err := cache.NewRedisStore(dialCtx, cfg.RedisURL)
	if err != nil {
		lggr.Warnw("Redis unavailable, using in-memory cache", "error", err)
		return cache.NewMemoryStore(cache.DefaultMemoryEntries, cfg.CacheTTL)
	}
	lggr.Infow("Using Redis cache")
	return store
}

// connectChains builds accessors for the configured networks. Without PRIVATE_KEY the
// connections are read-only and the request route answers 503.
func connectChains(ctx context.Context, lggr logger.Logger) (*accessors.Registry, []protocol.HealthReporter, func()) {
	chains := accessors.NewRegistry()
	netCfg := oracle.NewDefaultConfiguration()
	if err := netCfg.ApplyEnv(os.Getenv); err != nil {
		lggr.Warnw("Invalid network configuration, chain routes disabled", "error", err)
		return chains, nil, func() {}
	}

	key, err := chainconn.ParsePrivateKey(netCfg.PrivateKey)
	if err != nil {
		if netCfg.PrivateKey != "" {
			lggr.Warnw("Invalid PRIVATE_KEY, connecting read-only", "error", err)
		}
		key = nil
	}

	networks, err := registry.Connect(ctx, registry.Params{
		Lggr:         lggr,
		Networks:     netCfg.Networks,
		Key:          key,
		ProbeTimeout: netCfg.GetProbeTimeout(),
	})
	if err != nil {
		lggr.Warnw("Failed to connect networks, chain routes disabled", "error", err)
		return chains, nil, func() {}
	}

	factory := evm.NewFactory(lggr, evm.Options{
		GasLimit:            netCfg.GasLimit,
		ConfirmationTimeout: netCfg.GetConfirmationTimeout(),
		PollInterval:        netCfg.GetPollInterval(),
		CacheExpiry:         netCfg.GetReaderCacheExpiry(),
	})
	if err := chains.Build(ctx, lggr, networks.Connections(), factory); err != nil {
		lggr.Warnw("Failed to build chain accessors", "error", err)
	}
	return chains, []protocol.HealthReporter{networks}, networks.Close
}
