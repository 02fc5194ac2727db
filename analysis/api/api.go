package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/basexlabs/basex-oracle/integration/pkg/api/middleware"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

// Analyzer produces analysis payloads and video metadata.
type Analyzer interface {
	Analyze(ctx context.Context, videoID string) (string, error)
	GetVideo(ctx context.Context, videoID string) (protocol.Video, error)
}

// ChainReader exposes the connected networks.
type ChainReader interface {
	Networks() []string
	GetAccessor(network string) (protocol.ChainAccessor, bool)
}

// Params configures the analysis HTTP API.
type Params struct {
	Lggr     logger.Logger
	Analyzer Analyzer
	// Chains is optional. Without it every network is reported as not supported.
	Chains          ChainReader
	HealthReporters []protocol.HealthReporter
	Metrics         middleware.HTTPMetrics
	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
	// AnalyzeRateLimit limits POST /analyze-video per client. The zero value disables it.
	AnalyzeRateLimit limiter.Rate
}

// API serves the analysis routes.
type API struct {
	lggr     logger.Logger
	analyzer Analyzer
	chains   ChainReader
}

func NewHTTPAPI(p Params) (*gin.Engine, error) {
	var errs []error
	appendIfNil := func(field any, fieldName string) {
		if field == nil {
			errs = append(errs, fmt.Errorf("%s is not set", fieldName))
		}
	}
	appendIfNil(p.Lggr, "logger")
	appendIfNil(p.Analyzer, "analyzer")
	appendIfNil(p.Metrics, "metrics")
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	lggr := logger.Named(p.Lggr, "AnalysisAPI")
	a := &API{lggr: lggr, analyzer: p.Analyzer, chains: p.Chains}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.SecureRecovery(lggr),
		middleware.ActiveRequests(p.Metrics, lggr),
	)
	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Not found")
	})

	healthHandler := &healthStatus{healthReporters: p.HealthReporters}
	router.GET("/health/live", healthHandler.handleLiveness)
	router.GET("/health/ready", healthHandler.handleReadiness)
	router.GET("/health", healthHandler.handleReadiness)
	if p.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(p.MetricsHandler))
	}

	router.POST("/analyze-video", middleware.RateLimit(lggr, p.AnalyzeRateLimit), a.handleAnalyzeVideo)
	router.GET("/video/:videoId", a.handleGetVideo)
	router.GET("/analysis/:videoId/:network", a.handleGetAnalysis)
	router.POST("/analysis/:videoId/:network/request", a.handleRequestAnalysis)

	return router, nil
}

func (a *API) networks() []string {
	if a.chains == nil {
		return nil
	}
	return a.chains.Networks()
}

func (a *API) chain(network string) (protocol.ChainAccessor, bool) {
	if a.chains == nil {
		return nil, false
	}
	return a.chains.GetAccessor(network)
}
