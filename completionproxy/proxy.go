package completionproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/basexlabs/basex-oracle/integration/pkg/api/middleware"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

const (
	CompletionsPath = "/v1/chat/completions"
	// logBodyLimit is how many bytes of a request body are logged.
	logBodyLimit = 1000
)

var errNotConfigured = fmt.Errorf("%s and %s are not set", ProviderURLEnvVar, APIKeyEnvVar)

// Proxy forwards chat completion requests to the configured provider.
type Proxy struct {
	lggr       logger.Logger
	cfg        Config
	httpClient *http.Client
}

func NewProxy(lggr logger.Logger, cfg Config, httpClient *http.Client) *Proxy {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Proxy{lggr: logger.Named(lggr, "CompletionProxy"), cfg: cfg, httpClient: httpClient}
}

// NewRouter serves the proxy route, liveness and, when metricsHandler is set, /metrics.
func NewRouter(lggr logger.Logger, p *Proxy, metrics middleware.HTTPMetrics, metricsHandler http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.SecureRecovery(lggr),
		middleware.ActiveRequests(metrics, lggr),
	)
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	})
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}
	router.POST(CompletionsPath, p.Handle)
	return router
}

// Handle relays the request body to the provider and the provider's answer back unchanged.
func (p *Proxy) Handle(c *gin.Context) {
	requestID := middleware.RequestIDFrom(c)

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}
	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	p.lggr.Infow("Incoming completion request",
		"requestID", requestID,
		"headers", headerNames(c.Request.Header),
		"body", truncate(body, logBodyLimit),
	)

	status, contentType, respBody, err := p.forward(c.Request.Context(), body)
	if err != nil {
		p.lggr.Errorw("Forward failed", "requestID", requestID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Proxy failed to forward request", "message": err.Error()})
		return
	}

	p.lggr.Infow("Provider responded", "requestID", requestID, "status", status)
	if status < 200 || status > 299 {
		p.lggr.Warnw("Provider returned an error", "requestID", requestID, "status", status, "body", truncate(respBody, logBodyLimit))
	}
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(status, contentType, respBody)
}

func (p *Proxy) forward(ctx context.Context, body []byte) (int, string, []byte, error) {
	if !p.cfg.Configured() {
		return 0, "", nil, errNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.ProviderURL, bytes.NewReader(body))
	if err != nil {
		return 0, "", nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(req)
	if err != nil {
		return 0, "", nil, err
	}
	//nolint:errcheck // closing body, error can be ignored here
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, "", nil, fmt.Errorf("failed to read provider response: %w", err)
	}
	return res.StatusCode, res.Header.Get("Content-Type"), respBody, nil
}

func headerNames(h http.Header) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
