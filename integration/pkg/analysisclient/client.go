package analysisclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

const (
	// DefaultTimeout bounds a single analysis call when none is configured.
	DefaultTimeout = 60 * time.Second
	// maxCoolDownDuration defines the maximum duration we can wait till firing the next request.
	maxCoolDownDuration = 10 * time.Minute
	analyzePath         = "/analyze-video"
	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

var (
	ErrRateLimit = fmt.Errorf("%w: analysis API is being rate limited", protocol.ErrUpstreamAPI)
	ErrTimeout   = fmt.Errorf("%w: analysis API timed out", protocol.ErrUpstreamAPI)
)

// APIError is returned when the analysis endpoint answers with a non-2xx status or success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("analysis API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("analysis API returned status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return protocol.ErrUpstreamAPI
}

type analyzeRequest struct {
	VideoID string `json:"videoId"`
}

type analyzeResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
	Error   string `json:"error"`
}

// Config configures the analysis client.
type Config struct {
	// BaseURL is the analysis endpoint root, e.g. http://localhost:3000.
	BaseURL string
	Timeout time.Duration
	// Interval is the minimum spacing between calls. Zero disables self rate limiting.
	Interval time.Duration
	// CoolDown is used after a 429 that carries no Retry-After header.
	CoolDown   time.Duration
	HTTPClient *http.Client
}

// Client calls the local analysis endpoint. It encapsulates all the details specific to the HTTP interactions:
// - rate limiting
// - cool down period
// - parsing JSON response and handling errors
type Client struct {
	lggr       logger.Logger
	apiURL     *url.URL
	apiTimeout time.Duration
	rate       *rate.Limiter
	httpClient *http.Client
	// coolDownDuration defines the time to wait after getting rate limited.
	// this value is only used if the 429 response does not contain the Retry-After header
	coolDownDuration time.Duration
	// coolDownUntil defines whether requests are blocked or not.
	coolDownUntil time.Time
	coolDownMu    sync.RWMutex
}

var _ protocol.AnalysisAPI = (*Client)(nil)

// New creates a Client for cfg.BaseURL.
func New(lggr logger.Logger, cfg Config) (*Client, error) {
	if lggr == nil {
		return nil, errors.New("logger cannot be nil")
	}
	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid analysis API url %q: %w", protocol.ErrConfiguration, cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: analysis API url %q must be http or https", protocol.ErrConfiguration, cfg.BaseURL)
	}

	c := &Client{
		lggr:             logger.Named(lggr, "AnalysisClient"),
		apiURL:           u,
		apiTimeout:       cfg.Timeout,
		httpClient:       cfg.HTTPClient,
		coolDownDuration: cfg.CoolDown,
	}
	if c.apiTimeout <= 0 {
		c.apiTimeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if cfg.Interval > 0 {
		c.rate = rate.NewLimiter(rate.Every(cfg.Interval), 1)
	}
	return c, nil
}

// RequestAnalysis posts videoID to /analyze-video and returns the "<metadata>|<score>" payload.
func (c *Client) RequestAnalysis(ctx context.Context, videoID string) (string, error) {
	body, err := json.Marshal(analyzeRequest{VideoID: videoID})
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis request: %w", err)
	}

	requestURL := *c.apiURL
	requestURL.Path = path.Join(requestURL.Path, analyzePath)

	payload, status, err := c.callAPI(ctx, requestURL, body)
	c.lggr.Debugw(
		"Response from analysis API",
		"requestURL", requestURL.String(),
		"videoID", videoID,
		"status", status,
		"err", err,
	)
	if err != nil {
		return "", err
	}

	var resp analyzeResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", &APIError{StatusCode: status, Message: "malformed response: " + err.Error()}
	}
	if status < 200 || status > 299 || !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = http.StatusText(status)
		}
		return "", &APIError{StatusCode: status, Message: msg}
	}
	return resp.Data, nil
}

func (c *Client) callAPI(ctx context.Context, u url.URL, body []byte) ([]byte, int, error) {
	// Terminate immediately when rate limited
	if coolDown, duration := c.inCoolDownPeriod(); coolDown {
		c.lggr.Errorw("Rate limited by analysis API, dropping request", "coolDownDuration", duration)
		return nil, http.StatusTooManyRequests, ErrRateLimit
	}

	if c.rate != nil {
		if waitErr := c.rate.Wait(ctx); waitErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, 0, fmt.Errorf("analysis request abandoned while waiting for rate limiter: %w", ctxErr)
			}
			c.lggr.Warnw("Self rate-limited, sending too many requests to the analysis API")
			return nil, http.StatusTooManyRequests, ErrRateLimit
		}
	}

	timeoutCtx, cancel := context.WithTimeoutCause(ctx, c.apiTimeout, ErrTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(context.Cause(timeoutCtx), ErrTimeout) {
			return nil, http.StatusRequestTimeout, ErrTimeout
		}
		// On error, res is nil in most cases, do not read res.StatusCode
		return nil, http.StatusBadGateway, fmt.Errorf("%w: analysis API unreachable: %w", protocol.ErrUpstreamAPI, err)
	}
	//nolint:errcheck // closing body, error can be ignored here
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		c.setCoolDownPeriod(res.Header)
		return nil, res.StatusCode, ErrRateLimit
	}

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, res.StatusCode, fmt.Errorf("%w: failed to read analysis response: %w", protocol.ErrUpstreamAPI, err)
	}
	return payload, res.StatusCode, nil
}

func (c *Client) setCoolDownPeriod(headers http.Header) {
	coolDownDuration := c.coolDownDuration
	if retryAfter := headers.Get("Retry-After"); retryAfter != "" {
		if retryAfterSec, errParseInt := strconv.ParseInt(retryAfter, 10, 64); errParseInt == nil {
			coolDownDuration = time.Duration(retryAfterSec) * time.Second
		} else if parsedTime, err := time.Parse(time.RFC1123, retryAfter); err == nil {
			coolDownDuration = time.Until(parsedTime)
		}
	}
	coolDownDuration = min(coolDownDuration, maxCoolDownDuration)
	c.lggr.Errorw("Rate limited by the analysis API, setting cool down", "coolDownDuration", coolDownDuration)

	c.coolDownMu.Lock()
	defer c.coolDownMu.Unlock()
	c.coolDownUntil = time.Now().Add(coolDownDuration)
}

func (c *Client) inCoolDownPeriod() (bool, time.Duration) {
	c.coolDownMu.RLock()
	defer c.coolDownMu.RUnlock()
	return time.Now().Before(c.coolDownUntil), time.Until(c.coolDownUntil)
}
