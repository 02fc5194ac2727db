package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

const (
	Path               = "/v1/chat/completions"
	DefaultURL         = "http://localhost:4567" + Path
	DefaultModel       = "mixtral-8x7b-32768"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 50
	DefaultTimeout     = 30 * time.Second
	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is an OpenAI-style chat completion request body.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type response struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Config configures the completion client. Zero values select the defaults.
type Config struct {
	URL         string
	Model       string
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client calls an OpenAI-compatible /v1/chat/completions endpoint.
type Client struct {
	lggr        logger.Logger
	url         string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	httpClient  *http.Client
}

func NewClient(lggr logger.Logger, cfg Config) (*Client, error) {
	if lggr == nil {
		return nil, errors.New("logger cannot be nil")
	}
	rawURL := cfg.URL
	if rawURL == "" {
		rawURL = DefaultURL
	}
	u, err := url.ParseRequestURI(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid completion url %q", protocol.ErrConfiguration, rawURL)
	}

	c := &Client{
		lggr:        logger.Named(lggr, "CompletionClient"),
		url:         u.String(),
		model:       cfg.Model,
		temperature: DefaultTemperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		httpClient:  cfg.HTTPClient,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if cfg.Temperature != nil {
		c.temperature = *cfg.Temperature
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	return c, nil
}

// Complete sends messages and returns the trimmed content of the first choice.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(Request{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get AI analysis: %w", protocol.ErrUpstreamAPI, err)
	}
	//nolint:errcheck // closing body, error can be ignored here
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read completion response: %w", protocol.ErrUpstreamAPI, err)
	}
	c.lggr.Debugw("Response from completion API", "status", res.StatusCode, "duration", time.Since(start))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := http.StatusText(res.StatusCode)
		var apiErr errorResponse
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return "", fmt.Errorf("%w: completion API error (status %d): %s", protocol.ErrUpstreamAPI, res.StatusCode, msg)
	}

	var resp response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", fmt.Errorf("%w: malformed completion response: %w", protocol.ErrUpstreamAPI, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: invalid AI response format", protocol.ErrUpstreamAPI)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
