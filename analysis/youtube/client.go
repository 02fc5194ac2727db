package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"
	DefaultTimeout = 10 * time.Second
	videosPath     = "/videos"
	videoParts     = "snippet,statistics"
	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

var errMissingAPIKey = fmt.Errorf("%w: YouTube API key is not set", protocol.ErrConfiguration)

// Config configures the YouTube Data API client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RequestsPerSecond limits outgoing calls. Zero disables rate limiting.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client fetches video metadata from the YouTube Data API v3.
type Client struct {
	lggr       logger.Logger
	baseURL    *url.URL
	apiKey     string
	timeout    time.Duration
	limiter    *rate.Limiter
	httpClient *http.Client
}

var _ protocol.VideoSource = (*Client)(nil)

func NewClient(lggr logger.Logger, cfg Config) (*Client, error) {
	if lggr == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, errMissingAPIKey
	}
	rawURL := cfg.BaseURL
	if rawURL == "" {
		rawURL = DefaultBaseURL
	}
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid YouTube API url %q: %w", protocol.ErrConfiguration, rawURL, err)
	}

	c := &Client{
		lggr:       logger.Named(lggr, "YouTubeClient"),
		baseURL:    u,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
	// The API reports counters as decimal strings.
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetVideo returns the snippet and statistics of videoID.
func (c *Client) GetVideo(ctx context.Context, videoID string) (protocol.Video, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return protocol.Video{}, fmt.Errorf("%w: YouTube API rate limiter: %w", protocol.ErrUpstreamAPI, err)
		}
	}

	requestURL := c.baseURL.JoinPath(videosPath)
	q := requestURL.Query()
	q.Set("id", videoID)
	q.Set("part", videoParts)
	q.Set("key", c.apiKey)
	requestURL.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return protocol.Video{}, fmt.Errorf("failed to build YouTube request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return protocol.Video{}, fmt.Errorf("%w: failed to fetch YouTube data: %w", protocol.ErrUpstreamAPI, err)
	}
	//nolint:errcheck // closing body, error can be ignored here
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return protocol.Video{}, fmt.Errorf("%w: failed to read YouTube response: %w", protocol.ErrUpstreamAPI, err)
	}
	c.lggr.Debugw("Response from YouTube API", "videoID", videoID, "status", res.StatusCode)

	if res.StatusCode == http.StatusNotFound {
		return protocol.Video{}, fmt.Errorf("%w: %s", protocol.ErrVideoNotFound, videoID)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		var apiErr errorResponse
		msg := http.StatusText(res.StatusCode)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return protocol.Video{}, fmt.Errorf("%w: YouTube API error (status %d): %s", protocol.ErrUpstreamAPI, res.StatusCode, msg)
	}

	var list videoListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return protocol.Video{}, fmt.Errorf("%w: malformed YouTube response: %w", protocol.ErrUpstreamAPI, err)
	}
	if len(list.Items) == 0 {
		return protocol.Video{}, fmt.Errorf("%w: %s", protocol.ErrVideoNotFound, videoID)
	}
	return toVideo(list.Items[0])
}

func toVideo(item videoItem) (protocol.Video, error) {
	v := protocol.Video{
		ID:           item.ID,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		ChannelTitle: item.Snippet.ChannelTitle,
	}
	if item.Snippet.PublishedAt != "" {
		t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil {
			return protocol.Video{}, fmt.Errorf("%w: invalid publishedAt %q", protocol.ErrUpstreamAPI, item.Snippet.PublishedAt)
		}
		v.PublishedAt = t
	}

	var errs []error
	parseCount := func(raw, field string) uint64 {
		if raw == "" {
			return 0
		}
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q", field, raw))
		}
		return n
	}
	v.ViewCount = parseCount(item.Statistics.ViewCount, "viewCount")
	v.LikeCount = parseCount(item.Statistics.LikeCount, "likeCount")
	v.CommentCount = parseCount(item.Statistics.CommentCount, "commentCount")
	if len(errs) > 0 {
		return protocol.Video{}, fmt.Errorf("%w: %w", protocol.ErrUpstreamAPI, errors.Join(errs...))
	}
	return v, nil
}
