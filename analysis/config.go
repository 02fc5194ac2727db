package analysis

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/ulule/limiter/v3"

	"github.com/basexlabs/basex-oracle/analysis/completion"
	"github.com/basexlabs/basex-oracle/protocol"
)

const (
	PortEnvVar             = "PORT"
	YouTubeAPIKeyEnvVar    = "YOUTUBE_API_KEY"
	YouTubeAPIURLEnvVar    = "YOUTUBE_API_URL"
	YouTubeRPSEnvVar       = "YOUTUBE_REQUESTS_PER_SECOND"
	RedisURLEnvVar         = "REDIS_URL"
	CompletionURLEnvVar    = "COMPLETION_URL"
	CompletionModelEnvVar  = "COMPLETION_MODEL"
	CacheTTLEnvVar         = "CACHE_TTL"
	AnalyzeRateLimitEnvVar = "ANALYZE_RATE_LIMIT"
	PyroscopeURLEnvVar     = "PYROSCOPE_URL"
	LogLevelEnvVar         = "LOG_LEVEL"

	DefaultPort          = 3000
	DefaultCompletionURL = "http://localhost:4567"
)

// Config configures the analysis service. It is read from the environment only.
type Config struct {
	Port             int
	YouTubeAPIKey    string
	YouTubeAPIURL    string
	YouTubeRPS       float64
	RedisURL         string
	CompletionURL    string
	CompletionModel  string
	CacheTTL         time.Duration
	AnalyzeRateLimit limiter.Rate
	PyroscopeURL     string
	LogLevel         string
}

// LoadConfig reads the analysis configuration from getenv.
func LoadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:            DefaultPort,
		YouTubeAPIKey:   getenv(YouTubeAPIKeyEnvVar),
		YouTubeAPIURL:   getenv(YouTubeAPIURLEnvVar),
		RedisURL:        getenv(RedisURLEnvVar),
		CompletionURL:   getenv(CompletionURLEnvVar),
		CompletionModel: getenv(CompletionModelEnvVar),
		PyroscopeURL:    getenv(PyroscopeURLEnvVar),
		LogLevel:        getenv(LogLevelEnvVar),
	}

	var errs []error
	if raw := getenv(PortEnvVar); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", PortEnvVar, err))
		}
		cfg.Port = port
	}
	if raw := getenv(YouTubeRPSEnvVar); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", YouTubeRPSEnvVar, err))
		}
		cfg.YouTubeRPS = rps
	}
	if raw := getenv(CacheTTLEnvVar); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", CacheTTLEnvVar, err))
		}
		cfg.CacheTTL = ttl
	}
	if raw := getenv(AnalyzeRateLimitEnvVar); raw != "" {
		rate, err := limiter.NewRateFromFormatted(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", AnalyzeRateLimitEnvVar, err))
		}
		cfg.AnalyzeRateLimit = rate
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("%w: invalid environment: %w", protocol.ErrConfiguration, errors.Join(errs...))
	}

	completionURL, err := CompletionEndpoint(cfg.CompletionURL)
	if err != nil {
		return Config{}, err
	}
	cfg.CompletionURL = completionURL
	return cfg, nil
}

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.YouTubeAPIKey, validation.Required.Error(YouTubeAPIKeyEnvVar+" must be set")),
		validation.Field(&c.YouTubeRPS, validation.Min(0.0)),
		validation.Field(&c.CacheTTL, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", protocol.ErrConfiguration, err)
	}
	return nil
}

// CompletionEndpoint resolves raw to a chat completions URL. A bare host gets the
// /v1/chat/completions path and an empty value selects the local proxy.
func CompletionEndpoint(raw string) (string, error) {
	if raw == "" {
		raw = DefaultCompletionURL
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: invalid %s %q", protocol.ErrConfiguration, CompletionURLEnvVar, raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = completion.Path
	}
	return u.String(), nil
}
