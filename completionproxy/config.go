package completionproxy

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/basexlabs/basex-oracle/protocol"
)

const (
	PortEnvVar        = "GROQ_PROXY_PORT"
	ProviderURLEnvVar = "GROQ_PROVIDER_URL"
	APIKeyEnvVar      = "GROQ_API_KEY"

	DefaultPort    = 4567
	DefaultTimeout = 30 * time.Second
	// MaxBodyBytes caps the accepted request body.
	MaxBodyBytes = 1 << 20
)

// Config configures the proxy. An empty ProviderURL or APIKey keeps the proxy up but failing every forward.
type Config struct {
	Port        int
	ProviderURL string
	APIKey      string
	Timeout     time.Duration
}

// LoadConfig reads the proxy configuration from getenv.
func LoadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:        DefaultPort,
		ProviderURL: getenv(ProviderURLEnvVar),
		APIKey:      getenv(APIKeyEnvVar),
		Timeout:     DefaultTimeout,
	}
	if raw := getenv(PortEnvVar); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("%w: invalid %s %q", protocol.ErrConfiguration, PortEnvVar, raw)
		}
		cfg.Port = port
	}
	if cfg.ProviderURL != "" {
		u, err := url.ParseRequestURI(cfg.ProviderURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return Config{}, fmt.Errorf("%w: invalid %s %q", protocol.ErrConfiguration, ProviderURLEnvVar, cfg.ProviderURL)
		}
	}
	return cfg, nil
}

// Configured reports whether requests can be forwarded.
func (c Config) Configured() bool {
	return c.ProviderURL != "" && c.APIKey != ""
}
