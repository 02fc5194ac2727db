package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basexlabs/basex-oracle/protocol"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(func(string) string { return "" })
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "http://localhost:4567/v1/chat/completions", cfg.CompletionURL)
	assert.Zero(t, cfg.AnalyzeRateLimit.Limit)

	err = cfg.Validate()
	require.ErrorIs(t, err, protocol.ErrConfiguration)
	assert.Contains(t, err.Error(), YouTubeAPIKeyEnvVar)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	env := map[string]string{
		PortEnvVar:             "8080",
		YouTubeAPIKeyEnvVar:    "yt-key",
		YouTubeRPSEnvVar:       "2.5",
		RedisURLEnvVar:         "redis://localhost:6379/0",
		CompletionURLEnvVar:    "http://proxy:4567/",
		CompletionModelEnvVar:  "llama3-8b-8192",
		CacheTTLEnvVar:         "30m",
		AnalyzeRateLimitEnvVar: "10-M",
	}
	cfg, err := LoadConfig(func(k string) string { return env[k] })
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "yt-key", cfg.YouTubeAPIKey)
	assert.InDelta(t, 2.5, cfg.YouTubeRPS, 1e-9)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "http://proxy:4567/v1/chat/completions", cfg.CompletionURL)
	assert.Equal(t, "llama3-8b-8192", cfg.CompletionModel)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, int64(10), cfg.AnalyzeRateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.AnalyzeRateLimit.Period)
}

func TestLoadConfig_Invalid(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"port":       {PortEnvVar: "http"},
		"rps":        {YouTubeRPSEnvVar: "fast"},
		"ttl":        {CacheTTLEnvVar: "1 hour"},
		"rate_limit": {AnalyzeRateLimitEnvVar: "ten per minute"},
		"completion": {CompletionURLEnvVar: "localhost:4567"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(func(k string) string { return env[k] })
			require.ErrorIs(t, err, protocol.ErrConfiguration)
		})
	}
}

func TestCompletionEndpoint_KeepsExplicitPath(t *testing.T) {
	u, err := CompletionEndpoint("https://api.groq.com/openai/v1/chat/completions")
	require.NoError(t, err)
	assert.Equal(t, "https://api.groq.com/openai/v1/chat/completions", u)
}
