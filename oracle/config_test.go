package oracle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basexlabs/basex-oracle/protocol"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfiguration_EnvOnly(t *testing.T) {
	cfg, err := LoadConfiguration("", envFrom(map[string]string{
		"PRIVATE_KEY":              "0xabc",
		"SEPOLIA_RPC_URL":          "wss://sepolia.example/ws",
		"SEPOLIA_CONTRACT_ADDRESS": "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		"BASE_RPC_URL":             "https://base-sepolia.example",
		"BASE_CHAIN_ID":            "84532",
		"GAS_LIMIT":                "250000",
		"ANALYSIS_API_URL":         "http://analysis:3000",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	sepolia := cfg.Networks["sepolia"]
	assert.Equal(t, "wss://sepolia.example/ws", sepolia.RPCEndpoint)
	assert.Equal(t, uint64(11155111), sepolia.ChainID)
	require.NoError(t, sepolia.Validate())

	base := cfg.Networks["baseSepolia"]
	assert.Equal(t, uint64(84532), base.ChainID)
	// No contract address: the registry skips it.
	assert.ErrorIs(t, base.Validate(), protocol.ErrConfiguration)

	assert.Equal(t, uint64(250_000), cfg.GasLimit)
	assert.Equal(t, "http://analysis:3000", cfg.AnalysisAPIURL)
	assert.Equal(t, DefaultMetricsPort, cfg.MetricsPort)
}

func TestLoadConfiguration_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
analysis_api_url = "http://file:3000"
gas_limit = 300000
poll_interval = "2s"
workers_per_network = 4
skip_fulfilled = false

[networks.sepolia]
rpc_url = "https://file-sepolia.example"

[networks.local]
rpc_url = "http://127.0.0.1:8545"
contract_address = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
chain_id = 1337
`), 0o600))

	cfg, err := LoadConfiguration(path, envFrom(map[string]string{
		"PRIVATE_KEY":      "0xabc",
		"ANALYSIS_API_URL": "http://env:3000",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://env:3000", cfg.AnalysisAPIURL)
	assert.Equal(t, uint64(300_000), cfg.GasLimit)
	assert.Equal(t, 2*time.Second, cfg.GetPollInterval())
	assert.Equal(t, 4, cfg.GetWorkersPerNetwork())
	assert.False(t, cfg.GetSkipFulfilled())

	sepolia := cfg.Networks["sepolia"]
	assert.Equal(t, "https://file-sepolia.example", sepolia.RPCEndpoint)
	assert.Equal(t, "SEPOLIA", sepolia.EnvPrefix)
	assert.Equal(t, uint64(11155111), sepolia.ChainID)

	local := cfg.Networks["local"]
	assert.Equal(t, "local", local.Name)
	require.NoError(t, local.Validate())
}

func TestLoadConfiguration_Errors(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.toml"), nil)
	require.ErrorIs(t, err, protocol.ErrConfiguration)

	_, err = LoadConfiguration("", envFrom(map[string]string{"GAS_LIMIT": "lots", "SEPOLIA_CHAIN_ID": "x"}))
	require.ErrorIs(t, err, protocol.ErrConfiguration)
	assert.Contains(t, err.Error(), "GAS_LIMIT")
	assert.Contains(t, err.Error(), "SEPOLIA_CHAIN_ID")
}

func TestConfiguration_Validate(t *testing.T) {
	valid := func() *Configuration {
		c := NewDefaultConfiguration()
		c.PrivateKey = "0xabc"
		return c
	}

	cases := []struct {
		name            string
		mutate          func(c *Configuration)
		wantErrContains string
	}{
		{name: "valid", mutate: func(c *Configuration) {}},
		{name: "missing_private_key", mutate: func(c *Configuration) { c.PrivateKey = "" }, wantErrContains: "PRIVATE_KEY must be set"},
		{name: "no_networks", mutate: func(c *Configuration) { c.Networks = nil }, wantErrContains: "Networks"},
		{name: "bad_analysis_url", mutate: func(c *Configuration) { c.AnalysisAPIURL = "ftp://x" }, wantErrContains: "AnalysisAPIURL"},
		{name: "zero_gas_limit", mutate: func(c *Configuration) { c.GasLimit = 0 }, wantErrContains: "GasLimit"},
		{name: "bad_duration", mutate: func(c *Configuration) { c.PollInterval = "soon" }, wantErrContains: "PollInterval"},
		{name: "bad_port", mutate: func(c *Configuration) { c.MetricsPort = 70000 }, wantErrContains: "MetricsPort"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErrContains == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, protocol.ErrConfiguration)
			assert.Contains(t, err.Error(), tc.wantErrContains)
		})
	}
}

func TestConfiguration_Defaults(t *testing.T) {
	c := NewDefaultConfiguration()
	assert.Equal(t, 60*time.Second, c.GetAnalysisTimeout())
	assert.Equal(t, time.Duration(0), c.GetAnalysisInterval())
	assert.Equal(t, 10*time.Minute, c.GetConfirmationTimeout())
	assert.Equal(t, 5*time.Second, c.GetPollInterval())
	assert.Equal(t, 10*time.Second, c.GetProbeTimeout())
	assert.Equal(t, 5*time.Second, c.GetResubscribeDelay())
	assert.Equal(t, 1, c.GetWorkersPerNetwork())
	assert.True(t, c.GetSkipFulfilled())
}

func TestConfiguration_StringRedactsKey(t *testing.T) {
	c := NewDefaultConfiguration()
	c.PrivateKey = "0xdeadbeef"
	assert.NotContains(t, c.String(), "deadbeef")
	assert.Equal(t, "0xdeadbeef", c.PrivateKey)
}
