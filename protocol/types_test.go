package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkConfig_Validate(t *testing.T) {
	valid := NetworkConfig{
		Name:            "sepolia",
		RPCEndpoint:     "https://rpc.sepolia.org",
		ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		ChainID:         11155111,
		EnvPrefix:       "SEPOLIA",
	}

	cases := []struct {
		name            string
		mutate          func(c *NetworkConfig)
		wantErrContains string
	}{
		{name: "valid", mutate: func(c *NetworkConfig) {}},
		{name: "websocket endpoint", mutate: func(c *NetworkConfig) { c.RPCEndpoint = "wss://rpc.sepolia.org/ws" }},
		{name: "missing rpc", mutate: func(c *NetworkConfig) { c.RPCEndpoint = "" }, wantErrContains: "rpc endpoint is required"},
		{name: "bad scheme", mutate: func(c *NetworkConfig) { c.RPCEndpoint = "ftp://rpc" }, wantErrContains: "unsupported rpc endpoint scheme"},
		{name: "missing address", mutate: func(c *NetworkConfig) { c.ContractAddress = "" }, wantErrContains: "contract address is required"},
		{name: "bad address", mutate: func(c *NetworkConfig) { c.ContractAddress = "0x1234" }, wantErrContains: "invalid contract address"},
		{name: "missing chain id", mutate: func(c *NetworkConfig) { c.ChainID = 0 }, wantErrContains: "chain id is required"},
		{name: "missing name", mutate: func(c *NetworkConfig) { c.Name = "" }, wantErrContains: "network name is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErrContains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), tc.wantErrContains)
		})
	}
}

func TestProcessingError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := error(&ProcessingError{Network: "sepolia", VideoID: "tJ85t5wi5qc", Stage: StageSubmit, Err: errors.Join(ErrTransaction, cause)})

	assert.ErrorIs(t, err, ErrTransaction)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "sepolia")
	assert.Contains(t, err.Error(), "submit")

	var pe *ProcessingError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, StageSubmit, pe.Stage)
}

func TestTxStatus_String(t *testing.T) {
	assert.Equal(t, "success", TxStatusSuccess.String())
	assert.Equal(t, "failed", TxStatusFailed.String())
	assert.Equal(t, "TxStatus(7)", TxStatus(7).String())
}
