package destinationreader

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basexlabs/basex-oracle/integration/pkg/gobindings/basexoracle"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

// stubCaller answers getAnalysis calls from an in-memory table.
type stubCaller struct {
	t       *testing.T
	mu      sync.Mutex
	records map[string]protocol.AnalysisRecord
	err     error
	calls   int
}

func (s *stubCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (s *stubCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	parsed, err := basexoracle.BaseXOracleMetaData.GetAbi()
	require.NoError(s.t, err)
	method := parsed.Methods["getAnalysis"]
	args, err := method.Inputs.Unpack(call.Data[4:])
	require.NoError(s.t, err)

	record := s.records[args[0].(string)]
	return method.Outputs.Pack(record.Metadata, new(big.Int).SetUint64(record.Score), record.Exists)
}

func (s *stubCaller) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestReader(t *testing.T, stub *stubCaller) *EvmDestinationReader {
	caller, err := basexoracle.NewBaseXOracleCaller(common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), stub)
	require.NoError(t, err)
	dr, err := NewEvmDestinationReader(Params{
		Lggr:        logger.Test(t),
		Network:     "sepolia",
		Caller:      caller,
		CacheExpiry: time.Minute,
	})
	require.NoError(t, err)
	return dr
}

func TestNewEvmDestinationReader_ParameterValidation(t *testing.T) {
	testCases := []struct {
		name          string
		params        Params
		expectedError error
	}{
		{
			name:          "missing logger",
			params:        Params{Caller: &basexoracle.BaseXOracleCaller{}},
			expectedError: errNilLogger,
		},
		{
			name:          "missing caller",
			params:        Params{Lggr: logger.Test(t)},
			expectedError: errNilCaller,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEvmDestinationReader(tc.params)
			require.ErrorIs(t, err, tc.expectedError)
		})
	}
}

func TestEvmDestinationReader_QueryResult(t *testing.T) {
	stub := &stubCaller{t: t, records: map[string]protocol.AnalysisRecord{
		"tJ85t5wi5qc": {Metadata: "music,live", Score: 73, Exists: true},
	}}
	dr := newTestReader(t, stub)

	record, err := dr.QueryResult(t.Context(), "tJ85t5wi5qc")
	require.NoError(t, err)
	assert.Equal(t, protocol.AnalysisRecord{Metadata: "music,live", Score: 73, Exists: true}, record)

	missing, err := dr.QueryResult(t.Context(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.False(t, missing.Exists)
	assert.Empty(t, missing.Metadata)
	assert.Zero(t, missing.Score)
}

func TestEvmDestinationReader_CachesOnlyExistingRecords(t *testing.T) {
	stub := &stubCaller{t: t, records: map[string]protocol.AnalysisRecord{
		"tJ85t5wi5qc": {Metadata: "a", Score: 1, Exists: true},
	}}
	dr := newTestReader(t, stub)

	for range 3 {
		_, err := dr.QueryResult(t.Context(), "tJ85t5wi5qc")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, stub.callCount())

	for range 2 {
		_, err := dr.QueryResult(t.Context(), "dQw4w9WgXcQ")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, stub.callCount())

	dr.Invalidate("tJ85t5wi5qc")
	_, err := dr.QueryResult(t.Context(), "tJ85t5wi5qc")
	require.NoError(t, err)
	assert.Equal(t, 4, stub.callCount())
}

func TestEvmDestinationReader_CallFailure(t *testing.T) {
	stub := &stubCaller{t: t, err: errors.New("connection reset by peer")}
	dr := newTestReader(t, stub)

	_, err := dr.QueryResult(t.Context(), "tJ85t5wi5qc")
	require.ErrorIs(t, err, protocol.ErrConnectivity)
}
