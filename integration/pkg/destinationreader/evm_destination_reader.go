package destinationreader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/basexlabs/basex-oracle/integration/pkg/chainconn"
	"github.com/basexlabs/basex-oracle/integration/pkg/gobindings/basexoracle"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

const (
	// DefaultCacheExpiry is how long a stored analysis is served from memory.
	DefaultCacheExpiry    = 5 * time.Minute
	recordCacheMaxEntries = 1000
)

var (
	errNilLogger = errors.New("logger is not set")
	errNilCaller = errors.New("contract caller is not set")
)

// EvmDestinationReader reads stored analyses from the oracle contract of one network.
type EvmDestinationReader struct {
	lggr    logger.Logger
	network string
	caller  *basexoracle.BaseXOracleCaller
	// Only records that exist are cached. A missing record may be fulfilled at any block.
	cache *expirable.LRU[string, protocol.AnalysisRecord]
}

type Params struct {
	Lggr        logger.Logger
	Network     string
	Caller      *basexoracle.BaseXOracleCaller
	CacheExpiry time.Duration
}

func NewEvmDestinationReader(params Params) (*EvmDestinationReader, error) {
	var errs []error
	appendIfNil := func(field any, fieldName error) {
		if field == nil {
			errs = append(errs, fieldName)
		}
	}
	appendIfNil(params.Lggr, errNilLogger)
	if params.Caller == nil {
		errs = append(errs, errNilCaller)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	expiry := params.CacheExpiry
	if expiry <= 0 {
		expiry = DefaultCacheExpiry
	}

	return &EvmDestinationReader{
		lggr:    logger.With(logger.Named(params.Lggr, "DestinationReader"), "network", params.Network),
		network: params.Network,
		caller:  params.Caller,
		cache:   expirable.NewLRU[string, protocol.AnalysisRecord](recordCacheMaxEntries, nil, expiry),
	}, nil
}

// NewFromConnection builds a reader over the contract bound by a verified connection.
func NewFromConnection(lggr logger.Logger, conn *chainconn.Connection, cacheExpiry time.Duration) (*EvmDestinationReader, error) {
	contract, err := conn.Contract()
	if err != nil {
		return nil, err
	}
	return NewEvmDestinationReader(Params{
		Lggr:        lggr,
		Network:     conn.Name(),
		Caller:      &contract.BaseXOracleCaller,
		CacheExpiry: cacheExpiry,
	})
}

// QueryResult calls getAnalysis(videoID). A record with Exists false means no result has been stored yet.
func (dr *EvmDestinationReader) QueryResult(ctx context.Context, videoID string) (protocol.AnalysisRecord, error) {
	if record, found := dr.cache.Peek(videoID); found {
		dr.lggr.Debugw("Analysis retrieved from cache", "videoID", videoID)
		return record, nil
	}

	out, err := dr.caller.GetAnalysis(&bind.CallOpts{Context: ctx}, videoID)
	if err != nil {
		// expect that the error is checked by the caller so it doesn't accidentally assume the result is missing
		return protocol.AnalysisRecord{}, fmt.Errorf("%w: %s: failed to call getAnalysis: %w", protocol.ErrConnectivity, dr.network, err)
	}

	record := protocol.AnalysisRecord{
		Metadata: out.Metadata,
		Exists:   out.Exists,
	}
	if out.Score != nil {
		if !out.Score.IsUint64() {
			return protocol.AnalysisRecord{}, fmt.Errorf("%w: %s: score %s out of range", protocol.ErrValidation, dr.network, out.Score.String())
		}
		record.Score = out.Score.Uint64()
	}

	if record.Exists {
		dr.cache.Add(videoID, record)
	}
	return record, nil
}

// Invalidate drops a cached record, typically after a new result for videoID was observed on chain.
func (dr *EvmDestinationReader) Invalidate(videoID string) {
	dr.cache.Remove(videoID)
}
