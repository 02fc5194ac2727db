package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

// ContractResolver returns the oracle contract of a network.
type ContractResolver func(network string) (protocol.OracleContract, bool)

// RequestProcessor runs validate, guard, analyze, parse and submit for one event.
// It holds no per-event state and is safe for concurrent use.
type RequestProcessor struct {
	lggr          logger.Logger
	analysis      protocol.AnalysisAPI
	contracts     ContractResolver
	monitoring    Monitoring
	skipFulfilled bool
}

var _ Processor = (*RequestProcessor)(nil)

func NewRequestProcessor(
	lggr logger.Logger,
	analysis protocol.AnalysisAPI,
	contracts ContractResolver,
	monitoring Monitoring,
	skipFulfilled bool,
) (*RequestProcessor, error) {
	var errs []error
	appendIfNil := func(field any, fieldName string) {
		if field == nil {
			errs = append(errs, fmt.Errorf("%s is not set", fieldName))
		}
	}
	appendIfNil(lggr, "logger")
	appendIfNil(analysis, "analysis API")
	appendIfNil(monitoring, "monitoring")
	if contracts == nil {
		errs = append(errs, errors.New("contract resolver is not set"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &RequestProcessor{
		lggr:          logger.Named(lggr, "RequestProcessor"),
		analysis:      analysis,
		contracts:     contracts,
		monitoring:    monitoring,
		skipFulfilled: skipFulfilled,
	}, nil
}

// Process handles one AnalysisRequested event. Every returned error is a *protocol.ProcessingError.
func (p *RequestProcessor) Process(ctx context.Context, event protocol.AnalysisRequestEvent) (*protocol.TxReceipt, error) {
	start := time.Now()
	metrics := p.monitoring.Metrics().With("network", event.Network)
	lggr := logger.With(p.lggr, "network", event.Network, "videoID", event.VideoID, "requestTx", event.TxHash)

	receipt, err := p.process(ctx, lggr, event)
	metrics.RecordProcessingDuration(ctx, time.Since(start))

	var perr *protocol.ProcessingError
	switch {
	case err == nil:
		metrics.IncrementRequestsFulfilled(ctx)
		lggr.Infow("Analysis submitted", "txHash", receipt.TxHash, "blockNumber", receipt.BlockNumber, "gasUsed", receipt.GasUsed)
	case errors.Is(err, protocol.ErrAlreadyFulfilled):
		metrics.IncrementRequestsSkipped(ctx)
		lggr.Infow("Analysis already stored, skipping request")
	case errors.As(err, &perr):
		metrics.IncrementRequestsFailed(ctx, string(perr.Stage))
	}
	return receipt, err
}

func (p *RequestProcessor) process(ctx context.Context, lggr logger.Logger, event protocol.AnalysisRequestEvent) (*protocol.TxReceipt, error) {
	fail := func(stage protocol.Stage, err error) error {
		return &protocol.ProcessingError{Network: event.Network, VideoID: event.VideoID, Stage: stage, Err: err}
	}

	if !protocol.IsValidVideoID(event.VideoID) {
		return nil, fail(protocol.StageValidate, fmt.Errorf("%w: invalid video id %q", protocol.ErrValidation, event.VideoID))
	}

	contract, ok := p.contracts(event.Network)
	if !ok {
		return nil, fail(protocol.StageValidate, fmt.Errorf("%w: network %q is not connected", protocol.ErrConfiguration, event.Network))
	}

	if p.skipFulfilled {
		record, err := contract.QueryResult(ctx, event.VideoID)
		switch {
		case err != nil:
			lggr.Warnw("Fulfilled check failed, continuing", "error", err)
		case record.Exists:
			return nil, fail(protocol.StageGuard, protocol.ErrAlreadyFulfilled)
		}
	}

	payload, err := p.analysis.RequestAnalysis(ctx, event.VideoID)
	if err != nil {
		return nil, fail(protocol.StageAnalyze, err)
	}
	lggr.Debugw("Analysis received from API", "payload", payload)

	result, err := protocol.ParseAnalysisPayload(payload)
	if err != nil {
		return nil, fail(protocol.StageParse, err)
	}

	receipt, err := contract.SubmitResult(ctx, event.VideoID, result)
	if err != nil {
		return receipt, fail(protocol.StageSubmit, err)
	}
	return receipt, nil
}
