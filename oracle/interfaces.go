package oracle

import (
	"context"
	"time"

	"github.com/basexlabs/basex-oracle/protocol"
)

// Monitoring provides all core monitoring functionality for the oracle. Also can be implemented as a no-op.
type Monitoring interface {
	// Metrics returns the metrics labeler for the oracle.
	Metrics() MetricLabeler
}

// MetricLabeler provides all metric recording functionality for the oracle.
type MetricLabeler interface {
	// With returns a new metrics labeler with the given key-value pairs.
	With(keyValues ...string) MetricLabeler
	// IncrementRequestsReceived counts AnalysisRequested events taken off a subscription.
	IncrementRequestsReceived(ctx context.Context)
	// IncrementRequestsFulfilled counts requests whose result was confirmed on chain.
	IncrementRequestsFulfilled(ctx context.Context)
	// IncrementRequestsSkipped counts requests that already had a stored result.
	IncrementRequestsSkipped(ctx context.Context)
	// IncrementRequestsFailed counts requests aborted at the given stage.
	IncrementRequestsFailed(ctx context.Context, stage string)
	// IncrementAnalysesObserved counts AnalysisReceived events.
	IncrementAnalysesObserved(ctx context.Context)
	// IncrementResubscriptions counts subscription restarts.
	IncrementResubscriptions(ctx context.Context)
	// RecordProcessingDuration records the duration of the full Process operation.
	RecordProcessingDuration(ctx context.Context, duration time.Duration)
}

// Processor handles a single analysis request end to end.
type Processor interface {
	Process(ctx context.Context, event protocol.AnalysisRequestEvent) (*protocol.TxReceipt, error)
}
