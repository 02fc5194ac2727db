package monitoring

import (
	"context"
	"time"

	"github.com/basexlabs/basex-oracle/oracle"
)

var _ oracle.Monitoring = (*NoopOracleMonitoring)(nil)

type NoopOracleMonitoring struct {
	noop oracle.MetricLabeler
}

func NewNoopOracleMonitoring() oracle.Monitoring {
	return &NoopOracleMonitoring{noop: NewNoopOracleMetricLabeler()}
}

func (n *NoopOracleMonitoring) Metrics() oracle.MetricLabeler {
	return n.noop
}

type NoopOracleMetricLabeler struct{}

func NewNoopOracleMetricLabeler() oracle.MetricLabeler {
	return &NoopOracleMetricLabeler{}
}

func (n *NoopOracleMetricLabeler) With(keyValues ...string) oracle.MetricLabeler {
	return n
}

func (n *NoopOracleMetricLabeler) IncrementRequestsReceived(ctx context.Context) {}

func (n *NoopOracleMetricLabeler) IncrementRequestsFulfilled(ctx context.Context) {}

func (n *NoopOracleMetricLabeler) IncrementRequestsSkipped(ctx context.Context) {}

func (n *NoopOracleMetricLabeler) IncrementRequestsFailed(ctx context.Context, stage string) {}

func (n *NoopOracleMetricLabeler) IncrementAnalysesObserved(ctx context.Context) {}

func (n *NoopOracleMetricLabeler) IncrementResubscriptions(ctx context.Context) {}

func (n *NoopOracleMetricLabeler) RecordProcessingDuration(ctx context.Context, duration time.Duration) {
}
