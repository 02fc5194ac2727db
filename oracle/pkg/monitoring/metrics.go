package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/basexlabs/basex-oracle/oracle"
	"github.com/smartcontractkit/chainlink-common/pkg/metrics"
)

const (
	namespace    = "basex_oracle"
	networkLabel = "network"
	stageLabel   = "stage"
)

// OracleMetrics provides all metrics provided by the oracle.
type OracleMetrics struct {
	requestsReceived   *prometheus.CounterVec
	requestsFulfilled  *prometheus.CounterVec
	requestsSkipped    *prometheus.CounterVec
	requestsFailed     *prometheus.CounterVec
	analysesObserved   *prometheus.CounterVec
	resubscriptions    *prometheus.CounterVec
	processingDuration *prometheus.HistogramVec
}

// InitMetrics registers the oracle metrics on reg. The registry must not already hold them.
func InitMetrics(reg prometheus.Registerer) (*OracleMetrics, error) {
	factory := promauto.With(reg)
	om := &OracleMetrics{
		requestsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_received_total",
			Help:      "Total number of AnalysisRequested events received",
		}, []string{networkLabel}),
		requestsFulfilled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_fulfilled_total",
			Help:      "Total number of analyses submitted and confirmed on chain",
		}, []string{networkLabel}),
		requestsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_skipped_total",
			Help:      "Total number of requests skipped because a result was already stored",
		}, []string{networkLabel}),
		requestsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_failed_total",
			Help:      "Total number of requests aborted, by processing stage",
		}, []string{networkLabel, stageLabel}),
		analysesObserved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_observed_total",
			Help:      "Total number of AnalysisReceived events observed",
		}, []string{networkLabel}),
		resubscriptions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resubscriptions_total",
			Help:      "Total number of event subscription restarts",
		}, []string{networkLabel}),
		processingDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_duration_seconds",
			Help:      "Duration of processing a single analysis request",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{networkLabel}),
	}
	return om, nil
}

type OracleMetricLabeler struct {
	metrics.Labeler
	om *OracleMetrics
}

func NewOracleMetricLabeler(om *OracleMetrics) oracle.MetricLabeler {
	return &OracleMetricLabeler{
		Labeler: metrics.NewLabeler(),
		om:      om,
	}
}

func (c *OracleMetricLabeler) With(keyValues ...string) oracle.MetricLabeler {
	return &OracleMetricLabeler{c.Labeler.With(keyValues...), c.om}
}

func (c *OracleMetricLabeler) network() string {
	return c.Labels[networkLabel]
}

func (c *OracleMetricLabeler) IncrementRequestsReceived(ctx context.Context) {
	c.om.requestsReceived.WithLabelValues(c.network()).Inc()
}

func (c *OracleMetricLabeler) IncrementRequestsFulfilled(ctx context.Context) {
	c.om.requestsFulfilled.WithLabelValues(c.network()).Inc()
}

func (c *OracleMetricLabeler) IncrementRequestsSkipped(ctx context.Context) {
	c.om.requestsSkipped.WithLabelValues(c.network()).Inc()
}

func (c *OracleMetricLabeler) IncrementRequestsFailed(ctx context.Context, stage string) {
	c.om.requestsFailed.WithLabelValues(c.network(), stage).Inc()
}

func (c *OracleMetricLabeler) IncrementAnalysesObserved(ctx context.Context) {
	c.om.analysesObserved.WithLabelValues(c.network()).Inc()
}

func (c *OracleMetricLabeler) IncrementResubscriptions(ctx context.Context) {
	c.om.resubscriptions.WithLabelValues(c.network()).Inc()
}

func (c *OracleMetricLabeler) RecordProcessingDuration(ctx context.Context, duration time.Duration) {
	c.om.processingDuration.WithLabelValues(c.network()).Observe(duration.Seconds())
}
