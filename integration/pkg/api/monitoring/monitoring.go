package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/basexlabs/basex-oracle/integration/pkg/api/middleware"
)

var _ middleware.HTTPMetrics = (*HTTPPrometheusMonitoring)(nil)

// HTTPPrometheusMonitoring records the HTTP metrics of one service on a dedicated registry.
type HTTPPrometheusMonitoring struct {
	registry        *prometheus.Registry
	activeRequests  prometheus.Gauge
	requestsTotal   prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// InitHTTPMonitoring registers the HTTP metrics under namespace, plus the Go runtime and
// process collectors.
func InitHTTPMonitoring(namespace string) (*HTTPPrometheusMonitoring, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register go collector: %w", err)
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("failed to register process collector: %w", err)
	}

	factory := promauto.With(reg)
	return &HTTPPrometheusMonitoring{
		registry: reg,
		activeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_active_requests",
			Help:      "Number of HTTP requests being served",
		}),
		requestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests received",
		}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route, method and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}, nil
}

func (m *HTTPPrometheusMonitoring) IncrementActiveRequestsCounter(context.Context) {
	m.activeRequests.Inc()
}

func (m *HTTPPrometheusMonitoring) DecrementActiveRequestsCounter(context.Context) {
	m.activeRequests.Dec()
}

func (m *HTTPPrometheusMonitoring) IncrementHTTPRequestCounter(context.Context) {
	m.requestsTotal.Inc()
}

func (m *HTTPPrometheusMonitoring) RecordHTTPRequestDuration(_ context.Context, duration time.Duration, route, method string, status int) {
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Registry returns the registry the metrics are registered on.
func (m *HTTPPrometheusMonitoring) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *HTTPPrometheusMonitoring) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// NoopHTTPMetrics discards every measurement.
type NoopHTTPMetrics struct{}

var _ middleware.HTTPMetrics = NoopHTTPMetrics{}

func (NoopHTTPMetrics) IncrementActiveRequestsCounter(context.Context) {}

func (NoopHTTPMetrics) DecrementActiveRequestsCounter(context.Context) {}

func (NoopHTTPMetrics) IncrementHTTPRequestCounter(context.Context) {}

func (NoopHTTPMetrics) RecordHTTPRequestDuration(context.Context, time.Duration, string, string, int) {
}
