package monitoring

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/basexlabs/basex-oracle/oracle"
)

var _ oracle.Monitoring = (*OraclePrometheusMonitoring)(nil)

type OraclePrometheusMonitoring struct {
	registry *prometheus.Registry
	metrics  oracle.MetricLabeler
}

// InitMonitoring registers the oracle metrics, plus the Go runtime and process collectors,
// on a dedicated registry.
func InitMonitoring() (*OraclePrometheusMonitoring, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register go collector: %w", err)
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("failed to register process collector: %w", err)
	}

	om, err := InitMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize oracle metrics: %w", err)
	}

	return &OraclePrometheusMonitoring{
		registry: reg,
		metrics:  NewOracleMetricLabeler(om),
	}, nil
}

func (o *OraclePrometheusMonitoring) Metrics() oracle.MetricLabeler {
	return o.metrics
}

// Registry returns the registry the oracle metrics are registered on.
func (o *OraclePrometheusMonitoring) Registry() *prometheus.Registry {
	return o.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (o *OraclePrometheusMonitoring) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{Registry: o.registry})
}
