package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPPrometheusMonitoring(t *testing.T) {
	m, err := InitHTTPMonitoring("basex_analysis")
	require.NoError(t, err)
	ctx := t.Context()

	m.IncrementHTTPRequestCounter(ctx)
	m.IncrementHTTPRequestCounter(ctx)
	m.IncrementActiveRequestsCounter(ctx)
	m.IncrementActiveRequestsCounter(ctx)
	m.DecrementActiveRequestsCounter(ctx)
	m.RecordHTTPRequestDuration(ctx, 250*time.Millisecond, "/analyze-video", http.MethodPost, http.StatusOK)

	assert.InDelta(t, 2, testutil.ToFloat64(m.requestsTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.activeRequests), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "basex_analysis_http_requests_total 2")
	assert.Contains(t, string(body), `basex_analysis_http_request_duration_seconds_count{method="POST",route="/analyze-video",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNoopHTTPMetrics(t *testing.T) {
	var m NoopHTTPMetrics
	m.IncrementHTTPRequestCounter(t.Context())
	m.IncrementActiveRequestsCounter(t.Context())
	m.DecrementActiveRequestsCounter(t.Context())
	m.RecordHTTPRequestDuration(t.Context(), time.Second, "/", http.MethodGet, http.StatusOK)
}
