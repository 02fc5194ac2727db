package analysisclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL
	c, err := New(logger.Test(t), cfg)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://example.com"} {
		_, err := New(logger.Test(t), Config{BaseURL: raw})
		require.ErrorIs(t, err, protocol.ErrConfiguration, raw)
	}
}

func TestClient_RequestAnalysis(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze-video", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":"keyword1,keyword2|73"}`))
	}, Config{})

	payload, err := c.RequestAnalysis(t.Context(), "tJ85t5wi5qc")
	require.NoError(t, err)
	assert.Equal(t, "keyword1,keyword2|73", payload)
	assert.Equal(t, map[string]any{"videoId": "tJ85t5wi5qc"}, gotBody)
}

func TestClient_RequestAnalysis_Errors(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       `{"success":false,"error":"Video not found"}`,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Video not found",
		},
		{
			name:       "success false on 200",
			status:     http.StatusOK,
			body:       `{"success":false,"error":"Failed to analyze video"}`,
			wantStatus: http.StatusOK,
			wantMsg:    "Failed to analyze video",
		},
		{
			name:       "server error without body",
			status:     http.StatusInternalServerError,
			body:       `{}`,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal Server Error",
		},
		{
			name:       "not json",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}, Config{})

			_, err := c.RequestAnalysis(t.Context(), "tJ85t5wi5qc")
			require.ErrorIs(t, err, protocol.ErrUpstreamAPI)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.wantStatus, apiErr.StatusCode)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, apiErr.Message)
			}
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, Config{Timeout: 50 * time.Millisecond})
	defer close(release)

	_, err := c.RequestAnalysis(t.Context(), "tJ85t5wi5qc")
	require.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, protocol.ErrUpstreamAPI)
}

func TestClient_CoolDownAfterRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}, Config{CoolDown: time.Second})

	_, err := c.RequestAnalysis(t.Context(), "tJ85t5wi5qc")
	require.ErrorIs(t, err, ErrRateLimit)

	// Requests during the cool down never reach the server.
	_, err = c.RequestAnalysis(t.Context(), "tJ85t5wi5qc")
	require.ErrorIs(t, err, ErrRateLimit)
	assert.Equal(t, int32(1), calls.Load())

	coolDown, remaining := c.inCoolDownPeriod()
	assert.True(t, coolDown)
	assert.Greater(t, remaining, 50*time.Second)
}

func TestClient_CancelledWhileWaitingForLimiter(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"success":true,"data":"music|5"}`))
	}, Config{Interval: time.Hour})

	_, err := c.RequestAnalysis(t.Context(), "tJ85t5wi5qc")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = c.RequestAnalysis(ctx, "tJ85t5wi5qc")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrRateLimit)

	// Without a deadline that fits the next token the limiter itself refuses.
	ctx, cancel = context.WithTimeout(t.Context(), time.Minute)
	defer cancel()
	_, err = c.RequestAnalysis(ctx, "tJ85t5wi5qc")
	require.ErrorIs(t, err, ErrRateLimit)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(logger.Test(t), Config{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.RequestAnalysis(t.Context(), "tJ85t5wi5qc")
	require.ErrorIs(t, err, protocol.ErrUpstreamAPI)
}
