package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReporter struct {
	name   string
	ready  error
	report map[string]error
}

func (f fakeReporter) Ready() error                   { return f.ready }
func (f fakeReporter) HealthReport() map[string]error { return f.report }
func (f fakeReporter) Name() string                   { return f.name }

func TestLivenessResponse(t *testing.T) {
	t.Run("alive status serializes correctly", func(t *testing.T) {
		response := NewAliveResponse()

		data, err := json.Marshal(response)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"alive"}`, string(data))
		assert.Equal(t, http.StatusOK, response.StatusCode())
	})

	t.Run("status code is service unavailable for non-alive", func(t *testing.T) {
		response := LivenessResponse{Status: LivenessStatus("not_alive")}
		assert.Equal(t, http.StatusServiceUnavailable, response.StatusCode())
	})
}

func TestReadinessResponse(t *testing.T) {
	t.Run("empty services list is ready", func(t *testing.T) {
		response := NewReadinessResponse([]ServicesHealth{})

		data, err := json.Marshal(response)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"ready","services":[]}`, string(data))
		assert.Equal(t, http.StatusOK, response.StatusCode())
	})

	t.Run("single unhealthy service makes the response not ready", func(t *testing.T) {
		response := NewReadinessResponse([]ServicesHealth{
			{Name: "relay", Status: Ready},
			{Name: "registry", Status: NotReady, Error: "no networks connected"},
		})

		data, err := json.Marshal(response)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"status": "not_ready",
			"services": [
				{"name": "relay", "status": "ready"},
				{"name": "registry", "status": "not_ready", "error": "no networks connected"}
			]
		}`, string(data))
		assert.Equal(t, http.StatusServiceUnavailable, response.StatusCode())
	})
}

func TestNewServiceHealth(t *testing.T) {
	t.Run("nil reporter", func(t *testing.T) {
		h := NewServiceHealth(nil)
		assert.Equal(t, NotReady, h.Status)
		assert.Equal(t, "unknown", h.Name)
	})

	t.Run("healthy reporter drops nil report entries", func(t *testing.T) {
		h := NewServiceHealth(fakeReporter{
			name:   "registry",
			report: map[string]error{"registry.sepolia": nil},
		})
		assert.Equal(t, Ready, h.Status)
		assert.Empty(t, h.Report)
	})

	t.Run("failing reporter keeps error strings", func(t *testing.T) {
		h := NewServiceHealth(fakeReporter{
			name:  "registry",
			ready: errors.New("degraded"),
			report: map[string]error{
				"registry.sepolia":     nil,
				"registry.baseSepolia": errors.New("dial tcp: connection refused"),
			},
		})
		assert.Equal(t, NotReady, h.Status)
		assert.Equal(t, "degraded", h.Error)
		assert.Equal(t, map[string]string{"registry.baseSepolia": "dial tcp: connection refused"}, h.Report)
	})
}

func TestReadinessHandler(t *testing.T) {
	handler := ReadinessHandler(
		fakeReporter{name: "relay"},
		fakeReporter{name: "registry", ready: errors.New("no network connected")},
	)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var response ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, NotReady, response.Status)
	require.Len(t, response.Services, 2)
	assert.Equal(t, "no network connected", response.Services[1].Error)
}
