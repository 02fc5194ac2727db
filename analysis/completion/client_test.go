package completion

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

func newServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL + "/v1/chat/completions"
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(logger.Test(t), Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultURL, c.url)
	assert.Equal(t, DefaultModel, c.model)
	assert.InDelta(t, DefaultTemperature, c.temperature, 1e-9)
	assert.Equal(t, DefaultMaxTokens, c.maxTokens)
	assert.Equal(t, DefaultTimeout, c.timeout)

	zero := 0.0
	c, err = NewClient(logger.Test(t), Config{Temperature: &zero})
	require.NoError(t, err)
	assert.Zero(t, c.temperature)

	_, err = NewClient(logger.Test(t), Config{URL: "ftp://example.com"})
	require.ErrorIs(t, err, protocol.ErrConfiguration)
	_, err = NewClient(nil, Config{})
	require.Error(t, err)
}

func TestComplete(t *testing.T) {
	url := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		assert.Equal(t, 50, req.MaxTokens)
		assert.Equal(t, []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "usr"}}, req.Messages)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  M:a,b;P:40  "}}]}`))
	})

	c, err := NewClient(logger.Test(t), Config{URL: url})
	require.NoError(t, err)

	answer, err := c.Complete(t.Context(), []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "usr"}})
	require.NoError(t, err)
	assert.Equal(t, "M:a,b;P:40", answer)
}

func TestComplete_Errors(t *testing.T) {
	cases := []struct {
		name            string
		status          int
		body            string
		wantErrContains string
	}{
		{name: "provider_error", status: http.StatusUnauthorized, body: `{"error":{"message":"invalid api key"}}`, wantErrContains: "invalid api key"},
		{name: "provider_error_without_body", status: http.StatusBadGateway, body: ``, wantErrContains: "Bad Gateway"},
		{name: "no_choices", status: http.StatusOK, body: `{"choices":[]}`, wantErrContains: "invalid AI response format"},
		{name: "empty_content", status: http.StatusOK, body: `{"choices":[{"message":{"content":" "}}]}`, wantErrContains: "invalid AI response format"},
		{name: "malformed", status: http.StatusOK, body: `<html>`, wantErrContains: "malformed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			url := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			c, err := NewClient(logger.Test(t), Config{URL: url})
			require.NoError(t, err)

			_, err = c.Complete(t.Context(), []Message{{Role: RoleUser, Content: "x"}})
			require.ErrorIs(t, err, protocol.ErrUpstreamAPI)
			assert.Contains(t, err.Error(), tc.wantErrContains)
		})
	}
}

func TestComplete_Timeout(t *testing.T) {
	url := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	c, err := NewClient(logger.Test(t), Config{URL: url, Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Complete(t.Context(), []Message{{Role: RoleUser, Content: "x"}})
	require.ErrorIs(t, err, protocol.ErrUpstreamAPI)
}
