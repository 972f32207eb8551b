package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfmedicos/mailagent/internal/agent"
	"github.com/nfmedicos/mailagent/internal/workflow"
)

type stubRunner struct {
	result *workflow.Result
	err    error
	input  workflow.Input
}

func (s *stubRunner) Run(_ context.Context, input workflow.Input) (*workflow.Result, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestServer(t *testing.T, runner Runner) *Server {
	t.Helper()
	srv, err := New(Config{Runner: runner})
	require.NoError(t, err)
	return srv
}

func TestNewRequiresRunner(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorContains(t, err, "workflow runner")
}

func TestHandleRun(t *testing.T) {
	runner := &stubRunner{
		result: &workflow.Result{
			RunID:        "run-1",
			OutputText:   `{"emails":[]}`,
			OutputParsed: &agent.EmailReport{Emails: []agent.Email{}},
		},
	}
	srv := newTestServer(t, runner)

	body := `{"input_as_text":"colete as notas","subsidiary":"ODONTO"}`
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, `{"emails":[]}`, resp.OutputText)
	require.NotNil(t, resp.OutputParsed)
	assert.Empty(t, resp.OutputParsed.Emails)

	assert.Equal(t, "colete as notas", runner.input.InputAsText)
	assert.Equal(t, "ODONTO", runner.input.Subsidiary)
}

func TestHandleRunBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"input_as_text":`},
		{name: "empty input", body: `{"input_as_text":"  "}`},
		{name: "missing input", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &stubRunner{})

			req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleRunFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("engine unavailable")}
	srv := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{"input_as_text":"colete"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "engine unavailable")
}

func TestRunMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/run", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Flipping readiness fails the probe without affecting liveness.
	srv.Health().SetReady(false)

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessDuringShutdown(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})
	require.NoError(t, srv.Shutdown(context.Background()))

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, healthStatusShuttingDown, resp.Checks["shutdown"])
}
