package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nfmedicos/mailagent/internal/agent"
	"github.com/nfmedicos/mailagent/internal/instrumentation"
	"github.com/nfmedicos/mailagent/internal/logging"
	"github.com/nfmedicos/mailagent/internal/workflow"
)

const (
	// DefaultAddr is the default listen address of the run API.
	DefaultAddr = ":8080"

	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 60 * time.Second

	maxRequestBytes = 1 << 20
)

// Runner is the workflow entry point the HTTP server drives.
type Runner interface {
	Run(ctx context.Context, input workflow.Input) (*workflow.Result, error)
}

// RunRequest is the body of POST /run.
type RunRequest struct {
	InputAsText string `json:"input_as_text"`
	Subsidiary  string `json:"subsidiary,omitempty"`
}

// RunResponse is the body of a successful POST /run.
type RunResponse struct {
	RunID        string             `json:"run_id"`
	OutputText   string             `json:"output_text"`
	OutputParsed *agent.EmailReport `json:"output_parsed"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Config holds the run API server configuration.
type Config struct {
	// Addr is the listen address (default ":8080").
	Addr string

	// Runner executes workflow runs. Required.
	Runner Runner

	// Metrics records HTTP request metrics. Optional.
	Metrics *instrumentation.Metrics

	// Logger receives request logs. Defaults to the slog adapter.
	Logger logging.Logger
}

// Server is the run API HTTP server.
type Server struct {
	addr       string
	runner     Runner
	metrics    *instrumentation.Metrics
	logger     logging.Logger
	health     *HealthChecker
	httpServer *http.Server
}

// New creates a run API server.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("server requires a workflow runner")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewSlogAdapter(nil)
	}

	return &Server{
		addr:    cfg.Addr,
		runner:  cfg.Runner,
		metrics: metrics,
		logger:  logger,
		health:  NewHealthChecker(),
	}, nil
}

// Health returns the server's health checker so the lifecycle owner can
// flip readiness during startup and drain.
func (s *Server) Health() *HealthChecker {
	return s.health
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /run", s.instrument("/run", http.HandlerFunc(s.handleRun)))
	s.health.RegisterHealthEndpoints(mux)
	return mux
}

// Start runs the server until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}

	s.logger.Info("starting run API server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetShuttingDown()
	if s.httpServer != nil {
		s.logger.Info("shutting down run API server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if strings.TrimSpace(req.InputAsText) == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("input_as_text must not be empty"))
		return
	}

	result, err := s.runner.Run(r.Context(), workflow.Input{
		InputAsText: req.InputAsText,
		Subsidiary:  req.Subsidiary,
	})
	if err != nil {
		s.logger.Error("run request failed",
			logging.Operation("run"),
			logging.Err(err),
		)
		s.writeError(w, http.StatusBadGateway, fmt.Errorf("workflow run failed: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, RunResponse{
		RunID:        result.RunID,
		OutputText:   result.OutputText,
		OutputParsed: result.OutputParsed,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// instrument wraps a handler with HTTP request metrics.
func (s *Server) instrument(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, path, recorder.status, time.Since(start))
	})
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
