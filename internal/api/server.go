// Package api exposes the agent and the compliance gate over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"insurance-agent/internal/common/database"
	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/compliance"
	"insurance-agent/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultMaxBodyBytes = 1 << 20
	defaultTimeout      = 30 * time.Second
	readyTimeout        = 5 * time.Second
)

type QueryProcessor interface {
	ProcessAgentQuery(ctx context.Context, query string, callerContext map[string]interface{}) models.AgentResponse
}

type ComplianceChecker interface {
	Check(text string) compliance.Result
}

// QueryRecorder counts answered queries. *observability.Observability
// satisfies it.
type QueryRecorder interface {
	RecordQuery(ctx context.Context, intent, source string)
}

// Option customises a Server.
type Option func(*Server)

// WithQueryRecorder reports every answered query to r under source "http".
func WithQueryRecorder(r QueryRecorder) Option {
	return func(s *Server) { s.recorder = r }
}

type Config struct {
	Version      string
	Timeout      time.Duration
	MaxBodyBytes int64
}

type Server struct {
	cfg      Config
	agent    QueryProcessor
	checker  ComplianceChecker
	backends map[string]database.Pinger
	recorder QueryRecorder
	logger   logger.Logger
	now      func() time.Time
}

// NewServer wires the routes. backends are pinged by /ready; a nil checker
// uses the default keyword list.
func NewServer(cfg Config, agent QueryProcessor, checker ComplianceChecker, backends map[string]database.Pinger, log logger.Logger, opts ...Option) *Server {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if checker == nil {
		checker = compliance.NewChecker(nil)
	}
	s := &Server{
		cfg:      cfg,
		agent:    agent,
		checker:  checker,
		backends: backends,
		logger:   logger.Component(log, "api"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/agent/query", s.handleQuery)
	mux.HandleFunc("POST /api/compliance/check", s.handleComplianceCheck)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	return s.withRequestID(mux)
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{"address": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("request body is empty")
	}
	return body, nil
}

type errorResponse struct {
	Error     string   `json:"error"`
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{"error": err})
	}
}
