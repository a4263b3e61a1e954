package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/climate-percentiles/internal/adapter/jsonfile"
	"github.com/couchcryptid/climate-percentiles/internal/domain"
	"github.com/couchcryptid/climate-percentiles/internal/observability"
)

// ReportSource loads the current percentile artifact.
type ReportSource interface {
	Load(ctx context.Context) ([]byte, error)
}

// Server exposes the percentile artifact plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	source     ReportSource
	logger     *slog.Logger
	metrics    *observability.ServerMetrics
}

// NewServer creates an HTTP server with /api/percentiles, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, source ReportSource, logger *slog.Logger, metrics *observability.ServerMetrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source:  source,
		logger:  logger,
		metrics: metrics,
	}

	mux.HandleFunc("GET /api/percentiles", s.handlePercentiles)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(s))
	mux.Handle("GET /metrics", metrics.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// CheckReadiness reports ready once a decodable artifact exists.
func (s *Server) CheckReadiness(ctx context.Context) error {
	data, err := s.source.Load(ctx)
	if err != nil {
		return err
	}
	_, err = domain.DecodeReport(data)
	return err
}

func (s *Server) handlePercentiles(w http.ResponseWriter, r *http.Request) {
	data, err := s.source.Load(r.Context())
	if errors.Is(err, jsonfile.ErrNotFound) {
		s.metrics.ArtifactLoads.WithLabelValues(observability.OutcomeMissing).Inc()
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "percentile data is not available yet",
		})
		return
	}
	if err == nil && !json.Valid(data) {
		err = errors.New("artifact is not valid JSON")
	}
	if err != nil {
		s.metrics.ArtifactLoads.WithLabelValues(observability.OutcomeError).Inc()
		s.logger.Error("serve percentiles failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal error: " + err.Error(),
		})
		return
	}

	s.metrics.ArtifactLoads.WithLabelValues(observability.OutcomeOK).Inc()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client disconnects are not actionable
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort error response
}
