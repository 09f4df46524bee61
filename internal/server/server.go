// Package server exposes a collected topology over HTTP: the interactive
// viewer at the root, and JSON endpoints for the payload and the raw
// snapshot. It reuses the pipeline runner, so browser and CLI renders are
// always byte-identical for the same snapshot.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nmaniam/topovis/pkg/export"
	"github.com/nmaniam/topovis/pkg/pipeline"
)

// Server serves topology renders built by a pipeline runner. The latest
// result is kept in memory and reused across requests; POST /api/refresh
// forces a new collection.
type Server struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	logger *log.Logger

	mu     sync.RWMutex
	result *pipeline.Result
}

// New creates a server around a runner and its pipeline options. The
// options' format list is ignored; each endpoint requests the format it
// needs.
func New(runner *pipeline.Runner, opts pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, opts: opts, logger: logger}
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/model", s.handleModel)
		r.Get("/snapshot", s.handleSnapshot)
		r.Post("/refresh", s.handleRefresh)
	})
	return r
}

// Refresh runs the pipeline and replaces the cached result. It is called
// once at startup so the first page load does not pay for collection, and
// again by the refresh endpoint.
func (s *Server) Refresh(ctx context.Context, bypassCache bool) error {
	opts := s.opts
	opts.Refresh = bypassCache
	opts.Formats = []string{pipeline.FormatJSON}

	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()
	return nil
}

// current returns the cached result, running the pipeline on first use.
func (s *Server) current(ctx context.Context) (*pipeline.Result, error) {
	s.mu.RLock()
	result := s.result
	s.mu.RUnlock()
	if result != nil {
		return result, nil
	}

	if err := s.Refresh(ctx, false); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	result, err := s.current(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	payload := export.MakePayload(result.Model)
	html, err := export.RenderHTML(r.Context(), payload, export.HTMLOptions{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html)
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	result, err := s.current(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, export.MakePayload(result.Model))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	result, err := s.current(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, result.Snapshot)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.Refresh(r.Context(), true); err != nil {
		s.fail(w, r, err)
		return
	}

	s.mu.RLock()
	result := s.result
	s.mu.RUnlock()
	s.writeJSON(w, map[string]any{
		"run_id":        result.RunID,
		"snapshot_hash": result.SnapshotHash,
		"devices":       result.Stats.DeviceCount,
		"links":         result.Stats.LinkCount,
		"anomalies":     result.Stats.AnomalyCount,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// logRequests logs one line per request with timing and request ID.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

// ListenAndServe serves the handler until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
