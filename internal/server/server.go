// Package server exposes the scan over HTTP and triggers the daily
// scheduled run.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"swingbot/internal/interfaces"
	"swingbot/internal/logger"
	"swingbot/internal/results"
	"swingbot/internal/scan"
	"swingbot/internal/store"
	"swingbot/internal/types"
)

type Server struct {
	cfg      *store.Config
	scanner  *scan.Scanner
	store    *results.Store
	notifier interfaces.Notifier
}

func New(cfg *store.Config, scanner *scan.Scanner, st *results.Store, notifier interfaces.Notifier) *Server {
	return &Server{cfg: cfg, scanner: scanner, store: st, notifier: notifier}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/analyze", s.handleAnalyze)
	r.Get("/last-results", s.handleLastResults)
	r.Post("/analyze-all", s.handleAnalyzeAll)

	return r
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Router(),
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", s.cfg.Listen)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// RunScan executes one scan, stores the outcome, and returns it. Used by
// both the HTTP trigger and the daily schedule.
func (s *Server) RunScan(ctx context.Context) (*types.ScanResult, error) {
	res, err := s.scanner.Run(ctx)
	if err != nil {
		return nil, err
	}
	s.store.Set(res)
	return res, nil
}

// RunScheduledScan is the daily job: scan, store, notify.
func (s *Server) RunScheduledScan(ctx context.Context) {
	res, err := s.RunScan(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Scheduled scan failed", err)
		return
	}
	s.notifier.AnalysisDone(ctx, res.TopPicks)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	// Model readiness is implied: the process refuses to start without a
	// loaded artifact.
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"model_ready": true,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	res, err := s.RunScan(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "message": err.Error()})
		return
	}

	out := map[string]any{
		"top_positive": map[string]any{},
		"top_negative": map[string]any{},
	}
	if len(res.TopPicks) > 0 {
		out["top_positive"] = res.TopPicks[0]
		out["top_negative"] = res.TopPicks[len(res.TopPicks)-1]
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLastResults(w http.ResponseWriter, r *http.Request) {
	res, updated, ok := s.store.Latest()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"status": "empty", "top_picks": []types.Prediction{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"updated_at": updated.UTC().Format(time.RFC3339),
		"top_picks":  res.TopPicks,
	})
}

func (s *Server) handleAnalyzeAll(w http.ResponseWriter, r *http.Request) {
	res, err := s.RunScan(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "message": err.Error()})
		return
	}
	if len(res.All) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "empty",
			"message": "No valid stocks found",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"data":   res.All,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
