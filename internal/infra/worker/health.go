package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthServer exposes the worker's probes:
//   - /live: process is up (always 200)
//   - /ready: scheduler is running (200, or 503 before SetReady(true))
//   - /health: readiness plus the outcome of the last ingestion run
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	isReady atomic.Bool
	lastRun atomic.Pointer[RunSummary]
	server  *http.Server
}

// RunSummary is the last run's outcome as reported by /health.
type RunSummary struct {
	FinishedAt       time.Time `json:"finished_at"`
	Categories       int       `json:"categories"`
	FailedCategories int64     `json:"failed_categories"`
	Inserted         int64     `json:"inserted"`
	Duplicates       int64     `json:"duplicates"`
	DurationMS       int64     `json:"duration_ms"`
}

type healthResponse struct {
	Status  string      `json:"status"`
	LastRun *RunSummary `json:"last_run,omitempty"`
}

func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthServer{addr: addr, logger: logger}
}

// Handler returns the probe routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", h.handleLiveness)
	mux.HandleFunc("GET /ready", h.handleReadiness)
	mux.HandleFunc("GET /health", h.handleHealth)
	return mux
}

// Start serves until ctx is cancelled, then shuts down within 5 seconds.
// It returns http.ErrServerClosed after a graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed

	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

// RecordRun stores the summary reported by /health.
func (h *HealthServer) RecordRun(summary RunSummary) {
	h.lastRun.Store(&summary)
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.write(w, http.StatusOK, healthResponse{Status: "alive"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if !h.isReady.Load() {
		h.write(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
		return
	}
	h.write(w, http.StatusOK, healthResponse{Status: "ready"})
}

// handleHealth reports "degraded" when the last run had failing categories.
// The status code stays 200 once ready; a failed category is not a reason to restart.
func (h *HealthServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !h.isReady.Load() {
		h.write(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
		return
	}

	resp := healthResponse{Status: "healthy", LastRun: h.lastRun.Load()}
	if resp.LastRun != nil && resp.LastRun.FailedCategories > 0 {
		resp.Status = "degraded"
	}
	h.write(w, http.StatusOK, resp)
}

func (h *HealthServer) write(w http.ResponseWriter, code int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
