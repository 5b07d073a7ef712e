// Package http provides the HTTP surface of the news API: middleware,
// health probes and metrics exposure. Resource handlers live in subpackages.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"news-aggregator/internal/handler/http/respond"
	"news-aggregator/internal/observability/metrics"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthResponse is the body served by /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the outcome of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// NewsCounter reports how many records are stored.
type NewsCounter interface {
	Count(ctx context.Context) (int64, error)
}

// HealthHandler reports database connectivity, pool pressure and the stored
// record count. Only an unreachable database makes the service unhealthy.
type HealthHandler struct {
	DB      *sql.DB
	News    NewsCounter
	Version string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus, 2)
	healthy := true

	if h.DB == nil {
		checks["database"] = CheckStatus{Status: statusUnhealthy, Message: "not configured"}
		healthy = false
	} else {
		dbCheck := h.checkDatabase(ctx)
		checks["database"] = dbCheck
		if dbCheck.Status == statusUnhealthy {
			healthy = false
		}
	}

	if h.News != nil && healthy {
		checks["news"] = h.checkNews(ctx)
	}

	status := statusHealthy
	code := http.StatusOK
	if !healthy {
		status = statusUnhealthy
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: respond.SanitizeError(err)}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	// Unlimited pools (MaxOpenConnections == 0) have no utilization to report.
	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
		details["utilization_percent"] = utilization
		if utilization >= 80 {
			return CheckStatus{
				Status:  statusDegraded,
				Message: "connection pool utilization above 80%",
				Details: details,
			}
		}
	}

	return CheckStatus{Status: statusHealthy, Details: details}
}

func (h *HealthHandler) checkNews(ctx context.Context) CheckStatus {
	n, err := h.News.Count(ctx)
	if err != nil {
		return CheckStatus{Status: statusDegraded, Message: "count unavailable"}
	}
	metrics.UpdateNewsTotal(n)
	return CheckStatus{Status: statusHealthy, Details: map[string]any{"records": n}}
}

// ReadyHandler answers readiness probes with a database ping.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	writePlain(w, "ready")
}

// LiveHandler answers liveness probes; it never touches dependencies.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writePlain(w, "alive")
}

func writePlain(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Warn("probe: failed to write response", slog.Any("error", err))
	}
}
