package http

import (
	"net/http"
	"strconv"
	"time"

	"news-aggregator/internal/handler/http/responsewriter"
	"news-aggregator/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// knownRoutes bounds the path label; anything else is reported as "other".
var knownRoutes = map[string]struct{}{
	"/news":    {},
	"/health":  {},
	"/ready":   {},
	"/live":    {},
	"/metrics": {},
}

// routeLabel maps a request path onto a bounded label set.
func routeLabel(path string) string {
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	return "other"
}

// MetricsMiddleware records request count, latency and response size.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		wrapped := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(wrapped, r)

		metrics.RecordHTTPRequest(
			r.Method,
			routeLabel(r.URL.Path),
			strconv.Itoa(wrapped.StatusCode()),
			time.Since(start),
			wrapped.BytesWritten(),
		)
	})
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
