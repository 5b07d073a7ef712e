// Package middleware holds cross-origin handling for the public API.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

const wildcard = "*"

// CORSConfig controls the Access-Control-* headers. A "*" entry in
// AllowedMethods or AllowedHeaders echoes whatever the preflight requests.
type CORSConfig struct {
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
	Validator      OriginValidator
	Logger         *slog.Logger
}

// CORS answers preflight requests with 204 and decorates simple requests.
// Requests from disallowed origins pass through without CORS headers.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !config.Validator.IsAllowed(origin) {
				logger.Warn("CORS: origin not allowed",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if config.Validator.AllowsAny() {
				h.Set("Access-Control-Allow-Origin", wildcard)
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", allowList(config.AllowedMethods, r.Header.Get("Access-Control-Request-Method")))
				if headers := allowList(config.AllowedHeaders, r.Header.Get("Access-Control-Request-Headers")); headers != "" {
					h.Set("Access-Control-Allow-Headers", headers)
				}
				if config.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}

				logger.Debug("CORS: preflight request",
					slog.String("origin", origin),
					slog.String("requested_method", r.Header.Get("Access-Control-Request-Method")),
					slog.String("requested_headers", r.Header.Get("Access-Control-Request-Headers")))

				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allowList renders the configured list, or echoes requested when the list
// contains "*".
func allowList(configured []string, requested string) string {
	for _, v := range configured {
		if v == wildcard {
			return requested
		}
	}
	return strings.Join(configured, ", ")
}
