// Package respond writes JSON responses and client-safe error bodies.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v as a JSON body with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes {"error": err.Error()} unconditionally. Use SafeError for errors
// that may carry internal detail.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// safeFragments mark validation messages that are safe to show to clients.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"must be",
	"cannot be",
}

// SafeError writes the error message for 4xx validation errors and a generic
// "internal server error" otherwise, logging the sanitized original.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	isSafe := false
	if code < 500 {
		lowerMsg := strings.ToLower(msg)
		for _, safe := range safeFragments {
			if strings.Contains(lowerMsg, safe) {
				isSafe = true
				break
			}
		}
	}

	if isSafe {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.Any("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}
