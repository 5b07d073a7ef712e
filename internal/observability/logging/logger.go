package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"news-aggregator/internal/handler/http/requestid"
)

// ParseLevel maps LOG_LEVEL values to slog levels; unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a JSON logger on stdout honoring LOG_LEVEL.
func NewLogger() *slog.Logger {
	return NewLoggerTo(os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// NewLoggerTo creates a JSON logger writing to w.
func NewLoggerTo(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	})
	return slog.New(handler)
}

// WithRequestID returns a logger carrying the request ID stored in ctx, if any.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

// WithCategory returns a logger tagged with the pipeline category.
func WithCategory(logger *slog.Logger, category string) *slog.Logger {
	return logger.With("category", category)
}

// FromContext returns the logger stored in ctx or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
