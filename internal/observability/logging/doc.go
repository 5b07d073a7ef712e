// Package logging provides structured logging utilities with context propagation.
//
// It wraps log/slog with the patterns used by the worker and the API:
//   - JSON output with a LOG_LEVEL-controlled level
//   - request ID enrichment for HTTP handlers
//   - a category-scoped logger carried through the ingestion pipeline
//
//	logger := logging.NewLogger()
//	ctx = logging.WithLogger(ctx, logging.WithCategory(logger, "Science"))
//	logging.FromContext(ctx).Info("collection finished", slog.Int("records", n))
package logging
