// Package observability groups the logging, metrics, tracing and SLO
// subpackages shared by the API and the ingestion worker.
//
// Subpackages:
//   - logging: slog JSON loggers carrying request IDs and categories
//   - metrics: Prometheus collectors for HTTP traffic and the ingestion pipeline
//   - tracing: OpenTelemetry provider setup, HTTP middleware and pipeline spans
//   - slo: per-run ingestion service-level indicators
package observability
