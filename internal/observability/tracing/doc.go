// Package tracing wires OpenTelemetry into the API and the ingest pipeline.
//
// Init installs an SDK tracer provider and the W3C propagator so that every
// request and every category run gets a real trace ID, which the structured
// logs carry for correlation. No exporter is configured by default.
//
//	shutdown := tracing.Init()
//	defer shutdown(context.Background())
//
//	ctx, span := tracing.StartCategorySpan(ctx, "Technology")
//	defer span.End()
package tracing
