package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "news-aggregator"

// Tracer returns the application tracer from the current global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Init installs a sampling SDK provider and the W3C trace-context propagator.
// The returned function flushes and stops the provider.
func Init(opts ...sdktrace.TracerProviderOption) func(context.Context) error {
	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	}, opts...)
	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown
}

// StartCategorySpan opens the root span of one category run.
func StartCategorySpan(ctx context.Context, category string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "ingest.category",
		trace.WithAttributes(attribute.String("news.category", category)))
}

// StartStageSpan opens a child span for one pipeline stage.
func StartStageSpan(ctx context.Context, stage string, records int) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "ingest."+stage,
		trace.WithAttributes(attribute.Int("news.records", records)))
}
