package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCount       metric.Int64Counter
	RequestDuration    metric.Float64Histogram
	EnrichmentDuration metric.Float64Histogram
	EnrichmentFailures metric.Int64Counter
	GeocodeCacheHits   metric.Int64Counter
	GeocodeCacheMisses metric.Int64Counter
}

// Setup initializes OpenTelemetry
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error {
		return tracerProvider.Shutdown(ctx)
	}

	return shutdown, nil
}

// InitMetrics initializes application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/homematch-ai/recommender")

	requestCount, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	enrichmentDuration, err := meter.Float64Histogram(
		"enrichment.listing.duration",
		metric.WithDescription("Per-listing enrichment duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	enrichmentFailures, err := meter.Int64Counter(
		"enrichment.listing.failures",
		metric.WithDescription("Number of listings degraded to signal-unavailable during enrichment"),
	)
	if err != nil {
		return nil, err
	}

	geocodeCacheHits, err := meter.Int64Counter(
		"geocode.cache.hit.count",
		metric.WithDescription("Number of geocode memo cache hits"),
	)
	if err != nil {
		return nil, err
	}

	geocodeCacheMisses, err := meter.Int64Counter(
		"geocode.cache.miss.count",
		metric.WithDescription("Number of geocode memo cache misses"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCount:       requestCount,
		RequestDuration:    requestDuration,
		EnrichmentDuration: enrichmentDuration,
		EnrichmentFailures: enrichmentFailures,
		GeocodeCacheHits:   geocodeCacheHits,
		GeocodeCacheMisses: geocodeCacheMisses,
	}, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer("github.com/homematch-ai/recommender")
	return tracer.Start(ctx, spanName)
}

// SetSpanAttributes sets attributes on the given span
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
}

// RecordRequestMetric records an HTTP request metric
func RecordRequestMetric(ctx context.Context, metrics *Metrics, method, path string, statusCode int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	}

	metrics.RequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.RequestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordEnrichmentMetric records a per-listing enrichment duration
func RecordEnrichmentMetric(ctx context.Context, metrics *Metrics, source string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("enrichment.source", source),
	}
	metrics.EnrichmentDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordEnrichmentFailure records a degraded enrichment signal
func RecordEnrichmentFailure(ctx context.Context, metrics *Metrics, source string) {
	attrs := []attribute.KeyValue{
		attribute.String("enrichment.source", source),
	}
	metrics.EnrichmentFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}
