// Package telemetry installs the OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/antiplagiat/internal/model"
)

// TracerName is the instrumentation scope used by the analysis pipeline
const TracerName = "github.com/ppiankov/antiplagiat"

// Span attribute keys
const (
	AttrMode         = attribute.Key("antiplagiat.mode")
	AttrLang         = attribute.Key("antiplagiat.lang")
	AttrChars        = attribute.Key("antiplagiat.chars")
	AttrSuspicion    = attribute.Key("antiplagiat.suspicion")
	AttrOriginality  = attribute.Key("antiplagiat.originality")
	AttrMatches      = attribute.Key("antiplagiat.matches")
	AttrExternalUsed = attribute.Key("antiplagiat.external_used")
	AttrSentences    = attribute.Key("antiplagiat.sentences")
)

// ShutdownFunc flushes and stops the provider
type ShutdownFunc func(context.Context) error

// Setup installs a batching OTLP/gRPC tracer provider when an endpoint is
// configured. Otherwise the global no-op provider stays in place.
func Setup(ctx context.Context, cfg model.TelemetryConfig, version string) (ShutdownFunc, error) {
	if cfg.OTLPEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "antiplagiat"
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", name),
		attribute.String("service.version", version),
	)

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}

// Tracer returns the pipeline tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// RecordError marks span as failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
