package otel

import (
	"context"
	"fmt"
	"time"

	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// SetupOptions configures Setup.
type SetupOptions struct {
	Exporter ExporterOptions

	// SpanExporter replaces the OTLP exporter built from Exporter.
	SpanExporter sdktrace.SpanExporter

	ServiceName    string
	ServiceVersion string

	// OnlyGenAI drops spans without gen_ai.* or langfuse.* attributes.
	OnlyGenAI bool

	// Sampler defaults to parent-based always-on.
	Sampler sdktrace.Sampler

	// BatchTimeout is the longest a span waits before export. Zero keeps the
	// SDK default.
	BatchTimeout time.Duration
}

// Setup registers a global tracer provider exporting to Langfuse and the
// TraceContext and Baggage propagators. The returned function flushes and
// shuts the provider down.
func Setup(ctx context.Context, opts SetupOptions) (func(context.Context) error, error) {
	tp, err := NewTracerProvider(ctx, opts)
	if err != nil {
		return nil, err
	}

	otelapi.SetTracerProvider(tp)
	otelapi.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

// NewTracerProvider builds the provider Setup registers without touching
// the globals.
func NewTracerProvider(ctx context.Context, opts SetupOptions) (*sdktrace.TracerProvider, error) {
	exp := opts.SpanExporter
	if exp == nil {
		var err error
		exp, err = NewExporter(ctx, opts.Exporter)
		if err != nil {
			return nil, err
		}
	}

	attrs := []resource.Option{resource.WithTelemetrySDK()}
	if opts.ServiceName != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceNameKey.String(opts.ServiceName)))
	}
	if opts.ServiceVersion != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceVersionKey.String(opts.ServiceVersion)))
	}
	res, err := resource.New(ctx, attrs...)
	if err != nil {
		return nil, fmt.Errorf("langfuse: failed to create resource: %w", err)
	}

	var bopts []sdktrace.BatchSpanProcessorOption
	if opts.BatchTimeout > 0 {
		bopts = append(bopts, sdktrace.WithBatchTimeout(opts.BatchTimeout))
	}

	sampler := opts.Sampler
	if sampler == nil {
		sampler = sdktrace.ParentBased(sdktrace.AlwaysSample())
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(BaggageProcessor{}),
		sdktrace.WithBatcher(NewFilteringExporter(exp, opts.OnlyGenAI), bopts...),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	), nil
}
