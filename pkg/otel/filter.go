package otel

import (
	"context"
	"strings"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var _ sdktrace.SpanExporter = (*FilteringExporter)(nil)

// FilteringExporter forwards to Next only the spans that pass its filters.
// Unsampled spans are always dropped.
type FilteringExporter struct {
	Next sdktrace.SpanExporter

	// OnlyGenAI drops spans that carry no gen_ai.* or langfuse.* attribute.
	OnlyGenAI bool

	// Keep, when set, must also accept a span for it to be exported.
	Keep func(sdktrace.ReadOnlySpan) bool
}

// NewFilteringExporter wraps next.
func NewFilteringExporter(next sdktrace.SpanExporter, onlyGenAI bool) *FilteringExporter {
	return &FilteringExporter{Next: next, OnlyGenAI: onlyGenAI}
}

// ExportSpans implements sdktrace.SpanExporter.
func (f *FilteringExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	kept := make([]sdktrace.ReadOnlySpan, 0, len(spans))
	for _, s := range spans {
		if f.keep(s) {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return f.Next.ExportSpans(ctx, kept)
}

func (f *FilteringExporter) keep(s sdktrace.ReadOnlySpan) bool {
	if !s.SpanContext().IsSampled() {
		return false
	}
	if f.OnlyGenAI && !IsGenAISpan(s) {
		return false
	}
	return f.Keep == nil || f.Keep(s)
}

// Shutdown implements sdktrace.SpanExporter.
func (f *FilteringExporter) Shutdown(ctx context.Context) error {
	return f.Next.Shutdown(ctx)
}

// IsGenAISpan reports whether s carries a gen_ai.* or langfuse.* attribute.
func IsGenAISpan(s sdktrace.ReadOnlySpan) bool {
	for _, kv := range s.Attributes() {
		k := string(kv.Key)
		if strings.HasPrefix(k, "gen_ai.") || strings.HasPrefix(k, "langfuse.") {
			return true
		}
	}
	return false
}
