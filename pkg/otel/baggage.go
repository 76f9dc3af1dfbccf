package otel

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var _ sdktrace.SpanProcessor = BaggageProcessor{}

// BaggageProcessor copies Langfuse baggage from the parent context onto every
// span when it starts. Tags are split on commas.
type BaggageProcessor struct{}

// OnStart implements sdktrace.SpanProcessor.
func (BaggageProcessor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	bag := baggage.FromContext(parent)
	var attrs []attribute.KeyValue
	if v := bag.Member(BaggageUserID).Value(); v != "" {
		attrs = append(attrs, KeyTraceUserID.String(v))
	}
	if v := bag.Member(BaggageSessionID).Value(); v != "" {
		attrs = append(attrs, KeyTraceSessionID.String(v))
	}
	if v := bag.Member(BaggageVersion).Value(); v != "" {
		attrs = append(attrs, KeyVersion.String(v))
	}
	if v := bag.Member(BaggageRelease).Value(); v != "" {
		attrs = append(attrs, KeyRelease.String(v))
	}
	if v := bag.Member(BaggageTags).Value(); v != "" {
		if tags := splitTags(v); len(tags) > 0 {
			attrs = append(attrs, KeyTraceTags.StringSlice(tags))
		}
	}
	if len(attrs) > 0 {
		s.SetAttributes(attrs...)
	}
}

func (BaggageProcessor) OnEnd(sdktrace.ReadOnlySpan)      {}
func (BaggageProcessor) Shutdown(context.Context) error   { return nil }
func (BaggageProcessor) ForceFlush(context.Context) error { return nil }

func splitTags(v string) []string {
	var out []string
	for _, t := range strings.Split(v, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Baggage holds the Langfuse values propagated to downstream spans.
type Baggage struct {
	UserID    string
	SessionID string
	Version   string
	Release   string
	Tags      []string
}

// ContextWithBaggage returns ctx with b merged into its baggage. Empty
// fields are skipped.
func ContextWithBaggage(ctx context.Context, b Baggage) (context.Context, error) {
	bag := baggage.FromContext(ctx)
	set := func(key, value string) error {
		if value == "" {
			return nil
		}
		m, err := baggage.NewMemberRaw(key, value)
		if err != nil {
			return err
		}
		bag, err = bag.SetMember(m)
		return err
	}

	for _, kv := range [][2]string{
		{BaggageUserID, b.UserID},
		{BaggageSessionID, b.SessionID},
		{BaggageVersion, b.Version},
		{BaggageRelease, b.Release},
		{BaggageTags, strings.Join(b.Tags, ",")},
	} {
		if err := set(kv[0], kv[1]); err != nil {
			return ctx, err
		}
	}
	return baggage.ContextWithBaggage(ctx, bag), nil
}
