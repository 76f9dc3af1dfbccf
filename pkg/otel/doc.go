// Package otel connects OpenTelemetry tracing to Langfuse.
//
// Langfuse accepts OTLP/HTTP traces at /api/public/otel/v1/traces. NewExporter
// builds an exporter for that endpoint, FilteringExporter keeps only the spans
// worth sending, and BaggageProcessor copies Langfuse baggage (user, session,
// release, version, tags) onto every span. Setup wires all three into a global
// tracer provider:
//
//	shutdown, err := otel.Setup(ctx, otel.SetupOptions{
//	    Exporter:    otel.ExporterOptions{PublicKey: pk, SecretKey: sk},
//	    ServiceName: "chat-api",
//	    OnlyGenAI:   true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer shutdown(context.Background())
//
// The span helpers record generations, tool calls and agents with the
// gen_ai semantic conventions and the langfuse.* attributes Langfuse maps to
// traces and observations.
package otel
