// Package langfuse is a Go client for the Langfuse ingestion API.
//
// Applications describe what their LLM code did as ingestion events (traces,
// spans, generations, events and scores) and hand them to a Client, which
// delivers them to POST /api/public/ingestion in batches.
//
// # Quick Start
//
//	client, err := langfuse.New(
//	    os.Getenv("LANGFUSE_PUBLIC_KEY"),
//	    os.Getenv("LANGFUSE_SECRET_KEY"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Shutdown(context.Background())
//
//	trace, err := client.NewTrace(langfuse.TraceBody{Name: "chat", UserID: "user-123"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	gen, err := trace.Generation(langfuse.GenerationBody{Model: "gpt-4o"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... call the model ...
//
//	_ = gen.End("Go is a programming language.")
//	_ = client.IngestTrace(ctx, trace)
//
// # Delivery Modes
//
// In batch mode (the default) Ingest queues the event and returns. A
// background flusher sends a batch when BatchSize events are queued or when
// FlushInterval elapses, whichever comes first. Delivery failures never reach
// the caller of Ingest; they are reported to the ErrorHandler, OnBatchResult
// and OnPartialFailure callbacks and to the logger. Flush forces delivery of
// everything queued and returns the errors of that cycle.
//
// WithBatchMode(false) selects immediate mode: every Ingest sends a batch of
// one and returns the transport or protocol error, if any.
//
// The server answers a batch with 207 and a per-event status. Events it
// rejects are reported, never retried. Whole-request failures with status
// 429 or 5xx, and network errors, are retried with exponential backoff.
//
// # Configuration
//
// Options override defaults; NewFromSettings starts from a YAML or JSON file
// and LANGFUSE_* environment variables:
//
//	client, err := langfuse.New(pk, sk,
//	    langfuse.WithRegion(langfuse.RegionUS),
//	    langfuse.WithBatchSize(50),
//	    langfuse.WithFlushInterval(2*time.Second),
//	)
//
// # Shutdown
//
// Shutdown stops accepting events, flushes the queue and waits for in-flight
// batches, bounded by its context or ShutdownTimeout. Events still queued
// when the deadline passes are reported as dropped.
//
// # Sub-packages
//
// The root package re-exports the common surface of:
//   - pkg/client: the Client and its options
//   - pkg/ingestion: events, bodies, the queue, the sender and the flusher
//   - pkg/errors: error types and sentinels
//   - pkg/config: settings files and environment variables
//
// pkg/otel wires the same traces through OpenTelemetry, and langfusetest
// provides a mock ingestion server for tests.
package langfuse
