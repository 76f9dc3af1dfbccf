// Package client provides the core Langfuse client implementation.
//
// A Client owns one shared *http.Client, the ingestion pipeline and the
// resource API clients. It runs in one of two modes:
//
//   - Batch mode (the default). Ingest puts the event on a bounded queue and
//     returns. A single background flusher batches queued events, splits
//     each batch so no request exceeds 3.5 MB, and posts them to
//     /api/public/ingestion. Ingest is fire-and-forget: delivery errors are
//     never returned to the producer. They are logged, counted, and passed
//     to Config.ErrorHandler and Config.OnBatchResult. Shutdown drains the
//     queue and reports anything it could not deliver.
//   - Immediate mode (WithBatchMode(false)). Ingest posts the event before
//     returning and returns transport and protocol errors.
//
// In both modes a 2xx response that rejects some events is a partial
// failure. Rejected events are logged one by one and passed to
// Config.OnPartialFailure; they are never an error.
//
// Most users should import the root langfuse package which provides
// a facade over this package.
//
// Example:
//
//	import "github.com/jdziat/langfuse-ingest/pkg/client"
//
//	c, err := client.New("pk-lf-xxx", "sk-lf-xxx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Shutdown(context.Background())
package client
