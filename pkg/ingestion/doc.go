// Package ingestion implements the batched event pipeline of the Langfuse
// client.
//
// Events are typed values built with the New* constructors, which validate the
// body and assign an event id and timestamp. A Queue buffers events between
// any number of producers and a single Flusher goroutine. The Flusher forms
// batches, and a Sender splits each batch into requests that stay under the
// server's payload limit and posts them through a Poster.
//
// Every event accepted by the pipeline ends up in exactly one of four
// buckets: sent, rejected by the server, failed in transport, or dropped at
// shutdown. Stats exposes the counters and Flusher.Shutdown reports the ids of
// every event that was not delivered.
//
// Trace groups a trace and its observations so they can be built with
// parent links filled in and ingested together.
package ingestion
