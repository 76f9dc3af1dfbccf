package langfuse_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	langfuse "github.com/jdziat/langfuse-ingest"
)

// This example demonstrates creating a new Langfuse client with basic configuration.
func ExampleNew() {
	client, err := langfuse.New("pk-lf-example", "sk-lf-example")
	if err != nil {
		fmt.Println("Error creating client:", err)
		return
	}
	defer client.Shutdown(context.Background())

	fmt.Println("batch mode:", client.Config().BatchMode())
	// Output: batch mode: true
}

// This example shows how to configure the client with custom options.
func ExampleNew_withOptions() {
	client, err := langfuse.New("pk-lf-example", "sk-lf-example",
		langfuse.WithRegion(langfuse.RegionUS),
		langfuse.WithBatchSize(50),
		langfuse.WithFlushInterval(5*time.Second),
		langfuse.WithBatchMode(false),
	)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer client.Shutdown(context.Background())

	cfg := client.Config()
	fmt.Println(cfg.BaseURL, cfg.BatchSize, cfg.Mode)
	// Output: https://us.cloud.langfuse.com 50 immediate
}

// Configuration errors are returned by New.
func ExampleNew_missingKey() {
	_, err := langfuse.New("", "sk-lf-example")
	fmt.Println(errors.Is(err, langfuse.ErrMissingPublicKey))
	// Output: true
}

// A trace collects its events in creation order. Children get the trace id
// and their parent observation id filled in.
func ExampleNewTrace() {
	trace, err := langfuse.NewTrace(langfuse.TraceBody{ID: "trace-1", Name: "chat"})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	span, _ := trace.Span(langfuse.SpanBody{ObservationBody: langfuse.ObservationBody{ID: "span-1", Name: "retrieve"}})
	gen, _ := span.Generation(langfuse.GenerationBody{
		ObservationBody: langfuse.ObservationBody{ID: "gen-1", Name: "answer"},
		Model:           "gpt-4o",
	})
	_ = gen.End("Go is a programming language.")

	for _, ev := range trace.Events() {
		fmt.Println(ev.Type)
	}
	// Output:
	// trace-create
	// span-create
	// generation-create
	// generation-update
}

// Invalid bodies are rejected when the event is built, before anything is
// queued.
func ExampleNewSpanCreate_validation() {
	_, err := langfuse.NewSpanCreate(langfuse.SpanBody{})

	var verr *langfuse.ValidationError
	if errors.As(err, &verr) {
		fmt.Println(verr.Field, verr.Message)
	}
	// Output: traceId is required
}

// Score values are numbers for NUMERIC scores.
func ExampleNewScoreCreate() {
	ev, err := langfuse.NewScoreCreate(langfuse.ScoreBody{
		TraceID: "trace-1",
		Name:    "accuracy",
		Value:   0.9,
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(ev.Type, ev.Body.(langfuse.ScoreBody).ID != "")
	// Output: score-create true
}
