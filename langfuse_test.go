package langfuse_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	langfuse "github.com/jdziat/langfuse-ingest"
	"github.com/jdziat/langfuse-ingest/langfusetest"
)

func newClient(t *testing.T, opts ...langfuse.ConfigOption) (*langfuse.Client, *langfusetest.MockServer) {
	t.Helper()
	server := langfusetest.NewMockServer()
	t.Cleanup(server.Close)

	c, err := langfuse.New(langfusetest.TestPublicKey, langfusetest.TestSecretKey,
		append(langfusetest.BaseOptions(server), opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.Shutdown(ctx)
	})
	return c, server
}

func TestFacade_IngestTraceEndToEnd(t *testing.T) {
	c, server := newClient(t)
	ctx := context.Background()

	trace, err := c.NewTrace(langfuse.TraceBody{Name: "chat"})
	if err != nil {
		t.Fatalf("NewTrace() error = %v", err)
	}
	gen, err := trace.Generation(langfuse.GenerationBody{Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("Generation() error = %v", err)
	}
	if err := gen.End("done"); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if _, err := trace.Score(langfuse.ScoreBody{Name: "quality", Value: 1}); err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if err := c.IngestTrace(ctx, trace); err != nil {
		t.Fatalf("IngestTrace() error = %v", err)
	}
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	seen := server.SeenIDs()
	for _, ev := range trace.Events() {
		if seen[ev.ID] != 1 {
			t.Errorf("event %s (%s) delivered %d times, want 1", ev.ID, ev.Type, seen[ev.ID])
		}
	}

	stats := c.Stats()
	if stats.Sent != 4 {
		t.Errorf("Stats().Sent = %d, want 4", stats.Sent)
	}
	if stats.Pending != 0 {
		t.Errorf("Stats().Pending = %d, want 0", stats.Pending)
	}
}

func TestFacade_ImmediateModeReturnsAPIError(t *testing.T) {
	c, server := newClient(t, langfuse.WithBatchMode(false))
	server.RespondWithUnauthorized()

	ev, err := langfuse.NewTraceCreate(langfuse.TraceBody{Name: "t"})
	if err != nil {
		t.Fatalf("NewTraceCreate() error = %v", err)
	}

	err = c.Ingest(context.Background(), ev)
	if err == nil {
		t.Fatal("Ingest() error = nil, want error")
	}
	apiErr, ok := langfuse.AsAPIError(err)
	if !ok {
		t.Fatalf("Ingest() error = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusUnauthorized)
	}
	if langfuse.IsRetryable(err) {
		t.Error("IsRetryable(401) = true, want false")
	}
}

func TestFacade_SendReportsRejections(t *testing.T) {
	c, server := newClient(t)

	good, _ := langfuse.NewTraceCreate(langfuse.TraceBody{Name: "good"})
	bad, _ := langfuse.NewTraceCreate(langfuse.TraceBody{Name: "bad"})
	server.RespondWithPartialSuccess(bad.ID)

	resp, err := c.Send(context.Background(), good, bad)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(resp.Successes) != 1 || resp.Successes[0].ID != good.ID {
		t.Errorf("Successes = %+v, want only %s", resp.Successes, good.ID)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].ID != bad.ID {
		t.Errorf("Errors = %+v, want only %s", resp.Errors, bad.ID)
	}
}

func TestFacade_ShutdownTwice(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	if err := c.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := c.Shutdown(ctx); !errors.Is(err, langfuse.ErrClientClosed) {
		t.Errorf("second Shutdown() error = %v, want ErrClientClosed", err)
	}

	ev, _ := langfuse.NewTraceCreate(langfuse.TraceBody{})
	if err := c.Ingest(ctx, ev); !errors.Is(err, langfuse.ErrClientClosed) {
		t.Errorf("Ingest() after Shutdown error = %v, want ErrClientClosed", err)
	}
}

func TestFacade_NewValidatesCredentials(t *testing.T) {
	tests := []struct {
		name      string
		publicKey string
		secretKey string
		wantIs    error
	}{
		{"missing public key", "", "sk-lf-secret", langfuse.ErrMissingPublicKey},
		{"missing secret key", "pk-lf-public", "", langfuse.ErrMissingSecretKey},
		{"wrong prefix", "lf-pk-public", "sk-lf-secret", nil},
		{"too short", "pk-lf-", "sk-lf-secret", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := langfuse.New(tt.publicKey, tt.secretKey)
			if err == nil {
				_ = c.Close()
				t.Fatal("New() error = nil, want error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("New() error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}

func TestFacade_NewWithConfig(t *testing.T) {
	server := langfusetest.NewMockServer()
	defer server.Close()

	c, err := langfuse.NewWithConfig(&langfuse.Config{
		PublicKey: langfusetest.TestPublicKey,
		SecretKey: langfusetest.TestSecretKey,
		BaseURL:   server.URL + "/api/public/",
		Mode:      langfuse.ModeImmediate,
	})
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}
	defer c.Close()

	if got := c.Config().BaseURL; got != server.URL {
		t.Errorf("BaseURL = %q, want %q", got, server.URL)
	}

	ev, _ := langfuse.NewEventCreate(langfuse.EventBody{ObservationBody: langfuse.ObservationBody{TraceID: "trace-1"}})
	if err := c.Ingest(context.Background(), ev); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if n := len(server.RequestsWithPath(langfusetest.IngestionPath)); n != 1 {
		t.Errorf("ingestion requests = %d, want 1", n)
	}
}
