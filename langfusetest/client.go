package langfusetest

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jdziat/langfuse-ingest/pkg/client"
	pkghttp "github.com/jdziat/langfuse-ingest/pkg/http"
)

// TestingT is an interface that matches *testing.T and *testing.B.
type TestingT interface {
	Fatalf(format string, args ...any)
	Cleanup(func())
	Helper()
}

// TestPublicKey is the default test public key.
const TestPublicKey = "pk-lf-test-key"

// TestSecretKey is the default test secret key.
const TestSecretKey = "sk-lf-test-key"

// BaseOptions returns the options NewTestClient applies before the caller's:
// the mock server URL, a quiet logger, millisecond retries and a flush
// interval long enough that tests control delivery through Flush.
func BaseOptions(server *MockServer) []client.ConfigOption {
	return []client.ConfigOption{
		client.WithBaseURL(server.URL),
		client.WithHTTPClient(server.Client()),
		client.WithStructuredLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		client.WithBatchSize(1000),
		client.WithFlushInterval(time.Minute),
		client.WithShutdownTimeout(10 * time.Second),
		client.WithRetryPolicy(pkghttp.RetryPolicy{
			MaxRetries:   2,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
		}),
	}
}

// NewTestClient creates a batch-mode client wired to a fresh MockServer.
// The client and server are automatically cleaned up when the test ends.
func NewTestClient(t TestingT) (*client.Client, *MockServer) {
	t.Helper()
	return NewTestClientWithConfig(t)
}

// NewTestClientWithConfig creates a client with custom configuration for testing.
// BaseOptions are applied first, then the provided options on top.
func NewTestClientWithConfig(t TestingT, opts ...client.ConfigOption) (*client.Client, *MockServer) {
	t.Helper()

	server := NewMockServer()

	c, err := client.New(TestPublicKey, TestSecretKey, append(BaseOptions(server), opts...)...)
	if err != nil {
		server.Close()
		t.Fatalf("Failed to create test client: %v", err)
		return nil, nil
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = c.Shutdown(ctx)
		server.Close()
	})

	return c, server
}
