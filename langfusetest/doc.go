// Package langfusetest provides testing utilities for applications that send
// events through the Langfuse ingestion client.
//
// # Mock Server
//
// MockServer decodes every ingestion request and records its batch. By
// default it accepts every event and echoes each id back as a success:
//
//	server := langfusetest.NewMockServer()
//	defer server.Close()
//
//	c, _ := client.New("pk-lf-x", "sk-lf-x", client.WithBaseURL(server.URL))
//	// ... ingest ...
//	_ = c.Flush(ctx)
//
//	for id, n := range server.SeenIDs() {
//	    // n == 1 for every delivered event
//	}
//
// Replies are scripted per request with Script, or set for every request with
// RespondWith:
//
//	server.Script(
//	    langfusetest.Status(500, "boom"),
//	    langfusetest.Reject(badID),
//	)
//	server.RespondWith(langfusetest.Accept())
//
// # Test Client
//
// NewTestClient returns a batch-mode client wired to a fresh mock server,
// with millisecond retries and a long flush interval so tests drive delivery
// through Flush:
//
//	func TestMyFeature(t *testing.T) {
//	    c, server := langfusetest.NewTestClient(t)
//	    // c is shut down when the test ends
//	}
//
// # Mocks
//
// MockMetrics, MockLogger and Recorder capture metrics, log lines and the
// client's result callbacks:
//
//	rec := langfusetest.NewRecorder()
//	c, _ := langfusetest.NewTestClientWithConfig(t, rec.Options()...)
//	// ...
//	sent, rejected, failed := rec.Totals()
package langfusetest
