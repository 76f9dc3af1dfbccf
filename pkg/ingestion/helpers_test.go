package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
)

// fakePoster decodes every request and answers from a script. When the
// script is exhausted it accepts every event.
type fakePoster struct {
	mu       sync.Mutex
	requests [][]Event
	sizes    []int
	script   []func(batch []Event) (int, []byte, error)
}

func (p *fakePoster) PostIngestion(ctx context.Context, payload []byte) (int, []byte, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return 0, nil, fmt.Errorf("fake poster: bad payload: %w", err)
	}

	p.mu.Lock()
	p.requests = append(p.requests, req.Batch)
	p.sizes = append(p.sizes, len(payload))
	var next func([]Event) (int, []byte, error)
	if len(p.script) > 0 {
		next, p.script = p.script[0], p.script[1:]
	}
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	if next != nil {
		return next(req.Batch)
	}
	return acceptAll(req.Batch)
}

func (p *fakePoster) then(fns ...func([]Event) (int, []byte, error)) *fakePoster {
	p.mu.Lock()
	p.script = append(p.script, fns...)
	p.mu.Unlock()
	return p
}

func (p *fakePoster) requestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// seen returns how often each event id was posted.
func (p *fakePoster) seen() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]int)
	for _, batch := range p.requests {
		for _, ev := range batch {
			out[ev.ID]++
		}
	}
	return out
}

func acceptAll(batch []Event) (int, []byte, error) {
	resp := Response{Successes: []Success{}, Errors: []Failure{}}
	for _, ev := range batch {
		resp.Successes = append(resp.Successes, Success{ID: ev.ID, Status: 201})
	}
	data, err := json.Marshal(resp)
	return 207, data, err
}

func statusError(code int) func([]Event) (int, []byte, error) {
	return func([]Event) (int, []byte, error) {
		return 0, nil, &pkgerrors.APIError{StatusCode: code, Body: []byte(`{"message":"scripted"}`)}
	}
}

// rejectEvery rejects every other event of the batch.
func rejectEvery(batch []Event) (int, []byte, error) {
	resp := Response{}
	for i, ev := range batch {
		if i%2 == 1 {
			resp.Errors = append(resp.Errors, Failure{ID: ev.ID, Status: 400, Message: "invalid body", Detail: json.RawMessage(`{"issues":[]}`)})
			continue
		}
		resp.Successes = append(resp.Successes, Success{ID: ev.ID, Status: 201})
	}
	data, err := json.Marshal(resp)
	return 207, data, err
}

func garbage([]Event) (int, []byte, error) {
	return 200, []byte("<html>ok</html>"), nil
}

func testEvents(t *testing.T, n int) []Event {
	t.Helper()
	events := make([]Event, n)
	traceID := uuid.NewString()
	for i := range events {
		events[i] = mustEvent(t, NewEventCreate(EventBody{ObservationBody: ObservationBody{
			TraceID: traceID,
			Name:    fmt.Sprintf("event-%d", i),
		}}))
	}
	return events
}

// recordingLogger keeps every message for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

func (l *recordingLogger) log(level, msg string, args []any) {
	l.mu.Lock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
	l.mu.Unlock()
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.log("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.log("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.log("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.log("error", msg, args) }

func (l *recordingLogger) find(msg string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.msg == msg {
			out = append(out, e)
		}
	}
	return out
}

func argValue(args []any, key string) any {
	for i := 0; i+1 < len(args); i += 2 {
		if args[i] == key {
			return args[i+1]
		}
	}
	return nil
}
