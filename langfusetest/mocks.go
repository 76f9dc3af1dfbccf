package langfusetest

import (
	"fmt"
	"sync"
	"time"

	"github.com/jdziat/langfuse-ingest/pkg/client"
	"github.com/jdziat/langfuse-ingest/pkg/ingestion"
)

// Compile-time interface assertions to catch drift between mock implementations
// and the actual interfaces they're supposed to implement.
var (
	_ client.Metrics          = (*MockMetrics)(nil)
	_ client.Logger           = (*MockLogger)(nil)
	_ client.StructuredLogger = (*MockLogger)(nil)
)

// MockMetrics is a mock implementation of the Metrics interface for testing.
// It records all metrics operations for later verification.
type MockMetrics struct {
	mu       sync.Mutex
	Counters map[string]int64
	Gauges   map[string]float64
	Timings  map[string][]time.Duration
}

// NewMockMetrics creates a new mock metrics collector.
func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Counters: make(map[string]int64),
		Gauges:   make(map[string]float64),
		Timings:  make(map[string][]time.Duration),
	}
}

// IncrementCounter implements Metrics.IncrementCounter.
func (m *MockMetrics) IncrementCounter(name string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counters[name] += value
}

// RecordDuration implements Metrics.RecordDuration.
func (m *MockMetrics) RecordDuration(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Timings[name] = append(m.Timings[name], duration)
}

// SetGauge implements Metrics.SetGauge.
func (m *MockMetrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gauges[name] = value
}

// GetCounter returns the value of a counter.
func (m *MockMetrics) GetCounter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Counters[name]
}

// GetGauge returns the value of a gauge.
func (m *MockMetrics) GetGauge(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Gauges[name]
}

// GetTimings returns all recorded timings for a metric.
func (m *MockMetrics) GetTimings(name string) []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration{}, m.Timings[name]...)
}

// Reset clears all recorded metrics.
func (m *MockMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counters = make(map[string]int64)
	m.Gauges = make(map[string]float64)
	m.Timings = make(map[string][]time.Duration)
}

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Args    []any
}

// Attr returns the value logged under key, or nil.
func (e LogEntry) Attr(key string) any {
	for i := 0; i+1 < len(e.Args); i += 2 {
		if k, ok := e.Args[i].(string); ok && k == key {
			return e.Args[i+1]
		}
	}
	return nil
}

// MockLogger captures log calls for later verification. It satisfies both
// the structured and the printf-style logger interfaces; Printf calls are
// recorded at level "PRINTF" with the formatted message.
type MockLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewMockLogger creates a new mock logger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (l *MockLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Args: append([]any{}, args...)})
}

func (l *MockLogger) Debug(msg string, args ...any) { l.add("DEBUG", msg, args) }
func (l *MockLogger) Info(msg string, args ...any)  { l.add("INFO", msg, args) }
func (l *MockLogger) Warn(msg string, args ...any)  { l.add("WARN", msg, args) }
func (l *MockLogger) Error(msg string, args ...any) { l.add("ERROR", msg, args) }

// Printf implements Logger.Printf.
func (l *MockLogger) Printf(format string, v ...any) {
	l.add("PRINTF", fmt.Sprintf(format, v...), nil)
}

// Entries returns all captured entries.
func (l *MockLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry{}, l.entries...)
}

// EntriesWithMessage returns the captured entries whose message is msg.
func (l *MockLogger) EntriesWithMessage(msg string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LogEntry
	for _, e := range l.entries {
		if e.Message == msg {
			out = append(out, e)
		}
	}
	return out
}

// GetMessages returns all logged messages.
func (l *MockLogger) GetMessages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Message
	}
	return out
}

// MessageCount returns the number of logged messages.
func (l *MockLogger) MessageCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset clears all logged messages.
func (l *MockLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Recorder captures what the client reports through its callbacks: async
// errors, batch results and partial failures.
type Recorder struct {
	mu       sync.Mutex
	errs     []error
	results  []ingestion.BatchResult
	partials []ingestion.PartialFailure
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Options returns the client options that route callbacks into r.
func (r *Recorder) Options() []client.ConfigOption {
	return []client.ConfigOption{
		client.WithErrorHandler(r.HandleError),
		client.WithOnBatchResult(r.HandleBatchResult),
		client.WithOnPartialFailure(r.HandlePartialFailure),
	}
}

// HandleError records an async error.
func (r *Recorder) HandleError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// HandleBatchResult records a batch result.
func (r *Recorder) HandleBatchResult(res ingestion.BatchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// HandlePartialFailure records a partial failure.
func (r *Recorder) HandlePartialFailure(pf ingestion.PartialFailure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partials = append(r.partials, pf)
}

// Errors returns the recorded async errors.
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error{}, r.errs...)
}

// Results returns the recorded batch results.
func (r *Recorder) Results() []ingestion.BatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ingestion.BatchResult{}, r.results...)
}

// PartialFailures returns the recorded partial failures.
func (r *Recorder) PartialFailures() []ingestion.PartialFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ingestion.PartialFailure{}, r.partials...)
}

// Totals sums Sent, Rejected and Failed over every recorded batch result.
func (r *Recorder) Totals() (sent, rejected, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.results {
		sent += res.Sent
		rejected += res.Rejected
		failed += res.Failed
	}
	return sent, rejected, failed
}
