package ingestion

import "time"

// Logger is the structured logger used by the pipeline. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Metrics receives pipeline measurements.
type Metrics interface {
	IncrementCounter(name string, value int64)
	RecordDuration(name string, d time.Duration)
	SetGauge(name string, value float64)
}

// Metric names emitted by the pipeline.
const (
	MetricEventsEnqueued = "langfuse.events.enqueued"
	MetricEventsSent     = "langfuse.events.sent"
	MetricEventsRejected = "langfuse.events.rejected"
	MetricEventsFailed   = "langfuse.events.failed"
	MetricEventsDropped  = "langfuse.events.dropped"
	MetricBatchSent      = "langfuse.batch.sent"
	MetricBatchErrors    = "langfuse.batch.errors"
	MetricBatchDuration  = "langfuse.batch.duration"
	MetricQueueDepth     = "langfuse.queue.depth"
	MetricQueueLevel     = "langfuse.queue.level"
)

// SafeCall runs a user callback and logs a panic instead of propagating it.
func SafeCall(logger Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("callback panicked", "callback", name, "panic", r)
		}
	}()
	fn()
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type nopMetrics struct{}

func (nopMetrics) IncrementCounter(string, int64)       {}
func (nopMetrics) RecordDuration(string, time.Duration) {}
func (nopMetrics) SetGauge(string, float64)             {}
