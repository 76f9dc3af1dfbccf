package ingestion

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"

	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
)

// Flusher defaults.
const (
	DefaultBatchSize     = 100
	DefaultFlushInterval = 5 * time.Second
	DefaultSendTimeout   = 30 * time.Second
)

// FlusherConfig configures a Flusher. Zero values take defaults.
type FlusherConfig struct {
	// BatchSize is the maximum number of events taken from the queue per
	// batch. A batch may still be split into several requests by size.
	BatchSize int

	// FlushInterval is how long the flusher waits between cycles when no
	// explicit flush is requested and fewer than BatchSize events are queued.
	FlushInterval time.Duration

	// SendTimeout bounds the delivery of one batch, retries included.
	SendTimeout time.Duration

	Logger  Logger
	Metrics Metrics
	Monitor *QueueMonitor

	// OnBatchResult is called after every batch, delivered or not.
	OnBatchResult func(BatchResult)

	// OnPartialFailure is called when the server rejected some events of a
	// delivered batch.
	OnPartialFailure func(PartialFailure)

	// OnError receives an *errors.AsyncError for every batch that could not
	// be delivered.
	OnError func(error)
}

// BatchResult describes what happened to one batch.
type BatchResult struct {
	EventCount int
	Requests   int
	Sent       int
	Rejected   int
	Failed     int
	Duration   time.Duration

	// Err is the transport or protocol failure, if any request failed.
	Err error

	// Response holds the merged server verdicts.
	Response Response

	// UndeliveredIDs lists the events counted in Failed.
	UndeliveredIDs []string

	// Rejections lists the server's per-event errors counted in Rejected.
	Rejections []Failure
}

// Success reports whether every event of the batch was accepted.
func (r BatchResult) Success() bool {
	return r.Err == nil && r.Rejected == 0
}

// Stats are cumulative delivery counters. Once the flusher has shut down,
// Enqueued equals Sent+Rejected+Failed+Dropped.
type Stats struct {
	Enqueued int64
	Sent     int64
	Rejected int64
	Failed   int64
	Dropped  int64
	Batches  int64
	Pending  int
}

// ShutdownReport describes the final drain.
type ShutdownReport struct {
	Sent     int
	Rejected int
	Failed   int
	Dropped  int
	Duration time.Duration

	// Undelivered lists every event that was accepted by Enqueue but neither
	// sent nor rejected during the drain: failed sends first, then events
	// left in the queue when the deadline passed.
	Undelivered []string
}

type stopRequest struct {
	ctx   context.Context
	reply chan ShutdownReport
}

// Flusher owns the single goroutine that moves events from a Queue to the
// server. Only the flusher forms batches and posts them, so at most one
// ingestion request is in flight.
type Flusher struct {
	queue  *Queue
	sender *Sender
	cfg    FlusherConfig

	wake     chan struct{}
	flushReq chan chan error
	stopReq  chan stopRequest
	done     chan struct{}

	runCtx context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	stopping  atomic.Bool

	enqueued atomic.Int64
	sent     atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64
	dropped  atomic.Int64
	batches  atomic.Int64
}

// NewFlusher returns a flusher draining q through s. Call Start to begin.
func NewFlusher(q *Queue, s *Sender, cfg FlusherConfig) *Flusher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Flusher{
		queue:    q,
		sender:   s,
		cfg:      cfg,
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan error),
		stopReq:  make(chan stopRequest),
		done:     make(chan struct{}),
		runCtx:   ctx,
		cancel:   cancel,
	}
}

// Start launches the flusher goroutine. Later calls do nothing.
func (f *Flusher) Start() {
	f.startOnce.Do(func() { go f.run() })
}

// Enqueue hands ev to the queue and wakes the flusher once a full batch is
// waiting. It blocks while the queue is full.
func (f *Flusher) Enqueue(ctx context.Context, ev Event) error {
	f.enqueued.Add(1)
	if err := f.queue.Enqueue(ctx, ev); err != nil {
		f.enqueued.Add(-1)
		return err
	}
	f.cfg.Metrics.IncrementCounter(MetricEventsEnqueued, 1)

	n := f.queue.Len()
	if f.cfg.Monitor != nil {
		f.cfg.Monitor.Update(n)
	}
	if n >= f.cfg.BatchSize {
		select {
		case f.wake <- struct{}{}:
		default:
		}
	}
	return nil
}

// Flush runs a flush cycle now and waits for it. It returns the delivery
// errors of that cycle; per-event rejections are not errors.
func (f *Flusher) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case f.flushReq <- reply:
	case <-f.done:
		return pkgerrors.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting events and delivers everything still queued. When
// ctx ends first, the request in flight is abandoned and the remaining events
// are dropped. A *errors.ShutdownError listing every undelivered event is
// returned if the drain was incomplete.
func (f *Flusher) Shutdown(ctx context.Context) (ShutdownReport, error) {
	if !f.stopping.CompareAndSwap(false, true) {
		<-f.done
		return ShutdownReport{}, nil
	}

	f.queue.Close()
	f.Start()

	req := stopRequest{ctx: ctx, reply: make(chan ShutdownReport, 1)}
	select {
	case f.stopReq <- req:
	case <-ctx.Done():
		f.cancel()
		f.stopReq <- req
	}
	report := <-req.reply
	<-f.done
	f.cancel()

	if len(report.Undelivered) == 0 {
		return report, nil
	}
	msg := "events could not be delivered"
	if ctx.Err() != nil {
		msg = "deadline reached before the queue was drained"
	}
	return report, &pkgerrors.ShutdownError{
		Cause:      ctx.Err(),
		Dropped:    len(report.Undelivered),
		DroppedIDs: report.Undelivered,
		Message:    msg,
	}
}

// Done is closed when the flusher goroutine has exited.
func (f *Flusher) Done() <-chan struct{} {
	return f.done
}

// Stats returns the cumulative counters.
func (f *Flusher) Stats() Stats {
	return Stats{
		Enqueued: f.enqueued.Load(),
		Sent:     f.sent.Load(),
		Rejected: f.rejected.Load(),
		Failed:   f.failed.Load(),
		Dropped:  f.dropped.Load(),
		Batches:  f.batches.Load(),
		Pending:  f.queue.Len(),
	}
}

func (f *Flusher) run() {
	defer close(f.done)

	ticker := time.NewTicker(f.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case req := <-f.stopReq:
			req.reply <- f.drain(req.ctx)
			return
		case reply := <-f.flushReq:
			reply <- f.cycle(f.runCtx)
		case <-f.wake:
			_ = f.cycle(f.runCtx)
		case <-ticker.C:
			_ = f.cycle(f.runCtx)
		}
	}
}

// cycle drains the queue in batches without waiting for new events.
func (f *Flusher) cycle(ctx context.Context) error {
	var errs *multierror.Error
	for ctx.Err() == nil {
		batch := f.queue.DequeueBatch(f.cfg.BatchSize)
		if len(batch) == 0 {
			break
		}
		if res := f.deliver(ctx, batch); res.Err != nil {
			errs = multierror.Append(errs, res.Err)
		}
		if len(batch) < f.cfg.BatchSize {
			break
		}
	}
	f.updateDepth()
	return errs.ErrorOrNil()
}

func (f *Flusher) drain(ctx context.Context) ShutdownReport {
	start := time.Now()
	var report ShutdownReport

	for ctx.Err() == nil {
		batch := f.queue.DequeueBatch(f.cfg.BatchSize)
		if len(batch) == 0 {
			break
		}
		res := f.deliver(ctx, batch)
		report.Sent += res.Sent
		report.Rejected += res.Rejected
		report.Failed += res.Failed
		report.Undelivered = append(report.Undelivered, res.UndeliveredIDs...)
	}

	for {
		ev, ok := f.queue.TryDequeue()
		if !ok {
			break
		}
		report.Dropped++
		report.Undelivered = append(report.Undelivered, ev.ID)
	}
	if report.Dropped > 0 {
		f.dropped.Add(int64(report.Dropped))
		f.cfg.Metrics.IncrementCounter(MetricEventsDropped, int64(report.Dropped))
		f.cfg.Logger.Error("dropping events at shutdown", "count", report.Dropped, "error", ctx.Err())
	}
	f.updateDepth()

	report.Duration = time.Since(start)
	f.cfg.Logger.Info("event pipeline drained",
		"sent", report.Sent,
		"rejected", report.Rejected,
		"failed", report.Failed,
		"dropped", report.Dropped,
		"duration", report.Duration)
	return report
}

// deliver sends one batch and accounts for every event in it. It never
// panics and never returns early; failures are logged and reported.
func (f *Flusher) deliver(ctx context.Context, batch []Event) BatchResult {
	start := time.Now()

	sendCtx, cancel := context.WithTimeout(ctx, f.cfg.SendTimeout)
	res, err := f.send(sendCtx, batch)
	cancel()

	result := Classify(batch, res, err)
	result.Duration = time.Since(start)

	f.batches.Add(1)
	f.sent.Add(int64(result.Sent))
	f.rejected.Add(int64(result.Rejected))
	f.failed.Add(int64(result.Failed))

	m := f.cfg.Metrics
	m.IncrementCounter(MetricBatchSent, 1)
	m.RecordDuration(MetricBatchDuration, result.Duration)
	if result.Sent > 0 {
		m.IncrementCounter(MetricEventsSent, int64(result.Sent))
	}
	if result.Rejected > 0 {
		m.IncrementCounter(MetricEventsRejected, int64(result.Rejected))
	}
	if result.Failed > 0 {
		m.IncrementCounter(MetricEventsFailed, int64(result.Failed))
	}

	for _, fl := range result.Rejections {
		f.cfg.Logger.Error("failed to send event", "id", fl.ID, "status", fl.Status, "message", fl.Message)
	}
	if result.Err != nil {
		m.IncrementCounter(MetricBatchErrors, 1)
		f.cfg.Logger.Error("failed to send batch",
			"events", result.EventCount,
			"undelivered", result.Failed,
			"error", result.Err)
		if f.cfg.OnError != nil {
			asyncErr := pkgerrors.NewAsyncError(pkgerrors.AsyncOpBatchSend, result.Err, result.UndeliveredIDs...)
			f.safeCallback("OnError", func() { f.cfg.OnError(asyncErr) })
		}
	} else {
		f.cfg.Logger.Debug("batch sent",
			"events", result.EventCount,
			"requests", result.Requests,
			"rejected", result.Rejected,
			"duration", result.Duration)
	}

	if len(result.Rejections) > 0 && f.cfg.OnPartialFailure != nil {
		pf := PartialFailure{BatchSize: len(batch), Errors: result.Rejections}
		f.safeCallback("OnPartialFailure", func() { f.cfg.OnPartialFailure(pf) })
	}
	if f.cfg.OnBatchResult != nil {
		f.safeCallback("OnBatchResult", func() { f.cfg.OnBatchResult(result) })
	}
	return result
}

func (f *Flusher) send(ctx context.Context, batch []Event) (res *SendResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("langfuse: panic while sending batch: %v", r)
		}
	}()
	return f.sender.Send(ctx, batch)
}

func (f *Flusher) safeCallback(name string, fn func()) {
	SafeCall(f.cfg.Logger, name, fn)
}

func (f *Flusher) updateDepth() {
	n := f.queue.Len()
	if f.cfg.Monitor != nil {
		f.cfg.Monitor.Update(n)
		return
	}
	f.cfg.Metrics.SetGauge(MetricQueueDepth, float64(n))
}

// Classify sorts every event of batch into sent, rejected or failed.
// Server verdicts for ids outside the batch are ignored.
func Classify(batch []Event, res *SendResult, err error) BatchResult {
	result := BatchResult{EventCount: len(batch), Err: err}

	if res == nil {
		result.Failed = len(batch)
		result.UndeliveredIDs = IDs(batch)
		return result
	}

	result.Requests = res.Requests
	result.Response = res.Response

	inBatch := make(map[string]bool, len(batch))
	for _, ev := range batch {
		inBatch[ev.ID] = true
	}
	for _, ev := range res.Undelivered {
		if inBatch[ev.ID] {
			inBatch[ev.ID] = false
			result.UndeliveredIDs = append(result.UndeliveredIDs, ev.ID)
		}
	}
	for _, fl := range res.Response.Errors {
		if inBatch[fl.ID] {
			inBatch[fl.ID] = false
			result.Rejections = append(result.Rejections, fl)
		}
	}

	result.Failed = len(result.UndeliveredIDs)
	result.Rejected = len(result.Rejections)
	result.Sent = len(batch) - result.Failed - result.Rejected
	return result
}
