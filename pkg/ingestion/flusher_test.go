package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
)

// newTestFlusher returns a started flusher whose ticker never fires during a
// test, so cycles only run on Flush, a full batch or Shutdown.
func newTestFlusher(t *testing.T, p Poster, cfg FlusherConfig) *Flusher {
	t.Helper()
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = time.Hour
	}
	f := NewFlusher(NewQueue(0), NewSender(p, 0), cfg)
	f.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = f.Shutdown(ctx)
	})
	return f
}

func enqueueAll(t *testing.T, f *Flusher, events []Event) {
	t.Helper()
	for _, ev := range events {
		if err := f.Enqueue(context.Background(), ev); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}
}

func TestFlusher_DeliversEachEventOnce(t *testing.T) {
	poster := &fakePoster{}
	f := newTestFlusher(t, poster, FlusherConfig{BatchSize: 100})

	events := testEvents(t, 250)
	enqueueAll(t, f, events)
	if err := f.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	seen := poster.seen()
	for _, ev := range events {
		if seen[ev.ID] != 1 {
			t.Errorf("event %s posted %d times, want 1", ev.ID, seen[ev.ID])
		}
	}
	for i, batch := range poster.requests {
		if len(batch) > 100 {
			t.Errorf("request %d carried %d events, want <= 100", i, len(batch))
		}
	}

	stats := f.Stats()
	if stats.Sent != 250 || stats.Enqueued != 250 || stats.Pending != 0 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestFlusher_PreservesOrderWithinRequests(t *testing.T) {
	poster := &fakePoster{}
	f := newTestFlusher(t, poster, FlusherConfig{BatchSize: 1000})

	events := testEvents(t, 30)
	enqueueAll(t, f, events)
	if err := f.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if poster.requestCount() != 1 {
		t.Fatalf("requests = %d, want 1", poster.requestCount())
	}
	for i, ev := range poster.requests[0] {
		if ev.ID != events[i].ID {
			t.Fatalf("position %d = %s, want %s", i, ev.ID, events[i].ID)
		}
	}
}

func TestFlusher_FullBatchTriggersCycle(t *testing.T) {
	poster := &fakePoster{}
	results := make(chan BatchResult, 10)
	f := newTestFlusher(t, poster, FlusherConfig{
		BatchSize:     10,
		OnBatchResult: func(r BatchResult) { results <- r },
	})

	enqueueAll(t, f, testEvents(t, 10))
	select {
	case r := <-results:
		if r.Sent != 10 || !r.Success() {
			t.Errorf("BatchResult = %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("full batch was not sent without an explicit flush")
	}
}

func TestFlusher_IntervalTriggersCycle(t *testing.T) {
	poster := &fakePoster{}
	results := make(chan BatchResult, 10)
	f := newTestFlusher(t, poster, FlusherConfig{
		FlushInterval: 10 * time.Millisecond,
		OnBatchResult: func(r BatchResult) { results <- r },
	})

	enqueueAll(t, f, testEvents(t, 3))
	select {
	case r := <-results:
		if r.EventCount != 3 {
			t.Errorf("EventCount = %d, want 3", r.EventCount)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("interval did not trigger a flush")
	}
}

func TestFlusher_KeepsDeliveringAfterFailure(t *testing.T) {
	poster := (&fakePoster{}).then(statusError(500))

	var asyncErrs []*pkgerrors.AsyncError
	var mu sync.Mutex
	f := newTestFlusher(t, poster, FlusherConfig{
		OnError: func(err error) {
			var ae *pkgerrors.AsyncError
			if errors.As(err, &ae) {
				mu.Lock()
				asyncErrs = append(asyncErrs, ae)
				mu.Unlock()
			}
		},
	})

	first := testEvents(t, 10)
	enqueueAll(t, f, first)
	err := f.Flush(context.Background())
	if !errors.Is(err, &pkgerrors.APIError{StatusCode: 500}) {
		t.Fatalf("Flush() error = %v, want 500", err)
	}

	second := testEvents(t, 10)
	enqueueAll(t, f, second)
	if err := f.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() after recovery error = %v", err)
	}

	seen := poster.seen()
	for _, ev := range second {
		if seen[ev.ID] != 1 {
			t.Errorf("event %s posted %d times after recovery", ev.ID, seen[ev.ID])
		}
	}

	stats := f.Stats()
	if stats.Failed != 10 || stats.Sent != 10 {
		t.Errorf("Stats() = %+v, want 10 failed and 10 sent", stats)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(asyncErrs) != 1 {
		t.Fatalf("OnError calls = %d, want 1", len(asyncErrs))
	}
	if asyncErrs[0].Operation != pkgerrors.AsyncOpBatchSend || len(asyncErrs[0].EventIDs) != 10 {
		t.Errorf("AsyncError = %+v", asyncErrs[0])
	}
}

func TestFlusher_PartialFailure(t *testing.T) {
	poster := (&fakePoster{}).then(rejectEvery)
	logger := &recordingLogger{}

	var got []PartialFailure
	var results []BatchResult
	f := newTestFlusher(t, poster, FlusherConfig{
		Logger:           logger,
		OnPartialFailure: func(pf PartialFailure) { got = append(got, pf) },
		OnBatchResult:    func(r BatchResult) { results = append(results, r) },
	})

	events := testEvents(t, 6)
	enqueueAll(t, f, events)
	if err := f.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v, want nil for partial failure", err)
	}

	if len(got) != 1 || got[0].BatchSize != 6 || len(got[0].Errors) != 3 {
		t.Fatalf("partial failures = %+v", got)
	}
	if len(results) != 1 {
		t.Fatalf("batch results = %d, want 1", len(results))
	}
	r := results[0]
	if r.Sent != 3 || r.Rejected != 3 || r.Success() {
		t.Errorf("BatchResult = %+v", r)
	}
	for i, ev := range events {
		o, ok := r.Response.Outcome(ev.ID)
		if !ok || o.OK != (i%2 == 0) {
			t.Errorf("Outcome(%d) = %+v, %v", i, o, ok)
		}
	}

	logged := logger.find("failed to send event")
	if len(logged) != 3 {
		t.Fatalf("logged %d rejections, want 3", len(logged))
	}
	if argValue(logged[0].args, "id") != events[1].ID || argValue(logged[0].args, "status") != 400 {
		t.Errorf("rejection log args = %v", logged[0].args)
	}
}

func TestFlusher_ShutdownDrainsEverything(t *testing.T) {
	for _, m := range []int{1, 10, 100, 1000} {
		t.Run(fmt.Sprintf("%d events", m), func(t *testing.T) {
			poster := &fakePoster{}
			f := NewFlusher(NewQueue(0), NewSender(poster, 0), FlusherConfig{FlushInterval: time.Hour})
			f.Start()

			enqueueAll(t, f, testEvents(t, m))
			report, err := f.Shutdown(context.Background())
			if err != nil {
				t.Fatalf("Shutdown() error = %v", err)
			}

			stats := f.Stats()
			if int(stats.Sent)+int(stats.Dropped) != m {
				t.Errorf("sent %d + dropped %d != %d", stats.Sent, stats.Dropped, m)
			}
			if report.Dropped != 0 || len(report.Undelivered) != 0 {
				t.Errorf("report = %+v", report)
			}
			if len(poster.seen()) != m {
				t.Errorf("server saw %d events, want %d", len(poster.seen()), m)
			}
		})
	}
}

func TestFlusher_ShutdownDeadlineDropsAndReports(t *testing.T) {
	blocking := PosterFunc(func(ctx context.Context, _ []byte) (int, []byte, error) {
		<-ctx.Done()
		return 0, nil, ctx.Err()
	})
	logger := &recordingLogger{}
	f := NewFlusher(NewQueue(0), NewSender(blocking, 0), FlusherConfig{
		BatchSize:     100,
		FlushInterval: time.Hour,
		Logger:        logger,
	})
	f.Start()

	events := testEvents(t, 250)
	enqueueAll(t, f, events)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := f.Shutdown(ctx)
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Shutdown() took %v, want it bounded by the deadline", elapsed)
	}

	shutdownErr, ok := pkgerrors.AsShutdownError(err)
	if !ok {
		t.Fatalf("Shutdown() error = %v, want *ShutdownError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want deadline cause", err)
	}
	if shutdownErr.Dropped == 0 || len(shutdownErr.DroppedIDs) != shutdownErr.Dropped {
		t.Errorf("ShutdownError = %+v", shutdownErr)
	}

	stats := f.Stats()
	if stats.Sent != 0 {
		t.Errorf("Sent = %d, want 0", stats.Sent)
	}
	if stats.Failed+stats.Dropped != 250 {
		t.Errorf("failed %d + dropped %d != 250", stats.Failed, stats.Dropped)
	}
	if stats.Enqueued != stats.Sent+stats.Rejected+stats.Failed+stats.Dropped {
		t.Errorf("counters do not add up: %+v", stats)
	}
	if len(logger.find("dropping events at shutdown")) != 1 {
		t.Error("drop not logged")
	}
}

func TestFlusher_ShutdownTwice(t *testing.T) {
	f := NewFlusher(NewQueue(0), NewSender(&fakePoster{}, 0), FlusherConfig{})
	if _, err := f.Shutdown(context.Background()); err != nil {
		t.Fatalf("first Shutdown() error = %v", err)
	}
	if _, err := f.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
	select {
	case <-f.Done():
	default:
		t.Error("Done() not closed after Shutdown")
	}
}

func TestFlusher_RejectsWorkAfterShutdown(t *testing.T) {
	f := NewFlusher(NewQueue(0), NewSender(&fakePoster{}, 0), FlusherConfig{})
	f.Start()
	if _, err := f.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}

	ev := testEvents(t, 1)[0]
	if err := f.Enqueue(context.Background(), ev); !errors.Is(err, pkgerrors.ErrQueueClosed) {
		t.Errorf("Enqueue() error = %v, want ErrQueueClosed", err)
	}
	if err := f.Flush(context.Background()); !errors.Is(err, pkgerrors.ErrQueueClosed) {
		t.Errorf("Flush() error = %v, want ErrQueueClosed", err)
	}
	if got := f.Stats().Enqueued; got != 0 {
		t.Errorf("Enqueued = %d, want 0", got)
	}
}

func TestFlusher_RecoversFromPanics(t *testing.T) {
	var calls atomic.Int32
	poster := PosterFunc(func(context.Context, []byte) (int, []byte, error) {
		if calls.Add(1) == 1 {
			panic("poster exploded")
		}
		return 207, []byte(`{"successes":[],"errors":[]}`), nil
	})

	logger := &recordingLogger{}
	f := newTestFlusher(t, poster, FlusherConfig{
		Logger:        logger,
		OnBatchResult: func(BatchResult) { panic("callback exploded") },
	})

	enqueueAll(t, f, testEvents(t, 2))
	err := f.Flush(context.Background())
	if err == nil || !strings.Contains(err.Error(), "panic") {
		t.Fatalf("Flush() error = %v, want recovered panic", err)
	}

	enqueueAll(t, f, testEvents(t, 2))
	if err := f.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() after panic error = %v", err)
	}
	if f.Stats().Failed != 2 || f.Stats().Sent != 2 {
		t.Errorf("Stats() = %+v", f.Stats())
	}
	if len(logger.find("callback panicked")) != 2 {
		t.Errorf("callback panics logged = %d, want 2", len(logger.find("callback panicked")))
	}
}

func TestFlusher_FlushBeforeStartHonorsContext(t *testing.T) {
	f := NewFlusher(NewQueue(0), NewSender(&fakePoster{}, 0), FlusherConfig{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := f.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Flush() error = %v, want DeadlineExceeded", err)
	}
	_, _ = f.Shutdown(context.Background())
}

func TestFlusher_Metrics(t *testing.T) {
	metrics := newGaugeRecorder()
	poster := (&fakePoster{}).then(rejectEvery)
	f := newTestFlusher(t, poster, FlusherConfig{Metrics: metrics})

	enqueueAll(t, f, testEvents(t, 4))
	if err := f.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	checks := map[string]int64{
		MetricEventsEnqueued: 4,
		MetricEventsSent:     2,
		MetricEventsRejected: 2,
		MetricBatchSent:      1,
	}
	for name, want := range checks {
		if got := metrics.count(name); got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}
	if got := metrics.gauge(MetricQueueDepth); got != 0 {
		t.Errorf("queue depth = %v, want 0", got)
	}
}

func TestClassify_IgnoresForeignIDs(t *testing.T) {
	batch := testEvents(t, 3)
	res := &SendResult{Response: Response{
		Errors: []Failure{{ID: "not-ours", Status: 400}, {ID: batch[0].ID, Status: 400}},
	}}
	r := Classify(batch, res, nil)
	if r.Rejected != 1 || r.Sent != 2 || r.Failed != 0 {
		t.Errorf("Classify() = %+v", r)
	}
}
