package ingestion

import (
	"context"
	"sync"

	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
)

// DefaultQueueCapacity is the number of events a Queue buffers when no
// capacity is given.
const DefaultQueueCapacity = 50_000

// Queue is a FIFO of events between producers and the flusher. It is safe
// for any number of concurrent producers. The buffer is a channel. Enqueue
// holds a read lock for the whole call, including while it waits for room, so
// Close (which takes the write lock after closing done) returns only once
// every in-flight Enqueue has either delivered its event or seen done. No
// event is accepted after Close returns.
type Queue struct {
	ch   chan Event
	done chan struct{}

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewQueue returns a queue holding up to capacity events.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		ch:   make(chan Event, capacity),
		done: make(chan struct{}),
	}
}

// Enqueue adds ev to the queue. When the queue is full the call waits for
// space. It returns errors.ErrQueueClosed once Close was called and ctx's
// error if ctx ends first. An event is either accepted or an error is
// returned; nothing is dropped silently.
func (q *Queue) Enqueue(ctx context.Context, ev Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return pkgerrors.ErrQueueClosed
	}

	select {
	case q.ch <- ev:
		return nil
	default:
	}

	select {
	case q.ch <- ev:
		return nil
	case <-q.done:
		return pkgerrors.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryDequeue removes the oldest event without waiting.
func (q *Queue) TryDequeue() (Event, bool) {
	select {
	case ev := <-q.ch:
		return ev, true
	default:
		return Event{}, false
	}
}

// DequeueBatch removes up to n events without waiting.
func (q *Queue) DequeueBatch(n int) []Event {
	var out []Event
	for len(out) < n {
		ev, ok := q.TryDequeue()
		if !ok {
			break
		}
		out = append(out, ev)
	}
	return out
}

// Len returns the number of buffered events.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return cap(q.ch) }

// Close stops the queue from accepting events. Producers blocked on a full
// queue are released with errors.ErrQueueClosed. Buffered events stay
// available to TryDequeue.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
	})
}

// Closed reports whether Close was called.
func (q *Queue) Closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}
