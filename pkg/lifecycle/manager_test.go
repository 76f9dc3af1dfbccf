package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type warnRecorder struct {
	mu   sync.Mutex
	msgs []string
}

func (w *warnRecorder) Warn(msg string, _ ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msg)
}

func (w *warnRecorder) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.msgs)
}

type counterRecorder struct {
	mu       sync.Mutex
	counters map[string]int64
}

func (c *counterRecorder) IncrementCounter(name string, v int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counters == nil {
		c.counters = map[string]int64{}
	}
	c.counters[name] += v
}
func (c *counterRecorder) SetGauge(string, float64)             {}
func (c *counterRecorder) RecordDuration(string, time.Duration) {}

func (c *counterRecorder) get(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[name]
}

func TestManager_Transitions(t *testing.T) {
	var seen []string
	m := NewManager(&Config{OnStateChange: func(from, to State) {
		seen = append(seen, fmt.Sprintf("%s->%s", from, to))
	}})

	if m.State() != StateActive || !m.IsActive() {
		t.Fatalf("State() = %v, want active", m.State())
	}
	if err := m.BeginShutdown(); err != nil {
		t.Fatalf("BeginShutdown() error = %v", err)
	}
	if err := m.BeginShutdown(); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("second BeginShutdown() = %v, want ErrAlreadyClosed", err)
	}
	m.CompleteShutdown()
	m.CompleteShutdown()

	if m.State() != StateClosed {
		t.Errorf("State() = %v, want closed", m.State())
	}
	want := []string{"active->shutting_down", "shutting_down->closed"}
	if fmt.Sprint(seen) != fmt.Sprint(want) {
		t.Errorf("transitions = %v, want %v", seen, want)
	}
}

func TestManager_NilConfig(t *testing.T) {
	m := NewManager(nil)
	if err := m.BeginShutdown(); err != nil {
		t.Fatal(err)
	}
	m.CompleteShutdown()
}

func TestManager_IdleWarningFiresOnce(t *testing.T) {
	logger := &warnRecorder{}
	metrics := &counterRecorder{}
	m := NewManager(&Config{IdleWarningDuration: 20 * time.Millisecond, Logger: logger, Metrics: metrics})

	deadline := time.Now().Add(2 * time.Second)
	for logger.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	if got := logger.count(); got != 1 {
		t.Errorf("idle warnings = %d, want 1", got)
	}
	if got := metrics.get("langfuse.client.idle_warning"); got != 1 {
		t.Errorf("idle_warning counter = %d, want 1", got)
	}
	_ = m.BeginShutdown()
	m.CompleteShutdown()
	if got := metrics.get("langfuse.client.shutdown_complete"); got != 1 {
		t.Errorf("shutdown_complete counter = %d, want 1", got)
	}
}

func TestManager_ActivityPostponesWarning(t *testing.T) {
	logger := &warnRecorder{}
	m := NewManager(&Config{IdleWarningDuration: 200 * time.Millisecond, Logger: logger})
	for i := 0; i < 5; i++ {
		time.Sleep(20 * time.Millisecond)
		m.RecordActivity()
	}
	_ = m.BeginShutdown()
	if logger.count() != 0 {
		t.Errorf("warned while active")
	}
	if s := m.Stats(); s.State != StateShuttingDown || s.Uptime <= 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateActive:       "active",
		StateShuttingDown: "shutting_down",
		StateClosed:       "closed",
		State(9):          "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
