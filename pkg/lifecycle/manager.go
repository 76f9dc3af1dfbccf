// Package lifecycle tracks the state of a client from creation to shutdown.
//
// A Manager moves through Active, ShuttingDown and Closed exactly once. It can
// also warn when a client sits idle for a long time without being shut down,
// which usually means queued events will be lost when the process exits.
package lifecycle

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Logger receives the idle warning. *slog.Logger satisfies it.
type Logger interface {
	Warn(msg string, args ...any)
}

// Metrics is a minimal metrics interface.
type Metrics interface {
	IncrementCounter(name string, value int64)
	SetGauge(name string, value float64)
	RecordDuration(name string, d time.Duration)
}

// ErrAlreadyClosed is returned by BeginShutdown after the first call.
var ErrAlreadyClosed = errors.New("lifecycle: already closed or shutting down")

// State is the lifecycle state of a client.
type State int32

const (
	// StateActive accepts events.
	StateActive State = iota

	// StateShuttingDown rejects new events while the queue drains.
	StateShuttingDown

	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateShuttingDown:
		return "shutting_down"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config configures a Manager.
type Config struct {
	// IdleWarningDuration logs a warning once when no activity is recorded
	// for this long. Zero disables the check.
	IdleWarningDuration time.Duration

	Logger  Logger
	Metrics Metrics

	// OnStateChange is called after every transition.
	OnStateChange func(from, to State)
}

// Stats is a snapshot of a Manager.
type Stats struct {
	State        State
	CreatedAt    time.Time
	LastActivity time.Time
	Uptime       time.Duration
	IdleDuration time.Duration
}

// Manager tracks client state and activity.
type Manager struct {
	state        atomic.Int32
	createdAt    time.Time
	lastActivity atomic.Int64 // unix nanos

	stop chan struct{}
	wg   sync.WaitGroup

	idleWarning  time.Duration
	warningFired atomic.Bool
	logger       Logger
	metrics      Metrics

	onStateChange func(from, to State)
}

// NewManager returns an active manager. A nil cfg is allowed.
func NewManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = &Config{}
	}
	now := time.Now()
	m := &Manager{
		createdAt:     now,
		stop:          make(chan struct{}),
		idleWarning:   cfg.IdleWarningDuration,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		onStateChange: cfg.OnStateChange,
	}
	m.state.Store(int32(StateActive))
	m.lastActivity.Store(now.UnixNano())

	if m.idleWarning > 0 && m.logger != nil {
		m.wg.Add(1)
		go m.idleDetector()
	}
	if m.metrics != nil {
		m.metrics.IncrementCounter("langfuse.client.created", 1)
	}
	return m
}

func (m *Manager) idleDetector() {
	defer m.wg.Done()

	interval := m.idleWarning / 2
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			idle := m.IdleDuration()
			if idle <= m.idleWarning || !m.warningFired.CompareAndSwap(false, true) {
				continue
			}
			m.logger.Warn("client idle without shutdown; queued events are lost if the process exits",
				"idle", idle.Round(time.Millisecond),
				"created_at", m.createdAt.Format(time.RFC3339))
			if m.metrics != nil {
				m.metrics.IncrementCounter("langfuse.client.idle_warning", 1)
			}
			return
		}
	}
}

// State returns the current state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// IsActive reports whether the client still accepts events.
func (m *Manager) IsActive() bool {
	return m.State() == StateActive
}

// RecordActivity marks the client as used now.
func (m *Manager) RecordActivity() {
	m.lastActivity.Store(time.Now().UnixNano())
}

func (m *Manager) LastActivity() time.Time {
	return time.Unix(0, m.lastActivity.Load())
}

func (m *Manager) Uptime() time.Duration {
	return time.Since(m.createdAt)
}

func (m *Manager) IdleDuration() time.Duration {
	return time.Since(m.LastActivity())
}

func (m *Manager) transition(from, to State) bool {
	if !m.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	if m.onStateChange != nil {
		m.onStateChange(from, to)
	}
	if m.metrics != nil {
		m.metrics.SetGauge("langfuse.client.state", float64(to))
	}
	return true
}

// BeginShutdown moves an active manager to ShuttingDown and stops the idle
// detector. Every later call returns ErrAlreadyClosed.
func (m *Manager) BeginShutdown() error {
	if !m.transition(StateActive, StateShuttingDown) {
		return ErrAlreadyClosed
	}
	close(m.stop)
	m.wg.Wait()

	if m.metrics != nil {
		m.metrics.IncrementCounter("langfuse.client.shutdown_initiated", 1)
		m.metrics.RecordDuration("langfuse.client.uptime", m.Uptime())
	}
	return nil
}

// CompleteShutdown moves the manager to Closed.
func (m *Manager) CompleteShutdown() {
	if m.transition(StateShuttingDown, StateClosed) && m.metrics != nil {
		m.metrics.IncrementCounter("langfuse.client.shutdown_complete", 1)
	}
}

// Stats returns a snapshot.
func (m *Manager) Stats() Stats {
	return Stats{
		State:        m.State(),
		CreatedAt:    m.createdAt,
		LastActivity: m.LastActivity(),
		Uptime:       m.Uptime(),
		IdleDuration: m.IdleDuration(),
	}
}
