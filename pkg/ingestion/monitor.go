package ingestion

import (
	"sync/atomic"
	"time"
)

// BackpressureLevel indicates how full the event queue is.
type BackpressureLevel int

const (
	// BackpressureNone indicates the queue is operating normally.
	BackpressureNone BackpressureLevel = iota
	// BackpressureWarning indicates the queue is filling up.
	BackpressureWarning
	// BackpressureCritical indicates the queue is nearly full.
	BackpressureCritical
	// BackpressureFull indicates producers are about to wait for space.
	BackpressureFull
)

func (l BackpressureLevel) String() string {
	switch l {
	case BackpressureNone:
		return "none"
	case BackpressureWarning:
		return "warning"
	case BackpressureCritical:
		return "critical"
	case BackpressureFull:
		return "full"
	default:
		return "unknown"
	}
}

// BackpressureThreshold defines when levels are entered, in percent of
// capacity.
type BackpressureThreshold struct {
	WarningPercent  float64
	CriticalPercent float64
	FullPercent     float64
}

// DefaultBackpressureThreshold returns 50/80/95 percent.
func DefaultBackpressureThreshold() BackpressureThreshold {
	return BackpressureThreshold{
		WarningPercent:  50.0,
		CriticalPercent: 80.0,
		FullPercent:     95.0,
	}
}

// QueueState is a snapshot of queue occupancy.
type QueueState struct {
	Size        int
	Capacity    int
	Level       BackpressureLevel
	PercentFull float64
	Timestamp   time.Time
}

// BackpressureCallback is called when the level changes.
type BackpressureCallback func(state QueueState)

// QueueMonitor tracks queue occupancy and reports level transitions. It
// never drops events; a full queue makes producers wait.
type QueueMonitor struct {
	threshold BackpressureThreshold
	capacity  int
	callback  BackpressureCallback
	logger    Logger
	metrics   Metrics

	level        atomic.Int32
	stateChanges atomic.Int64
}

// QueueMonitorConfig configures a QueueMonitor.
type QueueMonitorConfig struct {
	Threshold      BackpressureThreshold
	Capacity       int
	OnBackpressure BackpressureCallback
	Logger         Logger
	Metrics        Metrics
}

// NewQueueMonitor returns a monitor. Missing thresholds take their defaults.
func NewQueueMonitor(cfg QueueMonitorConfig) *QueueMonitor {
	def := DefaultBackpressureThreshold()
	th := cfg.Threshold
	if th.WarningPercent <= 0 {
		th.WarningPercent = def.WarningPercent
	}
	if th.CriticalPercent <= 0 {
		th.CriticalPercent = def.CriticalPercent
	}
	if th.FullPercent <= 0 {
		th.FullPercent = def.FullPercent
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultQueueCapacity
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	return &QueueMonitor{
		threshold: th,
		capacity:  cfg.Capacity,
		callback:  cfg.OnBackpressure,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

// Update records the current queue size and returns the resulting level.
func (m *QueueMonitor) Update(size int) BackpressureLevel {
	pct := float64(size) / float64(m.capacity) * 100.0

	var level BackpressureLevel
	switch {
	case pct >= m.threshold.FullPercent:
		level = BackpressureFull
	case pct >= m.threshold.CriticalPercent:
		level = BackpressureCritical
	case pct >= m.threshold.WarningPercent:
		level = BackpressureWarning
	}

	m.metrics.SetGauge(MetricQueueDepth, float64(size))

	old := BackpressureLevel(m.level.Swap(int32(level)))
	if old == level {
		return level
	}

	m.stateChanges.Add(1)
	m.metrics.SetGauge(MetricQueueLevel, float64(level))
	state := QueueState{
		Size:        size,
		Capacity:    m.capacity,
		Level:       level,
		PercentFull: pct,
		Timestamp:   time.Now(),
	}
	if level > BackpressureNone {
		m.logger.Warn("event queue backpressure", "from", old.String(), "to", level.String(),
			"size", size, "capacity", m.capacity)
	} else {
		m.logger.Info("event queue backpressure cleared", "size", size, "capacity", m.capacity)
	}
	if m.callback != nil {
		SafeCall(m.logger, "OnBackpressure", func() { m.callback(state) })
	}
	return level
}

// Level returns the most recent level.
func (m *QueueMonitor) Level() BackpressureLevel {
	return BackpressureLevel(m.level.Load())
}

// StateChanges returns how many level transitions were observed.
func (m *QueueMonitor) StateChanges() int64 {
	return m.stateChanges.Load()
}
