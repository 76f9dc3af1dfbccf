package metrics

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jdziat/langfuse-ingest/pkg/client"
)

var _ client.Metrics = (*Prometheus)(nil)

// Prometheus records client metrics as Prometheus collectors registered on a
// Registerer. Dotted names are mapped to Prometheus names:
// "langfuse.events.sent" becomes langfuse_events_sent_total for a counter,
// langfuse_batch_duration_seconds for a duration.
type Prometheus struct {
	reg     prometheus.Registerer
	buckets []float64

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	histograms map[string]prometheus.Histogram
	gauges     map[string]prometheus.Gauge
}

// PrometheusOption configures a Prometheus adapter.
type PrometheusOption func(*Prometheus)

// WithBuckets sets the histogram buckets used for durations, in seconds.
func WithBuckets(buckets []float64) PrometheusOption {
	return func(p *Prometheus) {
		p.buckets = buckets
	}
}

// NewPrometheus returns an adapter registering on reg, or on
// prometheus.DefaultRegisterer when reg is nil.
func NewPrometheus(reg prometheus.Registerer, opts ...PrometheusOption) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		reg:        reg,
		buckets:    prometheus.DefBuckets,
		counters:   make(map[string]prometheus.Counter),
		histograms: make(map[string]prometheus.Histogram),
		gauges:     make(map[string]prometheus.Gauge),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IncrementCounter implements client.Metrics.
func (p *Prometheus) IncrementCounter(name string, value int64) {
	if value < 0 {
		return
	}
	p.mu.Lock()
	c, ok := p.counters[name]
	if !ok {
		c = register(p.reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: promName(name, "_total"),
			Help: "Langfuse client counter " + name + ".",
		}))
		p.counters[name] = c
	}
	p.mu.Unlock()
	c.Add(float64(value))
}

// RecordDuration implements client.Metrics.
func (p *Prometheus) RecordDuration(name string, d time.Duration) {
	p.mu.Lock()
	h, ok := p.histograms[name]
	if !ok {
		h = register(p.reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    promName(name, "_seconds"),
			Help:    "Langfuse client duration " + name + " in seconds.",
			Buckets: p.buckets,
		}))
		p.histograms[name] = h
	}
	p.mu.Unlock()
	h.Observe(d.Seconds())
}

// SetGauge implements client.Metrics.
func (p *Prometheus) SetGauge(name string, value float64) {
	p.mu.Lock()
	g, ok := p.gauges[name]
	if !ok {
		g = register(p.reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: promName(name, ""),
			Help: "Langfuse client gauge " + name + ".",
		}))
		p.gauges[name] = g
	}
	p.mu.Unlock()
	g.Set(value)
}

// register registers c, returning the collector already registered under
// the same name if there is one. Other registration errors leave c
// unregistered but usable.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	err := reg.Register(c)
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing
		}
	}
	return c
}

// promName maps a dotted metric name to a valid Prometheus name and appends
// suffix unless the name already ends with it.
func promName(name, suffix string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if suffix != "" && !strings.HasSuffix(out, suffix) {
		out += suffix
	}
	return out
}
