package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/jdziat/langfuse-ingest/pkg/client"
)

// ScopeName is the instrumentation scope used when NewOTel gets a nil meter.
const ScopeName = "github.com/jdziat/langfuse-ingest"

var _ client.Metrics = (*OTel)(nil)

// OTel records client metrics on an OpenTelemetry meter. Counters become
// Int64Counters, durations Float64Histograms in seconds and gauges
// Float64Gauges.
type OTel struct {
	meter   metric.Meter
	onError func(name string, err error)

	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
	gauges     map[string]metric.Float64Gauge
}

// OTelOption configures an OTel adapter.
type OTelOption func(*OTel)

// WithInstrumentErrorHandler sets the function called when an instrument
// cannot be created. The metric is skipped.
func WithInstrumentErrorHandler(fn func(name string, err error)) OTelOption {
	return func(o *OTel) {
		o.onError = fn
	}
}

// NewOTel returns an adapter recording on meter, or on the global meter
// provider when meter is nil.
func NewOTel(meter metric.Meter, opts ...OTelOption) *OTel {
	if meter == nil {
		meter = otel.Meter(ScopeName)
	}
	o := &OTel{
		meter:      meter,
		onError:    func(string, error) {},
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
		gauges:     make(map[string]metric.Float64Gauge),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// IncrementCounter implements client.Metrics.
func (o *OTel) IncrementCounter(name string, value int64) {
	o.mu.Lock()
	c, ok := o.counters[name]
	if !ok {
		var err error
		c, err = o.meter.Int64Counter(name)
		if err != nil {
			o.mu.Unlock()
			o.onError(name, err)
			return
		}
		o.counters[name] = c
	}
	o.mu.Unlock()
	c.Add(context.Background(), value)
}

// RecordDuration implements client.Metrics.
func (o *OTel) RecordDuration(name string, d time.Duration) {
	o.mu.Lock()
	h, ok := o.histograms[name]
	if !ok {
		var err error
		h, err = o.meter.Float64Histogram(name, metric.WithUnit("s"))
		if err != nil {
			o.mu.Unlock()
			o.onError(name, err)
			return
		}
		o.histograms[name] = h
	}
	o.mu.Unlock()
	h.Record(context.Background(), d.Seconds())
}

// SetGauge implements client.Metrics.
func (o *OTel) SetGauge(name string, value float64) {
	o.mu.Lock()
	g, ok := o.gauges[name]
	if !ok {
		var err error
		g, err = o.meter.Float64Gauge(name)
		if err != nil {
			o.mu.Unlock()
			o.onError(name, err)
			return
		}
		o.gauges[name] = g
	}
	o.mu.Unlock()
	g.Record(context.Background(), value)
}
