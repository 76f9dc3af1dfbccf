package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jdziat/langfuse-ingest/pkg/api/datasets"
	"github.com/jdziat/langfuse-ingest/pkg/api/health"
	"github.com/jdziat/langfuse-ingest/pkg/api/observations"
	"github.com/jdziat/langfuse-ingest/pkg/api/prompts"
	"github.com/jdziat/langfuse-ingest/pkg/api/scores"
	"github.com/jdziat/langfuse-ingest/pkg/api/sessions"
	"github.com/jdziat/langfuse-ingest/pkg/api/traces"
	pkgconfig "github.com/jdziat/langfuse-ingest/pkg/config"
	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
	pkghttp "github.com/jdziat/langfuse-ingest/pkg/http"
	"github.com/jdziat/langfuse-ingest/pkg/ingestion"
	pkglifecycle "github.com/jdziat/langfuse-ingest/pkg/lifecycle"
	"github.com/jdziat/langfuse-ingest/pkg/logging"
	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// Version is the SDK version sent in the User-Agent header.
const Version = "0.4.0"

// MetricErrors counts errors handed to the error handler.
const MetricErrors = "langfuse.errors"

// ClientState is the lifecycle state of a Client.
type ClientState = pkglifecycle.State

// Client state constants.
const (
	ClientStateActive       = pkglifecycle.StateActive
	ClientStateShuttingDown = pkglifecycle.StateShuttingDown
	ClientStateClosed       = pkglifecycle.StateClosed
)

// Client is the Langfuse client. It is safe for concurrent use.
type Client struct {
	config    *Config
	http      *httpClient
	logger    StructuredLogger
	metrics   Metrics
	lifecycle *pkglifecycle.Manager

	sender  *ingestion.Sender
	queue   *ingestion.Queue
	monitor *ingestion.QueueMonitor
	flusher *ingestion.Flusher // nil in immediate mode

	// Immediate mode counters. Batch mode reads the flusher's.
	sent, rejected, failed, batches atomic.Int64

	traces       *traces.Client
	observations *observations.Client
	scores       *scores.Client
	sessions     *sessions.Client
	prompts      *prompts.Client
	datasets     *datasets.Client
	health       *health.Client
}

// New creates a new Langfuse client with the given credentials and options.
func New(publicKey, secretKey string, opts ...ConfigOption) (*Client, error) {
	cfg := &Config{
		PublicKey: publicKey,
		SecretKey: secretKey,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return NewWithConfig(cfg)
}

// NewFromSettings creates a client from settings loaded by config.Load.
// opts are applied after the settings and override them.
func NewFromSettings(s *pkgconfig.Settings, opts ...ConfigOption) (*Client, error) {
	return New("", "", append([]ConfigOption{WithSettings(s)}, opts...)...)
}

// NewWithConfig creates a new Langfuse client with the given configuration.
// cfg is copied; later changes to it have no effect on the client.
func NewWithConfig(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilRequest
	}
	c := *cfg
	cfg = &c
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := resolveLogger(cfg)
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}

	client := &Client{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
	}
	client.http = newHTTPClient(cfg, logger, buildHooks(cfg, logger))
	client.lifecycle = pkglifecycle.NewManager(&pkglifecycle.Config{
		IdleWarningDuration: cfg.IdleWarningDuration,
		Logger:              logger,
		Metrics:             cfg.Metrics,
	})

	client.sender = ingestion.NewSender(client.http, cfg.MaxBatchBytes)
	if cfg.BatchMode() {
		client.queue = ingestion.NewQueue(cfg.QueueCapacity)
		client.monitor = ingestion.NewQueueMonitor(ingestion.QueueMonitorConfig{
			Capacity:       cfg.QueueCapacity,
			OnBackpressure: cfg.OnBackpressure,
			Logger:         logger,
			Metrics:        metrics,
		})
		client.flusher = ingestion.NewFlusher(client.queue, client.sender, ingestion.FlusherConfig{
			BatchSize:        cfg.BatchSize,
			FlushInterval:    cfg.FlushInterval,
			SendTimeout:      cfg.SendTimeout,
			Logger:           logger,
			Metrics:          metrics,
			Monitor:          client.monitor,
			OnBatchResult:    cfg.OnBatchResult,
			OnPartialFailure: cfg.OnPartialFailure,
			OnError:          client.handleError,
		})
		client.flusher.Start()
	}

	client.traces = traces.New(client.http)
	client.observations = observations.New(client.http)
	client.scores = scores.New(client.http)
	client.sessions = sessions.New(client.http)
	client.prompts = prompts.New(client.http, cfg.PromptCacheTTL)
	client.datasets = datasets.New(client.http)
	client.health = health.New(client.http)

	logger.Debug("langfuse client started", "config", cfg.String())
	return client, nil
}

// Ingest delivers one event.
//
// In batch mode (the default) Ingest only places ev on the queue and returns
// nil once it is queued. It blocks while the queue is full and returns
// ctx.Err() if ctx ends first. Delivery happens later on the flusher
// goroutine, and delivery failures are never returned here: they go to
// Config.ErrorHandler, Config.OnBatchResult, the logger and the metrics.
// Call Flush or Shutdown to wait for delivery.
//
// In immediate mode Ingest sends ev in a batch of one before returning and
// returns transport failures as *APIError and undecodable responses as
// *ProtocolError. A server-side rejection of ev alone is a partial failure:
// it is logged and passed to Config.OnPartialFailure, not returned.
//
// In both modes an invalid event is rejected with a *ValidationError and an
// event too large for one request with an error wrapping ErrEventTooLarge,
// before anything is queued or sent.
func (c *Client) Ingest(ctx context.Context, ev ingestion.Event) error {
	if !c.lifecycle.IsActive() {
		return ErrClientClosed
	}
	if err := c.check(ev); err != nil {
		return err
	}
	c.lifecycle.RecordActivity()

	if c.flusher == nil {
		_, err := c.send(ctx, []ingestion.Event{ev})
		return err
	}
	if err := c.flusher.Enqueue(ctx, ev); err != nil {
		if errors.Is(err, pkgerrors.ErrQueueClosed) {
			return ErrClientClosed
		}
		return err
	}
	return nil
}

// IngestTrace delivers every event collected by tr, in order. In immediate
// mode they are sent together; in batch mode each is queued.
func (c *Client) IngestTrace(ctx context.Context, tr *ingestion.Trace) error {
	if tr == nil {
		return ErrNilRequest
	}
	events := tr.Events()
	if c.flusher == nil {
		if !c.lifecycle.IsActive() {
			return ErrClientClosed
		}
		for _, ev := range events {
			if err := c.check(ev); err != nil {
				return fmt.Errorf("langfuse: ingesting trace %s: %w", tr.ID(), err)
			}
		}
		c.lifecycle.RecordActivity()
		_, err := c.send(ctx, events)
		return err
	}
	for _, ev := range events {
		if err := c.Ingest(ctx, ev); err != nil {
			return fmt.Errorf("langfuse: ingesting trace %s: %w", tr.ID(), err)
		}
	}
	return nil
}

// check rejects events that could never be delivered: hand-built events
// that fail validation, and events too large for one request.
func (c *Client) check(ev ingestion.Event) error {
	if err := ingestion.Validate(ev); err != nil {
		return err
	}
	return ingestion.CheckSize(ev, c.config.MaxBatchBytes)
}

// NewTrace starts a trace collector. The configured Environment and Release
// fill the body when it leaves them empty.
func (c *Client) NewTrace(body ingestion.TraceBody) (*ingestion.Trace, error) {
	if body.Environment == "" {
		body.Environment = c.config.Environment
	}
	if body.Release == "" {
		body.Release = c.config.Release
	}
	return ingestion.NewTrace(body)
}

// Send posts events synchronously in both modes, bypassing the queue. The
// batch is split as needed; the merged server response is returned together
// with any chunk errors. Rejected events are reported in the response, not
// as an error.
func (c *Client) Send(ctx context.Context, events ...ingestion.Event) (*ingestion.Response, error) {
	if !c.lifecycle.IsActive() {
		return nil, ErrClientClosed
	}
	c.lifecycle.RecordActivity()
	return c.send(ctx, events)
}

func (c *Client) send(ctx context.Context, events []ingestion.Event) (*ingestion.Response, error) {
	res, err := c.sender.Send(ctx, events)
	if errors.Is(err, pkgerrors.ErrEmptyBatch) {
		return nil, err
	}
	result := ingestion.Classify(events, res, err)
	c.report(result)
	if res == nil {
		return nil, err
	}
	return &res.Response, err
}

// report mirrors the flusher's bookkeeping for synchronous sends.
func (c *Client) report(result ingestion.BatchResult) {
	c.batches.Add(1)
	c.sent.Add(int64(result.Sent))
	c.rejected.Add(int64(result.Rejected))
	c.failed.Add(int64(result.Failed))

	c.metrics.IncrementCounter(ingestion.MetricBatchSent, 1)
	if result.Sent > 0 {
		c.metrics.IncrementCounter(ingestion.MetricEventsSent, int64(result.Sent))
	}
	if result.Rejected > 0 {
		c.metrics.IncrementCounter(ingestion.MetricEventsRejected, int64(result.Rejected))
	}
	if result.Failed > 0 {
		c.metrics.IncrementCounter(ingestion.MetricEventsFailed, int64(result.Failed))
		c.metrics.IncrementCounter(ingestion.MetricBatchErrors, 1)
	}

	for _, f := range result.Rejections {
		c.logger.Error("failed to send event", "id", f.ID, "status", f.Status, "message", f.Message)
	}
	if len(result.Rejections) > 0 && c.config.OnPartialFailure != nil {
		pf := ingestion.PartialFailure{BatchSize: result.EventCount, Errors: result.Rejections}
		ingestion.SafeCall(c.logger, "OnPartialFailure", func() { c.config.OnPartialFailure(pf) })
	}
	if c.config.OnBatchResult != nil {
		ingestion.SafeCall(c.logger, "OnBatchResult", func() { c.config.OnBatchResult(result) })
	}
}

// Flush delivers everything queued so far and waits for it. It returns the
// delivery errors of that flush. It is a no-op in immediate mode.
func (c *Client) Flush(ctx context.Context) error {
	if c.flusher == nil {
		return nil
	}
	c.lifecycle.RecordActivity()
	err := c.flusher.Flush(ctx)
	if errors.Is(err, pkgerrors.ErrQueueClosed) {
		return ErrClientClosed
	}
	return err
}

// Shutdown stops accepting events, delivers everything still queued and
// releases the flusher goroutine. If ctx has no deadline ShutdownTimeout
// applies. When some events could not be delivered the returned error is a
// *ShutdownError listing them. A second call returns ErrClientClosed.
func (c *Client) Shutdown(ctx context.Context) error {
	if err := c.lifecycle.BeginShutdown(); err != nil {
		return ErrClientClosed
	}
	defer c.lifecycle.CompleteShutdown()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ShutdownTimeout)
		defer cancel()
	}

	if c.flusher == nil {
		return nil
	}
	_, err := c.flusher.Shutdown(ctx)
	return err
}

// Close shuts the client down with the configured ShutdownTimeout.
func (c *Client) Close() error {
	return c.Shutdown(context.Background())
}

// Health checks the server and the credentials.
func (c *Client) Health(ctx context.Context) (*types.HealthStatus, error) {
	return c.health.Check(ctx)
}

// Stats returns cumulative delivery counters.
func (c *Client) Stats() ingestion.Stats {
	if c.flusher != nil {
		return c.flusher.Stats()
	}
	return ingestion.Stats{
		Sent:     c.sent.Load(),
		Rejected: c.rejected.Load(),
		Failed:   c.failed.Load(),
		Batches:  c.batches.Load(),
	}
}

// State returns the lifecycle state.
func (c *Client) State() ClientState {
	return c.lifecycle.State()
}

// BackpressureLevel returns the queue fill level. It is always
// BackpressureNone in immediate mode.
func (c *Client) BackpressureLevel() ingestion.BackpressureLevel {
	if c.monitor == nil {
		return ingestion.BackpressureNone
	}
	return c.monitor.Level()
}

// CircuitBreakerState returns the breaker state, or closed when no breaker
// is configured.
func (c *Client) CircuitBreakerState() pkghttp.BreakerState {
	if c.http.breaker == nil {
		return pkghttp.BreakerClosed
	}
	return c.http.breaker.State()
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() Config {
	return *c.config
}

// HTTP returns the API doer used by the resource clients.
func (c *Client) HTTP() pkghttp.Doer {
	return c.http
}

// Traces returns the traces API client.
func (c *Client) Traces() *traces.Client { return c.traces }

// Observations returns the observations API client.
func (c *Client) Observations() *observations.Client { return c.observations }

// Scores returns the scores API client.
func (c *Client) Scores() *scores.Client { return c.scores }

// Sessions returns the sessions API client.
func (c *Client) Sessions() *sessions.Client { return c.sessions }

// Prompts returns the prompts API client.
func (c *Client) Prompts() *prompts.Client { return c.prompts }

// Datasets returns the datasets API client.
func (c *Client) Datasets() *datasets.Client { return c.datasets }

// handleError passes an async error to the configured handler and counts it.
// The flusher has already logged it.
func (c *Client) handleError(err error) {
	c.metrics.IncrementCounter(MetricErrors, 1)
	if c.config.ErrorHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("error handler panicked", "panic", r)
		}
	}()
	c.config.ErrorHandler(err)
}

// resolveLogger picks the structured logger, adapts a printf logger, or
// falls back to stderr so errors are never lost.
func resolveLogger(cfg *Config) StructuredLogger {
	switch {
	case cfg.StructuredLogger != nil:
		return cfg.StructuredLogger
	case cfg.Logger != nil:
		return &printfLogger{l: cfg.Logger, debug: cfg.Debug}
	}
	return logging.New(logging.Options{Debug: cfg.Debug})
}

// buildHooks assembles the hook chain run around every HTTP attempt.
func buildHooks(cfg *Config, logger StructuredLogger) HTTPHook {
	slogger, _ := logger.(*slog.Logger)
	chain := pkghttp.NewHookChain(slogger)
	for i, h := range cfg.HTTPHooks {
		chain.Add(pkghttp.NewClassifiedHook(fmt.Sprintf("hook-%d", i), h, pkghttp.HookPriorityObservational))
	}
	for _, h := range cfg.ClassifiedHooks {
		chain.Add(h)
	}
	if cfg.Metrics != nil {
		chain.Add(pkghttp.NewClassifiedHook("metrics", pkghttp.MetricsHook(cfg.Metrics), pkghttp.HookPriorityObservational))
	}
	if cfg.Debug && slogger != nil {
		chain.Add(pkghttp.NewClassifiedHook("logging", pkghttp.LoggingHook(slogger), pkghttp.HookPriorityObservational))
	}
	if chain.Len() == 0 {
		return nil
	}
	return chain
}

// printfLogger adapts a Logger to StructuredLogger.
type printfLogger struct {
	l     Logger
	debug bool
}

func (p *printfLogger) log(level, msg string, args []any) {
	p.l.Printf("langfuse: %s %s%s", level, msg, formatArgs(args))
}

func (p *printfLogger) Debug(msg string, args ...any) {
	if p.debug {
		p.log("DEBUG", msg, args)
	}
}
func (p *printfLogger) Info(msg string, args ...any)  { p.log("INFO", msg, args) }
func (p *printfLogger) Warn(msg string, args ...any)  { p.log("WARN", msg, args) }
func (p *printfLogger) Error(msg string, args ...any) { p.log("ERROR", msg, args) }

func formatArgs(args []any) string {
	var s string
	for i := 0; i+1 < len(args); i += 2 {
		s += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	if len(args)%2 == 1 {
		s += fmt.Sprintf(" !BADKEY=%v", args[len(args)-1])
	}
	return s
}

type nopMetrics struct{}

func (nopMetrics) IncrementCounter(string, int64)       {}
func (nopMetrics) RecordDuration(string, time.Duration) {}
func (nopMetrics) SetGauge(string, float64)             {}
