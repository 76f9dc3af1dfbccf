package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// HookPriority determines how hook failures are handled.
type HookPriority int

const (
	// HookPriorityObservational hooks never abort a request. Use for
	// logging, metrics and tracing.
	HookPriorityObservational HookPriority = iota

	// HookPriorityCritical hooks abort the request when BeforeRequest fails.
	// Use for signing and required headers.
	HookPriorityCritical
)

// String returns a string representation of the hook priority.
func (p HookPriority) String() string {
	switch p {
	case HookPriorityObservational:
		return "observational"
	case HookPriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// HTTPHook allows customizing HTTP request/response handling.
type HTTPHook interface {
	// BeforeRequest is called before sending the HTTP request.
	// It can modify the request (e.g., add headers) and return an error to abort.
	BeforeRequest(ctx context.Context, req *http.Request) error

	// AfterResponse is called after every attempt, failed or not.
	AfterResponse(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, err error)
}

// HTTPHookFunc is a function adapter for simple hooks.
type HTTPHookFunc struct {
	Before func(ctx context.Context, req *http.Request) error
	After  func(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, err error)
}

// BeforeRequest implements HTTPHook.
func (f HTTPHookFunc) BeforeRequest(ctx context.Context, req *http.Request) error {
	if f.Before != nil {
		return f.Before(ctx, req)
	}
	return nil
}

// AfterResponse implements HTTPHook.
func (f HTTPHookFunc) AfterResponse(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, err error) {
	if f.After != nil {
		f.After(ctx, req, resp, duration, err)
	}
}

// ClassifiedHook wraps an HTTPHook with priority information.
type ClassifiedHook struct {
	Hook     HTTPHook
	Priority HookPriority
	Name     string
}

// NewClassifiedHook creates a ClassifiedHook with the given parameters.
func NewClassifiedHook(name string, hook HTTPHook, priority HookPriority) ClassifiedHook {
	return ClassifiedHook{Hook: hook, Priority: priority, Name: name}
}

// CombineHooks chains hooks as observational hooks. It returns nil for no
// hooks and the hook itself for one.
func CombineHooks(hooks ...HTTPHook) HTTPHook {
	switch len(hooks) {
	case 0:
		return nil
	case 1:
		return hooks[0]
	}
	chain := NewHookChain(nil)
	for i, h := range hooks {
		chain.Add(NewClassifiedHook("hook-"+strconv.Itoa(i), h, HookPriorityObservational))
	}
	return chain
}

// HookChain runs hooks in order before a request and in reverse order after
// it. Observational hook failures and panics are logged and swallowed.
type HookChain struct {
	hooks  []ClassifiedHook
	logger *slog.Logger
}

// NewHookChain returns an empty chain. A nil logger discards hook failures.
func NewHookChain(logger *slog.Logger, hooks ...ClassifiedHook) *HookChain {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HookChain{hooks: hooks, logger: logger}
}

// Add appends a hook.
func (c *HookChain) Add(ch ClassifiedHook) {
	c.hooks = append(c.hooks, ch)
}

// Len returns the number of hooks in the chain.
func (c *HookChain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.hooks)
}

// BeforeRequest calls every hook. The first critical failure is returned.
func (c *HookChain) BeforeRequest(ctx context.Context, req *http.Request) error {
	if c == nil {
		return nil
	}
	for _, ch := range c.hooks {
		if err := c.before(ctx, req, ch); err != nil {
			return err
		}
	}
	return nil
}

func (c *HookChain) before(ctx context.Context, req *http.Request, ch ClassifiedHook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("hook panicked", "hook", ch.Name, "phase", "before", "panic", r)
			if ch.Priority == HookPriorityCritical {
				err = fmt.Errorf("langfuse: critical hook %q panicked: %v", ch.Name, r)
			}
		}
	}()

	if err := ch.Hook.BeforeRequest(ctx, req); err != nil {
		if ch.Priority == HookPriorityObservational {
			c.logger.Warn("hook failed, continuing", "hook", ch.Name, "error", err)
			return nil
		}
		return fmt.Errorf("langfuse: critical hook %q failed: %w", ch.Name, err)
	}
	return nil
}

// AfterResponse calls every hook in reverse order.
func (c *HookChain) AfterResponse(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, err error) {
	if c == nil {
		return
	}
	for i := len(c.hooks) - 1; i >= 0; i-- {
		c.after(ctx, req, resp, duration, err, c.hooks[i])
	}
}

func (c *HookChain) after(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, requestErr error, ch ClassifiedHook) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("hook panicked", "hook", ch.Name, "phase", "after", "panic", r)
		}
	}()
	ch.Hook.AfterResponse(ctx, req, resp, duration, requestErr)
}

// HeaderHook creates a hook that adds custom headers to all requests.
func HeaderHook(headers map[string]string) HTTPHook {
	return HTTPHookFunc{
		Before: func(_ context.Context, req *http.Request) error {
			for k, v := range headers {
				req.Header.Set(k, v)
			}
			return nil
		},
	}
}

// LoggingHook logs every attempt at debug level and failures at warn level.
// The Authorization header is never logged.
func LoggingHook(logger *slog.Logger) HTTPHook {
	return HTTPHookFunc{
		After: func(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, err error) {
			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"duration", duration,
				"request_id", req.Header.Get("X-Request-ID"),
			}
			switch {
			case err != nil:
				logger.WarnContext(ctx, "request failed", append(attrs, "error", err)...)
			case resp.StatusCode >= 400:
				logger.WarnContext(ctx, "request returned error status", append(attrs, "status", resp.StatusCode)...)
			default:
				logger.DebugContext(ctx, "request completed", append(attrs, "status", resp.StatusCode)...)
			}
		},
	}
}

// MetricsRecorder is the interface for recording request metrics.
type MetricsRecorder interface {
	IncrementCounter(name string, value int64)
	RecordDuration(name string, duration time.Duration)
}

// HTTP metric names.
const (
	MetricRequests = "langfuse.http.requests"
	MetricDuration = "langfuse.http.duration"
	MetricErrors   = "langfuse.http.errors"
)

// MetricsHook records request count, duration, transport errors and one
// counter per status code, named langfuse.http.status.<code>.
func MetricsHook(m MetricsRecorder) HTTPHook {
	if m == nil {
		return HTTPHookFunc{}
	}
	return HTTPHookFunc{
		After: func(_ context.Context, _ *http.Request, resp *http.Response, duration time.Duration, err error) {
			m.IncrementCounter(MetricRequests, 1)
			m.RecordDuration(MetricDuration, duration)
			if err != nil {
				m.IncrementCounter(MetricErrors, 1)
			}
			if resp != nil {
				m.IncrementCounter("langfuse.http.status."+strconv.Itoa(resp.StatusCode), 1)
			}
		},
	}
}
