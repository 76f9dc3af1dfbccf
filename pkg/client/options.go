package client

import (
	"net/http"
	"time"

	pkgconfig "github.com/jdziat/langfuse-ingest/pkg/config"
	"github.com/jdziat/langfuse-ingest/pkg/ingestion"
)

// ConfigOption configures the client.
type ConfigOption func(*Config)

// WithBaseURL sets the server root URL.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithRegion sets the Langfuse cloud region.
func WithRegion(region Region) ConfigOption {
	return func(c *Config) {
		c.Region = region
	}
}

// WithEnvironment sets the default trace environment.
func WithEnvironment(env string) ConfigOption {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithRelease sets the default trace release.
func WithRelease(release string) ConfigOption {
	return func(c *Config) {
		c.Release = release
	}
}

// WithBatchMode switches between batch (true, the default) and immediate
// delivery.
func WithBatchMode(enabled bool) ConfigOption {
	return func(c *Config) {
		if enabled {
			c.Mode = ModeBatch
		} else {
			c.Mode = ModeImmediate
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ConfigOption {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

// WithRetryDelay sets the initial delay between retry attempts.
func WithRetryDelay(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = delay
	}
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(p RetryPolicy) ConfigOption {
	return func(c *Config) {
		c.RetryPolicy = &p
	}
}

// WithCircuitBreaker enables the circuit breaker.
func WithCircuitBreaker(cfg BreakerConfig) ConfigOption {
	return func(c *Config) {
		c.CircuitBreaker = &cfg
	}
}

// WithBatchSize sets the maximum number of events per batch.
func WithBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = size
	}
}

// WithFlushInterval sets the interval for flushing pending events.
func WithFlushInterval(interval time.Duration) ConfigOption {
	return func(c *Config) {
		c.FlushInterval = interval
	}
}

// WithQueueCapacity sets the event queue capacity.
func WithQueueCapacity(n int) ConfigOption {
	return func(c *Config) {
		c.QueueCapacity = n
	}
}

// WithMaxBatchBytes sets the size limit of one ingestion request.
func WithMaxBatchBytes(n int) ConfigOption {
	return func(c *Config) {
		c.MaxBatchBytes = n
	}
}

// WithSendTimeout bounds the delivery of one batch.
func WithSendTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.SendTimeout = timeout
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout.
func WithShutdownTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.ShutdownTimeout = timeout
	}
}

// WithPromptCacheTTL sets the lifetime of cached prompts.
func WithPromptCacheTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) {
		c.PromptCacheTTL = ttl
	}
}

// WithIdleWarningDuration sets the idle warning duration.
func WithIdleWarningDuration(duration time.Duration) ConfigOption {
	return func(c *Config) {
		c.IdleWarningDuration = duration
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) ConfigOption {
	return func(c *Config) {
		c.Debug = debug
	}
}

// WithErrorHandler sets the error handler for async operations.
func WithErrorHandler(handler func(error)) ConfigOption {
	return func(c *Config) {
		c.ErrorHandler = handler
	}
}

// WithLogger sets a printf-style logger.
func WithLogger(logger Logger) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithStructuredLogger sets the structured logger.
func WithStructuredLogger(logger StructuredLogger) ConfigOption {
	return func(c *Config) {
		c.StructuredLogger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics Metrics) ConfigOption {
	return func(c *Config) {
		c.Metrics = metrics
	}
}

// WithHTTPHooks appends observational HTTP hooks.
func WithHTTPHooks(hooks ...HTTPHook) ConfigOption {
	return func(c *Config) {
		c.HTTPHooks = append(c.HTTPHooks, hooks...)
	}
}

// WithClassifiedHook appends a priority-aware HTTP hook.
func WithClassifiedHook(h ClassifiedHook) ConfigOption {
	return func(c *Config) {
		c.ClassifiedHooks = append(c.ClassifiedHooks, h)
	}
}

// WithOnBatchResult sets the callback run after every delivered batch.
func WithOnBatchResult(fn func(ingestion.BatchResult)) ConfigOption {
	return func(c *Config) {
		c.OnBatchResult = fn
	}
}

// WithOnPartialFailure sets the callback for batches the server accepted
// only in part.
func WithOnPartialFailure(fn func(ingestion.PartialFailure)) ConfigOption {
	return func(c *Config) {
		c.OnPartialFailure = fn
	}
}

// WithOnBackpressure sets the queue fill level callback.
func WithOnBackpressure(fn ingestion.BackpressureCallback) ConfigOption {
	return func(c *Config) {
		c.OnBackpressure = fn
	}
}

// WithSettings applies file and environment settings loaded by
// config.Load. Zero values leave the corresponding option untouched, so
// options listed after WithSettings still override it.
func WithSettings(s *pkgconfig.Settings) ConfigOption {
	return func(c *Config) {
		if s == nil {
			return
		}
		if s.PublicKey != "" {
			c.PublicKey = s.PublicKey
		}
		if s.SecretKey != "" {
			c.SecretKey = s.SecretKey
		}
		if s.BaseURL != "" || s.Host != "" {
			c.BaseURL = pkgconfig.ResolveBaseURL(s.BaseURL, s.Host, s.Region)
		}
		if s.Region != "" {
			c.Region = s.Region
		}
		if s.Environment != "" {
			c.Environment = s.Environment
		}
		if s.Release != "" {
			c.Release = s.Release
		}
		if s.Debug {
			c.Debug = true
		}
		WithBatchMode(s.BatchMode)(c)
		if s.BatchSize > 0 {
			c.BatchSize = s.BatchSize
		}
		if s.FlushInterval > 0 {
			c.FlushInterval = s.FlushInterval
		}
		if s.QueueCapacity > 0 {
			c.QueueCapacity = s.QueueCapacity
		}
		if s.Timeout > 0 {
			c.Timeout = s.Timeout
		}
		if s.MaxRetries > 0 {
			c.MaxRetries = s.MaxRetries
		}
		if s.ShutdownTimeout > 0 {
			c.ShutdownTimeout = s.ShutdownTimeout
		}
	}
}
