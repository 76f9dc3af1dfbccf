package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgconfig "github.com/jdziat/langfuse-ingest/pkg/config"
	pkghttp "github.com/jdziat/langfuse-ingest/pkg/http"
	"github.com/jdziat/langfuse-ingest/pkg/ingestion"
)

// Re-export Region from pkg/config
type Region = pkgconfig.Region

// Region constants
const (
	RegionEU    = pkgconfig.RegionEU
	RegionUS    = pkgconfig.RegionUS
	RegionHIPAA = pkgconfig.RegionHIPAA
)

// Default configuration values
const (
	DefaultTimeout             = pkgconfig.DefaultTimeout
	DefaultMaxRetries          = pkgconfig.DefaultMaxRetries
	DefaultRetryDelay          = pkgconfig.DefaultRetryDelay
	DefaultMaxRetryDelay       = pkgconfig.DefaultMaxRetryDelay
	DefaultBatchSize           = pkgconfig.DefaultBatchSize
	DefaultFlushInterval       = pkgconfig.DefaultFlushInterval
	DefaultQueueCapacity       = pkgconfig.DefaultQueueCapacity
	DefaultMaxIdleConns        = pkgconfig.DefaultMaxIdleConns
	DefaultMaxIdleConnsPerHost = pkgconfig.DefaultMaxIdleConnsPerHost
	DefaultIdleConnTimeout     = pkgconfig.DefaultIdleConnTimeout
	DefaultShutdownTimeout     = pkgconfig.DefaultShutdownTimeout
	DefaultSendTimeout         = pkgconfig.DefaultBackgroundSendTimeout
	DefaultPromptCacheTTL      = pkgconfig.DefaultPromptCacheTTL
	MaxBatchSize               = pkgconfig.MaxBatchSize
	MaxMaxRetries              = pkgconfig.MaxMaxRetries
	MaxTimeout                 = pkgconfig.MaxTimeout
	MinFlushInterval           = pkgconfig.MinFlushInterval
	MinKeyLength               = pkgconfig.MinKeyLength
	PublicKeyPrefix            = pkgconfig.PublicKeyPrefix
	SecretKeyPrefix            = pkgconfig.SecretKeyPrefix
)

// Logger is a minimal logging interface for the SDK.
type Logger interface {
	Printf(format string, v ...any)
}

// StructuredLogger provides structured logging support. *slog.Logger
// satisfies it.
type StructuredLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Metrics is an interface for SDK telemetry.
type Metrics interface {
	IncrementCounter(name string, value int64)
	RecordDuration(name string, duration time.Duration)
	SetGauge(name string, value float64)
}

// Re-exported transport types.
type (
	HTTPHook       = pkghttp.HTTPHook
	ClassifiedHook = pkghttp.ClassifiedHook
	RetryPolicy    = pkghttp.RetryPolicy
	BreakerConfig  = pkghttp.BreakerConfig
)

// IngestionMode selects how Ingest delivers events.
type IngestionMode int

const (
	// ModeBatch queues events and delivers them from a background flusher.
	// Ingest returns as soon as the event is queued; delivery errors reach
	// ErrorHandler, OnBatchResult and the logger, never the caller.
	ModeBatch IngestionMode = iota

	// ModeImmediate sends every event synchronously in a batch of one and
	// returns delivery errors from Ingest.
	ModeImmediate
)

func (m IngestionMode) String() string {
	switch m {
	case ModeBatch:
		return "batch"
	case ModeImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// Config holds the configuration for the Langfuse client.
type Config struct {
	// PublicKey is the Langfuse public key (required).
	PublicKey string

	// SecretKey is the Langfuse secret key (required).
	SecretKey string

	// BaseURL is the server root, e.g. https://cloud.langfuse.com. A
	// trailing /api/public is stripped. Region is used when empty.
	BaseURL string

	// Region is the Langfuse cloud region.
	Region Region

	// Environment and Release are stamped on traces built by the client
	// when the trace leaves them empty.
	Environment string
	Release     string

	// Mode selects batch (the default) or immediate delivery. In batch mode
	// Ingest is fire-and-forget.
	Mode IngestionMode

	// HTTPClient is shared by every request of the client.
	HTTPClient *http.Client

	// Timeout is the per-attempt request timeout of the default HTTPClient.
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	RetryDelay time.Duration

	// RetryPolicy replaces the policy built from MaxRetries and RetryDelay.
	RetryPolicy *RetryPolicy

	// CircuitBreaker enables a breaker around every request when set.
	CircuitBreaker *BreakerConfig

	// BatchSize is the maximum number of events per flush batch.
	BatchSize int

	// FlushInterval is how often the flusher wakes when no batch is full.
	FlushInterval time.Duration

	// QueueCapacity bounds the event queue. Producers block when it is full.
	QueueCapacity int

	// MaxBatchBytes bounds the serialized size of one ingestion request.
	MaxBatchBytes int

	// SendTimeout bounds the delivery of one batch, retries included.
	SendTimeout time.Duration

	// ShutdownTimeout bounds Shutdown when its context has no deadline.
	ShutdownTimeout time.Duration

	// PromptCacheTTL is the lifetime of cached prompts.
	PromptCacheTTL time.Duration

	// IdleWarningDuration logs a warning when the client sees no activity
	// for this long without being shut down. Zero disables it.
	IdleWarningDuration time.Duration

	// Debug enables debug logging.
	Debug bool

	// ErrorHandler is called with every asynchronous error.
	ErrorHandler func(error)

	// Logger is used for SDK logging.
	Logger Logger

	// StructuredLogger is used for structured SDK logging. It takes
	// precedence over Logger.
	StructuredLogger StructuredLogger

	// Metrics is used for SDK telemetry.
	Metrics Metrics

	// MaxIdleConns controls the maximum number of idle connections.
	MaxIdleConns int

	// MaxIdleConnsPerHost controls the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept.
	IdleConnTimeout time.Duration

	// HTTPHooks are called before and after each HTTP attempt.
	HTTPHooks []HTTPHook

	// ClassifiedHooks are priority-aware HTTP hooks. They run after
	// HTTPHooks.
	ClassifiedHooks []ClassifiedHook

	// OnBatchResult is called after every delivered batch.
	OnBatchResult func(ingestion.BatchResult)

	// OnPartialFailure is called when the server rejects some events of a
	// delivered batch.
	OnPartialFailure func(ingestion.PartialFailure)

	// OnBackpressure is called when the queue fill level changes.
	OnBackpressure ingestion.BackpressureCallback
}

// BatchMode reports whether Ingest queues events.
func (c *Config) BatchMode() bool {
	return c.Mode == ModeBatch
}

// ApplyDefaults sets default values for unset configuration options.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = RegionEU
	}
	c.BaseURL = pkgconfig.ResolveBaseURL(c.BaseURL, "", c.Region)

	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}
	if c.MaxBatchBytes == 0 {
		c.MaxBatchBytes = ingestion.MaxBatchBytes
	}
	if c.SendTimeout == 0 {
		c.SendTimeout = DefaultSendTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.PromptCacheTTL == 0 {
		c.PromptCacheTTL = DefaultPromptCacheTTL
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.MaxIdleConnsPerHost == 0 {
		c.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = DefaultIdleConnTimeout
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Timeout: c.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        c.MaxIdleConns,
				MaxIdleConnsPerHost: c.MaxIdleConnsPerHost,
				IdleConnTimeout:     c.IdleConnTimeout,
			},
		}
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.PublicKey == "" {
		return ErrMissingPublicKey
	}
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}

	if len(c.PublicKey) < MinKeyLength {
		return fmt.Errorf("langfuse: public key is too short (minimum %d characters)", MinKeyLength)
	}
	if len(c.SecretKey) < MinKeyLength {
		return fmt.Errorf("langfuse: secret key is too short (minimum %d characters)", MinKeyLength)
	}
	if !strings.HasPrefix(c.PublicKey, PublicKeyPrefix) {
		return fmt.Errorf("langfuse: public key should start with %q", PublicKeyPrefix)
	}
	if !strings.HasPrefix(c.SecretKey, SecretKeyPrefix) {
		return fmt.Errorf("langfuse: secret key should start with %q", SecretKeyPrefix)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("langfuse: invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("langfuse: base URL %q must use http or https", c.BaseURL)
	}

	if c.Mode != ModeBatch && c.Mode != ModeImmediate {
		return fmt.Errorf("langfuse: unknown ingestion mode %d", c.Mode)
	}
	if c.BatchSize < 1 || c.BatchSize > MaxBatchSize {
		return fmt.Errorf("langfuse: batch size must be between 1 and %d", MaxBatchSize)
	}
	if c.MaxRetries < 0 || c.MaxRetries > MaxMaxRetries {
		return fmt.Errorf("langfuse: max retries must be between 0 and %d", MaxMaxRetries)
	}
	if c.RetryPolicy != nil && (c.RetryPolicy.MaxRetries < 0 || c.RetryPolicy.MaxRetries > MaxMaxRetries) {
		return fmt.Errorf("langfuse: retry policy max retries must be between 0 and %d", MaxMaxRetries)
	}
	if c.Timeout < 0 || c.Timeout > MaxTimeout {
		return fmt.Errorf("langfuse: timeout must be between 0 and %v", MaxTimeout)
	}
	if c.FlushInterval < MinFlushInterval {
		return fmt.Errorf("langfuse: flush interval must be at least %v", MinFlushInterval)
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("langfuse: queue capacity must be at least 1")
	}
	if c.MaxBatchBytes < 1024 {
		return fmt.Errorf("langfuse: max batch bytes must be at least 1024")
	}

	return nil
}

// String returns a string representation with masked credentials.
func (c *Config) String() string {
	return fmt.Sprintf("Config{PublicKey: %q, SecretKey: %q, BaseURL: %q, Region: %q, Mode: %s, BatchSize: %d}",
		maskCredential(c.PublicKey),
		maskCredential(c.SecretKey),
		c.BaseURL,
		c.Region,
		c.Mode,
		c.BatchSize,
	)
}

// maskCredential masks a credential for safe logging.
func maskCredential(s string) string {
	if len(s) <= 12 {
		return "****"
	}
	return s[:6] + "****" + s[len(s)-4:]
}
