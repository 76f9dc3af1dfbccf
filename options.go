package langfuse

import "github.com/jdziat/langfuse-ingest/pkg/client"

// Configuration options. See pkg/client for details on each.
var (
	WithBaseURL             = client.WithBaseURL
	WithRegion              = client.WithRegion
	WithEnvironment         = client.WithEnvironment
	WithRelease             = client.WithRelease
	WithBatchMode           = client.WithBatchMode
	WithHTTPClient          = client.WithHTTPClient
	WithTimeout             = client.WithTimeout
	WithMaxRetries          = client.WithMaxRetries
	WithRetryDelay          = client.WithRetryDelay
	WithRetryPolicy         = client.WithRetryPolicy
	WithCircuitBreaker      = client.WithCircuitBreaker
	WithBatchSize           = client.WithBatchSize
	WithFlushInterval       = client.WithFlushInterval
	WithQueueCapacity       = client.WithQueueCapacity
	WithMaxBatchBytes       = client.WithMaxBatchBytes
	WithSendTimeout         = client.WithSendTimeout
	WithShutdownTimeout     = client.WithShutdownTimeout
	WithPromptCacheTTL      = client.WithPromptCacheTTL
	WithIdleWarningDuration = client.WithIdleWarningDuration
	WithDebug               = client.WithDebug
	WithErrorHandler        = client.WithErrorHandler
	WithLogger              = client.WithLogger
	WithStructuredLogger    = client.WithStructuredLogger
	WithMetrics             = client.WithMetrics
	WithHTTPHooks           = client.WithHTTPHooks
	WithClassifiedHook      = client.WithClassifiedHook
	WithOnBatchResult       = client.WithOnBatchResult
	WithOnPartialFailure    = client.WithOnPartialFailure
	WithOnBackpressure      = client.WithOnBackpressure
	WithSettings            = client.WithSettings
)

// WithRequestID attaches a request id to ctx. It is sent as X-Request-ID.
var WithRequestID = client.WithRequestID

