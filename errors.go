package langfuse

import pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"

// Error types.
type (
	APIError        = pkgerrors.APIError
	ProtocolError   = pkgerrors.ProtocolError
	ValidationError = pkgerrors.ValidationError
	AsyncError      = pkgerrors.AsyncError
	ShutdownError   = pkgerrors.ShutdownError
	LangfuseError   = pkgerrors.LangfuseError
	ErrorCode       = pkgerrors.ErrorCode
)

var (
	ErrMissingPublicKey = pkgerrors.ErrMissingPublicKey
	ErrMissingSecretKey = pkgerrors.ErrMissingSecretKey
	ErrMissingBaseURL   = pkgerrors.ErrMissingBaseURL
	ErrInvalidConfig    = pkgerrors.ErrInvalidConfig
	ErrClientClosed     = pkgerrors.ErrClientClosed
	ErrNilRequest       = pkgerrors.ErrNilRequest
	ErrCircuitOpen      = pkgerrors.ErrCircuitOpen
	ErrNotFound         = pkgerrors.ErrNotFound
	ErrUnauthorized     = pkgerrors.ErrUnauthorized
	ErrForbidden        = pkgerrors.ErrForbidden
	ErrRateLimited      = pkgerrors.ErrRateLimited
	ErrEventTooLarge    = pkgerrors.ErrEventTooLarge
	ErrQueueClosed      = pkgerrors.ErrQueueClosed
)

// Error helpers.
var (
	AsAPIError        = pkgerrors.AsAPIError
	AsProtocolError   = pkgerrors.AsProtocolError
	AsValidationError = pkgerrors.AsValidationError
	AsShutdownError   = pkgerrors.AsShutdownError
	IsRetryable       = pkgerrors.IsRetryable
	RetryAfter        = pkgerrors.RetryAfter
	CodeOf            = pkgerrors.CodeOf
)
