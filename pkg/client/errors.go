package client

import pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"

// Re-export error types from pkg/errors.
type (
	APIError        = pkgerrors.APIError
	ProtocolError   = pkgerrors.ProtocolError
	ValidationError = pkgerrors.ValidationError
	AsyncError      = pkgerrors.AsyncError
	ShutdownError   = pkgerrors.ShutdownError
	LangfuseError   = pkgerrors.LangfuseError
	ErrorCode       = pkgerrors.ErrorCode
)

// Sentinel errors - re-exported from pkg/errors
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
