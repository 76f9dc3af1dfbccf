package errors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrorCode is a category of error for metrics and logging.
type ErrorCode string

const (
	ErrCodeConfig       ErrorCode = "CONFIG"
	ErrCodeValidation   ErrorCode = "VALIDATION"
	ErrCodeNetwork      ErrorCode = "NETWORK"
	ErrCodeAPI          ErrorCode = "API"
	ErrCodeProtocol     ErrorCode = "PROTOCOL"
	ErrCodeAuth         ErrorCode = "AUTH"
	ErrCodeRateLimit    ErrorCode = "RATE_LIMIT"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeInternal     ErrorCode = "INTERNAL"
	ErrCodeShutdown     ErrorCode = "SHUTDOWN"
	ErrCodeBackpressure ErrorCode = "BACKPRESSURE"
)

// LangfuseError is implemented by every typed error in this package.
//
//	var lfErr errors.LangfuseError
//	if stderrors.As(err, &lfErr) && lfErr.IsRetryable() {
//	    // try again later
//	}
type LangfuseError interface {
	error

	// Code returns a machine-readable category.
	Code() ErrorCode

	// IsRetryable reports whether repeating the operation can succeed.
	IsRetryable() bool

	// GetRequestID returns the server request id, or "".
	GetRequestID() string
}

// Configuration and usage errors.
var (
	ErrMissingPublicKey = errors.New("langfuse: public key is required")
	ErrMissingSecretKey = errors.New("langfuse: secret key is required")
	ErrMissingBaseURL   = errors.New("langfuse: base URL is required")
	ErrInvalidConfig    = errors.New("langfuse: invalid configuration")
	ErrClientClosed     = errors.New("langfuse: client is closed")
	ErrNilRequest       = errors.New("langfuse: request cannot be nil")
)

// Pipeline errors.
var (
	ErrQueueClosed     = errors.New("langfuse: event queue is closed")
	ErrEmptyBatch      = errors.New("langfuse: batch is empty")
	ErrEventTooLarge   = errors.New("langfuse: event exceeds maximum batch size")
	ErrShutdownTimeout = errors.New("langfuse: shutdown timed out")
	ErrCircuitOpen     = errors.New("langfuse: circuit breaker is open")
)

// AsAPIError returns the *APIError in err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// AsProtocolError returns the *ProtocolError in err's chain.
func AsProtocolError(err error) (*ProtocolError, bool) {
	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		return protoErr, true
	}
	return nil, false
}

// AsValidationError returns the *ValidationError in err's chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr, true
	}
	return nil, false
}

// AsShutdownError returns the *ShutdownError in err's chain.
func AsShutdownError(err error) (*ShutdownError, bool) {
	var shutdownErr *ShutdownError
	if errors.As(err, &shutdownErr) {
		return shutdownErr, true
	}
	return nil, false
}

// IsRetryable reports whether err describes a condition that may clear on
// its own: rate limiting, server errors, or an open circuit.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var lfErr LangfuseError
	if errors.As(err, &lfErr) {
		return lfErr.IsRetryable()
	}
	return errors.Is(err, ErrCircuitOpen)
}

// RetryAfter returns the server's Retry-After hint carried by err, or 0.
func RetryAfter(err error) time.Duration {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.RetryAfter
	}
	return 0
}

// CodeOf returns the category of err.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var lfErr LangfuseError
	if errors.As(err, &lfErr) {
		return lfErr.Code()
	}

	switch {
	case errors.Is(err, ErrMissingPublicKey),
		errors.Is(err, ErrMissingSecretKey),
		errors.Is(err, ErrMissingBaseURL),
		errors.Is(err, ErrInvalidConfig):
		return ErrCodeConfig
	case errors.Is(err, ErrClientClosed),
		errors.Is(err, ErrQueueClosed),
		errors.Is(err, ErrShutdownTimeout):
		return ErrCodeShutdown
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return ErrCodeTimeout
	case errors.Is(err, ErrCircuitOpen):
		return ErrCodeNetwork
	case errors.Is(err, ErrEventTooLarge), errors.Is(err, ErrEmptyBatch):
		return ErrCodeValidation
	}
	return ErrCodeInternal
}

// Wrap annotates err with message. It returns nil when err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("langfuse: %s: %w", message, err)
}

// Wrapf annotates err with a formatted message. It returns nil when err is nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("langfuse: %s: %w", fmt.Sprintf(format, args...), err)
}
