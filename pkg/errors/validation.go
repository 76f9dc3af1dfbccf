package errors

import "fmt"

// ValidationError reports an invalid field on an event, request, or config.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "langfuse: validation error: " + e.Message
	}
	return fmt.Sprintf("langfuse: validation error for field %q: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Code() ErrorCode { return ErrCodeValidation }

// IsRetryable is always false; the input has to change.
func (e *ValidationError) IsRetryable() bool { return false }

func (e *ValidationError) GetRequestID() string { return "" }

var _ LangfuseError = (*ValidationError)(nil)

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithCause returns a ValidationError wrapping cause.
func NewValidationErrorWithCause(field, message string, cause error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: cause}
}
