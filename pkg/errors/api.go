package errors

import (
	"fmt"
	"time"
)

// Sentinel APIError values for use with errors.Is. They match on status code.
var (
	ErrBadRequest   = &APIError{StatusCode: 400}
	ErrUnauthorized = &APIError{StatusCode: 401}
	ErrForbidden    = &APIError{StatusCode: 403}
	ErrNotFound     = &APIError{StatusCode: 404}
	ErrTooLarge     = &APIError{StatusCode: 413}
	ErrRateLimited  = &APIError{StatusCode: 429}
)

// APIError is returned when the server answers with a non-2xx status.
// Body holds the raw response body even when it is not JSON.
type APIError struct {
	StatusCode   int           `json:"statusCode"`
	Message      string        `json:"message"`
	ErrorMessage string        `json:"error"`
	Body         []byte        `json:"-"`
	RequestID    string        `json:"-"`
	RetryAfter   time.Duration `json:"-"`
	Err          error         `json:"-"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.ErrorMessage
	}
	if msg == "" && len(e.Body) > 0 {
		msg = truncate(string(e.Body), 256)
	}

	prefix := fmt.Sprintf("langfuse: API error (status %d)", e.StatusCode)
	if e.RequestID != "" {
		prefix = fmt.Sprintf("langfuse: API error (status %d, request %s)", e.StatusCode, e.RequestID)
	}
	if msg == "" {
		return prefix
	}
	return prefix + ": " + msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches another *APIError by status code, so
//
//	errors.Is(err, errors.ErrRateLimited)
//
// holds for any 429 response.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

func (e *APIError) IsUnauthorized() bool { return e.StatusCode == 401 }
func (e *APIError) IsForbidden() bool    { return e.StatusCode == 403 }
func (e *APIError) IsNotFound() bool     { return e.StatusCode == 404 }
func (e *APIError) IsRateLimited() bool  { return e.StatusCode == 429 }
func (e *APIError) IsServerError() bool  { return e.StatusCode >= 500 && e.StatusCode < 600 }

// IsRetryable reports true for 429 and 5xx responses.
func (e *APIError) IsRetryable() bool {
	return e.IsRateLimited() || e.IsServerError()
}

// SuggestedRetryAfter returns the Retry-After hint sent with the response.
func (e *APIError) SuggestedRetryAfter() time.Duration {
	return e.RetryAfter
}

func (e *APIError) Code() ErrorCode {
	switch {
	case e.IsUnauthorized(), e.IsForbidden():
		return ErrCodeAuth
	case e.IsRateLimited():
		return ErrCodeRateLimit
	default:
		return ErrCodeAPI
	}
}

func (e *APIError) GetRequestID() string {
	return e.RequestID
}

var _ LangfuseError = (*APIError)(nil)

// ProtocolError is returned when a 2xx response body cannot be decoded into
// the expected shape.
type ProtocolError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("langfuse: unexpected response body (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("langfuse: unexpected response body (status %d)", e.StatusCode)
}

func (e *ProtocolError) Unwrap() error        { return e.Err }
func (e *ProtocolError) Code() ErrorCode      { return ErrCodeProtocol }
func (e *ProtocolError) IsRetryable() bool    { return false }
func (e *ProtocolError) GetRequestID() string { return "" }

var _ LangfuseError = (*ProtocolError)(nil)

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
