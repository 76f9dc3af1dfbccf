package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name      string
		apiErr    *APIError
		wantMsg   string
		wantCode  ErrorCode
		wantRetry bool
	}{
		{
			name:     "message",
			apiErr:   &APIError{StatusCode: 404, Message: "Resource not found"},
			wantMsg:  "langfuse: API error (status 404): Resource not found",
			wantCode: ErrCodeAPI,
		},
		{
			name:     "request id",
			apiErr:   &APIError{StatusCode: 401, Message: "Invalid credentials", RequestID: "req-123"},
			wantMsg:  "langfuse: API error (status 401, request req-123): Invalid credentials",
			wantCode: ErrCodeAuth,
		},
		{
			name:      "rate limited",
			apiErr:    &APIError{StatusCode: 429, Message: "Too many requests"},
			wantMsg:   "langfuse: API error (status 429): Too many requests",
			wantCode:  ErrCodeRateLimit,
			wantRetry: true,
		},
		{
			name:      "error field fallback",
			apiErr:    &APIError{StatusCode: 503, ErrorMessage: "Service unavailable"},
			wantMsg:   "langfuse: API error (status 503): Service unavailable",
			wantCode:  ErrCodeAPI,
			wantRetry: true,
		},
		{
			name:      "raw body fallback",
			apiErr:    &APIError{StatusCode: 502, Body: []byte("<html>bad gateway</html>")},
			wantMsg:   "langfuse: API error (status 502): <html>bad gateway</html>",
			wantCode:  ErrCodeAPI,
			wantRetry: true,
		},
		{
			name:     "bare status",
			apiErr:   &APIError{StatusCode: 400},
			wantMsg:  "langfuse: API error (status 400)",
			wantCode: ErrCodeAPI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.apiErr.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.apiErr.Code(); got != tt.wantCode {
				t.Errorf("Code() = %q, want %q", got, tt.wantCode)
			}
			if got := tt.apiErr.IsRetryable(); got != tt.wantRetry {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.wantRetry)
			}
		})
	}
}

func TestAPIError_LongBodyTruncated(t *testing.T) {
	e := &APIError{StatusCode: 500, Body: []byte(strings.Repeat("x", 1000))}
	if got := len(e.Error()); got > 320 {
		t.Errorf("len(Error()) = %d, want truncated", got)
	}
}

func TestAPIError_IsSentinel(t *testing.T) {
	err := fmt.Errorf("sending batch: %w", &APIError{StatusCode: 401, Message: "nope"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Error("errors.Is(err, ErrUnauthorized) = false")
	}
	if errors.Is(err, ErrRateLimited) {
		t.Error("errors.Is(err, ErrRateLimited) = true")
	}
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.Message != "nope" {
		t.Errorf("AsAPIError() = %v, %v", apiErr, ok)
	}
}

func TestProtocolError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := fmt.Errorf("ingest: %w", &ProtocolError{StatusCode: 207, Body: []byte("{"), Err: cause})

	protoErr, ok := AsProtocolError(err)
	if !ok {
		t.Fatal("AsProtocolError() = false")
	}
	if protoErr.StatusCode != 207 {
		t.Errorf("StatusCode = %d, want 207", protoErr.StatusCode)
	}
	if !errors.Is(err, cause) {
		t.Error("ProtocolError does not unwrap to its cause")
	}
	if CodeOf(err) != ErrCodeProtocol {
		t.Errorf("CodeOf() = %q, want %q", CodeOf(err), ErrCodeProtocol)
	}
	if IsRetryable(err) {
		t.Error("ProtocolError should not be retryable")
	}
	if _, ok := AsAPIError(err); ok {
		t.Error("ProtocolError must not be an APIError")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("traceId", "is required")
	if got, want := err.Error(), `langfuse: validation error for field "traceId": is required`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if _, ok := AsValidationError(fmt.Errorf("wrap: %w", err)); !ok {
		t.Error("AsValidationError() = false")
	}

	cause := errors.New("root")
	wrapped := NewValidationErrorWithCause("value", "bad", cause)
	if !errors.Is(wrapped, cause) {
		t.Error("ValidationError does not unwrap to its cause")
	}
}

func TestShutdownError(t *testing.T) {
	err := &ShutdownError{
		Cause:      context.DeadlineExceeded,
		Dropped:    2,
		DroppedIDs: []string{"a", "b"},
		Message:    "deadline reached",
	}
	if !strings.Contains(err.Error(), "2 events dropped") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("ShutdownError does not unwrap to its cause")
	}
	got, ok := AsShutdownError(fmt.Errorf("close: %w", err))
	if !ok || len(got.DroppedIDs) != 2 {
		t.Errorf("AsShutdownError() = %v, %v", got, ok)
	}
}

func TestAsyncError(t *testing.T) {
	cause := &APIError{StatusCode: 500}
	err := NewAsyncError(AsyncOpBatchSend, cause, "e1", "e2")
	if !strings.Contains(err.Error(), "2 events affected") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable() should see the wrapped APIError")
	}
	if time.Since(err.Time) > time.Minute {
		t.Error("AsyncError.Time not set")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{nil, ""},
		{ErrMissingPublicKey, ErrCodeConfig},
		{ErrClientClosed, ErrCodeShutdown},
		{ErrQueueClosed, ErrCodeShutdown},
		{context.DeadlineExceeded, ErrCodeTimeout},
		{ErrCircuitOpen, ErrCodeNetwork},
		{ErrEventTooLarge, ErrCodeValidation},
		{&APIError{StatusCode: 403}, ErrCodeAuth},
		{errors.New("mystery"), ErrCodeInternal},
	}
	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.want {
			t.Errorf("CodeOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrCircuitOpen) {
		t.Error("IsRetryable(ErrCircuitOpen) = false")
	}
	if IsRetryable(nil) {
		t.Error("IsRetryable(nil) = true")
	}
	if IsRetryable(&APIError{StatusCode: 400}) {
		t.Error("IsRetryable(400) = true")
	}
	if got := RetryAfter(&APIError{StatusCode: 429, RetryAfter: 3 * time.Second}); got != 3*time.Second {
		t.Errorf("RetryAfter() = %v, want 3s", got)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) != nil")
	}
	err := Wrapf(ErrEmptyBatch, "batch %d", 3)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Error("Wrapf() lost the cause")
	}
	if got, want := err.Error(), "langfuse: batch 3: langfuse: batch is empty"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
