package errors

import (
	"fmt"
	"time"
)

// AsyncOperation names the background operation that produced an AsyncError.
type AsyncOperation string

const (
	AsyncOpBatchSend AsyncOperation = "batch_send"
	AsyncOpFlush     AsyncOperation = "flush"
	AsyncOpShutdown  AsyncOperation = "shutdown"
	AsyncOpInternal  AsyncOperation = "internal"
)

// AsyncError is handed to the configured error handler when background work
// fails. The producer of the affected events never sees it.
type AsyncError struct {
	Time      time.Time
	Operation AsyncOperation
	EventIDs  []string
	Err       error
}

func (e *AsyncError) Error() string {
	if len(e.EventIDs) > 0 {
		return fmt.Sprintf("langfuse: async %s failed (%d events affected): %v", e.Operation, len(e.EventIDs), e.Err)
	}
	return fmt.Sprintf("langfuse: async %s failed: %v", e.Operation, e.Err)
}

func (e *AsyncError) Unwrap() error { return e.Err }

// NewAsyncError wraps err as a failure of op.
func NewAsyncError(op AsyncOperation, err error, eventIDs ...string) *AsyncError {
	return &AsyncError{
		Time:      time.Now(),
		Operation: op,
		EventIDs:  eventIDs,
		Err:       err,
	}
}

// ShutdownError is returned by Shutdown when some events could not be
// delivered. DroppedIDs lists them.
type ShutdownError struct {
	Cause      error
	Dropped    int
	DroppedIDs []string
	Message    string
}

func (e *ShutdownError) Error() string {
	if e.Dropped > 0 {
		return fmt.Sprintf("langfuse: shutdown incomplete (%s): %d events dropped", e.Message, e.Dropped)
	}
	return "langfuse: shutdown incomplete: " + e.Message
}

func (e *ShutdownError) Unwrap() error        { return e.Cause }
func (e *ShutdownError) Code() ErrorCode      { return ErrCodeShutdown }
func (e *ShutdownError) IsRetryable() bool    { return false }
func (e *ShutdownError) GetRequestID() string { return "" }

var _ LangfuseError = (*ShutdownError)(nil)
