// Package errors defines the error taxonomy of the ingestion client.
//
// # Error Types
//
//   - ValidationError: an event or config was rejected before anything was sent.
//   - APIError: the server answered with a non-2xx status. It carries the
//     status code and the raw body.
//   - ProtocolError: the server answered 2xx but the body could not be decoded.
//   - AsyncError: a background flush failed; delivered to the error handler.
//   - ShutdownError: Shutdown could not deliver every queued event.
//
// Per-event rejections inside a successful ingestion response are not errors.
// They are reported through the ingestion package's PartialFailure value.
//
// All typed errors implement LangfuseError:
//
//	var lfErr errors.LangfuseError
//	if stderrors.As(err, &lfErr) {
//	    log.Printf("code=%s retryable=%t", lfErr.Code(), lfErr.IsRetryable())
//	}
//
// APIError sentinels compare by status code:
//
//	if stderrors.Is(err, errors.ErrUnauthorized) {
//	    // bad credentials
//	}
package errors
