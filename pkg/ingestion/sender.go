package ingestion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"

	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
)

// Poster performs one ingestion POST with an already encoded body.
//
// Implementations return a *errors.APIError for non-2xx responses and any
// transport error as is. On success they return the status code and the raw
// response body.
type Poster interface {
	PostIngestion(ctx context.Context, payload []byte) (status int, body []byte, err error)
}

// PosterFunc adapts a function to the Poster interface.
type PosterFunc func(ctx context.Context, payload []byte) (int, []byte, error)

func (f PosterFunc) PostIngestion(ctx context.Context, payload []byte) (int, []byte, error) {
	return f(ctx, payload)
}

// SendResult is the outcome of sending a group of events.
type SendResult struct {
	// Response merges the server verdicts of every delivered chunk with the
	// events rejected before sending.
	Response Response

	// Undelivered lists events whose request failed. The server never
	// acknowledged them.
	Undelivered []Event

	// Requests is the number of POSTs made.
	Requests int
}

// Sender turns a group of events into size-bounded ingestion requests.
type Sender struct {
	poster   Poster
	maxBytes int
}

// NewSender returns a Sender posting through p. A maxBytes of zero means
// MaxBatchBytes.
func NewSender(p Poster, maxBytes int) *Sender {
	if maxBytes <= 0 {
		maxBytes = MaxBatchBytes
	}
	return &Sender{poster: p, maxBytes: maxBytes}
}

// Send splits events into chunks of at most the byte budget and POSTs each
// chunk once, in order. A failing chunk does not stop later chunks.
//
// The returned error aggregates transport and protocol failures of all
// chunks; a single failure is returned unwrapped. Per-event rejections are
// reported in the result only.
func (s *Sender) Send(ctx context.Context, events []Event) (*SendResult, error) {
	if len(events) == 0 {
		return nil, pkgerrors.ErrEmptyBatch
	}

	chunks, rejects := Split(events, s.maxBytes)
	res := &SendResult{}
	for _, r := range rejects {
		res.Response.Errors = append(res.Response.Errors, r.failure())
	}

	var errs *multierror.Error
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			res.Undelivered = append(res.Undelivered, chunk.Events...)
			errs = multierror.Append(errs, err)
			continue
		}

		res.Requests++
		resp, err := s.post(ctx, chunk)
		if err != nil {
			res.Undelivered = append(res.Undelivered, chunk.Events...)
			if len(chunks) > 1 {
				err = fmt.Errorf("chunk %d/%d (%d events): %w", i+1, len(chunks), len(chunk.Events), err)
			}
			errs = multierror.Append(errs, err)
			continue
		}
		res.Response.merge(resp)
	}

	if errs == nil {
		return res, nil
	}
	if len(errs.Errors) == 1 {
		return res, errs.Errors[0]
	}
	return res, errs
}

func (s *Sender) post(ctx context.Context, chunk Chunk) (*Response, error) {
	status, body, err := s.poster.PostIngestion(ctx, chunk.Payload)
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &pkgerrors.ProtocolError{StatusCode: status, Body: body, Err: err}
	}
	return &resp, nil
}
