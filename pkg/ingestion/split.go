package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
)

// MaxBatchBytes is the largest ingestion request body the server accepts.
const MaxBatchBytes = 3_500_000

var (
	payloadPrefix = []byte(`{"batch":[`)
	payloadSuffix = []byte(`]}`)
)

// envelopeBytes is the size of an encoded Request with an empty batch.
var envelopeBytes = len(payloadPrefix) + len(payloadSuffix)

// Chunk is a group of events small enough for one request, with its
// encoded request body.
type Chunk struct {
	Events  []Event
	Payload []byte
}

// Reject is an event that was never sent.
type Reject struct {
	Event  Event
	Status int
	Err    error
}

func (r Reject) failure() Failure {
	return Failure{ID: r.Event.ID, Status: r.Status, Message: r.Err.Error()}
}

// Split groups events, in order, into chunks whose encoded Request is at most
// maxBytes. Chunks are filled greedily. An event that cannot fit even alone,
// or that cannot be encoded, is returned as a Reject and never sent.
func Split(events []Event, maxBytes int) ([]Chunk, []Reject) {
	if maxBytes <= 0 {
		maxBytes = MaxBatchBytes
	}

	var (
		chunks  []Chunk
		rejects []Reject
		cur     []Event
		encoded [][]byte
		size    = envelopeBytes
	)

	flush := func() {
		if len(cur) == 0 {
			return
		}
		chunks = append(chunks, Chunk{Events: cur, Payload: assemble(encoded, size)})
		cur, encoded, size = nil, nil, envelopeBytes
	}

	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			rejects = append(rejects, Reject{Event: ev, Status: http.StatusBadRequest, Err: err})
			continue
		}
		if envelopeBytes+len(data) > maxBytes {
			rejects = append(rejects, Reject{
				Event:  ev,
				Status: http.StatusRequestEntityTooLarge,
				Err:    fmt.Errorf("%w: %d bytes encoded, limit %d", pkgerrors.ErrEventTooLarge, len(data), maxBytes),
			})
			continue
		}

		added := len(data)
		if len(cur) > 0 {
			added++ // comma
		}
		if size+added > maxBytes {
			flush()
			added = len(data)
		}
		cur = append(cur, ev)
		encoded = append(encoded, data)
		size += added
	}
	flush()

	return chunks, rejects
}

// CheckSize returns an error wrapping errors.ErrEventTooLarge when ev alone
// would not fit in a request of maxBytes. A maxBytes of zero means
// MaxBatchBytes.
func CheckSize(ev Event, maxBytes int) error {
	if maxBytes <= 0 {
		maxBytes = MaxBatchBytes
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("langfuse: encoding event %s: %w", ev.ID, err)
	}
	if envelopeBytes+len(data) > maxBytes {
		return fmt.Errorf("langfuse: event %s: %w: %d bytes encoded, limit %d",
			ev.ID, pkgerrors.ErrEventTooLarge, len(data), maxBytes)
	}
	return nil
}

func assemble(encoded [][]byte, size int) []byte {
	var buf bytes.Buffer
	buf.Grow(size)
	buf.Write(payloadPrefix)
	for i, e := range encoded {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(e)
	}
	buf.Write(payloadSuffix)
	return buf.Bytes()
}
