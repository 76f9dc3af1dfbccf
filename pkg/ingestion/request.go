package ingestion

import (
	"encoding/json"
	"fmt"
)

// Endpoint is the ingestion path relative to the public API root.
const Endpoint = "/ingestion"

// Request is the body of an ingestion POST.
type Request struct {
	Batch    []Event        `json:"batch"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Success reports that the server accepted the event with ID.
type Success struct {
	ID     string `json:"id"`
	Status int    `json:"status"`
}

// Failure reports that the server rejected the event with ID. Detail is the
// server's error object, kept verbatim.
type Failure struct {
	ID      string          `json:"id"`
	Status  int             `json:"status"`
	Message string          `json:"message,omitempty"`
	Detail  json.RawMessage `json:"error,omitempty"`
}

func (f Failure) String() string {
	if f.Message != "" {
		return fmt.Sprintf("event %s rejected (status %d): %s", f.ID, f.Status, f.Message)
	}
	return fmt.Sprintf("event %s rejected (status %d)", f.ID, f.Status)
}

// Response is the decoded body of a 2xx ingestion response. The server does
// not preserve batch order; match outcomes to events by ID.
type Response struct {
	Successes []Success `json:"successes"`
	Errors    []Failure `json:"errors"`
}

// Outcome is the server's verdict on one event.
type Outcome struct {
	ID      string
	Status  int
	OK      bool
	Message string
}

// Outcome returns the verdict for the event with id. The second result is
// false when the response does not mention id.
func (r *Response) Outcome(id string) (Outcome, bool) {
	if r == nil {
		return Outcome{}, false
	}
	for _, f := range r.Errors {
		if f.ID == id {
			return Outcome{ID: id, Status: f.Status, Message: f.Message}, true
		}
	}
	for _, s := range r.Successes {
		if s.ID == id {
			return Outcome{ID: id, Status: s.Status, OK: true}, true
		}
	}
	return Outcome{}, false
}

// Succeeded reports whether the event with id was accepted.
func (r *Response) Succeeded(id string) bool {
	o, ok := r.Outcome(id)
	return ok && o.OK
}

// HasErrors reports whether any event was rejected.
func (r *Response) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// Outcomes indexes every verdict in r by event id.
func (r *Response) Outcomes() map[string]Outcome {
	if r == nil {
		return nil
	}
	out := make(map[string]Outcome, len(r.Successes)+len(r.Errors))
	for _, s := range r.Successes {
		out[s.ID] = Outcome{ID: s.ID, Status: s.Status, OK: true}
	}
	for _, f := range r.Errors {
		out[f.ID] = Outcome{ID: f.ID, Status: f.Status, Message: f.Message}
	}
	return out
}

func (r *Response) merge(other *Response) {
	if other == nil {
		return
	}
	r.Successes = append(r.Successes, other.Successes...)
	r.Errors = append(r.Errors, other.Errors...)
}

// PartialFailure describes a delivered batch in which the server rejected
// some events. It is reported, never returned as an error.
type PartialFailure struct {
	BatchSize int
	Errors    []Failure
}
