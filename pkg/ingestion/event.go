package ingestion

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// EventType is the discriminator of an ingestion event.
type EventType string

const (
	EventTypeTraceCreate      EventType = "trace-create"
	EventTypeSpanCreate       EventType = "span-create"
	EventTypeSpanUpdate       EventType = "span-update"
	EventTypeGenerationCreate EventType = "generation-create"
	EventTypeGenerationUpdate EventType = "generation-update"
	EventTypeScoreCreate      EventType = "score-create"
	EventTypeEventCreate      EventType = "event-create"
)

func (t EventType) String() string { return string(t) }

// Body is the payload of an ingestion event. The set of implementations is
// closed; see the *Body types in this package.
type Body interface {
	EventType() EventType
	isBody()
}

// Event is one unit of ingestion.
//
// ID is generated for the event itself and is the key the server uses to
// report the event's outcome. It is distinct from the id inside Body, which
// names the trace, observation or score being written. Timestamp is set once
// when the event is built.
//
// Events are values and are not modified after they are handed to a Client.
type Event struct {
	ID        string
	Type      EventType
	Timestamp types.Time
	Body      Body
}

type wireEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp types.Time      `json:"timestamp"`
	Body      json.RawMessage `json:"body"`
}

// MarshalJSON implements json.Marshaler.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Body == nil {
		return nil, fmt.Errorf("langfuse: event %s has no body", e.ID)
	}
	if e.Type != e.Body.EventType() {
		return nil, fmt.Errorf("langfuse: event %s has type %q but body of type %q", e.ID, e.Type, e.Body.EventType())
	}
	body, err := json.Marshal(e.Body)
	if err != nil {
		return nil, fmt.Errorf("langfuse: encoding body of event %s: %w", e.ID, err)
	}
	return json.Marshal(wireEvent{
		ID:        e.ID,
		Type:      e.Type,
		Timestamp: e.Timestamp,
		Body:      body,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Unknown event types are an error.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	body, err := decodeBody(w.Type, w.Body)
	if err != nil {
		return err
	}

	e.ID = w.ID
	e.Type = w.Type
	e.Timestamp = w.Timestamp
	e.Body = body
	return nil
}

func decodeBody(t EventType, raw json.RawMessage) (Body, error) {
	var (
		body Body
		err  error
	)
	switch t {
	case EventTypeTraceCreate:
		var b TraceBody
		err = json.Unmarshal(raw, &b)
		body = b
	case EventTypeSpanCreate:
		var b SpanBody
		err = json.Unmarshal(raw, &b)
		body = b
	case EventTypeSpanUpdate:
		var b SpanUpdateBody
		err = json.Unmarshal(raw, &b)
		body = b
	case EventTypeGenerationCreate:
		var b GenerationBody
		err = json.Unmarshal(raw, &b)
		body = b
	case EventTypeGenerationUpdate:
		var b GenerationUpdateBody
		err = json.Unmarshal(raw, &b)
		body = b
	case EventTypeScoreCreate:
		var b ScoreBody
		err = json.Unmarshal(raw, &b)
		body = b
	case EventTypeEventCreate:
		var b EventBody
		err = json.Unmarshal(raw, &b)
		body = b
	default:
		return nil, fmt.Errorf("langfuse: unknown event type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("langfuse: decoding %s body: %w", t, err)
	}
	return body, nil
}

// NewEvent validates body and wraps it in an Event with a fresh id and the
// current timestamp. Invalid bodies yield a *errors.ValidationError and no
// event.
func NewEvent(body Body) (Event, error) {
	if body == nil {
		return Event{}, pkgerrors.NewValidationError("body", "is required")
	}
	if err := validateBody(body); err != nil {
		return Event{}, err
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      body.EventType(),
		Timestamp: types.Now(),
		Body:      body,
	}, nil
}

// NewTraceCreate builds a trace-create event. An empty body id is filled in.
func NewTraceCreate(body TraceBody) (Event, error) {
	if body.ID == "" {
		body.ID = uuid.NewString()
	}
	if body.Timestamp == nil {
		body.Timestamp = types.TimeNow()
	}
	return NewEvent(body)
}

// NewSpanCreate builds a span-create event. An empty body id and start time
// are filled in.
func NewSpanCreate(body SpanBody) (Event, error) {
	body.ObservationBody = body.withDefaults()
	return NewEvent(body)
}

// NewSpanUpdate builds a span-update event. Body.ID must name an existing span.
func NewSpanUpdate(body SpanUpdateBody) (Event, error) {
	return NewEvent(body)
}

// NewGenerationCreate builds a generation-create event. An empty body id and
// start time are filled in.
func NewGenerationCreate(body GenerationBody) (Event, error) {
	body.ObservationBody = body.withDefaults()
	return NewEvent(body)
}

// NewGenerationUpdate builds a generation-update event. Body.ID must name an
// existing generation.
func NewGenerationUpdate(body GenerationUpdateBody) (Event, error) {
	return NewEvent(body)
}

// NewScoreCreate builds a score-create event. An empty body id is filled in.
func NewScoreCreate(body ScoreBody) (Event, error) {
	if body.ID == "" {
		body.ID = uuid.NewString()
	}
	return NewEvent(body)
}

// NewEventCreate builds an event-create event. An empty body id and start
// time are filled in.
func NewEventCreate(body EventBody) (Event, error) {
	body.ObservationBody = body.withDefaults()
	return NewEvent(body)
}

// IDs returns the event ids of events in order.
func IDs(events []Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}
