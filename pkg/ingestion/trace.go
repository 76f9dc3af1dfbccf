package ingestion

import (
	"sync"

	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// Trace collects a trace-create event and the events of its observations so
// they can be ingested together.
//
//	tr, _ := ingestion.NewTrace(ingestion.TraceBody{Name: "chat"})
//	span, _ := tr.Span(ingestion.SpanBody{ObservationBody: ingestion.ObservationBody{Name: "retrieve"}})
//	_, _ = span.Generation(ingestion.GenerationBody{Model: "gpt-4o"})
//	_ = span.End("done")
//	err := client.IngestTrace(ctx, tr)
type Trace struct {
	mu     sync.Mutex
	id     string
	events []Event
}

// NewTrace starts a trace. Body.ID is generated when empty.
func NewTrace(body TraceBody) (*Trace, error) {
	ev, err := NewTraceCreate(body)
	if err != nil {
		return nil, err
	}
	return &Trace{
		id:     ev.Body.(TraceBody).ID,
		events: []Event{ev},
	}, nil
}

// ID returns the trace id.
func (t *Trace) ID() string { return t.id }

// Events returns the trace-create event followed by every child event in
// creation order.
func (t *Trace) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Len returns the number of collected events.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

func (t *Trace) add(ev Event) {
	t.mu.Lock()
	t.events = append(t.events, ev)
	t.mu.Unlock()
}

// Span adds a top-level span.
func (t *Trace) Span(body SpanBody) (*Observation, error) {
	return t.root().Span(body)
}

// Generation adds a top-level generation.
func (t *Trace) Generation(body GenerationBody) (*Observation, error) {
	return t.root().Generation(body)
}

// Event adds a top-level event.
func (t *Trace) Event(body EventBody) (string, error) {
	return t.root().Event(body)
}

// Score adds a score on the trace.
func (t *Trace) Score(body ScoreBody) (string, error) {
	body.TraceID = t.id
	ev, err := NewScoreCreate(body)
	if err != nil {
		return "", err
	}
	t.add(ev)
	return ev.Body.(ScoreBody).ID, nil
}

func (t *Trace) root() *Observation {
	return &Observation{trace: t}
}

// Observation is a span or generation inside a Trace. Children created from
// it get it as their parent.
type Observation struct {
	trace        *Trace
	id           string
	parentID     string
	isGeneration bool
}

// ID returns the observation id.
func (o *Observation) ID() string { return o.id }

func (o *Observation) fill(b ObservationBody) ObservationBody {
	b.TraceID = o.trace.id
	if b.ParentObservationID == "" {
		b.ParentObservationID = o.id
	}
	return b
}

// Span adds a child span.
func (o *Observation) Span(body SpanBody) (*Observation, error) {
	body.ObservationBody = o.fill(body.ObservationBody)
	ev, err := NewSpanCreate(body)
	if err != nil {
		return nil, err
	}
	o.trace.add(ev)
	b := ev.Body.(SpanBody)
	return &Observation{trace: o.trace, id: b.ID, parentID: b.ParentObservationID}, nil
}

// Generation adds a child generation.
func (o *Observation) Generation(body GenerationBody) (*Observation, error) {
	body.ObservationBody = o.fill(body.ObservationBody)
	ev, err := NewGenerationCreate(body)
	if err != nil {
		return nil, err
	}
	o.trace.add(ev)
	b := ev.Body.(GenerationBody)
	return &Observation{trace: o.trace, id: b.ID, parentID: b.ParentObservationID, isGeneration: true}, nil
}

// Event adds a child event and returns its id.
func (o *Observation) Event(body EventBody) (string, error) {
	body.ObservationBody = o.fill(body.ObservationBody)
	ev, err := NewEventCreate(body)
	if err != nil {
		return "", err
	}
	o.trace.add(ev)
	return ev.Body.(EventBody).ID, nil
}

// Score adds a score on this observation.
func (o *Observation) Score(body ScoreBody) (string, error) {
	body.ObservationID = o.id
	return o.trace.Score(body)
}

// End records output and the end time with an update event.
func (o *Observation) End(output any) error {
	obs := ObservationBody{
		ID:                  o.id,
		TraceID:             o.trace.id,
		ParentObservationID: o.parentID,
		Output:              output,
	}
	now := types.TimeNow()

	var (
		ev  Event
		err error
	)
	if o.isGeneration {
		ev, err = NewGenerationUpdate(GenerationUpdateBody{ObservationBody: obs, EndTime: now})
	} else {
		ev, err = NewSpanUpdate(SpanUpdateBody{ObservationBody: obs, EndTime: now})
	}
	if err != nil {
		return err
	}
	o.trace.add(ev)
	return nil
}
