package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jdziat/langfuse-ingest/pkg/ingestion"
)

// document is one event as written in an event file. Body holds the fields of
// the matching ingestion body type.
type document struct {
	ID   string         `yaml:"id"`
	Type string         `yaml:"type"`
	Body map[string]any `yaml:"body"`
}

// DecodeEvents reads a stream of YAML documents, or JSON, from r. Each
// document is either one event or a list of events. name is used in errors.
func DecodeEvents(r io.Reader, name string) ([]ingestion.Event, error) {
	dec := yaml.NewDecoder(r)

	var events []ingestion.Event
	for n := 0; ; n++ {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return nil, fmt.Errorf("%s: document %d: %w", name, n, err)
		}

		var docs []document
		switch root := contentOf(&node); {
		case root == nil:
			continue
		case root.Kind == yaml.SequenceNode:
			if err := root.Decode(&docs); err != nil {
				return nil, fmt.Errorf("%s: document %d: %w", name, n, err)
			}
		default:
			var d document
			if err := root.Decode(&d); err != nil {
				return nil, fmt.Errorf("%s: document %d: %w", name, n, err)
			}
			docs = []document{d}
		}

		for i, d := range docs {
			ev, err := d.event()
			if err != nil {
				return nil, fmt.Errorf("%s: document %d, event %d: %w", name, n, i, err)
			}
			events = append(events, ev)
		}
	}
}

func contentOf(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		return n.Content[0]
	}
	return n
}

// event builds the ingestion event through the constructor for its type so
// ids and timestamps are filled in and the body is validated.
func (d document) event() (ingestion.Event, error) {
	if d.Type == "" {
		return ingestion.Event{}, errors.New("missing type")
	}
	body := d.Body
	if body == nil {
		body = map[string]any{}
	}
	raw, err := json.Marshal(map[string]any{"type": d.Type, "body": body})
	if err != nil {
		return ingestion.Event{}, err
	}

	var parsed ingestion.Event
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ingestion.Event{}, err
	}

	var ev ingestion.Event
	switch b := parsed.Body.(type) {
	case ingestion.TraceBody:
		ev, err = ingestion.NewTraceCreate(b)
	case ingestion.SpanBody:
		ev, err = ingestion.NewSpanCreate(b)
	case ingestion.SpanUpdateBody:
		ev, err = ingestion.NewSpanUpdate(b)
	case ingestion.GenerationBody:
		ev, err = ingestion.NewGenerationCreate(b)
	case ingestion.GenerationUpdateBody:
		ev, err = ingestion.NewGenerationUpdate(b)
	case ingestion.ScoreBody:
		ev, err = ingestion.NewScoreCreate(b)
	case ingestion.EventBody:
		ev, err = ingestion.NewEventCreate(b)
	default:
		return ingestion.Event{}, fmt.Errorf("unsupported body %T", parsed.Body)
	}
	if err != nil {
		return ingestion.Event{}, err
	}
	if d.ID != "" {
		ev.ID = d.ID
	}
	return ev, nil
}
