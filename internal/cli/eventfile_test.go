package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdziat/langfuse-ingest/pkg/ingestion"
)

func TestDecodeEvents_YAMLStream(t *testing.T) {
	in := `
type: trace-create
body:
  id: trace-1
  name: checkout
  tags: [web, beta]
---
- type: span-create
  body:
    traceId: trace-1
    name: charge-card
- id: fixed-event-id
  type: score-create
  body:
    traceId: trace-1
    name: quality
    value: 0.9
`
	events, err := DecodeEvents(strings.NewReader(in), "events.yaml")
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, ingestion.EventTypeTraceCreate, events[0].Type)
	trace, ok := events[0].Body.(ingestion.TraceBody)
	require.True(t, ok)
	assert.Equal(t, "trace-1", trace.ID)
	assert.Equal(t, []string{"web", "beta"}, trace.Tags)
	assert.NotNil(t, trace.Timestamp)

	span, ok := events[1].Body.(ingestion.SpanBody)
	require.True(t, ok)
	assert.NotEmpty(t, span.ID, "span id is generated")
	assert.NotNil(t, span.StartTime)

	assert.Equal(t, "fixed-event-id", events[2].ID)
	assert.Equal(t, ingestion.EventTypeScoreCreate, events[2].Type)

	for _, ev := range events[:2] {
		assert.NotEmpty(t, ev.ID)
	}
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestDecodeEvents_JSON(t *testing.T) {
	in := `[{"type":"trace-create","body":{"name":"a"}},{"type":"event-create","body":{"traceId":"t","name":"click"}}]`

	events, err := DecodeEvents(strings.NewReader(in), "events.json")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ingestion.EventTypeEventCreate, events[1].Type)
}

func TestDecodeEvents_Empty(t *testing.T) {
	events, err := DecodeEvents(strings.NewReader(""), "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDecodeEvents_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing type", "body: {name: x}", "missing type"},
		{"unknown type", "type: log-create\nbody: {}", "unknown event type"},
		{"invalid body", "type: span-create\nbody: {name: orphan}", "traceId"},
		{"bad yaml", "type: [", "document 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvents(strings.NewReader(tt.in), "bad.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "bad.yaml")
		})
	}
}
