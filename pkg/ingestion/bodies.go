package ingestion

import (
	"math"

	"github.com/google/uuid"

	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// TraceBody is the payload of a trace-create event.
type TraceBody struct {
	ID          string         `json:"id" validate:"required"`
	Timestamp   *types.Time    `json:"timestamp,omitempty"`
	Name        string         `json:"name,omitempty"`
	UserID      string         `json:"userId,omitempty"`
	SessionID   string         `json:"sessionId,omitempty"`
	Input       any            `json:"input,omitempty"`
	Output      any            `json:"output,omitempty"`
	Metadata    types.Metadata `json:"metadata,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Release     string         `json:"release,omitempty"`
	Version     string         `json:"version,omitempty"`
	Public      *bool          `json:"public,omitempty"`
	Environment string         `json:"environment,omitempty"`
}

func (TraceBody) EventType() EventType { return EventTypeTraceCreate }
func (TraceBody) isBody()              {}

// ObservationBody holds the fields shared by spans, generations and events.
type ObservationBody struct {
	ID                  string                 `json:"id" validate:"required"`
	TraceID             string                 `json:"traceId,omitempty"`
	Name                string                 `json:"name,omitempty"`
	StartTime           *types.Time            `json:"startTime,omitempty"`
	Metadata            types.Metadata         `json:"metadata,omitempty"`
	Input               any                    `json:"input,omitempty"`
	Output              any                    `json:"output,omitempty"`
	Level               types.ObservationLevel `json:"level,omitempty" validate:"omitempty,oneof=DEBUG DEFAULT WARNING ERROR"`
	StatusMessage       string                 `json:"statusMessage,omitempty"`
	ParentObservationID string                 `json:"parentObservationId,omitempty"`
	Version             string                 `json:"version,omitempty"`
	Environment         string                 `json:"environment,omitempty"`
}

func (o ObservationBody) withDefaults() ObservationBody {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.StartTime == nil {
		o.StartTime = types.TimeNow()
	}
	return o
}

func (o ObservationBody) requireTrace() error {
	if o.TraceID == "" {
		return pkgerrors.NewValidationError("traceId", "is required")
	}
	return nil
}

// SpanBody is the payload of a span-create event.
type SpanBody struct {
	ObservationBody
	EndTime *types.Time `json:"endTime,omitempty"`
}

func (SpanBody) EventType() EventType { return EventTypeSpanCreate }
func (SpanBody) isBody()              {}
func (b SpanBody) check() error       { return b.requireTrace() }

// SpanUpdateBody is the payload of a span-update event. Only ID is required;
// unset fields leave the stored span unchanged.
type SpanUpdateBody SpanBody

func (SpanUpdateBody) EventType() EventType { return EventTypeSpanUpdate }
func (SpanUpdateBody) isBody()              {}

// GenerationBody is the payload of a generation-create event.
type GenerationBody struct {
	ObservationBody
	EndTime             *types.Time        `json:"endTime,omitempty"`
	CompletionStartTime *types.Time        `json:"completionStartTime,omitempty"`
	Model               string             `json:"model,omitempty"`
	ModelParameters     map[string]any     `json:"modelParameters,omitempty"`
	Usage               *types.Usage       `json:"usage,omitempty"`
	UsageDetails        map[string]int     `json:"usageDetails,omitempty"`
	CostDetails         map[string]float64 `json:"costDetails,omitempty"`
	PromptName          string             `json:"promptName,omitempty"`
	PromptVersion       *int               `json:"promptVersion,omitempty"`
}

func (GenerationBody) EventType() EventType { return EventTypeGenerationCreate }
func (GenerationBody) isBody()              {}
func (b GenerationBody) check() error       { return b.requireTrace() }

// GenerationUpdateBody is the payload of a generation-update event.
type GenerationUpdateBody GenerationBody

func (GenerationUpdateBody) EventType() EventType { return EventTypeGenerationUpdate }
func (GenerationUpdateBody) isBody()              {}

// EventBody is the payload of an event-create event: a point-in-time
// observation without duration.
type EventBody struct {
	ObservationBody
}

func (EventBody) EventType() EventType { return EventTypeEventCreate }
func (EventBody) isBody()              {}
func (b EventBody) check() error       { return b.requireTrace() }

// ScoreBody is the payload of a score-create event. Value is a number for
// NUMERIC and BOOLEAN scores and a string for CATEGORICAL ones.
type ScoreBody struct {
	ID            string              `json:"id" validate:"required"`
	TraceID       string              `json:"traceId" validate:"required"`
	ObservationID string              `json:"observationId,omitempty"`
	Name          string              `json:"name" validate:"required"`
	Value         any                 `json:"value"`
	DataType      types.ScoreDataType `json:"dataType,omitempty" validate:"omitempty,oneof=NUMERIC CATEGORICAL BOOLEAN"`
	Comment       string              `json:"comment,omitempty"`
	ConfigID      string              `json:"configId,omitempty"`
	Metadata      types.Metadata      `json:"metadata,omitempty"`
	Environment   string              `json:"environment,omitempty"`
}

func (ScoreBody) EventType() EventType { return EventTypeScoreCreate }
func (ScoreBody) isBody()              {}

func (b ScoreBody) check() error {
	var num *float64
	switch v := b.Value.(type) {
	case nil:
		return pkgerrors.NewValidationError("value", "is required")
	case string:
		if b.DataType == types.ScoreDataTypeNumeric || b.DataType == types.ScoreDataTypeBoolean {
			return pkgerrors.NewValidationError("value", "must be a number for "+b.DataType.String()+" scores")
		}
		return nil
	case float64:
		num = &v
	case float32:
		f := float64(v)
		num = &f
	case int:
		f := float64(v)
		num = &f
	case int64:
		f := float64(v)
		num = &f
	case int32:
		f := float64(v)
		num = &f
	default:
		return pkgerrors.NewValidationError("value", "must be a number or a string")
	}

	if math.IsNaN(*num) || math.IsInf(*num, 0) {
		return pkgerrors.NewValidationError("value", "must be finite")
	}
	switch b.DataType {
	case types.ScoreDataTypeCategorical:
		return pkgerrors.NewValidationError("value", "must be a string for CATEGORICAL scores")
	case types.ScoreDataTypeBoolean:
		if *num != 0 && *num != 1 {
			return pkgerrors.NewValidationError("value", "must be 0 or 1 for BOOLEAN scores")
		}
	}
	return nil
}
