package otel

import (
	"context"
	"encoding/json"
	"fmt"

	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// ScopeName is the tracer name used when a helper gets a nil tracer.
const ScopeName = "github.com/jdziat/langfuse-ingest"

func tracerOrGlobal(t trace.Tracer) trace.Tracer {
	if t == nil {
		return otelapi.Tracer(ScopeName)
	}
	return t
}

// ChatRequest describes a chat completion call.
type ChatRequest struct {
	System      string
	Model       string
	Temperature *float64
	MaxTokens   int
}

// StartChatCompletion starts a client span for a chat completion, recorded
// by Langfuse as a generation.
func StartChatCompletion(ctx context.Context, tracer trace.Tracer, req ChatRequest) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		KeyGenAIOperationName.String(OperationChat),
		KeyObservationType.String(ObservationGeneration),
	}
	if req.System != "" {
		attrs = append(attrs, KeyGenAISystem.String(req.System))
	}
	if req.Model != "" {
		attrs = append(attrs, KeyGenAIRequestModel.String(req.Model), KeyObservationModel.String(req.Model))
	}
	if req.Temperature != nil {
		attrs = append(attrs, KeyGenAIRequestTemperature.Float64(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		attrs = append(attrs, KeyGenAIRequestMaxTokens.Int(req.MaxTokens))
	}
	return tracerOrGlobal(tracer).Start(ctx, spanName(OperationChat, req.Model),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// StartEmbeddings starts a client span for an embeddings call.
func StartEmbeddings(ctx context.Context, tracer trace.Tracer, system, model string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		KeyGenAIOperationName.String(OperationEmbeddings),
		KeyObservationType.String(ObservationEmbedding),
		KeyGenAIRequestModel.String(model),
	}
	if system != "" {
		attrs = append(attrs, KeyGenAISystem.String(system))
	}
	return tracerOrGlobal(tracer).Start(ctx, spanName(OperationEmbeddings, model),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// StartToolCall starts an internal span for a tool execution. callID may be
// empty.
func StartToolCall(ctx context.Context, tracer trace.Tracer, tool, callID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		KeyGenAIOperationName.String(OperationExecuteTool),
		KeyObservationType.String(ObservationTool),
		KeyGenAIToolName.String(tool),
	}
	if callID != "" {
		attrs = append(attrs, KeyGenAIToolCallID.String(callID))
	}
	return tracerOrGlobal(tracer).Start(ctx, spanName(OperationExecuteTool, tool),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartAgent starts an internal span for an agent invocation.
func StartAgent(ctx context.Context, tracer trace.Tracer, agent string) (context.Context, trace.Span) {
	return tracerOrGlobal(tracer).Start(ctx, spanName(OperationInvokeAgent, agent),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			KeyGenAIOperationName.String(OperationInvokeAgent),
			KeyObservationType.String(ObservationAgent),
			KeyGenAIAgentName.String(agent),
		),
	)
}

func spanName(op, target string) string {
	if target == "" {
		return op
	}
	return op + " " + target
}

// ChatResponse describes the result of a model call.
type ChatResponse struct {
	ID            string
	Model         string
	FinishReasons []string
	InputTokens   int
	OutputTokens  int
}

// RecordResponse sets the response and usage attributes on span.
func RecordResponse(span trace.Span, resp ChatResponse) {
	var attrs []attribute.KeyValue
	if resp.ID != "" {
		attrs = append(attrs, KeyGenAIResponseID.String(resp.ID))
	}
	if resp.Model != "" {
		attrs = append(attrs, KeyGenAIResponseModel.String(resp.Model))
	}
	if len(resp.FinishReasons) > 0 {
		attrs = append(attrs, KeyGenAIResponseFinishReason.StringSlice(resp.FinishReasons))
	}
	if resp.InputTokens > 0 {
		attrs = append(attrs, KeyGenAIUsageInputTokens.Int(resp.InputTokens))
	}
	if resp.OutputTokens > 0 {
		attrs = append(attrs, KeyGenAIUsageOutputTokens.Int(resp.OutputTokens))
	}
	span.SetAttributes(attrs...)
}

// RecordError records err on span, marks the span failed and sets the
// observation level to ERROR. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(
		KeyObservationLevel.String(string(types.ObservationLevelError)),
		KeyObservationStatusMessage.String(err.Error()),
	)
}

// SetObservationInput stores v, JSON-encoded, as the observation input.
func SetObservationInput(span trace.Span, v any) error {
	return setJSON(span, KeyObservationInput, v)
}

// SetObservationOutput stores v, JSON-encoded, as the observation output.
func SetObservationOutput(span trace.Span, v any) error {
	return setJSON(span, KeyObservationOutput, v)
}

// SetTraceInput stores v, JSON-encoded, as the trace input.
func SetTraceInput(span trace.Span, v any) error {
	return setJSON(span, KeyTraceInput, v)
}

// SetTraceOutput stores v, JSON-encoded, as the trace output.
func SetTraceOutput(span trace.Span, v any) error {
	return setJSON(span, KeyTraceOutput, v)
}

func setJSON(span trace.Span, key attribute.Key, v any) error {
	if s, ok := v.(string); ok {
		span.SetAttributes(key.String(s))
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("langfuse: encoding %s: %w", key, err)
	}
	span.SetAttributes(key.String(string(b)))
	return nil
}

// SetObservationLevel sets the observation level.
func SetObservationLevel(span trace.Span, level types.ObservationLevel) {
	span.SetAttributes(KeyObservationLevel.String(string(level)))
}

// SetPromptReference links the observation to a managed prompt version.
func SetPromptReference(span trace.Span, name string, version int) {
	span.SetAttributes(
		KeyObservationPromptName.String(name),
		KeyObservationPromptVersion.Int(version),
	)
}

// SetTraceTags sets the trace tags.
func SetTraceTags(span trace.Span, tags ...string) {
	span.SetAttributes(KeyTraceTags.StringSlice(tags))
}

// SetTraceName sets the trace name.
func SetTraceName(span trace.Span, name string) {
	span.SetAttributes(KeyTraceName.String(name))
}
