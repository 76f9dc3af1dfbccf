package otel

import "go.opentelemetry.io/otel/attribute"

// GenAI semantic convention keys.
const (
	KeyGenAIOperationName        = attribute.Key("gen_ai.operation.name")
	KeyGenAISystem               = attribute.Key("gen_ai.system")
	KeyGenAIRequestModel         = attribute.Key("gen_ai.request.model")
	KeyGenAIRequestTemperature   = attribute.Key("gen_ai.request.temperature")
	KeyGenAIRequestMaxTokens     = attribute.Key("gen_ai.request.max_tokens")
	KeyGenAIResponseID           = attribute.Key("gen_ai.response.id")
	KeyGenAIResponseModel        = attribute.Key("gen_ai.response.model")
	KeyGenAIResponseFinishReason = attribute.Key("gen_ai.response.finish_reasons")
	KeyGenAIUsageInputTokens     = attribute.Key("gen_ai.usage.input_tokens")
	KeyGenAIUsageOutputTokens    = attribute.Key("gen_ai.usage.output_tokens")
	KeyGenAIToolName             = attribute.Key("gen_ai.tool.name")
	KeyGenAIToolCallID           = attribute.Key("gen_ai.tool.call.id")
	KeyGenAIAgentName            = attribute.Key("gen_ai.agent.name")
)

// GenAI operation names.
const (
	OperationChat        = "chat"
	OperationEmbeddings  = "embeddings"
	OperationExecuteTool = "execute_tool"
	OperationInvokeAgent = "invoke_agent"
)

// Langfuse trace keys.
const (
	KeyTraceName      = attribute.Key("langfuse.trace.name")
	KeyTraceUserID    = attribute.Key("langfuse.user.id")
	KeyTraceSessionID = attribute.Key("langfuse.session.id")
	KeyTraceTags      = attribute.Key("langfuse.trace.tags")
	KeyTracePublic    = attribute.Key("langfuse.trace.public")
	KeyTraceMetadata  = attribute.Key("langfuse.trace.metadata")
	KeyTraceInput     = attribute.Key("langfuse.trace.input")
	KeyTraceOutput    = attribute.Key("langfuse.trace.output")
	KeyEnvironment    = attribute.Key("langfuse.environment")
	KeyRelease        = attribute.Key("langfuse.release")
	KeyVersion        = attribute.Key("langfuse.version")
)

// Langfuse observation keys.
const (
	KeyObservationType          = attribute.Key("langfuse.observation.type")
	KeyObservationMetadata      = attribute.Key("langfuse.observation.metadata")
	KeyObservationLevel         = attribute.Key("langfuse.observation.level")
	KeyObservationStatusMessage = attribute.Key("langfuse.observation.status_message")
	KeyObservationInput         = attribute.Key("langfuse.observation.input")
	KeyObservationOutput        = attribute.Key("langfuse.observation.output")
	KeyObservationModel         = attribute.Key("langfuse.observation.model.name")
	KeyObservationPromptName    = attribute.Key("langfuse.observation.prompt.name")
	KeyObservationPromptVersion = attribute.Key("langfuse.observation.prompt.version")
)

// Observation types.
const (
	ObservationSpan       = "span"
	ObservationGeneration = "generation"
	ObservationEvent      = "event"
	ObservationAgent      = "agent"
	ObservationTool       = "tool"
	ObservationEmbedding  = "embedding"
)

// Baggage keys read by BaggageProcessor.
const (
	BaggageUserID    = "langfuse.user_id"
	BaggageSessionID = "langfuse.session_id"
	BaggageVersion   = "langfuse.version"
	BaggageRelease   = "langfuse.release"
	BaggageTags      = "langfuse.tags"
)
