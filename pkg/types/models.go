package types

// Trace is a trace as returned by the read API.
type Trace struct {
	ID          string   `json:"id"`
	Timestamp   Time     `json:"timestamp,omitempty"`
	Name        string   `json:"name,omitempty"`
	UserID      string   `json:"userId,omitempty"`
	SessionID   string   `json:"sessionId,omitempty"`
	Input       any      `json:"input,omitempty"`
	Output      any      `json:"output,omitempty"`
	Metadata    Metadata `json:"metadata,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Release     string   `json:"release,omitempty"`
	Version     string   `json:"version,omitempty"`
	Public      bool     `json:"public,omitempty"`
	Environment string   `json:"environment,omitempty"`

	ProjectID      string   `json:"projectId,omitempty"`
	HTMLPath       string   `json:"htmlPath,omitempty"`
	Latency        float64  `json:"latency,omitempty"`
	TotalCost      float64  `json:"totalCost,omitempty"`
	ObservationIDs []string `json:"observations,omitempty"`
	ScoreIDs       []string `json:"scores,omitempty"`
}

// Observation is a span, generation or event as returned by the read API.
type Observation struct {
	ID                  string           `json:"id"`
	TraceID             string           `json:"traceId,omitempty"`
	Type                ObservationType  `json:"type"`
	Name                string           `json:"name,omitempty"`
	StartTime           Time             `json:"startTime,omitempty"`
	EndTime             *Time            `json:"endTime,omitempty"`
	CompletionStartTime *Time            `json:"completionStartTime,omitempty"`
	Metadata            Metadata         `json:"metadata,omitempty"`
	Level               ObservationLevel `json:"level,omitempty"`
	StatusMessage       string           `json:"statusMessage,omitempty"`
	ParentObservationID string           `json:"parentObservationId,omitempty"`
	Version             string           `json:"version,omitempty"`
	Input               any              `json:"input,omitempty"`
	Output              any              `json:"output,omitempty"`
	Environment         string           `json:"environment,omitempty"`

	Model           string         `json:"model,omitempty"`
	ModelParameters map[string]any `json:"modelParameters,omitempty"`
	Usage           *Usage         `json:"usage,omitempty"`
	PromptID        string         `json:"promptId,omitempty"`

	Latency          float64 `json:"latency,omitempty"`
	TimeToFirstToken float64 `json:"timeToFirstToken,omitempty"`
	TotalCost        float64 `json:"calculatedTotalCost,omitempty"`
}

// Usage is token usage and cost for a generation.
type Usage struct {
	Input      int     `json:"input,omitempty"`
	Output     int     `json:"output,omitempty"`
	Total      int     `json:"total,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	InputCost  float64 `json:"inputCost,omitempty"`
	OutputCost float64 `json:"outputCost,omitempty"`
	TotalCost  float64 `json:"totalCost,omitempty"`
}

// Score is a score as returned by the read API.
type Score struct {
	ID            string        `json:"id"`
	TraceID       string        `json:"traceId,omitempty"`
	ObservationID string        `json:"observationId,omitempty"`
	SessionID     string        `json:"sessionId,omitempty"`
	Name          string        `json:"name"`
	Value         any           `json:"value,omitempty"`
	StringValue   string        `json:"stringValue,omitempty"`
	DataType      ScoreDataType `json:"dataType,omitempty"`
	Source        ScoreSource   `json:"source,omitempty"`
	Comment       string        `json:"comment,omitempty"`
	ConfigID      string        `json:"configId,omitempty"`
	Timestamp     Time          `json:"timestamp,omitempty"`
	Environment   string        `json:"environment,omitempty"`
}

// Session groups traces that share a session id.
type Session struct {
	ID        string  `json:"id"`
	CreatedAt Time    `json:"createdAt,omitempty"`
	ProjectID string  `json:"projectId,omitempty"`
	Traces    []Trace `json:"traces,omitempty"`
}

// Dataset is a named collection of evaluation items.
type Dataset struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Metadata    Metadata `json:"metadata,omitempty"`
	CreatedAt   Time     `json:"createdAt,omitempty"`
	UpdatedAt   Time     `json:"updatedAt,omitempty"`
}

// DatasetItem is one input/expected-output pair in a dataset.
type DatasetItem struct {
	ID                  string   `json:"id,omitempty"`
	DatasetName         string   `json:"datasetName,omitempty"`
	Input               any      `json:"input,omitempty"`
	ExpectedOutput      any      `json:"expectedOutput,omitempty"`
	Metadata            Metadata `json:"metadata,omitempty"`
	SourceTraceID       string   `json:"sourceTraceId,omitempty"`
	SourceObservationID string   `json:"sourceObservationId,omitempty"`
	Status              string   `json:"status,omitempty"`
	CreatedAt           Time     `json:"createdAt,omitempty"`
}

// HealthStatus is the response of the health endpoint.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// MetaResponse is the pagination block of list responses.
type MetaResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// HasMore reports whether pages after the current one exist.
func (m MetaResponse) HasMore() bool {
	return m.Page < m.TotalPages
}

// ListResponse is a page of T with its pagination metadata.
type ListResponse[T any] struct {
	Data []T          `json:"data"`
	Meta MetaResponse `json:"meta"`
}
