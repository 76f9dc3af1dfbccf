package types

// ObservationType is the kind of an observation as reported by the read API.
type ObservationType string

const (
	ObservationTypeSpan       ObservationType = "SPAN"
	ObservationTypeGeneration ObservationType = "GENERATION"
	ObservationTypeEvent      ObservationType = "EVENT"
)

func (o ObservationType) String() string { return string(o) }

// ObservationLevel is the severity of an observation. The server expects the
// upper-case spelling.
type ObservationLevel string

const (
	ObservationLevelDebug   ObservationLevel = "DEBUG"
	ObservationLevelDefault ObservationLevel = "DEFAULT"
	ObservationLevelWarning ObservationLevel = "WARNING"
	ObservationLevelError   ObservationLevel = "ERROR"
)

func (l ObservationLevel) String() string { return string(l) }

// Valid reports whether l is one of the known levels. The empty level is
// valid and means the server default.
func (l ObservationLevel) Valid() bool {
	switch l {
	case "", ObservationLevelDebug, ObservationLevelDefault, ObservationLevelWarning, ObservationLevelError:
		return true
	}
	return false
}

// ScoreDataType is the data type of a score value.
type ScoreDataType string

const (
	ScoreDataTypeNumeric     ScoreDataType = "NUMERIC"
	ScoreDataTypeCategorical ScoreDataType = "CATEGORICAL"
	ScoreDataTypeBoolean     ScoreDataType = "BOOLEAN"
)

func (s ScoreDataType) String() string { return string(s) }

// ScoreSource identifies who produced a score.
type ScoreSource string

const (
	ScoreSourceAPI        ScoreSource = "API"
	ScoreSourceAnnotation ScoreSource = "ANNOTATION"
	ScoreSourceEval       ScoreSource = "EVAL"
)

func (s ScoreSource) String() string { return string(s) }

// PromptType is the kind of a managed prompt.
type PromptType string

const (
	PromptTypeText PromptType = "text"
	PromptTypeChat PromptType = "chat"
)

func (p PromptType) String() string { return string(p) }
