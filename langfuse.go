package langfuse

import (
	"github.com/jdziat/langfuse-ingest/pkg/client"
	pkgconfig "github.com/jdziat/langfuse-ingest/pkg/config"
	"github.com/jdziat/langfuse-ingest/pkg/ingestion"
	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// Version is the client version sent in the User-Agent header.
const Version = client.Version

// Client types.
type (
	Client           = client.Client
	Config           = client.Config
	ConfigOption     = client.ConfigOption
	Settings         = pkgconfig.Settings
	Region           = client.Region
	IngestionMode    = client.IngestionMode
	ClientState      = client.ClientState
	Logger           = client.Logger
	StructuredLogger = client.StructuredLogger
	Metrics          = client.Metrics
	RetryPolicy      = client.RetryPolicy
	BreakerConfig    = client.BreakerConfig
	HTTPHook         = client.HTTPHook
	ClassifiedHook   = client.ClassifiedHook
)

// Event types.
type (
	Event                = ingestion.Event
	EventType            = ingestion.EventType
	Body                 = ingestion.Body
	TraceBody            = ingestion.TraceBody
	ObservationBody      = ingestion.ObservationBody
	SpanBody             = ingestion.SpanBody
	SpanUpdateBody       = ingestion.SpanUpdateBody
	GenerationBody       = ingestion.GenerationBody
	GenerationUpdateBody = ingestion.GenerationUpdateBody
	EventBody            = ingestion.EventBody
	ScoreBody            = ingestion.ScoreBody
	Trace                = ingestion.Trace
	Observation          = ingestion.Observation
)

// Delivery result types.
type (
	Response          = ingestion.Response
	Success           = ingestion.Success
	Failure           = ingestion.Failure
	BatchResult       = ingestion.BatchResult
	PartialFailure    = ingestion.PartialFailure
	Stats             = ingestion.Stats
	BackpressureLevel = ingestion.BackpressureLevel
	QueueState        = ingestion.QueueState
)

// Value types used in bodies.
type (
	Time             = types.Time
	Metadata         = types.Metadata
	Usage            = types.Usage
	ObservationLevel = types.ObservationLevel
	ScoreDataType    = types.ScoreDataType
)

const (
	EventTypeTraceCreate      = ingestion.EventTypeTraceCreate
	EventTypeSpanCreate       = ingestion.EventTypeSpanCreate
	EventTypeSpanUpdate       = ingestion.EventTypeSpanUpdate
	EventTypeGenerationCreate = ingestion.EventTypeGenerationCreate
	EventTypeGenerationUpdate = ingestion.EventTypeGenerationUpdate
	EventTypeScoreCreate      = ingestion.EventTypeScoreCreate
	EventTypeEventCreate      = ingestion.EventTypeEventCreate
)

const (
	RegionEU    = client.RegionEU
	RegionUS    = client.RegionUS
	RegionHIPAA = client.RegionHIPAA

	ModeBatch     = client.ModeBatch
	ModeImmediate = client.ModeImmediate

	ObservationLevelDebug   = types.ObservationLevelDebug
	ObservationLevelDefault = types.ObservationLevelDefault
	ObservationLevelWarning = types.ObservationLevelWarning
	ObservationLevelError   = types.ObservationLevelError

	BackpressureNone     = ingestion.BackpressureNone
	BackpressureWarning  = ingestion.BackpressureWarning
	BackpressureCritical = ingestion.BackpressureCritical
	BackpressureFull     = ingestion.BackpressureFull
)

// New creates a client from credentials and options.
func New(publicKey, secretKey string, opts ...ConfigOption) (*Client, error) {
	return client.New(publicKey, secretKey, opts...)
}

// NewWithConfig creates a client from a complete Config.
func NewWithConfig(cfg *Config) (*Client, error) {
	return client.NewWithConfig(cfg)
}

// NewFromSettings creates a client from loaded settings. Options are applied
// after the settings.
func NewFromSettings(s *Settings, opts ...ConfigOption) (*Client, error) {
	return client.NewFromSettings(s, opts...)
}

// LoadSettings reads settings from path and the LANGFUSE_* environment. An
// empty path reads the environment only.
func LoadSettings(path string) (*Settings, error) {
	return pkgconfig.Load(path)
}

// Event constructors. Each fills in a missing id and timestamp and validates
// the body.
var (
	NewEvent            = ingestion.NewEvent
	NewTraceCreate      = ingestion.NewTraceCreate
	NewSpanCreate       = ingestion.NewSpanCreate
	NewSpanUpdate       = ingestion.NewSpanUpdate
	NewGenerationCreate = ingestion.NewGenerationCreate
	NewGenerationUpdate = ingestion.NewGenerationUpdate
	NewScoreCreate      = ingestion.NewScoreCreate
	NewEventCreate      = ingestion.NewEventCreate
	NewTrace            = ingestion.NewTrace
)

// Now returns the current time in the wire format used by bodies.
func Now() *Time {
	return types.TimeNow()
}
