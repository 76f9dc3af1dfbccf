// Package types holds the value types shared by the ingestion pipeline and
// the read API clients: the Time wire format, enums, metadata, and the models
// returned by the public API.
package types
