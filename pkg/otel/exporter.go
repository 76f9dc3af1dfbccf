package otel

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	pkgconfig "github.com/jdziat/langfuse-ingest/pkg/config"
)

// TracesPath is the OTLP/HTTP traces endpoint relative to the server root.
const TracesPath = pkgconfig.APIPrefix + "/otel/v1/traces"

// ExporterOptions configures NewExporter.
type ExporterOptions struct {
	PublicKey string
	SecretKey string

	// BaseURL is the server root. Empty resolves from Region.
	BaseURL string
	Region  pkgconfig.Region

	// Timeout bounds one export. Zero keeps the exporter default.
	Timeout time.Duration

	// Headers are sent with every export in addition to Authorization.
	Headers map[string]string

	// Gzip compresses export payloads.
	Gzip bool
}

// Endpoint returns the full traces URL for o.
func (o ExporterOptions) Endpoint() string {
	base := pkgconfig.ResolveBaseURL(o.BaseURL, "", o.Region)
	return strings.TrimRight(base, "/") + TracesPath
}

// NewExporter returns an OTLP/HTTP span exporter that sends to Langfuse with
// Basic authentication.
func NewExporter(ctx context.Context, opts ExporterOptions) (sdktrace.SpanExporter, error) {
	if opts.PublicKey == "" || opts.SecretKey == "" {
		return nil, errors.New("langfuse: otel exporter requires public and secret keys")
	}

	headers := make(map[string]string, len(opts.Headers)+1)
	for k, v := range opts.Headers {
		headers[k] = v
	}
	auth := base64.StdEncoding.EncodeToString([]byte(opts.PublicKey + ":" + opts.SecretKey))
	headers["Authorization"] = "Basic " + auth

	hopts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(opts.Endpoint()),
		otlptracehttp.WithHeaders(headers),
	}
	if opts.Timeout > 0 {
		hopts = append(hopts, otlptracehttp.WithTimeout(opts.Timeout))
	}
	if opts.Gzip {
		hopts = append(hopts, otlptracehttp.WithCompression(otlptracehttp.GzipCompression))
	}

	exp, err := otlptracehttp.New(ctx, hopts...)
	if err != nil {
		return nil, fmt.Errorf("langfuse: failed to create OTLP exporter: %w", err)
	}
	return exp, nil
}
