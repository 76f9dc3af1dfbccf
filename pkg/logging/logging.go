// Package logging builds the slog loggers used by the client and the CLI.
//
// New writes text or JSON to a writer and can fan every record out to the
// OpenTelemetry log bridge as well:
//
//	logger := logging.New(logging.Options{Debug: true, OTel: true})
//	c, err := client.New(pk, sk, client.WithStructuredLogger(logger))
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"
)

// DefaultComponent is the value of the component attribute when
// Options.Component is empty.
const DefaultComponent = "langfuse"

// BridgeName is the instrumentation scope of records sent to the
// OpenTelemetry log bridge.
const BridgeName = "github.com/jdziat/langfuse-ingest"

// Format selects the encoding of the local handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat maps "text" or "json" (any case) to a Format. The empty string
// is text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatText):
		return FormatText, nil
	case string(FormatJSON):
		return FormatJSON, nil
	}
	return "", fmt.Errorf("langfuse: unknown log format %q", s)
}

// Options configures New.
type Options struct {
	// Writer receives local output. Defaults to os.Stderr.
	Writer io.Writer

	// Format of local output. Defaults to FormatText.
	Format Format

	// Level overrides the level derived from Debug.
	Level slog.Leveler

	// Debug lowers the default level from Warn to Debug.
	Debug bool

	// Component is attached to every record as the component attribute.
	Component string

	// OTel also sends every record to the OpenTelemetry log bridge.
	OTel bool

	// LoggerProvider backs the bridge. Nil uses the global provider.
	LoggerProvider log.LoggerProvider

	// Handlers receive every record in addition to the local handler.
	Handlers []slog.Handler
}

func (o Options) level() slog.Leveler {
	switch {
	case o.Level != nil:
		return o.Level
	case o.Debug:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}

// New builds a logger from opts.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: opts.level()}

	var local slog.Handler
	if opts.Format == FormatJSON {
		local = slog.NewJSONHandler(w, hopts)
	} else {
		local = slog.NewTextHandler(w, hopts)
	}

	handlers := []slog.Handler{local}
	if opts.OTel {
		var bopts []otelslog.Option
		if opts.LoggerProvider != nil {
			bopts = append(bopts, otelslog.WithLoggerProvider(opts.LoggerProvider))
		}
		handlers = append(handlers, otelslog.NewHandler(BridgeName, bopts...))
	}
	handlers = append(handlers, opts.Handlers...)

	var h slog.Handler = local
	if len(handlers) > 1 {
		h = slogmulti.Fanout(handlers...)
	}

	component := opts.Component
	if component == "" {
		component = DefaultComponent
	}
	return slog.New(h).With(slog.String("component", component))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
