// Package cli implements the langfuse-ingest command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jdziat/langfuse-ingest/pkg/client"
	"github.com/jdziat/langfuse-ingest/pkg/logging"
)

// Version is the version of the command.
const Version = "0.4.0"

type rootOptions struct {
	configPath string
	baseURL    string
	debug      bool
	logFormat  string
}

// logger builds the command's logger, writing to the command's stderr.
func (o *rootOptions) logger(cmd *cobra.Command) (*slog.Logger, error) {
	format, err := logging.ParseFormat(o.logFormat)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Writer:    cmd.ErrOrStderr(),
		Format:    format,
		Debug:     o.debug,
		Component: "langfuse-ingest",
	}), nil
}

// newClient builds a client from settings and flags. extra options are
// applied last.
func (o *rootOptions) newClient(cmd *cobra.Command, extra ...client.ConfigOption) (*client.Client, error) {
	settings, err := o.loadSettings()
	if err != nil {
		return nil, err
	}
	logger, err := o.logger(cmd)
	if err != nil {
		return nil, err
	}
	opts := append([]client.ConfigOption{client.WithStructuredLogger(logger)}, extra...)
	return client.NewFromSettings(settings, opts...)
}

// NewRootCmd returns the langfuse-ingest command tree.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:           "langfuse-ingest",
		Short:         "Send events to Langfuse",
		Long:          `Send trace, observation and score events to the Langfuse ingestion API and check server health.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (default: .langfuse.yaml in this or a parent directory)")
	root.PersistentFlags().StringVar(&o.baseURL, "base-url", "", "Langfuse server URL (overrides config and LANGFUSE_BASE_URL)")
	root.PersistentFlags().BoolVar(&o.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&o.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newSendCmd(o))
	root.AddCommand(newHealthCmd(o))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the command with os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *undeliveredError
		if errors.As(err, &ue) {
			return 2
		}
		return 1
	}
	return 0
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "langfuse-ingest version %s (client %s)\n", Version, client.Version)
		},
	}
}
