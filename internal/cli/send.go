package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jdziat/langfuse-ingest/pkg/client"
	"github.com/jdziat/langfuse-ingest/pkg/ingestion"
)

// undeliveredError reports events that were rejected, failed or dropped.
type undeliveredError struct {
	stats ingestion.Stats
}

func (e *undeliveredError) Error() string {
	return fmt.Sprintf("%d events not delivered (rejected=%d failed=%d dropped=%d)",
		e.stats.Rejected+e.stats.Failed+e.stats.Dropped, e.stats.Rejected, e.stats.Failed, e.stats.Dropped)
}

type sendOptions struct {
	immediate bool
	batchSize int
	parallel  int
	timeout   time.Duration
}

func newSendCmd(root *rootOptions) *cobra.Command {
	o := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send FILE...",
		Short: "Send events read from YAML or JSON files",
		Long: `Send events read from YAML or JSON files. Each document is one event or a
list of events with a type and a body:

  type: trace-create
  body:
    name: checkout

Use "-" to read from standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, root, o, args)
		},
	}

	cmd.Flags().BoolVar(&o.immediate, "immediate", false, "send each event before reading the next")
	cmd.Flags().IntVar(&o.batchSize, "batch-size", 0, "events per request (default from config)")
	cmd.Flags().IntVar(&o.parallel, "parallel", 4, "files decoded concurrently")
	cmd.Flags().DurationVar(&o.timeout, "timeout", time.Minute, "time allowed for delivery and shutdown")
	return cmd
}

func runSend(cmd *cobra.Command, root *rootOptions, o *sendOptions, files []string) error {
	ctx := cmd.Context()

	batches, err := readFiles(ctx, cmd.InOrStdin(), files, o.parallel)
	if err != nil {
		return err
	}

	var extra []client.ConfigOption
	if o.immediate {
		extra = append(extra, client.WithBatchMode(false))
	}
	if o.batchSize > 0 {
		extra = append(extra, client.WithBatchSize(o.batchSize))
	}
	c, err := root.newClient(cmd, extra...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var ingestErr error
	total := 0
	for _, events := range batches {
		for _, ev := range events {
			total++
			if err := c.Ingest(ctx, ev); err != nil && ingestErr == nil {
				ingestErr = fmt.Errorf("event %s: %w", ev.ID, err)
			}
		}
	}

	shutdownErr := c.Shutdown(ctx)
	stats := c.Stats()

	fmt.Fprintf(cmd.OutOrStdout(), "events=%d sent=%d rejected=%d failed=%d dropped=%d\n",
		total, stats.Sent, stats.Rejected, stats.Failed, stats.Dropped)

	switch {
	case ingestErr != nil:
		return ingestErr
	case stats.Rejected+stats.Failed+stats.Dropped > 0:
		return &undeliveredError{stats: stats}
	case shutdownErr != nil:
		return shutdownErr
	}
	return nil
}

// readFiles decodes every file concurrently. Results keep argument order. The
// first file that fails cancels the files not yet opened.
func readFiles(ctx context.Context, stdin io.Reader, files []string, parallel int) ([][]ingestion.Event, error) {
	out := make([][]ingestion.Event, len(files))

	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, name := range files {
		g.Go(func() error {
			events, err := readFile(gctx, stdin, name)
			if err != nil {
				return err
			}
			out[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func readFile(ctx context.Context, stdin io.Reader, name string) ([]ingestion.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "-" {
		return DecodeEvents(stdin, "stdin")
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeEvents(f, name)
}
