package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docground/docground/internal/mcp"
	"github.com/docground/docground/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var transport string
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Serve exposes the retrieval engine to MCP clients (Claude Code, Cursor)
over stdio. With --watch the corpus directory is monitored and
re-indexed automatically when markdown files change.

Stdout is reserved for the MCP protocol; all diagnostics go to the
log file. Use 'docground stats' in another shell for inspection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(),
				syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, transport, watch)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "MCP transport (stdio)")
	cmd.Flags().BoolVar(&watch, "watch", true, "Re-index automatically when corpus files change")

	return cmd
}

func runServe(ctx context.Context, transport string, watch bool) error {
	// MCP over stdio reserves stdout for JSON-RPC, so nothing may be
	// printed before the server starts.
	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	server, err := mcp.NewServer(e.coord, e.cfg)
	if err != nil {
		return err
	}

	if watch {
		w, err := watcher.New(e.cfg.Corpus.Dir, e.cfg.Corpus.WatchDebounce,
			func(ctx context.Context) error {
				_, err := e.coord.Reload(ctx, e.cfg.Corpus.Dir)
				return err
			})
		if err != nil {
			slog.Warn("corpus_watch_unavailable",
				slog.String("error", err.Error()))
		} else {
			go func() {
				if err := w.Start(ctx); err != nil && ctx.Err() == nil {
					slog.Warn("corpus_watch_stopped",
						slog.String("error", err.Error()))
				}
			}()
			defer func() { _ = w.Stop() }()
		}
	}

	// Periodic telemetry flush so long-running servers don't lose
	// aggregates on crash.
	if e.store != nil {
		go flushTelemetryLoop(ctx, e)
	}

	return server.Serve(ctx, transport)
}

func flushTelemetryLoop(ctx context.Context, e *engine) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.store.Flush(e.metrics.Drain()); err != nil {
				slog.Warn("telemetry_flush_failed",
					slog.String("error", err.Error()))
			}
		}
	}
}
