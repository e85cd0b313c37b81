package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/docground/docground/internal/ui"
)

func newEmbeddingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embeddings",
		Short: "Manage the embedding cache",
	}

	cmd.AddCommand(newEmbeddingsBuildCmd())
	cmd.AddCommand(newEmbeddingsReindexCmd())

	return cmd
}

func newEmbeddingsBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Embed sections missing from the cache",
		Long: `Build compares the current index against the embedding cache and embeds
only the sections that are new or changed. Stale cache entries are
pruned. Requires a configured embedding provider.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEmbeddings(cmd, false)
		},
	}
}

func newEmbeddingsReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Discard cached vectors and rebuild from scratch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEmbeddings(cmd, true)
		},
	}
}

func runEmbeddings(cmd *cobra.Command, reindex bool) error {
	ctx := cmd.Context()
	out := ui.New(cmd.OutOrStdout(), noColor)

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.embedder == nil {
		return fmt.Errorf("no embedding provider configured; set embeddings.provider to gemini, ollama or static")
	}

	build := e.coord.BuildEmbeddings
	verb := "embeddings_build"
	if reindex {
		build = e.coord.ReindexEmbeddings
		verb = "embeddings_reindex"
	}

	stats, err := build(ctx)
	if err != nil {
		return err
	}

	slog.Info(verb+"_completed",
		slog.Int("cached", stats.Cached),
		slog.Int("new", stats.New),
		slog.Int("stale_removed", stats.StaleRemoved),
		slog.Int("total", stats.Total))

	out.Successf("Embeddings: %d cached, %d new, %d stale removed (%d total)",
		stats.Cached, stats.New, stats.StaleRemoved, stats.Total)
	return nil
}
