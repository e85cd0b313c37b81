package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/docground/docground/internal/ui"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index the documentation corpus",
		Long: `Index scans the corpus directory for markdown files, splits them into
sections and builds the lexical index. When an embedding provider is
configured, missing section embeddings are generated and cached.

Examples:
  docground index
  docground index --config ./kb.yaml
  DOCGROUND_CORPUS_DIR=./handbook docground index`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := ui.New(cmd.OutOrStdout(), noColor)

			e, err := newEngine(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			stats := e.reloadStats
			slog.Info("index_command_completed",
				slog.Int("sections", stats.SectionsIndexed),
				slog.Int("files", stats.FilesIndexed))

			out.Reload(stats)
			return nil
		},
	}
	return cmd
}
