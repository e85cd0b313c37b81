package cmd

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docground/docground/internal/ui"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit  int
	format string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the documentation corpus",
		Long: `Search the indexed documentation and print ranked section hits.

Uses semantic similarity when embeddings are available, falling back
to BM25 keyword ranking otherwise. Queries may be English or Russian.

Examples:
  docground search "how do I install the agent"
  docground search "сколько стоит тариф" --limit 5
  docground search "webhook retries" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")
			out := ui.New(cmd.OutOrStdout(), noColor)

			e, err := newEngine(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			slog.Info("search_started",
				slog.String("query", query),
				slog.Int("limit", opts.limit))

			results := e.coord.Search(ctx, query, opts.limit)

			slog.Info("search_completed",
				slog.Int("results", len(results)))

			if opts.format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			out.Results(query, results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}
