package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docground/docground/internal/ui"
)

func newRetrieveCmd() *cobra.Command {
	var limit int
	var maxChars int

	cmd := &cobra.Command{
		Use:   "retrieve <query>",
		Short: "Assemble a grounding context block for a query",
		Long: `Retrieve runs the tiered search and prints the assembled context block
exactly as it would be injected into an LLM prompt. Prints a notice
when nothing relevant is found.

Examples:
  docground retrieve "how to rotate API keys"
  docground retrieve "лимиты запросов" --max-chars 1500`,
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

			slog.Info("retrieve_started",
				slog.String("query", query))

			context := e.coord.Retrieve(ctx, query, limit, maxChars)

			slog.Info("retrieve_completed",
				slog.Int("context_chars", len(context)))

			out.Context(context)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of sections (default from config)")
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "Character budget for the context block (default from config)")

	return cmd
}
