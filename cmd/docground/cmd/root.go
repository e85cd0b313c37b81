// Package cmd provides the CLI commands for docground.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/docground/docground/internal/logging"
	"github.com/docground/docground/pkg/version"
)

// Persistent flags shared by all commands.
var (
	configPath string
	debugMode  bool
	noColor    bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the docground CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docground",
		Short: "Tiered retrieval engine for documentation grounding",
		Long: `docground indexes a directory of markdown documentation and serves
grounded context to LLM-backed assistants.

Search runs in two tiers: semantic similarity over cached embeddings
when an embedding provider is configured, with BM25 keyword ranking
as the always-available fallback. English and Russian queries are
both supported.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("docground version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default .docground.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.docground/logs/")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newRetrieveCmd())
	cmd.AddCommand(newEmbeddingsCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging initializes file logging before any command runs.
func startLogging(_ *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg = logging.DebugConfig()
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)

	if debugMode {
		slog.Info("debug_logging_enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
