package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docground/docground/internal/config"
	"github.com/docground/docground/internal/embed"
	"github.com/docground/docground/internal/retrieval"
	"github.com/docground/docground/internal/telemetry"
)

// engine bundles everything a command needs to serve queries.
type engine struct {
	cfg      *config.Config
	embedder embed.Embedder
	coord    *retrieval.Coordinator
	metrics  *telemetry.QueryMetrics
	store    *telemetry.SQLiteStore // nil when telemetry is disabled

	// reloadStats holds the result of the initial corpus load.
	reloadStats *retrieval.ReloadStats
}

// loadConfig resolves the config file: the --config flag when given,
// otherwise .docground.yaml in the working directory, otherwise defaults
// plus DOCGROUND_* environment overrides.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// newEngine loads config, creates the embedder and coordinator, and indexes
// the corpus. Callers must Close the engine when done.
func newEngine(ctx context.Context) (*engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	embedder, err := embed.New(cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	coord := retrieval.New(cfg, embedder)
	stats, err := coord.Reload(ctx, cfg.Corpus.Dir)
	if err != nil {
		if embedder != nil {
			_ = embedder.Close()
		}
		return nil, err
	}

	e := &engine{cfg: cfg, embedder: embedder, coord: coord, reloadStats: stats}

	if cfg.Telemetry.Enabled {
		e.metrics = telemetry.NewQueryMetrics()
		coord.SetMetrics(e.metrics)

		store, err := telemetry.OpenSQLiteStore(cfg.Telemetry.DBPath)
		if err != nil {
			slog.Warn("telemetry_store_unavailable",
				slog.String("error", err.Error()))
		} else {
			e.store = store
		}
	}

	return e, nil
}

// Close flushes telemetry and releases the embedder.
func (e *engine) Close() {
	if e.store != nil {
		if err := e.store.Flush(e.metrics.Drain()); err != nil {
			slog.Warn("telemetry_flush_failed",
				slog.String("error", err.Error()))
		}
		_ = e.store.Close()
	}
	if e.embedder != nil {
		_ = e.embedder.Close()
	}
}
