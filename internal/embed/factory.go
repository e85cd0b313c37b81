package embed

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/docground/docground/internal/config"
)

// New creates an embedder from configuration.
//
// An empty provider returns (nil, nil): the semantic tier is disabled and the
// engine runs lexical-only. That is a supported configuration, not an error.
// Provider construction failures are errors; per-call failures later degrade
// gracefully instead.
func New(cfg config.EmbeddingsConfig) (Embedder, error) {
	var inner Embedder

	switch strings.ToLower(cfg.Provider) {
	case "":
		slog.Info("semantic_tier_disabled", slog.String("reason", "no provider configured"))
		return nil, nil

	case "gemini":
		g, err := NewGeminiEmbedder(GeminiConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			Host:      cfg.GeminiHost,
			BatchSize: cfg.BatchSize,
			Timeout:   cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini embedder: %w", err)
		}
		inner = g

	case "ollama":
		inner = NewOllamaEmbedder(OllamaConfig{
			Host:      cfg.OllamaHost,
			Model:     cfg.Model,
			BatchSize: cfg.BatchSize,
			Timeout:   cfg.Timeout,
		})

	case "static":
		inner = NewStaticEmbedder()

	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	slog.Info("embedder_created",
		slog.String("provider", inner.ProviderName()),
		slog.String("model", inner.ModelName()))

	return NewCachedEmbedder(inner, DefaultQueryCacheSize), nil
}
