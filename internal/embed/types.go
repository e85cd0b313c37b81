// Package embed provides pluggable embedding providers and the on-disk
// embedding cache for the retrieval engine.
//
// Providers convert text to fixed-dimension vectors. Any provider failure is
// recoverable by design: the caller treats it as "no semantic tier for this
// request" and falls back to lexical search.
package embed

import (
	"context"
	"math"
	"time"
)

// Common embedding constants.
const (
	// DefaultBatchSize is the number of texts sent per provider call.
	DefaultBatchSize = 100

	// DefaultTimeout bounds a single provider network call. A failed call
	// is not retried; it degrades the semantic tier for that request only.
	DefaultTimeout = 60 * time.Second
)

// Embedder generates vector embeddings for text.
//
// Implementations that distinguish document vs query embedding intent
// (asymmetric models) must tag the request accordingly; EmbedDocuments and
// EmbedQuery exist as separate methods for exactly that reason.
type Embedder interface {
	// EmbedDocuments generates embeddings for corpus sections, chunking
	// internally to the provider batch size and preserving input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// ProviderName returns the provider identifier ("gemini", "ollama", ...).
	ProviderName() string

	// ModelName returns the model identifier.
	ModelName() string

	// Dimensions returns the embedding dimension. Remote providers that do
	// not declare it up front return 0 until the first real response.
	Dimensions() int

	// Available checks if the embedder is ready.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// normalizeVector normalizes a vector to unit length.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v // Zero vector stays as-is
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
