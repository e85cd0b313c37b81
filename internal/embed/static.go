package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"sync"
)

// StaticDimensions is the embedding dimension for the static embedder.
const StaticDimensions = 256

// Weights for vector generation.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// staticTokenRegex matches Unicode word sequences.
var staticTokenRegex = regexp.MustCompile(`[\p{L}\p{N}]+`)

// StaticEmbedder generates embeddings using a hash-based approach: tokens and
// character trigrams are hashed into a fixed-size vector. It needs no network
// and no model download, which makes it the in-process fallback tier and the
// deterministic test double. Semantic quality is reduced accordingly.
type StaticEmbedder struct {
	mu     sync.RWMutex
	closed bool
}

// Verify interface implementation at compile time
var _ Embedder = (*StaticEmbedder)(nil)

// NewStaticEmbedder creates a new static embedder.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{}
}

// EmbedDocuments embeds each text independently; order is preserved trivially.
func (e *StaticEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	results := make([][]float32, len(texts))
	for i, t := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		results[i] = e.embed(t)
	}
	return results, nil
}

// EmbedQuery embeds a single text. Static embeddings are symmetric, so the
// query path is identical to the document path.
func (e *StaticEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

// embed builds the hash-based vector for one text.
func (e *StaticEmbedder) embed(text string) []float32 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, StaticDimensions)
	}

	vector := make([]float32, StaticDimensions)

	lower := strings.ToLower(trimmed)
	tokens := staticTokenRegex.FindAllString(lower, -1)
	for _, tok := range tokens {
		vector[hashToIndex(tok, StaticDimensions)] += tokenWeight
	}

	joined := strings.Join(tokens, " ")
	runes := []rune(joined)
	for i := 0; i+ngramSize <= len(runes); i++ {
		ngram := string(runes[i : i+ngramSize])
		vector[hashToIndex(ngram, StaticDimensions)] += ngramWeight
	}

	return normalizeVector(vector)
}

// hashToIndex maps a string to a vector index via FNV-1a.
func hashToIndex(s string, dims int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(dims))
}

func (e *StaticEmbedder) checkOpen() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return fmt.Errorf("embedder is closed")
	}
	return nil
}

// ProviderName returns "static".
func (e *StaticEmbedder) ProviderName() string {
	return "static"
}

// ModelName returns the static model identifier.
func (e *StaticEmbedder) ModelName() string {
	return "static-hash-v1"
}

// Dimensions returns the fixed static dimension.
func (e *StaticEmbedder) Dimensions() int {
	return StaticDimensions
}

// Available always reports true while the embedder is open.
func (e *StaticEmbedder) Available(ctx context.Context) bool {
	return e.checkOpen() == nil
}

// Close marks the embedder closed.
func (e *StaticEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
