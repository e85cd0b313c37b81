package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder wraps StaticEmbedder and counts query calls.
type countingEmbedder struct {
	*StaticEmbedder
	queryCalls int
}

func (c *countingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	c.queryCalls++
	return c.StaticEmbedder.EmbedQuery(ctx, text)
}

func TestCachedEmbedder_RepeatedQueryHitsCache(t *testing.T) {
	// Given: a cached embedder over a call-counting inner embedder
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder()}
	cached := NewCachedEmbedder(inner, 10)
	defer func() { _ = cached.Close() }()

	// When: the same query is embedded twice
	v1, err1 := cached.EmbedQuery(context.Background(), "how much does it cost")
	v2, err2 := cached.EmbedQuery(context.Background(), "how much does it cost")

	// Then: one provider call, identical vectors
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, inner.queryCalls)
}

func TestCachedEmbedder_DistinctQueriesMiss(t *testing.T) {
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder()}
	cached := NewCachedEmbedder(inner, 10)
	defer func() { _ = cached.Close() }()

	_, _ = cached.EmbedQuery(context.Background(), "query one")
	_, _ = cached.EmbedQuery(context.Background(), "query two")

	assert.Equal(t, 2, inner.queryCalls)
}

func TestCachedEmbedder_EvictsAtCapacity(t *testing.T) {
	// Given: a tiny cache of one entry
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder()}
	cached := NewCachedEmbedder(inner, 1)
	defer func() { _ = cached.Close() }()

	// When: a second query evicts the first, then the first repeats
	_, _ = cached.EmbedQuery(context.Background(), "first")
	_, _ = cached.EmbedQuery(context.Background(), "second")
	_, _ = cached.EmbedQuery(context.Background(), "first")

	// Then: the evicted query goes back to the provider
	assert.Equal(t, 3, inner.queryCalls)
}

func TestCachedEmbedder_PassesThroughIdentity(t *testing.T) {
	inner := NewStaticEmbedder()
	cached := NewCachedEmbedder(inner, 0)
	defer func() { _ = cached.Close() }()

	assert.Equal(t, inner.ProviderName(), cached.ProviderName())
	assert.Equal(t, inner.ModelName(), cached.ModelName())
	assert.Same(t, Embedder(inner), cached.Inner())
}
