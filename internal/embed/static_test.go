package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorMagnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestStaticEmbedder_Dimensions(t *testing.T) {
	// Given: the static embedder
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	// When: I embed a query
	vec, err := e.EmbedQuery(context.Background(), "how do I install the agent")

	// Then: the vector has the fixed static dimension
	require.NoError(t, err)
	assert.Len(t, vec, StaticDimensions)
	assert.Equal(t, StaticDimensions, e.Dimensions())
}

func TestStaticEmbedder_VectorIsNormalized(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	vec, err := e.EmbedQuery(context.Background(), "webhook delivery retries")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, vectorMagnitude(vec), 0.001,
		"vector should be normalized to unit length")
}

func TestStaticEmbedder_IsDeterministic(t *testing.T) {
	// Given: two separate instances
	e1 := NewStaticEmbedder()
	e2 := NewStaticEmbedder()
	defer func() { _ = e1.Close() }()
	defer func() { _ = e2.Close() }()

	text := "Тарифы и оплата подписки"

	// When: both embed the same text
	v1, err1 := e1.EmbedQuery(context.Background(), text)
	v2, err2 := e2.EmbedQuery(context.Background(), text)

	// Then: the vectors are identical
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, v1, v2)
}

func TestStaticEmbedder_DifferentTextsDiffer(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	v1, _ := e.EmbedQuery(context.Background(), "billing and invoices")
	v2, _ := e.EmbedQuery(context.Background(), "kubernetes cluster autoscaling")

	assert.NotEqual(t, v1, v2)
}

func TestStaticEmbedder_EmptyTextIsZeroVector(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	vec, err := e.EmbedQuery(context.Background(), "   ")
	require.NoError(t, err)

	assert.Len(t, vec, StaticDimensions)
	assert.Zero(t, vectorMagnitude(vec))
}

func TestStaticEmbedder_EmbedDocumentsPreservesOrder(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	texts := []string{"first section", "second section", "third section"}
	vectors, err := e.EmbedDocuments(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	// Batch output must align with per-text embedding
	for i, text := range texts {
		single, err := e.EmbedQuery(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i], "vector %d out of order", i)
	}
}

func TestStaticEmbedder_ClosedErrors(t *testing.T) {
	e := NewStaticEmbedder()
	require.NoError(t, e.Close())

	_, err := e.EmbedQuery(context.Background(), "anything")
	assert.Error(t, err)
	assert.False(t, e.Available(context.Background()))
}
