package retrieval

import (
	"fmt"
	"math"
)

// Cosine computes the cosine similarity of two vectors.
//
// A zero-norm vector on either side yields 0.0 rather than a division error.
// A dimension mismatch panics: the cache-identity invariant guarantees equal
// dimensions, so a mismatch means the cache is corrupt and silently scoring
// garbage would be worse than crashing.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("cosine: dimension mismatch %d != %d (corrupt embedding cache?)", len(a), len(b)))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
