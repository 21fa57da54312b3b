package embed

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder generates deterministic embeddings from a text hash. It gives
// stable, offline vectors for tests and local runs; it does not produce real
// semantic similarity.
type MockEmbedder struct {
	dimensions int
}

func NewMockEmbedder(dimensions int) *MockEmbedder {
	return &MockEmbedder{dimensions: dimensions}
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	embedding := make([]float32, m.dimensions)
	for i := 0; i < m.dimensions; i++ {
		// LCG sequence seeded by the text hash
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding), nil
}

func (m *MockEmbedder) Dimensions() int {
	return m.dimensions
}

// normalize converts the embedding to a unit vector so cosine similarity
// behaves the same as with real model output.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}
