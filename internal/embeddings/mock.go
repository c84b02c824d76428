package embeddings

import (
	"context"
	"crypto/sha256"
	"math"
)

const mockDimensions = 128

// MockEmbedder produces deterministic unit vectors derived from the input
// text, used in tests and mock mode. Similar texts do not get similar
// vectors; identical texts always get identical vectors.
type MockEmbedder struct{}

// NewMockEmbedder creates a new mock embedder.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

func (e *MockEmbedder) Name() string {
	return "mock"
}

func (e *MockEmbedder) Dimensions() int {
	return mockDimensions
}

func (e *MockEmbedder) EmbedOne(ctx context.Context, text string) ([]float64, error) {
	vecs, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *MockEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([][]float64, len(texts))
	for i, text := range texts {
		if isBlank(text) {
			continue
		}
		result[i] = mockVector(text)
	}
	return result, nil
}

// mockVector expands the SHA-256 digest of text into a unit vector.
func mockVector(text string) []float64 {
	seed := sha256.Sum256([]byte(text))

	vec := make([]float64, mockDimensions)
	var sum float64
	for i := range vec {
		b := seed[(i*7)%len(seed)]
		v := float64(int(b)-128) / 128.0
		vec[i] = v
		sum += v * v
	}

	norm := math.Sqrt(sum)
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
