// Package embeddings abstracts the text-embedding backends. Two model
// families are supported: a hosted API family (openai, arbitrary vector
// dimensionality) and a local sentence-encoder family (ollama, fixed
// dimensionality, L2-normalized vectors).
package embeddings

import "context"

// MaxInputTokens is the per-input token cap applied before embedding.
const MaxInputTokens = 512

// Embedder defines the interface for generating text embeddings.
//
// EmbedMany returns exactly one slot per input text, in order. Blank
// (empty or whitespace-only) inputs yield a nil slot and are never sent to
// the backend; callers rely on this to keep index alignment.
type Embedder interface {
	// EmbedOne generates an embedding for a single text.
	EmbedOne(ctx context.Context, text string) ([]float64, error)

	// EmbedMany generates embeddings for the given texts.
	EmbedMany(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// splitBlank partitions texts into the dense list to embed and a mapping
// from dense index back to the original slot.
func splitBlank(texts []string) (toEmbed []string, slots []int) {
	for i, t := range texts {
		if isBlank(t) {
			continue
		}
		toEmbed = append(toEmbed, t)
		slots = append(slots, i)
	}
	return toEmbed, slots
}

func isBlank(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}
