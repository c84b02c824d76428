package embeddings

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ziadkadry99/gitscout/internal/errs"
	"github.com/ziadkadry99/gitscout/internal/tokens"
)

const maxBatchSize = 100

// OpenAIModel represents a supported OpenAI embedding model.
type OpenAIModel string

const (
	ModelTextEmbedding3Small OpenAIModel = "text-embedding-3-small"
	ModelTextEmbedding3Large OpenAIModel = "text-embedding-3-large"
)

func (m OpenAIModel) dimensions() int {
	switch m {
	case ModelTextEmbedding3Small:
		return 1536
	case ModelTextEmbedding3Large:
		return 3072
	default:
		return 1536
	}
}

// OpenAIEmbedder generates embeddings using OpenAI's API (the hosted family).
type OpenAIEmbedder struct {
	client *openai.Client
	model  OpenAIModel
}

// NewOpenAIEmbedder creates a new OpenAI embedder with the given API key and model.
func NewOpenAIEmbedder(apiKey string, model OpenAIModel) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (e *OpenAIEmbedder) Name() string {
	return string(e.model)
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.model.dimensions()
}

func (e *OpenAIEmbedder) EmbedOne(ctx context.Context, text string) ([]float64, error) {
	vecs, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *OpenAIEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	toEmbed, slots := splitBlank(texts)
	result := make([][]float64, len(texts))
	if len(toEmbed) == 0 {
		return result, nil
	}

	for i := range toEmbed {
		toEmbed[i] = tokens.Truncate(toEmbed[i], MaxInputTokens)
	}

	var dense [][]float64

	// Batch up to maxBatchSize texts per API call.
	for i := 0; i < len(toEmbed); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(toEmbed) {
			end = len(toEmbed)
		}
		batch := toEmbed[i:end]

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: openai embedding request: %v", errs.ErrEmbed, err)
		}

		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("%w: openai returned %d embeddings, expected %d", errs.ErrEmbed, len(resp.Data), len(batch))
		}

		for _, emb := range resp.Data {
			vec := make([]float64, len(emb.Embedding))
			for j, v := range emb.Embedding {
				vec[j] = float64(v)
			}
			dense = append(dense, vec)
		}
	}

	for i, slot := range slots {
		result[slot] = dense[i]
	}
	return result, nil
}
