package embeddings

import (
	"fmt"
	"os"
	"strconv"
)

// NewEmbedder creates an embedding backend based on the given provider type
// and model. Supported provider types: "openai", "ollama", "mock".
func NewEmbedder(providerType string, model string) (Embedder, error) {
	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIEmbedder(apiKey, OpenAIModel(model)), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		dims := 768
		if v := os.Getenv("GITSCOUT_EMBEDDING_DIMENSIONS"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				dims = parsed
			}
		}
		return NewOllamaEmbedder(model, dims, host), nil

	case "mock":
		return NewMockEmbedder(), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider type: %s", providerType)
	}
}
