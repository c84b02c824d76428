package llm

import (
	"fmt"
	"os"
)

// NewChat creates a chat backend based on the given provider type and model,
// wrapped with rate limiting (rpm > 0) and retry handling. Supported provider
// types: "openai", "ollama", "mock".
func NewChat(providerType string, model string, rpm int) (Chat, error) {
	var backend Chat

	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		backend = NewOpenAIChat(apiKey, model)

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		backend = NewOllamaChat(host, model)

	case "mock":
		return NewMockChat(), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}

	if rpm > 0 {
		backend = NewRateLimitedChat(backend, rpm)
	}
	return NewRetryingChat(backend), nil
}
