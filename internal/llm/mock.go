package llm

import "context"

const (
	mockPrefix    = "[mock] "
	mockMaxPrompt = 64
)

// MockChat is a deterministic echo backend used in tests and mock mode.
// It answers every prompt with a fixed prefix followed by the truncated prompt.
type MockChat struct{}

// NewMockChat creates a new mock chat backend.
func NewMockChat() *MockChat {
	return &MockChat{}
}

func (c *MockChat) Name() string {
	return "mock"
}

func (c *MockChat) Send(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prompt := req.Prompt
	if runes := []rune(prompt); len(runes) > mockMaxPrompt {
		prompt = string(runes[:mockMaxPrompt])
	}
	return mockPrefix + prompt, nil
}
