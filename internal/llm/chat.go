// Package llm abstracts the chat completion backends used for file
// summarization, commit amplification, and file localization.
package llm

import (
	"context"
	"time"
)

// Request contains the parameters for a single chat call.
type Request struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
}

// Chat defines the interface for chat completion backends.
type Chat interface {
	// Send submits a prompt and returns the model's text response.
	Send(ctx context.Context, req Request) (string, error)
	// Name returns the name of this backend.
	Name() string
}
