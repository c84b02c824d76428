package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ziadkadry99/gitscout/internal/errs"
)

// OpenAIChat implements Chat using the OpenAI Chat Completions API.
type OpenAIChat struct {
	client *openai.Client
	model  string
}

// NewOpenAIChat creates a new OpenAI chat backend.
func NewOpenAIChat(apiKey string, model string) *OpenAIChat {
	return &OpenAIChat{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAIChat) Name() string {
	return "openai"
}

func (c *OpenAIChat) Send(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	apiReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
	}

	resp, err := c.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return "", classifyChatErr(err)
	}

	if len(resp.Choices) == 0 {
		return "", &errs.ChatError{Kind: errs.ChatInvalidResponse, Err: errors.New("no choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyChatErr maps backend errors onto chat failure kinds.
func classifyChatErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &errs.ChatError{Kind: errs.ChatCanceled, Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 {
			return &errs.ChatError{Kind: errs.ChatRateLimit, Err: err}
		}
		if apiErr.HTTPStatusCode >= 500 {
			return &errs.ChatError{Kind: errs.ChatTransport, Err: err}
		}
		return &errs.ChatError{Kind: errs.ChatInvalidResponse, Err: err}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") || strings.Contains(msg, "too many requests") {
		return &errs.ChatError{Kind: errs.ChatRateLimit, Err: err}
	}
	return &errs.ChatError{Kind: errs.ChatTransport, Err: err}
}
