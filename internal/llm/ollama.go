package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ziadkadry99/gitscout/internal/errs"
)

// OllamaChat implements Chat using direct HTTP calls to the Ollama API.
type OllamaChat struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaChat creates a new Ollama chat backend.
func NewOllamaChat(baseURL string, model string) *OllamaChat {
	return &OllamaChat{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

func (c *OllamaChat) Name() string {
	return "ollama"
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Model   string        `json:"model"`
	Done    bool          `json:"done"`
}

func (c *OllamaChat) Send(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	ollamaReq := ollamaChatRequest{
		Model:    model,
		Messages: []ollamaMessage{{Role: "user", Content: req.Prompt}},
		Stream:   false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}

	body, err := json.Marshal(ollamaReq)
	if err != nil {
		return "", &errs.ChatError{Kind: errs.ChatInvalidResponse, Err: fmt.Errorf("marshal ollama request: %w", err)}
	}

	url := fmt.Sprintf("%s/api/chat", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &errs.ChatError{Kind: errs.ChatTransport, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", classifyChatErr(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", &errs.ChatError{Kind: errs.ChatTransport, Err: fmt.Errorf("read ollama response: %w", err)}
	}

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return "", &errs.ChatError{Kind: errs.ChatRateLimit, Err: fmt.Errorf("ollama returned status %d", httpResp.StatusCode)}
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", &errs.ChatError{Kind: errs.ChatTransport, Err: fmt.Errorf("ollama returned status %d: %s", httpResp.StatusCode, string(respBody))}
	}

	var ollamaResp ollamaChatResponse
	if err := json.Unmarshal(respBody, &ollamaResp); err != nil {
		return "", &errs.ChatError{Kind: errs.ChatInvalidResponse, Err: fmt.Errorf("unmarshal ollama response: %w", err)}
	}

	return ollamaResp.Message.Content, nil
}
