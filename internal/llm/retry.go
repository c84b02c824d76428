package llm

import (
	"context"
	"errors"
	"time"

	"github.com/ziadkadry99/gitscout/internal/errs"
)

const (
	defaultTimeout = 120 * time.Second
	initialBackoff = 2 * time.Second
	maxBackoff     = 2 * time.Minute
)

// RetryingChat wraps a Chat with per-request timeouts and exponential backoff
// on transport and rate-limit failures. Invalid responses and cancellations
// are never retried.
type RetryingChat struct {
	backend Chat
}

// NewRetryingChat wraps the given backend.
func NewRetryingChat(backend Chat) *RetryingChat {
	return &RetryingChat{backend: backend}
}

func (c *RetryingChat) Name() string {
	return c.backend.Name()
}

func (c *RetryingChat) Send(ctx context.Context, req Request) (string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	backoff := initialBackoff
	var lastErr error

	for attempt := 0; attempt <= req.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := c.backend.Send(callCtx, req)
		cancel()

		if err == nil {
			return resp, nil
		}
		lastErr = err

		var chatErr *errs.ChatError
		if !errors.As(err, &chatErr) || !chatErr.Retryable() {
			return "", err
		}
		if ctx.Err() != nil {
			return "", &errs.ChatError{Kind: errs.ChatCanceled, Err: ctx.Err()}
		}
		if attempt == req.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return "", &errs.ChatError{Kind: errs.ChatCanceled, Err: ctx.Err()}
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}

	return "", lastErr
}
