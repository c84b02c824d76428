package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedChat wraps a Chat with a token bucket rate limiter.
type RateLimitedChat struct {
	backend  Chat
	rpm      int
	mu       sync.Mutex
	tokens   int
	lastFill time.Time
}

// NewRateLimitedChat wraps the given backend with a rate limiter
// that allows at most rpm requests per minute.
func NewRateLimitedChat(backend Chat, rpm int) Chat {
	return &RateLimitedChat{
		backend:  backend,
		rpm:      rpm,
		tokens:   rpm,
		lastFill: time.Now(),
	}
}

func (r *RateLimitedChat) Name() string {
	return r.backend.Name()
}

func (r *RateLimitedChat) Send(ctx context.Context, req Request) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	return r.backend.Send(ctx, req)
}

func (r *RateLimitedChat) wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(r.lastFill)

		// Refill tokens based on elapsed time.
		refill := int(elapsed.Seconds() * float64(r.rpm) / 60.0)
		if refill > 0 {
			r.tokens += refill
			if r.tokens > r.rpm {
				r.tokens = r.rpm
			}
			r.lastFill = now
		}

		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		// Wait a short interval before retrying.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
