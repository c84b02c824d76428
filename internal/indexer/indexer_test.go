package indexer

import (
	"context"
	"fmt"
	"sync"

	"github.com/ziadkadry99/gitscout/internal/gitrepo"
	"github.com/ziadkadry99/gitscout/internal/llm"
)

// fakeSource is an in-memory RepoSource for pipeline tests.
type fakeSource struct {
	commits []gitrepo.RawCommit // newest-first
	files   map[string][]byte
	root    string
}

func (f *fakeSource) Checkout(rev string) error { return nil }

func (f *fakeSource) CommitsFromHead(ctx context.Context, maxDepth int, fn func(gitrepo.RawCommit) (bool, error)) error {
	for i, raw := range f.commits {
		if i >= maxDepth {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		stop, err := fn(raw)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

func (f *fakeSource) FileExistsInWorktree(path string) bool {
	_, ok := f.files[path]
	return ok
}

func (f *fakeSource) ReadWorktreeFile(path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return data, nil
}

func (f *fakeSource) Head() (string, error) {
	if len(f.commits) == 0 {
		return "", nil
	}
	return f.commits[0].OID, nil
}

func (f *fakeSource) RootDir() string { return f.root }

// countingChat counts calls and optionally fails on matching prompts.
type countingChat struct {
	mu     sync.Mutex
	calls  int
	failOn func(prompt string) bool
}

func (c *countingChat) Name() string { return "counting" }

func (c *countingChat) Send(ctx context.Context, req llm.Request) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.failOn != nil && c.failOn(req.Prompt) {
		return "", fmt.Errorf("chat refused")
	}
	return "summary of: " + firstLine(req.Prompt), nil
}

func (c *countingChat) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}

// countingEmbedder wraps another embedder and counts non-blank inputs.
type countingEmbedder struct {
	inner interface {
		EmbedOne(ctx context.Context, text string) ([]float64, error)
		EmbedMany(ctx context.Context, texts []string) ([][]float64, error)
		Dimensions() int
		Name() string
	}
	mu       sync.Mutex
	embedded []string
}

func (e *countingEmbedder) Name() string    { return e.inner.Name() }
func (e *countingEmbedder) Dimensions() int { return e.inner.Dimensions() }

func (e *countingEmbedder) EmbedOne(ctx context.Context, text string) ([]float64, error) {
	e.record([]string{text})
	return e.inner.EmbedOne(ctx, text)
}

func (e *countingEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float64, error) {
	e.record(texts)
	return e.inner.EmbedMany(ctx, texts)
}

func (e *countingEmbedder) record(texts []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range texts {
		if t != "" {
			e.embedded = append(e.embedded, t)
		}
	}
}

func (e *countingEmbedder) embeddedTexts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.embedded...)
}
