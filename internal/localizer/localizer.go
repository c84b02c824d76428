package localizer

import (
	"context"
	"log"
	"time"

	"github.com/ziadkadry99/gitscout/internal/gitrepo"
	"github.com/ziadkadry99/gitscout/internal/llm"
	"github.com/ziadkadry99/gitscout/internal/store"
)

// Localizer maps a problem statement to repository files in two LLM rounds:
// a structural pass over the project tree, then a refinement pass informed by
// the first round's file summaries.
type Localizer struct {
	chat       llm.Chat
	src        gitrepo.RepoSource
	model      string
	timeout    time.Duration
	maxRetries int
}

// New creates a Localizer.
func New(chat llm.Chat, src gitrepo.RepoSource, model string, timeout time.Duration, maxRetries int) *Localizer {
	return &Localizer{
		chat:       chat,
		src:        src,
		model:      model,
		timeout:    timeout,
		maxRetries: maxRetries,
	}
}

// Localize runs both phases and fuses the results. Phase 1 candidates are
// filtered to files that exist in the worktree; an empty phase 1 skips phase
// 2 entirely. Phase 2 errors degrade to the phase-1 result. cache provides
// the summaries fed to the refinement prompt.
func (l *Localizer) Localize(ctx context.Context, problem string, cache map[string]store.FileCacheEntry) ([]string, error) {
	tree, err := TreeView(l.src.RootDir())
	if err != nil {
		return nil, err
	}

	resp, err := l.chat.Send(ctx, llm.Request{
		Model:       l.model,
		Prompt:      treePrompt(tree, problem),
		Temperature: 0.0,
		Timeout:     l.timeout,
		MaxRetries:  l.maxRetries,
	})
	if err != nil {
		return nil, err
	}

	var phase1 []string
	for _, path := range ParsePaths(resp) {
		if l.src.FileExistsInWorktree(path) {
			phase1 = append(phase1, path)
		}
	}
	if len(phase1) == 0 {
		return nil, nil
	}

	summaries := make(map[string]string, len(phase1))
	for _, path := range phase1 {
		if entry, ok := cache[path]; ok && entry.Summary != store.EmptySummary {
			summaries[path] = entry.Summary
		}
	}

	phase2 := l.refine(ctx, problem, phase1, summaries)
	return fuse(phase1, phase2), nil
}

// refine runs phase 2; any failure degrades to an empty addition.
func (l *Localizer) refine(ctx context.Context, problem string, phase1 []string, summaries map[string]string) []string {
	resp, err := l.chat.Send(ctx, llm.Request{
		Model:       l.model,
		Prompt:      refinePrompt(problem, phase1, summaries),
		Temperature: 0.0,
		Timeout:     l.timeout,
		MaxRetries:  l.maxRetries,
	})
	if err != nil {
		log.Printf("localize refine: %v", err)
		return nil
	}

	var phase2 []string
	for _, path := range ParsePaths(resp) {
		if l.src.FileExistsInWorktree(path) {
			phase2 = append(phase2, path)
		}
	}
	return phase2
}

// fuse interleaves the two result lists: the first three phase-1 paths, the
// first two phase-2 paths, then the remainder of each in order, deduplicated.
func fuse(phase1, phase2 []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(paths []string, limit int) {
		for i, p := range paths {
			if limit >= 0 && i >= limit {
				return
			}
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	add(phase1, 3)
	add(phase2, 2)
	add(phase1, -1)
	add(phase2, -1)
	return out
}
