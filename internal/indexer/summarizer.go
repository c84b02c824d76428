package indexer

import (
	"context"
	"log"
	"mime"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ziadkadry99/gitscout/internal/binary"
	"github.com/ziadkadry99/gitscout/internal/embeddings"
	"github.com/ziadkadry99/gitscout/internal/gitrepo"
	"github.com/ziadkadry99/gitscout/internal/ignore"
	"github.com/ziadkadry99/gitscout/internal/llm"
	"github.com/ziadkadry99/gitscout/internal/store"
)

// ProgressFunc receives per-stage progress updates.
type ProgressFunc func(done, total int)

// SummaryIndexer produces an LLM summary and an embedding for every new
// file appearing in new commits, maintaining the path -> {summary, embedding}
// cache that is reused across commits sharing files.
type SummaryIndexer struct {
	chat        llm.Chat
	embedder    embeddings.Embedder
	src         gitrepo.RepoSource
	ignorer     *ignore.Matcher
	model       string
	llmThreads  int
	fileThreads int
	timeout     time.Duration
	maxRetries  int
	onProgress  ProgressFunc
}

// SummaryIndexerConfig bundles the SummaryIndexer dependencies.
type SummaryIndexerConfig struct {
	Chat        llm.Chat
	Embedder    embeddings.Embedder
	Src         gitrepo.RepoSource
	Ignorer     *ignore.Matcher
	Model       string
	LLMThreads  int
	FileThreads int
	Timeout     time.Duration
	MaxRetries  int
	OnProgress  ProgressFunc
}

// NewSummaryIndexer creates a SummaryIndexer.
func NewSummaryIndexer(cfg SummaryIndexerConfig) *SummaryIndexer {
	if cfg.LLMThreads < 1 {
		cfg.LLMThreads = 20
	}
	if cfg.FileThreads < 1 {
		cfg.FileThreads = 100
	}
	return &SummaryIndexer{
		chat:        cfg.Chat,
		embedder:    cfg.Embedder,
		src:         cfg.Src,
		ignorer:     cfg.Ignorer,
		model:       cfg.Model,
		llmThreads:  cfg.LLMThreads,
		fileThreads: cfg.FileThreads,
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		onProgress:  cfg.OnProgress,
	}
}

// Run summarizes and embeds every new file referenced by commits, updates
// cache in place, and aligns each commit's Summaries with its Files. Files
// already present in the cache are reused without any chat or embed call.
func (si *SummaryIndexer) Run(ctx context.Context, commits []store.CommitRecord, cache map[string]store.FileCacheEntry) error {
	paths := si.collectPaths(commits, cache)

	total := len(paths)
	var processed int64
	report := func() {
		if si.onProgress != nil {
			si.onProgress(int(atomic.AddInt64(&processed, 1)), total)
		} else {
			atomic.AddInt64(&processed, 1)
		}
	}

	summaries := make([]string, len(paths))

	// Bounded fan-out: fileThreads gates worktree reads, llmThreads gates
	// in-flight chat calls.
	fileSem := make(chan struct{}, si.fileThreads)
	chatSem := make(chan struct{}, si.llmThreads)
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer report()

			content, ok := si.readFile(ctx, fileSem, path)
			if !ok {
				summaries[i] = store.EmptySummary
				return
			}

			select {
			case <-ctx.Done():
				summaries[i] = store.EmptySummary
				return
			case chatSem <- struct{}{}:
			}
			defer func() { <-chatSem }()

			resp, err := si.chat.Send(ctx, llm.Request{
				Model:       si.model,
				Prompt:      summaryPrompt(path, content),
				Temperature: 0.0,
				Timeout:     si.timeout,
				MaxRetries:  si.maxRetries,
			})
			if err != nil {
				log.Printf("summarize %s: %v", path, err)
				summaries[i] = store.EmptySummary
				return
			}
			summaries[i] = resp
		}(i, path)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	// One batched embed call for all fresh summaries. EmptySummary slots are
	// passed as blanks so the embedder skips them while order is preserved.
	texts := make([]string, len(summaries))
	for i, s := range summaries {
		if s != store.EmptySummary {
			texts[i] = s
		}
	}
	vectors, err := si.embedder.EmbedMany(ctx, texts)
	if err != nil {
		return err
	}

	for i, path := range paths {
		entry := store.FileCacheEntry{Summary: summaries[i]}
		if vectors[i] != nil {
			entry.Embedding = vectors[i]
		} else {
			entry.Summary = store.EmptySummary
		}
		cache[path] = entry
	}
	if err := store.ValidateFileCache(cache); err != nil {
		return err
	}

	// Align each commit's summaries with its files.
	for ci := range commits {
		rec := &commits[ci]
		rec.Summaries = make([]string, len(rec.Files))
		for fi, path := range rec.Files {
			if entry, ok := cache[path]; ok {
				rec.Summaries[fi] = entry.Summary
			} else {
				rec.Summaries[fi] = store.EmptySummary
			}
		}
	}
	return nil
}

// collectPaths flattens commits into a deduplicated, ignore-filtered list of
// paths not yet present in the cache, preserving newest-first encounter order.
func (si *SummaryIndexer) collectPaths(commits []store.CommitRecord, cache map[string]store.FileCacheEntry) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, rec := range commits {
		for _, path := range rec.Files {
			if seen[path] {
				continue
			}
			seen[path] = true
			if si.ignorer.Match(path) {
				continue
			}
			if _, cached := cache[path]; cached {
				continue
			}
			paths = append(paths, path)
		}
	}
	return paths
}

// readFile loads a worktree file under the read semaphore. Missing, empty,
// and binary files report ok=false.
func (si *SummaryIndexer) readFile(ctx context.Context, sem chan struct{}, path string) ([]byte, bool) {
	select {
	case <-ctx.Done():
		return nil, false
	case sem <- struct{}{}:
	}
	defer func() { <-sem }()

	if !si.src.FileExistsInWorktree(path) {
		return nil, false
	}
	content, err := si.src.ReadWorktreeFile(path)
	if err != nil || len(content) == 0 {
		return nil, false
	}
	if binary.IsBinaryMIME(mime.TypeByExtension(filepath.Ext(path))) || isBinaryContent(content) {
		return nil, false
	}
	return content, true
}

// isBinaryContent checks the first 512 bytes for NUL bytes as a secondary
// signal next to the MIME check, since extension-less binaries are common.
func isBinaryContent(content []byte) bool {
	n := len(content)
	if n > 512 {
		n = 512
	}
	for i := 0; i < n; i++ {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
