package indexer

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ziadkadry99/gitscout/internal/config"
	"github.com/ziadkadry99/gitscout/internal/llm"
	"github.com/ziadkadry99/gitscout/internal/store"
)

// Amplifier generates synthetic commit messages and appends them to each
// commit's message list. Temperature is pinned to 0.0 so repeated runs over
// the same history produce the same messages.
type Amplifier struct {
	chat       llm.Chat
	model      string
	threads    int
	timeout    time.Duration
	maxRetries int
	onProgress ProgressFunc
}

// NewAmplifier creates an Amplifier with the given chat concurrency bound.
func NewAmplifier(chat llm.Chat, model string, threads int, timeout time.Duration, maxRetries int, onProgress ProgressFunc) *Amplifier {
	if threads < 1 {
		threads = 10
	}
	return &Amplifier{
		chat:       chat,
		model:      model,
		threads:    threads,
		timeout:    timeout,
		maxRetries: maxRetries,
		onProgress: onProgress,
	}
}

// Run amplifies every commit according to level. OFF is a no-op. LOW runs
// one whole-commit pass. MID and HIGH run the whole-commit pass followed by
// the per-file pass; the levels are deliberately identical today, HIGH being
// reserved for a stronger downstream configuration. Per-commit failures are
// logged and skipped without aborting the stage.
func (a *Amplifier) Run(ctx context.Context, commits []store.CommitRecord, level config.AmplificationLevel) error {
	switch level {
	case config.AmplificationOff, "":
		return nil
	case config.AmplificationLow:
		return a.pass(ctx, commits, false)
	default: // mid, high
		if err := a.pass(ctx, commits, false); err != nil {
			return err
		}
		return a.pass(ctx, commits, true)
	}
}

// pass runs one amplification invocation over all commits with bounded
// fan-out. Appended messages keep invocation order across passes and file
// order within the per-file pass.
func (a *Amplifier) pass(ctx context.Context, commits []store.CommitRecord, perFile bool) error {
	total := len(commits)
	var processed int64

	sem := make(chan struct{}, a.threads)
	var wg sync.WaitGroup

	for ci := range commits {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(rec *store.CommitRecord) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				done := atomic.AddInt64(&processed, 1)
				if a.onProgress != nil {
					a.onProgress(int(done), total)
				}
			}()

			if perFile {
				a.amplifyPerFile(ctx, rec)
			} else {
				a.amplifyWhole(ctx, rec)
			}
		}(&commits[ci])
	}

	wg.Wait()
	return ctx.Err()
}

func (a *Amplifier) amplifyWhole(ctx context.Context, rec *store.CommitRecord) {
	resp, err := a.chat.Send(ctx, llm.Request{
		Model:       a.model,
		Prompt:      wholeCommitPrompt(*rec),
		Temperature: 0.0,
		Timeout:     a.timeout,
		MaxRetries:  a.maxRetries,
	})
	if err != nil {
		log.Printf("amplify commit %s: %v", rec.OID, err)
		return
	}
	rec.Messages = append(rec.Messages, resp)
}

func (a *Amplifier) amplifyPerFile(ctx context.Context, rec *store.CommitRecord) {
	for _, path := range rec.Files {
		resp, err := a.chat.Send(ctx, llm.Request{
			Model:       a.model,
			Prompt:      perFilePrompt(path, rec.Diffs[path]),
			Temperature: 0.0,
			Timeout:     a.timeout,
			MaxRetries:  a.maxRetries,
		})
		if err != nil {
			log.Printf("amplify commit %s file %s: %v", rec.OID, path, err)
			continue
		}
		rec.Messages = append(rec.Messages, resp)
	}
}
