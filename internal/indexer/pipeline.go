package indexer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ziadkadry99/gitscout/internal/config"
	"github.com/ziadkadry99/gitscout/internal/embeddings"
	"github.com/ziadkadry99/gitscout/internal/gitrepo"
	"github.com/ziadkadry99/gitscout/internal/ignore"
	"github.com/ziadkadry99/gitscout/internal/llm"
	"github.com/ziadkadry99/gitscout/internal/store"
)

// statusInterval is the cadence of the periodic status-file updater.
const statusInterval = time.Second

// Options configures a pipeline run for one project.
type Options struct {
	Project        string
	Model          string
	Amplification  config.AmplificationLevel
	MaxDepth       int
	Ignore         *ignore.Matcher
	LLMThreads     int
	AmplifyThreads int
	FileThreads    int
	Timeout        time.Duration
	MaxRetries     int
	MockMode       bool
}

// Result reports what a pipeline run produced.
type Result struct {
	NewCommitOIDs []string
	Duration      time.Duration
}

// Pipeline orchestrates the indexing stages for one project: walk history,
// summarize new files, amplify commit messages, embed, persist. The whole
// run holds the project's advisory lock.
type Pipeline struct {
	store    *store.Store
	src      gitrepo.RepoSource
	chat     llm.Chat
	embedder embeddings.Embedder
	opts     Options

	mu       sync.Mutex
	status   *store.ProjectStatus
	stageKey string
	stagePct float64
}

// NewPipeline creates a Pipeline.
func NewPipeline(st *store.Store, src gitrepo.RepoSource, chat llm.Chat, embedder embeddings.Embedder, opts Options) *Pipeline {
	if opts.MaxDepth < 1 {
		opts.MaxDepth = config.DepthMid.MaxDepth()
	}
	return &Pipeline{
		store:    st,
		src:      src,
		chat:     chat,
		embedder: embedder,
		opts:     opts,
	}
}

func (p *Pipeline) amplifyActive() bool {
	return p.opts.Amplification != "" && p.opts.Amplification != config.AmplificationOff
}

func (p *Pipeline) stageKeys() []string {
	keys := []string{store.StageSummaries}
	if p.amplifyActive() {
		keys = append(keys, store.StageAmplification)
	}
	return append(keys, store.StageEmbeddings)
}

// Run executes the pipeline. It fails immediately with a LockedError if the
// project lock is held; on any stage failure the stage and overall status
// are marked failed, the error log is appended, and the error is returned.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	project := p.opts.Project

	if err := p.store.AcquireLock(project); err != nil {
		return nil, err
	}
	defer p.store.ReleaseLock(project)

	p.status = store.NewProjectStatus(p.stageKeys())
	if err := p.store.WriteStatus(project, p.status); err != nil {
		return nil, err
	}

	stopUpdater := p.startStatusUpdater(ctx)
	defer stopUpdater()

	logs, err := p.store.ReadCommitLogs(project)
	if err != nil {
		return nil, p.failStage(store.StageSummaries, err)
	}
	cache, err := p.store.ReadFileCache(project)
	if err != nil {
		return nil, p.failStage(store.StageSummaries, err)
	}
	embs, err := p.store.ReadCommitEmbeddings(project)
	if err != nil {
		return nil, p.failStage(store.StageSummaries, err)
	}

	// Stage 1: walk new commits, summarize new files, refresh the cache.
	p.setStage(store.StageSummaries, store.StageActive, 0, "")

	newCommits, err := NewWalker(p.src).NewCommits(ctx, logs, p.opts.MaxDepth)
	if err != nil {
		return nil, p.failStage(store.StageSummaries, err)
	}

	si := NewSummaryIndexer(SummaryIndexerConfig{
		Chat:        p.chat,
		Embedder:    p.embedder,
		Src:         p.src,
		Ignorer:     p.opts.Ignore,
		Model:       p.opts.Model,
		LLMThreads:  p.opts.LLMThreads,
		FileThreads: p.opts.FileThreads,
		Timeout:     p.opts.Timeout,
		MaxRetries:  p.opts.MaxRetries,
		OnProgress:  p.progressFunc(),
	})
	if err := si.Run(ctx, newCommits, cache); err != nil {
		return nil, p.failStage(store.StageSummaries, err)
	}
	if err := p.store.WriteFileCache(project, cache); err != nil {
		return nil, p.failStage(store.StageSummaries, err)
	}

	newLogs := append(append([]store.CommitRecord{}, newCommits...), logs...)
	if !p.amplifyActive() {
		// The commit logs are normally persisted once amplification has
		// appended its messages; with the stage disabled they are durable
		// at the end of stage 1.
		if err := p.store.WriteCommitLogs(project, newLogs); err != nil {
			return nil, p.failStage(store.StageSummaries, err)
		}
	}
	p.setStage(store.StageSummaries, store.StageCompleted, 100, "")

	// Stage 2: amplification (optional).
	if p.amplifyActive() {
		p.setStage(store.StageAmplification, store.StageActive, 0, "")

		amp := NewAmplifier(p.chat, p.opts.Model, p.opts.AmplifyThreads, p.opts.Timeout, p.opts.MaxRetries, p.progressFunc())
		if err := amp.Run(ctx, newCommits, p.opts.Amplification); err != nil {
			return nil, p.failStage(store.StageAmplification, err)
		}

		// Amplified messages must be durable before embeddings reference them.
		newLogs = append(append([]store.CommitRecord{}, newCommits...), logs...)
		if err := p.store.WriteCommitLogs(project, newLogs); err != nil {
			return nil, p.failStage(store.StageAmplification, err)
		}
		p.setStage(store.StageAmplification, store.StageCompleted, 100, "")
	}

	// Stage 3: embed messages and summaries per commit.
	p.setStage(store.StageEmbeddings, store.StageActive, 0, "")

	ce := NewCommitEmbedder(p.embedder, p.progressFunc())
	newOIDs, err := ce.Run(ctx, newCommits, cache, embs)
	if err != nil {
		return nil, p.failStage(store.StageEmbeddings, err)
	}
	if err := p.store.WriteCommitEmbeddings(project, embs); err != nil {
		return nil, p.failStage(store.StageEmbeddings, err)
	}
	p.setStage(store.StageEmbeddings, store.StageCompleted, 100, "")

	if p.opts.MockMode {
		newest := ""
		if len(newLogs) > 0 {
			newest = newLogs[0].OID
		}
		if err := p.store.SnapshotIndex(project, newest); err != nil {
			return nil, p.failStage(store.StageEmbeddings, err)
		}
	}

	return &Result{
		NewCommitOIDs: newOIDs,
		Duration:      time.Since(start),
	}, nil
}

// progressFunc returns a ProgressFunc feeding the current stage's percent.
func (p *Pipeline) progressFunc() ProgressFunc {
	return func(done, total int) {
		pct := float64(100)
		if total > 0 {
			pct = float64(done) / float64(total) * 100
		}
		p.mu.Lock()
		p.stagePct = pct
		p.mu.Unlock()
	}
}

// setStage updates one stage, recomputes the overall status, and persists it.
func (p *Pipeline) setStage(key string, state store.StageState, pct float64, errMsg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stageKey = key
	p.stagePct = pct
	p.status.SetStage(key, state, pct, errMsg)
	_ = p.store.WriteStatus(p.opts.Project, p.status)
}

// failStage marks the stage and overall status failed, records the error in
// the project log, and returns the error for propagation.
func (p *Pipeline) failStage(key string, err error) error {
	p.mu.Lock()
	p.status.SetStage(key, store.StageFailed, p.stagePct, err.Error())
	_ = p.store.WriteStatus(p.opts.Project, p.status)
	p.mu.Unlock()
	_ = p.store.AppendErrorLog(p.opts.Project, fmt.Sprintf("stage %s failed: %v", key, err))
	return err
}

// startStatusUpdater launches the single periodic task that samples the
// active stage's progress and rewrites the status file. The returned func
// stops it and waits for the final write.
func (p *Pipeline) startStatusUpdater(ctx context.Context) func() {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				p.mu.Lock()
				key := p.stageKey
				if key == "" {
					p.mu.Unlock()
					continue
				}
				st := p.status.Stages[key]
				if st.Status == store.StageActive {
					p.status.SetStage(key, store.StageActive, p.stagePct, "")
					_ = p.store.WriteStatus(p.opts.Project, p.status)
				}
				p.mu.Unlock()
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}
