package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/gitscout/internal/binary"
	"github.com/ziadkadry99/gitscout/internal/config"
	"github.com/ziadkadry99/gitscout/internal/embeddings"
	"github.com/ziadkadry99/gitscout/internal/errs"
	"github.com/ziadkadry99/gitscout/internal/gitrepo"
	"github.com/ziadkadry99/gitscout/internal/ignore"
	"github.com/ziadkadry99/gitscout/internal/indexer"
	"github.com/ziadkadry99/gitscout/internal/llm"
	"github.com/ziadkadry99/gitscout/internal/localizer"
	"github.com/ziadkadry99/gitscout/internal/matcher"
	"github.com/ziadkadry99/gitscout/internal/store"
	"github.com/ziadkadry99/gitscout/internal/tokens"
)

// maxInferenceTokens caps the estimated LLM input for a single request.
const maxInferenceTokens = 3_000_000

// Engine wires the store, VCS layer, LLM backends, and pipeline behind the
// HTTP handlers. One Engine serves every project under the data directory.
type Engine struct {
	cfg   *config.Config
	store *store.Store

	mu   sync.Mutex
	jobs map[string]*Job
}

// Job tracks one background repository load.
type Job struct {
	ID      string `json:"id"`
	Project string `json:"project"`
	State   string `json:"state"` // running, completed, failed
	Error   string `json:"error,omitempty"`
}

// NewEngine creates an Engine.
func NewEngine(cfg *config.Config, st *store.Store) *Engine {
	return &Engine{
		cfg:   cfg,
		store: st,
		jobs:  make(map[string]*Job),
	}
}

// resolveProject returns the project name, deriving it from the codehost URL
// when no explicit name is given.
func (e *Engine) resolveProject(name, codehostURL string) (string, error) {
	if name != "" {
		return name, nil
	}
	if codehostURL == "" {
		return "", fmt.Errorf("%w: project_name or codehost_url required", errs.ErrValidation)
	}
	return store.ProjectNameFromURL(codehostURL)
}

// openRepo opens the project's checked-out worktree.
func (e *Engine) openRepo(project string) (*gitrepo.GitRepo, error) {
	return gitrepo.Open(e.store.WorktreePath(project))
}

// LoadParams carries the per-request overrides accepted by /load.
type LoadParams struct {
	ProjectName        string   `json:"project_name"`
	CodehostURL        string   `json:"codehost_url"`
	Head               string   `json:"head"`
	IgnoreFiles        []string `json:"ignore_files"`
	LLMProvider        string   `json:"llm_provider"`
	LLMModel           string   `json:"llm_model"`
	EmbeddingsProvider string   `json:"embeddings_provider"`
	EmbeddingsModel    string   `json:"embeddings_model"`
	AmplificationLevel string   `json:"amplification_level"`
	DepthLevel         string   `json:"depth_level"`
	UseMockLLM         bool     `json:"use_mock_llm"`
	LLMThreads         int      `json:"llm_threads"`
}

func (e *Engine) chatFor(p LoadParams) (llm.Chat, string, error) {
	provider := string(e.cfg.Provider)
	model := e.cfg.Model
	if p.LLMProvider != "" {
		provider = p.LLMProvider
	}
	if p.LLMModel != "" {
		model = p.LLMModel
	}
	if p.UseMockLLM || e.cfg.UseMockLLM {
		provider = string(config.ProviderMock)
	}
	chat, err := llm.NewChat(provider, model, e.cfg.LLMRPM)
	return chat, model, err
}

func (e *Engine) embedderFor(p LoadParams) (embeddings.Embedder, error) {
	provider := string(e.cfg.EmbeddingProvider)
	model := e.cfg.EmbeddingModel
	if p.EmbeddingsProvider != "" {
		provider = p.EmbeddingsProvider
	}
	if p.EmbeddingsModel != "" {
		model = p.EmbeddingsModel
	}
	if p.UseMockLLM || e.cfg.UseMockLLM {
		provider = string(config.ProviderMock)
	}
	return embeddings.NewEmbedder(provider, model)
}

func (e *Engine) ignorerFor(extra []string) *ignore.Matcher {
	return ignore.New(append(append([]string{}, e.cfg.IgnoreFiles...), extra...))
}

func (e *Engine) pipelineOptions(project, model string, p LoadParams) indexer.Options {
	amplification := e.cfg.Amplification
	if p.AmplificationLevel != "" {
		amplification = config.AmplificationLevel(p.AmplificationLevel)
	}
	depth := e.cfg.Depth
	if p.DepthLevel != "" {
		depth = config.DepthLevel(p.DepthLevel)
	}
	llmThreads := e.cfg.LLMThreads
	if p.LLMThreads > 0 {
		llmThreads = p.LLMThreads
	}
	return indexer.Options{
		Project:        project,
		Model:          model,
		Amplification:  amplification,
		MaxDepth:       depth.MaxDepth(),
		Ignore:         e.ignorerFor(p.IgnoreFiles),
		LLMThreads:     llmThreads,
		AmplifyThreads: e.cfg.AmplifyThreads,
		FileThreads:    e.cfg.FileReadThreads,
		Timeout:        time.Duration(e.cfg.RequestTimeoutSec) * time.Second,
		MaxRetries:     e.cfg.MaxRetries,
		MockMode:       p.UseMockLLM || e.cfg.UseMockLLM,
	}
}

// Load checks out the requested head (when given) and runs the full indexing
// pipeline for the project.
func (e *Engine) Load(ctx context.Context, p LoadParams) (*indexer.Result, error) {
	project, err := e.resolveProject(p.ProjectName, p.CodehostURL)
	if err != nil {
		return nil, err
	}
	repo, err := e.openRepo(project)
	if err != nil {
		return nil, err
	}
	if p.Head != "" {
		if err := repo.Checkout(p.Head); err != nil {
			return nil, err
		}
	}

	chat, model, err := e.chatFor(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	embedder, err := e.embedderFor(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}

	pipe := indexer.NewPipeline(e.store, repo, chat, embedder, e.pipelineOptions(project, model, p))
	return pipe.Run(ctx)
}

// AddRepository clones the repository and runs the initial load in the
// background, returning the job id immediately.
func (e *Engine) AddRepository(codehostURL string, p LoadParams) (*Job, error) {
	project, err := store.ProjectNameFromURL(codehostURL)
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:      uuid.NewString(),
		Project: project,
		State:   "running",
	}
	e.mu.Lock()
	e.jobs[job.ID] = job
	e.mu.Unlock()

	go func() {
		fail := func(err error) {
			e.mu.Lock()
			job.State = "failed"
			job.Error = err.Error()
			e.mu.Unlock()
			_ = e.store.AppendErrorLog(project, fmt.Sprintf("add-repository: %v", err))
		}

		if _, err := gitrepo.CloneOrOpen(codehostURL, e.store.WorktreePath(project)); err != nil {
			fail(err)
			return
		}
		p.ProjectName = project
		if _, err := e.Load(context.Background(), p); err != nil {
			fail(err)
			return
		}
		e.mu.Lock()
		job.State = "completed"
		e.mu.Unlock()
	}()

	return job, nil
}

// JobStatus returns a snapshot of a background job, or nil if unknown.
func (e *Engine) JobStatus(id string) *Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	if job, ok := e.jobs[id]; ok {
		snapshot := *job
		return &snapshot
	}
	return nil
}

// FetchAndCheckout fetches remote refs, checks out the requested branch or
// commit, and runs the pipeline.
func (e *Engine) FetchAndCheckout(ctx context.Context, rev string, p LoadParams) (*indexer.Result, error) {
	project, err := e.resolveProject(p.ProjectName, p.CodehostURL)
	if err != nil {
		return nil, err
	}
	if rev == "" {
		return nil, fmt.Errorf("%w: branch_name or commit_oid required", errs.ErrValidation)
	}
	repo, err := e.openRepo(project)
	if err != nil {
		return nil, err
	}
	if err := repo.Fetch(); err != nil {
		return nil, err
	}
	if err := repo.Checkout(rev); err != nil {
		return nil, err
	}

	p.ProjectName = project
	p.Head = ""
	return e.Load(ctx, p)
}

// InferredPath is one element of the /infer-file response.
type InferredPath struct {
	OID        string   `json:"oid"`
	Similarity float64  `json:"similarity"`
	FilePaths  []string `json:"file_paths"`
	PathType   string   `json:"path_type"` // commit or localization
}

// InferFile fuses embedding similarity over commit history with the
// two-phase structural localization pass.
func (e *Engine) InferFile(ctx context.Context, p LoadParams, problem, strength string, topN int) ([]InferredPath, error) {
	if problem == "" {
		return nil, fmt.Errorf("%w: problem_statement required", errs.ErrValidation)
	}
	project, err := e.resolveProject(p.ProjectName, p.CodehostURL)
	if err != nil {
		return nil, err
	}
	repo, err := e.openRepo(project)
	if err != nil {
		return nil, err
	}

	logs, err := e.store.ReadCommitLogs(project)
	if err != nil {
		return nil, err
	}
	embs, err := e.store.ReadCommitEmbeddings(project)
	if err != nil {
		return nil, err
	}
	cache, err := e.store.ReadFileCache(project)
	if err != nil {
		return nil, err
	}

	embedder, err := e.embedderFor(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	matches, err := matcher.New(embedder).Query(ctx, embs, problem, config.MatchStrength(strength), topN)
	if err != nil {
		return nil, err
	}

	byOID := make(map[string]store.CommitRecord, len(logs))
	for _, rec := range logs {
		byOID[rec.OID] = rec
	}
	ignorer := e.ignorerFor(p.IgnoreFiles)

	var results []InferredPath
	for _, m := range matches {
		rec, ok := byOID[m.OID]
		if !ok {
			continue
		}
		results = append(results, InferredPath{
			OID:        m.OID,
			Similarity: m.Similarity,
			FilePaths:  ignorer.Filter(rec.Files),
			PathType:   "commit",
		})
	}

	chat, model, err := e.chatFor(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	loc := localizer.New(chat, repo, model, time.Duration(e.cfg.RequestTimeoutSec)*time.Second, e.cfg.MaxRetries)
	localized, err := loc.Localize(ctx, problem, cache)
	if err != nil {
		return nil, err
	}
	if len(localized) > 0 {
		results = append(results, InferredPath{
			FilePaths: ignorer.Filter(localized),
			PathType:  "localization",
		})
	}
	return results, nil
}

// RetrieveFileContents reads worktree files, skipping ignored and binary
// paths. The second return value lists the paths actually retrieved.
func (e *Engine) RetrieveFileContents(p LoadParams, paths []string) (map[string]string, []string, error) {
	project, err := e.resolveProject(p.ProjectName, p.CodehostURL)
	if err != nil {
		return nil, nil, err
	}
	repo, err := e.openRepo(project)
	if err != nil {
		return nil, nil, err
	}
	ignorer := e.ignorerFor(p.IgnoreFiles)

	contents := make(map[string]string)
	var retrieved []string
	for _, path := range paths {
		if ignorer.Match(path) || !repo.FileExistsInWorktree(path) {
			continue
		}
		data, err := repo.ReadWorktreeFile(path)
		if err != nil {
			continue
		}
		if binary.IsBinaryData(path, data) {
			continue
		}
		contents[path] = string(data)
		retrieved = append(retrieved, path)
	}
	return contents, retrieved, nil
}

// StatusReport is the /status response.
type StatusReport struct {
	LockFilePresent  bool                 `json:"lock_file_present"`
	LockTimeDuration float64              `json:"lock_time_duration"` // seconds
	ErrorLogs        string               `json:"error_logs,omitempty"`
	Pipeline         *store.ProjectStatus `json:"pipeline,omitempty"`
}

// Status reports the lock state, error log, and latest persisted pipeline
// status for the project.
func (e *Engine) Status(name, codehostURL string) (*StatusReport, error) {
	project, err := e.resolveProject(name, codehostURL)
	if err != nil {
		return nil, err
	}
	present, elapsed := e.store.LockInfo(project)
	logs, err := e.store.ReadErrorLog(project)
	if err != nil {
		return nil, err
	}
	pipeline, err := e.store.ReadStatus(project)
	if err != nil {
		return nil, err
	}
	return &StatusReport{
		LockFilePresent:  present,
		LockTimeDuration: elapsed.Seconds(),
		ErrorLogs:        logs,
		Pipeline:         pipeline,
	}, nil
}

// FileSummary pairs a path with its cached summary.
type FileSummary struct {
	FilePath string `json:"file_path"`
	Summary  string `json:"summary"`
}

// FileSummaries returns the cached summary for each requested path. Paths
// without a cache entry come back with an empty summary.
func (e *Engine) FileSummaries(project string, paths []string) ([]FileSummary, error) {
	cache, err := e.store.ReadFileCache(project)
	if err != nil {
		return nil, err
	}
	out := make([]FileSummary, 0, len(paths))
	for _, path := range paths {
		entry := cache[path]
		summary := entry.Summary
		if summary == store.EmptySummary {
			summary = ""
		}
		out = append(out, FileSummary{FilePath: path, Summary: summary})
	}
	return out, nil
}

// TokenCount is the token-count endpoints' response.
type TokenCount struct {
	EmbeddingTokens int `json:"embedding_tokens"`
	InferenceTokens int `json:"inference_tokens"`
}

// LoadTokenCount estimates the token budget a /load would spend, walking the
// not-yet-indexed commits without touching any LLM.
func (e *Engine) LoadTokenCount(ctx context.Context, p LoadParams) (*TokenCount, error) {
	project, err := e.resolveProject(p.ProjectName, p.CodehostURL)
	if err != nil {
		return nil, err
	}
	repo, err := e.openRepo(project)
	if err != nil {
		return nil, err
	}
	logs, err := e.store.ReadCommitLogs(project)
	if err != nil {
		return nil, err
	}
	cache, err := e.store.ReadFileCache(project)
	if err != nil {
		return nil, err
	}

	depth := e.cfg.Depth
	if p.DepthLevel != "" {
		depth = config.DepthLevel(p.DepthLevel)
	}
	newCommits, err := indexer.NewWalker(repo).NewCommits(ctx, logs, depth.MaxDepth())
	if err != nil {
		return nil, err
	}

	ignorer := e.ignorerFor(p.IgnoreFiles)
	tc := &TokenCount{}
	seen := make(map[string]bool)
	for _, rec := range newCommits {
		tc.InferenceTokens += tokens.EstimateAll(rec.Messages)
		tc.EmbeddingTokens += tokens.EstimateAll(rec.Messages)
		for _, path := range rec.Files {
			tc.InferenceTokens += tokens.Estimate(rec.Diffs[path].Diff)
			if seen[path] || ignorer.Match(path) {
				continue
			}
			seen[path] = true
			if entry, ok := cache[path]; ok && entry.Summary != store.EmptySummary {
				tc.EmbeddingTokens += tokens.Estimate(entry.Summary)
			}
		}
	}

	if tc.InferenceTokens > maxInferenceTokens {
		return nil, fmt.Errorf("%w: estimated inference tokens %d exceed the %d cap", errs.ErrValidation, tc.InferenceTokens, maxInferenceTokens)
	}
	return tc, nil
}

// InferFileTokenCount estimates the token budget of an /infer-file call: the
// problem statement is embedded once, and the localization prompts carry the
// project tree alongside it.
func (e *Engine) InferFileTokenCount(p LoadParams, problem string) (*TokenCount, error) {
	project, err := e.resolveProject(p.ProjectName, p.CodehostURL)
	if err != nil {
		return nil, err
	}
	repo, err := e.openRepo(project)
	if err != nil {
		return nil, err
	}
	tree, err := localizer.TreeView(repo.RootDir())
	if err != nil {
		return nil, err
	}

	tc := &TokenCount{
		EmbeddingTokens: tokens.Estimate(problem),
		InferenceTokens: tokens.Estimate(problem) + tokens.Estimate(tree),
	}
	if tc.InferenceTokens > maxInferenceTokens {
		return nil, fmt.Errorf("%w: estimated inference tokens %d exceed the %d cap", errs.ErrValidation, tc.InferenceTokens, maxInferenceTokens)
	}
	return tc, nil
}
