package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/gitscout/internal/embeddings"
	"github.com/ziadkadry99/gitscout/internal/gitrepo"
	"github.com/ziadkadry99/gitscout/internal/ignore"
	"github.com/ziadkadry99/gitscout/internal/indexer"
	"github.com/ziadkadry99/gitscout/internal/llm"
	"github.com/ziadkadry99/gitscout/internal/progress"
	"github.com/ziadkadry99/gitscout/internal/store"
)

var (
	indexRepoPath string
	indexProject  string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a repository's commit history",
	Long:  `Runs the full indexing pipeline against a local checkout: commit walk, file summaries, message amplification, and embeddings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		repoPath, err := filepath.Abs(indexRepoPath)
		if err != nil {
			return err
		}
		project := indexProject
		if project == "" {
			project = filepath.Base(repoPath)
		}

		repo, err := gitrepo.Open(repoPath)
		if err != nil {
			return err
		}

		provider := string(cfg.Provider)
		embProvider := string(cfg.EmbeddingProvider)
		if cfg.UseMockLLM {
			provider = "mock"
			embProvider = "mock"
		}
		chat, err := llm.NewChat(provider, cfg.Model, cfg.LLMRPM)
		if err != nil {
			return err
		}
		embedder, err := embeddings.NewEmbedder(embProvider, cfg.EmbeddingModel)
		if err != nil {
			return err
		}

		st := openStore(cfg)
		pipe := indexer.NewPipeline(st, repo, chat, embedder, indexer.Options{
			Project:        project,
			Model:          cfg.Model,
			Amplification:  cfg.Amplification,
			MaxDepth:       cfg.Depth.MaxDepth(),
			Ignore:         ignore.New(cfg.IgnoreFiles),
			LLMThreads:     cfg.LLMThreads,
			AmplifyThreads: cfg.AmplifyThreads,
			FileThreads:    cfg.FileReadThreads,
			Timeout:        time.Duration(cfg.RequestTimeoutSec) * time.Second,
			MaxRetries:     cfg.MaxRetries,
			MockMode:       cfg.UseMockLLM,
		})

		stopBar := showProgress(st, project)
		result, err := pipe.Run(context.Background())
		stopBar()
		if err != nil {
			return err
		}

		fmt.Printf("Indexed %d new commits in %s\n", len(result.NewCommitOIDs), result.Duration.Round(time.Second))
		return nil
	},
}

// showProgress polls the persisted status file once a second and renders the
// overall progress until the returned stop function is called.
func showProgress(st *store.Store, project string) func() {
	reporter := progress.NewReporter()
	reporter.Start("Indexing "+project, 100)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				status, err := st.ReadStatus(project)
				if err != nil || status == nil {
					continue
				}
				reporter.Update(int(status.OverallProgress))
			}
		}
	}()

	return func() {
		close(done)
		<-finished
		reporter.Finish()
	}
}

func init() {
	indexCmd.Flags().StringVar(&indexRepoPath, "repo", ".", "path to the repository checkout")
	indexCmd.Flags().StringVar(&indexProject, "project", "", "project name (defaults to the repo directory name)")
	rootCmd.AddCommand(indexCmd)
}
