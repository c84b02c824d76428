package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/gitscout/internal/config"
	"github.com/ziadkadry99/gitscout/internal/embeddings"
	"github.com/ziadkadry99/gitscout/internal/gitrepo"
	"github.com/ziadkadry99/gitscout/internal/llm"
	"github.com/ziadkadry99/gitscout/internal/localizer"
	"github.com/ziadkadry99/gitscout/internal/matcher"
	"github.com/ziadkadry99/gitscout/internal/store"
)

var (
	queryRepoPath string
	queryProject  string
	queryStrength string
	queryTopN     int
	queryLocalize bool
)

var queryCmd = &cobra.Command{
	Use:   "query <problem statement>",
	Short: "Find the files most relevant to a problem statement",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		problem := args[0]

		repoPath, err := filepath.Abs(queryRepoPath)
		if err != nil {
			return err
		}
		project := queryProject
		if project == "" {
			project = filepath.Base(repoPath)
		}

		st := openStore(cfg)
		embs, err := st.ReadCommitEmbeddings(project)
		if err != nil {
			return err
		}
		logs, err := st.ReadCommitLogs(project)
		if err != nil {
			return err
		}

		embProvider := string(cfg.EmbeddingProvider)
		if cfg.UseMockLLM {
			embProvider = "mock"
		}
		embedder, err := embeddings.NewEmbedder(embProvider, cfg.EmbeddingModel)
		if err != nil {
			return err
		}

		ctx := context.Background()
		matches, err := matcher.New(embedder).Query(ctx, embs, problem, config.MatchStrength(queryStrength), queryTopN)
		if err != nil {
			return err
		}

		byOID := make(map[string]store.CommitRecord, len(logs))
		for _, rec := range logs {
			byOID[rec.OID] = rec
		}
		for _, m := range matches {
			fmt.Printf("%.3f  %s\n", m.Similarity, m.OID)
			for _, path := range byOID[m.OID].Files {
				fmt.Printf("       %s\n", path)
			}
		}

		if !queryLocalize {
			return nil
		}

		repo, err := gitrepo.Open(repoPath)
		if err != nil {
			return err
		}
		provider := string(cfg.Provider)
		if cfg.UseMockLLM {
			provider = "mock"
		}
		chat, err := llm.NewChat(provider, cfg.Model, cfg.LLMRPM)
		if err != nil {
			return err
		}
		cache, err := st.ReadFileCache(project)
		if err != nil {
			return err
		}

		loc := localizer.New(chat, repo, cfg.Model, time.Duration(cfg.RequestTimeoutSec)*time.Second, cfg.MaxRetries)
		paths, err := loc.Localize(ctx, problem, cache)
		if err != nil {
			return err
		}
		if len(paths) > 0 {
			fmt.Println("localized:")
			for _, path := range paths {
				fmt.Printf("       %s\n", path)
			}
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryRepoPath, "repo", ".", "path to the repository checkout")
	queryCmd.Flags().StringVar(&queryProject, "project", "", "project name (defaults to the repo directory name)")
	queryCmd.Flags().StringVar(&queryStrength, "strength", "mid", "match strength: high, mid, or low")
	queryCmd.Flags().IntVar(&queryTopN, "top", matcher.DefaultTopN, "maximum number of commits to return")
	queryCmd.Flags().BoolVar(&queryLocalize, "localize", false, "run the two-phase LLM file localization pass")
	rootCmd.AddCommand(queryCmd)
}
