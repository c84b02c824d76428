package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gitscout",
	Short: "Commit-history indexing and LLM-assisted file localization",
	Long: `Gitscout indexes a repository's commit history into a searchable
representation: per-file LLM summaries, amplified commit messages, and
vector embeddings persisted per commit. Given a natural-language problem
statement it returns the source files most likely to be relevant.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".gitscout.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
