package indexer

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/gitscout/internal/store"
)

// summaryPrompt asks the model to summarize one worktree file.
func summaryPrompt(path string, content []byte) string {
	return fmt.Sprintf("Summarize this file (%s):\n%s", path, content)
}

// wholeCommitPrompt concatenates every file diff of a commit into a single
// amplification prompt.
func wholeCommitPrompt(rec store.CommitRecord) string {
	var b strings.Builder
	b.WriteString("Write an alternative commit message describing the following changes.\n\n")
	for _, path := range rec.Files {
		b.WriteString(path)
		b.WriteString("\n")
		b.WriteString(rec.Diffs[path].Diff)
		b.WriteString("\n\n")
	}
	return b.String()
}

// perFilePrompt asks for a commit message describing a single file's diff.
func perFilePrompt(path string, diff store.FileDiff) string {
	return fmt.Sprintf("Write a commit message describing this change to %s.\n\n%s\n%s", path, path, diff.Diff)
}
