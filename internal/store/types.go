package store

import (
	"fmt"

	"github.com/ziadkadry99/gitscout/internal/errs"
)

// EmptySummary is the sentinel stored for files skipped because they were
// binary, empty, unreadable, or ignored.
const EmptySummary = "EMPTY_SUMMARY"

// FileDiff holds the patch text and change flags for one file in a commit.
type FileDiff struct {
	Diff    string `json:"diff"`
	Added   bool   `json:"added"`
	Deleted bool   `json:"deleted"`
}

// CommitRecord is one entry of commits_logs.json. Records are persisted
// newest-first; Messages[0] is always the original commit message and
// Summaries[i] pairs with Files[i].
type CommitRecord struct {
	OID       string              `json:"oid"`
	Messages  []string            `json:"messages"`
	Files     []string            `json:"files"`
	Diffs     map[string]FileDiff `json:"diffs"`
	Summaries []string            `json:"summaries"`
}

// CommitEmbedding is one entry of commits_embeddings.json, keyed by oid.
// Messages holds the exact strings that were embedded, in the order
// original messages, amplified messages, summaries.
type CommitEmbedding struct {
	Messages   []string    `json:"messages"`
	Embeddings [][]float64 `json:"embeddings"`
}

// FileCacheEntry is one entry of files_embeddings.json, keyed by file path.
type FileCacheEntry struct {
	Summary   string    `json:"summary"`
	Embedding []float64 `json:"embedding"`
}

// ValidateCommitLogs checks structural invariants of the commit log list.
func ValidateCommitLogs(logs []CommitRecord) error {
	seen := make(map[string]bool, len(logs))
	for i, rec := range logs {
		if rec.OID == "" {
			return fmt.Errorf("%w: commit log entry %d has empty oid", errs.ErrValidation, i)
		}
		if seen[rec.OID] {
			return fmt.Errorf("%w: duplicate oid %s in commit logs", errs.ErrValidation, rec.OID)
		}
		seen[rec.OID] = true
		if len(rec.Messages) == 0 {
			return fmt.Errorf("%w: commit %s has no messages", errs.ErrValidation, rec.OID)
		}
		if rec.Summaries != nil && len(rec.Summaries) != len(rec.Files) {
			return fmt.Errorf("%w: commit %s has %d summaries for %d files",
				errs.ErrValidation, rec.OID, len(rec.Summaries), len(rec.Files))
		}
	}
	return nil
}

// ValidateCommitEmbeddings checks that every record pairs each embedded
// message with exactly one vector.
func ValidateCommitEmbeddings(embs map[string]CommitEmbedding) error {
	for oid, rec := range embs {
		if len(rec.Messages) != len(rec.Embeddings) {
			return fmt.Errorf("%w: commit %s has %d messages but %d embeddings",
				errs.ErrValidation, oid, len(rec.Messages), len(rec.Embeddings))
		}
	}
	return nil
}

// ValidateFileCache checks that every entry carries a summary string and a
// numeric embedding vector.
func ValidateFileCache(cache map[string]FileCacheEntry) error {
	for path, entry := range cache {
		if entry.Summary == "" {
			return fmt.Errorf("%w: file cache entry %s has empty summary", errs.ErrValidation, path)
		}
		if entry.Summary != EmptySummary && len(entry.Embedding) == 0 {
			return fmt.Errorf("%w: file cache entry %s has no embedding", errs.ErrValidation, path)
		}
	}
	return nil
}
