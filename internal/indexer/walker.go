package indexer

import (
	"context"

	"github.com/ziadkadry99/gitscout/internal/gitrepo"
	"github.com/ziadkadry99/gitscout/internal/store"
)

// Walker turns repository history into commit-record skeletons for
// incremental indexing.
type Walker struct {
	src gitrepo.RepoSource
}

// NewWalker creates a Walker over the given repo source.
func NewWalker(src gitrepo.RepoSource) *Walker {
	return &Walker{src: src}
}

// NewCommits walks from HEAD newest-first, up to maxDepth commits, and
// returns skeleton records for commits not yet present in the persisted log.
// The newest previously-persisted oid acts as the stop sentinel: the walk
// terminates when it is reached and the sentinel itself is excluded. Commits
// with no file changes are skipped without terminating the walk. If the
// sentinel is never found within maxDepth (truncated history, or a rewritten
// HEAD that dropped it), already-logged commits deeper in the walk are
// skipped individually so the merge with the existing log stays free of
// duplicate oids.
func (w *Walker) NewCommits(ctx context.Context, logs []store.CommitRecord, maxDepth int) ([]store.CommitRecord, error) {
	stopOID := ""
	known := make(map[string]bool, len(logs))
	for _, rec := range logs {
		known[rec.OID] = true
	}
	if len(logs) > 0 {
		stopOID = logs[0].OID
	}

	var newCommits []store.CommitRecord
	err := w.src.CommitsFromHead(ctx, maxDepth, func(raw gitrepo.RawCommit) (bool, error) {
		if stopOID != "" && raw.OID == stopOID {
			return true, nil
		}
		if raw.Empty || known[raw.OID] {
			return false, nil
		}
		newCommits = append(newCommits, store.CommitRecord{
			OID:      raw.OID,
			Messages: []string{raw.Message},
			Files:    raw.Files,
			Diffs:    raw.Diffs,
		})
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return newCommits, nil
}
