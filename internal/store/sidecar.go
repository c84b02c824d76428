package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// SnapshotIndex commits the project's index artifacts into a sidecar git
// repo and tags the commit with the newest source oid. The sidecar is
// optional history for the persisted JSON files; it is only exercised when
// the pipeline runs against the mock chat backend.
func (s *Store) SnapshotIndex(project, sourceOID string) error {
	dir := filepath.Join(s.dataDir, "projects", project, sidecarDir)

	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return fmt.Errorf("open sidecar repo: %w", err)
	}

	for _, name := range []string{commitLogsFile, commitEmbeddingsFile, fileCacheFile} {
		src := s.projectFile(project, name)
		data, err := os.ReadFile(src)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("sidecar worktree: %w", err)
	}
	if err := wt.AddGlob("*.json"); err != nil {
		return fmt.Errorf("stage index files: %w", err)
	}

	hash, err := wt.Commit(fmt.Sprintf("index snapshot at %s", sourceOID), &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  "gitscout",
			Email: "gitscout@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit index snapshot: %w", err)
	}

	if sourceOID != "" {
		if _, err := repo.CreateTag(sourceOID, hash, nil); err != nil && !errors.Is(err, git.ErrTagExists) {
			return fmt.Errorf("tag index snapshot: %w", err)
		}
	}
	return nil
}
