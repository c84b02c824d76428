// Package store owns the per-project on-disk layout: commit logs, commit
// embeddings, the file-summary cache, the status file, the error log, and
// the advisory lock. All writes are whole-file replacements performed under
// the project lock by the indexing pipeline.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File names inside a project directory.
const (
	commitLogsFile       = "commits_logs.json"
	commitEmbeddingsFile = "commits_embeddings.json"
	fileCacheFile        = "files_embeddings.json"
	statusFile           = "status.json"
	errorLogFile         = "logs.txt"
	lockFile             = "repo.lock"
	worktreeDir          = "repo"
	sidecarDir           = "index_repo"
)

// Store manages project directories under a single data directory.
type Store struct {
	dataDir string
}

// New creates a Store rooted at dataDir.
func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// DataDir returns the root data directory.
func (s *Store) DataDir() string { return s.dataDir }

// ProjectDir returns the directory for the given project, creating it if needed.
func (s *Store) ProjectDir(project string) (string, error) {
	dir := filepath.Join(s.dataDir, "projects", project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create project dir: %w", err)
	}
	return dir, nil
}

// WorktreePath returns the checked-out working copy path for the project.
func (s *Store) WorktreePath(project string) string {
	return filepath.Join(s.dataDir, "projects", project, worktreeDir)
}

func (s *Store) projectFile(project, name string) string {
	return filepath.Join(s.dataDir, "projects", project, name)
}

// ReadCommitLogs loads the persisted commit log list, newest-first.
// A missing file yields an empty list.
func (s *Store) ReadCommitLogs(project string) ([]CommitRecord, error) {
	var logs []CommitRecord
	if err := s.readJSON(project, commitLogsFile, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []CommitRecord{}
	}
	if err := ValidateCommitLogs(logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// WriteCommitLogs replaces the persisted commit log list.
func (s *Store) WriteCommitLogs(project string, logs []CommitRecord) error {
	if err := ValidateCommitLogs(logs); err != nil {
		return err
	}
	if logs == nil {
		logs = []CommitRecord{}
	}
	return s.writeJSON(project, commitLogsFile, logs)
}

// ReadCommitEmbeddings loads the oid -> embedding record mapping.
// A missing file yields an empty map.
func (s *Store) ReadCommitEmbeddings(project string) (map[string]CommitEmbedding, error) {
	embs := make(map[string]CommitEmbedding)
	if err := s.readJSON(project, commitEmbeddingsFile, &embs); err != nil {
		return nil, err
	}
	if err := ValidateCommitEmbeddings(embs); err != nil {
		return nil, err
	}
	return embs, nil
}

// WriteCommitEmbeddings replaces the oid -> embedding record mapping.
func (s *Store) WriteCommitEmbeddings(project string, embs map[string]CommitEmbedding) error {
	if err := ValidateCommitEmbeddings(embs); err != nil {
		return err
	}
	if embs == nil {
		embs = map[string]CommitEmbedding{}
	}
	return s.writeJSON(project, commitEmbeddingsFile, embs)
}

// ReadFileCache loads the file path -> {summary, embedding} cache.
// A missing file yields an empty map.
func (s *Store) ReadFileCache(project string) (map[string]FileCacheEntry, error) {
	cache := make(map[string]FileCacheEntry)
	if err := s.readJSON(project, fileCacheFile, &cache); err != nil {
		return nil, err
	}
	if err := ValidateFileCache(cache); err != nil {
		return nil, err
	}
	return cache, nil
}

// WriteFileCache replaces the file summary/embedding cache.
func (s *Store) WriteFileCache(project string, cache map[string]FileCacheEntry) error {
	if err := ValidateFileCache(cache); err != nil {
		return err
	}
	if cache == nil {
		cache = map[string]FileCacheEntry{}
	}
	return s.writeJSON(project, fileCacheFile, cache)
}

func (s *Store) readJSON(project, name string, v any) error {
	data, err := os.ReadFile(s.projectFile(project, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeJSON(project, name string, v any) error {
	if _, err := s.ProjectDir(project); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(s.projectFile(project, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
