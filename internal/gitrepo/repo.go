// Package gitrepo wraps the version control system behind the RepoSource
// interface: resolving and checking out revisions, and yielding commits
// newest-first with per-file patches.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/ziadkadry99/gitscout/internal/errs"
	"github.com/ziadkadry99/gitscout/internal/store"
)

// RawCommit is one commit as produced by the walker, newest-first.
type RawCommit struct {
	OID     string
	Message string
	Parents []string
	Files   []string
	Diffs   map[string]store.FileDiff
	Empty   bool
}

// RepoSource yields ordered commits and worktree contents for one repository.
type RepoSource interface {
	// Checkout switches the worktree to the named revision.
	Checkout(rev string) error

	// CommitsFromHead walks history newest-first up to maxDepth commits,
	// invoking fn for each. fn returning stop=true ends the walk early.
	CommitsFromHead(ctx context.Context, maxDepth int, fn func(RawCommit) (stop bool, err error)) error

	// FileExistsInWorktree reports whether the repo-relative path exists.
	FileExistsInWorktree(path string) bool

	// ReadWorktreeFile returns the contents of the repo-relative path.
	ReadWorktreeFile(path string) ([]byte, error)

	// Head returns the current HEAD commit oid.
	Head() (string, error)

	// RootDir returns the worktree root directory.
	RootDir() string
}

// GitRepo implements RepoSource over a go-git repository on disk.
type GitRepo struct {
	repo *git.Repository
	root string
}

// Open opens an existing repository at dir.
func Open(dir string) (*GitRepo, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errs.ErrVcs, dir, err)
	}
	return &GitRepo{repo: repo, root: dir}, nil
}

// CloneOrOpen clones url into dir, or opens dir if it already holds a repo.
func CloneOrOpen(url, dir string) (*GitRepo, error) {
	repo, err := git.PlainOpen(dir)
	if err == nil {
		return &GitRepo{repo: repo, root: dir}, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: open %s: %v", errs.ErrVcs, dir, err)
	}

	repo, err = git.PlainClone(dir, false, &git.CloneOptions{URL: url})
	if err != nil {
		return nil, fmt.Errorf("%w: clone %s: %v", errs.ErrVcs, url, err)
	}
	return &GitRepo{repo: repo, root: dir}, nil
}

// Fetch updates remote refs. Already-up-to-date and repositories without a
// remote are not errors, so local-only checkouts keep working.
func (g *GitRepo) Fetch() error {
	err := g.repo.Fetch(&git.FetchOptions{})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) && !errors.Is(err, git.ErrRemoteNotFound) {
		return fmt.Errorf("%w: fetch: %v", errs.ErrVcs, err)
	}
	return nil
}

func (g *GitRepo) RootDir() string { return g.root }

func (g *GitRepo) Checkout(rev string) error {
	hash, err := g.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return fmt.Errorf("%w: %q", errs.ErrRevisionNotFound, rev)
	}

	wt, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: worktree: %v", errs.ErrVcs, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return fmt.Errorf("%w: checkout %s: %v", errs.ErrVcs, rev, err)
	}
	return nil
}

func (g *GitRepo) Head() (string, error) {
	ref, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: head: %v", errs.ErrVcs, err)
	}
	return ref.Hash().String(), nil
}

func (g *GitRepo) FileExistsInWorktree(path string) bool {
	info, err := os.Stat(filepath.Join(g.root, filepath.FromSlash(path)))
	return err == nil && info.Mode().IsRegular()
}

func (g *GitRepo) ReadWorktreeFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(g.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("read worktree file %s: %w", path, err)
	}
	return data, nil
}

// CommitsFromHead follows the first-parent chain from HEAD, newest-first.
// Walking first parents only keeps the emitted history linear and contiguous,
// which the incremental stop-oid protocol depends on.
func (g *GitRepo) CommitsFromHead(ctx context.Context, maxDepth int, fn func(RawCommit) (bool, error)) error {
	ref, err := g.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// Repository with zero commits.
			return nil
		}
		return fmt.Errorf("%w: head: %v", errs.ErrVcs, err)
	}

	commit, err := g.repo.CommitObject(ref.Hash())
	if err != nil {
		return fmt.Errorf("%w: resolve head commit: %v", errs.ErrVcs, err)
	}

	for depth := 0; depth < maxDepth && commit != nil; depth++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := g.rawCommit(commit)
		if err != nil {
			return err
		}

		stop, err := fn(raw)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}

		if commit.NumParents() == 0 {
			return nil
		}
		commit, err = commit.Parent(0)
		if err != nil {
			return fmt.Errorf("%w: parent of %s: %v", errs.ErrVcs, raw.OID, err)
		}
	}
	return nil
}

func (g *GitRepo) rawCommit(c *object.Commit) (RawCommit, error) {
	raw := RawCommit{
		OID:     c.Hash.String(),
		Message: c.Message,
		Diffs:   make(map[string]store.FileDiff),
	}
	for _, p := range c.ParentHashes {
		raw.Parents = append(raw.Parents, p.String())
	}

	if c.NumParents() == 0 {
		if err := g.rootCommitDiffs(c, &raw); err != nil {
			return RawCommit{}, err
		}
	} else {
		if err := g.parentDiffs(c, &raw); err != nil {
			return RawCommit{}, err
		}
	}

	raw.Empty = len(raw.Files) == 0
	return raw, nil
}

// rootCommitDiffs treats the initial commit as a diff against the empty
// tree: every file is "added" and its blob content stands in for the patch.
func (g *GitRepo) rootCommitDiffs(c *object.Commit, raw *RawCommit) error {
	files, err := c.Files()
	if err != nil {
		return fmt.Errorf("%w: files of %s: %v", errs.ErrVcs, raw.OID, err)
	}
	defer files.Close()

	err = files.ForEach(func(f *object.File) error {
		content, err := f.Contents()
		if err != nil {
			return err
		}
		raw.Files = append(raw.Files, f.Name)
		raw.Diffs[f.Name] = store.FileDiff{Diff: content, Added: true}
		return nil
	})
	if err != nil && err != io.EOF {
		return fmt.Errorf("%w: iterate files of %s: %v", errs.ErrVcs, raw.OID, err)
	}
	return nil
}

// parentDiffs diffs the commit against its first parent.
func (g *GitRepo) parentDiffs(c *object.Commit, raw *RawCommit) error {
	parent, err := c.Parent(0)
	if err != nil {
		return fmt.Errorf("%w: parent of %s: %v", errs.ErrVcs, raw.OID, err)
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return fmt.Errorf("%w: parent tree of %s: %v", errs.ErrVcs, raw.OID, err)
	}
	tree, err := c.Tree()
	if err != nil {
		return fmt.Errorf("%w: tree of %s: %v", errs.ErrVcs, raw.OID, err)
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return fmt.Errorf("%w: diff %s: %v", errs.ErrVcs, raw.OID, err)
	}

	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			return fmt.Errorf("%w: change action in %s: %v", errs.ErrVcs, raw.OID, err)
		}

		path := change.To.Name
		fd := store.FileDiff{}
		switch action {
		case merkletrie.Insert:
			fd.Added = true
		case merkletrie.Delete:
			path = change.From.Name
			fd.Deleted = true
		}

		patch, err := change.Patch()
		if err == nil && patch != nil {
			fd.Diff = patch.String()
		}

		raw.Files = append(raw.Files, path)
		raw.Diffs[path] = fd
	}
	return nil
}
