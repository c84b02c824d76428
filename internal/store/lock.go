package store

import (
	"fmt"
	"os"
	"time"

	"github.com/ziadkadry99/gitscout/internal/errs"
)

// LockTTL is the age after which a lock file is treated as released.
const LockTTL = 2 * time.Hour

// AcquireLock creates the project's lock file. If the lock is already held
// and younger than LockTTL, it fails with a LockedError carrying the lock's
// age. A stale lock is replaced.
func (s *Store) AcquireLock(project string) error {
	if _, err := s.ProjectDir(project); err != nil {
		return err
	}
	path := s.projectFile(project, lockFile)

	if info, err := os.Stat(path); err == nil {
		elapsed := time.Since(info.ModTime())
		if elapsed < LockTTL {
			return &errs.LockedError{Elapsed: elapsed}
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale lock: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			// Lost the race to another acquirer.
			return &errs.LockedError{Elapsed: 0}
		}
		return fmt.Errorf("create lock: %w", err)
	}
	return f.Close()
}

// ReleaseLock removes the project's lock file. Releasing an absent lock is
// not an error.
func (s *Store) ReleaseLock(project string) error {
	err := os.Remove(s.projectFile(project, lockFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// LockInfo reports whether the lock file is present and for how long.
func (s *Store) LockInfo(project string) (present bool, elapsed time.Duration) {
	info, err := os.Stat(s.projectFile(project, lockFile))
	if err != nil {
		return false, 0
	}
	return true, time.Since(info.ModTime())
}
