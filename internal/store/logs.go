package store

import (
	"fmt"
	"os"
	"time"
)

// AppendErrorLog appends a timestamped line to the project's error log.
func (s *Store) AppendErrorLog(project, message string) error {
	if _, err := s.ProjectDir(project); err != nil {
		return err
	}
	f, err := os.OpenFile(s.projectFile(project, errorLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s %s\n", time.Now().UTC().Format(time.RFC3339), message)
	return err
}

// ReadErrorLog returns the project's error log contents, or "" if absent.
func (s *Store) ReadErrorLog(project string) (string, error) {
	data, err := os.ReadFile(s.projectFile(project, errorLogFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read error log: %w", err)
	}
	return string(data), nil
}
