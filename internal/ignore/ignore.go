// Package ignore filters repo-relative paths against shell-glob patterns.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher holds a set of ignore patterns with shell-glob semantics.
type Matcher struct {
	patterns []string
}

// New creates a Matcher from the given patterns. Blank patterns are dropped.
func New(patterns []string) *Matcher {
	var cleaned []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &Matcher{patterns: cleaned}
}

// Match reports whether the repo-relative path matches any ignore pattern.
// A pattern without a slash matches the basename as well as any single path
// component, mirroring fnmatch-style ignore files.
func (m *Matcher) Match(relPath string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	normalized := filepath.ToSlash(relPath)

	for _, pattern := range m.patterns {
		if ok, _ := doublestar.Match(pattern, normalized); ok {
			return true
		}
		if strings.Contains(pattern, "/") {
			continue
		}
		if ok, _ := doublestar.Match(pattern, filepath.Base(normalized)); ok {
			return true
		}
		for _, part := range strings.Split(normalized, "/") {
			if ok, _ := doublestar.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}

// Filter returns the paths that do not match any ignore pattern, preserving order.
func (m *Matcher) Filter(paths []string) []string {
	if m == nil || len(m.patterns) == 0 {
		return paths
	}
	var kept []string
	for _, p := range paths {
		if !m.Match(p) {
			kept = append(kept, p)
		}
	}
	return kept
}
