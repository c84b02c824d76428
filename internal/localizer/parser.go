package localizer

import (
	"strings"
)

// Sentinel responses the model is instructed to use when it has nothing to
// offer. Matching is case-insensitive and punctuation-tolerant.
const (
	noRelevantFiles   = "No relevant files found."
	noAdditionalFiles = "No additional relevant files."
)

// ParsePaths extracts a list of repository-relative file paths from an LLM
// response. Content inside the first triple-backtick fence is preferred;
// responses without a fence are parsed whole. Path separators are normalized
// to forward slashes and a leading "./" is stripped. Either sentinel
// response yields an empty list.
func ParsePaths(resp string) []string {
	body := strings.TrimSpace(resp)
	if body == "" || isSentinel(body) {
		return nil
	}

	if fenced, ok := extractFence(body); ok {
		body = fenced
	}

	var paths []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		line = strings.Trim(line, "`")
		if line == "" || isSentinel(line) {
			continue
		}
		line = strings.ReplaceAll(line, "\\", "/")
		line = strings.TrimPrefix(line, "./")
		if strings.ContainsAny(line, " \t") && !strings.Contains(line, "/") && !strings.Contains(line, ".") {
			// Prose line, not a path.
			continue
		}
		paths = append(paths, line)
	}
	return paths
}

func isSentinel(s string) bool {
	s = strings.ToLower(strings.Trim(s, " .\"'"))
	return s == strings.ToLower(strings.TrimSuffix(noRelevantFiles, ".")) ||
		s == strings.ToLower(strings.TrimSuffix(noAdditionalFiles, "."))
}

// extractFence returns the content of the first triple-backtick block.
func extractFence(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]
	// Drop an optional language tag on the opening fence line.
	if nl := strings.Index(rest, "\n"); nl >= 0 && !strings.Contains(rest[:nl], "/") {
		rest = rest[nl+1:]
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest), true
}
