package localizer

import (
	"fmt"
	"strings"
)

func treePrompt(tree, problem string) string {
	return fmt.Sprintf(`You are localizing a problem to files in a repository.

Problem statement:
%s

Repository structure:
%s

List up to 5 file paths, relative to the repository root, most relevant to the problem. Wrap the list in triple backticks, one path per line. If none are relevant, reply exactly: %s`, problem, tree, noRelevantFiles)
}

func refinePrompt(problem string, candidates []string, summaries map[string]string) string {
	var b strings.Builder
	for _, path := range candidates {
		fmt.Fprintf(&b, "%s:\n%s\n\n", path, summaries[path])
	}
	return fmt.Sprintf(`You are refining a file localization for a problem.

Problem statement:
%s

Already-selected files and their summaries:
%s
List any additional relevant file paths, relative to the repository root, wrapped in triple backticks, one per line. If there are none, reply exactly: %s`, problem, b.String(), noAdditionalFiles)
}
