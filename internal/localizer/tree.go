package localizer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// excludedDirs are never descended into when rendering the project tree.
var excludedDirs = map[string]bool{
	".git":         true,
	".venv":        true,
	"node_modules": true,
	"__pycache__":  true,
	"env":          true,
	"virtualenv":   true,
	"lib64":        true,
}

// TreeView renders the directory under root as an indented textual tree,
// skipping excluded directories and all dot-prefixed entries. Entries are
// sorted so the rendering is stable across runs.
func TreeView(root string) (string, error) {
	var b strings.Builder
	b.WriteString(filepath.Base(root) + "/\n")
	if err := renderDir(&b, root, 1); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderDir(b *strings.Builder, dir string, depth int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			if excludedDirs[name] {
				continue
			}
			b.WriteString(indent + name + "/\n")
			if err := renderDir(b, filepath.Join(dir, name), depth+1); err != nil {
				return err
			}
			continue
		}
		b.WriteString(indent + name + "\n")
	}
	return nil
}
