package ignore

import (
	"reflect"
	"testing"
)

func TestMatchBasename(t *testing.T) {
	m := New([]string{"*.env"})
	cases := []struct {
		path string
		want bool
	}{
		{"secret.env", true},
		{"config/prod.env", true},
		{"main.go", false},
		{"env.go", false},
	}
	for _, tc := range cases {
		if got := m.Match(tc.path); got != tc.want {
			t.Errorf("Match(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestMatchDirectoryComponent(t *testing.T) {
	m := New([]string{"node_modules"})
	if !m.Match("node_modules/pkg/index.js") {
		t.Error("pattern should match a path component")
	}
	if m.Match("src/index.js") {
		t.Error("unrelated path should not match")
	}
}

func TestMatchSlashPattern(t *testing.T) {
	m := New([]string{"vendor/**"})
	if !m.Match("vendor/lib/a.go") {
		t.Error("glob with slash should match nested path")
	}
	if m.Match("lib/vendor.go") {
		t.Error("slash pattern must not match basenames")
	}
}

func TestFilter(t *testing.T) {
	m := New([]string{"*.min.js", "dist/**"})
	got := m.Filter([]string{"app.js", "app.min.js", "dist/bundle.js", "src/a.js"})
	want := []string{"app.js", "src/a.js"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNilMatcherMatchesNothing(t *testing.T) {
	var m *Matcher
	if m.Match("anything") {
		t.Error("nil matcher should match nothing")
	}
	paths := []string{"a", "b"}
	if got := m.Filter(paths); !reflect.DeepEqual(got, paths) {
		t.Errorf("nil matcher filter should pass through: %v", got)
	}
}

func TestBlankPatternsDropped(t *testing.T) {
	m := New([]string{"", "  ", "*.log"})
	if m.Match("main.go") {
		t.Error("blank patterns must not match everything")
	}
	if !m.Match("debug.log") {
		t.Error("real pattern should still apply")
	}
}
