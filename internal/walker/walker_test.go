package walker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTree creates files (relative path -> content) under a temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func relPaths(files []File) string {
	var out []string
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return strings.Join(out, ",")
}

func TestWalkIncludePatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md":                   "# Readme",
		"runbooks/db/failover.md":     "# Failover",
		"runbooks/notes.txt":          "plain",
		"node_modules/pkg/README.md":  "# vendored",
		".terraform/modules/x/doc.md": "# cache",
	})

	files, err := Walk(Config{RootDir: root, Include: []string{"**/*.md"}})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := relPaths(files); got != "README.md,runbooks/db/failover.md" {
		t.Errorf("files = %s", got)
	}
	for _, f := range files {
		if len(f.ContentHash) != 64 {
			t.Errorf("%s: bad hash %q", f.RelPath, f.ContentHash)
		}
	}
}

func TestWalkOverlappingPatternsDeduplicate(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": "a", "b.markdown": "b"})
	files, err := Walk(Config{RootDir: root, Include: []string{"**/*.md", "*.md", "**/*.markdown"}})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := relPaths(files); got != "a.md,b.markdown" {
		t.Errorf("files = %s", got)
	}
}

func TestWalkExcludesAndGitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":     "drafts/\n# comment\nsecret.md\n",
		"keep.md":        "k",
		"drafts/wip.md":  "w",
		"team/secret.md": "s",
		"archive/old.md": "o",
	})
	files, err := Walk(Config{RootDir: root, Include: []string{"**/*.md"}, Exclude: []string{"archive/**"}})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := relPaths(files); got != "keep.md" {
		t.Errorf("files = %s", got)
	}
}

func TestWalkSkipsBinaryAndLarge(t *testing.T) {
	root := writeTree(t, map[string]string{
		"bin.md":   "abc\x00def",
		"big.md":   strings.Repeat("x", 100),
		"small.md": "ok",
	})
	files, err := Walk(Config{RootDir: root, Include: []string{"*.md"}, MaxFileSize: 50})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := relPaths(files); got != "small.md" {
		t.Errorf("files = %s", got)
	}
}

func TestWalkErrors(t *testing.T) {
	if _, err := Walk(Config{RootDir: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("expected error for missing root")
	}
	root := writeTree(t, map[string]string{"a.md": "a"})
	if _, err := Walk(Config{RootDir: root, Include: []string{"[unterminated"}}); err == nil {
		t.Error("expected error for bad pattern")
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"docs/a.md", []string{"**/*.md"}, true},
		{"docs/a.md", []string{"*.md"}, true},
		{"docs/a.txt", []string{"**/*.md"}, false},
		{"archive/2020/a.md", []string{"archive/**"}, true},
		{"a.md", nil, false},
	}
	for _, tt := range tests {
		if got := MatchesAny(tt.path, tt.patterns); got != tt.want {
			t.Errorf("MatchesAny(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
		}
	}
}
