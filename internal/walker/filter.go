package walker

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are directory names never searched for knowledge documents.
var DefaultExcludes = []string{
	".git",
	"node_modules",
	"vendor",
	".infrachat",
	".terraform",
	"dist",
	"build",
	".venv",
	".idea",
	".vscode",
}

// excludedDir reports whether any directory component of relPath is a
// default exclusion.
func excludedDir(relPath string) bool {
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	for _, part := range parts[:len(parts)-1] {
		for _, excl := range DefaultExcludes {
			if strings.EqualFold(part, excl) {
				return true
			}
		}
	}
	return false
}

// MatchesAny reports whether relPath, or its base name, matches any of the
// doublestar patterns.
func MatchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	base := filepath.Base(normalized)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
