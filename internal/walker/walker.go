// Package walker discovers knowledge documents under a directory using
// doublestar include globs.
package walker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFileSize is the largest document read (1 MB).
const DefaultMaxFileSize int64 = 1 << 20

// File is one discovered document.
type File struct {
	Path        string // Absolute path on disk.
	RelPath     string // Slash-separated path relative to the root.
	Size        int64
	ContentHash string // SHA-256 hex digest of the content.
}

// Config controls Walk.
type Config struct {
	RootDir     string
	Include     []string // doublestar patterns relative to RootDir; empty matches every file.
	Exclude     []string
	MaxFileSize int64 // 0 uses DefaultMaxFileSize.
}

// Walk returns every regular, non-binary file under RootDir matching an
// include pattern and no exclude pattern, sorted by RelPath. Directories in
// DefaultExcludes and paths listed in the root .gitignore are skipped.
func Walk(cfg Config) ([]File, error) {
	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", root)
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	include := cfg.Include
	if len(include) == 0 {
		include = []string{"**/*"}
	}
	ignored := loadGitignore(filepath.Join(root, ".gitignore"))

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var files []File

	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern))
		if err != nil {
			return nil, fmt.Errorf("walker: bad include pattern %q: %w", pattern, err)
		}
		for _, rel := range matches {
			if seen[rel] || excludedDir(rel) || MatchesAny(rel, cfg.Exclude) || matchesGitignore(rel, ignored) {
				continue
			}
			seen[rel] = true

			path := filepath.Join(root, filepath.FromSlash(rel))
			info, err := os.Lstat(path)
			if err != nil || !info.Mode().IsRegular() || info.Size() > maxSize {
				continue
			}
			if isBinary(path) {
				continue
			}
			hash, err := hashFile(path)
			if err != nil {
				continue
			}
			files = append(files, File{Path: path, RelPath: rel, Size: info.Size(), ContentHash: hash})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// isBinary reports a NUL byte in the first 512 bytes.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// loadGitignore returns the non-empty, non-comment lines of a .gitignore.
func loadGitignore(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// matchesGitignore matches slash-free patterns against every path component
// and patterns with a slash against the whole relative path.
func matchesGitignore(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = strings.Trim(pattern, "/")
		if pattern == "" {
			continue
		}
		if strings.Contains(pattern, "/") {
			if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
				return true
			}
			continue
		}
		for _, part := range strings.Split(relPath, "/") {
			if matched, _ := filepath.Match(pattern, part); matched {
				return true
			}
		}
	}
	return false
}
