package analysis

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

var excludedDirs = map[string]struct{}{
	"node_modules": {},
	"dist":         {},
	"build":        {},
	"__pycache__":  {},
	"venv":         {},
	".git":         {},
	"coverage":     {},
	"test":         {},
	"tests":        {},
	"testdata":     {},
	"fixtures":     {},
	".next":        {},
	".cache":       {},
	"artifacts":    {},
	"vendor":       {},
	"target":       {},
}

var sourceExtensions = map[string]struct{}{
	".js":    {},
	".jsx":   {},
	".ts":    {},
	".tsx":   {},
	".py":    {},
	".java":  {},
	".go":    {},
	".rs":    {},
	".php":   {},
	".rb":    {},
	".kt":    {},
	".swift": {},
	".c":     {},
	".h":     {},
	".cpp":   {},
	".cs":    {},
}

type DiscoveryLimits struct {
	MaxFiles      int
	MaxFileBytes  int64
	MaxTotalBytes int64
}

var DefaultDiscoveryLimits = DiscoveryLimits{
	MaxFiles:      100,
	MaxFileBytes:  500_000,
	MaxTotalBytes: 10_000_000,
}

// DiscoveredFile is a candidate source file found under the workspace root.
type DiscoveredFile struct {
	Path    string
	RelPath string
	Size    int64
}

// Discover walks root depth-first in lexical order and returns source files
// within limits. Files over MaxFileBytes are skipped without counting toward
// the total. The walk stops once MaxFiles files are collected or the next
// file would push the cumulative size past MaxTotalBytes.
func Discover(root string, limits DiscoveryLimits) ([]DiscoveredFile, error) {
	var (
		files []DiscoveredFile
		total int64
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Unreadable subtrees are left out of the sample.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && isExcludedDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		// Symlinks and other special files never leave the workspace.
		if !d.Type().IsRegular() || !isSourceFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		size := info.Size()
		if limits.MaxFileBytes > 0 && size > limits.MaxFileBytes {
			return nil
		}
		if limits.MaxTotalBytes > 0 && total+size > limits.MaxTotalBytes {
			return fs.SkipAll
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}

		files = append(files, DiscoveredFile{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
			Size:    size,
		})
		total += size

		if limits.MaxFiles > 0 && len(files) >= limits.MaxFiles {
			return fs.SkipAll
		}
		if limits.MaxTotalBytes > 0 && total >= limits.MaxTotalBytes {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return files, nil
}

func isExcludedDir(name string) bool {
	_, ok := excludedDirs[name]
	return ok
}

func isSourceFile(name string) bool {
	_, ok := sourceExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
