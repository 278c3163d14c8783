// Package scanner finds program files under a directory for batch analysis.
// It respects a .bfqignore file with gitignore-style patterns at the root.
package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// FileInfo represents information about a discovered file.
type FileInfo struct {
	Path     string // Relative path from root, slash separated
	FullPath string // Absolute path
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	DefaultExcludes []string // Directory names never descended into
	IgnoreFileName  string   // Name of the ignore file (default: .bfqignore)
	Extensions      []string // Accepted extensions including the dot; empty accepts all
	MaxFileSize     int64    // Larger files are skipped; 0 means no limit
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".bfqignore",
		DefaultExcludes: []string{
			"node_modules",
			".git",
			"__pycache__",
			".venv",
			"venv",
			"dist",
			"build",
			"vendor",
			"target",
			"bin",
			"obj",
		},
		Extensions: []string{
			".c", ".h", ".cc", ".cpp", ".java", ".js", ".ts", ".go", ".py", ".txt",
		},
		MaxFileSize: 4 << 20,
	}
}

// Scanner provides file tree scanning capabilities.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// Scan walks root in lexical order and returns the accepted regular files.
// Unreadable entries are skipped.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	var patterns []IgnorePattern
	if s.opts.IgnoreFileName != "" {
		patterns, err = LoadIgnoreFile(filepath.Join(absRoot, s.opts.IgnoreFileName))
		if err != nil {
			return nil, fmt.Errorf("loading ignore patterns: %w", err)
		}
	}

	var files []FileInfo
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if s.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.isDefaultExcluded(d.Name()) || Ignored(patterns, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks and special files are not followed.
		if !d.Type().IsRegular() || Ignored(patterns, rel, false) || !s.accepts(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if s.opts.MaxFileSize > 0 && info.Size() > s.opts.MaxFileSize {
			return nil
		}

		files = append(files, FileInfo{
			Path:     rel,
			FullPath: path,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return files, nil
}

// isDefaultExcluded checks if the name matches default exclusion patterns.
func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// accepts checks the extension filter.
func (s *Scanner) accepts(path string) bool {
	if len(s.opts.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range s.opts.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
