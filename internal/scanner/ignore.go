package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnorePattern is one gitignore-style line of an ignore file.
//
// Globs follow path.Match, so "**" behaves like "*" within one segment.
// A pattern containing a slash is anchored at the scan root; otherwise it
// matches a name at any depth.
type IgnorePattern struct {
	glob     string
	negate   bool // "!pattern" re-includes a path
	dirOnly  bool // "pattern/" matches directories only
	anchored bool
}

// ParseIgnorePattern parses a single line. It reports false for blank lines
// and comments.
func ParseIgnorePattern(line string) (IgnorePattern, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return IgnorePattern{}, false
	}

	var p IgnorePattern
	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	}
	if strings.Contains(line, "/") {
		p.anchored = true
	}
	p.glob = strings.ReplaceAll(line, "**", "*")

	return p, p.glob != ""
}

// Match reports whether rel, a slash separated path relative to the scan
// root, is matched by the pattern. A pattern naming a directory also covers
// everything below it.
func (p IgnorePattern) Match(rel string, isDir bool) bool {
	segs := strings.Split(filepath.ToSlash(rel), "/")
	for i := 1; i <= len(segs); i++ {
		dir := i < len(segs) || isDir
		if p.dirOnly && !dir {
			continue
		}
		if p.matchPrefix(segs[:i]) {
			return true
		}
	}
	return false
}

func (p IgnorePattern) matchPrefix(segs []string) bool {
	target := segs[len(segs)-1]
	if p.anchored {
		target = strings.Join(segs, "/")
	}
	ok, err := path.Match(p.glob, target)
	return err == nil && ok
}

// IsNegation returns true if this pattern is a negation pattern.
func (p IgnorePattern) IsNegation() bool {
	return p.negate
}

// Ignored applies patterns in order; the last match wins.
func Ignored(patterns []IgnorePattern, rel string, isDir bool) bool {
	ignored := false
	for _, p := range patterns {
		if p.Match(rel, isDir) {
			ignored = !p.negate
		}
	}
	return ignored
}

// LoadIgnoreFile reads the patterns of an ignore file. A missing file yields
// no patterns.
func LoadIgnoreFile(name string) ([]IgnorePattern, error) {
	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []IgnorePattern
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if p, ok := ParseIgnorePattern(sc.Text()); ok {
			patterns = append(patterns, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
