// Package source loads program text as a sequence of normalized statement lines.
// Each kept line is trimmed and numbered from 1; blank lines are dropped and do not
// consume a number.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single statement line read by the scanner.
const maxLineSize = 1024 * 1024

// Line is a single normalized source statement.
type Line struct {
	Number int    `json:"number" yaml:"number" msgpack:"number"` // 1-based position among kept lines
	Text   string `json:"text" yaml:"text" msgpack:"text"`       // Statement text without surrounding whitespace
}

// Load reads statements from r, one per line.
func Load(r io.Reader) ([]Line, error) {
	var lines []Line

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		lines = append(lines, Line{Number: len(lines) + 1, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	return lines, nil
}

// LoadString is Load over an in-memory buffer.
func LoadString(s string) []Line {
	return FromStrings(strings.Split(s, "\n"))
}

// LoadFile reads the statements of the file at path.
func LoadFile(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source %s: %w", path, err)
	}
	defer f.Close()

	lines, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return lines, nil
}

// FromStrings normalizes already split statements.
func FromStrings(texts []string) []Line {
	var lines []Line
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		lines = append(lines, Line{Number: len(lines) + 1, Text: t})
	}
	return lines
}

// Texts returns the statement text of each line in order.
func Texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
