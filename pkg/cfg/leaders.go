package cfg

import (
	"regexp"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/l3aro/go-blockflow/pkg/source"
)

// keywordPattern finds control keywords on word boundaries, so identifiers
// such as "forward" or "diff" are not mistaken for "for" and "if".
var keywordPattern = regexp.MustCompile(`\b(if|while|for)\b`)

// MatchKeyword returns the first control keyword appearing in text.
func MatchKeyword(text string) Keyword {
	m := keywordPattern.FindStringSubmatch(text)
	if m == nil {
		return KeywordNone
	}
	switch m[1] {
	case "if":
		return KeywordIf
	case "while":
		return KeywordWhile
	case "for":
		return KeywordFor
	}
	return KeywordNone
}

// IsBranch reports whether text contains a control keyword.
func IsBranch(text string) bool {
	return MatchKeyword(text) != KeywordNone
}

// FindLeaders returns the sorted line numbers that start a basic block.
//
// Line 1 is a leader when there is any input. A line containing a control
// keyword is a leader, and so is the line right after it. This is a token
// scan rather than a parse: a keyword inside a string literal or comment
// still counts.
func FindLeaders(lines []source.Line) []int {
	if len(lines) == 0 {
		return nil
	}

	n := len(lines)
	seen := map[int]struct{}{1: {}}
	for i, l := range lines {
		if !IsBranch(l.Text) {
			continue
		}
		seen[i+1] = struct{}{}
		if i+2 <= n {
			seen[i+2] = struct{}{}
		}
	}

	leaders := maps.Keys(seen)
	slices.Sort(leaders)
	return leaders
}
