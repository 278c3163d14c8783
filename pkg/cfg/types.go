// Package cfg partitions a statement sequence into basic blocks and builds the
// control flow graph (CFG) over them.
// It provides types for blocks, edges, and the complete graph together with
// the metrics derived from it.
package cfg

import (
	"fmt"

	"github.com/l3aro/go-blockflow/pkg/source"
)

// Keyword identifies a recognized control keyword.
type Keyword int

const (
	KeywordNone  Keyword = iota // Not a control statement
	KeywordIf                   // Conditional branch
	KeywordWhile                // While loop
	KeywordFor                  // For loop
)

func (k Keyword) String() string {
	switch k {
	case KeywordIf:
		return "if"
	case KeywordWhile:
		return "while"
	case KeywordFor:
		return "for"
	default:
		return ""
	}
}

// EdgeKind represents the kind of a CFG edge.
type EdgeKind string

const (
	EdgeKindFallthrough EdgeKind = "fallthrough" // Sequential flow into the next block
	EdgeKindBranch      EdgeKind = "branch"      // Taken path of a control statement
)

// EdgePolicy decides what happens to parallel edges between the same blocks.
type EdgePolicy string

const (
	// EdgePolicyDedupe keeps at most one edge per (From, To) pair.
	EdgePolicyDedupe EdgePolicy = "dedupe"
	// EdgePolicyPreserve keeps the branch edge next to the fall-through edge,
	// so both outcomes of a control block are counted.
	EdgePolicyPreserve EdgePolicy = "preserve"
)

// ParseEdgePolicy converts a configuration value into an EdgePolicy.
// An empty string selects EdgePolicyDedupe.
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch EdgePolicy(s) {
	case "", EdgePolicyDedupe:
		return EdgePolicyDedupe, nil
	case EdgePolicyPreserve:
		return EdgePolicyPreserve, nil
	default:
		return "", fmt.Errorf("invalid edge policy: %s (must be 'preserve' or 'dedupe')", s)
	}
}

// BasicBlock is a maximal straight-line run of statements starting at a leader.
type BasicBlock struct {
	ID        string        `json:"id" yaml:"id" msgpack:"id"`                   // Block label, "B<leader>"
	Leader    int           `json:"leader" yaml:"leader" msgpack:"leader"`       // Line number of the first statement
	StartLine int           `json:"start_line" yaml:"start_line" msgpack:"start"` // Same as Leader
	EndLine   int           `json:"end_line" yaml:"end_line" msgpack:"end"`       // Last line in the block
	Lines     []source.Line `json:"lines" yaml:"lines" msgpack:"lines"`          // Statements in order
}

// Statements returns the text of each statement in the block.
func (b BasicBlock) Statements() []string {
	return source.Texts(b.Lines)
}

// Keyword returns the first control keyword found in the block, if any.
func (b BasicBlock) Keyword() Keyword {
	for _, l := range b.Lines {
		if k := MatchKeyword(l.Text); k != KeywordNone {
			return k
		}
	}
	return KeywordNone
}

// BlockID returns the label of the block that starts at leader.
func BlockID(leader int) string {
	return fmt.Sprintf("B%d", leader)
}

// Edge is a directed control transfer between two blocks.
type Edge struct {
	From string   `json:"from" yaml:"from" msgpack:"from"`
	To   string   `json:"to" yaml:"to" msgpack:"to"`
	Kind EdgeKind `json:"kind" yaml:"kind" msgpack:"kind"`
}

// Graph is the control flow graph over a block sequence.
// It is built once by Build and treated as read-only afterwards.
type Graph struct {
	Nodes  []string   `json:"nodes" yaml:"nodes" msgpack:"nodes"`    // Block IDs in block order
	Edges  []Edge     `json:"edges" yaml:"edges" msgpack:"edges"`    // Edges in construction order
	Entry  string     `json:"entry,omitempty" yaml:"entry,omitempty" msgpack:"entry"`
	Policy EdgePolicy `json:"edge_policy" yaml:"edge_policy" msgpack:"policy"`
}

// Metrics summarizes the shape of a Graph.
type Metrics struct {
	Nodes                int  `json:"nodes" yaml:"nodes" msgpack:"nodes"`
	Edges                int  `json:"edges" yaml:"edges" msgpack:"edges"`
	CyclomaticComplexity int  `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity" msgpack:"cc"`
	Components           int  `json:"components" yaml:"components" msgpack:"components"` // Weakly connected components
	Acyclic              bool `json:"acyclic" yaml:"acyclic" msgpack:"acyclic"`
}
