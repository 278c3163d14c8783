// Package dfg defines data structures for reaching definitions analysis.
// It provides types for assignment definitions, definition sets, and the
// per-block dataflow table.
package dfg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Definition is a single assignment occurrence.
type Definition struct {
	ID        int    `json:"id" yaml:"id" msgpack:"id"`                      // Sequential, starting at 1
	Var       string `json:"var" yaml:"var" msgpack:"var"`                   // Assigned variable
	Block     string `json:"block" yaml:"block" msgpack:"block"`             // Owning block ID
	Line      int    `json:"line" yaml:"line" msgpack:"line"`                // Source line number
	Statement string `json:"statement" yaml:"statement" msgpack:"statement"` // Statement text
}

// Label returns the printable identifier "D<id>".
func (d Definition) Label() string {
	return DefLabel(d.ID)
}

// String renders the definition the way the dataflow table lists it.
func (d Definition) String() string {
	return fmt.Sprintf("%s (in block %s)", d.Var, d.Block)
}

// DefLabel formats a definition ID as "D<id>".
func DefLabel(id int) string {
	return "D" + strconv.Itoa(id)
}

// ParseDefLabel parses a "D<id>" label.
func ParseDefLabel(label string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(label, "D"))
	if err != nil || !strings.HasPrefix(label, "D") || id < 1 {
		return 0, fmt.Errorf("invalid definition label: %q", label)
	}
	return id, nil
}

// DefSet is a set of definition IDs.
type DefSet map[int]struct{}

// NewDefSet returns a set holding ids.
func NewDefSet(ids ...int) DefSet {
	s := make(DefSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into s.
func (s DefSet) Add(id int) {
	s[id] = struct{}{}
}

// Has reports whether id is in s.
func (s DefSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set with the members of s and o.
func (s DefSet) Union(o DefSet) DefSet {
	out := make(DefSet, len(s)+len(o))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range o {
		out[id] = struct{}{}
	}
	return out
}

// Minus returns a new set with the members of s that are not in o.
func (s DefSet) Minus(o DefSet) DefSet {
	out := make(DefSet, len(s))
	for id := range s {
		if !o.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Intersect returns a new set with the members common to s and o.
func (s DefSet) Intersect(o DefSet) DefSet {
	out := make(DefSet)
	for id := range s {
		if o.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Equal reports whether s and o hold the same IDs.
func (s DefSet) Equal(o DefSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

// Clone returns a copy of s.
func (s DefSet) Clone() DefSet {
	return maps.Clone(s)
}

// Sorted returns the IDs in ascending order.
func (s DefSet) Sorted() []int {
	ids := maps.Keys(s)
	slices.Sort(ids)
	return ids
}

// Labels returns the "D<id>" labels in ascending ID order.
func (s DefSet) Labels() []string {
	return lo.Map(s.Sorted(), func(id int, _ int) string { return DefLabel(id) })
}

// String renders s as "{D1, D2}".
func (s DefSet) String() string {
	return "{" + strings.Join(s.Labels(), ", ") + "}"
}

func (s DefSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Labels())
}

func (s *DefSet) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	return s.setLabels(labels)
}

func (s DefSet) MarshalYAML() (interface{}, error) {
	return s.Labels(), nil
}

func (s *DefSet) UnmarshalYAML(node *yaml.Node) error {
	var labels []string
	if err := node.Decode(&labels); err != nil {
		return err
	}
	return s.setLabels(labels)
}

func (s DefSet) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(s.Sorted())
}

func (s *DefSet) DecodeMsgpack(dec *msgpack.Decoder) error {
	var ids []int
	if err := dec.Decode(&ids); err != nil {
		return err
	}
	*s = NewDefSet(ids...)
	return nil
}

func (s *DefSet) setLabels(labels []string) error {
	set := make(DefSet, len(labels))
	for _, l := range labels {
		id, err := ParseDefLabel(l)
		if err != nil {
			return err
		}
		set.Add(id)
	}
	*s = set
	return nil
}

// PredecessorModel selects how block predecessors are derived.
type PredecessorModel string

const (
	// PredecessorsCFG takes predecessors from the CFG edges.
	PredecessorsCFG PredecessorModel = "cfg"
	// PredecessorsLinear treats only the immediately preceding block as a
	// predecessor.
	PredecessorsLinear PredecessorModel = "linear"
)

// ParsePredecessorModel converts a configuration value into a model.
// An empty string selects PredecessorsCFG.
func ParsePredecessorModel(s string) (PredecessorModel, error) {
	switch PredecessorModel(s) {
	case "", PredecessorsCFG:
		return PredecessorsCFG, nil
	case PredecessorsLinear:
		return PredecessorsLinear, nil
	default:
		return "", fmt.Errorf("invalid predecessor model: %s (must be 'cfg' or 'linear')", s)
	}
}

// Strategy selects how the solver walks the blocks to the fixed point.
type Strategy string

const (
	// StrategyPasses recomputes every block in block order until a full pass
	// changes nothing.
	StrategyPasses Strategy = "passes"
	// StrategyWorklist revisits only the successors of blocks whose out set
	// changed.
	StrategyWorklist Strategy = "worklist"
)

// ParseStrategy converts a configuration value into a Strategy.
// An empty string selects StrategyPasses.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyPasses:
		return StrategyPasses, nil
	case StrategyWorklist:
		return StrategyWorklist, nil
	default:
		return "", fmt.Errorf("invalid solver strategy: %s (must be 'passes' or 'worklist')", s)
	}
}

// BlockFlow holds the dataflow sets of one block.
type BlockFlow struct {
	Block string `json:"block" yaml:"block" msgpack:"block"`
	Gen   DefSet `json:"gen" yaml:"gen" msgpack:"gen"`
	Kill  DefSet `json:"kill" yaml:"kill" msgpack:"kill"`
	In    DefSet `json:"in" yaml:"in" msgpack:"in"`
	Out   DefSet `json:"out" yaml:"out" msgpack:"out"`
}

// Table is the converged reaching definitions result.
type Table struct {
	Blocks       []BlockFlow      `json:"blocks" yaml:"blocks" msgpack:"blocks"`                // In block order
	Definitions  []Definition     `json:"definitions" yaml:"definitions" msgpack:"definitions"` // In ID order
	Predecessors PredecessorModel `json:"predecessors" yaml:"predecessors" msgpack:"predecessors"`
	Strategy     Strategy         `json:"strategy" yaml:"strategy" msgpack:"strategy"`
	Iterations   int              `json:"iterations" yaml:"iterations" msgpack:"iterations"` // Passes, or block visits for StrategyWorklist
}

// Flow returns the sets of the named block.
func (t *Table) Flow(block string) (BlockFlow, bool) {
	for _, bf := range t.Blocks {
		if bf.Block == block {
			return bf, true
		}
	}
	return BlockFlow{}, false
}

// DefinitionMap maps each "D<id>" label to its definition.
func (t *Table) DefinitionMap() map[string]Definition {
	return lo.Associate(t.Definitions, func(d Definition) (string, Definition) {
		return d.Label(), d
	})
}
