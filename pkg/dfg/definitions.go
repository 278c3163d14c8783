package dfg

import (
	"regexp"
	"strings"

	"github.com/l3aro/go-blockflow/pkg/cfg"
)

// assignPattern matches "<identifier> =" at the start of a statement and
// captures everything after the "=".
var assignPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=(.*)$`)

// ParseAssignment returns the variable assigned by a simple "<name> = <expr>"
// statement. Comparisons such as "x == y" and statements with an empty
// expression are not assignments.
func ParseAssignment(stmt string) (string, bool) {
	m := assignPattern.FindStringSubmatch(strings.TrimSpace(stmt))
	if m == nil {
		return "", false
	}
	rhs := m[2]
	if strings.HasPrefix(rhs, "=") {
		return "", false
	}
	expr := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rhs), ";"))
	if expr == "" {
		return "", false
	}
	return m[1], true
}

// Arena owns every definition of one analysis run together with lookup
// indexes by variable and by block. It is built once by ExtractDefinitions
// and read-only afterwards.
type Arena struct {
	defs    []Definition
	byVar   map[string][]int
	byBlock map[string][]int
}

// ExtractDefinitions scans blocks in order, then lines in order, and records
// one definition per assignment statement. IDs start at 1 and increase in
// scan order.
func ExtractDefinitions(blocks []cfg.BasicBlock) *Arena {
	a := &Arena{
		byVar:   make(map[string][]int),
		byBlock: make(map[string][]int),
	}

	for _, b := range blocks {
		for _, l := range b.Lines {
			name, ok := ParseAssignment(l.Text)
			if !ok {
				continue
			}
			d := Definition{
				ID:        len(a.defs) + 1,
				Var:       name,
				Block:     b.ID,
				Line:      l.Number,
				Statement: l.Text,
			}
			a.defs = append(a.defs, d)
			a.byVar[name] = append(a.byVar[name], d.ID)
			a.byBlock[b.ID] = append(a.byBlock[b.ID], d.ID)
		}
	}

	return a
}

// Len returns the number of definitions.
func (a *Arena) Len() int {
	return len(a.defs)
}

// Definitions returns a copy of all definitions in ID order.
func (a *Arena) Definitions() []Definition {
	out := make([]Definition, len(a.defs))
	copy(out, a.defs)
	return out
}

// Get returns the definition with the given ID.
func (a *Arena) Get(id int) (Definition, bool) {
	if id < 1 || id > len(a.defs) {
		return Definition{}, false
	}
	return a.defs[id-1], true
}

// OfVar returns the IDs of every definition of name.
func (a *Arena) OfVar(name string) []int {
	return a.byVar[name]
}

// OfBlock returns the IDs of the definitions made in block, in line order.
func (a *Arena) OfBlock(block string) []int {
	return a.byBlock[block]
}
