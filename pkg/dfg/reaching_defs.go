package dfg

import (
	"container/list"

	"github.com/l3aro/go-blockflow/pkg/cfg"
)

// Solver computes reaching definitions over a block sequence.
//
// gen[B] holds the definitions made in B. kill[B] holds every definition, in
// any block, of a variable B redefines, minus gen[B]. The solver iterates
// in[B] = U out[P] over predecessors P and out[B] = gen[B] U (in[B] - kill[B])
// until nothing changes. Sets only grow and are bounded by the number of
// definitions, so iteration always terminates.
type Solver struct {
	arena *Arena
	model PredecessorModel
	// order lists block IDs in block order
	order []string
	// preds maps block ID to the IDs of its predecessor blocks
	preds map[string][]string
	// succs is the inverse of preds, used by the worklist
	succs map[string][]string
	gen   map[string]DefSet
	kill  map[string]DefSet
}

// NewSolver prepares a solver using the predecessors of graph. With a nil
// graph the linear model is used instead.
func NewSolver(blocks []cfg.BasicBlock, arena *Arena, graph *cfg.Graph) *Solver {
	if graph == nil {
		return NewSolverWithPredecessors(blocks, arena, LinearPredecessors(blocks), PredecessorsLinear)
	}
	return NewSolverWithPredecessors(blocks, arena, graph.Predecessors(), PredecessorsCFG)
}

// NewSolverWithPredecessors prepares a solver over an explicit predecessor
// relation. Blocks missing from preds have no predecessors.
func NewSolverWithPredecessors(blocks []cfg.BasicBlock, arena *Arena, preds map[string][]string, model PredecessorModel) *Solver {
	if arena == nil {
		arena = ExtractDefinitions(blocks)
	}

	s := &Solver{
		arena: arena,
		model: model,
		order: make([]string, 0, len(blocks)),
		preds: make(map[string][]string, len(blocks)),
		succs: make(map[string][]string, len(blocks)),
		gen:   make(map[string]DefSet, len(blocks)),
		kill:  make(map[string]DefSet, len(blocks)),
	}

	for _, b := range blocks {
		s.order = append(s.order, b.ID)
		s.preds[b.ID] = preds[b.ID]
	}
	for _, id := range s.order {
		for _, p := range s.preds[id] {
			s.succs[p] = append(s.succs[p], id)
		}
	}

	s.computeGenKill()
	return s
}

// LinearPredecessors gives every block its immediately preceding block as
// the only predecessor.
func LinearPredecessors(blocks []cfg.BasicBlock) map[string][]string {
	preds := make(map[string][]string, len(blocks))
	for i, b := range blocks {
		if i == 0 {
			preds[b.ID] = nil
			continue
		}
		preds[b.ID] = []string{blocks[i-1].ID}
	}
	return preds
}

// computeGenKill builds gen and kill sets from the arena indexes.
func (s *Solver) computeGenKill() {
	for _, id := range s.order {
		gen := NewDefSet(s.arena.OfBlock(id)...)
		kill := make(DefSet)

		for defID := range gen {
			d, _ := s.arena.Get(defID)
			for _, other := range s.arena.OfVar(d.Var) {
				if !gen.Has(other) {
					kill.Add(other)
				}
			}
		}

		s.gen[id] = gen
		s.kill[id] = kill
	}
}

// Gen returns a copy of gen[block].
func (s *Solver) Gen(block string) DefSet {
	return s.gen[block].Clone()
}

// Kill returns a copy of kill[block].
func (s *Solver) Kill(block string) DefSet {
	return s.kill[block].Clone()
}

// NewState returns empty in and out sets for every block.
func (s *Solver) NewState() (in, out map[string]DefSet) {
	in = make(map[string]DefSet, len(s.order))
	out = make(map[string]DefSet, len(s.order))
	for _, id := range s.order {
		in[id] = make(DefSet)
		out[id] = make(DefSet)
	}
	return in, out
}

// Pass recomputes in and out for every block once, in block order, and
// reports whether any set changed.
func (s *Solver) Pass(in, out map[string]DefSet) bool {
	changed := false
	for _, id := range s.order {
		newIn := s.unionPreds(out, s.preds[id])
		newOut := s.computeOut(newIn, id)
		if !newIn.Equal(in[id]) || !newOut.Equal(out[id]) {
			in[id] = newIn
			out[id] = newOut
			changed = true
		}
	}
	return changed
}

// Solve iterates full passes until a pass changes nothing.
func (s *Solver) Solve() *Table {
	in, out := s.NewState()

	iterations := 0
	for {
		iterations++
		if !s.Pass(in, out) {
			break
		}
	}

	return s.table(in, out, StrategyPasses, iterations)
}

// SolveWorklist reaches the same fixed point as Solve, revisiting only the
// successors of blocks whose out set changed. Iterations counts block visits.
func (s *Solver) SolveWorklist() *Table {
	in, out := s.NewState()

	worklist := list.New()
	queued := make(map[string]bool, len(s.order))
	for _, id := range s.order {
		worklist.PushBack(id)
		queued[id] = true
	}

	visits := 0
	for worklist.Len() > 0 {
		blockID := worklist.Remove(worklist.Front()).(string)
		queued[blockID] = false
		visits++

		oldOut := out[blockID]

		// in[block] = union of out[pred] for all predecessors
		in[blockID] = s.unionPreds(out, s.preds[blockID])

		// out[block] = gen[block] U (in[block] - kill[block])
		out[blockID] = s.computeOut(in[blockID], blockID)

		if !oldOut.Equal(out[blockID]) {
			for _, succ := range s.succs[blockID] {
				if !queued[succ] {
					worklist.PushBack(succ)
					queued[succ] = true
				}
			}
		}
	}

	return s.table(in, out, StrategyWorklist, visits)
}

// Run solves with the given strategy. An unknown strategy falls back to
// full passes.
func (s *Solver) Run(strategy Strategy) *Table {
	if strategy == StrategyWorklist {
		return s.SolveWorklist()
	}
	return s.Solve()
}

// unionPreds computes the union of out sets for all predecessors.
func (s *Solver) unionPreds(out map[string]DefSet, preds []string) DefSet {
	result := make(DefSet)
	for _, p := range preds {
		for defID := range out[p] {
			result.Add(defID)
		}
	}
	return result
}

// computeOut computes out[block] = gen[block] U (in[block] - kill[block]).
func (s *Solver) computeOut(inSet DefSet, blockID string) DefSet {
	return s.gen[blockID].Union(inSet.Minus(s.kill[blockID]))
}

func (s *Solver) table(in, out map[string]DefSet, strategy Strategy, iterations int) *Table {
	t := &Table{
		Blocks:       make([]BlockFlow, 0, len(s.order)),
		Definitions:  s.arena.Definitions(),
		Predecessors: s.model,
		Strategy:     strategy,
		Iterations:   iterations,
	}
	for _, id := range s.order {
		t.Blocks = append(t.Blocks, BlockFlow{
			Block: id,
			Gen:   s.gen[id].Clone(),
			Kill:  s.kill[id].Clone(),
			In:    in[id],
			Out:   out[id],
		})
	}
	return t
}

// ReachingDefinitions extracts definitions from blocks and solves reaching
// definitions with the chosen predecessor model and strategy. graph is only
// consulted for PredecessorsCFG.
func ReachingDefinitions(blocks []cfg.BasicBlock, graph *cfg.Graph, model PredecessorModel, strategy Strategy) *Table {
	arena := ExtractDefinitions(blocks)
	if model == PredecessorsLinear || graph == nil {
		return NewSolverWithPredecessors(blocks, arena, LinearPredecessors(blocks), PredecessorsLinear).Run(strategy)
	}
	return NewSolverWithPredecessors(blocks, arena, graph.Predecessors(), PredecessorsCFG).Run(strategy)
}
