package cfg

// Build constructs the control flow graph over blocks.
//
// Every block except the last gets a fall-through edge to the next block. A
// block containing a control keyword also gets a branch edge to the next
// block: both outcomes converge on the structurally following block, and real
// targets such as loop back edges are not resolved. Under EdgePolicyDedupe, the
// default, the branch edge collapses into the fall-through edge.
func Build(blocks []BasicBlock, policy EdgePolicy) *Graph {
	if policy == "" {
		policy = EdgePolicyDedupe
	}

	g := &Graph{
		Nodes:  make([]string, 0, len(blocks)),
		Edges:  make([]Edge, 0, len(blocks)),
		Policy: policy,
	}
	for _, b := range blocks {
		g.Nodes = append(g.Nodes, b.ID)
	}
	if len(blocks) > 0 {
		g.Entry = blocks[0].ID
	}

	seen := make(map[[2]string]struct{})
	addEdge := func(e Edge) {
		key := [2]string{e.From, e.To}
		if _, dup := seen[key]; dup && policy == EdgePolicyDedupe {
			return
		}
		seen[key] = struct{}{}
		g.Edges = append(g.Edges, e)
	}

	for i, b := range blocks {
		if i+1 >= len(blocks) {
			break
		}
		next := blocks[i+1].ID
		addEdge(Edge{From: b.ID, To: next, Kind: EdgeKindFallthrough})
		if b.Keyword() != KeywordNone {
			addEdge(Edge{From: b.ID, To: next, Kind: EdgeKindBranch})
		}
	}

	return g
}

// Predecessors maps each node to the distinct blocks with an edge into it,
// in edge order. Every node has an entry, possibly empty.
func (g *Graph) Predecessors() map[string][]string {
	return g.adjacency(func(e Edge) (string, string) { return e.To, e.From })
}

// Successors maps each node to the distinct blocks it has an edge to.
func (g *Graph) Successors() map[string][]string {
	return g.adjacency(func(e Edge) (string, string) { return e.From, e.To })
}

func (g *Graph) adjacency(pick func(Edge) (key, val string)) map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for _, id := range g.Nodes {
		adj[id] = nil
	}

	seen := make(map[[2]string]struct{})
	for _, e := range g.Edges {
		k, v := pick(e)
		if _, ok := seen[[2]string{k, v}]; ok {
			continue
		}
		seen[[2]string{k, v}] = struct{}{}
		adj[k] = append(adj[k], v)
	}
	return adj
}

// EdgePairs returns the (from, to) pair of every edge in order.
func (g *Graph) EdgePairs() [][2]string {
	pairs := make([][2]string, len(g.Edges))
	for i, e := range g.Edges {
		pairs[i] = [2]string{e.From, e.To}
	}
	return pairs
}

// indexOf returns the position of node id in g.Nodes, or -1.
func (g *Graph) indexOf(id string) int {
	for i, n := range g.Nodes {
		if n == id {
			return i
		}
	}
	return -1
}
