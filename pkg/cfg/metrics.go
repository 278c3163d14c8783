package cfg

import (
	"github.com/yourbasic/graph"
)

// ComputeMetrics returns node and edge counts and the cyclomatic complexity
// E - N + 2 of g. Parallel edges count individually.
//
// The formula assumes a single connected component; Components and Acyclic
// are reported so callers can tell when that assumption does not hold. An
// empty graph yields a complexity of 2.
func ComputeMetrics(g *Graph) Metrics {
	if g == nil {
		return Metrics{CyclomaticComplexity: 2, Acyclic: true}
	}

	n, e := len(g.Nodes), len(g.Edges)
	m := Metrics{
		Nodes:                n,
		Edges:                e,
		CyclomaticComplexity: e - n + 2,
	}

	directed := graph.New(n)
	undirected := graph.New(n)
	for _, edge := range g.Edges {
		v, w := g.indexOf(edge.From), g.indexOf(edge.To)
		if v < 0 || w < 0 {
			continue
		}
		directed.Add(v, w)
		undirected.AddBoth(v, w)
	}

	m.Components = len(graph.Components(undirected))
	m.Acyclic = graph.Acyclic(directed)
	return m
}
