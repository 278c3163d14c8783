package cfg

import (
	"fmt"

	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

// blockNode is a CFG node as seen by the gonum graph encoders.
type blockNode struct {
	id    int64
	label string
}

func (n blockNode) ID() int64 { return n.id }

func (n blockNode) DOTID() string { return n.label }

// blockLine is a CFG edge; parallel lines share endpoints but not IDs.
type blockLine struct {
	multi.Line
	kind EdgeKind
}

func (l blockLine) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: string(l.kind)}}
}

// Multigraph converts g into a gonum directed multigraph, keeping parallel
// edges as distinct lines.
func (g *Graph) Multigraph() *multi.DirectedGraph {
	mg := multi.NewDirectedGraph()

	nodes := make(map[string]blockNode, len(g.Nodes))
	for i, id := range g.Nodes {
		n := blockNode{id: int64(i), label: id}
		nodes[id] = n
		mg.AddNode(n)
	}

	for _, e := range g.Edges {
		from, ok := nodes[e.From]
		if !ok {
			continue
		}
		to, ok := nodes[e.To]
		if !ok {
			continue
		}
		mg.SetLine(blockLine{
			Line: mg.NewLine(from, to).(multi.Line),
			kind: e.Kind,
		})
	}

	return mg
}

// MarshalDOT renders g as a Graphviz DOT digraph called name.
func MarshalDOT(g *Graph, name string) ([]byte, error) {
	if g == nil {
		g = &Graph{}
	}
	data, err := dot.MarshalMulti(g.Multigraph(), name, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling DOT: %w", err)
	}
	return data, nil
}
