package model

import (
	"slices"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/graph/simple"
)

// Edge is an undirected pair of node ids
type Edge struct {
	A int64
	B int64
}

// Graph is the immutable social network a simulation runs on.
//
// Neighbor lists are materialized in ascending id order at load time, so
// every traversal over the graph is reproducible regardless of gonum's
// internal map ordering.
type Graph struct {
	g         *simple.UndirectedGraph
	ids       []int64
	neighbors map[int64][]int64
}

// LoadGraph builds a graph from a declared node set and an edge list.
//
// Every edge must reference declared nodes; self-loops and repeated node
// declarations are rejected with ErrMalformedInput. Repeated edges collapse
// into one.
func LoadGraph(nodes []int64, edges []Edge) (*Graph, error) {
	g := simple.NewUndirectedGraph()

	for _, id := range nodes {
		if g.Node(id) != nil {
			return nil, errors.Wrapf(ErrMalformedInput, "node %d declared twice", id)
		}
		g.AddNode(simple.Node(id))
	}

	for i, e := range edges {
		if g.Node(e.A) == nil || g.Node(e.B) == nil {
			return nil, errors.Wrapf(ErrMalformedInput,
				"edge %d (%d, %d) references an undeclared node", i, e.A, e.B)
		}
		if e.A == e.B {
			return nil, errors.Wrapf(ErrMalformedInput, "edge %d is a self-loop on node %d", i, e.A)
		}
		if g.HasEdgeBetween(e.A, e.B) {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(e.A), simple.Node(e.B)))
	}

	return FromUndirected(g), nil
}

// NewGraphWithNodeCount declares nodes 0..nodeCount-1 and loads the edges
func NewGraphWithNodeCount(nodeCount int, edges []Edge) (*Graph, error) {
	if nodeCount < 0 {
		return nil, errors.Wrapf(ErrMalformedInput, "negative node count %d", nodeCount)
	}
	nodes := make([]int64, nodeCount)
	for i := range nodes {
		nodes[i] = int64(i)
	}
	return LoadGraph(nodes, edges)
}

// FromUndirected wraps an existing gonum graph. The graph must not be
// mutated afterwards.
func FromUndirected(g *simple.UndirectedGraph) *Graph {
	ret := &Graph{
		g:         g,
		ids:       make([]int64, 0, g.Nodes().Len()),
		neighbors: make(map[int64][]int64, g.Nodes().Len()),
	}

	nodes := g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		ret.ids = append(ret.ids, id)

		adj := make([]int64, 0)
		from := g.From(id)
		for from.Next() {
			adj = append(adj, from.Node().ID())
		}
		slices.Sort(adj)
		ret.neighbors[id] = adj
	}
	slices.Sort(ret.ids)

	return ret
}

// Has reports whether the node is part of the graph
func (gr *Graph) Has(id int64) bool {
	_, ok := gr.neighbors[id]
	return ok
}

// Neighbors returns the adjacent node ids in ascending order.
// The returned slice is shared and must not be modified.
func (gr *Graph) Neighbors(id int64) ([]int64, error) {
	adj, ok := gr.neighbors[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNode, "node %d", id)
	}
	return adj, nil
}

// Degree returns the number of neighbors of a node
func (gr *Graph) Degree(id int64) (int, error) {
	adj, ok := gr.neighbors[id]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownNode, "node %d", id)
	}
	return len(adj), nil
}

// AllNodes returns every node id in ascending order
func (gr *Graph) AllNodes() []int64 {
	return slices.Clone(gr.ids)
}

// NodeCount returns the number of nodes
func (gr *Graph) NodeCount() int {
	return len(gr.ids)
}

// EdgeCount returns the number of undirected edges
func (gr *Graph) EdgeCount() int {
	return gr.g.Edges().Len()
}

// Undirected exposes the underlying gonum graph for serialization
func (gr *Graph) Undirected() *simple.UndirectedGraph {
	return gr.g
}
