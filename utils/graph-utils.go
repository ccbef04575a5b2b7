package utils

import (
	"gonum.org/v1/gonum/graph/simple"
)

// edgeKey normalizes an undirected edge
func edgeKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}

// Helper function to compare two graphs for equality
func CompareGraphs(g1, g2 *simple.UndirectedGraph) bool {
	// Check that both graphs have the same nodes
	nodes1 := g1.Nodes()
	nodes2 := g2.Nodes()
	if nodes1.Len() != nodes2.Len() {
		return false
	}

	nodeMap1 := make(map[int64]bool)
	for nodes1.Next() {
		nodeMap1[nodes1.Node().ID()] = true
	}
	for nodes2.Next() {
		if !nodeMap1[nodes2.Node().ID()] {
			return false
		}
	}

	// Check that both graphs have the same edges
	edgeMap1 := make(map[[2]int64]bool)
	edges1 := g1.Edges()
	for edges1.Next() {
		edge := edges1.Edge()
		edgeMap1[edgeKey(edge.From().ID(), edge.To().ID())] = true
	}

	edgeCount2 := 0
	edges2 := g2.Edges()
	for edges2.Next() {
		edgeCount2++
		edge := edges2.Edge()
		if !edgeMap1[edgeKey(edge.From().ID(), edge.To().ID())] {
			return false
		}
	}

	return edgeCount2 == len(edgeMap1)
}
