package utils

import (
	"math/rand"

	"gonum.org/v1/gonum/graph/simple"
)

// n, p graph
//
// p = m / (n - 1), m being the expected degree
func CreateRandomNetwork(nodeCount int, edgeProbability float64, rng *rand.Rand) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()

	for i := range nodeCount {
		g.AddNode(simple.Node(i))
	}

	for i := range nodeCount {
		for j := i + 1; j < nodeCount; j++ {
			if rng.Float64() < edgeProbability {
				g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
			}
		}
	}

	return g
}

// Watts-Strogatz ring lattice with k neighbors per node, rewired with the
// given probability
func CreateSmallWorldNetwork(nodeCount int, k int, rewireProbability float64, rng *rand.Rand) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()

	for i := range nodeCount {
		g.AddNode(simple.Node(i))
	}

	for i := range nodeCount {
		for j := 1; j <= k/2; j++ {
			neighbor := (i + j) % nodeCount
			if neighbor == i || g.HasEdgeBetween(int64(i), int64(neighbor)) {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(neighbor)))
		}
	}

	// random reconnect
	for i := 0; i < nodeCount; i++ {
		for j := 1; j <= k/2; j++ {
			if rng.Float64() >= rewireProbability {
				continue
			}
			oldTarget := (i + j) % nodeCount
			if !g.HasEdgeBetween(int64(i), int64(oldTarget)) {
				continue
			}
			// saturated node, nowhere to go
			if g.From(int64(i)).Len() >= nodeCount-1 {
				continue
			}

			// find new target
			var newTarget int
			for {
				newTarget = rng.Intn(nodeCount)
				if newTarget != i && !g.HasEdgeBetween(int64(i), int64(newTarget)) {
					break
				}
			}

			// rewire
			g.RemoveEdge(int64(i), int64(oldTarget))
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(newTarget)))
		}
	}

	return g
}
