package model

import "math/rand"

// WiseNodeSelector picks the nodes that become wise before a run.
// Implementations never return a node listed in excluded and hold no
// mutable state, so one selector can serve every trial of a sweep.
type WiseNodeSelector interface {
	Select(g *Graph, count int, excluded map[int64]bool, rng *rand.Rand) ([]int64, error)
	Name() string
}

// SelectorFactory builds a selector for a given graph
type SelectorFactory func(g *Graph) WiseNodeSelector
