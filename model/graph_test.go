package model

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathEdges(n int) []Edge {
	edges := make([]Edge, 0, n-1)
	for i := 0; i < n-1; i++ {
		edges = append(edges, Edge{A: int64(i), B: int64(i + 1)})
	}
	return edges
}

func TestLoadGraph(t *testing.T) {
	g, err := LoadGraph(
		[]int64{30, 10, 20, 40},
		[]Edge{{10, 20}, {30, 10}, {20, 10}, {40, 10}},
	)
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 20, 30, 40}, g.AllNodes())
	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount(), "repeated edge must collapse")

	neighbors, err := g.Neighbors(10)
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 30, 40}, neighbors)

	degree, err := g.Degree(20)
	require.NoError(t, err)
	assert.Equal(t, 1, degree)

	assert.True(t, g.Has(40))
	assert.False(t, g.Has(50))
}

func TestLoadGraphIsolatedNode(t *testing.T) {
	g, err := NewGraphWithNodeCount(3, []Edge{{0, 1}})
	require.NoError(t, err)

	degree, err := g.Degree(2)
	require.NoError(t, err)
	assert.Equal(t, 0, degree)

	neighbors, err := g.Neighbors(2)
	require.NoError(t, err)
	assert.Empty(t, neighbors)
}

func TestLoadGraphMalformed(t *testing.T) {
	tests := []struct {
		name  string
		nodes []int64
		edges []Edge
	}{
		{"undeclared endpoint", []int64{0, 1}, []Edge{{0, 2}}},
		{"undeclared source", []int64{0, 1}, []Edge{{5, 1}}},
		{"self loop", []int64{0, 1}, []Edge{{1, 1}}},
		{"node declared twice", []int64{0, 1, 0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadGraph(tt.nodes, tt.edges)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput), "got %v", err)
		})
	}

	_, err := NewGraphWithNodeCount(-1, nil)
	assert.True(t, errors.Is(err, ErrMalformedInput))
}

func TestGraphUnknownNode(t *testing.T) {
	g, err := NewGraphWithNodeCount(5, pathEdges(5))
	require.NoError(t, err)

	_, err = g.Neighbors(99)
	assert.True(t, errors.Is(err, ErrUnknownNode))

	_, err = g.Degree(-1)
	assert.True(t, errors.Is(err, ErrUnknownNode))
}

func TestAllNodesReturnsCopy(t *testing.T) {
	g, err := NewGraphWithNodeCount(3, nil)
	require.NoError(t, err)

	nodes := g.AllNodes()
	nodes[0] = 42
	assert.Equal(t, []int64{0, 1, 2}, g.AllNodes())
}
