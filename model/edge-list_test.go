package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEdgeList(t *testing.T) {
	input := `# facebook sample
0 1
1	2

% comment
2 3 extra
3 0
`
	edges, err := ReadEdgeList(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []Edge{{0, 1}, {1, 2}, {3, 0}}, edges)
}

func TestReadEdgeListRejectsNonInteger(t *testing.T) {
	_, err := ReadEdgeList(strings.NewReader("0 1\n1 x\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadEdgeListFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edges.txt")
	require.NoError(t, os.WriteFile(path, []byte("0 1\n1 2\n2 0\n"), 0644))

	g, err := LoadEdgeListFile(path, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())

	// node 2 is not declared
	_, err = LoadEdgeListFile(path, 2)
	assert.True(t, errors.Is(err, ErrMalformedInput))

	_, err = LoadEdgeListFile(filepath.Join(t.TempDir(), "missing.txt"), 4)
	assert.Error(t, err)
}
