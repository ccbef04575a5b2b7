package wise

import (
	"math/rand"
	"testing"

	"wise-brd/model"
	"wise-brd/utils"

	"github.com/cockroachdb/errors"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// starPlus has degrees 0:4, 1:2, 2:2, 3:1, 4:1, 5:0
func starPlus(t *testing.T) *model.Graph {
	t.Helper()
	g, err := model.NewGraphWithNodeCount(6, []model.Edge{
		{A: 0, B: 1}, {A: 0, B: 2}, {A: 0, B: 3}, {A: 0, B: 4}, {A: 1, B: 2},
	})
	require.NoError(t, err)
	return g
}

func set(ids ...int64) map[int64]bool {
	ret := make(map[int64]bool, len(ids))
	for _, id := range ids {
		ret[id] = true
	}
	return ret
}

func TestHighDegreeRanking(t *testing.T) {
	g := starPlus(t)
	h := NewHighDegree()

	picked, err := h.Select(g, 3, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2}, picked)

	// ties between 3 and 4 go to the lower id
	picked, err = h.Select(g, 4, set(1), nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 2, 3, 4}, picked)

	picked, err = h.Select(g, 0, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, picked)
}

func TestHighDegreeInsufficient(t *testing.T) {
	g := starPlus(t)

	_, err := NewHighDegree().Select(g, 5, set(0, 1), nil)
	assert.True(t, errors.Is(err, model.ErrInsufficientNodes))

	_, err = NewHighDegree().Select(g, -1, nil, nil)
	assert.True(t, errors.Is(err, model.ErrInvalidParameter))
}

func TestRandomIsReproducible(t *testing.T) {
	g, err := model.NewGraphWithNodeCount(50, nil)
	require.NoError(t, err)
	r := NewRandom()

	a, err := r.Select(g, 10, set(1, 2, 3), rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	b, err := r.Select(g, 10, set(1, 2, 3), rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 10)

	seen := set()
	for _, id := range a {
		assert.False(t, seen[id], "node %d picked twice", id)
		assert.NotContains(t, []int64{1, 2, 3}, id)
		seen[id] = true
	}
}

func TestRandomTakesEverythingLeft(t *testing.T) {
	g := starPlus(t)

	picked, err := NewRandom().Select(g, 4, set(0, 5), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, picked)
}

func TestRandomErrors(t *testing.T) {
	g := starPlus(t)

	_, err := NewRandom().Select(g, 6, set(0), rand.New(rand.NewSource(1)))
	assert.True(t, errors.Is(err, model.ErrInsufficientNodes))

	_, err = NewRandom().Select(g, 1, nil, nil)
	assert.True(t, errors.Is(err, model.ErrInvalidParameter))
}

func TestNone(t *testing.T) {
	picked, err := (&None{}).Select(starPlus(t), 3, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, picked)
}

func TestMix(t *testing.T) {
	g := starPlus(t)
	m := &Mix{
		Selector1:     NewHighDegree(),
		Selector2:     NewRandom(),
		Selector1Rate: 0.5,
	}
	assert.Equal(t, "Mix(HighDegree,Random)", m.Name())

	picked, err := m.Select(g, 4, set(2), rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Len(t, picked, 4)
	// the first half is the degree ranking without node 2
	assert.Equal(t, []int64{0, 1}, picked[:2])
	assert.NotContains(t, picked, int64(2))
	assert.NotEqual(t, picked[2], picked[3])
	assert.NotContains(t, picked[2:], int64(0))
	assert.NotContains(t, picked[2:], int64(1))

	_, err = m.Select(g, 6, set(2), rand.New(rand.NewSource(3)))
	assert.True(t, errors.Is(err, model.ErrInsufficientNodes))
}

func TestSelectorExclusivity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	selectors := []model.WiseNodeSelector{
		NewRandom(),
		NewHighDegree(),
		&Mix{Selector1: NewHighDegree(), Selector2: NewRandom(), Selector1Rate: 0.3},
	}

	properties.Property("selection avoids excluded nodes and honors count", prop.ForAll(
		func(n int, count int, seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			g := model.FromUndirected(utils.CreateRandomNetwork(n, 0.2, rng))
			excluded := make(map[int64]bool)
			for _, i := range rng.Perm(n)[:rng.Intn(n+1)] {
				excluded[int64(i)] = true
			}
			available := n - len(excluded)

			for _, s := range selectors {
				picked, err := s.Select(g, count, excluded, rng)
				if count > available {
					if !errors.Is(err, model.ErrInsufficientNodes) {
						return false
					}
					continue
				}
				if err != nil || len(picked) != count {
					return false
				}
				seen := make(map[int64]bool)
				for _, id := range picked {
					if excluded[id] || seen[id] || !g.Has(id) {
						return false
					}
					seen[id] = true
				}
			}
			return true
		},
		gen.IntRange(1, 40),
		gen.IntRange(0, 40),
		gen.Int64Range(1, 1<<30),
	))

	properties.TestingRun(t)
}
