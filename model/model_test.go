package model

import (
	"math/rand"
	"testing"

	"wise-brd/utils"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// cliqueTail is a triangle 0-1-2 fully joined to node 3, with node 4
// hanging off node 3
func cliqueTail(t *testing.T) *Graph {
	t.Helper()
	g, err := NewGraphWithNodeCount(5, []Edge{
		{0, 1}, {0, 2}, {1, 2},
		{0, 3}, {1, 3}, {2, 3},
		{3, 4},
	})
	require.NoError(t, err)
	return g
}

func mustGraph(t *testing.T, n int, edges []Edge) *Graph {
	t.Helper()
	g, err := NewGraphWithNodeCount(n, edges)
	require.NoError(t, err)
	return g
}

func randomGraph(t *testing.T, n int, p float64, seed int64) *Graph {
	t.Helper()
	return FromUndirected(utils.CreateRandomNetwork(n, p, rand.New(rand.NewSource(seed))))
}

func params(maxRounds int) *BRDModelParams {
	p := DefaultBRDModelParams()
	p.MaxRounds = maxRounds
	return p
}

func TestPathWithWiseAnchor(t *testing.T) {
	g := mustGraph(t, 5, pathEdges(5))

	result, err := Simulate(g, []int64{0}, []int64{4}, params(10))
	require.NoError(t, err)

	assert.True(t, result.Converged)
	assert.Less(t, len(result.Rounds), 10)
	assert.Equal(t, Wise, result.Final[4])
	// node 2 sees two uninfected neighbors
	assert.Equal(t, Uninfected, result.Final[2])
	// node 1 is tied between 0 and 2 and keeps its state
	assert.Equal(t, Uninfected, result.Final[1])
	assert.Equal(t, RoundCount{Round: 0, Infected: 1, Uninfected: 3, Wise: 1}, result.Rounds[0])
	assert.Equal(t, 1, result.WiseCount)
}

func TestMajorityPropagation(t *testing.T) {
	g := cliqueTail(t)

	result, err := Simulate(g, []int64{0, 1, 2}, nil, params(100))
	require.NoError(t, err)

	assert.True(t, result.Converged)
	assert.Equal(t, []RoundCount{
		{Round: 0, Infected: 3, Uninfected: 2},
		{Round: 1, Infected: 4, Uninfected: 1},
		{Round: 2, Infected: 5, Uninfected: 0},
	}, result.Rounds)
}

func TestWiseNodeBlocksPropagation(t *testing.T) {
	g := cliqueTail(t)

	// the tail is wise: node 3 is still outvoted 3 to 1
	result, err := Simulate(g, []int64{0, 1, 2}, []int64{4}, params(100))
	require.NoError(t, err)
	assert.Equal(t, 4, result.Rounds[len(result.Rounds)-1].Infected)
	assert.Equal(t, Wise, result.Final[4])

	// the bridge is wise: node 4 only ever hears accurate information
	result, err = Simulate(g, []int64{0, 1, 2}, []int64{3}, params(100))
	require.NoError(t, err)
	assert.Len(t, result.Rounds, 1)
	assert.Equal(t, Uninfected, result.Final[4])
}

func TestEveryoneInfectedIsFixedPoint(t *testing.T) {
	g := mustGraph(t, 5, pathEdges(5))

	result, err := Simulate(g, []int64{0, 1, 2, 3}, []int64{4}, params(10))
	require.NoError(t, err)

	assert.True(t, result.Converged)
	require.Len(t, result.Rounds, 1)
	assert.Equal(t, RoundCount{Round: 0, Infected: 4, Uninfected: 0, Wise: 1}, result.Rounds[0])
}

func TestOscillationHitsRoundCap(t *testing.T) {
	g := mustGraph(t, 2, []Edge{{0, 1}})

	m, err := NewBRDModel(g, []int64{0}, nil, params(7), nil)
	require.NoError(t, err)
	result := m.StepTillEnd()

	assert.False(t, result.Converged)
	assert.Len(t, result.Rounds, 8)
	assert.Equal(t, 7, m.CurRound)
	for _, c := range result.Rounds {
		assert.Equal(t, 1, c.Infected)
	}
}

func TestZeroRoundCap(t *testing.T) {
	g := cliqueTail(t)

	result, err := Simulate(g, []int64{0, 1, 2}, nil, params(0))
	require.NoError(t, err)
	assert.False(t, result.Converged)
	assert.Len(t, result.Rounds, 1)
}

func TestPinnedSeeds(t *testing.T) {
	g := mustGraph(t, 2, []Edge{{0, 1}})
	p := params(10)
	p.PinSeeds = true

	result, err := Simulate(g, []int64{0}, nil, p)
	require.NoError(t, err)
	assert.True(t, result.Converged)
	assert.Equal(t, 2, result.Rounds[len(result.Rounds)-1].Infected)
}

func TestThresholdRule(t *testing.T) {
	star := mustGraph(t, 5, []Edge{{0, 1}, {0, 2}, {0, 3}, {0, 4}})

	rule, err := NewUpdateRule(RuleThreshold, 0.25)
	require.NoError(t, err)
	p := params(10)
	p.Rule = rule

	// one of four neighbors is exactly the threshold
	result, err := Simulate(star, []int64{1}, nil, p)
	require.NoError(t, err)
	assert.True(t, result.Converged)
	assert.Equal(t, 5, result.Rounds[len(result.Rounds)-1].Infected)

	rule, err = NewUpdateRule(RuleThreshold, 0.3)
	require.NoError(t, err)
	p.Rule = rule

	result, err = Simulate(star, []int64{1}, nil, p)
	require.NoError(t, err)
	assert.Len(t, result.Rounds, 1)
	assert.Equal(t, Infected, result.Final[1], "threshold infection never reverts")
}

func TestNewUpdateRule(t *testing.T) {
	rule, err := NewUpdateRule("", 0)
	require.NoError(t, err)
	assert.Equal(t, RuleMajority, rule.Name())

	_, err = NewUpdateRule(RuleThreshold, 0)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	_, err = NewUpdateRule(RuleThreshold, 1.5)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	_, err = NewUpdateRule("Coin", 0.5)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestMajorityRuleTieKeepsState(t *testing.T) {
	rule := MajorityRule{}
	assert.Equal(t, Infected, rule.Next(Infected, 2, 2))
	assert.Equal(t, Uninfected, rule.Next(Uninfected, 2, 2))
	assert.Equal(t, Uninfected, rule.Next(Uninfected, 0, 0))
	assert.Equal(t, Infected, rule.Next(Uninfected, 3, 2))
	assert.Equal(t, Uninfected, rule.Next(Infected, 2, 3))
}

func TestInvalidSeeds(t *testing.T) {
	g := mustGraph(t, 5, pathEdges(5))

	tests := []struct {
		name  string
		seeds []int64
		wise  []int64
	}{
		{"overlap", []int64{0, 1}, []int64{1}},
		{"unknown seed", []int64{9}, nil},
		{"unknown wise", []int64{0}, []int64{-3}},
		{"duplicate seed", []int64{0, 0}, nil},
		{"duplicate wise", nil, []int64{2, 2}},
		{"too many", []int64{0, 1, 2}, []int64{3, 4, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Simulate(g, tt.seeds, tt.wise, params(10))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSeed), "got %v", err)
		})
	}
}

func TestInvalidRoundCap(t *testing.T) {
	g := mustGraph(t, 3, pathEdges(3))
	_, err := Simulate(g, []int64{0}, nil, params(-1))
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestNilParamsUseDefaults(t *testing.T) {
	g := cliqueTail(t)

	m, err := NewBRDModel(g, []int64{0, 1, 2}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, m.Params.MaxRounds)
	assert.Equal(t, RuleMajority, m.Params.Rule.Name())

	m, err = NewBRDModel(g, []int64{0, 1, 2}, nil, &BRDModelParams{MaxRounds: 3}, nil)
	require.NoError(t, err)
	assert.NotNil(t, m.Params.Rule)
}

func TestFlipEvents(t *testing.T) {
	g := cliqueTail(t)

	events := make([]*EventRecord, 0)
	m, err := NewBRDModel(g, []int64{0, 1, 2}, nil, params(100), func(e *EventRecord) {
		events = append(events, e)
	})
	require.NoError(t, err)
	m.StepTillEnd()

	require.Len(t, events, 2)
	assert.Equal(t, &EventRecord{
		Type:    EventFlip,
		AgentID: 3,
		Step:    1,
		Body:    FlipEventBody{From: Uninfected, To: Infected},
	}, events[0])
	assert.Equal(t, int64(4), events[1].AgentID)
	assert.Equal(t, 2, events[1].Step)
}

func TestSeedSetIsRoundZero(t *testing.T) {
	g := randomGraph(t, 80, 0.08, 5)
	seeds := []int64{3, 17, 40, 41}

	m, err := NewBRDModel(g, seeds, []int64{7, 8}, params(50), nil)
	require.NoError(t, err)
	assert.Equal(t, seeds, m.CollectInfected())
}

func TestDeterminism(t *testing.T) {
	g := randomGraph(t, 200, 0.03, 11)
	seeds := []int64{1, 5, 9, 13, 21, 34, 55, 89, 144}
	wiseNodes := []int64{2, 3, 100}

	r1, err := Simulate(g, seeds, wiseNodes, params(100))
	require.NoError(t, err)
	r2, err := Simulate(g, seeds, wiseNodes, params(100))
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
}

func TestFixedPointIsStable(t *testing.T) {
	g := randomGraph(t, 120, 0.05, 23)

	m, err := NewBRDModel(g, []int64{0, 1, 2, 3, 4, 5, 6, 7}, []int64{50}, params(200), nil)
	require.NoError(t, err)
	result := m.StepTillEnd()
	require.True(t, result.Converged)

	before := m.CollectStates()
	assert.Equal(t, 0, m.Step())
	assert.Equal(t, before, m.CollectStates())
}

// plainMajority is an independent BRD implementation without wise nodes
func plainMajority(g *Graph, seeds []int64, maxRounds int) ([]int, bool) {
	infected := make(map[int64]bool)
	for _, id := range seeds {
		infected[id] = true
	}
	count := func() int {
		n := 0
		for _, v := range infected {
			if v {
				n++
			}
		}
		return n
	}

	counts := []int{count()}
	for round := 0; round < maxRounds; round++ {
		next := make(map[int64]bool, len(infected))
		changed := false
		for _, id := range g.AllNodes() {
			neighbors, _ := g.Neighbors(id)
			x := 0
			for _, n := range neighbors {
				if infected[n] {
					x++
				}
			}
			y := len(neighbors) - x
			switch {
			case x > y:
				next[id] = true
			case y > x:
				next[id] = false
			default:
				next[id] = infected[id]
			}
			if next[id] != infected[id] {
				changed = true
			}
		}
		if !changed {
			return counts, true
		}
		infected = next
		counts = append(counts, count())
	}
	return counts, false
}

func TestNoWiseNodesIsPlainMajority(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		g := randomGraph(t, 150, 0.04, seed)
		rng := rand.New(rand.NewSource(seed))
		seeds := make([]int64, 0)
		for _, i := range rng.Perm(150)[:40] {
			seeds = append(seeds, int64(i))
		}

		result, err := Simulate(g, seeds, nil, params(60))
		require.NoError(t, err)

		want, converged := plainMajority(g, seeds, 60)
		got := make([]int, len(result.Rounds))
		for i, c := range result.Rounds {
			got[i] = c.Infected
			assert.Equal(t, 0, c.Wise)
		}
		assert.Equal(t, want, got, "graph seed %d", seed)
		assert.Equal(t, converged, result.Converged, "graph seed %d", seed)
	}
}

func TestDumpAndLoad(t *testing.T) {
	g := randomGraph(t, 100, 0.05, 8)
	seeds := []int64{0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22}
	wiseNodes := []int64{1, 3}

	straight, err := Simulate(g, seeds, wiseNodes, params(100))
	require.NoError(t, err)

	m, err := NewBRDModel(g, seeds, wiseNodes, params(100), nil)
	require.NoError(t, err)
	m.Step()

	data, err := msgpack.Marshal(m.Dump())
	require.NoError(t, err)
	var dump BRDModelDumpData
	require.NoError(t, msgpack.Unmarshal(data, &dump))

	loaded, err := dump.Load(params(100), nil)
	require.NoError(t, err)
	assert.Equal(t, m.CurRound, loaded.CurRound)
	assert.Equal(t, m.CollectStates(), loaded.CollectStates())
	assert.True(t, utils.CompareGraphs(g.Undirected(), loaded.Graph.Undirected()))

	resumed := loaded.StepTillEnd()
	assert.Equal(t, straight.Final, resumed.Final)
	assert.Equal(t, straight.Converged, resumed.Converged)
}

func TestLoadRejectsMismatchedStates(t *testing.T) {
	g := cliqueTail(t)
	m, err := NewBRDModel(g, []int64{0}, nil, params(10), nil)
	require.NoError(t, err)

	dump := m.Dump()
	dump.States = dump.States[:2]
	_, err = dump.Load(params(10), nil)
	assert.True(t, errors.Is(err, ErrMalformedInput))
}

func TestStateOf(t *testing.T) {
	g := cliqueTail(t)
	m, err := NewBRDModel(g, []int64{0}, []int64{4}, params(10), nil)
	require.NoError(t, err)

	s, err := m.StateOf(4)
	require.NoError(t, err)
	assert.Equal(t, Wise, s)
	assert.Equal(t, "W", s.String())

	_, err = m.StateOf(12)
	assert.True(t, errors.Is(err, ErrUnknownNode))
}
