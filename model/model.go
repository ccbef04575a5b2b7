package model

import (
	"github.com/cockroachdb/errors"
)

// BRDModelParams contains configuration parameters for the BRD model
type BRDModelParams struct {
	// MaxRounds caps the number of update sweeps of a run
	MaxRounds int
	// Rule decides the next state of each node; nil means MajorityRule
	Rule UpdateRule
	// PinSeeds keeps the seed-infected nodes infected for the whole run
	PinSeeds bool
}

// DefaultBRDModelParams creates a new parameters struct with default values
func DefaultBRDModelParams() *BRDModelParams {
	return &BRDModelParams{
		MaxRounds: 1000,
		Rule:      MajorityRule{},
	}
}

// ToMap converts the parameters to a map
func (p *BRDModelParams) ToMap() map[string]any {
	return map[string]any{
		"max_rounds": p.MaxRounds,
		"rule":       p.Rule.Name(),
		"pin_seeds":  p.PinSeeds,
	}
}

// BRDModel runs binary response dynamics with wise nodes over a static graph
type BRDModel struct {
	Graph       *Graph
	Params      *BRDModelParams
	Grid        *NetworkGrid
	Agents      []*BRDAgent
	Seeds       []int64
	WiseNodes   []int64
	CurRound    int
	EventLogger func(*EventRecord)
}

// Result is the outcome of a completed run
type Result struct {
	// Rounds starts with the initial condition and holds one entry per
	// round that changed at least one node
	Rounds    []RoundCount
	WiseCount int
	// Converged is false when the round cap ended the run
	Converged bool
	Final     map[int64]State
}

// NewBRDModel creates a model with the seed nodes infected, the wise nodes
// marked wise and everyone else uninfected.
func NewBRDModel(
	g *Graph,
	seeds []int64,
	wiseNodes []int64,
	params *BRDModelParams,
	eventLogger func(*EventRecord),
) (*BRDModel, error) {
	if params == nil {
		params = DefaultBRDModelParams()
	}
	if params.MaxRounds < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "max rounds %d", params.MaxRounds)
	}
	if params.Rule == nil {
		p := *params
		p.Rule = MajorityRule{}
		params = &p
	}

	if err := validateSeeds(g, seeds, wiseNodes); err != nil {
		return nil, err
	}

	model := &BRDModel{
		Graph:       g,
		Params:      params,
		Grid:        NewNetworkGrid(g),
		Seeds:       append([]int64(nil), seeds...),
		WiseNodes:   append([]int64(nil), wiseNodes...),
		EventLogger: eventLogger,
	}

	initial := make(map[int64]State, len(seeds)+len(wiseNodes))
	for _, id := range seeds {
		initial[id] = Infected
	}
	for _, id := range wiseNodes {
		initial[id] = Wise
	}

	// ascending id order, shared with Graph.AllNodes
	model.Agents = make([]*BRDAgent, 0, g.NodeCount())
	for _, id := range g.ids {
		agent := NewBRDAgent(id, model, initial[id])
		agent.Pinned = params.PinSeeds && initial[id] == Infected
		model.Grid.PlaceAgent(agent, id)
		model.Agents = append(model.Agents, agent)
	}

	return model, nil
}

func validateSeeds(g *Graph, seeds []int64, wiseNodes []int64) error {
	if len(seeds)+len(wiseNodes) > g.NodeCount() {
		return errors.Wrapf(ErrInvalidSeed,
			"k=%d plus w=%d exceeds %d nodes", len(seeds), len(wiseNodes), g.NodeCount())
	}

	seen := make(map[int64]State, len(seeds)+len(wiseNodes))
	for _, id := range seeds {
		if !g.Has(id) {
			return errors.Wrapf(ErrInvalidSeed, "seed node %d is not in the graph", id)
		}
		if _, dup := seen[id]; dup {
			return errors.Wrapf(ErrInvalidSeed, "seed node %d listed twice", id)
		}
		seen[id] = Infected
	}
	for _, id := range wiseNodes {
		if !g.Has(id) {
			return errors.Wrapf(ErrInvalidSeed, "wise node %d is not in the graph", id)
		}
		if s, dup := seen[id]; dup {
			if s == Infected {
				return errors.Wrapf(ErrInvalidSeed, "node %d is both seed and wise", id)
			}
			return errors.Wrapf(ErrInvalidSeed, "wise node %d listed twice", id)
		}
		seen[id] = Wise
	}
	return nil
}

// Step advances the model by one synchronous round and returns the number
// of nodes whose state changed
func (m *BRDModel) Step() int {
	// read phase: every agent sees the same snapshot
	for _, agent := range m.Agents {
		agent.Step()
	}

	// commit phase
	m.CurRound++
	changed := 0
	for _, agent := range m.Agents {
		if agent.NextState == agent.CurState {
			continue
		}
		if m.EventLogger != nil {
			m.EventLogger(&EventRecord{
				Type:    EventFlip,
				AgentID: agent.ID,
				Step:    m.CurRound,
				Body:    FlipEventBody{From: agent.CurState, To: agent.NextState},
			})
		}
		agent.CurState = agent.NextState
		changed++
	}

	return changed
}

// Counts aggregates the current states
func (m *BRDModel) Counts() RoundCount {
	ret := RoundCount{Round: m.CurRound}
	for _, agent := range m.Agents {
		switch agent.CurState {
		case Infected:
			ret.Infected++
		case Uninfected:
			ret.Uninfected++
		case Wise:
			ret.Wise++
		}
	}
	return ret
}

// StepTillEnd runs rounds until a fixed point or the round cap.
// The cap counts rounds from the start of the run, including rounds
// restored by Load.
func (m *BRDModel) StepTillEnd() *Result {
	initial := m.Counts()
	ret := &Result{
		Rounds:    []RoundCount{initial},
		WiseCount: initial.Wise,
	}

	for m.CurRound < m.Params.MaxRounds {
		if m.Step() == 0 {
			ret.Converged = true
			break
		}
		ret.Rounds = append(ret.Rounds, m.Counts())
	}

	ret.Final = m.CollectStates()
	return ret
}

// StateOf returns the current state of a node
func (m *BRDModel) StateOf(id int64) (State, error) {
	agent := m.Grid.GetAgent(id)
	if agent == nil {
		return 0, errors.Wrapf(ErrUnknownNode, "node %d", id)
	}
	return agent.CurState, nil
}

// CollectStates collects the current state of every node
func (m *BRDModel) CollectStates() map[int64]State {
	states := make(map[int64]State, len(m.Agents))
	for _, agent := range m.Agents {
		states[agent.ID] = agent.CurState
	}
	return states
}

// CollectInfected returns the infected node ids in ascending order
func (m *BRDModel) CollectInfected() []int64 {
	ret := make([]int64, 0)
	for _, agent := range m.Agents {
		if agent.CurState == Infected {
			ret = append(ret, agent.ID)
		}
	}
	return ret
}

// Simulate builds a model and runs it to the end
func Simulate(g *Graph, seeds []int64, wiseNodes []int64, params *BRDModelParams) (*Result, error) {
	m, err := NewBRDModel(g, seeds, wiseNodes, params, nil)
	if err != nil {
		return nil, err
	}
	return m.StepTillEnd(), nil
}
