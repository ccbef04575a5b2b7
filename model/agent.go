package model

// BRDAgent holds the state of one node. CurState is the committed
// snapshot every agent reads during a round; NextState is only written.
type BRDAgent struct {
	ID        int64
	Model     *BRDModel
	CurState  State
	NextState State
	Pinned    bool
}

// NewBRDAgent creates a new agent in the given state
func NewBRDAgent(id int64, model *BRDModel, state State) *BRDAgent {
	return &BRDAgent{
		ID:        id,
		Model:     model,
		CurState:  state,
		NextState: state,
	}
}

// BRDAgentStep computes the next state of a single node
func BRDAgentStep(
	cur State,
	pinned bool,
	infectedVotes int,
	uninfectedVotes int,
	rule UpdateRule,
) State {
	if cur == Wise || pinned {
		return cur
	}
	return rule.Next(cur, infectedVotes, uninfectedVotes)
}

// Step computes NextState from the current snapshot without committing it
func (a *BRDAgent) Step() {
	if a.CurState == Wise || a.Pinned {
		a.NextState = a.CurState
		return
	}
	infectedVotes, uninfectedVotes := a.Model.Grid.GetVotes(a.ID)
	a.NextState = BRDAgentStep(
		a.CurState,
		a.Pinned,
		infectedVotes,
		uninfectedVotes,
		a.Model.Params.Rule,
	)
}
