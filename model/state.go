package model

// State is the label a node carries in the BRD contagion model
type State int8

const (
	// Uninfected (Y) nodes have not adopted the rumor
	Uninfected State = iota
	// Infected (X) nodes spread the rumor
	Infected
	// Wise (W) nodes are fixed anchors broadcasting accurate information
	Wise
)

func (s State) String() string {
	switch s {
	case Uninfected:
		return "Y"
	case Infected:
		return "X"
	case Wise:
		return "W"
	}
	return "?"
}

// RoundCount aggregates the node states after a round.
// Round 0 is the initial condition.
type RoundCount struct {
	Round      int
	Infected   int
	Uninfected int
	Wise       int
}

// Total is the number of nodes the counts cover
func (c RoundCount) Total() int {
	return c.Infected + c.Uninfected + c.Wise
}
