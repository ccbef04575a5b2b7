package model

// NetworkGrid places agents on the nodes of the graph
type NetworkGrid struct {
	Graph    *Graph
	AgentMap map[int64]*BRDAgent
}

// NewNetworkGrid creates a new network grid
func NewNetworkGrid(g *Graph) *NetworkGrid {
	return &NetworkGrid{
		Graph:    g,
		AgentMap: make(map[int64]*BRDAgent, g.NodeCount()),
	}
}

// PlaceAgent places an agent on the grid
func (ng *NetworkGrid) PlaceAgent(agent *BRDAgent, nodeID int64) {
	ng.AgentMap[nodeID] = agent
}

// GetAgent returns the agent at the specified node
func (ng *NetworkGrid) GetAgent(nodeID int64) *BRDAgent {
	return ng.AgentMap[nodeID]
}

// GetVotes tallies the current states of a node's neighbors.
// Wise neighbors vote uninfected.
func (ng *NetworkGrid) GetVotes(nodeID int64) (infectedVotes int, uninfectedVotes int) {
	neighbors := ng.Graph.neighbors[nodeID]
	for _, id := range neighbors {
		if ng.AgentMap[id].CurState == Infected {
			infectedVotes++
		} else {
			uninfectedVotes++
		}
	}
	return
}
