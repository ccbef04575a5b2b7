package utils

import (
	"os"

	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/graph/simple"
)

// NetworkXGraph mirrors networkx's adjacency_data layout
type NetworkXGraph struct {
	Adjacency map[int64]map[int64]any  `msgpack:"adjacency"`
	Directed  bool                     `msgpack:"directed"`
	Nodes     map[int64]map[string]any `msgpack:"nodes"`
	Graph     map[string]any           `msgpack:"graph"`
}

func SerializeGraph(g *simple.UndirectedGraph) *NetworkXGraph {
	nxGraph := &NetworkXGraph{
		Adjacency: make(map[int64]map[int64]any),
		Directed:  false,
		Nodes:     make(map[int64]map[string]any),
		Graph:     make(map[string]any),
	}

	// isolated nodes must survive the round trip
	nodes := g.Nodes()
	for nodes.Next() {
		nodeID := nodes.Node().ID()
		nxGraph.Nodes[nodeID] = make(map[string]any)
		nxGraph.Adjacency[nodeID] = make(map[int64]any)
	}

	edges := g.Edges()
	for edges.Next() {
		edge := edges.Edge()
		a := edge.From().ID()
		b := edge.To().ID()

		// undirected adjacency is listed from both ends
		nxGraph.Adjacency[a][b] = map[string]any{}
		nxGraph.Adjacency[b][a] = map[string]any{}
	}

	nxGraph.Graph["name"] = "Generated from Gonum UndirectedGraph"

	return nxGraph
}

func DeserializeGraph(nxGraph *NetworkXGraph) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()

	// add nodes
	for nodeID := range nxGraph.Nodes {
		g.AddNode(simple.Node(nodeID))
	}

	// add nodes not in the list
	for nodeID := range nxGraph.Adjacency {
		if g.Node(nodeID) == nil {
			g.AddNode(simple.Node(nodeID))
		}
	}

	// add edges
	for fromID, targets := range nxGraph.Adjacency {
		for toID := range targets {
			if fromID == toID || g.HasEdgeBetween(fromID, toID) {
				continue
			}
			if g.Node(toID) == nil {
				g.AddNode(simple.Node(toID))
			}
			g.SetEdge(simple.Edge{
				F: simple.Node(fromID),
				T: simple.Node(toID),
			})
		}
	}

	return g
}

func SaveGraphToFile(g *simple.UndirectedGraph, filename string) error {
	nxGraph := SerializeGraph(g)

	data, err := msgpack.Marshal(nxGraph)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

func LoadGraphFromFile(filename string) (*simple.UndirectedGraph, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var nxGraph NetworkXGraph
	err = msgpack.Unmarshal(data, &nxGraph)
	if err != nil {
		return nil, err
	}

	return DeserializeGraph(&nxGraph), nil
}
