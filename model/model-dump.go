package model

import (
	utils "wise-brd/utils"

	"github.com/cockroachdb/errors"
)

// BRDModelDumpData is the msgpack-serializable snapshot of a model
type BRDModelDumpData struct {
	CurRound  int
	Graph     utils.NetworkXGraph
	Seeds     []int64
	WiseNodes []int64
	// States follows the ascending node id order
	States []State
}

func (m *BRDModel) Dump() *BRDModelDumpData {
	ret := &BRDModelDumpData{
		CurRound:  m.CurRound,
		Graph:     *utils.SerializeGraph(m.Graph.Undirected()),
		Seeds:     m.Seeds,
		WiseNodes: m.WiseNodes,
		States:    make([]State, len(m.Agents)),
	}
	for i, agent := range m.Agents {
		ret.States[i] = agent.CurState
	}
	return ret
}

func (d *BRDModelDumpData) Load(
	params *BRDModelParams,
	eventLogger func(*EventRecord),
) (*BRDModel, error) {
	model, err := NewBRDModel(
		FromUndirected(utils.DeserializeGraph(&d.Graph)),
		d.Seeds,
		d.WiseNodes,
		params,
		eventLogger,
	)
	if err != nil {
		return nil, err
	}

	if len(d.States) != len(model.Agents) {
		return nil, errors.Wrapf(ErrMalformedInput,
			"dump holds %d states for %d nodes", len(d.States), len(model.Agents))
	}

	// recover states
	for i, agent := range model.Agents {
		agent.CurState = d.States[i]
		agent.NextState = d.States[i]
	}

	// recover round
	model.CurRound = d.CurRound

	return model, nil
}
