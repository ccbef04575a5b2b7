package wise

import (
	"math/rand"

	"wise-brd/model"
)

// None places no wise nodes whatever the count
type None struct{}

func _() model.WiseNodeSelector {
	return &None{}
}

func (n *None) Name() string {
	return "None"
}

func (n *None) Select(*model.Graph, int, map[int64]bool, *rand.Rand) ([]int64, error) {
	return []int64{}, nil
}
