package wise

import (
	"math/rand"

	"wise-brd/model"
	"wise-brd/utils"
)

// HighDegree picks the best connected nodes. Equal degrees rank the lower
// id first, so the result never depends on iteration order.
type HighDegree struct{}

func _() model.WiseNodeSelector {
	return &HighDegree{}
}

func NewHighDegree() *HighDegree {
	return &HighDegree{}
}

func (h *HighDegree) Name() string {
	return "HighDegree"
}

// Select ignores rng
func (h *HighDegree) Select(
	g *model.Graph,
	count int,
	excluded map[int64]bool,
	_ *rand.Rand,
) ([]int64, error) {
	pool := candidates(g, excluded)
	if err := checkCount(count, len(pool)); err != nil {
		return nil, err
	}

	items := make([]utils.ValIdx, len(pool))
	for i, id := range pool {
		degree, err := g.Degree(id)
		if err != nil {
			return nil, err
		}
		items[i] = utils.ValIdx{Val: float64(degree), Index: id}
	}

	return utils.NewTopKFinder(count).FindTopK(items, count), nil
}
