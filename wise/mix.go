package wise

import (
	"math/rand"

	"wise-brd/model"
)

// Mix takes round(count * Selector1Rate) nodes from Selector1 and the rest
// from Selector2
type Mix struct {
	Selector1     model.WiseNodeSelector
	Selector2     model.WiseNodeSelector
	Selector1Rate float64
}

func _() model.WiseNodeSelector {
	return &Mix{}
}

func (m *Mix) Name() string {
	return "Mix(" + m.Selector1.Name() + "," + m.Selector2.Name() + ")"
}

func (m *Mix) Select(
	g *model.Graph,
	count int,
	excluded map[int64]bool,
	rng *rand.Rand,
) ([]int64, error) {
	if err := checkCount(count, len(candidates(g, excluded))); err != nil {
		return nil, err
	}

	count1 := int(float64(count)*m.Selector1Rate + 0.5)
	count1 = min(max(count1, 0), count)
	count2 := count - count1

	ret := make([]int64, 0, count)
	if count1 > 0 {
		picked, err := m.Selector1.Select(g, count1, excluded, rng)
		if err != nil {
			return nil, err
		}
		ret = append(ret, picked...)
	}
	if count2 > 0 {
		// the second pick must not repeat the first
		excluded2 := make(map[int64]bool, len(excluded)+len(ret))
		for id, ex := range excluded {
			excluded2[id] = ex
		}
		for _, id := range ret {
			excluded2[id] = true
		}
		picked, err := m.Selector2.Select(g, count2, excluded2, rng)
		if err != nil {
			return nil, err
		}
		ret = append(ret, picked...)
	}
	return ret, nil
}
