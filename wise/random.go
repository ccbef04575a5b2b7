package wise

import (
	"math/rand"

	"wise-brd/model"

	"github.com/cockroachdb/errors"
)

// Random samples wise nodes uniformly without replacement
type Random struct{}

func _() model.WiseNodeSelector {
	return &Random{}
}

func NewRandom() *Random {
	return &Random{}
}

func (r *Random) Name() string {
	return "Random"
}

func (r *Random) Select(
	g *model.Graph,
	count int,
	excluded map[int64]bool,
	rng *rand.Rand,
) ([]int64, error) {
	if rng == nil {
		return nil, errors.Wrap(model.ErrInvalidParameter, "random selection needs a random source")
	}
	pool := candidates(g, excluded)
	if err := checkCount(count, len(pool)); err != nil {
		return nil, err
	}
	return sampleWithoutReplacement(pool, count, rng), nil
}
