// Package wise implements the strategies that pick wise nodes before a
// contagion run.
package wise

import (
	"math/rand"

	"wise-brd/model"

	"github.com/cockroachdb/errors"
)

// candidates lists the nodes not in excluded, ascending
func candidates(g *model.Graph, excluded map[int64]bool) []int64 {
	all := g.AllNodes()
	ret := all[:0]
	for _, id := range all {
		if !excluded[id] {
			ret = append(ret, id)
		}
	}
	return ret
}

func checkCount(count int, available int) error {
	if count < 0 {
		return errors.Wrapf(model.ErrInvalidParameter, "negative wise node count %d", count)
	}
	if count > available {
		return errors.Wrapf(model.ErrInsufficientNodes,
			"requested %d wise nodes, only %d eligible", count, available)
	}
	return nil
}

// sampleWithoutReplacement draws n items uniformly with a partial
// Fisher-Yates shuffle. population is reordered in place.
func sampleWithoutReplacement(population []int64, n int, rng *rand.Rand) []int64 {
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(population)-i)
		population[i], population[j] = population[j], population[i]
	}
	ret := make([]int64, n)
	copy(ret, population[:n])
	return ret
}
