package models

import (
	"sort"

	"github.com/gasnetwork/agent/distribution"
)

// percentileWindow is the "last min(5, len)" window spec.md §4.5.2
// fixes for the "percentile" model.
const percentileWindow = 5

// percentileTargetNum/percentileTargetDen express the 75th percentile
// spec.md §4.5.2 fixes.
const percentileTargetNum, percentileTargetDen = 75, 100

// Percentile implements the "percentile" model: across the last
// min(5, len) blocks, form the multiset of buckets weighted by count,
// and return the smallest gwei whose cumulative count reaches
// floor(total * 0.75).
type Percentile struct{}

func (Percentile) Apply(distributions []distribution.BlockDistribution, _ *distribution.BlockDistribution, latestBlock uint64) (Result, error) {
	window := lastN(distributions, percentileWindow)
	if len(window) == 0 {
		return Result{}, errInsufficientData("percentile: no blocks observed")
	}

	merged := map[float64]uint32{}
	for _, d := range window {
		for _, b := range d {
			merged[b.Gwei] += b.Count
		}
	}
	if len(merged) == 0 {
		return Result{}, errInsufficientData("percentile: window has no priced transactions")
	}

	gweis := make([]float64, 0, len(merged))
	for g := range merged {
		gweis = append(gweis, g)
	}
	sort.Float64s(gweis)

	var total uint32
	for _, g := range gweis {
		total += merged[g]
	}
	if total == 0 {
		return Result{}, errInsufficientData("percentile: window has zero weight")
	}

	target := total * percentileTargetNum / percentileTargetDen
	var cumulative uint32
	for _, g := range gweis {
		cumulative += merged[g]
		if cumulative >= target {
			return nonPendingResult(g, latestBlock), nil
		}
	}
	return nonPendingResult(gweis[len(gweis)-1], latestBlock), nil
}
