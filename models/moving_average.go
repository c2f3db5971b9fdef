package models

import (
	"github.com/gasnetwork/agent/distribution"
)

// movingAverageWindow is the "last min(10, len)" window spec.md §4.5.3
// fixes for the "moving_average" model.
const movingAverageWindow = 10

// MovingAverage implements a simple weighted moving average (SWMA):
// each non-empty block's count-weighted mean gwei is averaged across
// the window with linear weights (most recent block weighted largest).
type MovingAverage struct{}

func (MovingAverage) Apply(distributions []distribution.BlockDistribution, _ *distribution.BlockDistribution, latestBlock uint64) (Result, error) {
	window := lastN(distributions, movingAverageWindow)

	var means []float64
	for _, d := range window {
		if m, ok := weightedMean(d); ok {
			means = append(means, m)
		}
	}
	if len(means) == 0 {
		return Result{}, errInsufficientData("moving_average: no non-empty blocks in window")
	}

	return nonPendingResult(weightedLinearAverage(means), latestBlock), nil
}
