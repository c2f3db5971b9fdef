package models

import (
	"math"

	"github.com/gasnetwork/agent/distribution"
)

// adaptiveThresholdWindow is the "last min(50, len)" window spec.md
// §4.5.4 fixes for the "adaptive_threshold" model.
const adaptiveThresholdWindow = 50

// adaptiveThresholdMaxPremium caps the volatility premium at 50% over
// the linearly-weighted base, per spec.md §4.5.4.
const adaptiveThresholdMaxPremium = 0.5

// AdaptiveThreshold implements the "adaptive_threshold" model: collect
// each non-empty block's minimum gwei over the window, form a
// linearly-weighted average ("base", most recent block weighted
// largest), then apply a volatility premium of
// 1 + min(populationStddev(mins)/base, 0.5).
type AdaptiveThreshold struct{}

func (AdaptiveThreshold) Apply(distributions []distribution.BlockDistribution, _ *distribution.BlockDistribution, latestBlock uint64) (Result, error) {
	window := lastN(distributions, adaptiveThresholdWindow)

	var mins []float64
	for _, d := range window {
		if m, ok := d.MinNonZero(); ok {
			mins = append(mins, m)
		}
	}
	if len(mins) == 0 {
		return Result{}, errInsufficientData("adaptive_threshold: no non-empty blocks in window")
	}

	base := weightedLinearAverage(mins)
	if base == 0 {
		return Result{}, errComputation("adaptive_threshold: base average is zero")
	}

	var variance float64
	for _, m := range mins {
		delta := m - base
		variance += delta * delta
	}
	variance /= float64(len(mins))
	stddev := math.Sqrt(variance)

	ratio := stddev / base
	if ratio > adaptiveThresholdMaxPremium {
		ratio = adaptiveThresholdMaxPremium
	}
	factor := 1 + ratio

	return nonPendingResult(base*factor, latestBlock), nil
}

// weightedLinearAverage averages values with linear weights 1..k, the
// most recent (last) value weighted largest. Shared with moving_average,
// whose blocks are weighted the same way.
func weightedLinearAverage(values []float64) float64 {
	var weightedSum, weightTotal float64
	for i, v := range values {
		weight := float64(i + 1)
		weightedSum += v * weight
		weightTotal += weight
	}
	if weightTotal == 0 {
		return 0
	}
	return weightedSum / weightTotal
}
