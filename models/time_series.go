package models

import (
	"github.com/gasnetwork/agent/distribution"
)

// timeSeriesWindow is the "last min(20, len)" window spec.md §4.5.5
// fixes for the "time_series" model.
const timeSeriesWindow = 20

// timeSeriesMinMedians is the "fewer than 3 medians" error threshold.
const timeSeriesMinMedians = 3

// timeSeriesFloorGwei and timeSeriesCeilingFactor bound the
// extrapolated prediction to [1.0, 1.5 * max observed median], per
// spec.md §4.5.5.
const (
	timeSeriesFloorGwei     = 1.0
	timeSeriesCeilingFactor = 1.5
)

// TimeSeries implements an ordinary-least-squares linear regression
// over the weighted median fee of non-empty blocks in the window,
// extrapolated one step forward and clamped to
// [1.0, 1.5 * max observed median].
type TimeSeries struct{}

func (TimeSeries) Apply(distributions []distribution.BlockDistribution, _ *distribution.BlockDistribution, latestBlock uint64) (Result, error) {
	window := lastN(distributions, timeSeriesWindow)

	var medians []float64
	for _, d := range window {
		if len(d) == 0 {
			continue
		}
		if m, ok := weightedMedian(d); ok {
			medians = append(medians, m)
		}
	}
	if len(medians) < timeSeriesMinMedians {
		return Result{}, errInsufficientData("time_series: fewer than 3 non-empty blocks in window")
	}

	xs := make([]float64, len(medians))
	for i := range medians {
		xs[i] = float64(i)
	}

	slope, intercept := ols(xs, medians)
	predicted := slope*float64(len(medians)) + intercept

	max := medians[0]
	for _, m := range medians {
		if m > max {
			max = m
		}
	}
	ceiling := timeSeriesCeilingFactor * max

	if predicted < timeSeriesFloorGwei {
		predicted = timeSeriesFloorGwei
	}
	if predicted > ceiling {
		predicted = ceiling
	}

	return nonPendingResult(predicted, latestBlock), nil
}

// ols fits y = slope*x + intercept by ordinary least squares.
func ols(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
