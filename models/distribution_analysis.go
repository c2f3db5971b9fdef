package models

import (
	"sort"

	"github.com/gasnetwork/agent/distribution"
)

// distributionAnalysisMinPoints is the minimum distinct bucket count
// spec.md §4.5.6 requires before attempting sweet-spot detection.
const distributionAnalysisMinPoints = 3

// distributionAnalysisMarkup is the 10% markup applied to the detected
// sweet-spot price.
const distributionAnalysisMarkup = 1.10

// DistributionAnalysis implements the "distribution_analysis" model:
// on the latest block's fee CDF, find the bucket where the CDF's slope
// drops most sharply moving from the bucket's left neighbor to its
// right neighbor — the point where paying more buys little additional
// inclusion probability — and mark it up 10%. Falls back to the
// weighted median when there are too few distinct buckets to show a
// meaningful slope change.
type DistributionAnalysis struct{}

func (DistributionAnalysis) Apply(distributions []distribution.BlockDistribution, _ *distribution.BlockDistribution, latestBlock uint64) (Result, error) {
	if len(distributions) == 0 {
		return Result{}, errInsufficientData("distribution_analysis: no blocks observed")
	}
	latest := distributions[len(distributions)-1]
	if len(latest) == 0 {
		return Result{}, errInsufficientData("distribution_analysis: latest block has no priced transactions")
	}

	buckets := make(distribution.BlockDistribution, len(latest))
	copy(buckets, latest)
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Gwei < buckets[j].Gwei })

	if len(buckets) < distributionAnalysisMinPoints {
		median, ok := weightedMedian(buckets)
		if !ok {
			return Result{}, errInsufficientData("distribution_analysis: no weight in latest block")
		}
		return nonPendingResult(median, latestBlock), nil
	}

	sweetSpot, found := findSweetSpot(buckets)
	if !found {
		median, ok := weightedMedian(buckets)
		if !ok {
			return Result{}, errInsufficientData("distribution_analysis: no weight in latest block")
		}
		return nonPendingResult(median, latestBlock), nil
	}

	return nonPendingResult(sweetSpot*distributionAnalysisMarkup, latestBlock), nil
}

// findSweetSpot builds the cumulative-count CDF over sorted buckets
// and returns the gwei of the interior bucket i (0 < i < n-1) whose
// left-vs-right CDF slope drops the most.
func findSweetSpot(buckets distribution.BlockDistribution) (float64, bool) {
	n := len(buckets)
	var total uint32
	for _, b := range buckets {
		total += b.Count
	}
	if total == 0 {
		return 0, false
	}

	cdf := make([]float64, n)
	var cumulative uint32
	for i, b := range buckets {
		cumulative += b.Count
		cdf[i] = float64(cumulative) / float64(total)
	}

	bestDrop := 0.0
	bestIdx := -1
	found := false
	for i := 1; i < n-1; i++ {
		leftSpan := buckets[i].Gwei - buckets[i-1].Gwei
		rightSpan := buckets[i+1].Gwei - buckets[i].Gwei
		if leftSpan <= 0 || rightSpan <= 0 {
			continue
		}
		leftSlope := (cdf[i] - cdf[i-1]) / leftSpan
		rightSlope := (cdf[i+1] - cdf[i]) / rightSpan
		drop := leftSlope - rightSlope
		if !found || drop > bestDrop {
			bestDrop = drop
			bestIdx = i
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return buckets[bestIdx].Gwei, true
}
