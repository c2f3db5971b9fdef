package models

import (
	"sort"

	"github.com/gasnetwork/agent/distribution"
)

// weightedMean returns the count-weighted mean gwei of a block's
// bucketed fee distribution, and false if the block carries no weight.
func weightedMean(d distribution.BlockDistribution) (float64, bool) {
	var sum float64
	var count uint32
	for _, b := range d {
		sum += b.Gwei * float64(b.Count)
		count += b.Count
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// weightedMedian returns the count-weighted median gwei of a block's
// bucketed fee distribution: the bucket at which the cumulative count
// first reaches half the block's total weight.
func weightedMedian(d distribution.BlockDistribution) (float64, bool) {
	if len(d) == 0 {
		return 0, false
	}
	buckets := make(distribution.BlockDistribution, len(d))
	copy(buckets, d)
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Gwei < buckets[j].Gwei })

	var total uint32
	for _, b := range buckets {
		total += b.Count
	}
	if total == 0 {
		return 0, false
	}

	half := float64(total) / 2
	var cumulative float64
	for _, b := range buckets {
		cumulative += float64(b.Count)
		if cumulative >= half {
			return b.Gwei, true
		}
	}
	return buckets[len(buckets)-1].Gwei, true
}

// lastN returns the final n elements of distributions, or all of them
// if fewer than n are available.
func lastN(distributions []distribution.BlockDistribution, n int) []distribution.BlockDistribution {
	if len(distributions) <= n {
		return distributions
	}
	return distributions[len(distributions)-n:]
}
