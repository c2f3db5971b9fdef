package models

import (
	"github.com/gasnetwork/agent/distribution"
)

// LastMin implements spec.md §4.5's "last_min" model: the minimum
// non-zero fee observed in the most recent block.
type LastMin struct{}

func (LastMin) Apply(distributions []distribution.BlockDistribution, _ *distribution.BlockDistribution, latestBlock uint64) (Result, error) {
	if len(distributions) == 0 {
		return Result{}, errInsufficientData("last_min: no blocks observed")
	}
	latest := distributions[len(distributions)-1]
	min, ok := latest.MinNonZero()
	if !ok {
		return Result{}, errInsufficientData("last_min: latest block has no priced transactions")
	}
	return nonPendingResult(min, latestBlock), nil
}
