// Package distribution builds the per-block bucketed gwei histogram
// that every prediction model consumes.
package distribution

import (
	"math"
	"math/big"
	"sort"

	"github.com/gasnetwork/agent/chaintypes"
	"github.com/gasnetwork/agent/fee"
	"github.com/gasnetwork/agent/log"
)

// bucketSize is 10^-9 gwei (1 wei), the bucket resolution spec.md §4.2
// fixes.
const bucketSize = 1e-9

var distLog = log.Default().Module("distribution")

// Bucket is one (gwei, count) point in a BlockDistribution.
type Bucket struct {
	Gwei  float64
	Count uint32
}

// BlockDistribution is an ordered, ascending-by-gwei, unique-key set of
// Buckets. The zero value (nil slice) is the legal empty distribution.
type BlockDistribution []Bucket

// MinNonZero returns the smallest bucket's gwei and true, or (0, false)
// if the distribution is empty. Bucket gwei values of exactly zero are
// excluded from the distribution by Build, so "non-zero" is automatic
// here for any distribution Build produced.
func (d BlockDistribution) MinNonZero() (float64, bool) {
	if len(d) == 0 {
		return 0, false
	}
	return d[0].Gwei, true
}

// TotalCount sums the counts across all buckets.
func (d BlockDistribution) TotalCount() uint32 {
	var total uint32
	for _, b := range d {
		total += b.Count
	}
	return total
}

// Build constructs a BlockDistribution from a block's transactions,
// per spec.md §4.2:
//  1. skip transactions whose inclusion price would be zero,
//  2. compute the effective fee gwei (skip the tx, not the block, on error),
//  3. snap to the bucket boundary via floor,
//  4. accumulate counts,
//  5. return buckets sorted ascending by gwei.
func Build(txs []chaintypes.Transaction, baseFee *big.Int) BlockDistribution {
	buckets := make(map[float64]uint32)

	for _, tx := range txs {
		if isZeroPriced(tx) {
			continue
		}
		gwei, err := fee.EffectiveFeeGwei(tx.GasPrice, tx.MaxFeePerGas, tx.MaxPriorityFeePerGas, baseFee)
		if err != nil {
			distLog.Debug("skipping transaction with unparsable fee", "hash", tx.Hash, "err", err)
			continue
		}
		snapped := snap(gwei)
		buckets[snapped]++
	}

	if len(buckets) == 0 {
		return nil
	}

	out := make(BlockDistribution, 0, len(buckets))
	for gwei, count := range buckets {
		out = append(out, Bucket{Gwei: gwei, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Gwei < out[j].Gwei })
	return out
}

// isZeroPriced reports whether a transaction's inclusion price would be
// zero: a legacy gas_price of zero, or an EIP-1559 tx with no (or
// zero) priority fee.
func isZeroPriced(tx chaintypes.Transaction) bool {
	if tx.GasPrice != nil {
		return tx.GasPrice.Sign() == 0
	}
	return tx.MaxPriorityFeePerGas == nil || tx.MaxPriorityFeePerGas.Sign() == 0
}

// snap floors a gwei value to the nearest bucket boundary and rounds to
// 9 decimals to suppress float64 drift, per spec.md §4.2 step 3.
func snap(gwei float64) float64 {
	floored := floorTo(gwei, bucketSize)
	return round9(floored)
}

func floorTo(v, step float64) float64 {
	n := v / step
	// v is already a 9-decimal value, so n is within float64 drift of a
	// whole number; snap that drift away before flooring.
	if r := math.Round(n); math.Abs(n-r) < 1e-6 {
		n = r
	}
	whole := float64(int64(n))
	if n < 0 && whole != n {
		whole--
	}
	return whole * step
}

func round9(v float64) float64 {
	const scale = 1e9
	scaled := v * scale
	rounded := float64(int64(scaled + sign(scaled)*0.5))
	return rounded / scale
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
