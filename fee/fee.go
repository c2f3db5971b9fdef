// Package fee implements wei/gwei conversions and the EIP-1559 fee
// arithmetic the rest of the agent builds on: the effective tip a
// transaction pays, and the base fee the next block will carry.
package fee

import (
	"errors"
	"math/big"
)

// ErrInvalidData marks an input that fails the EIP-1559 validity rule
// spec.md §4.1 requires: missing fields or max_fee below base_fee.
var ErrInvalidData = errors.New("fee: invalid data")

var (
	weiPerGwei  = big.NewInt(1_000_000_000)
	gweiScaleDP = big.NewRat(1, 1_000_000_000)
)

// WeiToGwei performs an exact decimal division of wei by 10^9, rounded
// half-even to 9 decimal places, then narrows to float64. The half-even
// rounding and 9dp cap keep every bucket boundary computed downstream a
// clean multiple of 10^-9 gwei (1 wei), per spec.md's bucket-resolution
// invariant.
func WeiToGwei(wei *big.Int) (float64, error) {
	if wei == nil {
		return 0, errors.New("fee: nil wei amount")
	}
	r := new(big.Rat).SetInt(wei)
	r.Mul(r, gweiScaleDP)
	return roundHalfEven9(r), nil
}

// roundHalfEven9 rounds a rational to 9 decimal places using
// round-half-to-even, then returns it as a float64.
func roundHalfEven9(r *big.Rat) float64 {
	const scale = 1_000_000_000 // 10^9
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt64(scale))

	num := scaled.Num()
	den := scaled.Denom()

	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	twiceRem := new(big.Int).Mul(rem, big.NewInt(2))
	twiceRem.Abs(twiceRem)

	cmp := twiceRem.Cmp(den)
	if cmp > 0 || (cmp == 0 && q.Bit(0) == 1) {
		if num.Sign() >= 0 {
			q.Add(q, big.NewInt(1))
		} else {
			q.Sub(q, big.NewInt(1))
		}
	}

	result := new(big.Rat).SetFrac(q, big.NewInt(scale))
	f, _ := result.Float64()
	return f
}

// EffectiveFeeGwei computes the effective price gwei a transaction pays,
// per spec.md §4.1. If gasPrice is non-nil it is used directly
// (legacy transaction). Otherwise maxFee, maxPriority, and baseFee must
// all be present; the effective tip is min(maxPriority, maxFee-baseFee).
func EffectiveFeeGwei(gasPrice, maxFee, maxPriority, baseFee *big.Int) (float64, error) {
	if gasPrice != nil {
		return WeiToGwei(gasPrice)
	}
	if maxFee == nil || maxPriority == nil || baseFee == nil {
		return 0, ErrInvalidData
	}
	if maxFee.Cmp(baseFee) < 0 {
		return 0, ErrInvalidData
	}
	headroom := new(big.Int).Sub(maxFee, baseFee)
	tip := maxPriority
	if headroom.Cmp(maxPriority) < 0 {
		tip = headroom
	}
	return WeiToGwei(tip)
}

// NextBaseFee implements the EIP-1559 base fee update rule with
// ELASTICITY=2, DENOMINATOR=8. Returns (nil, false) if the parent has no
// base fee (pre-London header).
func NextBaseFee(parentBaseFee *big.Int, gasLimit, gasUsed uint64) (*big.Int, bool) {
	if parentBaseFee == nil {
		return nil, false
	}
	target := gasLimit / 2
	if target == 0 {
		return new(big.Int).Set(parentBaseFee), true
	}

	if gasUsed == target {
		return new(big.Int).Set(parentBaseFee), true
	}

	if gasUsed > target {
		gasDelta := gasUsed - target
		delta := new(big.Int).Mul(parentBaseFee, big.NewInt(int64(gasDelta)))
		delta.Div(delta, big.NewInt(int64(target)))
		delta.Div(delta, big.NewInt(8))
		if delta.Sign() == 0 {
			delta = big.NewInt(1)
		}
		return new(big.Int).Add(parentBaseFee, delta), true
	}

	gasDelta := target - gasUsed
	delta := new(big.Int).Mul(parentBaseFee, big.NewInt(int64(gasDelta)))
	delta.Div(delta, big.NewInt(int64(target)))
	delta.Div(delta, big.NewInt(8))
	next := new(big.Int).Sub(parentBaseFee, delta)
	if next.Sign() < 0 {
		next = big.NewInt(0)
	}
	return next, true
}

// GweiToWei is the inverse of WeiToGwei to 9 decimal places, used by
// tests and by models that must hand a gwei result back as wei for the
// oracle binary record.
func GweiToWei(gwei float64) *big.Int {
	r := new(big.Rat).SetFloat64(gwei)
	if r == nil {
		return big.NewInt(0)
	}
	r.Mul(r, new(big.Rat).SetInt(weiPerGwei))
	num := new(big.Int).Quo(r.Num(), r.Denom())
	return num
}
