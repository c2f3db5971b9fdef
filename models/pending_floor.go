package models

import (
	"math/big"

	"github.com/gasnetwork/agent/distribution"
	"github.com/gasnetwork/agent/fee"
	"github.com/gasnetwork/agent/payload"
)

// pendingFloorMarginWei is the 1-wei margin spec.md §4.5 adds on top of
// the pending pool's observed minimum, so the suggested price clears
// the cheapest currently-pending transaction rather than tying it.
const pendingFloorMarginWei = 1

// PendingFloor implements the "pending_floor" model: the minimum
// non-zero fee observed in the pending pool, plus a 1-wei margin. It is
// the only model that reads the pending slot rather than the block
// window, and the only one that reports SettlementImmediate.
type PendingFloor struct{}

func (PendingFloor) Apply(_ []distribution.BlockDistribution, pending *distribution.BlockDistribution, latestBlock uint64) (Result, error) {
	if pending == nil {
		return Result{}, errInsufficientData("pending_floor: no pending distribution observed")
	}
	min, ok := pending.MinNonZero()
	if !ok {
		return Result{}, errInsufficientData("pending_floor: pending pool has no priced transactions")
	}

	minWei := fee.GweiToWei(min)
	priceWei := new(big.Int).Add(minWei, big.NewInt(pendingFloorMarginWei))
	priceGwei, err := fee.WeiToGwei(priceWei)
	if err != nil {
		return Result{}, errComputation("pending_floor: " + err.Error())
	}

	return Result{
		PriceGwei:  round9(priceGwei),
		Settlement: payload.SettlementImmediate,
		FromBlock:  latestBlock + 1,
	}, nil
}
