package distribution

import (
	"math/big"
	"testing"

	"github.com/gasnetwork/agent/chaintypes"
)

func gwei(n int64) *big.Int { return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000)) }

func TestBuildZeroPriceExclusion(t *testing.T) {
	txs := []chaintypes.Transaction{
		{Hash: "a", GasPrice: gwei(15)},
		{Hash: "b", GasPrice: gwei(20)},
		{Hash: "c", GasPrice: gwei(0)},
	}
	d := Build(txs, gwei(10))
	if len(d) != 2 {
		t.Fatalf("got %d buckets, want 2", len(d))
	}
	if d[0].Gwei != 15.0 || d[1].Gwei != 20.0 {
		t.Errorf("got %+v, want [15.0, 20.0]", d)
	}
}

func TestBuild1559Tip(t *testing.T) {
	txs := []chaintypes.Transaction{
		{Hash: "a", MaxFeePerGas: gwei(30), MaxPriorityFeePerGas: gwei(2)},
		{Hash: "b", GasPrice: gwei(25)},
	}
	d := Build(txs, gwei(10))
	if len(d) != 2 {
		t.Fatalf("got %d buckets, want 2: %+v", len(d), d)
	}
	if d[0].Gwei != 2.0 || d[1].Gwei != 25.0 {
		t.Errorf("got %+v, want [2.0, 25.0]", d)
	}
}

func TestBuildEmptyDistributionIsLegal(t *testing.T) {
	txs := []chaintypes.Transaction{{Hash: "a", GasPrice: gwei(0)}}
	d := Build(txs, gwei(10))
	if d != nil {
		t.Errorf("expected nil (empty) distribution, got %+v", d)
	}
}

func TestBuildSkipsUnparsableTxWithoutFailingBlock(t *testing.T) {
	txs := []chaintypes.Transaction{
		{Hash: "bad", MaxFeePerGas: gwei(5), MaxPriorityFeePerGas: gwei(1)}, // maxFee < baseFee(10) -> skipped
		{Hash: "good", GasPrice: gwei(7)},
	}
	d := Build(txs, gwei(10))
	if len(d) != 1 || d[0].Gwei != 7.0 {
		t.Errorf("got %+v, want single bucket at 7.0", d)
	}
}

func TestBuildBucketsSortedAscendingUniqueKeys(t *testing.T) {
	txs := []chaintypes.Transaction{
		{Hash: "a", GasPrice: gwei(5)},
		{Hash: "b", GasPrice: gwei(5)},
		{Hash: "c", GasPrice: gwei(3)},
	}
	d := Build(txs, gwei(1))
	if len(d) != 2 {
		t.Fatalf("got %d, want 2", len(d))
	}
	if d[0].Gwei != 3.0 || d[1].Gwei != 5.0 {
		t.Errorf("not sorted ascending: %+v", d)
	}
	if d[1].Count != 2 {
		t.Errorf("duplicate gwei should accumulate count, got %d", d[1].Count)
	}
}

func TestMinNonZero(t *testing.T) {
	var empty BlockDistribution
	if _, ok := empty.MinNonZero(); ok {
		t.Error("expected ok=false for empty distribution")
	}
	d := BlockDistribution{{Gwei: 3, Count: 1}, {Gwei: 8, Count: 1}}
	v, ok := d.MinNonZero()
	if !ok || v != 3 {
		t.Errorf("got %v, %v, want 3, true", v, ok)
	}
}
