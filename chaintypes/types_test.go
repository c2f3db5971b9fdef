package chaintypes

import (
	"math/big"
	"testing"
)

func TestTransactionValidateLegacy(t *testing.T) {
	tx := Transaction{GasPrice: big.NewInt(1)}
	if err := tx.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestTransactionValidate1559(t *testing.T) {
	tx := Transaction{MaxFeePerGas: big.NewInt(1), MaxPriorityFeePerGas: big.NewInt(1)}
	if err := tx.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestTransactionValidateMalformed(t *testing.T) {
	tx := Transaction{MaxFeePerGas: big.NewInt(1)}
	if err := tx.Validate(); err != ErrMalformedTransaction {
		t.Fatalf("got %v, want ErrMalformedTransaction", err)
	}
}

func TestParseBlock(t *testing.T) {
	data := []byte(`{
		"number": "0x64",
		"timestamp": "0x6123abcd",
		"gasLimit": "0x1c9c380",
		"gasUsed": "0xe4e1c0",
		"baseFeePerGas": "0x3b9aca00",
		"transactions": [
			{"hash": "0xaaa", "gasPrice": "0x37e11d600"},
			{"hash": "0xbbb", "maxFeePerGas": "0x6fc23ac00", "maxPriorityFeePerGas": "0x77359400"}
		]
	}`)
	b, err := ParseBlock(data)
	if err != nil {
		t.Fatal(err)
	}
	if b.Number != 100 {
		t.Errorf("number = %d, want 100", b.Number)
	}
	if b.BaseFeePerGas.Cmp(big.NewInt(1_000_000_000)) != 0 {
		t.Errorf("base fee = %v, want 1e9", b.BaseFeePerGas)
	}
	if len(b.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(b.Transactions))
	}
}

func TestParseBlockMissingBaseFee(t *testing.T) {
	data := []byte(`{"number":"0x1","timestamp":"0x1","gasLimit":"0x1","gasUsed":"0x0","transactions":[]}`)
	b, err := ParseBlock(data)
	if err != nil {
		t.Fatal(err)
	}
	if b.BaseFeePerGas != nil {
		t.Errorf("expected nil base fee, got %v", b.BaseFeePerGas)
	}
}

func TestParseBlockMalformedTxFailsWholeParse(t *testing.T) {
	data := []byte(`{"number":"0x1","timestamp":"0x1","gasLimit":"0x1","gasUsed":"0x0","transactions":[{"hash":"0xbad"}]}`)
	if _, err := ParseBlock(data); err == nil {
		t.Fatal("expected error for malformed transaction")
	}
}

func TestParsePendingTransactions(t *testing.T) {
	data := []byte(`[{"hash":"0xaaa","gasPrice":"0x1"}]`)
	txs, err := ParsePendingTransactions(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d, want 1", len(txs))
	}
}
