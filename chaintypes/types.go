// Package chaintypes holds the block and transaction shapes the agent
// parses out of eth_getBlockByNumber / pending-block JSON-RPC responses.
package chaintypes

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// ErrMalformedTransaction is returned when a transaction carries neither
// a legacy gas_price nor a complete EIP-1559 fee pair, per spec.md §3.
var ErrMalformedTransaction = errors.New("chaintypes: malformed transaction: missing gas_price or max_fee/max_priority pair")

// BlockHeader is the subset of a block's header fields the prediction
// pipeline needs.
type BlockHeader struct {
	Number        uint64
	Timestamp     time.Time
	GasLimit      uint64
	GasUsed       uint64
	BaseFeePerGas *big.Int // nil if the chain predates EIP-1559 activation
}

// Transaction is the subset of transaction fields needed to compute an
// effective fee.
type Transaction struct {
	Hash                 string
	GasPrice             *big.Int // legacy pricing
	MaxFeePerGas         *big.Int // EIP-1559 pricing
	MaxPriorityFeePerGas *big.Int
}

// Validate enforces spec.md §3's Transaction validity rule.
func (t Transaction) Validate() error {
	if t.GasPrice != nil {
		return nil
	}
	if t.MaxFeePerGas != nil && t.MaxPriorityFeePerGas != nil {
		return nil
	}
	return ErrMalformedTransaction
}

// Block is a header plus its transactions.
type Block struct {
	BlockHeader
	Transactions []Transaction
}

// --- JSON-RPC hex decoding -------------------------------------------------
//
// All integer fields in eth_getBlockByNumber responses are "0x"-prefixed
// hex strings; timestamps are unix-seconds hex. Missing baseFeePerGas is
// legal and propagates as nil.

type rawBlock struct {
	Number           string          `json:"number"`
	Timestamp        string          `json:"timestamp"`
	GasLimit         string          `json:"gasLimit"`
	GasUsed          string          `json:"gasUsed"`
	BaseFeePerGas    *string         `json:"baseFeePerGas"`
	Transactions     []rawTransaction `json:"transactions"`
}

type rawTransaction struct {
	Hash                 string  `json:"hash"`
	GasPrice             *string `json:"gasPrice"`
	MaxFeePerGas         *string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *string `json:"maxPriorityFeePerGas"`
}

// ParseBlock decodes a full eth_getBlockByNumber("latest", true) result.
// A transaction that fails validation causes the whole block parse to
// fail, per spec.md §7 ("Malformed tx ... fail block parse; skip block
// ingest").
func ParseBlock(data []byte) (*Block, error) {
	var raw rawBlock
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("chaintypes: parse block: %w", err)
	}
	return raw.toBlock()
}

func (raw rawBlock) toBlock() (*Block, error) {
	number, err := parseHexUint64(raw.Number)
	if err != nil {
		return nil, fmt.Errorf("chaintypes: number: %w", err)
	}
	tsSecs, err := parseHexUint64(raw.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("chaintypes: timestamp: %w", err)
	}
	gasLimit, err := parseHexUint64(raw.GasLimit)
	if err != nil {
		return nil, fmt.Errorf("chaintypes: gasLimit: %w", err)
	}
	gasUsed, err := parseHexUint64(raw.GasUsed)
	if err != nil {
		return nil, fmt.Errorf("chaintypes: gasUsed: %w", err)
	}
	var baseFee *big.Int
	if raw.BaseFeePerGas != nil {
		baseFee, err = parseHexBigInt(*raw.BaseFeePerGas)
		if err != nil {
			return nil, fmt.Errorf("chaintypes: baseFeePerGas: %w", err)
		}
	}

	txs := make([]Transaction, 0, len(raw.Transactions))
	for i, rt := range raw.Transactions {
		tx, err := rt.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("chaintypes: tx[%d]: %w", i, err)
		}
		txs = append(txs, tx)
	}

	return &Block{
		BlockHeader: BlockHeader{
			Number:        number,
			Timestamp:     time.Unix(int64(tsSecs), 0).UTC(),
			GasLimit:      gasLimit,
			GasUsed:       gasUsed,
			BaseFeePerGas: baseFee,
		},
		Transactions: txs,
	}, nil
}

func (rt rawTransaction) toTransaction() (Transaction, error) {
	tx := Transaction{Hash: rt.Hash}
	var err error
	if rt.GasPrice != nil {
		tx.GasPrice, err = parseHexBigInt(*rt.GasPrice)
		if err != nil {
			return Transaction{}, err
		}
	}
	if rt.MaxFeePerGas != nil {
		tx.MaxFeePerGas, err = parseHexBigInt(*rt.MaxFeePerGas)
		if err != nil {
			return Transaction{}, err
		}
	}
	if rt.MaxPriorityFeePerGas != nil {
		tx.MaxPriorityFeePerGas, err = parseHexBigInt(*rt.MaxPriorityFeePerGas)
		if err != nil {
			return Transaction{}, err
		}
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// ParsePendingTransactions decodes the configurable pending-block RPC
// result, which carries a bare transaction array rather than a full
// block (spec.md §4.4).
func ParsePendingTransactions(data []byte) ([]Transaction, error) {
	var raws []rawTransaction
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("chaintypes: parse pending transactions: %w", err)
	}
	txs := make([]Transaction, 0, len(raws))
	for i, rt := range raws {
		tx, err := rt.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("chaintypes: pending tx[%d]: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func parseHexUint64(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return 0, errors.New("empty hex value")
	}
	var v big.Int
	if _, ok := v.SetString(s, 16); !ok {
		return 0, fmt.Errorf("invalid hex uint64 %q", s)
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("hex value %q overflows uint64", s)
	}
	return v.Uint64(), nil
}

func parseHexBigInt(s string) (*big.Int, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil, errors.New("empty hex value")
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex integer %q", s)
	}
	return v, nil
}
