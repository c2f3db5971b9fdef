// Package payload defines the agent's output record and the two wire
// encodings it travels in: the JSON AgentPayload published to the
// collector for EIP-712 signing, and the fixed-width SignedOraclePayloadV2
// binary envelope the oracle network consumes (spec.md §4.6).
package payload

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/gasnetwork/agent/chain"
)

// CurrentSchemaVersion is the only schema_version this agent emits.
const CurrentSchemaVersion = "1"

// AgentPayload is a single model's prediction, ready for EIP-712 typed
// signing and collector submission. Field order matches spec.md §3.
// Price is carried in wei, not gwei: the collector and oracle network
// both expect a u256 wei integer on the wire.
type AgentPayload struct {
	SchemaVersion string        `json:"schema_version"`
	FromBlock     uint64        `json:"from_block"`
	Settlement    Settlement    `json:"settlement"`
	Timestamp     time.Time     `json:"timestamp"`
	System        chain.System  `json:"system"`
	Network       chain.Network `json:"network"`
	PriceWei      *big.Int      `json:"price"`
}

// TimestampNanos returns the timestamp as nanoseconds since the Unix
// epoch, the encoding spec.md §4.6 uses in the EIP-712 struct hash.
func (p AgentPayload) TimestampNanos() int64 {
	return p.Timestamp.UTC().UnixNano()
}

// MarshalJSON is the wire form exchanged with the collector: timestamps
// as RFC3339Nano (preserving the nanosecond precision spec.md §3
// requires), price as a decimal wei string.
func (p AgentPayload) MarshalJSON() ([]byte, error) {
	type alias AgentPayload
	price := "0"
	if p.PriceWei != nil {
		price = p.PriceWei.String()
	}
	return json.Marshal(struct {
		alias
		Timestamp string `json:"timestamp"`
		Price     string `json:"price"`
	}{
		alias:     alias(p),
		Timestamp: p.Timestamp.UTC().Format(time.RFC3339Nano),
		Price:     price,
	})
}

func (p *AgentPayload) UnmarshalJSON(data []byte) error {
	type alias AgentPayload
	aux := struct {
		*alias
		Timestamp string `json:"timestamp"`
		Price     string `json:"price"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	ts, err := time.Parse(time.RFC3339Nano, aux.Timestamp)
	if err != nil {
		return err
	}
	price, ok := new(big.Int).SetString(aux.Price, 10)
	if !ok {
		return &json.UnsupportedValueError{Str: aux.Price}
	}
	p.Timestamp = ts
	p.PriceWei = price
	return nil
}
