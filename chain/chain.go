// Package chain identifies the EVM chains this agent can serve. A chain
// is the pair (System, Network); it resolves to a fixed chain id and a
// nominal block time used for adaptive polling.
package chain

import (
	"encoding/json"
	"fmt"
)

// System is the closed set of blockchain implementations this agent
// understands.
type System int

const (
	SystemUnknown System = iota
	SystemEthereum
	SystemBase
	SystemPolygon
)

// Network is the closed set of network tiers. Only mainnet is modeled;
// the type exists so config and wire payloads are forward-compatible
// with testnets without a breaking change.
type Network int

const (
	NetworkUnknown Network = iota
	NetworkMainnet
)

func (s System) String() string {
	switch s {
	case SystemEthereum:
		return "ethereum"
	case SystemBase:
		return "base"
	case SystemPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

func (n Network) String() string {
	switch n {
	case NetworkMainnet:
		return "mainnet"
	default:
		return "unknown"
	}
}

// ParseSystem parses the lowercase wire form of a System.
func ParseSystem(s string) (System, error) {
	switch s {
	case "ethereum":
		return SystemEthereum, nil
	case "base":
		return SystemBase, nil
	case "polygon":
		return SystemPolygon, nil
	default:
		return SystemUnknown, fmt.Errorf("chain: unknown system %q", s)
	}
}

// ParseNetwork parses the lowercase wire form of a Network.
func ParseNetwork(n string) (Network, error) {
	switch n {
	case "mainnet":
		return NetworkMainnet, nil
	default:
		return NetworkUnknown, fmt.Errorf("chain: unknown network %q", n)
	}
}

func (s System) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *System) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSystem(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (n Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

func (n *Network) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseNetwork(str)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// Key is the (System, Network) pair identifying one served chain.
type Key struct {
	System  System
	Network Network
}

// entry describes the fixed facts the agent knows about a chain.
type entry struct {
	chainID     uint64
	blockTimeMS uint64
}

var registry = map[Key]entry{
	{SystemEthereum, NetworkMainnet}: {chainID: 1, blockTimeMS: 12000},
	{SystemBase, NetworkMainnet}:     {chainID: 8453, blockTimeMS: 2000},
	{SystemPolygon, NetworkMainnet}:  {chainID: 137, blockTimeMS: 2000},
}

// ChainID returns the canonical EIP-155 chain id for this key, or an
// error if the (System, Network) pair is not a recognized combination.
func (k Key) ChainID() (uint64, error) {
	e, ok := registry[k]
	if !ok {
		return 0, fmt.Errorf("chain: no chain_id registered for %s/%s", k.System, k.Network)
	}
	return e.chainID, nil
}

// BlockTimeMS returns the nominal block production interval in
// milliseconds, used by the supervisor's adaptive block-poll pacing.
func (k Key) BlockTimeMS() (uint64, error) {
	e, ok := registry[k]
	if !ok {
		return 0, fmt.Errorf("chain: no block time registered for %s/%s", k.System, k.Network)
	}
	return e.blockTimeMS, nil
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.System, k.Network)
}
