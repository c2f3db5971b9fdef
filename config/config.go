// Package config defines and validates the agent's JSON configuration:
// one entry per chain to monitor, each carrying the list of prediction
// agents it runs and, optionally, a separate pending-transaction data
// source. Adapted from the teacher's node config_loader.go and
// config_manager.go defaults/validation pattern.
package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gasnetwork/agent/chain"
	"github.com/gasnetwork/agent/models"
)

// TriggerKind is the closed set of ways a prediction agent can be
// scheduled, per spec.md §3's `Trigger = Block | Poll{rate_ms}`.
type TriggerKind int

const (
	TriggerUnknown TriggerKind = iota
	TriggerBlock
	TriggerPoll
)

// Trigger is the tagged union deciding when an agent's create_prediction
// runs: on every accepted block, or on a fixed-rate poll independent of
// block production.
type Trigger struct {
	Kind   TriggerKind
	RateMS int
}

// triggerWire is Trigger's JSON shape: {"type":"block"} or
// {"type":"poll","rate_ms":5000}.
type triggerWire struct {
	Type   string `json:"type"`
	RateMS int    `json:"rate_ms,omitempty"`
}

func (t Trigger) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TriggerBlock:
		return json.Marshal(triggerWire{Type: "block"})
	case TriggerPoll:
		return json.Marshal(triggerWire{Type: "poll", RateMS: t.RateMS})
	default:
		return nil, fmt.Errorf("config: trigger has no kind set")
	}
}

func (t *Trigger) UnmarshalJSON(data []byte) error {
	var w triggerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "block":
		*t = Trigger{Kind: TriggerBlock}
	case "poll":
		*t = Trigger{Kind: TriggerPoll, RateMS: w.RateMS}
	default:
		return fmt.Errorf("config: unknown trigger type %q", w.Type)
	}
	return nil
}

// Validate checks a Trigger for correctness: a Poll trigger's RateMS must
// be positive. ParseChains runs ApplyDefaults first, so a Poll trigger
// that omitted rate_ms already carries the default rate here.
func (t Trigger) Validate() error {
	switch t.Kind {
	case TriggerBlock:
		return nil
	case TriggerPoll:
		if t.RateMS <= 0 {
			return fmt.Errorf("config: poll trigger rate_ms must be positive")
		}
		return nil
	default:
		return fmt.Errorf("config: trigger must be \"block\" or \"poll\"")
	}
}

// AgentConfig describes one prediction agent running on a chain:
// spec.md §3's `AgentConfig { kind, signer_key, trigger }`. Node/Target
// agent kinds are an open question resolved in DESIGN.md; Kind here is
// always a ModelKind.
type AgentConfig struct {
	Kind      models.Kind `json:"kind"`
	SignerKey string      `json:"signer_key"`
	Trigger   Trigger     `json:"trigger"`
}

// ApplyDefaults fills in a Poll trigger's rate_ms from
// defaultPollIntervalSeconds when the agent didn't specify one.
func (a *AgentConfig) ApplyDefaults() {
	if a.Trigger.Kind == TriggerPoll && a.Trigger.RateMS == 0 {
		a.Trigger.RateMS = defaultPollIntervalSeconds * 1000
	}
}

// Validate checks an AgentConfig for correctness.
func (a *AgentConfig) Validate() error {
	if a.Kind == models.KindUnknown {
		return fmt.Errorf("config: agent kind must be set")
	}
	if a.SignerKey == "" {
		return fmt.Errorf("config: agent signer_key must not be empty")
	}
	if _, err := hex.DecodeString(trimHexPrefix(a.SignerKey)); err != nil {
		return fmt.Errorf("config: agent signer_key must be hex-encoded: %w", err)
	}
	if err := a.Trigger.Validate(); err != nil {
		return err
	}
	return nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// PendingBlockDataSource describes an optional, independently-polled
// source of pending-transaction data, per spec.md §3: it may point at a
// different endpoint than the chain's json_rpc_url entirely (e.g. a
// private mempool API), with its own request method, parameters, and
// poll rate.
type PendingBlockDataSource struct {
	URL        string        `json:"url"`
	Method     string        `json:"method"`
	Params     []interface{} `json:"params,omitempty"`
	PollRateMS int           `json:"poll_rate_ms,omitempty"`
}

// ApplyDefaults fills in PollRateMS when unset.
func (p *PendingBlockDataSource) ApplyDefaults() {
	if p.PollRateMS == 0 {
		p.PollRateMS = defaultPollIntervalSeconds * 1000
	}
}

// Validate checks a PendingBlockDataSource for correctness.
func (p *PendingBlockDataSource) Validate() error {
	if p.URL == "" {
		return fmt.Errorf("config: pending_block_data_source.url must not be empty")
	}
	if p.Method == "" {
		return fmt.Errorf("config: pending_block_data_source.method must not be empty")
	}
	if p.PollRateMS <= 0 {
		return fmt.Errorf("config: pending_block_data_source.poll_rate_ms must be positive")
	}
	return nil
}

// ChainConfig describes a single chain the agent monitors.
type ChainConfig struct {
	System                 chain.System            `json:"system"`
	Network                chain.Network           `json:"network"`
	JSONRPCURL             string                  `json:"json_rpc_url"`
	PendingBlockDataSource *PendingBlockDataSource `json:"pending_block_data_source,omitempty"`
	Agents                 []AgentConfig           `json:"agents"`
	InFlightCap            int                     `json:"in_flight_cap,omitempty"`
}

// defaultInFlightCap is the default N=4 cap on concurrent prediction
// tasks. The supervisor applies it per chain: all agents of a chain
// share one pool of InFlightCap slots.
const defaultInFlightCap = 4

// defaultPollIntervalSeconds is the fixed-rate cadence assumed for a
// Poll trigger or a pending_block_data_source that doesn't specify its
// own rate.
const defaultPollIntervalSeconds = 12

// ApplyDefaults fills in zero-valued optional fields, recursing into
// every agent and the pending data source.
func (c *ChainConfig) ApplyDefaults() {
	if c.InFlightCap == 0 {
		c.InFlightCap = defaultInFlightCap
	}
	for i := range c.Agents {
		c.Agents[i].ApplyDefaults()
	}
	if c.PendingBlockDataSource != nil {
		c.PendingBlockDataSource.ApplyDefaults()
	}
}

// Validate checks a ChainConfig for correctness.
func (c *ChainConfig) Validate() error {
	if c.System == chain.SystemUnknown {
		return fmt.Errorf("config: chain system must be set")
	}
	if c.Network == chain.NetworkUnknown {
		return fmt.Errorf("config: chain network must be set")
	}
	if c.JSONRPCURL == "" {
		return fmt.Errorf("config: json_rpc_url must not be empty")
	}
	if len(c.Agents) == 0 {
		return fmt.Errorf("config: at least one agent must be configured")
	}
	for i := range c.Agents {
		if err := c.Agents[i].Validate(); err != nil {
			return err
		}
	}
	if c.PendingBlockDataSource != nil {
		if err := c.PendingBlockDataSource.Validate(); err != nil {
			return err
		}
	}
	if c.InFlightCap < 0 {
		return fmt.Errorf("config: in_flight_cap must not be negative")
	}
	return nil
}

// Key returns the chain.Key this configuration identifies.
func (c *ChainConfig) Key() chain.Key {
	return chain.Key{System: c.System, Network: c.Network}
}

// OperationalConfig holds the ambient stack's settings: where the ops
// server binds, where signed payloads are published, and whether
// Prometheus metrics are exposed. These are supplied on the command
// line (spec.md §6), not as part of the --chains JSON.
type OperationalConfig struct {
	ServerAddress     string
	CollectorEndpoint string
	MetricsEnabled    bool
}

// DefaultServerAddress and DefaultCollectorEndpoint are the --start
// command's documented defaults, per spec.md §6.
const (
	DefaultServerAddress     = "0.0.0.0:8080"
	DefaultCollectorEndpoint = "https://collector.gas.network"
)

// ParseChains parses and validates the JSON list of ChainConfig the
// --chains flag carries directly (spec.md §6): not a config file path,
// the flag's value itself is the JSON document.
func ParseChains(data []byte) ([]ChainConfig, error) {
	var chains []ChainConfig
	if err := json.Unmarshal(data, &chains); err != nil {
		return nil, fmt.Errorf("config: parse --chains: %w", err)
	}
	if len(chains) == 0 {
		return nil, fmt.Errorf("config: at least one chain must be configured")
	}
	seen := make(map[chain.Key]bool, len(chains))
	for i := range chains {
		chains[i].ApplyDefaults()
		if err := chains[i].Validate(); err != nil {
			return nil, err
		}
		key := chains[i].Key()
		if seen[key] {
			return nil, fmt.Errorf("config: duplicate chain %s", key)
		}
		seen[key] = true
	}
	return chains, nil
}
