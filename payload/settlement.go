package payload

import (
	"encoding/json"
	"fmt"
)

// Settlement is the target inclusion latency a prediction is made for.
// Design anchors (spec.md §3): immediate = next block, fast = 15s,
// medium = 15min, slow = 1h.
type Settlement int

const (
	SettlementUnknown Settlement = iota
	SettlementImmediate
	SettlementFast
	SettlementMedium
	SettlementSlow
)

func (s Settlement) String() string {
	switch s {
	case SettlementImmediate:
		return "immediate"
	case SettlementFast:
		return "fast"
	case SettlementMedium:
		return "medium"
	case SettlementSlow:
		return "slow"
	default:
		return "unknown"
	}
}

// ParseSettlement parses the lowercase wire form of a Settlement.
func ParseSettlement(s string) (Settlement, error) {
	switch s {
	case "immediate":
		return SettlementImmediate, nil
	case "fast":
		return SettlementFast, nil
	case "medium":
		return SettlementMedium, nil
	case "slow":
		return SettlementSlow, nil
	default:
		return SettlementUnknown, fmt.Errorf("payload: unknown settlement %q", s)
	}
}

func (s Settlement) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Settlement) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSettlement(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
