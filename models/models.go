// Package models implements the six pluggable prediction algorithms
// described in spec.md §4.5. Every model shares the Apply signature and
// rounds its numeric output to 9 decimal places.
package models

import (
	"encoding/json"
	"errors"

	"github.com/gasnetwork/agent/distribution"
	"github.com/gasnetwork/agent/payload"
)

// Kind is the closed set of model identifiers an AgentConfig can select.
type Kind int

const (
	KindUnknown Kind = iota
	KindAdaptiveThreshold
	KindDistributionAnalysis
	KindMovingAverage
	KindPercentile
	KindTimeSeries
	KindLastMin
	KindPendingFloor
)

func (k Kind) String() string {
	switch k {
	case KindAdaptiveThreshold:
		return "adaptive_threshold"
	case KindDistributionAnalysis:
		return "distribution_analysis"
	case KindMovingAverage:
		return "moving_average"
	case KindPercentile:
		return "percentile"
	case KindTimeSeries:
		return "time_series"
	case KindLastMin:
		return "last_min"
	case KindPendingFloor:
		return "pending_floor"
	default:
		return "unknown"
	}
}

// ParseKind parses the lowercase wire form of a model Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "adaptive_threshold":
		return KindAdaptiveThreshold, nil
	case "distribution_analysis":
		return KindDistributionAnalysis, nil
	case "moving_average":
		return KindMovingAverage, nil
	case "percentile":
		return KindPercentile, nil
	case "time_series":
		return KindTimeSeries, nil
	case "last_min":
		return KindLastMin, nil
	case "pending_floor":
		return KindPendingFloor, nil
	default:
		return KindUnknown, errors.New("models: unknown model kind " + s)
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseKind(str)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ErrorKind distinguishes the sum type spec.md §9 describes: only
// InsufficientData is silently skipped by the supervisor (logged at
// debug); InvalidData and Computation propagate as logged errors.
type ErrorKind int

const (
	InsufficientData ErrorKind = iota
	InvalidData
	Computation
)

// ModelError is the error type every Apply implementation returns on
// failure.
type ModelError struct {
	Kind ErrorKind
	Msg  string
}

func (e *ModelError) Error() string { return e.Msg }

func errInsufficientData(msg string) *ModelError { return &ModelError{Kind: InsufficientData, Msg: msg} }
func errInvalidData(msg string) *ModelError      { return &ModelError{Kind: InvalidData, Msg: msg} }
func errComputation(msg string) *ModelError      { return &ModelError{Kind: Computation, Msg: msg} }

// IsInsufficientData reports whether err is a ModelError carrying
// InsufficientData, the only kind the supervisor treats as routine.
func IsInsufficientData(err error) bool {
	var me *ModelError
	if errors.As(err, &me) {
		return me.Kind == InsufficientData
	}
	return false
}

// Result is what every model produces: the suggested price in gwei,
// the settlement class it targets, and the block height the prediction
// is valid from.
type Result struct {
	PriceGwei  float64
	Settlement payload.Settlement
	FromBlock  uint64
}

// Model is implemented by each of the six algorithms.
type Model interface {
	Apply(distributions []distribution.BlockDistribution, pending *distribution.BlockDistribution, latestBlock uint64) (Result, error)
}

// For returns the model selected by kind.
func For(kind Kind) (Model, error) {
	switch kind {
	case KindAdaptiveThreshold:
		return AdaptiveThreshold{}, nil
	case KindDistributionAnalysis:
		return DistributionAnalysis{}, nil
	case KindMovingAverage:
		return MovingAverage{}, nil
	case KindPercentile:
		return Percentile{}, nil
	case KindTimeSeries:
		return TimeSeries{}, nil
	case KindLastMin:
		return LastMin{}, nil
	case KindPendingFloor:
		return PendingFloor{}, nil
	default:
		return nil, errors.New("models: no implementation for kind " + kind.String())
	}
}

// round9 rounds a float64 to 9 decimal places, the precision every
// model output is specified at.
func round9(v float64) float64 {
	const scale = 1e9
	scaled := v * scale
	s := 1.0
	if scaled < 0 {
		s = -1.0
	}
	rounded := float64(int64(scaled + s*0.5))
	return rounded / scale
}

// nonPendingResult fills in the from_block = latest+1, settlement =
// Fast convention spec.md §4.5 fixes for every model except
// pending_floor.
func nonPendingResult(priceGwei float64, latestBlock uint64) Result {
	return Result{
		PriceGwei:  round9(priceGwei),
		Settlement: payload.SettlementFast,
		FromBlock:  latestBlock + 1,
	}
}
