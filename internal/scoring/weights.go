package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrInvalidWeights      = errors.New("invalid weight configuration")
	ErrUnknownWeightSystem = errors.New("unknown weight system")
)

const (
	SystemCurrent   = "current"
	SystemCommunity = "community"
)

// Weight binds a fractional weight to a factor.
type Weight struct {
	Factor Factor  `json:"factor" yaml:"factor"`
	Value  float64 `json:"value" yaml:"value"`
}

// WeightConfig is an ordered set of named weights. Order is kept so the
// weighted sum is evaluated the same way on every run.
type WeightConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Weights     []Weight `json:"weights" yaml:"weights"`
}

func CurrentWeights() WeightConfig {
	return WeightConfig{
		Name:        SystemCurrent,
		Description: "Reputation and stake weighted equally, with timing, holdings and stake ratio as tie-breakers.",
		Weights: []Weight{
			{Factor: FactorReputation, Value: 0.40},
			{Factor: FactorStake, Value: 0.40},
			{Factor: FactorTiming, Value: 0.10},
			{Factor: FactorHoldings, Value: 0.05},
			{Factor: FactorConfidence, Value: 0.05},
		},
	}
}

func CommunityWeights() WeightConfig {
	return WeightConfig{
		Name:        SystemCommunity,
		Description: "Direct participation and project impact ahead of stake.",
		Weights: []Weight{
			{Factor: FactorCommunity, Value: 0.50},
			{Factor: FactorImpact, Value: 0.25},
			{Factor: FactorStaking, Value: 0.15},
			{Factor: FactorRanking, Value: 0.10},
		},
	}
}

// WeightSystems lists the built-in weight systems.
func WeightSystems() []WeightConfig {
	return []WeightConfig{CurrentWeights(), CommunityWeights()}
}

// LookupWeightSystem returns the built-in weight system with the given name.
func LookupWeightSystem(name string) (WeightConfig, error) {
	for _, ws := range WeightSystems() {
		if strings.EqualFold(ws.Name, name) {
			return ws, nil
		}
	}
	return WeightConfig{}, fmt.Errorf("%w: %q", ErrUnknownWeightSystem, name)
}

func (w WeightConfig) Values() []float64 {
	values := make([]float64, len(w.Weights))
	for i, wt := range w.Weights {
		values[i] = wt.Value
	}
	return values
}

func (w WeightConfig) Factors() []Factor {
	factors := make([]Factor, len(w.Weights))
	for i, wt := range w.Weights {
		factors[i] = wt.Factor
	}
	return factors
}

func (w WeightConfig) Sum() float64 {
	return floats.Sum(w.Values())
}

// Validate checks that the weights are non-empty, unique, non-negative and sum
// to 1.0 within WeightTolerance.
func (w WeightConfig) Validate() error {
	if len(w.Weights) == 0 {
		return fmt.Errorf("%w: no weights", ErrInvalidWeights)
	}

	seen := make(map[Factor]bool, len(w.Weights))
	for _, wt := range w.Weights {
		if wt.Factor == "" {
			return fmt.Errorf("%w: empty factor name", ErrInvalidWeights)
		}
		if seen[wt.Factor] {
			return fmt.Errorf("%w: duplicate factor %q", ErrInvalidWeights, wt.Factor)
		}
		seen[wt.Factor] = true

		if wt.Value < 0 || math.IsNaN(wt.Value) || math.IsInf(wt.Value, 0) {
			return fmt.Errorf("%w: factor %q has weight %v", ErrInvalidWeights, wt.Factor, wt.Value)
		}
	}

	if sum := w.Sum(); math.Abs(sum-1.0) > WeightTolerance {
		return fmt.Errorf("%w: weights sum to %.12f, must sum to 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

// Normalized rescales the weights so they sum to 1.0, keeping factor order.
// Weights that sum to zero are returned unchanged and still fail Validate.
func (w WeightConfig) Normalized() WeightConfig {
	scaled := scaleToUnitSum(w.Values())

	out := WeightConfig{
		Name:        w.Name,
		Description: w.Description,
		Weights:     make([]Weight, len(w.Weights)),
	}
	for i, wt := range w.Weights {
		out.Weights[i] = Weight{Factor: wt.Factor, Value: scaled[i]}
	}
	return out
}
