package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tensorplex-labs/reviewsim/internal/reputation"
	"github.com/tensorplex-labs/reviewsim/internal/scoring"
	"github.com/tensorplex-labs/reviewsim/internal/simulator"
)

// Overrides replace individual preset values. Nil fields keep the preset's.
type Overrides struct {
	BaseStake          *float64 `yaml:"base_stake,omitempty" json:"base_stake,omitempty"`
	ProjectPool        *float64 `yaml:"project_pool,omitempty" json:"project_pool,omitempty"`
	ReviewsPerCycle    *int     `yaml:"reviews_per_cycle,omitempty" json:"reviews_per_cycle,omitempty"`
	TotalReviewers     *int     `yaml:"total_reviewers,omitempty" json:"total_reviewers,omitempty"`
	TokenHoldings      *float64 `yaml:"token_holdings,omitempty" json:"token_holdings,omitempty"`
	StartingReputation *float64 `yaml:"starting_reputation,omitempty" json:"starting_reputation,omitempty"`
	AvgReviewTime      *float64 `yaml:"avg_review_time,omitempty" json:"avg_review_time,omitempty"`
	TotalHoldings      *float64 `yaml:"total_holdings,omitempty" json:"total_holdings,omitempty"`
}

func (o Overrides) apply(p *simulator.Params) {
	setFloat(&p.BaseStake, o.BaseStake)
	setFloat(&p.ProjectPool, o.ProjectPool)
	setInt(&p.ReviewsPerCycle, o.ReviewsPerCycle)
	setInt(&p.TotalReviewers, o.TotalReviewers)
	setFloat(&p.TokenHoldings, o.TokenHoldings)
	setFloat(&p.StartingReputation, o.StartingReputation)
	setFloat(&p.AvgReviewTime, o.AvgReviewTime)
	setFloat(&p.TotalHoldings, o.TotalHoldings)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// Scenario is everything needed to reproduce one simulation. Empty fields
// fall back to SimEnvConfig.
type Scenario struct {
	Name             string                `yaml:"name,omitempty"`
	Preset           string                `yaml:"preset,omitempty"`
	WeightSystem     string                `yaml:"weight_system,omitempty"`
	Weights          *scoring.WeightConfig `yaml:"weights,omitempty"`
	NormalizeWeights bool                  `yaml:"normalize_weights,omitempty"`
	GrowthLaw        string                `yaml:"growth_law,omitempty"`
	RewardModel      string                `yaml:"reward_model,omitempty"`
	Horizon          int                   `yaml:"horizon,omitempty"`
	CycleLengthDays  float64               `yaml:"cycle_length_days,omitempty"`
	MaxReputation    float64               `yaml:"max_reputation,omitempty"`
	Seed             *uint64               `yaml:"seed,omitempty"`
	Luck             *simulator.Luck       `yaml:"luck,omitempty"`
	Overrides        Overrides             `yaml:"overrides,omitempty"`
}

// LoadScenario reads a YAML scenario file. Unknown keys are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	s, err := ParseScenario(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return s, nil
}

func ParseScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	s := &Scenario{}
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return s, nil
}

// Deterministic reports whether two runs of the scenario yield the same
// records.
func (s *Scenario) Deterministic() bool {
	return s.Luck == nil || s.Seed != nil
}

// Resolve turns the scenario into engine parameters and simulator options.
// A custom weight configuration is passed through unvalidated; the run
// reports it as a halt. With NormalizeWeights set it is first rescaled to
// sum to 1.
func (s *Scenario) Resolve(defaults SimEnvConfig) (simulator.Params, []simulator.Option, error) {
	preset := firstNonEmpty(s.Preset, defaults.Preset, PresetCasual)
	p, err := LookupPreset(preset)
	if err != nil {
		return simulator.Params{}, nil, err
	}
	params := p.Params
	s.Overrides.apply(&params)

	if s.Weights != nil {
		params.WeightConfig = *s.Weights
		if s.NormalizeWeights {
			params.WeightConfig = s.Weights.Normalized()
		}
	} else {
		ws, err := scoring.LookupWeightSystem(firstNonEmpty(s.WeightSystem, defaults.WeightSystem, scoring.SystemCurrent))
		if err != nil {
			return simulator.Params{}, nil, err
		}
		params.WeightConfig = ws
	}

	law, err := reputation.LookupLaw(firstNonEmpty(s.GrowthLaw, defaults.GrowthLaw))
	if err != nil {
		return simulator.Params{}, nil, err
	}
	model, err := simulator.LookupRewardModel(firstNonEmpty(s.RewardModel, defaults.RewardModel))
	if err != nil {
		return simulator.Params{}, nil, err
	}

	opts := []simulator.Option{
		simulator.WithGrowthLaw(law),
		simulator.WithRewardModel(model),
	}
	if h := firstNonZero(s.Horizon, defaults.Horizon); h != 0 {
		opts = append(opts, simulator.WithHorizon(h))
	}
	if d := firstNonZero(s.CycleLengthDays, defaults.CycleLengthDays); d != 0 {
		opts = append(opts, simulator.WithCycleLength(d))
	}
	if m := firstNonZero(s.MaxReputation, defaults.MaxReputation); m != 0 {
		opts = append(opts, simulator.WithMaxReputation(m))
	}
	if s.Seed != nil {
		opts = append(opts, simulator.WithSeed(*s.Seed))
	}
	if s.Luck != nil {
		opts = append(opts, simulator.WithLuck(s.Luck.Min, s.Luck.Max))
	}
	return params, opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero[T int | float64](values ...T) T {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
