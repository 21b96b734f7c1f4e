package scoring

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// Scorer combines the sub-scores named by a WeightConfig into one weight.
type Scorer struct {
	config   WeightConfig
	weights  []float64
	funcs    map[Factor]SubScoreFunc
	random   RandomSource
	override map[Factor]SubScoreFunc
}

type ScorerOption func(*Scorer)

// WithSubScore replaces the function used for factor f. It also lets a custom
// weight system name factors the defaults do not know about.
func WithSubScore(f Factor, fn SubScoreFunc) ScorerOption {
	return func(s *Scorer) {
		s.override[f] = fn
	}
}

// WithRandomSource feeds the impact factor.
func WithRandomSource(src RandomSource) ScorerOption {
	return func(s *Scorer) {
		s.random = src
	}
}

// WithTimeScale swaps the linear timing curve for a floored time scale over
// [start,end].
func WithTimeScale(start, end float64) ScorerOption {
	return WithSubScore(FactorTiming, TimeScale(start, end))
}

func defaultSubScores(src RandomSource) map[Factor]SubScoreFunc {
	return map[Factor]SubScoreFunc{
		FactorStake:      StakeScore,
		FactorReputation: ReputationScore,
		FactorTiming:     LinearTiming(TimingWindowHours),
		FactorHoldings:   HoldingsScore,
		FactorConfidence: StakeRatioScore,

		FactorCommunity: ReputationScore,
		FactorImpact:    ImpactScore(src),
		FactorStaking:   StakeScore,
		FactorRanking:   RankingScore,

		FactorCertainty: CertaintyScore(DefaultCertaintyParams()),
		FactorAccuracy:  AccuracyScore(DefaultAccuracyParams()),
	}
}

// NewScorer validates cfg and resolves a sub-score function for each factor.
func NewScorer(cfg WeightConfig, opts ...ScorerOption) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scorer{
		config:   cfg,
		weights:  cfg.Values(),
		override: make(map[Factor]SubScoreFunc),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.funcs = defaultSubScores(s.random)
	for f, fn := range s.override {
		s.funcs[f] = fn
	}

	for _, f := range cfg.Factors() {
		if s.funcs[f] == nil {
			return nil, fmt.Errorf("%w: no sub-score for factor %q", ErrInvalidWeights, f)
		}
	}

	log.Trace().Str("system", cfg.Name).Interface("factors", cfg.Factors()).Msg("scorer ready")
	return s, nil
}

func (s *Scorer) Config() WeightConfig {
	return s.config
}

// Score evaluates every factor, clamps it into [0,1] and returns the weighted
// sum alongside the per-factor breakdown.
func (s *Scorer) Score(in Inputs) Breakdown {
	raws := make([]float64, len(s.config.Weights))
	components := make([]Component, len(s.config.Weights))

	for i, wt := range s.config.Weights {
		raw := clamp01(s.funcs[wt.Factor](in))
		raws[i] = raw
		components[i] = Component{
			Factor:   wt.Factor,
			Weight:   wt.Value,
			Raw:      raw,
			Weighted: raw * wt.Value,
		}
	}

	return Breakdown{
		System:     s.config.Name,
		Components: components,
		Total:      floats.Dot(s.weights, raws),
	}
}
