package api

import (
	"fmt"
	"math"

	"github.com/tensorplex-labs/reviewsim/internal/config"
	"github.com/tensorplex-labs/reviewsim/internal/report"
	"github.com/tensorplex-labs/reviewsim/internal/scoring"
	"github.com/tensorplex-labs/reviewsim/internal/simulator"
	"github.com/tensorplex-labs/reviewsim/pkg/simapi"
)

func toWeightConfig(ws *simapi.WeightSystem) *scoring.WeightConfig {
	if ws == nil {
		return nil
	}
	cfg := &scoring.WeightConfig{
		Name:        ws.Name,
		Description: ws.Description,
		Weights:     make([]scoring.Weight, len(ws.Weights)),
	}
	if cfg.Name == "" {
		cfg.Name = "custom"
	}
	for i, w := range ws.Weights {
		cfg.Weights[i] = scoring.Weight{Factor: scoring.Factor(w.Factor), Value: w.Value}
	}
	return cfg
}

func fromWeightConfig(cfg scoring.WeightConfig) simapi.WeightSystem {
	ws := simapi.WeightSystem{
		Name:        cfg.Name,
		Description: cfg.Description,
		Weights:     make([]simapi.Weight, len(cfg.Weights)),
	}
	for i, w := range cfg.Weights {
		ws.Weights[i] = simapi.Weight{Factor: string(w.Factor), Value: w.Value}
	}
	return ws
}

func fromPreset(p config.Preset) simapi.Preset {
	return simapi.Preset{
		Name:        p.Name,
		Description: p.Description,
		Params: simapi.Params{
			BaseStake:          p.Params.BaseStake,
			ProjectPool:        p.Params.ProjectPool,
			ReviewsPerCycle:    p.Params.ReviewsPerCycle,
			TotalReviewers:     p.Params.TotalReviewers,
			TokenHoldings:      p.Params.TokenHoldings,
			StartingReputation: p.Params.StartingReputation,
			AvgReviewTime:      p.Params.AvgReviewTime,
		},
	}
}

// ToScenario maps a wire request onto a scenario. Cache keys are derived
// from the request itself, so this mapping must stay deterministic.
func ToScenario(req simapi.SimulateRequest) *config.Scenario {
	s := &config.Scenario{
		Preset:           req.Preset,
		WeightSystem:     req.WeightSystem,
		Weights:          toWeightConfig(req.Weights),
		NormalizeWeights: req.Weights != nil && req.Weights.Normalize,
		GrowthLaw:        req.GrowthLaw,
		RewardModel:      req.RewardModel,
		Horizon:          req.Horizon,
		Seed:             req.Seed,
		Overrides: config.Overrides{
			BaseStake:          req.BaseStake,
			ProjectPool:        req.ProjectPool,
			ReviewsPerCycle:    req.ReviewsPerCycle,
			TotalReviewers:     req.TotalReviewers,
			TokenHoldings:      req.TokenHoldings,
			StartingReputation: req.StartingReputation,
			AvgReviewTime:      req.AvgReviewTime,
			TotalHoldings:      req.TotalHoldings,
		},
	}
	if req.Luck != nil {
		s.Luck = &simulator.Luck{Min: req.Luck.Min, Max: req.Luck.Max}
	}
	return s
}

func FromResult(res *simulator.Result) simapi.SimulateResponse {
	out := simapi.SimulateResponse{
		Status:         string(res.Status),
		InitialBalance: res.InitialBalance,
		Records:        make([]simapi.CycleRecord, len(res.Records)),
		WeightSystem:   res.WeightSystem,
		GrowthLaw:      res.GrowthLaw,
		RewardModel:    res.RewardModel,
	}
	if res.Halt != nil {
		out.Halt = &simapi.Halt{
			Reason: string(res.Halt.Reason),
			Cycle:  res.Halt.Cycle,
			Detail: res.Halt.Detail,
		}
	}
	for i, r := range res.Records {
		out.Records[i] = simapi.CycleRecord(r)
	}

	s := report.Summarize(res)
	out.Summary = simapi.Summary{
		Cycles:          s.Cycles,
		Days:            s.Days,
		FinalBalance:    s.FinalBalance,
		FinalReputation: s.FinalReputation,
		TotalReward:     s.TotalReward,
		MeanReward:      s.MeanReward,
		RewardStdDev:    s.RewardStdDev,
		ROI:             s.ROI,
	}
	return out
}

// ScoreInputs validates a score request and returns the scorer options and
// inputs it describes.
func ScoreInputs(req simapi.ScoreRequest) (scoring.WeightConfig, []scoring.ScorerOption, scoring.Inputs, error) {
	var cfg scoring.WeightConfig
	if custom := toWeightConfig(req.Weights); custom != nil {
		cfg = *custom
		if req.Weights.Normalize {
			cfg = custom.Normalized()
		}
	} else {
		name := req.WeightSystem
		if name == "" {
			name = scoring.SystemCurrent
		}
		ws, err := scoring.LookupWeightSystem(name)
		if err != nil {
			return cfg, nil, scoring.Inputs{}, err
		}
		cfg = ws
	}

	values := map[string]float64{
		"stake":          req.Stake,
		"max_stake":      req.MaxStake,
		"reputation":     req.Reputation,
		"review_time":    req.ReviewTime,
		"holdings":       req.Holdings,
		"total_holdings": req.TotalHoldings,
		"certainty":      req.Certainty,
	}
	for name, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return cfg, nil, scoring.Inputs{}, fmt.Errorf("%w: %s must be a finite non-negative number", simulator.ErrInvalidParams, name)
		}
	}

	in := scoring.Inputs{
		Stake:         req.Stake,
		MaxStake:      req.MaxStake,
		Reputation:    req.Reputation,
		ReviewTime:    req.ReviewTime,
		Holdings:      req.Holdings,
		TotalHoldings: req.TotalHoldings,
		Certainty:     req.Certainty,
		Vote:          req.Vote,
		OtherVotes:    req.OtherVotes,
	}

	var opts []scoring.ScorerOption
	if req.SubmissionOrder != nil {
		order := *req.SubmissionOrder
		if order < 0 || order > 100 {
			return cfg, nil, scoring.Inputs{}, fmt.Errorf("%w: submission_order must be within [0, 100]", simulator.ErrInvalidParams)
		}
		in.ReviewTime = order
		opts = append(opts, scoring.WithTimeScale(0, 100))
	}
	return cfg, opts, in, nil
}

func FromBreakdown(b scoring.Breakdown) simapi.ScoreResponse {
	out := simapi.ScoreResponse{
		System:     b.System,
		Components: make([]simapi.Component, len(b.Components)),
		Total:      b.Total,
	}
	for i, c := range b.Components {
		out.Components[i] = simapi.Component{
			Factor:   string(c.Factor),
			Weight:   c.Weight,
			Raw:      c.Raw,
			Weighted: c.Weighted,
		}
	}
	return out
}
