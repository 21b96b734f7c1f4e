// Package simulator projects a reviewer's reward, balance and reputation over
// a fixed horizon of review cycles.
package simulator

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/reviewsim/internal/guard"
	"github.com/tensorplex-labs/reviewsim/internal/ledger"
	"github.com/tensorplex-labs/reviewsim/internal/reputation"
	"github.com/tensorplex-labs/reviewsim/internal/scoring"
)

// Simulator holds run configuration. It keeps no state between runs, so one
// Simulator can serve any number of Run calls.
type Simulator struct {
	horizon         int
	cycleLengthDays float64
	maxReputation   float64
	law             reputation.Law
	reward          RewardModel
	reference       scoring.Inputs
	luck            *Luck
	seed            *uint64
	random          scoring.RandomSource
	scorerOpts      []scoring.ScorerOption
}

type Option func(*Simulator)

func WithHorizon(cycles int) Option {
	return func(s *Simulator) {
		s.horizon = cycles
	}
}

func WithCycleLength(days float64) Option {
	return func(s *Simulator) {
		s.cycleLengthDays = days
	}
}

func WithMaxReputation(ceiling float64) Option {
	return func(s *Simulator) {
		s.maxReputation = ceiling
	}
}

func WithGrowthLaw(law reputation.Law) Option {
	return func(s *Simulator) {
		s.law = law
	}
}

func WithRewardModel(model RewardModel) Option {
	return func(s *Simulator) {
		s.reward = model
	}
}

// WithReference sets the reputation and review time of the "average" reviewer
// whose weight sizes the system weight.
func WithReference(reputation, reviewTime float64) Option {
	return func(s *Simulator) {
		s.reference.Reputation = reputation
		s.reference.ReviewTime = reviewTime
	}
}

func WithLuck(minFactor, maxFactor float64) Option {
	return func(s *Simulator) {
		s.luck = &Luck{Min: minFactor, Max: maxFactor}
	}
}

// WithSeed gives every run a fresh source seeded with seed, making runs
// repeatable.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.seed = &seed
	}
}

// WithRandomSource uses src directly. A shared source advances across runs, so
// prefer WithSeed when runs must be repeatable.
func WithRandomSource(src scoring.RandomSource) Option {
	return func(s *Simulator) {
		s.random = src
	}
}

func WithScorerOptions(opts ...scoring.ScorerOption) Option {
	return func(s *Simulator) {
		s.scorerOpts = append(s.scorerOpts, opts...)
	}
}

func New(opts ...Option) *Simulator {
	s := &Simulator{
		horizon:         DefaultHorizon,
		cycleLengthDays: DefaultCycleLengthDays,
		maxReputation:   reputation.MaxReputation,
		law:             reputation.DefaultLaw(),
		reward:          DefaultRewardModel(),
		reference: scoring.Inputs{
			Reputation: DefaultReferenceReputation,
			ReviewTime: DefaultReferenceReviewTime,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Horizon is the number of cycles a completed run commits.
func (s *Simulator) Horizon() int {
	return s.horizon
}

func (s *Simulator) validate() error {
	if s.horizon < 1 || s.horizon > MaxHorizon {
		return fmt.Errorf("%w: horizon must be within [1, %d], got %d", ErrInvalidParams, MaxHorizon, s.horizon)
	}
	if !(s.maxReputation > 0) || math.IsInf(s.maxReputation, 0) {
		return fmt.Errorf("%w: max reputation must be positive, got %v", ErrInvalidParams, s.maxReputation)
	}
	if s.law == nil || s.reward == nil {
		return fmt.Errorf("%w: growth law and reward model are required", ErrInvalidParams)
	}
	if s.luck != nil {
		if err := s.luck.Validate(); err != nil {
			return err
		}
		if s.seed == nil && s.random == nil {
			return fmt.Errorf("%w: luck needs a seed or a random source", ErrInvalidParams)
		}
	}
	return nil
}

// Run executes a full simulation. The returned error is reserved for
// parameters outside their domain; guard failures are reported through
// Result.Status and Result.Halt.
func (s *Simulator) Run(p Params) (*Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	r := s.newRun(p)
	for r.status == StatusRunning {
		r.step()
	}

	log.Debug().
		Str("status", string(r.status)).
		Int("cycles", len(r.records)).
		Str("weight_system", p.WeightConfig.Name).
		Msg("simulation finished")

	return r.result(), nil
}

// run is the per-invocation accumulator.
type run struct {
	sim    *Simulator
	params Params
	scorer *scoring.Scorer
	growth reputation.Growth
	random scoring.RandomSource

	status       Status
	halt         *guard.Violation
	cycle        int
	balance      float64
	reputation   float64
	systemWeight float64
	requirement  float64
	records      []CycleRecord
}

func (s *Simulator) newRun(p Params) *run {
	r := &run{
		sim:         s,
		params:      p,
		growth:      reputation.NewGrowth(s.law, s.maxReputation),
		random:      s.random,
		status:      StatusRunning,
		cycle:       1,
		balance:     p.TokenHoldings,
		reputation:  p.StartingReputation,
		requirement: ledger.StakeRequirement(p.BaseStake, p.ReviewsPerCycle),
		records:     make([]CycleRecord, 0, min(s.horizon, MaxHorizon)),
	}
	if s.seed != nil {
		r.random = NewSeededSource(*s.seed)
	}

	var opts []scoring.ScorerOption
	if r.random != nil {
		opts = append(opts, scoring.WithRandomSource(r.random))
	}
	opts = append(opts, s.scorerOpts...)

	scorer, err := scoring.NewScorer(p.WeightConfig, opts...)
	if err != nil {
		r.haltWith(&guard.Violation{
			Reason: guard.ReasonInvalidWeightConfiguration,
			Cycle:  r.cycle,
			Detail: err.Error(),
		})
		return r
	}
	r.scorer = scorer

	reference := r.inputs(s.reference.Reputation)
	reference.ReviewTime = s.reference.ReviewTime
	r.systemWeight = float64(p.TotalReviewers) * scorer.Score(reference).Total
	return r
}

func (r *run) inputs(rep float64) scoring.Inputs {
	return scoring.Inputs{
		Stake:         r.params.BaseStake,
		MaxStake:      r.params.TotalStake(),
		Reputation:    rep,
		ReviewTime:    r.params.AvgReviewTime,
		Holdings:      r.params.TokenHoldings,
		TotalHoldings: r.params.SystemHoldings(),
	}
}

// step moves the run from Running(cycle) to Running(cycle+1), Halted or
// Completed.
func (r *run) step() {
	if r.cycle > r.sim.horizon {
		r.status = StatusCompleted
		return
	}

	err := guard.Check(guard.Snapshot{
		Cycle:            r.cycle,
		TotalStake:       r.params.TotalStake(),
		Reputation:       r.reputation,
		MaxReputation:    r.sim.maxReputation,
		AggregateWeight:  r.systemWeight,
		Balance:          r.balance,
		StakeRequirement: r.requirement,
	})
	if err != nil {
		r.haltWithErr(err)
		return
	}

	weight := r.scorer.Score(r.inputs(r.reputation)).Total
	reward, share := r.sim.reward.CycleReward(RewardInputs{
		Weight:          weight,
		SystemWeight:    r.systemWeight,
		ProjectPool:     r.params.ProjectPool,
		ReviewsPerCycle: r.params.ReviewsPerCycle,
		TotalReviewers:  r.params.TotalReviewers,
	})
	if r.sim.luck != nil {
		reward *= r.sim.luck.Multiplier(r.random)
	}

	balance, err := ledger.Settle(r.balance, reward, r.requirement)
	if err != nil {
		r.haltWithErr(err)
		return
	}
	rep, rate := r.growth.Next(r.reputation, r.params.ReviewsPerCycle, r.cycle)

	r.balance = balance
	r.reputation = rep
	r.records = append(r.records, CycleRecord{
		Cycle:       r.cycle,
		Days:        int(math.Round(float64(r.cycle) * r.sim.cycleLengthDays)),
		Balance:     balance,
		Reputation:  rep,
		Reward:      reward,
		ROI:         ledger.ROI(balance, r.params.TokenHoldings),
		GrowthRate:  rate,
		ShareOfPool: share * 100,
		Weight:      weight,
	})

	log.Trace().
		Int("cycle", r.cycle).
		Float64("reward", reward).
		Float64("balance", balance).
		Float64("reputation", rep).
		Msg("cycle committed")

	r.cycle++
}

func (r *run) haltWithErr(err error) {
	var v *guard.Violation
	if errors.As(err, &v) {
		r.haltWith(v)
		return
	}
	reason := guard.ReasonInvalidWeightConfiguration
	if errors.Is(err, ledger.ErrInsufficientBalance) {
		reason = guard.ReasonInsufficientBalance
	}
	r.haltWith(&guard.Violation{Reason: reason, Cycle: r.cycle, Detail: err.Error()})
}

func (r *run) haltWith(v *guard.Violation) {
	r.status = StatusHalted
	r.halt = v
}

func (r *run) result() *Result {
	res := &Result{
		Status:         r.status,
		Halt:           r.halt,
		Records:        r.records,
		InitialBalance: r.params.TokenHoldings,
		WeightSystem:   r.params.WeightConfig.Name,
		GrowthLaw:      r.sim.law.Name(),
		RewardModel:    r.sim.reward.Name(),
	}
	return res
}
