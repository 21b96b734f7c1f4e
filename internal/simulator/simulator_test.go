package simulator

import (
	"math"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/reviewsim/internal/guard"
	"github.com/tensorplex-labs/reviewsim/internal/reputation"
	"github.com/tensorplex-labs/reviewsim/internal/scoring"
)

func casualParams() Params {
	return Params{
		BaseStake:          100,
		ProjectPool:        1000,
		ReviewsPerCycle:    3,
		TotalReviewers:     5,
		TokenHoldings:      1000,
		StartingReputation: 1.0,
		AvgReviewTime:      12,
		WeightConfig:       scoring.CurrentWeights(),
	}
}

func TestRunCasualCompletes(t *testing.T) {
	res, err := New().Run(casualParams())
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Nil(t, res.Halt)
	assert.NoError(t, res.Err())
	require.Len(t, res.Records, DefaultHorizon)

	first := res.Records[0]
	assert.Equal(t, 1, first.Cycle)
	assert.Equal(t, 3, first.Days)
	assert.InDelta(t, 0.345, first.Weight, 1e-12)
	assert.InDelta(t, 20.0, first.ShareOfPool, 1e-9)
	assert.InDelta(t, 600.0, first.Reward, 1e-9)
	assert.InDelta(t, 1600.0, first.Balance, 1e-9)
	assert.InDelta(t, 60.0, first.ROI, 1e-9)
	assert.InDelta(t, 0.06, first.GrowthRate, 1e-12)
	assert.InDelta(t, 1.06, first.Reputation, 1e-12)

	last, ok := res.Final()
	require.True(t, ok)
	assert.Equal(t, DefaultHorizon, last.Cycle)
	assert.Equal(t, 207, last.Days)
	assert.LessOrEqual(t, last.Reputation, reputation.MaxReputation)
	assert.Greater(t, last.Reputation, first.Reputation)

	assert.Equal(t, scoring.SystemCurrent, res.WeightSystem)
	assert.Equal(t, reputation.LawSqrtDecay, res.GrowthLaw)
	assert.Equal(t, RewardPoolShare, res.RewardModel)
	assert.Equal(t, 1000.0, res.InitialBalance)
}

func TestRunRecordsAreConsistent(t *testing.T) {
	p := casualParams()
	res, err := New().Run(p)
	require.NoError(t, err)

	prevBalance := p.TokenHoldings
	prevRep := p.StartingReputation
	for i, rec := range res.Records {
		assert.Equal(t, i+1, rec.Cycle)
		assert.InDelta(t, prevBalance+rec.Reward, rec.Balance, 1e-6, "cycle %d", rec.Cycle)
		assert.GreaterOrEqual(t, rec.Reputation, prevRep, "cycle %d", rec.Cycle)
		assert.LessOrEqual(t, rec.Reputation, reputation.MaxReputation)
		assert.False(t, math.IsNaN(rec.Balance) || math.IsInf(rec.Balance, 0))
		prevBalance, prevRep = rec.Balance, rec.Reputation
	}
}

func TestRunHaltsOnUnaffordableStake(t *testing.T) {
	p := casualParams()
	p.BaseStake = 500

	res, err := New().Run(p)
	require.NoError(t, err)

	assert.Equal(t, StatusHalted, res.Status)
	require.NotNil(t, res.Halt)
	assert.Equal(t, guard.ReasonInsufficientBalance, res.Halt.Reason)
	assert.Equal(t, 1, res.Halt.Cycle)
	assert.ErrorIs(t, res.Err(), guard.ErrInsufficientBalance)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
}

func TestRunHaltReasons(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		opts   []Option
		reason guard.Reason
		cycle  int
	}{
		{
			name:   "zero stake",
			mutate: func(p *Params) { p.BaseStake = 0 },
			reason: guard.ReasonNonPositiveTotalStake,
			cycle:  1,
		},
		{
			name:   "reputation above ceiling",
			mutate: func(p *Params) { p.StartingReputation = 6 },
			reason: guard.ReasonReputationCeiling,
			cycle:  1,
		},
		{
			name: "weights do not sum to one",
			mutate: func(p *Params) {
				p.WeightConfig.Weights[0].Value = 0.30
			},
			reason: guard.ReasonInvalidWeightConfiguration,
			cycle:  1,
		},
		{
			name: "unknown factor",
			mutate: func(p *Params) {
				p.WeightConfig = scoring.WeightConfig{
					Name:    "custom",
					Weights: []scoring.Weight{{Factor: "vibes", Value: 1}},
				}
			},
			reason: guard.ReasonInvalidWeightConfiguration,
			cycle:  1,
		},
		{
			name: "aggregate weight is zero",
			mutate: func(p *Params) {
				p.WeightConfig = scoring.WeightConfig{
					Name:    "holdings-only",
					Weights: []scoring.Weight{{Factor: scoring.FactorHoldings, Value: 1}},
				}
				p.TokenHoldings = 0
				p.BaseStake = 0.0001
			},
			reason: guard.ReasonInvalidWeightConfiguration,
			cycle:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := casualParams()
			p.WeightConfig = scoring.CurrentWeights()
			tt.mutate(&p)

			res, err := New(tt.opts...).Run(p)
			require.NoError(t, err)
			assert.Equal(t, StatusHalted, res.Status)
			require.NotNil(t, res.Halt)
			assert.Equal(t, tt.reason, res.Halt.Reason)
			assert.Equal(t, tt.cycle, res.Halt.Cycle)
			assert.Empty(t, res.Records)
		})
	}
}

func TestRunReturnsPartialRecordsOnLateHalt(t *testing.T) {
	p := casualParams()
	res, err := New(WithRewardModel(drainModel{perCycle: -400})).Run(p)
	require.NoError(t, err)

	assert.Equal(t, StatusHalted, res.Status)
	require.NotNil(t, res.Halt)
	assert.Equal(t, guard.ReasonInsufficientBalance, res.Halt.Reason)
	// 1000 -> 600 -> 200; the third cycle needs 300.
	assert.Equal(t, 3, res.Halt.Cycle)
	require.Len(t, res.Records, 2)
	assert.InDelta(t, 200.0, res.Records[1].Balance, 1e-9)
}

type drainModel struct{ perCycle float64 }

func (drainModel) Name() string { return "drain" }

func (d drainModel) CycleReward(RewardInputs) (float64, float64) { return d.perCycle, 0 }

func TestRunLinearLawClampsAtCeiling(t *testing.T) {
	res, err := New(WithGrowthLaw(reputation.Linear{Base: reputation.LegacyGrowthRate})).Run(casualParams())
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, reputation.LawLinear, res.GrowthLaw)

	last, ok := res.Final()
	require.True(t, ok)
	assert.Equal(t, reputation.MaxReputation, last.Reputation)
	for _, rec := range res.Records {
		assert.InDelta(t, 0.15, rec.GrowthRate, 1e-12)
	}
}

func TestRunFlatSplit(t *testing.T) {
	res, err := New(WithRewardModel(FlatSplit{}), WithHorizon(1)).Run(casualParams())
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.InDelta(t, 1000*0.345/5*3, res.Records[0].Reward, 1e-9)
	assert.Equal(t, RewardFlatSplit, res.RewardModel)
}

func TestRunHorizonAndCycleLength(t *testing.T) {
	res, err := New(WithHorizon(10), WithCycleLength(7)).Run(casualParams())
	require.NoError(t, err)

	require.Len(t, res.Records, 10)
	assert.Equal(t, 70, res.Records[9].Days)
}

func TestRunIsDeterministicWithSeed(t *testing.T) {
	p := casualParams()
	p.WeightConfig = scoring.CommunityWeights()
	sim := New(WithSeed(42), WithLuck(0.8, 1.2))

	first, err := sim.Run(p)
	require.NoError(t, err)
	second, err := sim.Run(p)
	require.NoError(t, err)

	a, err := sonic.Marshal(first)
	require.NoError(t, err)
	b, err := sonic.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := New(WithSeed(43), WithLuck(0.8, 1.2)).Run(p)
	require.NoError(t, err)
	assert.NotEqual(t, first.Records, other.Records)
}

func TestRunLuckStaysInRange(t *testing.T) {
	p := casualParams()
	base, err := New(WithHorizon(1)).Run(p)
	require.NoError(t, err)

	res, err := New(WithHorizon(20), WithSeed(7), WithLuck(0.5, 1.5)).Run(p)
	require.NoError(t, err)

	// The first cycle's weight is the same with or without luck.
	baseReward := base.Records[0].Reward
	r := res.Records[0].Reward
	assert.GreaterOrEqual(t, r, 0.5*baseReward)
	assert.LessOrEqual(t, r, 1.5*baseReward)
}

func TestRunWithoutRandomSourceUsesNeutralImpact(t *testing.T) {
	p := casualParams()
	p.WeightConfig = scoring.CommunityWeights()

	res, err := New(WithHorizon(1)).Run(p)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	// community .5*.5 + impact .25*.5 + staking .15*.2 + ranking .10*.2
	assert.InDelta(t, 0.425, res.Records[0].Weight, 1e-12)
}

func TestRunAcceptsMaxHorizon(t *testing.T) {
	res, err := New(WithHorizon(MaxHorizon)).Run(casualParams())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Len(t, res.Records, MaxHorizon)
}

func TestRunRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		opts   []Option
	}{
		{name: "negative stake", mutate: func(p *Params) { p.BaseStake = -1 }},
		{name: "NaN pool", mutate: func(p *Params) { p.ProjectPool = math.NaN() }},
		{name: "infinite holdings", mutate: func(p *Params) { p.TokenHoldings = math.Inf(1) }},
		{name: "review time above window", mutate: func(p *Params) { p.AvgReviewTime = 25 }},
		{name: "no reviewers", mutate: func(p *Params) { p.TotalReviewers = 0 }},
		{name: "negative reviews", mutate: func(p *Params) { p.ReviewsPerCycle = -1 }},
		{name: "zero horizon", mutate: func(*Params) {}, opts: []Option{WithHorizon(0)}},
		{name: "horizon above max", mutate: func(*Params) {}, opts: []Option{WithHorizon(MaxHorizon + 1)}},
		{name: "huge horizon", mutate: func(*Params) {}, opts: []Option{WithHorizon(1 << 45)}},
		{name: "luck without source", mutate: func(*Params) {}, opts: []Option{WithLuck(0.9, 1.1)}},
		{name: "inverted luck", mutate: func(*Params) {}, opts: []Option{WithSeed(1), WithLuck(1.1, 0.9)}},
		{name: "zero ceiling", mutate: func(*Params) {}, opts: []Option{WithMaxReputation(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := casualParams()
			tt.mutate(&p)
			res, err := New(tt.opts...).Run(p)
			assert.ErrorIs(t, err, ErrInvalidParams)
			assert.Nil(t, res)
		})
	}
}

func TestLookupRewardModel(t *testing.T) {
	m, err := LookupRewardModel("")
	require.NoError(t, err)
	assert.Equal(t, RewardPoolShare, m.Name())

	m, err = LookupRewardModel("FLAT_SPLIT")
	require.NoError(t, err)
	assert.Equal(t, RewardFlatSplit, m.Name())

	_, err = LookupRewardModel("bonus")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestPoolShareBounds(t *testing.T) {
	m := DefaultRewardModel()

	reward, share := m.CycleReward(RewardInputs{Weight: 1, SystemWeight: 1, ProjectPool: 1000, ReviewsPerCycle: 2})
	assert.InDelta(t, 1.0, share, 1e-12)
	assert.InDelta(t, 800.0, reward, 1e-9)

	reward, share = m.CycleReward(RewardInputs{Weight: 0.001, SystemWeight: 1, ProjectPool: 1000, ReviewsPerCycle: 1})
	assert.InDelta(t, 0.001, share, 1e-12)
	assert.InDelta(t, 10.0, reward, 1e-9)

	reward, share = m.CycleReward(RewardInputs{Weight: 1, SystemWeight: 0, ProjectPool: 1000, ReviewsPerCycle: 1})
	assert.Zero(t, share)
	assert.InDelta(t, 10.0, reward, 1e-9)
}

func BenchmarkRun(b *testing.B) {
	sim := New(WithSeed(1), WithLuck(0.9, 1.1))
	p := casualParams()

	for b.Loop() {
		_, _ = sim.Run(p)
	}
}
