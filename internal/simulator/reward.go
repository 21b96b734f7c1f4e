package simulator

import (
	"fmt"
	"math"
	"strings"
)

const (
	RewardPoolShare = "pool_share"
	RewardFlatSplit = "flat_split"

	MinProjectShare = 0.01
	MaxReviewShare  = 0.40
)

// RewardInputs is what a reward model sees for one cycle.
type RewardInputs struct {
	Weight          float64
	SystemWeight    float64
	ProjectPool     float64
	ReviewsPerCycle int
	TotalReviewers  int
}

// RewardModel turns a reviewer's weight into the reward for one cycle.
type RewardModel interface {
	Name() string
	CycleReward(in RewardInputs) (reward, share float64)
}

// PoolShare pays every review the reviewer's share of the pool, bounded to
// [MinShare, MaxShare]. The returned share is the unbounded one.
type PoolShare struct {
	MinShare float64
	MaxShare float64
}

func (PoolShare) Name() string { return RewardPoolShare }

func (m PoolShare) CycleReward(in RewardInputs) (reward, share float64) {
	share = safeDiv(in.Weight, in.SystemWeight)
	bounded := math.Min(m.MaxShare, math.Max(m.MinShare, share))

	perReview := in.ProjectPool * bounded
	if perReview < 0 || perReview > in.ProjectPool {
		perReview = 0
	}
	return perReview * float64(in.ReviewsPerCycle), share
}

// FlatSplit divides the weighted pool evenly across reviewers.
type FlatSplit struct{}

func (FlatSplit) Name() string { return RewardFlatSplit }

func (FlatSplit) CycleReward(in RewardInputs) (reward, share float64) {
	perReview := safeDiv(in.ProjectPool*in.Weight, float64(in.TotalReviewers))
	return perReview * float64(in.ReviewsPerCycle), safeDiv(in.Weight, in.SystemWeight)
}

func DefaultRewardModel() RewardModel {
	return PoolShare{MinShare: MinProjectShare, MaxShare: MaxReviewShare}
}

// LookupRewardModel resolves a reward model by name; an empty name selects the default.
func LookupRewardModel(name string) (RewardModel, error) {
	switch strings.ToLower(name) {
	case "", RewardPoolShare:
		return DefaultRewardModel(), nil
	case RewardFlatSplit:
		return FlatSplit{}, nil
	}
	return nil, fmt.Errorf("%w: unknown reward model %q", ErrInvalidParams, name)
}

func safeDiv(num, den float64) float64 {
	if den <= 0 || math.IsNaN(den) {
		return 0
	}
	q := num / den
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return q
}
