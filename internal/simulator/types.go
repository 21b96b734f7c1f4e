package simulator

import (
	"errors"
	"fmt"
	"math"

	"github.com/tensorplex-labs/reviewsim/internal/guard"
	"github.com/tensorplex-labs/reviewsim/internal/scoring"
)

var ErrInvalidParams = errors.New("invalid simulation parameters")

const (
	DefaultHorizon         = 73
	MaxHorizon             = 10 * DefaultHorizon
	DefaultCycleLengthDays = 2.84

	DefaultReferenceReputation = 1.0
	DefaultReferenceReviewTime = 12.0
)

// Params describe one reviewer and the system around it. They are read-only
// for the duration of a run.
type Params struct {
	BaseStake          float64 `json:"base_stake" yaml:"base_stake"`
	ProjectPool        float64 `json:"project_pool" yaml:"project_pool"`
	ReviewsPerCycle    int     `json:"reviews_per_cycle" yaml:"reviews_per_cycle"`
	TotalReviewers     int     `json:"total_reviewers" yaml:"total_reviewers"`
	TokenHoldings      float64 `json:"token_holdings" yaml:"token_holdings"`
	StartingReputation float64 `json:"starting_reputation" yaml:"starting_reputation"`
	AvgReviewTime      float64 `json:"avg_review_time" yaml:"avg_review_time"`

	// TotalHoldings overrides the derived TokenHoldings * TotalReviewers when positive.
	TotalHoldings float64 `json:"total_holdings,omitempty" yaml:"total_holdings,omitempty"`

	WeightConfig scoring.WeightConfig `json:"weight_config" yaml:"weight_config"`
}

// TotalStake is the stake the whole pool commits per review.
func (p Params) TotalStake() float64 {
	return p.BaseStake * float64(p.TotalReviewers)
}

func (p Params) SystemHoldings() float64 {
	if p.TotalHoldings > 0 {
		return p.TotalHoldings
	}
	return p.TokenHoldings * float64(p.TotalReviewers)
}

// Validate rejects values outside the documented domain. Weight
// configuration problems are not reported here; they halt the run instead.
func (p Params) Validate() error {
	amounts := []struct {
		name  string
		value float64
	}{
		{"base_stake", p.BaseStake},
		{"project_pool", p.ProjectPool},
		{"token_holdings", p.TokenHoldings},
		{"starting_reputation", p.StartingReputation},
		{"avg_review_time", p.AvgReviewTime},
		{"total_holdings", p.TotalHoldings},
	}
	for _, a := range amounts {
		if math.IsNaN(a.value) || math.IsInf(a.value, 0) || a.value < 0 {
			return fmt.Errorf("%w: %s must be a finite non-negative number, got %v", ErrInvalidParams, a.name, a.value)
		}
	}

	if p.AvgReviewTime > scoring.TimingWindowHours {
		return fmt.Errorf("%w: avg_review_time must be within [0, %v] hours, got %v",
			ErrInvalidParams, scoring.TimingWindowHours, p.AvgReviewTime)
	}
	if p.ReviewsPerCycle < 0 {
		return fmt.Errorf("%w: reviews_per_cycle must be non-negative, got %d", ErrInvalidParams, p.ReviewsPerCycle)
	}
	if p.TotalReviewers < 1 {
		return fmt.Errorf("%w: total_reviewers must be at least 1, got %d", ErrInvalidParams, p.TotalReviewers)
	}
	return nil
}

// CycleRecord is the state of the run at the end of one cycle.
type CycleRecord struct {
	Cycle       int     `json:"cycle"`
	Days        int     `json:"days"`
	Balance     float64 `json:"balance"`
	Reputation  float64 `json:"reputation"`
	Reward      float64 `json:"reward"`
	ROI         float64 `json:"roi"`
	GrowthRate  float64 `json:"growth_rate"`
	ShareOfPool float64 `json:"share_of_pool"`
	Weight      float64 `json:"weight"`
}

// Status is the state of a run. Halted and Completed are terminal.
type Status string

const (
	StatusRunning   Status = "running"
	StatusHalted    Status = "halted"
	StatusCompleted Status = "completed"
)

// Result is the output of a run. On a halt, Records holds every cycle committed
// before the failing one; the failing cycle itself is never emitted.
type Result struct {
	Status         Status           `json:"status"`
	Halt           *guard.Violation `json:"halt,omitempty"`
	Records        []CycleRecord    `json:"records"`
	InitialBalance float64          `json:"initial_balance"`
	WeightSystem   string           `json:"weight_system"`
	GrowthLaw      string           `json:"growth_law"`
	RewardModel    string           `json:"reward_model"`
}

// Err returns the halt as an error, or nil for a completed run.
func (r *Result) Err() error {
	if r.Halt == nil {
		return nil
	}
	return r.Halt
}

// Final returns the last committed record.
func (r *Result) Final() (CycleRecord, bool) {
	if len(r.Records) == 0 {
		return CycleRecord{}, false
	}
	return r.Records[len(r.Records)-1], true
}
