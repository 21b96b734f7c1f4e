// Package guard holds the pre-conditions a simulation cycle must satisfy
// before its results are committed.
package guard

import (
	"errors"
	"fmt"

	"github.com/tensorplex-labs/reviewsim/internal/ledger"
)

// Reason tags why a run halted.
type Reason string

const (
	ReasonNonPositiveTotalStake      Reason = "non_positive_total_stake"
	ReasonReputationCeiling          Reason = "reputation_ceiling_violation"
	ReasonInvalidWeightConfiguration Reason = "invalid_weight_configuration"
	ReasonInsufficientBalance        Reason = "insufficient_balance"
)

var (
	ErrNonPositiveTotalStake      = errors.New("total stake must be positive")
	ErrReputationCeiling          = errors.New("reputation above ceiling")
	ErrInvalidWeightConfiguration = errors.New("invalid weight configuration")
	ErrInsufficientBalance        = ledger.ErrInsufficientBalance
)

func (r Reason) sentinel() error {
	switch r {
	case ReasonNonPositiveTotalStake:
		return ErrNonPositiveTotalStake
	case ReasonReputationCeiling:
		return ErrReputationCeiling
	case ReasonInvalidWeightConfiguration:
		return ErrInvalidWeightConfiguration
	case ReasonInsufficientBalance:
		return ErrInsufficientBalance
	}
	return nil
}

// Violation is a failed pre-condition. Cycle is the cycle that would have been
// committed had the check passed.
type Violation struct {
	Reason Reason `json:"reason"`
	Cycle  int    `json:"cycle"`
	Detail string `json:"detail"`
}

func (v *Violation) Error() string {
	return fmt.Sprintf("cycle %d: %s: %s", v.Cycle, v.Reason, v.Detail)
}

// Is matches the sentinel error for the violation's reason.
func (v *Violation) Is(target error) bool {
	s := v.Reason.sentinel()
	return s != nil && target == s
}

// Snapshot is everything the rail inspects for one cycle.
type Snapshot struct {
	Cycle            int
	TotalStake       float64
	Reputation       float64
	MaxReputation    float64
	AggregateWeight  float64
	Balance          float64
	StakeRequirement float64
}

// Check runs every pre-condition in order and returns the first *Violation,
// or nil when the cycle may proceed.
func Check(s Snapshot) error {
	if !(s.TotalStake > 0) {
		return &Violation{
			Reason: ReasonNonPositiveTotalStake,
			Cycle:  s.Cycle,
			Detail: fmt.Sprintf("total stake %v", s.TotalStake),
		}
	}
	if !(s.Reputation <= s.MaxReputation) {
		return &Violation{
			Reason: ReasonReputationCeiling,
			Cycle:  s.Cycle,
			Detail: fmt.Sprintf("reputation %v exceeds %v", s.Reputation, s.MaxReputation),
		}
	}
	if !(s.AggregateWeight > 0) {
		return &Violation{
			Reason: ReasonInvalidWeightConfiguration,
			Cycle:  s.Cycle,
			Detail: fmt.Sprintf("aggregate weight %v", s.AggregateWeight),
		}
	}
	if !ledger.Affordable(s.Balance, s.StakeRequirement) {
		return &Violation{
			Reason: ReasonInsufficientBalance,
			Cycle:  s.Cycle,
			Detail: fmt.Sprintf("balance %v, required %v", s.Balance, s.StakeRequirement),
		}
	}
	return nil
}
