// Package ledger applies one review cycle's stake and reward cash flow to a
// reviewer's balance.
package ledger

import (
	"errors"
	"fmt"
	"math"
)

var ErrInsufficientBalance = errors.New("insufficient balance for stake requirement")

// StakeRequirement is the stake reserved for one cycle of reviews.
func StakeRequirement(baseStake float64, reviewsPerCycle int) float64 {
	return baseStake * float64(reviewsPerCycle)
}

// Affordable reports whether balance covers the stake requirement.
func Affordable(balance, requirement float64) bool {
	return balance >= requirement
}

// Settle returns the balance after a cycle. The stake is reserved and refunded
// within the same cycle, so an affordable cycle nets out to balance + reward.
func Settle(balance, reward, requirement float64) (float64, error) {
	if !Affordable(balance, requirement) {
		return balance, fmt.Errorf("%w: balance %.6f, required %.6f", ErrInsufficientBalance, balance, requirement)
	}
	return balance + reward, nil
}

// ROI is the percentage change of balance against initial. A zero initial
// balance yields 0.
func ROI(balance, initial float64) float64 {
	if initial == 0 || math.IsNaN(initial) {
		return 0
	}
	return (balance - initial) / initial * 100
}
