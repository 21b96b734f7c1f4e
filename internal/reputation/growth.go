// Package reputation evolves a reviewer's reputation from one review cycle to
// the next.
package reputation

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownLaw = errors.New("unknown growth law")

const (
	MaxReputation = 5.0

	// BaseGrowthRate is the per-review rate of the diminishing growth law.
	BaseGrowthRate = 0.02
	// LegacyGrowthRate is the per-review rate of the older linear law.
	LegacyGrowthRate = 0.05
)

const (
	LawSqrtDecay = "sqrt"
	LawLinear    = "linear"
)

// Law decides how much reputation grows in a given cycle.
type Law interface {
	Name() string
	Rate(reviewsPerCycle, cycle int) float64
}

// SqrtDecay grows by Base * reviewsPerCycle / sqrt(cycle), so early cycles move
// reputation the most.
type SqrtDecay struct {
	Base float64
}

func (SqrtDecay) Name() string { return LawSqrtDecay }

func (l SqrtDecay) Rate(reviewsPerCycle, cycle int) float64 {
	if cycle < 1 {
		cycle = 1
	}
	return l.Base * float64(reviewsPerCycle) / math.Sqrt(float64(cycle))
}

// Linear grows by Base * reviewsPerCycle every cycle regardless of the cycle
// index. Kept for comparing against older projections.
type Linear struct {
	Base float64
}

func (Linear) Name() string { return LawLinear }

func (l Linear) Rate(reviewsPerCycle, _ int) float64 {
	return l.Base * float64(reviewsPerCycle)
}

func DefaultLaw() Law {
	return SqrtDecay{Base: BaseGrowthRate}
}

// LookupLaw resolves a law by name; an empty name selects the default.
func LookupLaw(name string) (Law, error) {
	switch strings.ToLower(name) {
	case "", LawSqrtDecay:
		return DefaultLaw(), nil
	case LawLinear:
		return Linear{Base: LegacyGrowthRate}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLaw, name)
}

// Growth applies a Law and clamps the result at a ceiling.
type Growth struct {
	Law     Law
	Ceiling float64
}

func NewGrowth(law Law, ceiling float64) Growth {
	if law == nil {
		law = DefaultLaw()
	}
	if ceiling <= 0 {
		ceiling = MaxReputation
	}
	return Growth{Law: law, Ceiling: ceiling}
}

// Next returns the reputation after the given cycle and the growth rate that
// was applied. Negative or non-finite rates are treated as zero so reputation
// never decreases.
func (g Growth) Next(current float64, reviewsPerCycle, cycle int) (next, rate float64) {
	rate = g.Law.Rate(reviewsPerCycle, cycle)
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = 0
	}
	return math.Min(current*(1+rate), g.Ceiling), rate
}
