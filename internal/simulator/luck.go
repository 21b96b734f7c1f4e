package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/tensorplex-labs/reviewsim/internal/scoring"
)

// Luck scales each cycle's reward by a factor drawn uniformly from [Min, Max].
type Luck struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (l Luck) Validate() error {
	if math.IsNaN(l.Min) || math.IsNaN(l.Max) || l.Min < 0 || l.Max < l.Min || math.IsInf(l.Max, 0) {
		return fmt.Errorf("%w: luck range [%v, %v]", ErrInvalidParams, l.Min, l.Max)
	}
	return nil
}

func (l Luck) Multiplier(src scoring.RandomSource) float64 {
	return l.Min + (l.Max-l.Min)*src.Float64()
}

// NewSeededSource returns a PCG-backed source; equal seeds yield equal streams.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
