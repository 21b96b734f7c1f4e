package reputation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqrtDecayRate(t *testing.T) {
	law := SqrtDecay{Base: BaseGrowthRate}

	assert.InDelta(t, 0.06, law.Rate(3, 1), 1e-12)
	assert.InDelta(t, 0.03, law.Rate(3, 4), 1e-12)
	assert.InDelta(t, 0.06, law.Rate(3, 0), 1e-12, "cycle below 1 is treated as 1")
	assert.Greater(t, law.Rate(3, 2), law.Rate(3, 3))
}

func TestLinearRateIgnoresCycle(t *testing.T) {
	law := Linear{Base: LegacyGrowthRate}
	assert.InDelta(t, 0.15, law.Rate(3, 1), 1e-12)
	assert.Equal(t, law.Rate(3, 1), law.Rate(3, 73))
}

func TestLookupLaw(t *testing.T) {
	law, err := LookupLaw("")
	require.NoError(t, err)
	assert.Equal(t, LawSqrtDecay, law.Name())

	law, err = LookupLaw("LINEAR")
	require.NoError(t, err)
	assert.Equal(t, Linear{Base: LegacyGrowthRate}, law)

	_, err = LookupLaw("exponential")
	assert.ErrorIs(t, err, ErrUnknownLaw)
}

func TestGrowthNext(t *testing.T) {
	g := NewGrowth(nil, 0)
	assert.Equal(t, MaxReputation, g.Ceiling)

	next, rate := g.Next(1.0, 3, 1)
	assert.InDelta(t, 0.06, rate, 1e-12)
	assert.InDelta(t, 1.06, next, 1e-12)

	capped, _ := g.Next(4.9, 10, 1)
	assert.Equal(t, MaxReputation, capped)
}

type negativeLaw struct{}

func (negativeLaw) Name() string          { return "negative" }
func (negativeLaw) Rate(int, int) float64 { return -0.5 }

type nanLaw struct{}

func (nanLaw) Name() string          { return "nan" }
func (nanLaw) Rate(int, int) float64 { return math.NaN() }

func TestGrowthNeverDecreases(t *testing.T) {
	for _, law := range []Law{negativeLaw{}, nanLaw{}} {
		t.Run(law.Name(), func(t *testing.T) {
			next, rate := NewGrowth(law, MaxReputation).Next(2.0, 3, 1)
			assert.Equal(t, 0.0, rate)
			assert.Equal(t, 2.0, next)
		})
	}
}

func TestGrowthTrajectoryBounded(t *testing.T) {
	for _, law := range []Law{DefaultLaw(), Linear{Base: LegacyGrowthRate}} {
		t.Run(law.Name(), func(t *testing.T) {
			g := NewGrowth(law, MaxReputation)
			rep := 0.5
			for cycle := 1; cycle <= 500; cycle++ {
				next, _ := g.Next(rep, 10, cycle)
				require.GreaterOrEqual(t, next, rep)
				require.LessOrEqual(t, next, MaxReputation)
				rep = next
			}
		})
	}
}
