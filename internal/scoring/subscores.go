package scoring

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// clamp01 folds any value, including NaN and the infinities, into [0,1].
func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// ratio divides num by den and returns fallback when den cannot be divided by.
func ratio(num, den, fallback float64) float64 {
	if den <= 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return fallback
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return fallback
	}
	return r
}

// StakeScore is stake relative to the largest stake the pool can hold.
func StakeScore(in Inputs) float64 {
	return clamp01(ratio(in.Stake, in.MaxStake, 0))
}

// ReputationScore saturates at ReputationCap.
func ReputationScore(in Inputs) float64 {
	return clamp01(in.Reputation / ReputationCap)
}

// LinearTiming scores a review by how early it landed in a window of the given
// length, reaching zero at the end of the window.
func LinearTiming(windowHours float64) SubScoreFunc {
	return func(in Inputs) float64 {
		return clamp01(1 - ratio(in.ReviewTime, windowHours, 0))
	}
}

// TimeScale maps [start,end] onto [1, TimeScaleFloor]. The floor keeps the last
// reviewer from being weighted out entirely.
func TimeScale(start, end float64) SubScoreFunc {
	span := end - start
	return func(in Inputs) float64 {
		if span == 0 {
			return 1
		}
		scaled := 1 - (in.ReviewTime-start)/span
		if math.IsNaN(scaled) {
			return TimeScaleFloor
		}
		return math.Max(TimeScaleFloor, math.Min(1, scaled))
	}
}

// HoldingsScore is the reviewer's share of all holdings in the system.
func HoldingsScore(in Inputs) float64 {
	return clamp01(ratio(in.Holdings, in.TotalHoldings, 0))
}

// StakeRatioScore compares stake to holdings. With no holdings any positive
// stake counts as fully committed.
func StakeRatioScore(in Inputs) float64 {
	if in.Holdings > 0 {
		return clamp01(ratio(in.Stake, in.Holdings, 0))
	}
	if in.Stake > 0 {
		return 1
	}
	return 0
}

// RankingScore saturates at RankingCap.
func RankingScore(in Inputs) float64 {
	return clamp01(in.Reputation / RankingCap)
}

// ImpactScore draws project impact from src. Without a source every reviewer
// gets NeutralImpact.
func ImpactScore(src RandomSource) SubScoreFunc {
	return func(Inputs) float64 {
		if src == nil {
			return NeutralImpact
		}
		return clamp01(src.Float64())
	}
}

// Gaussian evaluates amp * e^(-gain * (x - center)^2).
func Gaussian(x float64, p GaussianParams) float64 {
	d := x - p.Center
	return p.Amplitude * math.Exp(-p.Gain*d*d)
}

// CertaintyScore peaks when the self-reported certainty sits at p.Center and
// falls off on both sides.
func CertaintyScore(p GaussianParams) SubScoreFunc {
	return func(in Inputs) float64 {
		return clamp01(Gaussian(in.Certainty, p))
	}
}

// AccuracyScore rewards votes close to the median of all votes, normalized by
// the sum of every other vote. With no other votes, or a non-positive sum,
// the score is 0.
func AccuracyScore(p GaussianParams) SubScoreFunc {
	return func(in Inputs) float64 {
		others := floats.Sum(in.OtherVotes)
		if len(in.OtherVotes) == 0 || others <= 0 {
			return 0
		}

		all := make([]float64, 0, len(in.OtherVotes)+1)
		all = append(all, in.OtherVotes...)
		all = append(all, in.Vote)

		p.Center = Median(all)
		return clamp01(ratio(Gaussian(in.Vote, p), others, 0))
	}
}

// Median returns the middle value of values, averaging the two middle values
// for an even count. An empty slice has median 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
