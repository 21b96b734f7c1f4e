package scoring

// Factor names one sub-score that a weight system can combine.
type Factor string

const (
	FactorStake      Factor = "stake"
	FactorReputation Factor = "reputation"
	FactorTiming     Factor = "timing"
	FactorHoldings   Factor = "holdings"
	FactorConfidence Factor = "confidence"

	FactorCommunity Factor = "community"
	FactorImpact    Factor = "impact"
	FactorStaking   Factor = "staking"
	FactorRanking   Factor = "ranking"

	// Available to custom weight systems only.
	FactorCertainty Factor = "certainty"
	FactorAccuracy  Factor = "accuracy"
)

// Inputs are the raw reviewer attributes and system totals a sub-score may read.
type Inputs struct {
	Stake         float64 // stake committed per review
	MaxStake      float64 // baseStake * totalReviewers
	Reputation    float64
	ReviewTime    float64 // hours since the review window opened, lower is earlier
	Holdings      float64
	TotalHoldings float64

	// Optional signals for alternative scoring families.
	Certainty  float64   // self-reported confidence, 0..100
	Vote       float64   // the reviewer's own vote
	OtherVotes []float64 // every other reviewer's vote
}

// SubScoreFunc maps inputs to a bounded contribution. Results are clamped into
// [0,1] by the Scorer, so implementations only need to be finite-safe.
type SubScoreFunc func(in Inputs) float64

// RandomSource is the subset of *rand.Rand the scoring and simulation code uses.
type RandomSource interface {
	Float64() float64
}

type GaussianParams struct {
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Gain      float64 `json:"gain" yaml:"gain"`
	Center    float64 `json:"center" yaml:"center"`
}

// Component is one factor's share of a Breakdown.
type Component struct {
	Factor   Factor  `json:"factor"`
	Weight   float64 `json:"weight"`
	Raw      float64 `json:"raw"`
	Weighted float64 `json:"weighted"`
}

// Breakdown is the full result of scoring one reviewer.
type Breakdown struct {
	System     string      `json:"system"`
	Components []Component `json:"components"`
	Total      float64     `json:"total"`
}

// Raw returns the unweighted sub-score for f, or 0 when f is not part of the breakdown.
func (b Breakdown) Raw(f Factor) float64 {
	for _, c := range b.Components {
		if c.Factor == f {
			return c.Raw
		}
	}
	return 0
}
