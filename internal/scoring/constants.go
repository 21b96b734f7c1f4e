package scoring

const (
	// WeightTolerance bounds how far a weight vector may drift from 1.0.
	WeightTolerance = 1e-9

	ReputationCap     = 2.0
	RankingCap        = 5.0
	TimingWindowHours = 24.0
	TimeScaleFloor    = 0.001
	NeutralImpact     = 0.5
)

func DefaultCertaintyParams() GaussianParams {
	return GaussianParams{
		Amplitude: 1.0,
		Gain:      0.02,
		Center:    50.0,
	}
}

func DefaultAccuracyParams() GaussianParams {
	return GaussianParams{
		Amplitude: 1.0,
		Gain:      0.02,
	}
}
