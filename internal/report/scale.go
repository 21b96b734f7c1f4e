package report

import (
	"gonum.org/v1/gonum/floats"
)

// MinMaxScale maps values onto [0,1]. A constant series maps to all zeros.
func MinMaxScale(values []float64) []float64 {
	result := make([]float64, len(values))
	copy(result, values)
	if len(result) == 0 {
		return result
	}

	lo := floats.Min(result)
	hi := floats.Max(result)

	if hi != lo {
		floats.AddConst(-lo, result)
		floats.Scale(1.0/(hi-lo), result)
	} else {
		floats.Scale(0, result)
	}

	return result
}

// CosineSimilarity compares the shape of two series. Mismatched lengths and
// zero vectors compare as 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0.0
	}

	return floats.Dot(a, b) / (normA * normB)
}
