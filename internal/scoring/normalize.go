package scoring

import (
	"slices"

	"gonum.org/v1/gonum/floats"
)

// scaleToUnitSum returns a copy of values rescaled so it sums to 1. A vector
// whose sum is not positive is returned as an unscaled copy.
func scaleToUnitSum(values []float64) []float64 {
	out := slices.Clone(values)
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out
}
