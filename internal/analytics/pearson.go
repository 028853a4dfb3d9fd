// Package analytics implements the correlation engine: Pearson coefficients,
// series alignment, confidence scoring, significance classification and
// Fisher z-transform confidence intervals.
package analytics

import "math"

// Pearson computes the correlation coefficient between two equal-length
// series. It returns NaN (never an error) when the lengths differ, fewer
// than two points exist, or either series has zero variance.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n < 2 {
		return math.NaN()
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
	}

	fn := float64(n)
	denom := math.Sqrt((fn*sumXX - sumX*sumX) * (fn*sumYY - sumY*sumY))
	if denom == 0 || math.IsNaN(denom) {
		return math.NaN()
	}

	r := (fn*sumXY - sumX*sumY) / denom
	// floating-point rounding can push r a hair past +-1
	return math.Max(-1, math.Min(1, r))
}

// zeroVariance reports whether every value in the series equals the first.
func zeroVariance(values []float64) bool {
	if len(values) == 0 {
		return true
	}
	first := values[0]
	for _, v := range values[1:] {
		if v != first {
			return false
		}
	}
	return true
}
