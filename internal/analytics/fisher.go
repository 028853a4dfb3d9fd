package analytics

import (
	"math"

	"github.com/codesmog/codesmog-go/internal/models"
)

// criticalValues maps a confidence level (percent) to its two-tailed normal
// critical value.
var criticalValues = map[int]float64{
	90: 1.6449,
	95: 1.9600,
	98: 2.3263,
	99: 2.5758,
}

// FisherInterval estimates the confidence interval for coefficient r at the
// given sample size. The second return value is false ("unavailable", not an
// error) when n < 4, r is NaN, or the level has no critical-value entry.
func FisherInterval(r float64, n, level int) (models.ConfidenceInterval, bool) {
	crit, ok := criticalValues[level]
	if !ok || n < 4 || math.IsNaN(r) {
		return models.ConfidenceInterval{}, false
	}

	z := 0.5 * math.Log((1+r)/(1-r))
	se := 1 / math.Sqrt(float64(n-3))
	margin := crit * se

	lower := math.Tanh(z - margin)
	upper := math.Tanh(z + margin)

	return models.ConfidenceInterval{
		Lower: math.Max(-1, math.Min(1, lower)),
		Upper: math.Max(-1, math.Min(1, upper)),
		Level: level,
	}, true
}
