package analytics

import (
	"math"

	"github.com/codesmog/codesmog-go/internal/models"
)

// metricPairs names the activity/environmental series combinations that get
// correlated.
var metricPairs = []struct {
	name string
	x    func(p AlignedPair) float64
	y    func(p AlignedPair) float64
}{
	{"commits_aqi", func(p AlignedPair) float64 { return float64(p.Activity.Commits) }, func(p AlignedPair) float64 { return float64(p.Environmental.AQI) }},
	{"commits_pm25", func(p AlignedPair) float64 { return float64(p.Activity.Commits) }, func(p AlignedPair) float64 { return p.Environmental.PM25 }},
	{"stars_aqi", func(p AlignedPair) float64 { return float64(p.Activity.Stars) }, func(p AlignedPair) float64 { return float64(p.Environmental.AQI) }},
	{"repositories_aqi", func(p AlignedPair) float64 { return float64(p.Activity.Repositories) }, func(p AlignedPair) float64 { return float64(p.Environmental.AQI) }},
}

// MetricPairNames lists the metric pairs in computation order.
func MetricPairNames() []string {
	names := make([]string, 0, len(metricPairs))
	for _, mp := range metricPairs {
		names = append(names, mp.name)
	}
	return names
}

// Correlate computes every metric-pair coefficient over the aligned pairs and
// scores the overall confidence.
func Correlate(city string, period int, pairs []AlignedPair) models.CorrelationResult {
	correlations := make(map[string]models.Coefficient, len(metricPairs))
	for _, mp := range metricPairs {
		x := make([]float64, len(pairs))
		y := make([]float64, len(pairs))
		for i, p := range pairs {
			x[i] = mp.x(p)
			y[i] = mp.y(p)
		}
		correlations[mp.name] = models.Coefficient(Pearson(x, y))
	}

	return models.CorrelationResult{
		City:         city,
		Period:       period,
		Correlations: correlations,
		Confidence:   Confidence(len(pairs), correlations),
		DataPoints:   len(pairs),
	}
}

// Confidence scores how trustworthy the coefficients are. The base value
// comes from sample-count buckets and is adjusted by the mean absolute
// coefficient across all valid (non-NaN) pairs.
func Confidence(n int, correlations map[string]models.Coefficient) float64 {
	var confidence float64
	switch {
	case n < 5:
		confidence = 0.1
	case n < 10:
		confidence = 0.3
	case n < 20:
		confidence = 0.5
	case n < 30:
		confidence = 0.7
	default:
		confidence = 0.8
	}

	var sum float64
	var valid int
	for _, c := range correlations {
		if c.IsNaN() {
			continue
		}
		sum += math.Abs(float64(c))
		valid++
	}

	if valid > 0 {
		meanAbs := sum / float64(valid)
		switch {
		case meanAbs > 0.7:
			confidence = math.Min(confidence+0.15, 0.95)
		case meanAbs > 0.5:
			confidence = math.Min(confidence+0.05, 0.85)
		case meanAbs < 0.2:
			confidence = math.Max(confidence-0.1, 0.1)
		}
	}

	return math.Max(0, math.Min(1, confidence))
}
