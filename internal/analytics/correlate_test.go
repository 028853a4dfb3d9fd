package analytics

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesmog/codesmog-go/internal/models"
)

func buildPairs(n int, commits func(i int) int, aqi func(i int) int) []AlignedPair {
	pairs := make([]AlignedPair, 0, n)
	for i := 0; i < n; i++ {
		date := fmt.Sprintf("2026-08-%02d", i+1)
		pairs = append(pairs, AlignedPair{
			Date: date,
			Activity: models.ActivitySample{
				Date: date, City: "berlin",
				Commits: commits(i), Stars: 50 + i*3, Repositories: 10 + i, Contributors: 30 + i,
			},
			Environmental: models.EnvironmentalSample{
				Date: date, City: "berlin",
				AQI: aqi(i), PM25: float64(aqi(i)) * 0.4,
			},
		})
	}
	return pairs
}

func TestAlign_DropsUnmatchedAndSorts(t *testing.T) {
	activity := []models.ActivitySample{
		{Date: "2026-08-03", City: "berlin", Commits: 3},
		{Date: "2026-08-01", City: "berlin", Commits: 1},
		{Date: "2026-08-02", City: "berlin", Commits: 2},
	}
	environmental := []models.EnvironmentalSample{
		{Date: "2026-08-02", City: "berlin", AQI: 40},
		{Date: "2026-08-03", City: "berlin", AQI: 60},
		{Date: "2026-08-09", City: "berlin", AQI: 70},
	}

	pairs := Align(activity, environmental)

	require.Len(t, pairs, 2)
	assert.Equal(t, "2026-08-02", pairs[0].Date)
	assert.Equal(t, "2026-08-03", pairs[1].Date)
	assert.Equal(t, 2, pairs[0].Activity.Commits)
	assert.Equal(t, 40, pairs[0].Environmental.AQI)
}

func TestAlign_RejectsCityMismatch(t *testing.T) {
	activity := []models.ActivitySample{{Date: "2026-08-01", City: "berlin"}}
	environmental := []models.EnvironmentalSample{{Date: "2026-08-01", City: "tokyo"}}

	assert.Empty(t, Align(activity, environmental))
}

func TestCorrelate_ComputesAllMetricPairs(t *testing.T) {
	pairs := buildPairs(10, func(i int) int { return 100 + i*20 }, func(i int) int { return 40 + i*5 })

	result := Correlate("berlin", 14, pairs)

	assert.Equal(t, "berlin", result.City)
	assert.Equal(t, 14, result.Period)
	assert.Equal(t, 10, result.DataPoints)
	require.Len(t, result.Correlations, len(MetricPairNames()))
	for _, name := range MetricPairNames() {
		coeff, ok := result.Correlations[name]
		require.True(t, ok, "missing pair %s", name)
		assert.False(t, coeff.IsNaN(), "pair %s unexpectedly NaN", name)
		assert.GreaterOrEqual(t, float64(coeff), -1.0)
		assert.LessOrEqual(t, float64(coeff), 1.0)
	}
	// commits and AQI both increase linearly
	assert.InDelta(t, 1.0, float64(result.Correlations["commits_aqi"]), 1e-9)
}

func TestCorrelate_ZeroVarianceCommitsYieldsNaN(t *testing.T) {
	// constant commits against a varying environmental series
	pairs := buildPairs(5, func(i int) int { return 100 }, func(i int) int { return 40 + i*7 })

	result := Correlate("berlin", 7, pairs)

	assert.True(t, result.Correlations["commits_aqi"].IsNaN())
	assert.True(t, result.Correlations["commits_pm25"].IsNaN())
	assert.False(t, result.Correlations["stars_aqi"].IsNaN())
}

func TestConfidence_SampleCountBuckets(t *testing.T) {
	// moderate mean |r| so no adjustment fires
	mid := map[string]models.Coefficient{"a": 0.4}
	cases := []struct {
		n    int
		want float64
	}{
		{0, 0.1}, {4, 0.1}, {5, 0.3}, {9, 0.3}, {10, 0.5},
		{19, 0.5}, {20, 0.7}, {29, 0.7}, {30, 0.8}, {90, 0.8},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, Confidence(c.n, mid), 1e-12, "n=%d", c.n)
	}
}

func TestConfidence_StrongCoefficientsBoost(t *testing.T) {
	strong := map[string]models.Coefficient{"a": 0.9, "b": 0.8}

	assert.InDelta(t, 0.95, Confidence(30, strong), 1e-12) // 0.8+0.15 1.0 capped at 0.95
	assert.InDelta(t, 0.25, Confidence(4, strong), 1e-12)  // 0.1+0.15
}

func TestConfidence_ModerateBoostAndWeakPenalty(t *testing.T) {
	moderate := map[string]models.Coefficient{"a": 0.6}
	weak := map[string]models.Coefficient{"a": 0.1}

	assert.InDelta(t, 0.85, Confidence(30, moderate), 1e-12) // capped at 0.85
	assert.InDelta(t, 0.7, Confidence(30, weak), 1e-12)      // 0.8-0.1
	assert.InDelta(t, 0.1, Confidence(4, weak), 1e-12)       // floored at 0.1
}

func TestConfidence_IgnoresNaNCoefficients(t *testing.T) {
	mixed := map[string]models.Coefficient{
		"a": models.Coefficient(math.NaN()),
		"b": 0.9,
	}

	// only the valid pair contributes: mean |r| = 0.9 > 0.7
	assert.InDelta(t, 0.95, Confidence(30, mixed), 1e-12)
}

func TestConfidence_AllNaNKeepsBase(t *testing.T) {
	allNaN := map[string]models.Coefficient{"a": models.Coefficient(math.NaN())}

	assert.InDelta(t, 0.5, Confidence(12, allNaN), 1e-12)
}

func TestConfidence_AlwaysInUnitInterval(t *testing.T) {
	for n := 0; n <= 100; n += 7 {
		for _, r := range []float64{0, 0.15, 0.45, 0.65, 0.95} {
			c := Confidence(n, map[string]models.Coefficient{"a": models.Coefficient(r)})
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 1.0)
		}
	}
}
