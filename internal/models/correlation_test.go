package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoefficient_NaNMarshalsToNull(t *testing.T) {
	data, err := json.Marshal(Coefficient(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestCoefficient_ValueRoundTrip(t *testing.T) {
	data, err := json.Marshal(Coefficient(-0.73))
	require.NoError(t, err)
	assert.Equal(t, "-0.73", string(data))

	var c Coefficient
	require.NoError(t, json.Unmarshal(data, &c))
	assert.InDelta(t, -0.73, float64(c), 1e-12)
	assert.False(t, c.IsNaN())
}

func TestCoefficient_NullUnmarshalsToNaN(t *testing.T) {
	var c Coefficient
	require.NoError(t, json.Unmarshal([]byte("null"), &c))
	assert.True(t, c.IsNaN())
}

func TestCorrelationResult_JSONShape(t *testing.T) {
	result := CorrelationResult{
		City:   "tokyo",
		Period: 14,
		Correlations: map[string]Coefficient{
			"commits_aqi": 0.5,
			"stars_aqi":   Coefficient(math.NaN()),
		},
		Confidence: 0.7,
		DataPoints: 14,
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "tokyo", decoded["city"])
	assert.EqualValues(t, 14, decoded["period"])
	assert.EqualValues(t, 14, decoded["data_points"])
	correlations := decoded["correlations"].(map[string]any)
	assert.Nil(t, correlations["stars_aqi"])

	var back CorrelationResult
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Correlations["stars_aqi"].IsNaN())
	assert.InDelta(t, 0.5, float64(back.Correlations["commits_aqi"]), 1e-12)
}
