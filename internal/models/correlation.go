package models

import (
	"encoding/json"
	"math"
)

// Coefficient is a Pearson correlation coefficient. It is always in [-1, 1]
// or NaN; NaN encodes to JSON null so exported results stay parseable.
type Coefficient float64

// IsNaN reports whether the coefficient could not be computed.
func (c Coefficient) IsNaN() bool {
	return math.IsNaN(float64(c))
}

// MarshalJSON encodes NaN as null.
func (c Coefficient) MarshalJSON() ([]byte, error) {
	if c.IsNaN() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(c))
}

// UnmarshalJSON decodes null back to NaN.
func (c *Coefficient) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Coefficient(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Coefficient(v)
	return nil
}

// CorrelationResult holds the coefficients computed between a city's activity
// series and its environmental series over a requested period.
type CorrelationResult struct {
	City         string                 `json:"city"`
	Period       int                    `json:"period"`
	Correlations map[string]Coefficient `json:"correlations"`
	Confidence   float64                `json:"confidence"`
	DataPoints   int                    `json:"data_points"`
}

// ConfidenceInterval is a Fisher z-transform interval around a correlation
// coefficient.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level int     `json:"level"`
}

// SignificantCorrelation is one metric pair that cleared the significance
// threshold. ConfidenceInterval is nil when the interval cannot be estimated
// (fewer than 4 data points).
type SignificantCorrelation struct {
	Metric             string              `json:"metric"`
	Coefficient        Coefficient         `json:"coefficient"`
	Strength           string              `json:"strength"`
	Direction          string              `json:"direction"`
	ConfidenceInterval *ConfidenceInterval `json:"confidence_interval,omitempty"`
}

// SignificanceReport is a derived view over a CorrelationResult.
type SignificanceReport struct {
	HasSignificantCorrelations bool                     `json:"has_significant_correlations"`
	SignificantCorrelations    []SignificantCorrelation `json:"significant_correlations"`
	Highlights                 []string                 `json:"highlights"`
	ConfidenceLevel            string                   `json:"confidence_level"`
}
