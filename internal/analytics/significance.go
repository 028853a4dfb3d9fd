package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/codesmog/codesmog-go/internal/models"
)

// LowConfidenceHighlight is emitted whenever overall confidence falls below
// 0.5, regardless of coefficient strength.
const LowConfidenceHighlight = "Confidence is low: more aligned data is needed before these correlations can be trusted."

// Significance thresholds on |r|.
const (
	strongThreshold      = 0.7
	moderateThreshold    = 0.5
	weakThreshold        = 0.3
	significantMinimum   = 0.8 // overall confidence needed for significance
	lowConfidenceCeiling = 0.5
	intervalLevel        = 95 // percent, for the Fisher interval on each pair
)

// Classify derives the significance view over a correlation result.
func Classify(result models.CorrelationResult) models.SignificanceReport {
	significant := make([]models.SignificantCorrelation, 0, len(result.Correlations))

	names := make([]string, 0, len(result.Correlations))
	for name := range result.Correlations {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		coeff := result.Correlations[name]
		if coeff.IsNaN() {
			continue
		}
		strength := strengthLabel(math.Abs(float64(coeff)))
		if strength == "" {
			continue
		}
		entry := models.SignificantCorrelation{
			Metric:      name,
			Coefficient: coeff,
			Strength:    strength,
			Direction:   directionLabel(float64(coeff)),
		}
		if ci, ok := FisherInterval(float64(coeff), result.DataPoints, intervalLevel); ok {
			entry.ConfidenceInterval = &ci
		}
		significant = append(significant, entry)
	}

	highlights := make([]string, 0, len(significant)+1)
	for _, s := range significant {
		if s.Strength != "strong" {
			continue
		}
		highlights = append(highlights, fmt.Sprintf("Strong %s correlation between %s (r=%.2f)",
			s.Direction, strings.ReplaceAll(s.Metric, "_", " and "), float64(s.Coefficient)))
	}
	if result.Confidence < lowConfidenceCeiling {
		highlights = append(highlights, LowConfidenceHighlight)
	}

	return models.SignificanceReport{
		HasSignificantCorrelations: len(significant) > 0 && result.Confidence >= significantMinimum,
		SignificantCorrelations:    significant,
		Highlights:                 highlights,
		ConfidenceLevel:            ConfidenceLevel(result.Confidence),
	}
}

// ConfidenceLevel labels a confidence score.
func ConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return "very high"
	case confidence >= 0.8:
		return "high"
	case confidence >= 0.6:
		return "moderate"
	default:
		return "low"
	}
}

// strengthLabel returns the tier for |r|, or "" below the weak threshold.
func strengthLabel(abs float64) string {
	switch {
	case abs >= strongThreshold:
		return "strong"
	case abs >= moderateThreshold:
		return "moderate"
	case abs >= weakThreshold:
		return "weak"
	default:
		return ""
	}
}

func directionLabel(r float64) string {
	if r < 0 {
		return "negative"
	}
	return "positive"
}
