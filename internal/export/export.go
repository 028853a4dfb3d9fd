// Package export renders correlation results and series as CSV or JSON. It
// reads only the public fields of the domain models.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/codesmog/codesmog-go/internal/models"
)

var correlationHeader = []string{"city", "period", "data_points", "confidence", "metric", "coefficient"}

// WriteCorrelationCSV writes one row per metric pair. NaN coefficients are
// written as an empty field.
func WriteCorrelationCSV(w io.Writer, result models.CorrelationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(correlationHeader); err != nil {
		return err
	}

	metrics := make([]string, 0, len(result.Correlations))
	for m := range result.Correlations {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)

	for _, metric := range metrics {
		coeff := result.Correlations[metric]
		field := ""
		if !coeff.IsNaN() {
			field = strconv.FormatFloat(float64(coeff), 'f', -1, 64)
		}
		row := []string{
			result.City,
			strconv.Itoa(result.Period),
			strconv.Itoa(result.DataPoints),
			strconv.FormatFloat(result.Confidence, 'f', -1, 64),
			metric,
			field,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCorrelationCSV parses a document produced by WriteCorrelationCSV.
func ReadCorrelationCSV(r io.Reader) (models.CorrelationResult, error) {
	var result models.CorrelationResult

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return result, fmt.Errorf("failed to parse correlation csv: %w", err)
	}
	if len(records) < 2 {
		return result, fmt.Errorf("correlation csv has no data rows")
	}

	result.Correlations = make(map[string]models.Coefficient, len(records)-1)
	for i, row := range records[1:] {
		if len(row) != len(correlationHeader) {
			return result, fmt.Errorf("row %d has %d fields, want %d", i+1, len(row), len(correlationHeader))
		}
		period, err := strconv.Atoi(row[1])
		if err != nil {
			return result, fmt.Errorf("row %d: bad period: %w", i+1, err)
		}
		dataPoints, err := strconv.Atoi(row[2])
		if err != nil {
			return result, fmt.Errorf("row %d: bad data_points: %w", i+1, err)
		}
		confidence, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return result, fmt.Errorf("row %d: bad confidence: %w", i+1, err)
		}

		result.City = row[0]
		result.Period = period
		result.DataPoints = dataPoints
		result.Confidence = confidence

		coeff := math.NaN()
		if row[5] != "" {
			coeff, err = strconv.ParseFloat(row[5], 64)
			if err != nil {
				return result, fmt.Errorf("row %d: bad coefficient: %w", i+1, err)
			}
		}
		result.Correlations[row[4]] = models.Coefficient(coeff)
	}
	return result, nil
}

// CorrelationJSON marshals a result; NaN coefficients encode as null.
func CorrelationJSON(result models.CorrelationResult) ([]byte, error) {
	return json.Marshal(result)
}

// WriteActivityCSV writes an activity series, one row per day.
func WriteActivityCSV(w io.Writer, samples []models.ActivitySample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "city", "commits", "stars", "repositories", "contributors"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			s.Date, s.City,
			strconv.Itoa(s.Commits), strconv.Itoa(s.Stars),
			strconv.Itoa(s.Repositories), strconv.Itoa(s.Contributors),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEnvironmentalCSV writes an environmental series, one row per day.
func WriteEnvironmentalCSV(w io.Writer, samples []models.EnvironmentalSample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "city", "aqi", "pm25", "station_name", "lat", "lng"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			s.Date, s.City,
			strconv.Itoa(s.AQI),
			strconv.FormatFloat(s.PM25, 'f', -1, 64),
			s.StationName,
			strconv.FormatFloat(s.Coordinates.Lat, 'f', -1, 64),
			strconv.FormatFloat(s.Coordinates.Lng, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
