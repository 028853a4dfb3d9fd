package analytics

import (
	"sort"

	"github.com/codesmog/codesmog-go/internal/models"
)

// AlignedPair is a date-matched tuple of one activity sample and one
// environmental sample. Pairs exist only transiently while correlating.
type AlignedPair struct {
	Date          string
	Activity      models.ActivitySample
	Environmental models.EnvironmentalSample
}

// Align joins two series on (date, city), drops unmatched dates and returns
// the pairs sorted ascending by date.
func Align(activity []models.ActivitySample, environmental []models.EnvironmentalSample) []AlignedPair {
	byDate := make(map[string]models.EnvironmentalSample, len(environmental))
	for _, e := range environmental {
		byDate[e.Date] = e
	}

	pairs := make([]AlignedPair, 0, len(activity))
	for _, a := range activity {
		e, ok := byDate[a.Date]
		if !ok || e.City != a.City {
			continue
		}
		pairs = append(pairs, AlignedPair{Date: a.Date, Activity: a, Environmental: e})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Date < pairs[j].Date })
	return pairs
}
