package models

// ActivitySample is one calendar day of aggregated repository activity for a
// city. Dates are "YYYY-MM-DD" and unique per (city, day).
type ActivitySample struct {
	Date         string `json:"date"`
	City         string `json:"city"`
	Commits      int    `json:"commits"`
	Stars        int    `json:"stars"`
	Repositories int    `json:"repositories"`
	Contributors int    `json:"contributors"`
}
