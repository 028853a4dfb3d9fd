package analytics

import "github.com/codesmog/codesmog-go/internal/models"

// InsufficientDataError is a typed "cannot calculate" result with a human-
// readable reason. It is returned before Pearson computation so callers get
// an actionable message rather than a bare NaN.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string { return e.Reason }

// CheckCalculable decides whether correlating the two series is meaningful.
// It returns nil when calculation can proceed.
func CheckCalculable(activity []models.ActivitySample, environmental []models.EnvironmentalSample, aligned []AlignedPair) *InsufficientDataError {
	if len(activity) == 0 {
		return &InsufficientDataError{Reason: "activity series is empty"}
	}
	if len(environmental) == 0 {
		return &InsufficientDataError{Reason: "environmental series is empty"}
	}
	if len(aligned) < 2 {
		return &InsufficientDataError{Reason: "fewer than 2 aligned data points between the series"}
	}
	if activityFlat(aligned) && environmentalFlat(aligned) {
		return &InsufficientDataError{Reason: "both series show zero variation; correlation is undefined"}
	}
	return nil
}

// activityFlat reports whether every activity metric is constant across the
// aligned window.
func activityFlat(pairs []AlignedPair) bool {
	commits := make([]float64, len(pairs))
	stars := make([]float64, len(pairs))
	repos := make([]float64, len(pairs))
	contributors := make([]float64, len(pairs))
	for i, p := range pairs {
		commits[i] = float64(p.Activity.Commits)
		stars[i] = float64(p.Activity.Stars)
		repos[i] = float64(p.Activity.Repositories)
		contributors[i] = float64(p.Activity.Contributors)
	}
	return zeroVariance(commits) && zeroVariance(stars) && zeroVariance(repos) && zeroVariance(contributors)
}

// environmentalFlat reports whether AQI and PM2.5 are both constant across
// the aligned window.
func environmentalFlat(pairs []AlignedPair) bool {
	aqi := make([]float64, len(pairs))
	pm25 := make([]float64, len(pairs))
	for i, p := range pairs {
		aqi[i] = float64(p.Environmental.AQI)
		pm25[i] = p.Environmental.PM25
	}
	return zeroVariance(aqi) && zeroVariance(pm25)
}
