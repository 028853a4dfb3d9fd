// Package mockdata produces synthetic series with plausible ranges for use
// when live providers are unavailable or disabled. The shape of every series
// (field presence, date coverage, ordering) is deterministic; only numeric
// magnitudes are randomized.
package mockdata

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codesmog/codesmog-go/internal/models"
	"github.com/codesmog/codesmog-go/internal/registry"
)

// Weekend activity is scaled down to reflect weekday-skewed development.
const weekendMultiplier = 0.6

// Generator builds synthetic activity, environmental and market series.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New creates a generator with a time-seeded random source.
func New() *Generator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource creates a generator with an explicit random source.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{
		rng: rand.New(src),
		now: time.Now,
	}
}

// ActivitySeries returns days synthetic activity samples for a city, one per
// calendar day ending today, oldest first.
func (g *Generator) ActivitySeries(city registry.City, days int) []models.ActivitySample {
	end := g.now().UTC()
	start := end.AddDate(0, 0, -(days - 1))

	samples := make([]models.ActivitySample, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		mult := 1.0
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			mult = weekendMultiplier
		}
		samples = append(samples, models.ActivitySample{
			Date:         day.Format("2006-01-02"),
			City:         city.Slug,
			Commits:      int(float64(100+g.intn(500)) * mult),
			Stars:        int(float64(50+g.intn(200)) * mult),
			Repositories: int(float64(10+g.intn(50)) * mult),
			Contributors: int(float64(20+g.intn(100)) * mult),
		})
	}
	return samples
}

// EnvironmentalSeries returns days synthetic environmental samples around the
// city's baseline AQI, with a seasonal multiplier and bounded noise.
func (g *Generator) EnvironmentalSeries(city registry.City, days int) []models.EnvironmentalSample {
	baseline := city.BaselineAQI
	if baseline <= 0 {
		baseline = registry.DefaultBaselineAQI
	}

	end := g.now().UTC()
	start := end.AddDate(0, 0, -(days - 1))

	samples := make([]models.EnvironmentalSample, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		seasonal := seasonalMultiplier(day.Month())
		aqi := clampAQI(int(float64(baseline)*seasonal) + g.intn(41) - 20)
		pm25 := math.Max(0, 0.4*float64(aqi)+g.float64n(20)-10)

		samples = append(samples, models.EnvironmentalSample{
			Date:        day.Format("2006-01-02"),
			City:        city.Slug,
			AQI:         aqi,
			PM25:        pm25,
			StationName: city.Name + " (synthetic)",
			Coordinates: models.Coordinates{Lat: city.Lat, Lng: city.Lng},
		})
	}
	return samples
}

// MarketSeries returns days synthetic market samples as a bounded random walk
// around the coin's base price.
func (g *Generator) MarketSeries(coin registry.Coin, days int) []models.MarketSample {
	end := g.now().UTC()
	start := end.AddDate(0, 0, -(days - 1))

	price := coin.BasePrice
	prev := 0.0
	samples := make([]models.MarketSample, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		// daily move within +-4%
		price = price * (1 + (g.float64n(0.08) - 0.04))
		if price <= 0 {
			price = coin.BasePrice * 0.01
		}

		change := 0.0
		if i > 0 && prev > 0 {
			change = (price - prev) / prev * 100
		}
		prev = price

		volume := price * float64(1_000_000+g.intn(9_000_000))
		samples = append(samples, models.MarketSample{
			Date:              day.Format("2006-01-02"),
			Coin:              coin.Slug,
			Price:             decimal.NewFromFloat(price).Round(8),
			Volume:            decimal.NewFromFloat(volume).Round(2),
			MarketCap:         decimal.NewFromFloat(volume * 10).Round(2),
			PriceChangePct24h: decimal.NewFromFloat(change).Round(6),
		})
	}
	return samples
}

// seasonalMultiplier biases AQI upward in northern-hemisphere winter and
// downward in summer.
func seasonalMultiplier(m time.Month) float64 {
	switch m {
	case time.December, time.January, time.February:
		return 1.3
	case time.June, time.July, time.August:
		return 0.8
	default:
		return 1.0
	}
}

func clampAQI(v int) int {
	if v < 0 {
		return 0
	}
	if v > 500 {
		return 500
	}
	return v
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

func (g *Generator) float64n(n float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64() * n
}
