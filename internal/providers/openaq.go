package providers

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codesmog/codesmog-go/internal/config"
	"github.com/codesmog/codesmog-go/internal/models"
	"github.com/codesmog/codesmog-go/internal/registry"
)

const openaqProviderName = "openaq"

// Per-day perturbation bounds used when synthesizing history around the
// current reading.
const (
	aqiJitter  = 15
	pm25Jitter = 7.5
)

// AirQualityProvider fetches the latest reading near a city's coordinates
// from OpenAQ. The upstream API exposes no historical endpoint, so a day-by-
// day series is synthesized by bounded perturbation around the current
// baseline; true historical variation is not observed.
type AirQualityProvider struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	executor   *Executor
	logger     *logrus.Logger
	now        func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAirQualityProvider creates an OpenAQ environmental provider.
func NewAirQualityProvider(cfg config.ProviderConfig, executor *Executor, logger *logrus.Logger) *AirQualityProvider {
	return &AirQualityProvider{
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		maxRetries: cfg.MaxRetries,
		executor:   executor,
		logger:     logger,
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type latestResponse struct {
	Results []latestResult `json:"results"`
}

type latestResult struct {
	Location    string `json:"location"`
	Coordinates struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"coordinates"`
	Measurements []measurement `json:"measurements"`
}

type measurement struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
}

// FetchEnvironmental returns one EnvironmentalSample per calendar day in the
// window, oldest first, synthesized around the latest station reading.
func (p *AirQualityProvider) FetchEnvironmental(ctx context.Context, city registry.City, days int) ([]models.EnvironmentalSample, error) {
	params := url.Values{}
	params.Set("coordinates", fmt.Sprintf("%.4f,%.4f", city.Lat, city.Lng))
	params.Set("radius", "25000")
	params.Set("limit", "1")
	requestURL := p.baseURL + "/v2/latest?" + params.Encode()

	header := http.Header{}
	if p.token != "" {
		header.Set("X-API-Key", p.token)
	}

	raw, err := Do(ctx, p.executor, p.maxRetries, func(ctx context.Context) (latestResponse, error) {
		var out latestResponse
		if err := requestJSON(ctx, p.httpClient, openaqProviderName, http.MethodGet, requestURL, header, &out); err != nil {
			return latestResponse{}, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	return p.transform(raw, city, days)
}

func (p *AirQualityProvider) transform(raw latestResponse, city registry.City, days int) ([]models.EnvironmentalSample, error) {
	if len(raw.Results) == 0 {
		return nil, &InvalidResponseError{
			Provider: openaqProviderName,
			Reason:   fmt.Sprintf("no stations near %s", city.Slug),
		}
	}

	station := raw.Results[0]
	basePM25 := -1.0
	for _, m := range station.Measurements {
		if m.Parameter == "pm25" {
			basePM25 = m.Value
			break
		}
	}
	if basePM25 < 0 {
		return nil, &InvalidResponseError{
			Provider: openaqProviderName,
			Reason:   fmt.Sprintf("station %q reported no pm25 measurement", station.Location),
		}
	}

	baseline := models.EnvironmentalSample{
		City:        city.Slug,
		AQI:         aqiFromPM25(basePM25),
		PM25:        basePM25,
		StationName: station.Location,
		Coordinates: models.Coordinates{
			Lat: station.Coordinates.Latitude,
			Lng: station.Coordinates.Longitude,
		},
	}
	return p.synthesizeHistory(baseline, days), nil
}

// synthesizeHistory expands a single current reading into a days-long series
// by bounded random perturbation around the baseline. This is a labeled
// approximation kept separate from transformation so a real historical
// endpoint can replace it later.
func (p *AirQualityProvider) synthesizeHistory(baseline models.EnvironmentalSample, days int) []models.EnvironmentalSample {
	end := p.now().UTC()
	start := end.AddDate(0, 0, -(days - 1))

	samples := make([]models.EnvironmentalSample, 0, days)
	for i := 0; i < days; i++ {
		sample := baseline
		sample.Date = start.AddDate(0, 0, i).Format("2006-01-02")
		sample.AQI = clampAQI(baseline.AQI + p.intn(2*aqiJitter+1) - aqiJitter)
		sample.PM25 = math.Max(0, baseline.PM25+p.float64n(2*pm25Jitter)-pm25Jitter)
		samples = append(samples, sample)
	}
	return samples
}

func (p *AirQualityProvider) intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}

func (p *AirQualityProvider) float64n(n float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() * n
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

// aqiFromPM25 converts a PM2.5 concentration (ug/m3) to the US EPA AQI scale
// using the standard piecewise-linear breakpoints.
func aqiFromPM25(pm25 float64) int {
	type breakpoint struct {
		cLow, cHigh float64
		iLow, iHigh float64
	}
	table := []breakpoint{
		{0.0, 12.0, 0, 50},
		{12.1, 35.4, 51, 100},
		{35.5, 55.4, 101, 150},
		{55.5, 150.4, 151, 200},
		{150.5, 250.4, 201, 300},
		{250.5, 500.4, 301, 500},
	}
	if pm25 <= 0 {
		return 0
	}
	for _, bp := range table {
		if pm25 <= bp.cHigh {
			aqi := (bp.iHigh-bp.iLow)/(bp.cHigh-bp.cLow)*(pm25-bp.cLow) + bp.iLow
			return int(math.Round(aqi))
		}
	}
	return 500
}
