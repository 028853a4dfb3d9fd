// Package services contains the data service: the single entry point that
// decides between live and synthetic data, owns the caches and the per-entity
// error memory, and drives the correlation engine.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codesmog/codesmog-go/internal/analytics"
	"github.com/codesmog/codesmog-go/internal/cache"
	"github.com/codesmog/codesmog-go/internal/metrics"
	"github.com/codesmog/codesmog-go/internal/models"
	"github.com/codesmog/codesmog-go/internal/providers"
	"github.com/codesmog/codesmog-go/internal/registry"
)

// ErrInvalidDays is returned for period lengths outside the supported set.
var ErrInvalidDays = errors.New("days must be one of 7, 14, 30, 60 or 90")

var validDays = map[int]bool{7: true, 14: true, 30: true, 60: true, 90: true}

// Advisory messages attached to synthetic responses. Naming the unavailable
// provider in the message is part of the response contract.
const (
	githubUnavailableMsg    = "GitHub is unavailable; serving synthetic activity data"
	openaqUnavailableMsg    = "OpenAQ is unavailable; serving synthetic air-quality data"
	coingeckoUnavailableMsg = "CoinGecko is unavailable; serving synthetic market data"
)

// ActivityFetcher fetches live repository activity.
type ActivityFetcher interface {
	FetchActivity(ctx context.Context, city registry.City, days int) ([]models.ActivitySample, error)
}

// EnvironmentalFetcher fetches live air-quality data.
type EnvironmentalFetcher interface {
	FetchEnvironmental(ctx context.Context, city registry.City, days int) ([]models.EnvironmentalSample, error)
}

// MarketFetcher fetches live market data.
type MarketFetcher interface {
	FetchMarket(ctx context.Context, coin registry.Coin, days int) ([]models.MarketSample, error)
}

// MockSource generates the synthetic fallback series. Keeping it behind an
// interface keeps mock generation out of the live code path and swappable in
// tests.
type MockSource interface {
	ActivitySeries(city registry.City, days int) []models.ActivitySample
	EnvironmentalSeries(city registry.City, days int) []models.EnvironmentalSample
	MarketSeries(coin registry.Coin, days int) []models.MarketSample
}

// TTLs are the cache freshness windows per series type.
type TTLs struct {
	Activity      time.Duration
	Environmental time.Duration
	Correlation   time.Duration
	Market        time.Duration
}

// DataService orchestrates fetch, cache and fallback per entity.
type DataService struct {
	registry      *registry.Registry
	activity      ActivityFetcher
	environmental EnvironmentalFetcher
	market        MarketFetcher
	mock          MockSource
	store         cache.Store
	ttls          TTLs
	forceMock     bool
	logger        *logrus.Logger
	metrics       *metrics.Metrics

	errMu      sync.Mutex
	lastErrors map[string]string
}

// NewDataService wires the orchestrator. store and mock must be non-nil;
// metrics may be nil.
func NewDataService(
	reg *registry.Registry,
	activity ActivityFetcher,
	environmental EnvironmentalFetcher,
	market MarketFetcher,
	mock MockSource,
	store cache.Store,
	ttls TTLs,
	forceMock bool,
	logger *logrus.Logger,
	m *metrics.Metrics,
) *DataService {
	return &DataService{
		registry:      reg,
		activity:      activity,
		environmental: environmental,
		market:        market,
		mock:          mock,
		store:         store,
		ttls:          ttls,
		forceMock:     forceMock,
		logger:        logger,
		metrics:       m,
		lastErrors:    make(map[string]string),
	}
}

// GetActivity returns the activity series for a city. Unknown cities fail
// with registry.NotFoundError; every other failure degrades to synthetic
// data.
func (s *DataService) GetActivity(ctx context.Context, citySlug string, days int) (*models.ActivityResponse, error) {
	if !validDays[days] {
		return nil, ErrInvalidDays
	}
	city, err := s.registry.City(citySlug)
	if err != nil {
		return nil, err
	}

	data, source, message, errDetail := fetchSeries(ctx, s, seriesRequest[models.ActivitySample]{
		cacheKey:       fmt.Sprintf("activity:%s:%d", city.Slug, days),
		errorKey:       "activity:" + city.Slug,
		series:         "activity",
		provider:       "github",
		ttl:            s.ttls.Activity,
		unavailableMsg: githubUnavailableMsg,
		live: func(ctx context.Context) ([]models.ActivitySample, error) {
			return s.activity.FetchActivity(ctx, city, days)
		},
		mock: func() []models.ActivitySample {
			return s.mock.ActivitySeries(city, days)
		},
	})
	return &models.ActivityResponse{Data: data, Source: source, Message: message, Error: errDetail}, nil
}

// GetEnvironmental returns the air-quality series for a city.
func (s *DataService) GetEnvironmental(ctx context.Context, citySlug string, days int) (*models.EnvironmentalResponse, error) {
	if !validDays[days] {
		return nil, ErrInvalidDays
	}
	city, err := s.registry.City(citySlug)
	if err != nil {
		return nil, err
	}

	data, source, message, errDetail := fetchSeries(ctx, s, seriesRequest[models.EnvironmentalSample]{
		cacheKey:       fmt.Sprintf("environmental:%s:%d", city.Slug, days),
		errorKey:       "environmental:" + city.Slug,
		series:         "environmental",
		provider:       "openaq",
		ttl:            s.ttls.Environmental,
		unavailableMsg: openaqUnavailableMsg,
		live: func(ctx context.Context) ([]models.EnvironmentalSample, error) {
			return s.environmental.FetchEnvironmental(ctx, city, days)
		},
		mock: func() []models.EnvironmentalSample {
			return s.mock.EnvironmentalSeries(city, days)
		},
	})
	return &models.EnvironmentalResponse{Data: data, Source: source, Message: message, Error: errDetail}, nil
}

// GetMarket returns the market series for a coin.
func (s *DataService) GetMarket(ctx context.Context, coinSlug string, days int) (*models.MarketResponse, error) {
	if !validDays[days] {
		return nil, ErrInvalidDays
	}
	coin, err := s.registry.Coin(coinSlug)
	if err != nil {
		return nil, err
	}

	data, source, message, errDetail := fetchSeries(ctx, s, seriesRequest[models.MarketSample]{
		cacheKey:       fmt.Sprintf("market:%s:%d", coin.Slug, days),
		errorKey:       "market:" + coin.Slug,
		series:         "market",
		provider:       "coingecko",
		ttl:            s.ttls.Market,
		unavailableMsg: coingeckoUnavailableMsg,
		live: func(ctx context.Context) ([]models.MarketSample, error) {
			return s.market.FetchMarket(ctx, coin, days)
		},
		mock: func() []models.MarketSample {
			return s.mock.MarketSeries(coin, days)
		},
	})
	return &models.MarketResponse{Data: data, Source: source, Message: message, Error: errDetail}, nil
}

// GetCorrelation fetches the activity and environmental series concurrently,
// validates that correlation is meaningful, and computes the result with its
// significance view. The combined response is mock-tagged if either input
// was synthetic.
func (s *DataService) GetCorrelation(ctx context.Context, citySlug string, days int) (*models.CorrelationResponse, error) {
	if !validDays[days] {
		return nil, ErrInvalidDays
	}
	city, err := s.registry.City(citySlug)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("correlation:%s:%d", city.Slug, days)
	if entry, ok := s.store.Get(ctx, key); ok {
		var payload models.CorrelationPayload
		if err := json.Unmarshal(entry.Payload, &payload); err == nil {
			s.countCacheHit("correlation")
			return &models.CorrelationResponse{Data: payload, Source: entry.Source, Message: entry.Message}, nil
		}
		s.logger.WithFields(logrus.Fields{"key": key}).Warn("Discarding undecodable correlation cache entry")
	}
	s.countCacheMiss("correlation")

	var (
		wg      sync.WaitGroup
		actResp *models.ActivityResponse
		envResp *models.EnvironmentalResponse
		actErr  error
		envErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		actResp, actErr = s.GetActivity(ctx, citySlug, days)
	}()
	go func() {
		defer wg.Done()
		envResp, envErr = s.GetEnvironmental(ctx, citySlug, days)
	}()
	wg.Wait()
	if actErr != nil {
		return nil, actErr
	}
	if envErr != nil {
		return nil, envErr
	}

	source := models.SourceLive
	if actResp.Source == models.SourceMock || envResp.Source == models.SourceMock {
		source = models.SourceMock
	}
	message := joinMessages(actResp.Message, envResp.Message)

	aligned := analytics.Align(actResp.Data, envResp.Data)
	if insErr := analytics.CheckCalculable(actResp.Data, envResp.Data, aligned); insErr != nil {
		s.logger.WithFields(logrus.Fields{
			"city":   city.Slug,
			"days":   days,
			"reason": insErr.Reason,
		}).Info("Correlation not calculable")
		payload := models.CorrelationPayload{
			Correlation: models.CorrelationResult{
				City:       city.Slug,
				Period:     days,
				DataPoints: len(aligned),
			},
			Significance: models.SignificanceReport{
				SignificantCorrelations: []models.SignificantCorrelation{},
				Highlights:              []string{},
				ConfidenceLevel:         analytics.ConfidenceLevel(0),
			},
		}
		return &models.CorrelationResponse{Data: payload, Source: source, Message: message, Error: insErr.Reason}, nil
	}

	result := analytics.Correlate(city.Slug, days, aligned)
	payload := models.CorrelationPayload{
		Correlation:  result,
		Significance: analytics.Classify(result),
	}
	if s.metrics != nil {
		s.metrics.CorrelationsTotal.Inc()
	}

	if raw, err := json.Marshal(payload); err == nil {
		entry := &cache.Entry{Payload: raw, Source: source, Message: message, CreatedAt: time.Now()}
		if err := s.store.Set(ctx, key, entry, s.ttls.Correlation); err != nil {
			s.logger.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Failed to cache correlation")
		}
	}

	return &models.CorrelationResponse{Data: payload, Source: source, Message: message}, nil
}

// seriesRequest bundles everything fetchSeries needs for one series type.
type seriesRequest[T any] struct {
	cacheKey       string
	errorKey       string
	series         string
	provider       string
	ttl            time.Duration
	unavailableMsg string
	live           func(context.Context) ([]T, error)
	mock           func() []T
}

// fetchSeries implements the shared cache -> mock-bias -> live -> fallback
// decision. Both live and synthetic results are cached with their origin so
// cache hits report their source truthfully.
func fetchSeries[T any](ctx context.Context, s *DataService, req seriesRequest[T]) (data []T, source, message, errDetail string) {
	if entry, ok := s.store.Get(ctx, req.cacheKey); ok {
		var cached []T
		if err := json.Unmarshal(entry.Payload, &cached); err == nil {
			s.countCacheHit(req.series)
			return cached, entry.Source, entry.Message, ""
		}
		s.logger.WithFields(logrus.Fields{"key": req.cacheKey}).Warn("Discarding undecodable cache entry")
	}
	s.countCacheMiss(req.series)

	if s.forceMock || s.lastError(req.errorKey) != "" {
		data = req.mock()
		cacheSeries(ctx, s, req, data, models.SourceMock, req.unavailableMsg)
		s.countFallback(req.provider)
		return data, models.SourceMock, req.unavailableMsg, ""
	}

	live, err := req.live(ctx)
	if err == nil {
		s.clearError(req.errorKey)
		cacheSeries(ctx, s, req, live, models.SourceLive, "")
		return live, models.SourceLive, "", ""
	}

	s.recordError(req.errorKey, err)
	s.logFetchFailure(req.provider, req.series, err)
	s.countFallback(req.provider)

	data = req.mock()
	cacheSeries(ctx, s, req, data, models.SourceMock, req.unavailableMsg)
	return data, models.SourceMock, req.unavailableMsg, err.Error()
}

func cacheSeries[T any](ctx context.Context, s *DataService, req seriesRequest[T], data []T, source, message string) {
	raw, err := json.Marshal(data)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"key": req.cacheKey, "error": err.Error()}).Warn("Failed to marshal series for caching")
		return
	}
	entry := &cache.Entry{Payload: raw, Source: source, Message: message, CreatedAt: time.Now()}
	if err := s.store.Set(ctx, req.cacheKey, entry, req.ttl); err != nil {
		s.logger.WithFields(logrus.Fields{"key": req.cacheKey, "error": err.Error()}).Warn("Failed to cache series")
	}
}

// logFetchFailure logs invalid-payload failures distinctly from transient
// ones.
func (s *DataService) logFetchFailure(provider, series string, err error) {
	fields := logrus.Fields{"provider": provider, "series": series, "error": err.Error()}
	var invalid *providers.InvalidResponseError
	if errors.As(err, &invalid) {
		s.logger.WithFields(fields).Error("Provider returned an invalid payload, falling back to synthetic data")
		return
	}
	s.logger.WithFields(fields).Warn("Provider fetch failed, falling back to synthetic data")
}

func (s *DataService) lastError(key string) string {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErrors[key]
}

func (s *DataService) recordError(key string, err error) {
	s.errMu.Lock()
	s.lastErrors[key] = err.Error()
	s.errMu.Unlock()
}

func (s *DataService) clearError(key string) {
	s.errMu.Lock()
	delete(s.lastErrors, key)
	s.errMu.Unlock()
}

func (s *DataService) countCacheHit(series string) {
	if s.metrics != nil {
		s.metrics.CacheHits.WithLabelValues(series).Inc()
	}
}

func (s *DataService) countCacheMiss(series string) {
	if s.metrics != nil {
		s.metrics.CacheMisses.WithLabelValues(series).Inc()
	}
}

func (s *DataService) countFallback(provider string) {
	if s.metrics != nil {
		s.metrics.MockFallbacks.WithLabelValues(provider).Inc()
	}
}

func joinMessages(msgs ...string) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m != "" {
			parts = append(parts, m)
		}
	}
	return strings.Join(parts, "; ")
}
