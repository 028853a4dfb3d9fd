package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/codesmog/codesmog-go/internal/config"
	"github.com/codesmog/codesmog-go/internal/models"
	"github.com/codesmog/codesmog-go/internal/registry"
)

const coingeckoProviderName = "coingecko"

// MarketProvider fetches historical price, volume and market-cap series from
// CoinGecko. Unlike the other adapters nothing is estimated here: daily
// percentage change is computed exactly from consecutive prices.
type MarketProvider struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	executor   *Executor
	logger     *logrus.Logger
	now        func() time.Time
}

// NewMarketProvider creates a CoinGecko market provider.
func NewMarketProvider(cfg config.ProviderConfig, executor *Executor, logger *logrus.Logger) *MarketProvider {
	return &MarketProvider{
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		maxRetries: cfg.MaxRetries,
		executor:   executor,
		logger:     logger,
		now:        time.Now,
	}
}

// marketChartResponse mirrors CoinGecko's market_chart payload: arrays of
// [unix_ms, value] points.
type marketChartResponse struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// FetchMarket returns exactly one MarketSample per calendar day in the
// window, oldest first.
func (p *MarketProvider) FetchMarket(ctx context.Context, coin registry.Coin, days int) ([]models.MarketSample, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", fmt.Sprintf("%d", days))
	params.Set("interval", "daily")
	requestURL := fmt.Sprintf("%s/coins/%s/market_chart?%s", p.baseURL, url.PathEscape(coin.Slug), params.Encode())

	header := http.Header{}
	if p.token != "" {
		header.Set("x-cg-demo-api-key", p.token)
	}

	raw, err := Do(ctx, p.executor, p.maxRetries, func(ctx context.Context) (marketChartResponse, error) {
		var out marketChartResponse
		if err := requestJSON(ctx, p.httpClient, coingeckoProviderName, http.MethodGet, requestURL, header, &out); err != nil {
			return marketChartResponse{}, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	return p.transform(raw, coin, days)
}

// dayPoint is one collapsed calendar day of chart data.
type dayPoint struct {
	date   string
	price  float64
	cap    float64
	volume float64
}

func (p *MarketProvider) transform(raw marketChartResponse, coin registry.Coin, days int) ([]models.MarketSample, error) {
	if len(raw.Prices) != len(raw.MarketCaps) || len(raw.Prices) != len(raw.TotalVolumes) {
		return nil, &InvalidResponseError{
			Provider: coingeckoProviderName,
			Reason: fmt.Sprintf("misaligned arrays: prices=%d caps=%d volumes=%d",
				len(raw.Prices), len(raw.MarketCaps), len(raw.TotalVolumes)),
		}
	}
	if len(raw.Prices) < days {
		return nil, &InvalidResponseError{
			Provider: coingeckoProviderName,
			Reason:   fmt.Sprintf("expected at least %d daily points, got %d", days, len(raw.Prices)),
		}
	}

	// The daily interval appends a partial point for today at the current
	// time. Collapse the arrays to one point per calendar day, letting a
	// later point supersede an earlier one on the same date, so the partial
	// reading replaces today's earlier value instead of duplicating the day.
	points := make([]dayPoint, 0, len(raw.Prices))
	for i := range raw.Prices {
		ts := int64(raw.Prices[i][0])
		if ts <= 0 {
			return nil, &InvalidResponseError{
				Provider: coingeckoProviderName,
				Reason:   fmt.Sprintf("non-positive timestamp at index %d", i),
			}
		}
		dp := dayPoint{
			date:   time.UnixMilli(ts).UTC().Format("2006-01-02"),
			price:  raw.Prices[i][1],
			cap:    raw.MarketCaps[i][1],
			volume: raw.TotalVolumes[i][1],
		}
		if n := len(points); n > 0 {
			if dp.date == points[n-1].date {
				points[n-1] = dp
				continue
			}
			if dp.date < points[n-1].date {
				return nil, &InvalidResponseError{
					Provider: coingeckoProviderName,
					Reason:   fmt.Sprintf("points out of order at index %d", i),
				}
			}
		}
		points = append(points, dp)
	}
	if len(points) < days {
		return nil, &InvalidResponseError{
			Provider: coingeckoProviderName,
			Reason:   fmt.Sprintf("expected %d distinct daily points, got %d", days, len(points)),
		}
	}
	points = points[len(points)-days:]

	samples := make([]models.MarketSample, 0, days)
	var prevPrice decimal.Decimal
	for i, dp := range points {
		price := decimal.NewFromFloat(dp.price)
		if price.IsNegative() {
			return nil, &InvalidResponseError{
				Provider: coingeckoProviderName,
				Reason:   fmt.Sprintf("negative price on %s", dp.date),
			}
		}

		change := decimal.Zero
		if i > 0 && !prevPrice.IsZero() {
			change = price.Sub(prevPrice).Div(prevPrice).Mul(decimal.NewFromInt(100))
		}

		samples = append(samples, models.MarketSample{
			Date:              dp.date,
			Coin:              coin.Slug,
			Price:             price,
			Volume:            decimal.NewFromFloat(dp.volume),
			MarketCap:         decimal.NewFromFloat(dp.cap),
			PriceChangePct24h: change,
		})
		prevPrice = price
	}
	return samples, nil
}
