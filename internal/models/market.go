package models

import "github.com/shopspring/decimal"

// MarketSample is one calendar day of market data for a tradable asset.
type MarketSample struct {
	Date              string          `json:"date"`
	Coin              string          `json:"coin"`
	Price             decimal.Decimal `json:"price"`
	Volume            decimal.Decimal `json:"volume"`
	MarketCap         decimal.Decimal `json:"market_cap"`
	PriceChangePct24h decimal.Decimal `json:"price_change_pct_24h"`
}
