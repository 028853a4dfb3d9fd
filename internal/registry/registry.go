// Package registry holds the static catalog of cities and coins the service
// aggregates data for. The catalog validates entity identifiers and seeds
// synthetic data generation with per-city baselines.
package registry

import (
	"fmt"
	"sort"
)

// City describes a catalog city: display metadata, geocoordinates for the
// air-quality lookup, and the baseline AQI used when generating synthetic
// environmental data.
type City struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	BaselineAQI int     `json:"baseline_aqi"`
}

// Coin describes a catalog asset. BasePrice anchors the synthetic market
// series when the live provider is unavailable.
type Coin struct {
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	BasePrice float64 `json:"base_price"`
}

// NotFoundError is returned for identifiers that are not in the catalog. It
// is the only hard failure the data service surfaces to callers.
type NotFoundError struct {
	Kind string
	Slug string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q is not in the catalog", e.Kind, e.Slug)
}

// DefaultBaselineAQI is used for cities without a catalog baseline.
const DefaultBaselineAQI = 60

// Registry is an immutable lookup over the static catalog.
type Registry struct {
	cities map[string]City
	coins  map[string]Coin
}

// New builds the registry from the built-in catalog.
func New() *Registry {
	r := &Registry{
		cities: make(map[string]City, len(catalogCities)),
		coins:  make(map[string]Coin, len(catalogCoins)),
	}
	for _, c := range catalogCities {
		r.cities[c.Slug] = c
	}
	for _, c := range catalogCoins {
		r.coins[c.Slug] = c
	}
	return r
}

// City resolves a city slug, failing with NotFoundError for unknown ids.
func (r *Registry) City(slug string) (City, error) {
	c, ok := r.cities[slug]
	if !ok {
		return City{}, &NotFoundError{Kind: "city", Slug: slug}
	}
	return c, nil
}

// Coin resolves a coin slug, failing with NotFoundError for unknown ids.
func (r *Registry) Coin(slug string) (Coin, error) {
	c, ok := r.coins[slug]
	if !ok {
		return Coin{}, &NotFoundError{Kind: "coin", Slug: slug}
	}
	return c, nil
}

// Cities returns the catalog sorted by slug.
func (r *Registry) Cities() []City {
	out := make([]City, 0, len(r.cities))
	for _, c := range r.cities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// Coins returns the catalog sorted by slug.
func (r *Registry) Coins() []Coin {
	out := make([]Coin, 0, len(r.coins))
	for _, c := range r.coins {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

var catalogCities = []City{
	{Slug: "san-francisco", Name: "San Francisco", Country: "US", Lat: 37.7749, Lng: -122.4194, BaselineAQI: 45},
	{Slug: "new-york", Name: "New York", Country: "US", Lat: 40.7128, Lng: -74.0060, BaselineAQI: 55},
	{Slug: "seattle", Name: "Seattle", Country: "US", Lat: 47.6062, Lng: -122.3321, BaselineAQI: 40},
	{Slug: "austin", Name: "Austin", Country: "US", Lat: 30.2672, Lng: -97.7431, BaselineAQI: 50},
	{Slug: "london", Name: "London", Country: "GB", Lat: 51.5074, Lng: -0.1278, BaselineAQI: 60},
	{Slug: "berlin", Name: "Berlin", Country: "DE", Lat: 52.5200, Lng: 13.4050, BaselineAQI: 50},
	{Slug: "amsterdam", Name: "Amsterdam", Country: "NL", Lat: 52.3676, Lng: 4.9041, BaselineAQI: 45},
	{Slug: "toronto", Name: "Toronto", Country: "CA", Lat: 43.6532, Lng: -79.3832, BaselineAQI: 40},
	{Slug: "tokyo", Name: "Tokyo", Country: "JP", Lat: 35.6762, Lng: 139.6503, BaselineAQI: 65},
	{Slug: "singapore", Name: "Singapore", Country: "SG", Lat: 1.3521, Lng: 103.8198, BaselineAQI: 70},
	{Slug: "bangalore", Name: "Bangalore", Country: "IN", Lat: 12.9716, Lng: 77.5946, BaselineAQI: 110},
	{Slug: "delhi", Name: "Delhi", Country: "IN", Lat: 28.7041, Lng: 77.1025, BaselineAQI: 180},
	{Slug: "beijing", Name: "Beijing", Country: "CN", Lat: 39.9042, Lng: 116.4074, BaselineAQI: 150},
	{Slug: "sao-paulo", Name: "Sao Paulo", Country: "BR", Lat: -23.5505, Lng: -46.6333, BaselineAQI: 75},
}

var catalogCoins = []Coin{
	{Slug: "bitcoin", Name: "Bitcoin", Symbol: "BTC", BasePrice: 65000},
	{Slug: "ethereum", Name: "Ethereum", Symbol: "ETH", BasePrice: 3200},
	{Slug: "solana", Name: "Solana", Symbol: "SOL", BasePrice: 150},
	{Slug: "cardano", Name: "Cardano", Symbol: "ADA", BasePrice: 0.45},
	{Slug: "dogecoin", Name: "Dogecoin", Symbol: "DOGE", BasePrice: 0.12},
}
