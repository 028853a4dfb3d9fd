package models

// Data source tags carried on every series response.
const (
	SourceLive = "live"
	SourceMock = "mock"
)

// ActivityResponse is the envelope returned for activity series requests.
type ActivityResponse struct {
	Data    []ActivitySample `json:"data"`
	Source  string           `json:"source"`
	Message string           `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// EnvironmentalResponse is the envelope returned for environmental series
// requests.
type EnvironmentalResponse struct {
	Data    []EnvironmentalSample `json:"data"`
	Source  string                `json:"source"`
	Message string                `json:"message,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// MarketResponse is the envelope returned for market series requests.
type MarketResponse struct {
	Data    []MarketSample `json:"data"`
	Source  string         `json:"source"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// CorrelationPayload bundles a correlation result with its significance view.
type CorrelationPayload struct {
	Correlation  CorrelationResult  `json:"correlation"`
	Significance SignificanceReport `json:"significance"`
}

// CorrelationResponse is the envelope returned for correlation requests.
type CorrelationResponse struct {
	Data    CorrelationPayload `json:"data"`
	Source  string             `json:"source"`
	Message string             `json:"message,omitempty"`
	Error   string             `json:"error,omitempty"`
}
