package models

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EnvironmentalSample is one calendar day of air-quality data for a city.
// AQI is bounded to [0, 500]; PM25 is non-negative.
type EnvironmentalSample struct {
	Date        string      `json:"date"`
	City        string      `json:"city"`
	AQI         int         `json:"aqi"`
	PM25        float64     `json:"pm25"`
	StationName string      `json:"station_name"`
	Coordinates Coordinates `json:"coordinates"`
}
