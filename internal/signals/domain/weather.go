package signals

import (
	"context"
	"encoding/json"
	"time"
)

// ForecastPayload is the forecast embedded in a weather record. Pointer
// fields distinguish "absent" from zero: an absent forecast parameter falls
// back to the current observation, which reads as no change.
type ForecastPayload struct {
	WindSpeed  *float64 `json:"windSpeed"`
	CloudCover *float64 `json:"cloudCover"`
}

// ForecastBlock is one block of a full-day generation forecast.
type ForecastBlock struct {
	Forecast float64 `json:"forecast"`
}

// WeatherRecord is the latest observation for a location plus its embedded
// forecast document.
type WeatherRecord struct {
	Location    string
	Temperature float64
	Humidity    float64
	WindSpeed   float64
	CloudCover  float64
	Pressure    float64
	Forecast    []byte
	LastUpdated time.Time
}

// ForecastData decodes the embedded forecast payload. Malformed payloads
// read as absent.
func (w *WeatherRecord) ForecastData() (ForecastPayload, bool) {
	if w == nil || len(w.Forecast) == 0 {
		return ForecastPayload{}, false
	}
	var payload ForecastPayload
	if err := json.Unmarshal(w.Forecast, &payload); err != nil {
		return ForecastPayload{}, false
	}
	if payload.WindSpeed == nil && payload.CloudCover == nil {
		return ForecastPayload{}, false
	}
	return payload, true
}

// WeatherReader loads the latest weather record for a location key.
type WeatherReader interface {
	LatestByLocation(ctx context.Context, location string) (*WeatherRecord, error)
}
