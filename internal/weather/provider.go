package weather

import (
	"context"
)

// Provider abstracts the hourly forecast and air-pollution source (e.g. OpenWeatherMap).
type Provider interface {
	Name() string
	FetchForecast(ctx context.Context, c Coordinate) (HourlyForecast, error)
	// FetchPollution returns the current sample followed by forecast samples.
	// An empty result means no pollution data is available.
	FetchPollution(ctx context.Context, c Coordinate) ([]PollutionSample, error)
}

// Geocoder resolves free-text place names into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Coordinate, error)
}
