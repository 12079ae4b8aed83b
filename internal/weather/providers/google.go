package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/i474232898/weather-image/internal/weather"
	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
)

// geocoder keeps its API key in a package variable; serialize access to it.
var googleMu sync.Mutex

// GoogleGeocoder resolves place names with the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey  string
	circuit *gobreaker.CircuitBreaker

	// lookup is geocoder.Geocoding; replaced in tests.
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder creates a GoogleGeocoder using apiKey.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey:  apiKey,
		circuit: newCircuitBreaker("google-geocoder"),
		lookup:  geocoder.Geocoding,
	}
}

// Geocode returns the coordinate of the best match for query.
func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) (weather.Coordinate, error) {
	if g.apiKey == "" {
		return weather.Coordinate{}, fmt.Errorf("google geocoder: %w", ErrMissingAPIKey)
	}
	if err := ctx.Err(); err != nil {
		return weather.Coordinate{}, err
	}

	result, err := g.circuit.Execute(func() (interface{}, error) {
		googleMu.Lock()
		defer googleMu.Unlock()

		geocoder.ApiKey = g.apiKey
		return g.lookup(geocoder.Address{City: query})
	})
	if err != nil {
		return weather.Coordinate{}, fmt.Errorf("google geocoder: %w", err)
	}

	loc, ok := result.(geocoder.Location)
	if !ok || (loc.Latitude == 0 && loc.Longitude == 0) {
		return weather.Coordinate{}, weather.ErrLocationNotFound
	}

	return weather.Coordinate{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}
