package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Forecast is the fused hourly forecast for one coordinate.
type Forecast struct {
	Coordinate Coordinate    `json:"coordinate"`
	Timezone   string        `json:"timezone"`
	Records    []FusedRecord `json:"records"`

	// PollutionAvailable is false when the provider returned no usable pollution data.
	PollutionAvailable bool `json:"pollutionAvailable"`
}

// Service resolves locations, fetches provider data and fuses it.
type Service struct {
	provider Provider
	geocoder Geocoder
	norm     Normalizer
}

// NewService creates a new Service. geocoder may be nil, in which case only
// "lat,lon" locations can be resolved.
func NewService(provider Provider, geocoder Geocoder, norm Normalizer) *Service {
	return &Service{
		provider: provider,
		geocoder: geocoder,
		norm:     norm,
	}
}

// Resolve turns location text into a Coordinate, parsing "lat,lon" directly
// and delegating anything else to the geocoder.
func (s *Service) Resolve(ctx context.Context, text string) (Coordinate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Coordinate{}, fmt.Errorf("%w: empty location", ErrInvalidLocation)
	}

	c, ok, err := ParseCoordinate(text)
	if err != nil {
		return Coordinate{}, err
	}
	if ok {
		return c, nil
	}

	if s.geocoder == nil {
		return Coordinate{}, ErrGeocoderUnavailable
	}

	c, err = s.geocoder.Geocode(ctx, text)
	if err != nil {
		return Coordinate{}, fmt.Errorf("geocode %q: %w", text, err)
	}
	slog.Debug("location geocoded", "query", text, "lat", c.Lat, "lon", c.Lon)
	return c, nil
}

// Forecast fetches the hourly forecast and pollution data concurrently and
// fuses them. A pollution failure is logged and the forecast is fused
// without AQHI; a forecast failure is returned.
func (s *Service) Forecast(ctx context.Context, c Coordinate) (Forecast, error) {
	if s.provider == nil {
		return Forecast{}, errors.New("no weather provider configured")
	}

	var (
		wg           sync.WaitGroup
		hourly       HourlyForecast
		forecastErr  error
		pollution    []PollutionSample
		pollutionErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		hourly, forecastErr = s.provider.FetchForecast(ctx, c)
	}()
	go func() {
		defer wg.Done()
		pollution, pollutionErr = s.provider.FetchPollution(ctx, c)
	}()
	wg.Wait()

	if forecastErr != nil {
		return Forecast{}, fmt.Errorf("provider %s forecast: %w", s.provider.Name(), forecastErr)
	}
	if pollutionErr != nil {
		slog.Warn("pollution fetch failed; continuing without AQHI",
			"provider", s.provider.Name(),
			"lat", c.Lat,
			"lon", c.Lon,
			"error", pollutionErr,
		)
		pollution = nil
	}

	target, err := s.norm.ResolveZone(hourly.Timezone)
	if err != nil {
		return Forecast{}, err
	}

	records, err := Fuse(s.norm, target, hourly.Hourly, pollution)
	if err != nil {
		return Forecast{}, err
	}

	slog.Debug("forecast fused",
		"provider", s.provider.Name(),
		"timezone", hourly.Timezone,
		"records", len(records),
		"pollution_samples", len(pollution),
	)

	return Forecast{
		Coordinate:         c,
		Timezone:           hourly.Timezone,
		Records:            records,
		PollutionAvailable: len(pollution) > 0,
	}, nil
}

// ForecastFor resolves the location text and returns its fused forecast.
func (s *Service) ForecastFor(ctx context.Context, text string) (Forecast, error) {
	c, err := s.Resolve(ctx, text)
	if err != nil {
		return Forecast{}, err
	}
	return s.Forecast(ctx, c)
}
