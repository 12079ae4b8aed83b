package report

import (
	"context"
	"time"

	"github.com/i474232898/weather-image/internal/chart"
	"github.com/i474232898/weather-image/internal/weather"
)

// Report is the fused forecast for a location with its chart descriptors.
type Report struct {
	Query       string                `json:"query"`
	Coordinate  weather.Coordinate    `json:"coordinate"`
	Timezone    string                `json:"timezone"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Records     []weather.FusedRecord `json:"records"`
	Reduction   chart.Reduction       `json:"reduction"`
	Charts      []chart.Descriptor    `json:"charts"`
}

// Chart returns the named chart descriptor.
func (r Report) Chart(name string) (chart.Descriptor, bool) {
	return chart.Find(r.Charts, name)
}

// Forecaster produces fused forecasts for location text.
type Forecaster interface {
	ForecastFor(ctx context.Context, location string) (weather.Forecast, error)
}

// Builder turns location text into a Report.
type Builder struct {
	forecaster Forecaster
	window     int
	now        func() time.Time
}

// NewBuilder creates a Builder charting window hours by default.
func NewBuilder(forecaster Forecaster, window int) *Builder {
	if window <= 0 {
		window = chart.DefaultWindow
	}
	return &Builder{
		forecaster: forecaster,
		window:     window,
		now:        time.Now,
	}
}

// Window returns the default number of hours charted.
func (b *Builder) Window() int {
	return b.window
}

// Build fetches and fuses the forecast for location and prepares its charts.
// hours <= 0 uses the builder's default window.
func (b *Builder) Build(ctx context.Context, location string, hours int) (Report, error) {
	fc, err := b.forecaster.ForecastFor(ctx, location)
	if err != nil {
		return Report{}, err
	}

	if hours <= 0 {
		hours = b.window
	}
	reduction := chart.Reduce(fc.Records, hours)

	return Report{
		Query:       location,
		Coordinate:  fc.Coordinate,
		Timezone:    fc.Timezone,
		GeneratedAt: b.now().UTC(),
		Records:     fc.Records,
		Reduction:   reduction,
		Charts:      chart.Build(reduction),
	}, nil
}
