package weather

import (
	"time"
)

// Pollutant codes used by the air-pollution provider.
const (
	PollutantOzone           = "o3"
	PollutantNitrogenDioxide = "no2"
	PollutantPM25            = "pm2_5"
)

// Coordinate is a resolved geographic point in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Condition is a single weather condition descriptor as reported by the provider.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// WeatherSample is one hourly entry of the provider's forecast.
// Temperatures are in Kelvin; a nil temperature field means the provider omitted it.
type WeatherSample struct {
	Timestamp int64

	Temperature *float64
	DewPoint    *float64
	FeelsLike   *float64

	// PrecipProbability is 0..1; nil when the provider omitted it.
	PrecipProbability *float64

	HumidityPct float64
	PressureHpa float64
	WindSpeedMS float64
	UVIndex     float64
	CloudsPct   float64

	Conditions []Condition

	Sunrise *int64
	Sunset  *int64
}

// HourlyForecast is the provider's hourly forecast for one location.
// Hourly entries are expected to be ordered by Timestamp ascending.
type HourlyForecast struct {
	// Timezone is the IANA identifier of the forecast location.
	Timezone string
	Hourly   []WeatherSample
}

// PollutionSample holds pollutant concentrations keyed by pollutant code.
type PollutionSample struct {
	Timestamp  int64              `json:"timestamp"`
	Components map[string]float64 `json:"components"`
}

// FusedRecord is a weather sample enriched with local time, Celsius values
// and, when available, the nearest pollution sample and its AQHI.
type FusedRecord struct {
	Timestamp int64     `json:"timestamp"`
	Time      time.Time `json:"time"`

	TemperatureC float64 `json:"temperatureC"`
	DewPointC    float64 `json:"dewPointC"`
	FeelsLikeC   float64 `json:"feelsLikeC"`

	PrecipProbability float64 `json:"precipProbability"`

	HumidityPct float64 `json:"humidityPercent"`
	PressureHpa float64 `json:"pressureHpa"`
	WindSpeedMS float64 `json:"windSpeed"`
	UVIndex     float64 `json:"uvi"`
	CloudsPct   float64 `json:"cloudsPercent"`

	Condition Condition `json:"condition"`

	Sunrise *time.Time `json:"sunrise,omitempty"`
	Sunset  *time.Time `json:"sunset,omitempty"`

	// Pollution and AQHI are nil when no pollution data was available for the run.
	Pollution *PollutionSample `json:"pollution,omitempty"`
	AQHI      *float64         `json:"aqhi,omitempty"`
}

// HasAQHI reports whether an AQHI value is attached to the record.
func (r FusedRecord) HasAQHI() bool {
	return r.AQHI != nil
}
