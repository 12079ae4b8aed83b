package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-image/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap
// using the one-call hourly forecast and the air pollution endpoints.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider creates the provider. An empty baseURL uses DefaultOpenWeatherBaseURL.
func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: DefaultHTTPConfig(client),
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmHour struct {
	Dt        int64               `json:"dt"`
	Temp      *float64            `json:"temp"`
	FeelsLike *float64            `json:"feels_like"`
	DewPoint  *float64            `json:"dew_point"`
	Pressure  float64             `json:"pressure"`
	Humidity  float64             `json:"humidity"`
	Uvi       float64             `json:"uvi"`
	Clouds    float64             `json:"clouds"`
	WindSpeed float64             `json:"wind_speed"`
	Pop       *float64            `json:"pop"`
	Sunrise   *int64              `json:"sunrise"`
	Sunset    *int64              `json:"sunset"`
	Weather   []weather.Condition `json:"weather"`
}

type owmPollutionList struct {
	List []struct {
		Dt         int64              `json:"dt"`
		Components map[string]float64 `json:"components"`
	} `json:"list"`
}

// FetchForecast returns the hourly forecast in Kelvin.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, c weather.Coordinate) (weather.HourlyForecast, error) {
	var payload struct {
		Timezone string    `json:"timezone"`
		Hourly   []owmHour `json:"hourly"`
	}

	extra := url.Values{}
	extra.Set("exclude", "minutely,daily,alerts")
	if err := p.get(ctx, "onecall", c, extra, &payload); err != nil {
		return weather.HourlyForecast{}, err
	}

	hourly := make([]weather.WeatherSample, 0, len(payload.Hourly))
	for _, h := range payload.Hourly {
		hourly = append(hourly, weather.WeatherSample{
			Timestamp:         h.Dt,
			Temperature:       h.Temp,
			DewPoint:          h.DewPoint,
			FeelsLike:         h.FeelsLike,
			PrecipProbability: h.Pop,
			HumidityPct:       h.Humidity,
			PressureHpa:       h.Pressure,
			WindSpeedMS:       h.WindSpeed,
			UVIndex:           h.Uvi,
			CloudsPct:         h.Clouds,
			Conditions:        h.Weather,
			Sunrise:           h.Sunrise,
			Sunset:            h.Sunset,
		})
	}

	return weather.HourlyForecast{
		Timezone: payload.Timezone,
		Hourly:   hourly,
	}, nil
}

// FetchPollution returns the current air pollution sample followed by the
// forecast samples. No current sample means no pollution data at all.
func (p *OpenWeatherProvider) FetchPollution(ctx context.Context, c weather.Coordinate) ([]weather.PollutionSample, error) {
	var current owmPollutionList
	if err := p.get(ctx, "air_pollution", c, nil, &current); err != nil {
		return nil, err
	}
	if len(current.List) == 0 {
		slog.Info("no current air pollution data", "lat", c.Lat, "lon", c.Lon)
		return nil, nil
	}

	samples := []weather.PollutionSample{{
		Timestamp:  current.List[0].Dt,
		Components: current.List[0].Components,
	}}

	var forecast owmPollutionList
	if err := p.get(ctx, "air_pollution/forecast", c, nil, &forecast); err != nil {
		slog.Warn("air pollution forecast failed; using current sample only", "error", err)
		return samples, nil
	}
	for _, item := range forecast.List {
		samples = append(samples, weather.PollutionSample{
			Timestamp:  item.Dt,
			Components: item.Components,
		})
	}

	return samples, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, method string, c weather.Coordinate, extra url.Values, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("openweather: %w", ErrMissingAPIKey)
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	values.Set("appid", p.apiKey)
	for k, vs := range extra {
		for _, v := range vs {
			values.Add(k, v)
		}
	}

	u := fmt.Sprintf("%s/%s?%s", p.baseURL, method, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, nil, out); err != nil {
		return fmt.Errorf("openweather %s: %w", method, err)
	}
	return nil
}
