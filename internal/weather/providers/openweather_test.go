package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-image/internal/weather"
)

const oneCallBody = `{
  "lat": 51.05, "lon": -114.07, "timezone": "America/Edmonton",
  "hourly": [
    {"dt": 1700000000, "temp": 270.15, "feels_like": 265.2, "dew_point": 263.1, "pressure": 1012,
     "humidity": 80, "uvi": 0.2, "clouds": 75, "wind_speed": 3.5, "pop": 0.4,
     "weather": [{"id": 600, "main": "Snow", "description": "light snow", "icon": "13d"},
                 {"id": 701, "main": "Mist", "description": "mist", "icon": "50d"}]},
    {"dt": 1700003600, "temp": 271.15, "feels_like": 266.2, "dew_point": 263.5,
     "weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01n"}]}
  ]
}`

const currentPollutionBody = `{"list": [{"dt": 1699999200, "main": {"aqi": 1},
  "components": {"co": 201.94, "no": 0.02, "no2": 20, "o3": 10, "so2": 0.64, "pm2_5": 5, "pm10": 6.2, "nh3": 0.1}}]}`

const forecastPollutionBody = `{"list": [
  {"dt": 1700002800, "components": {"no2": 21, "o3": 11, "pm2_5": 5.5}},
  {"dt": 1700006400, "components": {"no2": 22, "o3": 12, "pm2_5": 6}}]}`

func fastProvider(baseURL string) *OpenWeatherProvider {
	p := NewOpenWeatherProvider(&http.Client{Timeout: 2 * time.Second}, "secret", baseURL)
	p.httpCfg.Backoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
	return p
}

func owmServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenWeatherFetchForecast(t *testing.T) {
	srv := owmServer(t, map[string]string{"/onecall": oneCallBody})
	p := fastProvider(srv.URL)

	fc, err := p.FetchForecast(context.Background(), weather.Coordinate{Lat: 51.05, Lon: -114.07})
	require.NoError(t, err)

	assert.Equal(t, "America/Edmonton", fc.Timezone)
	require.Len(t, fc.Hourly, 2)

	h := fc.Hourly[0]
	assert.Equal(t, int64(1700000000), h.Timestamp)
	require.NotNil(t, h.Temperature)
	assert.Equal(t, 270.15, *h.Temperature)
	require.NotNil(t, h.PrecipProbability)
	assert.Equal(t, 0.4, *h.PrecipProbability)
	assert.Equal(t, 3.5, h.WindSpeedMS)
	require.Len(t, h.Conditions, 2)
	assert.Equal(t, "Snow", h.Conditions[0].Main)

	assert.Nil(t, fc.Hourly[1].PrecipProbability)
}

func TestOpenWeatherFetchForecastMissingTemperature(t *testing.T) {
	srv := owmServer(t, map[string]string{"/onecall": `{"timezone": "UTC", "hourly": [{"dt": 1, "feels_like": 1, "dew_point": 1}]}`})

	fc, err := fastProvider(srv.URL).FetchForecast(context.Background(), weather.Coordinate{})
	require.NoError(t, err)
	assert.Nil(t, fc.Hourly[0].Temperature)
}

func TestOpenWeatherFetchPollution(t *testing.T) {
	srv := owmServer(t, map[string]string{
		"/air_pollution":          currentPollutionBody,
		"/air_pollution/forecast": forecastPollutionBody,
	})

	samples, err := fastProvider(srv.URL).FetchPollution(context.Background(), weather.Coordinate{})
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, int64(1699999200), samples[0].Timestamp)
	assert.Equal(t, 20.0, samples[0].Components["no2"])
	assert.Equal(t, int64(1700006400), samples[2].Timestamp)
}

func TestOpenWeatherFetchPollutionEmptyCurrent(t *testing.T) {
	srv := owmServer(t, map[string]string{
		"/air_pollution":          `{"list": []}`,
		"/air_pollution/forecast": forecastPollutionBody,
	})

	samples, err := fastProvider(srv.URL).FetchPollution(context.Background(), weather.Coordinate{})
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestOpenWeatherFetchPollutionForecastFailure(t *testing.T) {
	srv := owmServer(t, map[string]string{"/air_pollution": currentPollutionBody})

	samples, err := fastProvider(srv.URL).FetchPollution(context.Background(), weather.Coordinate{})
	require.NoError(t, err)
	assert.Len(t, samples, 1)
}

func TestOpenWeatherMissingAPIKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "", "http://unused")

	_, err := p.FetchForecast(context.Background(), weather.Coordinate{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestOpenWeatherRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(oneCallBody))
	}))
	defer srv.Close()

	fc, err := fastProvider(srv.URL).FetchForecast(context.Background(), weather.Coordinate{})
	require.NoError(t, err)
	assert.Len(t, fc.Hourly, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenWeatherDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := fastProvider(srv.URL).FetchForecast(context.Background(), weather.Coordinate{})
	assert.ErrorIs(t, err, errUnexpected)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenWeatherGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := fastProvider(srv.URL).FetchForecast(context.Background(), weather.Coordinate{})
	assert.ErrorIs(t, err, errRateLimited)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenWeatherRespectsContext(t *testing.T) {
	srv := owmServer(t, map[string]string{"/onecall": oneCallBody})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastProvider(srv.URL).FetchForecast(ctx, weather.Coordinate{})
	assert.ErrorIs(t, err, context.Canceled)
}
