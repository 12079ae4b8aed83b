package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-image/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultNominatimBaseURL is the public OpenStreetMap Nominatim instance.
const DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

const nominatimUserAgent = "weather-image"

// NominatimGeocoder resolves place names with the OpenStreetMap Nominatim search API.
type NominatimGeocoder struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewNominatimGeocoder creates the geocoder. An empty baseURL uses DefaultNominatimBaseURL.
func NewNominatimGeocoder(client *http.Client, baseURL string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimBaseURL
	}
	return &NominatimGeocoder{
		baseURL: baseURL,
		httpCfg: DefaultHTTPConfig(client),
		circuit: newCircuitBreaker("nominatim"),
	}
}

// Geocode returns the coordinate of the best match for query.
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (weather.Coordinate, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("format", "jsonv2")
	values.Set("limit", "1")

	header := http.Header{}
	header.Set("User-Agent", nominatimUserAgent)

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	u := fmt.Sprintf("%s/search?%s", g.baseURL, values.Encode())
	if err := getJSON(ctx, g.httpCfg, g.circuit, u, header, &results); err != nil {
		return weather.Coordinate{}, fmt.Errorf("nominatim search: %w", err)
	}
	if len(results) == 0 {
		return weather.Coordinate{}, weather.ErrLocationNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return weather.Coordinate{}, fmt.Errorf("nominatim: invalid lat %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return weather.Coordinate{}, fmt.Errorf("nominatim: invalid lon %q: %w", results[0].Lon, err)
	}

	return weather.Coordinate{Lat: lat, Lon: lon}, nil
}
