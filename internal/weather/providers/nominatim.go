package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

// NominatimResolver geocodes with OpenStreetMap's Nominatim search API.
// Nominatim's usage policy requires an identifying User-Agent.
type NominatimResolver struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNominatimResolver(client *http.Client, userAgent string) *NominatimResolver {
	return &NominatimResolver{
		name:    "nominatim",
		baseURL: "https://nominatim.openstreetmap.org/search",
		httpCfg: HTTPClientConfig{Client: client, UserAgent: userAgent},
		circuit: newBreaker("nominatim"),
	}
}

func (r *NominatimResolver) Name() string {
	return r.name
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (r *NominatimResolver) Resolve(ctx context.Context, city string) (weather.Location, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("format", "json")
		values.Set("limit", "1")

		u := fmt.Sprintf("%s?%s", r.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, r.httpCfg, r.circuit, buildRequest)
	if err != nil {
		return weather.Location{}, &weather.ResolverError{Op: r.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return weather.Location{}, &weather.ResolverError{Op: r.name, Err: fmt.Errorf("bad status: %s", resp.Status)}
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return weather.Location{}, &weather.ResolverError{Op: r.name, Err: fmt.Errorf("decode: %w", err)}
	}
	if len(places) == 0 {
		return weather.Location{}, weather.ErrNotFound
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return weather.Location{}, &weather.ResolverError{Op: r.name, Err: fmt.Errorf("parse lat %q: %w", places[0].Lat, err)}
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return weather.Location{}, &weather.ResolverError{Op: r.name, Err: fmt.Errorf("parse lon %q: %w", places[0].Lon, err)}
	}

	return weather.Location{
		Name:      city,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
