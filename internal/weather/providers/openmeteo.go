package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenMeteoResolver geocodes with the Open-Meteo geocoding API. It needs no
// API key.
type OpenMeteoResolver struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoResolver(client *http.Client) *OpenMeteoResolver {
	return &OpenMeteoResolver{
		name:    "openmeteo",
		baseURL: "https://geocoding-api.open-meteo.com/v1/search",
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newBreaker("openmeteo"),
	}
}

func (r *OpenMeteoResolver) Name() string {
	return r.name
}

type openMeteoGeoResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

func (r *OpenMeteoResolver) Resolve(ctx context.Context, city string) (weather.Location, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", city)
		values.Set("count", "1")
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", r.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, r.httpCfg, r.circuit, buildRequest)
	if err != nil {
		return weather.Location{}, &weather.ResolverError{Op: r.name, Err: err}
	}
	defer resp.Body.Close()

	var payload openMeteoGeoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Location{}, &weather.ResolverError{Op: r.name, Err: fmt.Errorf("decode: %w", err)}
	}
	if payload.Error {
		return weather.Location{}, &weather.ResolverError{Op: r.name, Err: fmt.Errorf("api error: %s", payload.Reason)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return weather.Location{}, &weather.ResolverError{Op: r.name, Err: fmt.Errorf("bad status: %s", resp.Status)}
	}
	// The API omits "results" entirely when nothing matches.
	if len(payload.Results) == 0 {
		return weather.Location{}, weather.ErrNotFound
	}

	return weather.Location{
		Name:      city,
		Latitude:  payload.Results[0].Latitude,
		Longitude: payload.Results[0].Longitude,
	}, nil
}
