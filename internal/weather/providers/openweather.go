package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenWeatherProvider implements the weather.Provider interface for
// OpenWeatherMap's current weather endpoint.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newBreaker("openweather"),
		now:     time.Now,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// statusCode accepts both 200 and "404": the API sends cod as a number on
// success and as a string on most errors.
type statusCode int

func (c *statusCode) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid cod %s: %w", b, err)
	}
	*c = statusCode(n)
	return nil
}

type openWeatherResponse struct {
	Cod     statusCode `json:"cod"`
	Message string     `json:"message"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     *float64 `json:"temp"`
		Pressure *float64 `json:"pressure"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string, tz *time.Location) (weather.WeatherSnapshot, error) {
	if p.apiKey == "" {
		return weather.WeatherSnapshot{}, &weather.ProviderError{Message: "openweather api key is not configured"}
	}
	if tz == nil {
		return weather.WeatherSnapshot{}, &weather.ProviderError{Message: "timezone is required"}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.WeatherSnapshot{}, providerFailure(err)
	}
	defer resp.Body.Close()

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.WeatherSnapshot{}, &weather.ProviderError{
			Message: fmt.Sprintf("openweather decode (http %d): %v", resp.StatusCode, err),
			Err:     err,
		}
	}

	if payload.Cod != http.StatusOK {
		return weather.WeatherSnapshot{}, openWeatherStatusError(int(payload.Cod), payload.Message)
	}

	return p.snapshot(city, tz, payload)
}

func openWeatherStatusError(code int, message string) *weather.ProviderError {
	if message == "" {
		message = fmt.Sprintf("unexpected cod %d", code)
	}
	pe := &weather.ProviderError{Code: code, Message: message}
	if code == http.StatusNotFound {
		pe.Err = weather.ErrNotFound
	}
	return pe
}

func (p *OpenWeatherProvider) snapshot(city string, tz *time.Location, payload openWeatherResponse) (weather.WeatherSnapshot, error) {
	missing := func(field string) error {
		return &weather.ProviderError{Message: "openweather response missing " + field}
	}
	switch {
	case len(payload.Weather) == 0:
		return weather.WeatherSnapshot{}, missing("weather")
	case payload.Main.Temp == nil:
		return weather.WeatherSnapshot{}, missing("main.temp")
	case payload.Main.Pressure == nil:
		return weather.WeatherSnapshot{}, missing("main.pressure")
	case payload.Main.Humidity == nil:
		return weather.WeatherSnapshot{}, missing("main.humidity")
	case payload.Wind.Speed == nil:
		return weather.WeatherSnapshot{}, missing("wind.speed")
	}

	return weather.WeatherSnapshot{
		City:              city,
		TemperatureC:      weather.KelvinToCelsius(*payload.Main.Temp),
		Condition:         payload.Weather[0].Main,
		Description:       payload.Weather[0].Description,
		PressureHPa:       int(math.Round(*payload.Main.Pressure)),
		HumidityPct:       int(math.Round(*payload.Main.Humidity)),
		WindSpeedMS:       *payload.Wind.Speed,
		ObservedLocalTime: p.now().In(tz),
		Timezone:          tz.String(),
	}, nil
}

// providerFailure maps a doRequest error onto the weather error taxonomy.
func providerFailure(err error) *weather.ProviderError {
	if isTransport(err) {
		return weather.ConnectionError(err)
	}
	return &weather.ProviderError{Message: err.Error(), Err: err}
}
