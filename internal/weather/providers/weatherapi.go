package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

// weatherAPINoMatch is WeatherAPI.com's "No matching location found." code.
const weatherAPINoMatch = 1006

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newBreaker("weatherapi"),
		now:     time.Now,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPIResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Current *struct {
		TempC      float64 `json:"temp_c"`
		Humidity   float64 `json:"humidity"`
		WindKph    float64 `json:"wind_kph"`
		PressureMb float64 `json:"pressure_mb"`
		Condition  struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, city string, tz *time.Location) (weather.WeatherSnapshot, error) {
	if p.apiKey == "" {
		return weather.WeatherSnapshot{}, &weather.ProviderError{Message: "weatherapi api key is not configured"}
	}
	if tz == nil {
		return weather.WeatherSnapshot{}, &weather.ProviderError{Message: "timezone is required"}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", city)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.WeatherSnapshot{}, providerFailure(err)
	}
	defer resp.Body.Close()

	var payload weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.WeatherSnapshot{}, &weather.ProviderError{
			Message: fmt.Sprintf("weatherapi decode (http %d): %v", resp.StatusCode, err),
			Err:     err,
		}
	}

	if payload.Error != nil {
		pe := &weather.ProviderError{Code: payload.Error.Code, Message: payload.Error.Message}
		if payload.Error.Code == weatherAPINoMatch {
			pe.Err = weather.ErrNotFound
		}
		return weather.WeatherSnapshot{}, pe
	}
	if payload.Current == nil || payload.Current.Condition.Text == "" {
		return weather.WeatherSnapshot{}, &weather.ProviderError{Message: "weatherapi response missing current conditions"}
	}

	text := strings.TrimSpace(payload.Current.Condition.Text)

	return weather.WeatherSnapshot{
		City:         city,
		TemperatureC: weather.RoundTenth(payload.Current.TempC),
		Condition:    mapWeatherAPICondition(text),
		Description:  strings.ToLower(text),
		PressureHPa:  int(math.Round(payload.Current.PressureMb)),
		HumidityPct:  int(math.Round(payload.Current.Humidity)),
		// kph -> m/s, two decimals like OpenWeatherMap reports.
		WindSpeedMS:       math.Round(payload.Current.WindKph/3.6*100) / 100,
		ObservedLocalTime: p.now().In(tz),
		Timezone:          tz.String(),
	}, nil
}

// mapWeatherAPICondition folds WeatherAPI's free text into OpenWeatherMap's
// "main" groups so both providers render the same way.
func mapWeatherAPICondition(text string) string {
	switch {
	case common.ContainsAnyFold(text, "thunder", "storm"):
		return "Thunderstorm"
	case common.ContainsAnyFold(text, "drizzle"):
		return "Drizzle"
	case common.ContainsAnyFold(text, "rain", "shower"):
		return "Rain"
	case common.ContainsAnyFold(text, "snow", "sleet", "blizzard", "ice pellets"):
		return "Snow"
	case common.ContainsAnyFold(text, "fog", "mist"):
		return "Mist"
	case common.ContainsAnyFold(text, "cloud", "overcast"):
		return "Clouds"
	case common.ContainsAnyFold(text, "sunny", "clear"):
		return "Clear"
	default:
		return text
	}
}
