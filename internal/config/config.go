package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported collaborator names.
const (
	ProviderOpenWeather = "openweather"
	ProviderWeatherAPI  = "weatherapi"

	GeocoderNominatim = "nominatim"
	GeocoderOpenMeteo = "openmeteo"
	GeocoderGoogle    = "google"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string

	// WeatherProvider selects the weather API ("openweather" or "weatherapi").
	WeatherProvider string

	// Geocoder selects the location resolver.
	Geocoder             string
	GoogleGeocoderAPIKey string
	GeocoderUserAgent    string

	HTTPTimeout time.Duration
	RunTimeout  time.Duration

	// WatchCities are refreshed by the scheduler every RefreshInterval.
	WatchCities     []string
	RefreshInterval time.Duration

	// Idle sessions older than this are pruned (0 = never).
	SessionMaxAge time.Duration

	Port string
}

var defaults = map[string]any{
	"OPENWEATHER_API_KEY":     "",
	"WEATHERAPI_API_KEY":      "",
	"WEATHER_PROVIDER":        ProviderOpenWeather,
	"GEOCODER":                GeocoderNominatim,
	"GOOGLE_GEOCODER_API_KEY": "",
	"GEOCODER_USER_AGENT":     "weather_app",
	"HTTP_TIMEOUT":            "10s",
	"RUN_TIMEOUT":             "30s",
	"PORT":                    "8080",
	"WATCH_CITIES":            "",
	"REFRESH_INTERVAL":        "15m",
	"SESSION_MAX_AGE":         "1h",
}

// Load reads configuration from .env, the environment and, when path is set,
// a config file. Environment variables win over the file.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{
		OpenWeatherAPIKey:    v.GetString("OPENWEATHER_API_KEY"),
		WeatherAPIKey:        v.GetString("WEATHERAPI_API_KEY"),
		WeatherProvider:      common.Normalize(v.GetString("WEATHER_PROVIDER")),
		Geocoder:             common.Normalize(v.GetString("GEOCODER")),
		GoogleGeocoderAPIKey: v.GetString("GOOGLE_GEOCODER_API_KEY"),
		GeocoderUserAgent:    v.GetString("GEOCODER_USER_AGENT"),
		WatchCities:          splitList(v.GetString("WATCH_CITIES")),
		Port:                 v.GetString("PORT"),
	}

	var err error
	if cfg.HTTPTimeout, err = positiveDuration(v, "HTTP_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.RunTimeout, err = positiveDuration(v, "RUN_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = positiveDuration(v, "REFRESH_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.SessionMaxAge, err = time.ParseDuration(v.GetString("SESSION_MAX_AGE")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_AGE: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.WeatherProvider {
	case ProviderOpenWeather, ProviderWeatherAPI:
	default:
		return fmt.Errorf("invalid WEATHER_PROVIDER %q", c.WeatherProvider)
	}

	switch c.Geocoder {
	case GeocoderNominatim, GeocoderOpenMeteo:
	case GeocoderGoogle:
		if c.GoogleGeocoderAPIKey == "" {
			return errors.New("GEOCODER=google requires GOOGLE_GEOCODER_API_KEY")
		}
	default:
		return fmt.Errorf("invalid GEOCODER %q", c.Geocoder)
	}

	if c.Geocoder == GeocoderNominatim && common.IsBlank(c.GeocoderUserAgent) {
		return errors.New("GEOCODER_USER_AGENT must not be empty for nominatim")
	}
	return nil
}

// WeatherAPIKeyFor returns the key of the configured weather provider.
func (c *AppConfig) WeatherAPIKeyFor() string {
	if c.WeatherProvider == ProviderWeatherAPI {
		return c.WeatherAPIKey
	}
	return c.OpenWeatherAPIKey
}

func positiveDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
