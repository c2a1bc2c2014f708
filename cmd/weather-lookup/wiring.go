package main

import (
	"fmt"
	"net/http"

	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

// newPipeline builds the collaborators selected by cfg.
func newPipeline(cfg *config.AppConfig) (*weather.Pipeline, error) {
	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var locations weather.LocationResolver
	switch cfg.Geocoder {
	case config.GeocoderNominatim:
		locations = providers.NewNominatimResolver(httpClient, cfg.GeocoderUserAgent)
	case config.GeocoderOpenMeteo:
		locations = providers.NewOpenMeteoResolver(httpClient)
	case config.GeocoderGoogle:
		locations = providers.NewGoogleResolver(cfg.GoogleGeocoderAPIKey)
	default:
		return nil, fmt.Errorf("unsupported geocoder %q", cfg.Geocoder)
	}

	var provider weather.Provider
	switch cfg.WeatherProvider {
	case config.ProviderOpenWeather:
		provider = providers.NewOpenWeatherProvider(httpClient, cfg.WeatherAPIKeyFor())
	case config.ProviderWeatherAPI:
		provider = providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKeyFor())
	default:
		return nil, fmt.Errorf("unsupported weather provider %q", cfg.WeatherProvider)
	}

	return weather.NewPipeline(locations, providers.NewLatLongResolver(), provider), nil
}
