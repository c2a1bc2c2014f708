package weather

import (
	"context"
	"time"
)

// LocationResolver maps a free-text city name to coordinates.
// It returns ErrNotFound when the place is unknown and a *ResolverError when
// the provider could not be asked.
type LocationResolver interface {
	Name() string
	Resolve(ctx context.Context, city string) (Location, error)
}

// TimezoneResolver maps coordinates to a timezone. Lookups are expected to be
// local and deterministic.
type TimezoneResolver interface {
	Resolve(latitude, longitude float64) (*time.Location, error)
}

// Provider abstracts a current-conditions weather API (OpenWeatherMap, WeatherAPI).
// Fetch returns ErrNotFound (possibly wrapped in a *ProviderError) or a
// *ProviderError on failure.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string, tz *time.Location) (WeatherSnapshot, error)
}
