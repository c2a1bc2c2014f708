package providers

import (
	"context"
	"errors"
	"sync"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
)

// geocoder keeps its API key in a package variable; setting it is guarded so
// constructing several resolvers stays race free.
var googleKeyMu sync.Mutex

// GoogleResolver geocodes through the Google Geocoding API using
// github.com/kelvins/geocoder.
type GoogleResolver struct {
	name    string
	circuit *gobreaker.CircuitBreaker
	geocode func(geocoder.Address) (geocoder.Location, error)
}

func NewGoogleResolver(apiKey string) *GoogleResolver {
	googleKeyMu.Lock()
	geocoder.ApiKey = apiKey
	googleKeyMu.Unlock()

	return &GoogleResolver{
		name:    "google",
		circuit: newBreaker("google-geocoder"),
		geocode: geocoder.Geocoding,
	}
}

func (r *GoogleResolver) Name() string {
	return r.name
}

// Resolve ignores ctx: the geocoder library has no context support.
func (r *GoogleResolver) Resolve(_ context.Context, city string) (weather.Location, error) {
	var notFound error

	result, err := r.circuit.Execute(func() (interface{}, error) {
		loc, err := r.geocode(geocoder.Address{City: city})
		if err != nil {
			if isGoogleNoResults(err) {
				// A miss is a valid answer, not a breaker failure.
				notFound = err
				return nil, nil
			}
			return nil, err
		}
		return loc, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = errCircuitOpen
		}
		return weather.Location{}, &weather.ResolverError{Op: r.name, Err: err}
	}
	if notFound != nil {
		return weather.Location{}, weather.ErrNotFound
	}

	loc, ok := result.(geocoder.Location)
	if !ok {
		return weather.Location{}, &weather.ResolverError{Op: r.name, Err: errors.New("unexpected result type from circuit breaker")}
	}

	return weather.Location{
		Name:      city,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}, nil
}

func isGoogleNoResults(err error) bool {
	return common.ContainsAnyFold(err.Error(), "no results", "zero_results")
}
