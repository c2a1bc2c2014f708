package providers

import (
	"fmt"
	"time"

	"github.com/bradfitz/latlong"
	"github.com/i474232898/weather-lookup/internal/weather"

	// Zone names resolve even on hosts without a system zoneinfo database.
	_ "time/tzdata"
)

// latlongNotReady is what latlong returns when its tables failed to load.
const latlongNotReady = "tables not generated yet"

// LatLongResolver resolves timezones offline from the embedded latlong
// world tables.
type LatLongResolver struct {
	lookup func(lat, lng float64) string
	load   func(name string) (*time.Location, error)
}

func NewLatLongResolver() *LatLongResolver {
	return &LatLongResolver{
		lookup: latlong.LookupZoneName,
		load:   time.LoadLocation,
	}
}

func (r *LatLongResolver) Resolve(latitude, longitude float64) (*time.Location, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, &weather.ResolverError{Op: "latlong", Err: fmt.Errorf("coordinates out of range: (%v, %v)", latitude, longitude)}
	}

	name := r.lookup(latitude, longitude)
	switch name {
	case "":
		return nil, weather.ErrNotFound
	case latlongNotReady:
		return nil, &weather.ResolverError{Op: "latlong", Err: fmt.Errorf("zone tables not initialized")}
	}

	loc, err := r.load(name)
	if err != nil {
		return nil, &weather.ResolverError{Op: "latlong", Err: err}
	}
	return loc, nil
}
