package weather

import (
	"context"
	"log"

	"github.com/i474232898/weather-lookup/internal/common"
)

// Pipeline runs geocode -> timezone -> weather for one city. It holds no
// per-call state, so a single Pipeline may serve concurrent runs as long as
// its collaborators are safe for concurrent use.
type Pipeline struct {
	locations LocationResolver
	timezones TimezoneResolver
	provider  Provider
}

// NewPipeline creates a new Pipeline.
func NewPipeline(locations LocationResolver, timezones TimezoneResolver, provider Provider) *Pipeline {
	return &Pipeline{
		locations: locations,
		timezones: timezones,
		provider:  provider,
	}
}

// Run resolves the city and fetches its current weather. Any failing step
// ends the run; the returned error is always a *PipelineFailure.
//
// ctx is only checked between steps. A step that has started is allowed to
// finish (bounded by the collaborator's own timeout).
func (p *Pipeline) Run(ctx context.Context, city string) (WeatherSnapshot, error) {
	if common.IsBlank(city) {
		return WeatherSnapshot{}, &PipelineFailure{Kind: FailureEmptyInput, Err: ErrEmptyInput}
	}

	stepCtx := context.WithoutCancel(ctx)

	if err := ctx.Err(); err != nil {
		return WeatherSnapshot{}, &PipelineFailure{Kind: FailureCanceled, Err: err}
	}
	log.Printf("DEBUG: resolving location for %q via %s", city, p.locations.Name())
	loc, err := p.locations.Resolve(stepCtx, city)
	if err != nil {
		log.Printf("pipeline: location lookup failed for %q: %v", city, err)
		return WeatherSnapshot{}, &PipelineFailure{Kind: FailureLocation, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return WeatherSnapshot{}, &PipelineFailure{Kind: FailureCanceled, Err: err}
	}
	log.Printf("DEBUG: resolving timezone for %q at (%.4f, %.4f)", city, loc.Latitude, loc.Longitude)
	tz, err := p.timezones.Resolve(loc.Latitude, loc.Longitude)
	if err != nil {
		log.Printf("pipeline: timezone lookup failed for %q: %v", city, err)
		return WeatherSnapshot{}, &PipelineFailure{Kind: FailureTimezone, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return WeatherSnapshot{}, &PipelineFailure{Kind: FailureCanceled, Err: err}
	}
	log.Printf("DEBUG: fetching weather for %q from %s (%s)", city, p.provider.Name(), tz)
	snapshot, err := p.provider.Fetch(stepCtx, city, tz)
	if err != nil {
		log.Printf("pipeline: weather fetch failed for %q: %v", city, err)
		return WeatherSnapshot{}, &PipelineFailure{Kind: FailureWeather, Err: err}
	}

	return snapshot, nil
}
