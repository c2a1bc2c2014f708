package weather

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeLocations struct {
	calls int
	loc   Location
	err   error
}

func (f *fakeLocations) Name() string { return "fake-geocoder" }

func (f *fakeLocations) Resolve(_ context.Context, city string) (Location, error) {
	f.calls++
	if f.err != nil {
		return Location{}, f.err
	}
	loc := f.loc
	loc.Name = city
	return loc, nil
}

type fakeTimezones struct {
	calls    int
	lat, lon float64
	tz       *time.Location
	err      error
}

func (f *fakeTimezones) Resolve(lat, lon float64) (*time.Location, error) {
	f.calls++
	f.lat, f.lon = lat, lon
	if f.err != nil {
		return nil, f.err
	}
	return f.tz, nil
}

type fakeProvider struct {
	calls int
	city  string
	tz    *time.Location
	err   error
}

func (f *fakeProvider) Name() string { return "fake-weather" }

func (f *fakeProvider) Fetch(_ context.Context, city string, tz *time.Location) (WeatherSnapshot, error) {
	f.calls++
	f.city, f.tz = city, tz
	if f.err != nil {
		return WeatherSnapshot{}, f.err
	}
	return WeatherSnapshot{
		City:              city,
		TemperatureC:      KelvinToCelsius(293.15),
		Condition:         "Clouds",
		Description:       "broken clouds",
		PressureHPa:       1012,
		HumidityPct:       72,
		WindSpeedMS:       4.12,
		ObservedLocalTime: time.Now().In(tz),
		Timezone:          tz.String(),
	}, nil
}

func londonFakes(t *testing.T) (*fakeLocations, *fakeTimezones, *fakeProvider) {
	t.Helper()
	tz, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return &fakeLocations{loc: Location{Latitude: 51.5074, Longitude: -0.1278}},
		&fakeTimezones{tz: tz},
		&fakeProvider{}
}

func requireFailure(t *testing.T, err error, kind FailureKind) *PipelineFailure {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s failure, got nil", kind)
	}
	f, ok := AsFailure(err)
	if !ok {
		t.Fatalf("expected *PipelineFailure, got %T: %v", err, err)
	}
	if f.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, f.Kind, f.Err)
	}
	return f
}

func TestRunRejectsEmptyInputWithoutCalls(t *testing.T) {
	for _, city := range []string{"", " ", "\t", " \n  "} {
		locs, tzs, prov := londonFakes(t)
		p := NewPipeline(locs, tzs, prov)

		_, err := p.Run(context.Background(), city)
		requireFailure(t, err, FailureEmptyInput)

		if locs.calls+tzs.calls+prov.calls != 0 {
			t.Fatalf("input %q: expected no collaborator calls, got %d/%d/%d", city, locs.calls, tzs.calls, prov.calls)
		}
	}
}

func TestRunLocationNotFoundShortCircuits(t *testing.T) {
	locs, tzs, prov := londonFakes(t)
	locs.err = ErrNotFound
	p := NewPipeline(locs, tzs, prov)

	_, err := p.Run(context.Background(), "Zzqqxx")
	f := requireFailure(t, err, FailureLocation)
	if !f.NotFound() {
		t.Fatalf("expected not-found reason, got %v", f.Err)
	}
	if tzs.calls != 0 || prov.calls != 0 {
		t.Fatalf("expected timezone and weather untouched, got %d/%d", tzs.calls, prov.calls)
	}

	msg := UserMessage(err)
	if msg != "City not found!" {
		t.Fatalf("unexpected user message %q", msg)
	}
	if strings.Contains(strings.ToLower(msg), "network") || strings.Contains(strings.ToLower(msg), "connection") {
		t.Fatalf("not-found message must not mention the network: %q", msg)
	}
}

func TestRunLocationProviderErrorIsNotNotFound(t *testing.T) {
	locs, tzs, prov := londonFakes(t)
	locs.err = &ResolverError{Op: "nominatim", Err: errors.New("dial tcp: refused")}
	p := NewPipeline(locs, tzs, prov)

	_, err := p.Run(context.Background(), "London")
	f := requireFailure(t, err, FailureLocation)
	if f.NotFound() {
		t.Fatal("provider failure must not be reported as not found")
	}
	var re *ResolverError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResolverError in chain, got %v", err)
	}
}

func TestRunTimezoneNotFoundSkipsWeather(t *testing.T) {
	locs, tzs, prov := londonFakes(t)
	tzs.err = ErrNotFound
	p := NewPipeline(locs, tzs, prov)

	_, err := p.Run(context.Background(), "Point Nemo")
	f := requireFailure(t, err, FailureTimezone)
	if !f.NotFound() {
		t.Fatalf("expected not-found reason, got %v", f.Err)
	}
	if prov.calls != 0 {
		t.Fatalf("expected weather provider untouched, got %d calls", prov.calls)
	}
}

func TestRunWeatherFailureKeepsProviderMessage(t *testing.T) {
	locs, tzs, prov := londonFakes(t)
	prov.err = &ProviderError{Code: 401, Message: "Invalid API key. Please see https://openweathermap.org/faq#error401 for more info."}
	p := NewPipeline(locs, tzs, prov)

	_, err := p.Run(context.Background(), "London")
	requireFailure(t, err, FailureWeather)
	if !strings.Contains(err.Error(), "Invalid API key") {
		t.Fatalf("provider message lost: %v", err)
	}
	if msg := UserMessage(err); !strings.HasPrefix(msg, "API Error: Invalid API key") {
		t.Fatalf("unexpected user message %q", msg)
	}
}

func TestRunWeatherConnectionFailureMessage(t *testing.T) {
	locs, tzs, prov := londonFakes(t)
	prov.err = ConnectionError(errors.New("dial tcp 127.0.0.1:1: connect: connection refused"))
	p := NewPipeline(locs, tzs, prov)

	_, err := p.Run(context.Background(), "London")
	requireFailure(t, err, FailureWeather)
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection in chain, got %v", err)
	}
	if msg := UserMessage(err); msg != "Connection error: Check your network." {
		t.Fatalf("unexpected user message %q", msg)
	}
}

func TestRunEndToEndLondon(t *testing.T) {
	locs, tzs, prov := londonFakes(t)
	p := NewPipeline(locs, tzs, prov)

	snap, err := p.Run(context.Background(), "London")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tzs.lat != 51.5074 || tzs.lon != -0.1278 {
		t.Fatalf("timezone resolver got (%v, %v)", tzs.lat, tzs.lon)
	}
	if prov.city != "London" || prov.tz.String() != "Europe/London" {
		t.Fatalf("provider got city=%q tz=%v", prov.city, prov.tz)
	}

	if snap.City != "London" {
		t.Errorf("city = %q", snap.City)
	}
	if snap.TemperatureC != 20.0 {
		t.Errorf("temperature = %v", snap.TemperatureC)
	}
	if snap.Condition != "Clouds" || snap.Description != "broken clouds" {
		t.Errorf("condition = %q / %q", snap.Condition, snap.Description)
	}
	if snap.PressureHPa != 1012 || snap.HumidityPct != 72 || snap.WindSpeedMS != 4.12 {
		t.Errorf("pressure/humidity/wind = %d/%d/%v", snap.PressureHPa, snap.HumidityPct, snap.WindSpeedMS)
	}
}

func TestRunPassesCityThroughUnchanged(t *testing.T) {
	locs, tzs, prov := londonFakes(t)
	p := NewPipeline(locs, tzs, prov)

	snap, err := p.Run(context.Background(), "  london ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.City != "  london " {
		t.Fatalf("city was normalized: %q", snap.City)
	}
}

func TestRunTwiceIsIndependent(t *testing.T) {
	locs, tzs, prov := londonFakes(t)
	p := NewPipeline(locs, tzs, prov)

	first, err := p.Run(context.Background(), "London")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := p.Run(context.Background(), "London")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if locs.calls != 2 || tzs.calls != 2 || prov.calls != 2 {
		t.Fatalf("expected every step twice, got %d/%d/%d", locs.calls, tzs.calls, prov.calls)
	}

	first.Condition = "mutated"
	if second.Condition != "Clouds" {
		t.Fatal("snapshots share state")
	}
}

func TestRunCanceledBeforeStart(t *testing.T) {
	locs, tzs, prov := londonFakes(t)
	p := NewPipeline(locs, tzs, prov)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, "London")
	requireFailure(t, err, FailureCanceled)
	if locs.calls != 0 {
		t.Fatalf("expected no geocode call, got %d", locs.calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

type cancelingLocations struct {
	fakeLocations
	cancel context.CancelFunc
}

func (c *cancelingLocations) Resolve(ctx context.Context, city string) (Location, error) {
	c.cancel()
	if ctx.Err() != nil {
		return Location{}, &ResolverError{Op: "test", Err: ctx.Err()}
	}
	return c.fakeLocations.Resolve(ctx, city)
}

func TestRunCancelIsCheckedBetweenSteps(t *testing.T) {
	_, tzs, prov := londonFakes(t)
	ctx, cancel := context.WithCancel(context.Background())
	locs := &cancelingLocations{fakeLocations: fakeLocations{loc: Location{Latitude: 1, Longitude: 2}}, cancel: cancel}
	p := NewPipeline(locs, tzs, prov)

	_, err := p.Run(ctx, "London")
	requireFailure(t, err, FailureCanceled)
	if locs.calls != 1 {
		t.Fatalf("in-flight geocode should complete, got %d calls", locs.calls)
	}
	if tzs.calls != 0 {
		t.Fatalf("expected timezone step skipped, got %d calls", tzs.calls)
	}
}
