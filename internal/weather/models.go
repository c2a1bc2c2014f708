package weather

import (
	"time"
)

// Location is a geocoded place. Name is the city text exactly as the user
// typed it.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherSnapshot is a fully populated reading of current conditions for one
// city. Providers build it in a single step; there is no partial snapshot.
type WeatherSnapshot struct {
	City         string  `json:"city"`
	TemperatureC float64 `json:"temperatureC"`
	Condition    string  `json:"condition"`
	Description  string  `json:"description"`
	PressureHPa  int     `json:"pressureHpa"`
	HumidityPct  int     `json:"humidityPercent"`
	WindSpeedMS  float64 `json:"windSpeedMs"`

	// ObservedLocalTime is wall-clock "now" at fetch time, in the city's zone.
	ObservedLocalTime time.Time `json:"observedLocalTime"`
	Timezone          string    `json:"timezone"`
}
