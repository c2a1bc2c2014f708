package weather

import "math"

const absoluteZeroC = 273.15

// KelvinToCelsius converts and rounds to one decimal place (half away from zero).
func KelvinToCelsius(kelvin float64) float64 {
	return RoundTenth(kelvin - absoluteZeroC)
}

// RoundTenth rounds v to one decimal place.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
