// Package console renders lookup results as plain text, mirroring the fields
// the desktop window shows.
package console

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Render writes a snapshot the way the window lays it out: city and local
// clock first, then temperature, condition line and the four detail tiles.
func Render(w io.Writer, s weather.WeatherSnapshot) error {
	local := s.ObservedLocalTime
	lines := []string{
		"Your city: " + s.City,
		local.Format("15:04:05"),
		local.Format("2006/01/02"),
		"",
		fmt.Sprintf("%.1f°C", s.TemperatureC),
		fmt.Sprintf("%s | FEELS LIKE %.1f°C", s.Condition, s.TemperatureC),
		"",
		fmt.Sprintf("WIND         %v m/s", s.WindSpeedMS),
		fmt.Sprintf("HUMIDITY     %d%%", s.HumidityPct),
		fmt.Sprintf("DESCRIPTION  %s", capitalize(s.Description)),
		fmt.Sprintf("PRESSURE     %d hPa", s.PressureHPa),
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// RenderFailure writes the user-facing message for a pipeline error.
func RenderFailure(w io.Writer, err error) error {
	_, werr := fmt.Fprintf(w, "Error: %s\n", weather.UserMessage(err))
	return werr
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
