package weather

import (
	"sort"
	"strings"
)

// cityCoordinates is the static lookup table used instead of a geocoder.
var cityCoordinates = map[string]Coordinates{
	"paris":    {Lat: 48.8566, Lon: 2.3522},
	"london":   {Lat: 51.5074, Lon: -0.1278},
	"new york": {Lat: 40.7128, Lon: -74.0060},
	"tokyo":    {Lat: 35.6762, Lon: 139.6503},
	"sydney":   {Lat: -33.8688, Lon: 151.2093},
	"berlin":   {Lat: 52.5200, Lon: 13.4050},
	"madrid":   {Lat: 40.4168, Lon: -3.7038},
	"rome":     {Lat: 41.9028, Lon: 12.4964},
}

// NormalizeCity returns the canonical lookup form of a city name.
func NormalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// ResolveCoordinates maps a city name to its coordinates. The lookup is
// case-insensitive.
func ResolveCoordinates(city string) (Coordinates, bool) {
	c, ok := cityCoordinates[NormalizeCity(city)]
	return c, ok
}

// Cities returns the supported city names in alphabetical order.
func Cities() []string {
	names := make([]string, 0, len(cityCoordinates))
	for name := range cityCoordinates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
