package domain

import "strings"

// compassDegrees maps the 16 compass points used in warning bulletins to the
// bearings forecasters associate with them.
var compassDegrees = map[string]float64{
	"N": 0, "NNE": 20, "NE": 50, "ENE": 70,
	"E": 90, "ESE": 110, "SE": 140, "SSE": 160,
	"S": 180, "SSW": 200, "SW": 230, "WSW": 250,
	"W": 270, "WNW": 290, "NW": 320, "NNW": 340,
}

// CompassDegrees converts a compass point such as "SW" to degrees.
func CompassDegrees(point string) (float64, bool) {
	deg, ok := compassDegrees[strings.ToUpper(strings.TrimSpace(point))]
	return deg, ok
}
