package verify

import (
	"math"

	"github.com/couchcryptid/forecast-verification-service/internal/domain"
)

// CircularDiff returns the angular distance between two bearings in degrees,
// in [0, 180]. ok is false when either input is NaN or infinite.
func CircularDiff(a, b float64) (float64, bool) {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return 0, false
	}
	d := math.Mod(math.Abs(a-b), 360)
	return math.Min(d, 360-d), true
}

// DirectionDiff is CircularDiff over decoded values. ok is false unless both
// values are present numbers.
func DirectionDiff(a, b domain.Value) (float64, bool) {
	x, ok := a.Float()
	if !ok {
		return 0, false
	}
	y, ok := b.Float()
	if !ok {
		return 0, false
	}
	return CircularDiff(x, y)
}
