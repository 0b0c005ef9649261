package verify

import (
	"errors"
	"fmt"
)

// Thresholds holds every tolerance the verifiers apply. All comparisons are
// inclusive: a difference equal to the threshold is accurate.
type Thresholds struct {
	WarningDirectionDeg float64 `yaml:"warning_direction_deg"`

	SurfaceDirectionDeg float64 `yaml:"surface_direction_deg"`
	SurfaceSpeedKt      float64 `yaml:"surface_speed_kt"`
	SurfaceTempC        float64 `yaml:"surface_temp_c"`
	SurfacePressureHPa  float64 `yaml:"surface_pressure_hpa"`

	UpperAirTempC        float64 `yaml:"upper_air_temp_c"`
	UpperAirSpeedKt      float64 `yaml:"upper_air_speed_kt"`
	UpperAirDirectionDeg float64 `yaml:"upper_air_direction_deg"`
	// MSToKnots converts sounding wind speed to knots.
	MSToKnots float64 `yaml:"ms_to_knots"`

	// BenchmarkPercent is the ICAO accuracy requirement.
	BenchmarkPercent float64 `yaml:"benchmark_percent"`
}

// epsilon absorbs float noise such as |17.2-16.2| = 1.0000000000000018.
const epsilon = 1e-9

func within(diff, tolerance float64) bool {
	return diff <= tolerance+epsilon
}

// DefaultThresholds returns the ICAO Annex 3 operational tolerances.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WarningDirectionDeg:  30,
		SurfaceDirectionDeg:  30,
		SurfaceSpeedKt:       5,
		SurfaceTempC:         1,
		SurfacePressureHPa:   1,
		UpperAirTempC:        2,
		UpperAirSpeedKt:      10,
		UpperAirDirectionDeg: 30,
		MSToKnots:            1.94384,
		BenchmarkPercent:     80,
	}
}

// Validate rejects negative tolerances, direction tolerances above 180 and
// benchmarks outside 0-100.
func (t Thresholds) Validate() error {
	named := []struct {
		name string
		v    float64
	}{
		{"warning_direction_deg", t.WarningDirectionDeg},
		{"surface_direction_deg", t.SurfaceDirectionDeg},
		{"surface_speed_kt", t.SurfaceSpeedKt},
		{"surface_temp_c", t.SurfaceTempC},
		{"surface_pressure_hpa", t.SurfacePressureHPa},
		{"upper_air_temp_c", t.UpperAirTempC},
		{"upper_air_speed_kt", t.UpperAirSpeedKt},
		{"upper_air_direction_deg", t.UpperAirDirectionDeg},
	}
	for _, n := range named {
		if n.v < 0 {
			return fmt.Errorf("threshold %s must not be negative", n.name)
		}
	}
	for _, d := range []float64{t.WarningDirectionDeg, t.SurfaceDirectionDeg, t.UpperAirDirectionDeg} {
		if d > 180 {
			return errors.New("direction thresholds must be at most 180 degrees")
		}
	}
	if t.MSToKnots <= 0 {
		return errors.New("threshold ms_to_knots must be positive")
	}
	if t.BenchmarkPercent < 0 || t.BenchmarkPercent > 100 {
		return errors.New("threshold benchmark_percent must be between 0 and 100")
	}
	return nil
}
