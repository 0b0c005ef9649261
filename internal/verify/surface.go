package verify

import (
	"fmt"
	"math"
	"strings"

	"github.com/couchcryptid/forecast-verification-service/internal/domain"
)

// ReasonAllAccurate is the reason of a row with no failed parameter.
const ReasonAllAccurate = "All Accurate"

const (
	tableSurfaceForecasts = "surface_forecasts"
	tableObservations     = "observations"
)

type joinKey struct {
	day  int
	time string
}

// VerifySurface joins observations and forecast rows on (day, HHMM) and tests
// wind direction, wind speed, temperature and pressure independently.
// It returns a *domain.ConfigurationError when a required column is missing
// from every row of a table.
func VerifySurface(obs []domain.Observation, forecasts []domain.SurfaceForecast, th Thresholds) (domain.SurfaceReport, error) {
	usePrimary, err := checkSurfaceColumns(obs, forecasts)
	if err != nil {
		return domain.SurfaceReport{}, err
	}

	excluded := 0
	observed := make(map[joinKey]domain.Observation, len(obs))
	for _, o := range obs {
		if o.Timestamp.IsZero() {
			excluded++
			continue
		}
		ts := o.Timestamp.UTC()
		k := joinKey{day: ts.Day(), time: fmt.Sprintf("%02d%02d", ts.Hour(), ts.Minute())}
		if _, dup := observed[k]; !dup {
			observed[k] = o
		}
	}

	seen := make(map[joinKey]struct{}, len(forecasts))
	rows := make([]domain.SurfaceResult, 0, len(forecasts))
	for _, f := range forecasts {
		hhmm, ok := normalizeHHMM(f.Time)
		if f.Day <= 0 || !ok {
			excluded++
			continue
		}
		k := joinKey{day: f.Day, time: hhmm}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		o, ok := observed[k]
		if !ok {
			continue
		}
		pressure := f.Pressure
		if !usePrimary {
			pressure = f.AltPressure
		}
		rows = append(rows, compareSurface(k, f, pressure, o, th))
	}

	return domain.SurfaceReport{
		Rows:    rows,
		Summary: SummarizeSurface(rows, excluded, th),
	}, nil
}

// checkSurfaceColumns reports whether the forecast's primary pressure column
// is usable, falling back to the alternate (QFE) column.
func checkSurfaceColumns(obs []domain.Observation, forecasts []domain.SurfaceForecast) (bool, error) {
	if len(forecasts) > 0 {
		cols := []struct {
			field string
			get   func(domain.SurfaceForecast) domain.Value
		}{
			{"wind_speed_kt", func(f domain.SurfaceForecast) domain.Value { return f.WindSpeed }},
			{"temperature_c", func(f domain.SurfaceForecast) domain.Value { return f.Temperature }},
		}
		for _, c := range cols {
			if allMissing(forecasts, c.get) {
				return false, &domain.ConfigurationError{Table: tableSurfaceForecasts, Field: c.field}
			}
		}
	}
	if len(obs) > 0 {
		cols := []struct {
			field string
			get   func(domain.Observation) domain.Value
		}{
			{"wind_speed_kt", func(o domain.Observation) domain.Value { return o.WindSpeed }},
			{"temperature_c", func(o domain.Observation) domain.Value { return o.Temperature }},
			{"pressure_hpa", func(o domain.Observation) domain.Value { return o.Pressure }},
		}
		for _, c := range cols {
			if allMissing(obs, c.get) {
				return false, &domain.ConfigurationError{Table: tableObservations, Field: c.field}
			}
		}
	}

	if len(forecasts) == 0 || !allMissing(forecasts, func(f domain.SurfaceForecast) domain.Value { return f.Pressure }) {
		return true, nil
	}
	if !allMissing(forecasts, func(f domain.SurfaceForecast) domain.Value { return f.AltPressure }) {
		return false, nil
	}
	return false, &domain.ConfigurationError{Table: tableSurfaceForecasts, Field: "pressure_hpa"}
}

func allMissing[T any](rows []T, get func(T) domain.Value) bool {
	for _, r := range rows {
		if !get(r).IsMissing() {
			return false
		}
	}
	return true
}

// normalizeHHMM strips a trailing "Z" and pads three digit times.
func normalizeHHMM(s string) (string, bool) {
	s = strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "Z")
	if len(s) == 3 {
		s = "0" + s
	}
	if len(s) != 4 {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s, true
}

func compareSurface(k joinKey, f domain.SurfaceForecast, fcstPressure domain.Value, o domain.Observation, th Thresholds) domain.SurfaceResult {
	res := domain.SurfaceResult{
		Day:  k.day,
		Time: k.time,
		Forecast: domain.Reading{
			WindDirection: f.WindDirection,
			WindSpeed:     f.WindSpeed,
			Temperature:   f.Temperature,
			Pressure:      fcstPressure,
		},
		Observed: domain.Reading{
			WindDirection: o.WindDirection,
			WindSpeed:     o.WindSpeed,
			Temperature:   o.Temperature,
			Pressure:      o.Pressure,
		},
	}

	var reasons []string
	note := func(out domain.Outcome, reason string) domain.Outcome {
		if reason != "" {
			reasons = append(reasons, reason)
		}
		return out
	}

	res.Direction = note(checkDirection(f.WindDirection, o.WindDirection, th.SurfaceDirectionDeg))
	res.Speed = note(checkScalar("Wind Speed", f.WindSpeed, o.WindSpeed, th.SurfaceSpeedKt,
		func(d float64) string { return fmt.Sprintf("Wind Speed off by %s knots", formatNum(round2(d))) }))
	res.Temperature = note(checkScalar("Temperature", f.Temperature, o.Temperature, th.SurfaceTempC,
		func(d float64) string { return fmt.Sprintf("Temperature off by %.1f°C", d) }))
	res.Pressure = note(checkScalar("QNH", fcstPressure, o.Pressure, th.SurfacePressureHPa,
		func(d float64) string { return fmt.Sprintf("QNH off by %.1f hPa", d) }))

	res.Accurate = res.Direction != domain.Fail && res.Speed != domain.Fail &&
		res.Temperature != domain.Fail && res.Pressure != domain.Fail
	if len(reasons) == 0 {
		res.Reason = ReasonAllAccurate
	} else {
		res.Reason = strings.Join(reasons, " | ")
	}
	return res
}

// checkDirection passes variable or missing winds on either side. Invalid
// data is skipped rather than failed.
func checkDirection(fcst, obs domain.Value, tolerance float64) (domain.Outcome, string) {
	if fcst.IsVariable() || obs.IsVariable() || fcst.IsMissing() || obs.IsMissing() {
		return domain.Pass, ""
	}
	diff, ok := DirectionDiff(fcst, obs)
	if !ok {
		return domain.Skipped, "Wind Direction - Invalid data"
	}
	if within(diff, tolerance) {
		return domain.Pass, ""
	}
	return domain.Fail, fmt.Sprintf("Wind Direction off by %.1f°", diff)
}

// checkScalar compares two plain quantities. Missing data fails, invalid data
// is skipped.
func checkScalar(label string, fcst, obs domain.Value, tolerance float64, offBy func(float64) string) (domain.Outcome, string) {
	if fcst.IsMissing() || obs.IsMissing() {
		return domain.Fail, label + " - Missing data"
	}
	a, okA := fcst.Float()
	b, okB := obs.Float()
	if !okA || !okB {
		return domain.Skipped, label + " - Invalid data"
	}
	diff := math.Abs(a - b)
	if within(diff, tolerance) {
		return domain.Pass, ""
	}
	return domain.Fail, offBy(diff)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
