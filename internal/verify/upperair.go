package verify

import (
	"math"

	"github.com/couchcryptid/forecast-verification-service/internal/domain"
)

const (
	tableUpperAirForecasts = "upper_air.forecasts"
	tableSounding          = "upper_air.sounding"
)

// observedLevel is a sounding level usable for temperature bracketing.
type observedLevel struct {
	height float64
	temp   float64
	level  domain.SoundingLevel
}

// VerifyUpperAir scores each forecast level against the observed sounding.
// Temperature is linearly interpolated between the bracketing levels; wind
// comes from the nearer of the two. Levels without both brackets are omitted.
func VerifyUpperAir(forecasts []domain.UpperAirForecast, sounding []domain.SoundingLevel, th Thresholds) (domain.UpperAirReport, error) {
	if err := checkUpperAirColumns(forecasts, sounding); err != nil {
		return domain.UpperAirReport{}, err
	}

	levels := make([]observedLevel, 0, len(sounding))
	for _, s := range sounding {
		h, okH := s.GeopotentialHeight.Float()
		t, okT := s.Temperature.Float()
		if okH && okT {
			levels = append(levels, observedLevel{height: h, temp: t, level: s})
		}
	}

	report := domain.UpperAirReport{Levels: make([]domain.UpperAirResult, 0, len(forecasts))}
	for _, f := range forecasts {
		alt, ok := f.Altitude.Float()
		if !ok {
			report.Summary.Skipped++
			continue
		}
		lower, upper, ok := bracket(levels, alt)
		if !ok {
			report.Summary.Skipped++
			continue
		}
		report.Levels = append(report.Levels, compareLevel(f, alt, lower, upper, th))
	}

	report.Summary = summarizeUpperAir(report.Levels, report.Summary.Skipped)
	return report, nil
}

func checkUpperAirColumns(forecasts []domain.UpperAirForecast, sounding []domain.SoundingLevel) error {
	if len(forecasts) > 0 {
		cols := []struct {
			field string
			get   func(domain.UpperAirForecast) domain.Value
		}{
			{"altitude_m", func(f domain.UpperAirForecast) domain.Value { return f.Altitude }},
			{"temperature_c", func(f domain.UpperAirForecast) domain.Value { return f.Temperature }},
			{"wind_speed_kt", func(f domain.UpperAirForecast) domain.Value { return f.WindSpeed }},
		}
		for _, c := range cols {
			if allMissing(forecasts, c.get) {
				return &domain.ConfigurationError{Table: tableUpperAirForecasts, Field: c.field}
			}
		}
	}
	if len(sounding) > 0 {
		cols := []struct {
			field string
			get   func(domain.SoundingLevel) domain.Value
		}{
			{"geopotential_height_m", func(s domain.SoundingLevel) domain.Value { return s.GeopotentialHeight }},
			{"temperature_c", func(s domain.SoundingLevel) domain.Value { return s.Temperature }},
			{"wind_speed_ms", func(s domain.SoundingLevel) domain.Value { return s.WindSpeed }},
		}
		for _, c := range cols {
			if allMissing(sounding, c.get) {
				return &domain.ConfigurationError{Table: tableSounding, Field: c.field}
			}
		}
	}
	return nil
}

// bracket finds the highest level at or below alt and the lowest level at or
// above it. The input order does not matter.
func bracket(levels []observedLevel, alt float64) (lower, upper observedLevel, ok bool) {
	var haveLower, haveUpper bool
	for _, l := range levels {
		if l.height <= alt && (!haveLower || l.height > lower.height) {
			lower, haveLower = l, true
		}
		if l.height >= alt && (!haveUpper || l.height < upper.height) {
			upper, haveUpper = l, true
		}
	}
	return lower, upper, haveLower && haveUpper
}

// InterpolateTemperature linearly interpolates between (h1, t1) and (h2, t2)
// at hf. Equal heights return t1.
func InterpolateTemperature(h1, t1, h2, t2, hf float64) float64 {
	if h1 == h2 {
		return t1
	}
	return ((h2-hf)*t1 + (hf-h1)*t2) / (h2 - h1)
}

func compareLevel(f domain.UpperAirForecast, alt float64, lower, upper observedLevel, th Thresholds) domain.UpperAirResult {
	interp := InterpolateTemperature(lower.height, lower.temp, upper.height, upper.temp, alt)
	res := domain.UpperAirResult{
		AltitudeM:         alt,
		LowerHeightM:      lower.height,
		UpperHeightM:      upper.height,
		ForecastTemp:      f.Temperature,
		InterpolatedTemp:  round2(interp),
		ForecastSpeed:     f.WindSpeed,
		ForecastDirection: f.WindDirection,
	}

	if ft, ok := f.Temperature.Float(); ok && within(math.Abs(ft-interp), th.UpperAirTempC) {
		res.Temperature = domain.Pass
	} else {
		res.Temperature = domain.Fail
	}

	nearest := lower
	if math.Abs(upper.height-alt) < math.Abs(lower.height-alt) {
		nearest = upper
	}
	res.ObservedDirection = nearest.level.WindDirection
	if ms, ok := nearest.level.WindSpeed.Float(); ok {
		res.ObservedSpeed = domain.Num(round2(ms * th.MSToKnots))
	} else {
		res.ObservedSpeed = nearest.level.WindSpeed
	}

	fs, okF := f.WindSpeed.Float()
	ms, okO := nearest.level.WindSpeed.Float()
	if okF && okO && within(math.Abs(fs-ms*th.MSToKnots), th.UpperAirSpeedKt) {
		res.Speed = domain.Pass
	} else {
		res.Speed = domain.Fail
	}

	if diff, ok := DirectionDiff(f.WindDirection, nearest.level.WindDirection); !ok {
		res.Direction = domain.Skipped
	} else if within(diff, th.UpperAirDirectionDeg) {
		res.Direction = domain.Pass
	} else {
		res.Direction = domain.Fail
	}
	return res
}

func summarizeUpperAir(levels []domain.UpperAirResult, skipped int) domain.UpperAirSummary {
	var temp, speed, dir tally
	for _, l := range levels {
		temp.add(l.Temperature)
		speed.add(l.Speed)
		dir.add(l.Direction)
	}
	s := domain.UpperAirSummary{
		TempAccuracy:      meanPercent(temp.matched, temp.total),
		WindSpeedAccuracy: meanPercent(speed.matched, speed.total),
		Levels:            len(levels),
		Skipped:           skipped,
	}
	if dir.total > 0 {
		d := meanPercent(dir.matched, dir.total)
		s.WindDirectionAccuracy = &d
	}
	if len(levels) == 0 {
		s.Note = domain.NoDataNote
	}
	return s
}
