package verify

import (
	"testing"
	"time"

	"github.com/couchcryptid/forecast-verification-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surfaceObs(day, hour int, dir, speed, temp, qnh domain.Value) domain.Observation {
	return domain.Observation{
		Timestamp:     time.Date(2024, time.June, day, hour, 0, 0, 0, time.UTC),
		WindDirection: dir,
		WindSpeed:     speed,
		Temperature:   temp,
		Pressure:      qnh,
	}
}

func surfaceFcst(day int, hhmm string, dir, speed, temp, qnh domain.Value) domain.SurfaceForecast {
	return domain.SurfaceForecast{
		Day:           day,
		Time:          hhmm,
		WindDirection: dir,
		WindSpeed:     speed,
		Temperature:   temp,
		Pressure:      qnh,
	}
}

func n(v float64) domain.Value { return domain.Num(v) }

func TestVerifySurface_SpeedBoundary(t *testing.T) {
	tests := []struct {
		name     string
		fcst     float64
		accurate bool
		reason   string
	}{
		{"equal to tolerance", 15, true, ReasonAllAccurate},
		{"just over tolerance", 15.01, false, "Wind Speed off by 5.01 knots"},
		{"exact", 10, true, ReasonAllAccurate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := []domain.Observation{surfaceObs(4, 6, n(270), n(10), n(25), n(1008))}
			fc := []domain.SurfaceForecast{surfaceFcst(4, "0600Z", n(270), n(tt.fcst), n(25), n(1008))}

			rep, err := VerifySurface(obs, fc, DefaultThresholds())
			require.NoError(t, err)
			require.Len(t, rep.Rows, 1)
			assert.Equal(t, tt.accurate, rep.Rows[0].Accurate)
			assert.Equal(t, tt.reason, rep.Rows[0].Reason)
		})
	}
}

func TestVerifySurface_FloatNoiseAtBoundary(t *testing.T) {
	obs := []domain.Observation{surfaceObs(4, 6, n(270), n(10), n(16.2), n(1008))}
	fc := []domain.SurfaceForecast{surfaceFcst(4, "0600", n(270), n(10), n(17.2), n(1008))}

	rep, err := VerifySurface(obs, fc, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, domain.Pass, rep.Rows[0].Temperature)
}

func TestVerifySurface_ReasonsJoined(t *testing.T) {
	obs := []domain.Observation{surfaceObs(4, 6, n(10), n(10), n(25), n(1008))}
	fc := []domain.SurfaceForecast{surfaceFcst(4, "0600", n(300), n(10), n(27.5), n(1010))}

	rep, err := VerifySurface(obs, fc, DefaultThresholds())
	require.NoError(t, err)
	r := rep.Rows[0]
	assert.False(t, r.Accurate)
	assert.Equal(t, domain.Fail, r.Direction)
	assert.Equal(t, domain.Pass, r.Speed)
	assert.Equal(t, "Wind Direction off by 70.0° | Temperature off by 2.5°C | QNH off by 2.0 hPa", r.Reason)
}

func TestVerifySurface_DirectionLeniency(t *testing.T) {
	tests := []struct {
		name      string
		fcst, obs domain.Value
		want      domain.Outcome
	}{
		{"variable observed", n(90), domain.VRB(), domain.Pass},
		{"variable forecast", domain.VRB(), n(270), domain.Pass},
		{"missing observed", n(90), domain.Null(), domain.Pass},
		{"invalid observed", n(90), domain.InvalidValue("9O"), domain.Skipped},
		{"wraps north", n(350), n(10), domain.Pass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := []domain.Observation{surfaceObs(4, 6, tt.obs, n(10), n(25), n(1008))}
			fc := []domain.SurfaceForecast{surfaceFcst(4, "0600", tt.fcst, n(10), n(25), n(1008))}

			rep, err := VerifySurface(obs, fc, DefaultThresholds())
			require.NoError(t, err)
			assert.Equal(t, tt.want, rep.Rows[0].Direction)
			assert.True(t, rep.Rows[0].Accurate)
		})
	}
}

func TestVerifySurface_MissingAndInvalidData(t *testing.T) {
	obs := []domain.Observation{
		surfaceObs(4, 6, n(270), domain.Null(), n(25), n(1008)),
		surfaceObs(4, 7, n(270), n(10), domain.InvalidValue("M"), n(1008)),
	}
	fc := []domain.SurfaceForecast{
		surfaceFcst(4, "0600", n(270), n(10), n(25), n(1008)),
		surfaceFcst(4, "0700", n(270), n(10), n(25), n(1008)),
	}

	rep, err := VerifySurface(obs, fc, DefaultThresholds())
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)

	assert.Equal(t, domain.Fail, rep.Rows[0].Speed)
	assert.Equal(t, "Wind Speed - Missing data", rep.Rows[0].Reason)
	assert.False(t, rep.Rows[0].Accurate)

	assert.Equal(t, domain.Skipped, rep.Rows[1].Temperature)
	assert.Equal(t, "Temperature - Invalid data", rep.Rows[1].Reason)
	assert.True(t, rep.Rows[1].Accurate)

	// The skipped temperature is left out of the denominator.
	assert.Equal(t, "100.0% (1)", rep.Summary.Period.Temperature.Display)
	assert.Equal(t, "50.0% (1)", rep.Summary.Period.Speed.Display)
}

func TestVerifySurface_JoinAndDedupe(t *testing.T) {
	obs := []domain.Observation{
		surfaceObs(4, 6, n(270), n(10), n(25), n(1008)),
		surfaceObs(4, 6, n(90), n(30), n(10), n(990)), // duplicate key, dropped
		surfaceObs(5, 6, n(270), n(10), n(25), n(1008)),
		{WindSpeed: n(1), Temperature: n(1), Pressure: n(1)}, // no timestamp
	}
	fc := []domain.SurfaceForecast{
		surfaceFcst(4, "0600", n(270), n(12), n(25), n(1008)),
		surfaceFcst(4, "0600Z", n(0), n(0), n(0), n(0)), // duplicate key, dropped
		surfaceFcst(5, "600", n(270), n(10), n(25), n(1008)),
		surfaceFcst(6, "0600", n(270), n(10), n(25), n(1008)), // no observation
		surfaceFcst(0, "0600", n(270), n(10), n(25), n(1008)), // no day
	}

	rep, err := VerifySurface(obs, fc, DefaultThresholds())
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)
	assert.True(t, rep.Rows[0].Accurate)
	assert.Equal(t, 5, rep.Rows[1].Day)
	assert.Equal(t, "0600", rep.Rows[1].Time)
	assert.Equal(t, 2, rep.Summary.Excluded)
}

func TestVerifySurface_QFESubstitution(t *testing.T) {
	obs := []domain.Observation{surfaceObs(4, 6, n(270), n(10), n(25), n(1008))}
	fc := []domain.SurfaceForecast{{
		Day: 4, Time: "0600",
		WindDirection: n(270), WindSpeed: n(10), Temperature: n(25),
		AltPressure: n(1008.5),
	}}

	rep, err := VerifySurface(obs, fc, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, domain.Pass, rep.Rows[0].Pressure)
	assert.Equal(t, n(1008.5), rep.Rows[0].Forecast.Pressure)
}

func TestVerifySurface_ConfigurationErrors(t *testing.T) {
	obs := []domain.Observation{surfaceObs(4, 6, n(270), n(10), n(25), n(1008))}

	tests := []struct {
		name  string
		obs   []domain.Observation
		fc    []domain.SurfaceForecast
		table string
		field string
	}{
		{
			name:  "no pressure columns",
			obs:   obs,
			fc:    []domain.SurfaceForecast{{Day: 4, Time: "0600", WindSpeed: n(10), Temperature: n(25)}},
			table: "surface_forecasts",
			field: "pressure_hpa",
		},
		{
			name:  "no forecast temperature",
			obs:   obs,
			fc:    []domain.SurfaceForecast{{Day: 4, Time: "0600", WindSpeed: n(10), Pressure: n(1008)}},
			table: "surface_forecasts",
			field: "temperature_c",
		},
		{
			name:  "no observed pressure",
			obs:   []domain.Observation{surfaceObs(4, 6, n(270), n(10), n(25), domain.Null())},
			fc:    []domain.SurfaceForecast{surfaceFcst(4, "0600", n(270), n(10), n(25), n(1008))},
			table: "observations",
			field: "pressure_hpa",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifySurface(tt.obs, tt.fc, DefaultThresholds())
			require.Error(t, err)
			var ce *domain.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.table, ce.Table)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestVerifySurface_Summary(t *testing.T) {
	obs := []domain.Observation{
		surfaceObs(5, 0, n(270), n(10), n(25), n(1008)),
		surfaceObs(4, 6, n(270), n(10), n(25), n(1008)),
		surfaceObs(4, 9, n(270), n(10), n(25), n(1008)),
	}
	fc := []domain.SurfaceForecast{
		surfaceFcst(5, "0000", n(270), n(10), n(25), n(1008)),
		surfaceFcst(4, "0600", n(270), n(10), n(25), n(1008)),
		surfaceFcst(4, "0900", n(270), n(20), n(25), n(1008)),
	}

	rep, err := VerifySurface(obs, fc, DefaultThresholds())
	require.NoError(t, err)

	s := rep.Summary
	require.Len(t, s.Days, 2)
	assert.Equal(t, "04", s.Days[0].Label)
	assert.Equal(t, "05", s.Days[1].Label)
	assert.Equal(t, "50.0% (1)", s.Days[0].Speed.Display)
	assert.Equal(t, "50.0% (1)", s.Days[0].Overall.Display)
	assert.False(t, s.Days[0].MeetsBenchmark)
	assert.Equal(t, "100.0% (1)", s.Days[1].Overall.Display)
	assert.True(t, s.Days[1].MeetsBenchmark)

	assert.Equal(t, LabelWholePeriod, s.Period.Label)
	assert.Equal(t, "66.7% (2)", s.Period.Overall.Display)
	assert.Equal(t, "100.0% (3)", s.Period.Direction.Display)

	if diff := cmp.Diff(domain.BenchmarkRow{Label: LabelBenchmark, Threshold: "80%"}, s.Benchmark); diff != "" {
		t.Errorf("benchmark mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, s.Note)
}

func TestVerifySurface_EmptyResultSet(t *testing.T) {
	rep, err := VerifySurface(nil, nil, DefaultThresholds())
	require.NoError(t, err)
	assert.Empty(t, rep.Rows)
	assert.Equal(t, domain.NoDataNote, rep.Summary.Note)
	assert.Equal(t, "0.0% (0)", rep.Summary.Period.Overall.Display)
	assert.False(t, rep.Summary.Period.MeetsBenchmark)
}
