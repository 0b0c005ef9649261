package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/forecast-verification-service/internal/domain"
	"github.com/couchcryptid/forecast-verification-service/internal/observability"
	"github.com/couchcryptid/forecast-verification-service/internal/pipeline"
	"github.com/couchcryptid/forecast-verification-service/internal/verify"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedAt = time.Date(2024, time.June, 5, 3, 0, 0, 0, time.UTC)

func newRunner(t *testing.T) *pipeline.Runner {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(generatedAt))
	t.Cleanup(func() {
		domain.SetClock(nil)
	})
	return pipeline.NewRunner(verify.DefaultThresholds(), discardLogger(), observability.NewMetricsForTesting())
}

func surfaceRequest() domain.VerificationRequest {
	return domain.VerificationRequest{
		ID:      "req-1",
		Product: domain.ProductSurfaceForecast,
		Station: "vobl",
		Observations: []domain.Observation{
			{
				Timestamp:     time.Date(2024, time.June, 4, 6, 0, 0, 0, time.UTC),
				WindDirection: domain.Num(270),
				WindSpeed:     domain.Num(10),
				Temperature:   domain.Num(25),
				Pressure:      domain.Num(1010),
			},
		},
		SurfaceForecasts: []domain.SurfaceForecast{
			{
				Day:           4,
				Time:          "0600",
				WindDirection: domain.Num(260),
				WindSpeed:     domain.Num(12),
				Temperature:   domain.Num(25.5),
				Pressure:      domain.Num(1010.5),
			},
		},
	}
}

func TestRunner_Run_Surface(t *testing.T) {
	r := newRunner(t)

	report, err := r.Run(context.Background(), surfaceRequest())
	require.NoError(t, err)

	assert.Equal(t, "req-1", report.ID)
	assert.Equal(t, "VOBL", report.Station)
	assert.Equal(t, generatedAt, report.GeneratedAt)
	_, err = uuid.Parse(report.RunID)
	require.NoError(t, err)

	require.NotNil(t, report.Surface)
	require.Len(t, report.Surface.Rows, 1)
	assert.True(t, report.Surface.Rows[0].Accurate)
	acc, ok := report.Accuracy()
	assert.True(t, ok)
	assert.InDelta(t, 100.0, acc, 0)
}

func TestRunner_Run_DistinctRunIDs(t *testing.T) {
	r := newRunner(t)
	a, err := r.Run(context.Background(), surfaceRequest())
	require.NoError(t, err)
	b, err := r.Run(context.Background(), surfaceRequest())
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRunner_Run_SurfaceConfigurationError(t *testing.T) {
	r := newRunner(t)
	req := surfaceRequest()
	req.SurfaceForecasts[0].Temperature = domain.Null()

	_, err := r.Run(context.Background(), req)
	require.Error(t, err)

	var ce *domain.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "temperature_c", ce.Field)
}

func TestRunner_Run_UpperAirWithWeatherText(t *testing.T) {
	r := newRunner(t)
	req := domain.VerificationRequest{
		ID:      "req-ua",
		Product: domain.ProductUpperAir,
		Station: "VOBL",
		Observations: []domain.Observation{
			{Timestamp: time.Date(2024, time.June, 4, 6, 0, 0, 0, time.UTC), Raw: "METAR VOBL 040600Z 27010KT 4000 TSRA"},
		},
		UpperAir: &domain.UpperAirInput{
			Forecasts: []domain.UpperAirForecast{
				{Altitude: domain.Num(1500), Temperature: domain.Num(15), WindSpeed: domain.Num(10), WindDirection: domain.Num(270)},
			},
			Sounding: []domain.SoundingLevel{
				{GeopotentialHeight: domain.Num(1000), Temperature: domain.Num(20), WindSpeed: domain.Num(5), WindDirection: domain.Num(270)},
				{GeopotentialHeight: domain.Num(2000), Temperature: domain.Num(10), WindSpeed: domain.Num(10), WindDirection: domain.Num(280)},
			},
			WeatherText: "27010KT 4000 HVY TSRA",
			PeriodStart: time.Date(2024, time.June, 4, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2024, time.June, 4, 12, 0, 0, 0, time.UTC),
		},
	}

	report, err := r.Run(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, report.UpperAir)
	require.Len(t, report.UpperAir.Levels, 1)

	level := report.UpperAir.Levels[0]
	assert.InDelta(t, 15.0, level.InterpolatedTemp, 1e-9)
	assert.Equal(t, domain.Pass, level.Temperature)
	assert.Equal(t, domain.Pass, level.Speed)
	assert.Equal(t, domain.Pass, level.Direction)
	assert.Equal(t, verify.WeatherScoreFullPeriod, report.UpperAir.Summary.WeatherTextAccuracy)
}

func TestRunner_Run_UpperAirWithoutInput(t *testing.T) {
	r := newRunner(t)
	report, err := r.Run(context.Background(), domain.VerificationRequest{Product: domain.ProductUpperAir})
	require.NoError(t, err)
	require.NotNil(t, report.UpperAir)
	assert.Equal(t, domain.NoDataNote, report.UpperAir.Summary.Note)
	assert.Equal(t, verify.WeatherScoreNone, report.UpperAir.Summary.WeatherTextAccuracy)
}

func TestRunner_Run_Warnings(t *testing.T) {
	r := newRunner(t)
	req := domain.VerificationRequest{
		Product: domain.ProductAerodromeWarning,
		Station: "VOBL",
		Warnings: []domain.Warning{
			{IssueTime: "040500", ValidFrom: "040600", ValidTo: "040900", Status: domain.StatusObserved},
		},
	}

	report, err := r.Run(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, report.Warnings)
	require.Len(t, report.Warnings.Rows, 1)
	assert.Equal(t, 1, report.Warnings.Rows[0].Verdict)
	assert.Equal(t, 1, report.Warnings.Summary.Accuracy.Total)
}

func TestRunner_Run_UnknownProduct(t *testing.T) {
	r := newRunner(t)
	_, err := r.Run(context.Background(), domain.VerificationRequest{Product: "sigmet"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownProduct))
}

func TestRunner_Transform(t *testing.T) {
	r := newRunner(t)
	body, err := json.Marshal(surfaceRequest())
	require.NoError(t, err)

	report, err := r.Transform(context.Background(), domain.RawEvent{Key: []byte("k"), Value: body})
	require.NoError(t, err)
	assert.Equal(t, "req-1", report.ID)
	require.NotNil(t, report.Surface)
}

func TestRunner_Transform_IDFallsBackToKey(t *testing.T) {
	r := newRunner(t)
	report, err := r.Transform(context.Background(), domain.RawEvent{
		Key:   []byte("msg-key"),
		Value: []byte(`{"product":"upper_air","station":"VOBL"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-key", report.ID)
}

func TestRunner_Transform_Malformed(t *testing.T) {
	r := newRunner(t)
	_, err := r.Transform(context.Background(), domain.RawEvent{Value: []byte("not json")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedRequest))
}
