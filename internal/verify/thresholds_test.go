package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	require.NoError(t, th.Validate())
	assert.InDelta(t, 30.0, th.WarningDirectionDeg, 0)
	assert.InDelta(t, 5.0, th.SurfaceSpeedKt, 0)
	assert.InDelta(t, 1.94384, th.MSToKnots, 0)
	assert.InDelta(t, 80.0, th.BenchmarkPercent, 0)
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{"negative speed", func(th *Thresholds) { th.SurfaceSpeedKt = -1 }},
		{"direction above 180", func(th *Thresholds) { th.UpperAirDirectionDeg = 200 }},
		{"zero conversion", func(th *Thresholds) { th.MSToKnots = 0 }},
		{"benchmark above 100", func(th *Thresholds) { th.BenchmarkPercent = 120 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)
			assert.Error(t, th.Validate())
		})
	}
}
