package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/forecast-verification-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteTables_Warnings(t *testing.T) {
	dir := t.TempDir()
	report := domain.VerificationReport{
		Product: domain.ProductAerodromeWarning,
		Warnings: &domain.WarningReport{Rows: []domain.WarningResult{
			{SlNo: 1, Elements: "Gust warning", IssueTime: "2130", ValidFrom: "2200", ValidTo: "0100", Verdict: 1, Remark: "Gust 35KT Dir 230 matched"},
		}},
	}

	files, err := writeTables(dir, report)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "warnings.csv")}, files)

	want := [][]string{
		{"Sl No", "Elements", "Issue Time", "Valid From", "Valid To", "Verdict", "Remark"},
		{"1", "Gust warning", "2130", "2200", "0100", "1", "Gust 35KT Dir 230 matched"},
	}
	if diff := cmp.Diff(want, readCSV(t, files[0])); diff != "" {
		t.Fatalf("warnings.csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTables_SurfaceWritesBothTables(t *testing.T) {
	dir := t.TempDir()
	report := domain.VerificationReport{
		Product: domain.ProductSurfaceForecast,
		Surface: &domain.SurfaceReport{
			Rows: []domain.SurfaceResult{{
				Day: 4, Time: "0600",
				Forecast:  domain.Reading{WindDirection: domain.VRB(), WindSpeed: domain.Num(5), Temperature: domain.Num(25), Pressure: domain.Num(1010)},
				Observed:  domain.Reading{WindDirection: domain.Num(270), WindSpeed: domain.Num(6), Temperature: domain.Num(27), Pressure: domain.Null()},
				Direction: domain.Pass, Speed: domain.Pass, Temperature: domain.Fail, Pressure: domain.Fail,
				Reason: "Temperature off by 2.0°C | QNH - Missing data",
			}},
			Summary: domain.SurfaceSummary{
				Period:    domain.SummaryRow{Label: "Whole Period", Overall: domain.Stat{Display: "0.0% (1)"}},
				Benchmark: domain.BenchmarkRow{Label: "ICAO Requirement", Threshold: "80%"},
			},
		},
	}

	files, err := writeTables(dir, report)
	require.NoError(t, err)
	require.Len(t, files, 2)

	rows := readCSV(t, filepath.Join(dir, "surface.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, "04", rows[1][0])
	assert.Equal(t, "VRB", rows[1][2])
	assert.Equal(t, "false", rows[1][14])
	assert.Equal(t, "Temperature off by 2.0°C | QNH - Missing data", rows[1][15])

	summary := readCSV(t, filepath.Join(dir, "surface_summary.csv"))
	require.Len(t, summary, 3)
	assert.Equal(t, "Whole Period", summary[1][0])
	assert.Equal(t, "ICAO Requirement", summary[2][0])
	assert.Equal(t, "80%", summary[2][1])
}

func TestPrintSummary_UpperAirWithoutDirection(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, domain.VerificationReport{
		Station: "VOBL",
		Product: domain.ProductUpperAir,
		UpperAir: &domain.UpperAirReport{Summary: domain.UpperAirSummary{
			TempAccuracy: 75, WindSpeedAccuracy: 50, Levels: 4, WeatherTextAccuracy: 50,
		}},
	})
	out := buf.String()
	assert.Contains(t, out, "Temperature accuracy: 75.00%")
	assert.Contains(t, out, "Wind direction accuracy: n/a")
	assert.Contains(t, out, "Weather text accuracy: 50%")
}
