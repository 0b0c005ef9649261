package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/couchcryptid/forecast-verification-service/internal/domain"
)

// writeTables writes the CSV tables of the report into dir and returns the
// paths written.
func writeTables(dir string, report domain.VerificationReport) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var tables map[string][][]string
	switch {
	case report.Warnings != nil:
		tables = map[string][][]string{"warnings.csv": warningRows(report.Warnings)}
	case report.Surface != nil:
		tables = map[string][][]string{
			"surface.csv":         surfaceRows(report.Surface),
			"surface_summary.csv": surfaceSummaryRows(report.Surface.Summary),
		}
	case report.UpperAir != nil:
		tables = map[string][][]string{"upper_air.csv": upperAirRows(report.UpperAir)}
	}

	var written []string
	for _, name := range []string{"warnings.csv", "surface.csv", "surface_summary.csv", "upper_air.csv"} {
		rows, ok := tables[name]
		if !ok {
			continue
		}
		path := filepath.Join(dir, name)
		if err := writeCSV(path, rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func warningRows(r *domain.WarningReport) [][]string {
	rows := [][]string{{"Sl No", "Elements", "Issue Time", "Valid From", "Valid To", "Verdict", "Remark"}}
	for _, w := range r.Rows {
		rows = append(rows, []string{
			strconv.Itoa(w.SlNo), w.Elements, w.IssueTime, w.ValidFrom, w.ValidTo,
			strconv.Itoa(w.Verdict), w.Remark,
		})
	}
	return rows
}

func surfaceRows(r *domain.SurfaceReport) [][]string {
	rows := [][]string{{
		"Day", "Time",
		"Forecast Wind Dir", "Observed Wind Dir",
		"Forecast Wind Speed", "Observed Wind Speed",
		"Forecast Temperature", "Observed Temperature",
		"Forecast QNH", "Observed QNH",
		"Wind Dir", "Wind Speed", "Temperature", "QNH",
		"Accurate", "Reason",
	}}
	for _, s := range r.Rows {
		rows = append(rows, []string{
			fmt.Sprintf("%02d", s.Day), s.Time,
			s.Forecast.WindDirection.String(), s.Observed.WindDirection.String(),
			s.Forecast.WindSpeed.String(), s.Observed.WindSpeed.String(),
			s.Forecast.Temperature.String(), s.Observed.Temperature.String(),
			s.Forecast.Pressure.String(), s.Observed.Pressure.String(),
			s.Direction.String(), s.Speed.String(), s.Temperature.String(), s.Pressure.String(),
			strconv.FormatBool(s.Accurate), s.Reason,
		})
	}
	return rows
}

func surfaceSummaryRows(s domain.SurfaceSummary) [][]string {
	rows := [][]string{{"Day", "Wind Dir", "Wind Speed", "Temperature", "QNH", "Overall", "Meets Benchmark"}}
	for _, row := range slices.Concat(s.Days, []domain.SummaryRow{s.Period}) {
		rows = append(rows, []string{
			row.Label,
			row.Direction.Display, row.Speed.Display, row.Temperature.Display, row.Pressure.Display,
			row.Overall.Display, strconv.FormatBool(row.MeetsBenchmark),
		})
	}
	rows = append(rows, []string{s.Benchmark.Label, s.Benchmark.Threshold, s.Benchmark.Threshold,
		s.Benchmark.Threshold, s.Benchmark.Threshold, s.Benchmark.Threshold, ""})
	return rows
}

func upperAirRows(r *domain.UpperAirReport) [][]string {
	rows := [][]string{{
		"Altitude (m)", "Lower Level (m)", "Upper Level (m)",
		"Forecast Temp", "Interpolated Temp", "Temperature",
		"Forecast Speed (kt)", "Observed Speed (kt)", "Speed",
		"Forecast Direction", "Observed Direction", "Direction",
	}}
	for _, l := range r.Levels {
		rows = append(rows, []string{
			formatFloat(l.AltitudeM), formatFloat(l.LowerHeightM), formatFloat(l.UpperHeightM),
			l.ForecastTemp.String(), formatFloat(l.InterpolatedTemp), l.Temperature.String(),
			l.ForecastSpeed.String(), l.ObservedSpeed.String(), l.Speed.String(),
			l.ForecastDirection.String(), l.ObservedDirection.String(), l.Direction.String(),
		})
	}
	return rows
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
