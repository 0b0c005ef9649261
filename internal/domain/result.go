package domain

import (
	"fmt"
	"time"
)

// NoDataNote marks a summary computed over zero rows.
const NoDataNote = "no data to evaluate"

// Outcome is the result of a single parameter test.
type Outcome uint8

const (
	Pass Outcome = iota
	Fail
	// Skipped parameters are left out of that parameter's percentage.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return "skipped"
	}
}

// MarshalText lets outcomes appear as strings in JSON reports.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText parses the strings written by MarshalText.
func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "pass":
		*o = Pass
	case "fail":
		*o = Fail
	case "skipped":
		*o = Skipped
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}

// Stat is a matched/total pair with its rounded percentage.
type Stat struct {
	Matched int     `json:"matched"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
	Display string  `json:"display"` // "XX.X% (n)"
}

// WarningEvidence records what was observed inside a warning's window.
type WarningEvidence struct {
	Gust         string `json:"gust,omitempty"`
	Direction    string `json:"direction,omitempty"`
	CloudGroup   string `json:"cloud_group,omitempty"`
	Thunderstorm string `json:"thunderstorm,omitempty"`
}

// WarningResult is one verdict row for an aerodrome warning.
type WarningResult struct {
	SlNo      int             `json:"sl_no"`
	Elements  string          `json:"elements"`
	IssueTime string          `json:"issue_time"`
	ValidFrom string          `json:"valid_from"`
	ValidTo   string          `json:"valid_to"`
	Verdict   int             `json:"verdict"`
	Remark    string          `json:"remark"`
	Evidence  WarningEvidence `json:"evidence"`
}

// WarningSummary aggregates warning verdicts.
type WarningSummary struct {
	Accuracy Stat   `json:"accuracy"`
	Note     string `json:"note,omitempty"`
}

// WarningReport is the verification output for aerodrome warnings.
type WarningReport struct {
	Rows    []WarningResult `json:"rows"`
	Summary WarningSummary  `json:"summary"`
}

// SurfaceResult compares one forecast row with the observation at the same
// day and time.
type SurfaceResult struct {
	Day         int     `json:"day"`
	Time        string  `json:"time"`
	Forecast    Reading `json:"forecast"`
	Observed    Reading `json:"observed"`
	Direction   Outcome `json:"direction"`
	Speed       Outcome `json:"speed"`
	Temperature Outcome `json:"temperature"`
	Pressure    Outcome `json:"pressure"`
	Accurate    bool    `json:"accurate"`
	Reason      string  `json:"reason"`
}

// Reading is the set of surface parameters on one side of a comparison.
type Reading struct {
	WindDirection Value `json:"wind_direction_deg"`
	WindSpeed     Value `json:"wind_speed_kt"`
	Temperature   Value `json:"temperature_c"`
	Pressure      Value `json:"pressure_hpa"`
}

// SummaryRow is one line of the surface accuracy table.
type SummaryRow struct {
	Label          string `json:"label"`
	Direction      Stat   `json:"wind_direction"`
	Speed          Stat   `json:"wind_speed"`
	Temperature    Stat   `json:"temperature"`
	Pressure       Stat   `json:"pressure"`
	Overall        Stat   `json:"overall"`
	MeetsBenchmark bool   `json:"meets_benchmark"`
}

// BenchmarkRow is the fixed regulatory requirement line.
type BenchmarkRow struct {
	Label     string `json:"label"`
	Threshold string `json:"threshold"` // e.g. "80%"
}

// SurfaceSummary holds the daily rows, the whole-period row and the benchmark.
type SurfaceSummary struct {
	Days      []SummaryRow `json:"days"`
	Period    SummaryRow   `json:"period"`
	Benchmark BenchmarkRow `json:"benchmark"`
	Excluded  int          `json:"excluded"`
	Note      string       `json:"note,omitempty"`
}

// SurfaceReport is the verification output for surface forecasts.
type SurfaceReport struct {
	Rows    []SurfaceResult `json:"rows"`
	Summary SurfaceSummary  `json:"summary"`
}

// UpperAirResult is the per-level comparison of an upper-air forecast.
type UpperAirResult struct {
	AltitudeM         float64 `json:"altitude_m"`
	LowerHeightM      float64 `json:"lower_height_m"`
	UpperHeightM      float64 `json:"upper_height_m"`
	ForecastTemp      Value   `json:"forecast_temp_c"`
	InterpolatedTemp  float64 `json:"interpolated_temp_c"`
	Temperature       Outcome `json:"temperature"`
	ForecastSpeed     Value   `json:"forecast_speed_kt"`
	ObservedSpeed     Value   `json:"observed_speed_kt"`
	Speed             Outcome `json:"speed"`
	ForecastDirection Value   `json:"forecast_direction_deg"`
	ObservedDirection Value   `json:"observed_direction_deg"`
	Direction         Outcome `json:"direction"`
}

// UpperAirSummary holds the aggregate accuracies. WindDirectionAccuracy is
// nil when no level had an evaluable direction.
type UpperAirSummary struct {
	TempAccuracy          float64  `json:"temp_accuracy"`
	WindSpeedAccuracy     float64  `json:"wind_speed_accuracy"`
	WindDirectionAccuracy *float64 `json:"wind_direction_accuracy"`
	WeatherTextAccuracy   int      `json:"weather_text_accuracy"`
	Levels                int      `json:"levels"`
	Skipped               int      `json:"skipped"`
	Note                  string   `json:"note,omitempty"`
}

// UpperAirReport is the verification output for upper-air forecasts.
type UpperAirReport struct {
	Levels  []UpperAirResult `json:"levels"`
	Summary UpperAirSummary  `json:"summary"`
}

// VerificationReport is published to the sink topic.
type VerificationReport struct {
	ID          string          `json:"id"`
	RunID       string          `json:"run_id"`
	Product     string          `json:"product"`
	Station     string          `json:"station"`
	GeneratedAt time.Time       `json:"generated_at"`
	Warnings    *WarningReport  `json:"warnings,omitempty"`
	Surface     *SurfaceReport  `json:"surface,omitempty"`
	UpperAir    *UpperAirReport `json:"upper_air,omitempty"`
}

// Accuracy returns the headline percentage of the report for metrics.
func (r VerificationReport) Accuracy() (float64, bool) {
	switch {
	case r.Warnings != nil:
		return r.Warnings.Summary.Accuracy.Percent, r.Warnings.Summary.Accuracy.Total > 0
	case r.Surface != nil:
		return r.Surface.Summary.Period.Overall.Percent, r.Surface.Summary.Period.Overall.Total > 0
	case r.UpperAir != nil:
		return r.UpperAir.Summary.TempAccuracy, r.UpperAir.Summary.Levels > 0
	}
	return 0, false
}

// Now returns the current time from the package clock.
func Now() time.Time {
	return clock.Now().UTC()
}
