package verify

import (
	"fmt"
	"slices"

	"github.com/couchcryptid/forecast-verification-service/internal/domain"
	"github.com/shopspring/decimal"
)

// Summary row labels.
const (
	LabelWholePeriod = "Whole Period"
	LabelBenchmark   = "ICAO Requirement"
)

// percent returns 100*matched/total rounded half away from zero. Zero totals
// yield zero.
func percent(matched, total int, places int32) float64 {
	if total == 0 {
		return 0
	}
	p := decimal.NewFromInt(int64(matched)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), places+4).
		Round(places)
	f, _ := p.Float64()
	return f
}

// NewStat builds a Stat displayed as "XX.X% (n)".
func NewStat(matched, total int) domain.Stat {
	p := percent(matched, total, 1)
	return domain.Stat{
		Matched: matched,
		Total:   total,
		Percent: p,
		Display: fmt.Sprintf("%s%% (%d)", decimal.NewFromFloat(p).StringFixed(1), matched),
	}
}

// meanPercent is the mean of boolean verdicts times 100, rounded to 2 places.
func meanPercent(matched, total int) float64 {
	return percent(matched, total, 2)
}

// tally accumulates outcomes for one parameter. Skipped outcomes are ignored.
type tally struct {
	matched int
	total   int
}

func (t *tally) add(o domain.Outcome) {
	switch o {
	case domain.Pass:
		t.matched++
		t.total++
	case domain.Fail:
		t.total++
	}
}

func (t tally) stat() domain.Stat { return NewStat(t.matched, t.total) }

type surfaceTally struct {
	direction, speed, temperature, pressure, overall tally
}

func (s *surfaceTally) add(r domain.SurfaceResult) {
	s.direction.add(r.Direction)
	s.speed.add(r.Speed)
	s.temperature.add(r.Temperature)
	s.pressure.add(r.Pressure)
	if r.Accurate {
		s.overall.add(domain.Pass)
	} else {
		s.overall.add(domain.Fail)
	}
}

func (s surfaceTally) row(label string, benchmark float64) domain.SummaryRow {
	overall := s.overall.stat()
	return domain.SummaryRow{
		Label:          label,
		Direction:      s.direction.stat(),
		Speed:          s.speed.stat(),
		Temperature:    s.temperature.stat(),
		Pressure:       s.pressure.stat(),
		Overall:        overall,
		MeetsBenchmark: overall.Total > 0 && overall.Percent >= benchmark,
	}
}

// SummarizeSurface groups rows by day in ascending order and appends the
// whole-period row and the benchmark row. excluded is the number of rows
// dropped for lacking a join key.
func SummarizeSurface(rows []domain.SurfaceResult, excluded int, th Thresholds) domain.SurfaceSummary {
	byDay := map[int]*surfaceTally{}
	var days []int
	var period surfaceTally
	for _, r := range rows {
		t, ok := byDay[r.Day]
		if !ok {
			t = &surfaceTally{}
			byDay[r.Day] = t
			days = append(days, r.Day)
		}
		t.add(r)
		period.add(r)
	}
	slices.Sort(days)

	summary := domain.SurfaceSummary{
		Days:     make([]domain.SummaryRow, 0, len(days)),
		Period:   period.row(LabelWholePeriod, th.BenchmarkPercent),
		Excluded: excluded,
		Benchmark: domain.BenchmarkRow{
			Label:     LabelBenchmark,
			Threshold: decimal.NewFromFloat(th.BenchmarkPercent).String() + "%",
		},
	}
	for _, d := range days {
		summary.Days = append(summary.Days, byDay[d].row(fmt.Sprintf("%02d", d), th.BenchmarkPercent))
	}
	if len(rows) == 0 {
		summary.Note = domain.NoDataNote
	}
	return summary
}

// SummarizeWarnings computes the share of warnings with a verdict of 1.
func SummarizeWarnings(rows []domain.WarningResult) domain.WarningSummary {
	hits := 0
	for _, r := range rows {
		hits += r.Verdict
	}
	s := domain.WarningSummary{Accuracy: NewStat(hits, len(rows))}
	if len(rows) == 0 {
		s.Note = domain.NoDataNote
	}
	return s
}
