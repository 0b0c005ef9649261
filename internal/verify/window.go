package verify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/forecast-verification-service/internal/domain"
)

// TimeWindow is a resolved validity window. Start and End are DDHHMM values
// when both boundaries carry a day, otherwise HHMM.
type TimeWindow struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Wraps  bool   `json:"wraps"`
	HasDay bool   `json:"has_day"`
}

// clockValue splits a boundary such as "042345Z" into its prefix, the
// trailing HHMM digits and whether a "Z" suffix was present.
type clockValue struct {
	prefix string
	hour   int
	minute int
	zulu   bool
}

func parseClock(s string) (clockValue, error) {
	s = strings.TrimSpace(s)
	var cv clockValue
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		cv.zulu = true
		s = s[:len(s)-1]
	}
	if len(s) < 4 {
		return cv, fmt.Errorf("time %q: want at least HHMM", s)
	}
	tail := s[len(s)-4:]
	for _, r := range tail {
		if r < '0' || r > '9' {
			return cv, fmt.Errorf("time %q: HHMM must be digits", s)
		}
	}
	cv.prefix = s[:len(s)-4]
	cv.hour, _ = strconv.Atoi(tail[:2])
	cv.minute, _ = strconv.Atoi(tail[2:])
	if cv.hour > 24 || cv.minute > 59 {
		return cv, fmt.Errorf("time %q: out of range", s)
	}
	return cv, nil
}

func (cv clockValue) String() string {
	s := fmt.Sprintf("%s%02d%02d", cv.prefix, cv.hour, cv.minute)
	if cv.zulu {
		s += "Z"
	}
	return s
}

// RoundDownHalfHour floors the minute to 00 or 30. The prefix and any "Z"
// suffix are preserved.
func RoundDownHalfHour(t string) (string, error) {
	cv, err := parseClock(t)
	if err != nil {
		return "", err
	}
	if cv.minute < 30 {
		cv.minute = 0
	} else {
		cv.minute = 30
	}
	return cv.String(), nil
}

// RoundUpHalfHour raises the minute to the next 00 or 30 boundary; values
// already on a boundary are unchanged. A bare HHMM wraps 2345 to 0000, while a
// value with a day prefix carries to 2400 for FixMidnightOverflow to roll over.
func RoundUpHalfHour(t string) (string, error) {
	cv, err := parseClock(t)
	if err != nil {
		return "", err
	}
	switch {
	case cv.minute == 0 || cv.minute == 30:
	case cv.minute < 30:
		cv.minute = 30
	default:
		cv.minute = 0
		cv.hour++
		if cv.hour >= 24 && !hasDayDigits(cv.prefix) {
			cv.hour = 0
		}
	}
	return cv.String(), nil
}

// FixMidnightOverflow turns DD2400 into (DD+1)0000. Days past 31 wrap to 01.
// A bare "2400" becomes "0000".
func FixMidnightOverflow(t string) (string, error) {
	cv, err := parseClock(t)
	if err != nil {
		return "", err
	}
	if cv.hour != 24 || cv.minute != 0 {
		return cv.String(), nil
	}
	cv.hour = 0
	if !hasDayDigits(cv.prefix) {
		return cv.String(), nil
	}
	head := cv.prefix[:len(cv.prefix)-2]
	day, _ := strconv.Atoi(cv.prefix[len(cv.prefix)-2:])
	day++
	if day > 31 {
		day = 1
	}
	cv.prefix = fmt.Sprintf("%s%02d", head, day)
	return cv.String(), nil
}

func hasDayDigits(prefix string) bool {
	if len(prefix) < 2 {
		return false
	}
	for _, r := range prefix[len(prefix)-2:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResolveWindow rounds validFrom down and validTo up to the half hour, fixes a
// 2400 end time and detects windows whose end precedes their start.
func ResolveWindow(validFrom, validTo string) (TimeWindow, error) {
	from, err := RoundDownHalfHour(validFrom)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("valid from: %w", err)
	}
	to, err := RoundUpHalfHour(validTo)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("valid to: %w", err)
	}
	if to, err = FixMidnightOverflow(to); err != nil {
		return TimeWindow{}, fmt.Errorf("valid to: %w", err)
	}

	fromCV, _ := parseClock(from)
	toCV, _ := parseClock(to)
	w := TimeWindow{
		From:   from,
		To:     to,
		HasDay: hasDayDigits(fromCV.prefix) && hasDayDigits(toCV.prefix),
	}
	w.Start = boundaryValue(fromCV, w.HasDay)
	w.End = boundaryValue(toCV, w.HasDay)
	w.Wraps = w.End < w.Start
	return w, nil
}

func boundaryValue(cv clockValue, withDay bool) int {
	v := cv.hour*100 + cv.minute
	if withDay {
		day, _ := strconv.Atoi(cv.prefix[len(cv.prefix)-2:])
		v += day * 10000
	}
	return v
}

// TimeKey converts a timestamp to the numeric form used by w.
func (w TimeWindow) TimeKey(ts time.Time) int {
	ts = ts.UTC()
	v := ts.Hour()*100 + ts.Minute()
	if w.HasDay {
		v += ts.Day() * 10000
	}
	return v
}

// InWindow reports whether key falls inside the window. Both ends are inclusive.
func (w TimeWindow) InWindow(key int) bool {
	if w.Wraps {
		return key >= w.Start || key <= w.End
	}
	return key >= w.Start && key <= w.End
}

// ScanWindow returns the observations inside w in chronological match order.
// obs must be sorted ascending. A non-wrapping window covers one contiguous
// run of reports. A wrapping window is scanned in two passes:
// the tail of the sequence from the first report at or after the start, then
// the head of the sequence up to that point.
func ScanWindow(obs []domain.Observation, w TimeWindow) []domain.Observation {
	var matched []domain.Observation
	if !w.Wraps {
		// Reports ahead of the window on the clock face, such as the previous
		// evening or the previous month's last day, are skipped. The scan stops
		// at the first report past the end once the window has been entered.
		started := false
		for _, o := range obs {
			if o.Timestamp.IsZero() {
				continue
			}
			k := w.TimeKey(o.Timestamp)
			if w.InWindow(k) {
				matched = append(matched, o)
				started = true
				continue
			}
			if started && k > w.End {
				break
			}
		}
		return matched
	}

	tailStart := len(obs)
	for i, o := range obs {
		if !o.Timestamp.IsZero() && w.TimeKey(o.Timestamp) >= w.Start {
			tailStart = i
			break
		}
	}
	for _, o := range obs[tailStart:] {
		if !o.Timestamp.IsZero() && w.InWindow(w.TimeKey(o.Timestamp)) {
			matched = append(matched, o)
		}
	}
	for _, o := range obs[:tailStart] {
		if !o.Timestamp.IsZero() && w.InWindow(w.TimeKey(o.Timestamp)) {
			matched = append(matched, o)
		}
	}
	return matched
}

// PrepareObservations de-duplicates by timestamp, keeping the first
// occurrence, and sorts ascending. The input is not modified.
func PrepareObservations(obs []domain.Observation) []domain.Observation {
	seen := make(map[int64]struct{}, len(obs))
	out := make([]domain.Observation, 0, len(obs))
	for _, o := range obs {
		k := o.Timestamp.UnixNano()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
