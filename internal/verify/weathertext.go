package verify

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Weather text scores.
const (
	WeatherScoreFullPeriod  = 100
	WeatherScoreChangeGroup = 50
	WeatherScoreNone        = 0
)

var (
	// qualifierRe matches an intensity word in front of a phenomenon, e.g. "HVY TSRA".
	qualifierRe = regexp.MustCompile(`\b(FBL|MOD|HVY)\s+`)

	// groupTimeRe matches a DDHH/DDHH change-group period.
	groupTimeRe = regexp.MustCompile(`^(\d{2})(\d{2})/(\d{2})(\d{2})$`)
)

// ChangeGroup is a BECMG or TEMPO sub-interval with its own phenomena.
type ChangeGroup struct {
	Kind     string
	FromDay  int
	FromHour int
	ToDay    int
	ToHour   int
	Tokens   []string
}

// Span projects the group onto the month containing base. A range whose end
// is not after its start is taken to wrap past month end and gains 30 days,
// or 31 when the month is that long.
func (g ChangeGroup) Span(base time.Time) (time.Time, time.Time) {
	month := time.Date(base.Year(), base.Month(), 1, 0, 0, 0, 0, base.Location())
	start := month.AddDate(0, 0, g.FromDay-1).Add(time.Duration(g.FromHour) * time.Hour)
	end := month.AddDate(0, 0, g.ToDay-1).Add(time.Duration(g.ToHour) * time.Hour)
	if !end.After(start) {
		end = end.AddDate(0, 0, 30)
		// 31-day months need one more day to land after start.
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}
	}
	return start, end
}

// replaceQualifiers turns "FBL RA" into "-RA", "MOD RA" into "RA" and
// "HVY RA" into "+RA".
func replaceQualifiers(text string) string {
	return qualifierRe.ReplaceAllStringFunc(strings.ToUpper(text), func(m string) string {
		switch strings.TrimSpace(m) {
		case "FBL":
			return "-"
		case "HVY":
			return "+"
		default:
			return ""
		}
	})
}

func tokenize(text string) []string {
	var tokens []string
	for _, f := range strings.Fields(text) {
		if f = strings.Trim(f, "="); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// NormalizeWeatherText returns the full-period tokens of a forecast weather
// text: qualifiers replaced and everything from the first change group on
// dropped.
func NormalizeWeatherText(text string) []string {
	text = replaceQualifiers(text)
	cut := len(text)
	for _, marker := range []string{"BECMG", "TEMPO"} {
		if i := strings.Index(text, marker); i >= 0 && i < cut {
			cut = i
		}
	}
	return tokenize(text[:cut])
}

// ParseChangeGroups extracts BECMG/TEMPO groups followed by a DDHH/DDHH
// period. Each group's tokens run until the next group or an "=".
func ParseChangeGroups(text string) []ChangeGroup {
	fields := strings.Fields(replaceQualifiers(text))
	var groups []ChangeGroup
	for i := 0; i < len(fields); i++ {
		if !isChangeMarker(fields[i]) || i+1 >= len(fields) {
			continue
		}
		m := groupTimeRe.FindStringSubmatch(fields[i+1])
		if m == nil {
			continue
		}
		g := ChangeGroup{Kind: fields[i]}
		g.FromDay, _ = strconv.Atoi(m[1])
		g.FromHour, _ = strconv.Atoi(m[2])
		g.ToDay, _ = strconv.Atoi(m[3])
		g.ToHour, _ = strconv.Atoi(m[4])

		j := i + 2
		for ; j < len(fields) && !isChangeMarker(fields[j]); j++ {
			tok, _, ended := strings.Cut(fields[j], "=")
			if tok != "" {
				g.Tokens = append(g.Tokens, tok)
			}
			if ended {
				break
			}
		}
		groups = append(groups, g)
		i = j - 1
	}
	return groups
}

func isChangeMarker(s string) bool {
	return s == "BECMG" || s == "TEMPO"
}

// MatchWeatherTokens reports whether any token occurs in any observation line.
// RA and SHRA are interchangeable; every other token must appear literally.
func MatchWeatherTokens(tokens, lines []string) bool {
	for _, line := range lines {
		line = strings.ToUpper(line)
		for _, tok := range tokens {
			if tok == "RA" || tok == "SHRA" {
				if strings.Contains(line, "RA") || strings.Contains(line, "SHRA") {
					return true
				}
				continue
			}
			if strings.Contains(line, tok) {
				return true
			}
		}
	}
	return false
}

// ScoreWeatherText scores a forecast weather text against observation lines:
// 100 for a full-period match, 50 when a change group covering more than half
// of the period matches, 0 otherwise.
func ScoreWeatherText(text string, lines []string, periodStart, periodEnd time.Time) int {
	if len(lines) == 0 || strings.TrimSpace(text) == "" {
		return WeatherScoreNone
	}
	if MatchWeatherTokens(NormalizeWeatherText(text), lines) {
		return WeatherScoreFullPeriod
	}

	total := periodEnd.Sub(periodStart)
	if total <= 0 {
		return WeatherScoreNone
	}
	for _, g := range ParseChangeGroups(text) {
		start, end := g.Span(periodStart)
		if end.Sub(start) <= total/2 {
			continue
		}
		if MatchWeatherTokens(g.Tokens, lines) {
			return WeatherScoreChangeGroup
		}
	}
	return WeatherScoreNone
}
