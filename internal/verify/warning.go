package verify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/forecast-verification-service/internal/domain"
)

// Elements labels.
const (
	ElementsGustAndThunderstorm = "Gust & Thunderstorm warning"
	ElementsGust                = "Gust warning"
	ElementsThunderstorm        = "Thunderstorm warning"
	ElementsNone                = "No significant weather"
)

// Fixed remarks.
const (
	RemarkObserved      = "OBS"
	RemarkNoGustMatch   = "No gust with matching direction observed"
	RemarkNoCBOrGust    = "No CB observed or gust direction mismatch"
	RemarkNoCB          = "No CB observed"
	RemarkNoSigWx       = "No significant weather to match"
	RemarkInvalidWindow = "Invalid validity window"
)

// gustRe accepts a gust written with its unit, e.g. "35KT".
var gustRe = regexp.MustCompile(`^\d{2,3}KT$`)

// windowEvidence is what an in-window scan found.
type windowEvidence struct {
	gustMatched bool
	gust        float64
	direction   float64
	cloudGroup  string
	tsTag       string
}

// VerifyWarnings scores each warning against obs, which must already be
// de-duplicated and sorted ascending (see PrepareObservations).
func VerifyWarnings(warnings []domain.Warning, obs []domain.Observation, th Thresholds) []domain.WarningResult {
	rows := make([]domain.WarningResult, 0, len(warnings))
	for i, w := range warnings {
		rows = append(rows, verifyWarning(i+1, w, obs, th))
	}
	return rows
}

func verifyWarning(slNo int, w domain.Warning, obs []domain.Observation, th Thresholds) domain.WarningResult {
	hasGust := gustRe.MatchString(strings.ToUpper(strings.TrimSpace(w.Gust)))
	hasSigWx := ClassifySignificantWeather(w.Phenomenon) != ""

	res := domain.WarningResult{
		SlNo:      slNo,
		IssueTime: w.IssueTime,
		ValidFrom: w.ValidFrom,
		ValidTo:   w.ValidTo,
		Elements:  elementsLabel(hasGust, hasSigWx),
	}

	if w.Observed() {
		res.Verdict = 1
		res.Remark = RemarkObserved
		return res
	}

	window, err := ResolveWindow(w.ValidFrom, w.ValidTo)
	if err != nil {
		res.Remark = RemarkInvalidWindow
		return res
	}
	res.ValidFrom, res.ValidTo = window.From, window.To

	if !hasGust && !hasSigWx {
		res.Remark = RemarkNoSigWx
		return res
	}

	ev := scanEvidence(ScanWindow(obs, window), w.Direction(), th.WarningDirectionDeg)
	res.Evidence = domain.WarningEvidence{CloudGroup: ev.cloudGroup, Thunderstorm: ev.tsTag}
	if ev.gustMatched {
		res.Evidence.Gust = formatNum(ev.gust) + "KT"
		res.Evidence.Direction = formatNum(ev.direction)
	}
	foundCB := ev.cloudGroup != ""

	switch {
	case hasGust && ev.gustMatched:
		res.Verdict = 1
		res.Remark = fmt.Sprintf("Gust %sKT Dir %s matched", formatNum(ev.gust), formatNum(ev.direction))
		if foundCB {
			res.Remark += " " + ev.cloudGroup + " found"
		}
	case hasSigWx && foundCB:
		res.Verdict = 1
		res.Remark = ev.cloudGroup + " found"
	case hasGust && hasSigWx:
		res.Remark = RemarkNoCBOrGust
	case hasGust:
		res.Remark = RemarkNoGustMatch
	default:
		res.Remark = RemarkNoCB
	}

	// Observed evidence names the elements; the forecast content is the
	// fallback when nothing was observed.
	if ev.gustMatched || foundCB {
		res.Elements = elementsLabel(ev.gustMatched, foundCB)
	}
	return res
}

// scanEvidence walks the in-window observations in match order. The first
// gust within tolerance and the first CB layer are kept.
func scanEvidence(inWindow []domain.Observation, forecastDir domain.Value, tolerance float64) windowEvidence {
	var ev windowEvidence
	for _, o := range inWindow {
		if !ev.gustMatched {
			if g, ok := o.Gust.Float(); ok {
				if diff, ok := DirectionDiff(o.WindDirection, forecastDir); ok && within(diff, tolerance) {
					ev.gustMatched = true
					ev.gust = g
					ev.direction, _ = o.WindDirection.Float()
				}
			}
		}
		if ev.cloudGroup == "" {
			for _, layer := range o.CloudLayers {
				if strings.Contains(strings.ToUpper(layer), "CB") {
					ev.cloudGroup = layer
					break
				}
			}
		}
		if ev.tsTag == "" {
			ev.tsTag = ClassifySignificantWeather(o.Phenomenon)
			if ev.tsTag == "" {
				ev.tsTag = ClassifySignificantWeather(o.Text())
			}
		}
	}
	return ev
}

func elementsLabel(gust, thunderstorm bool) string {
	switch {
	case gust && thunderstorm:
		return ElementsGustAndThunderstorm
	case gust:
		return ElementsGust
	case thunderstorm:
		return ElementsThunderstorm
	default:
		return ElementsNone
	}
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
