package verify

import "strings"

// Canonical thunderstorm tags, most specific first.
const (
	TagHeavyTSRA = "+TSRA"
	TagLightTSRA = "-TSRA"
	TagTSRA      = "TSRA"
	TagHeavyTS   = "+TS"
	TagLightTS   = "-TS"
	TagTS        = "TS"
)

type intensity uint8

const (
	moderate intensity = iota
	light
	heavy
)

// ClassifySignificantWeather reduces phenomenon text such as
// "HVY TSRA FCST" or "-TSRA BR" to a canonical tag. It returns "" when no
// thunderstorm token is present. When several tokens occur the most specific
// wins: heavy before light before moderate, and TSRA before TS.
func ClassifySignificantWeather(text string) string {
	var seen [2][3]bool // [withRain][intensity]
	tokens := strings.Fields(strings.ToUpper(text))
	for i, tok := range tokens {
		tok = strings.TrimRight(tok, "=,.")
		level := moderate
		switch {
		case strings.HasPrefix(tok, "+"):
			level, tok = heavy, tok[1:]
		case strings.HasPrefix(tok, "-"):
			level, tok = light, tok[1:]
		case i > 0:
			switch tokens[i-1] {
			case "HVY":
				level = heavy
			case "FBL":
				level = light
			}
		}
		switch tok {
		case "TSRA":
			seen[1][level] = true
		case "TS":
			seen[0][level] = true
		}
	}

	order := []struct {
		rain  int
		level intensity
		tag   string
	}{
		{1, heavy, TagHeavyTSRA},
		{1, light, TagLightTSRA},
		{1, moderate, TagTSRA},
		{0, heavy, TagHeavyTS},
		{0, light, TagLightTS},
		{0, moderate, TagTS},
	}
	for _, o := range order {
		if seen[o.rain][o.level] {
			return o.tag
		}
	}
	return ""
}
