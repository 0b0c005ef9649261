// Package domain models decoded aviation weather reports and the forecasts
// they are verified against.
//
// # Inputs
//
// Reports arrive already decoded by an upstream collector. Each verification
// request carries one fixed batch for a single station and product.
//
//	Observation        METAR-class report: timestamp, wind, gust, cloud layers,
//	                   temperature, QNH, raw text.
//	Warning            aerodrome warning with a validity window, e.g.
//	                   "SFC WSPD 20KT MAX35 FROM SW FCST" valid 042200/050100.
//	SurfaceForecast    TAF-class row for one day and HHMM time.
//	UpperAirForecast   forecast level indexed by altitude in metres.
//	SoundingLevel      observed radiosonde level indexed by geopotential height.
//
// # Field conventions
//
// Time format:
//
//	Validity boundaries are strings whose last four digits are HHMM, optionally
//	preceded by a two digit day (DDHHMM) or a longer prefix, and optionally
//	followed by "Z": "2200", "042200", "042200Z", "202406042200".
//
// Numeric fields:
//
//	Numbers may arrive as JSON numbers or strings. "VRB" marks variable wind,
//	"N/A", "" and null mark missing data, and any other text is kept as an
//	invalid value so the single parameter can be reported as invalid data.
//	See [Value].
//
// Units:
//
//	Wind speed is in knots except for sounding levels, which carry the
//	radiosonde's native m/s. Temperatures are in degC, pressure in hPa,
//	heights in metres.
//
// Compass points:
//
//	Warnings may give the wind as "FROM SW". [CompassDegrees] maps the 16
//	points to bearings (SW = 230).
//
// # Outputs
//
// Verifiers return immutable result rows plus a separately aggregated summary,
// wrapped in a [VerificationReport]. A [ConfigurationError] aborts a run when a
// required column is absent from a whole table.
package domain
