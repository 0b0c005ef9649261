package domain

import (
	"context"
	"time"
)

// Product names accepted in a VerificationRequest.
const (
	ProductAerodromeWarning = "aerodrome_warning"
	ProductSurfaceForecast  = "surface_forecast"
	ProductUpperAir         = "upper_air"
)

// Warning status flags.
const (
	StatusForecast = "FCST"
	StatusObserved = "OBS"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Observation is one decoded METAR-class report.
type Observation struct {
	Station        string    `json:"station"`
	Timestamp      time.Time `json:"timestamp"`
	WindDirection  Value     `json:"wind_direction_deg"`
	WindSpeed      Value     `json:"wind_speed_kt"`
	Gust           Value     `json:"gust_kt"`
	Phenomenon     string    `json:"phenomenon,omitempty"`
	PhenomenonText string    `json:"phenomenon_text,omitempty"`
	CloudLayers    []string  `json:"cloud_layers,omitempty"`
	Temperature    Value     `json:"temperature_c"`
	Pressure       Value     `json:"pressure_hpa"`
	Raw            string    `json:"raw,omitempty"`
}

// Text returns the raw report if present, otherwise the phenomenon text.
func (o Observation) Text() string {
	if o.Raw != "" {
		return o.Raw
	}
	if o.PhenomenonText != "" {
		return o.PhenomenonText
	}
	return o.Phenomenon
}

// Warning is a windowed aerodrome warning.
type Warning struct {
	Station       string `json:"station"`
	IssueTime     string `json:"issue_time"`
	ValidFrom     string `json:"valid_from"`
	ValidTo       string `json:"valid_to"`
	WindDirection Value  `json:"wind_direction_deg"`
	// WindFrom is a 16-point compass bearing, e.g. "SW", used when
	// WindDirection is not given.
	WindFrom   string `json:"wind_from,omitempty"`
	WindSpeed  Value  `json:"wind_speed_kt"`
	Gust       string `json:"gust_kt,omitempty"` // e.g. "35KT"
	Phenomenon string `json:"phenomenon,omitempty"`
	Status     string `json:"status"` // FCST or OBS
}

// Direction resolves the forecast wind direction, falling back to WindFrom.
func (w Warning) Direction() Value {
	if !w.WindDirection.IsMissing() {
		return w.WindDirection
	}
	if deg, ok := CompassDegrees(w.WindFrom); ok {
		return Num(deg)
	}
	return Null()
}

// Observed reports whether the warning restates an observed fact.
func (w Warning) Observed() bool {
	return w.Status == StatusObserved || w.Status == "OBSD"
}

// SurfaceForecast is a per-time TAF-class surface forecast row.
type SurfaceForecast struct {
	Day           int    `json:"day"`
	Time          string `json:"time"` // HHMM, optional trailing Z
	WindDirection Value  `json:"wind_direction_deg"`
	WindSpeed     Value  `json:"wind_speed_kt"`
	Temperature   Value  `json:"temperature_c"`
	Pressure      Value  `json:"pressure_hpa"`
	AltPressure   Value  `json:"alt_pressure_hpa"` // QFE
}

// UpperAirForecast is one forecast altitude level.
type UpperAirForecast struct {
	Altitude      Value `json:"altitude_m"`
	WindDirection Value `json:"wind_direction_deg"`
	WindSpeed     Value `json:"wind_speed_kt"`
	Temperature   Value `json:"temperature_c"`
}

// SoundingLevel is one observed radiosonde level. Wind speed is in m/s.
type SoundingLevel struct {
	GeopotentialHeight Value `json:"geopotential_height_m"`
	Temperature        Value `json:"temperature_c"`
	WindSpeed          Value `json:"wind_speed_ms"`
	WindDirection      Value `json:"wind_direction_deg"`
}

// UpperAirInput bundles everything needed for an upper-air verification.
type UpperAirInput struct {
	Forecasts   []UpperAirForecast `json:"forecasts"`
	Sounding    []SoundingLevel    `json:"sounding"`
	WeatherText string             `json:"weather_text,omitempty"`
	PeriodStart time.Time          `json:"period_start"`
	PeriodEnd   time.Time          `json:"period_end"`
}

// VerificationRequest is the message consumed from the source topic and the
// body of POST /v1/verify.
type VerificationRequest struct {
	ID               string            `json:"id"`
	Product          string            `json:"product"`
	Station          string            `json:"station"`
	Observations     []Observation     `json:"observations"`
	Warnings         []Warning         `json:"warnings,omitempty"`
	SurfaceForecasts []SurfaceForecast `json:"surface_forecasts,omitempty"`
	UpperAir         *UpperAirInput    `json:"upper_air,omitempty"`
}
