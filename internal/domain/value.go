package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValueState describes how a decoded numeric field should be treated.
type ValueState uint8

const (
	// Missing means the field was absent, null, empty or "N/A".
	Missing ValueState = iota
	// Present means the field holds a usable number.
	Present
	// Variable is the "VRB" wind direction sentinel.
	Variable
	// Invalid means the field held text that is not a number.
	Invalid
)

// Value is a nullable numeric field decoded leniently from upstream records.
// Decoders upstream emit numbers, numeric strings, "VRB", "N/A" or null for
// the same column, so the state is kept instead of failing the whole record.
type Value struct {
	Num   float64
	State ValueState
	Raw   string
}

// Num returns a present value.
func Num(v float64) Value { return Value{Num: v, State: Present} }

// Null returns a missing value.
func Null() Value { return Value{} }

// VRB returns the variable wind direction sentinel.
func VRB() Value { return Value{State: Variable, Raw: "VRB"} }

// InvalidValue returns a value that failed to parse, keeping its raw text.
func InvalidValue(raw string) Value { return Value{State: Invalid, Raw: raw} }

// Float returns the number and true only when the value is present.
func (v Value) Float() (float64, bool) {
	if v.State != Present {
		return 0, false
	}
	return v.Num, true
}

func (v Value) IsMissing() bool  { return v.State == Missing }
func (v Value) IsVariable() bool { return v.State == Variable }
func (v Value) IsInvalid() bool  { return v.State == Invalid }

// String renders the value for reports: the number, "VRB", the raw invalid
// text, or an empty string when missing.
func (v Value) String() string {
	switch v.State {
	case Present:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Variable:
		return "VRB"
	case Invalid:
		return v.Raw
	default:
		return ""
	}
}

// ParseValue classifies a textual field.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	switch {
	case s == "", strings.EqualFold(s, "N/A"), strings.EqualFold(s, "NaN"), strings.EqualFold(s, "null"):
		return Null()
	case strings.EqualFold(s, "VRB"), strings.HasPrefix(strings.ToUpper(s), "VRB"):
		return VRB()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return InvalidValue(s)
	}
	return Num(f)
}

// UnmarshalJSON accepts a number, a string or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Null()
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ParseValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*v = InvalidValue(string(data))
		return nil //nolint:nilerr // malformed numbers are tracked per field
	}
	*v = Num(f)
	return nil
}

// MarshalJSON writes the number, "VRB", the raw invalid text, or null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.State {
	case Present:
		return json.Marshal(v.Num)
	case Variable:
		return []byte(`"VRB"`), nil
	case Invalid:
		return json.Marshal(v.Raw)
	default:
		return []byte("null"), nil
	}
}
