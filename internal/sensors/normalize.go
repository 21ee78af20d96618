package sensors

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// NoValue is the literal marker some OBD bridges send instead of a reading.
const NoValue = "None"

// Raw maps a sensor name to its textual reading such as "64.0 kilometer_per_hour".
// A nil value means the vehicle returned nothing.
type Raw map[string]*string

// Reading is a parsed numeric value with the unit token it arrived with.
type Reading struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Normalized maps a sensor name to its parsed reading; nil means absent.
type Normalized map[string]*Reading

// Normalize parses every raw reading. Absent readings, the NoValue marker and
// readings whose numeric part does not parse all become nil. It never fails.
func Normalize(raw Raw) Normalized {
	out := make(Normalized, len(raw))
	for name, v := range raw {
		if v == nil {
			out[name] = nil
			continue
		}
		out[name] = parseReading(*v)
	}
	return out
}

// parseReading splits "64.0 kilometer_per_hour" at the first whitespace into
// a value and a unit.
func parseReading(s string) *Reading {
	s = strings.TrimSpace(s)
	if s == "" || s == NoValue {
		return nil
	}

	num, unit := s, ""
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		num, unit = s[:i], strings.TrimSpace(s[i:])
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &Reading{Value: v, Unit: unit}
}

// Unparsed lists the sensors that carried a reading which Normalize could not
// parse. Genuinely absent readings are not included.
func Unparsed(raw Raw, normalized Normalized) []string {
	var names []string
	for name, v := range raw {
		if v == nil || strings.TrimSpace(*v) == NoValue {
			continue
		}
		if normalized[name] == nil {
			names = append(names, name)
		}
	}
	return names
}
