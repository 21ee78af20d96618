// Package sensors turns raw OBD-II readings into numeric values in standard
// units (km/h, °C, kPa, V, %).
package sensors

import (
	"math"
	"strings"
)

const (
	mphToKph = 1.60934
	psiToKpa = 6.89476
)

// Standard maps a standard key such as "speed_kph" to its value; nil means
// the reading was absent.
type Standard map[string]*float64

// Get returns the value for key and whether it was present.
func (s Standard) Get(key string) (float64, bool) {
	v, ok := s[key]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// conversion turns one reading into its standard key and value. name is the
// sensor name upper-cased; unit is lower-cased.
type conversion struct {
	match   func(name string) bool
	convert func(name string, v float64, unit string) (string, float64)
}

func named(n string) func(string) bool {
	return func(name string) bool { return name == n }
}

func containsAny(parts ...string) func(string) bool {
	return func(name string) bool {
		for _, p := range parts {
			if strings.Contains(name, p) {
				return true
			}
		}
		return false
	}
}

// conversions is evaluated in order; the first match wins.
var conversions = []conversion{
	{named("SPEED"), func(_ string, v float64, unit string) (string, float64) {
		if strings.Contains(unit, "mile") {
			v *= mphToKph
		}
		return "speed_kph", round(v, 2)
	}},
	{named("RPM"), func(_ string, v float64, _ string) (string, float64) {
		return "rpm", round(v, 2)
	}},
	{containsAny("TEMP"), func(name string, v float64, unit string) (string, float64) {
		if strings.Contains(unit, "fahrenheit") {
			v = (v - 32) * 5 / 9
		}
		return strings.ReplaceAll(strings.ToLower(name), "_temp", "_temp_c"), round(v, 1)
	}},
	{containsAny("PRESSURE"), func(name string, v float64, unit string) (string, float64) {
		if strings.Contains(unit, "psi") {
			v *= psiToKpa
		}
		return strings.ToLower(name) + "_kpa", round(v, 1)
	}},
	{containsAny("VOLTAGE"), func(name string, v float64, _ string) (string, float64) {
		return strings.ToLower(name) + "_v", round(v, 2)
	}},
	{containsAny("LOAD", "LEVEL", "POS"), func(name string, v float64, _ string) (string, float64) {
		return strings.ToLower(name) + "_pct", round(v, 1)
	}},
}

// Standardize converts normalized readings into standard units under
// standard keys. Absent readings stay absent (nil), keyed via StandardKey.
// Conversions that overflow are absent too. When names collide on one key,
// a present value wins over an absent one.
func Standardize(normalized Normalized) Standard {
	out := make(Standard, len(normalized))
	for name, r := range normalized {
		if r == nil {
			key := StandardKey(name)
			if _, seen := out[key]; !seen {
				out[key] = nil
			}
			continue
		}
		key, v := convert(name, *r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if _, seen := out[key]; !seen {
				out[key] = nil
			}
			continue
		}
		out[key] = &v
	}
	return out
}

func convert(name string, r Reading) (string, float64) {
	upper := strings.ToUpper(name)
	unit := strings.ToLower(r.Unit)
	for _, c := range conversions {
		if c.match(upper) {
			return c.convert(upper, r.Value, unit)
		}
	}
	return strings.ToLower(name), round(r.Value, 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
