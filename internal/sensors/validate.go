package sensors

import (
	"fmt"
	"sort"
)

// plausibleRange bounds a standard key to physically reasonable values.
type plausibleRange struct {
	min, max float64
	unit     string
}

var plausibleRanges = map[string]plausibleRange{
	"speed_kph":                {0, 300, "km/h"},
	"rpm":                      {0, 10000, "rpm"},
	"coolant_temp_c":           {-40, 150, "°C"},
	"intake_temp_c":            {-40, 120, "°C"},
	"oil_temp_c":               {-40, 180, "°C"},
	"engine_load_pct":          {0, 100, "%"},
	"throttle_pos_pct":         {0, 100, "%"},
	"fuel_level_pct":           {0, 100, "%"},
	"control_module_voltage_v": {0, 1000, "V"},
}

// ValidateStandard performs basic plausibility checks and returns one warning
// per out-of-range value. Absent values are not reported. Warnings are sorted
// by key.
func ValidateStandard(std Standard) []string {
	keys := make([]string, 0, len(plausibleRanges))
	for k := range plausibleRanges {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var warnings []string
	for _, k := range keys {
		v, ok := std.Get(k)
		if !ok {
			continue
		}
		r := plausibleRanges[k]
		if v < r.min || v > r.max {
			warnings = append(warnings, fmt.Sprintf("%s out of reasonable range: %.1f%s", k, v, r.unit))
		}
	}
	return warnings
}

// Present returns the standard keys that carry a value.
func Present(std Standard) []string {
	var keys []string
	for k, v := range std {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
