package domain

import (
	"math"
	"reflect"
	"time"

	"github.com/jkaberg/obd-diag/internal/report"
	"github.com/jkaberg/obd-diag/internal/sensors"
)

// DefaultTolerance applies to sensor keys missing from Tolerances.
const DefaultTolerance = 0.5

// Tolerances is the per-key sensor jitter ignored by Changed.
var Tolerances = map[string]float64{
	"speed_kph":                1.0,
	"rpm":                      50,
	"engine_load_pct":          2.0,
	"coolant_temp_c":           1.0,
	"throttle_pos_pct":         2.0,
	"fuel_level_pct":           1.0,
	"control_module_voltage_v": 0.2,
}

// Changed reports whether cur differs from prev beyond sensor jitter. The
// timestamp and report ID never count as a change.
func Changed(prev, cur *report.DiagnosticReport) bool {
	if prev == nil && cur == nil {
		return false
	}
	if prev == nil || cur == nil {
		return true
	}

	p, c := *prev, *cur // copy
	p.Metadata.Timestamp, c.Metadata.Timestamp = time.Time{}, time.Time{}
	p.Metadata.ReportID, c.Metadata.ReportID = "", ""

	if sensorsChanged(p.Sensors, c.Sensors) {
		return true
	}
	p.Sensors, c.Sensors = nil, nil

	return !reflect.DeepEqual(p, c)
}

func sensorsChanged(prev, cur sensors.Standard) bool {
	if len(prev) != len(cur) {
		return true
	}
	for k, pv := range prev {
		cv, ok := cur[k]
		if !ok {
			return true
		}
		if (pv == nil) != (cv == nil) {
			return true
		}
		if pv == nil {
			continue
		}
		tol, ok := Tolerances[k]
		if !ok {
			tol = DefaultTolerance
		}
		if math.Abs(*pv-*cv) >= tol {
			return true
		}
	}
	return false
}
