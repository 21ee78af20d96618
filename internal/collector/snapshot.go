// Package collector fetches raw diagnostic snapshots from the vehicle side:
// an HTTP OBD bridge while running, or a captured JSON file offline.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jkaberg/obd-diag/internal/dtc"
	"github.com/jkaberg/obd-diag/internal/report"
	"github.com/jkaberg/obd-diag/internal/sensors"
)

// Source produces one snapshot per call.
type Source interface {
	Collect(ctx context.Context) (*Snapshot, error)
}

// Snapshot is everything read from the vehicle in one cycle.
type Snapshot struct {
	Timestamp  time.Time             `json:"timestamp"`
	DTCs       []dtc.RawFault        `json:"dtcs"`
	Sensors    sensors.Raw           `json:"sensors"`
	Connection report.ConnectionInfo `json:"connection_info"`
}

// timestampLayouts are tried in order; bridges written in other languages
// often omit the zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON tolerates zone-less timestamps and numeric sensor values.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var wire struct {
		Timestamp  string                     `json:"timestamp"`
		DTCs       []dtc.RawFault             `json:"dtcs"`
		Sensors    map[string]json.RawMessage `json:"sensors"`
		Connection report.ConnectionInfo      `json:"connection_info"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}

	ts, err := parseTimestamp(wire.Timestamp)
	if err != nil {
		return err
	}

	raw := make(sensors.Raw, len(wire.Sensors))
	for name, v := range wire.Sensors {
		raw[name] = sensorText(v)
	}

	*s = Snapshot{
		Timestamp:  ts,
		DTCs:       wire.DTCs,
		Sensors:    raw,
		Connection: wire.Connection,
	}
	return nil
}

func parseTimestamp(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", v)
}

// sensorText returns the reading as text: strings verbatim, numbers in their
// JSON form, null and anything else as absent.
func sensorText(v json.RawMessage) *string {
	if trimmed := bytes.TrimSpace(v); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return &s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		text := strings.TrimSpace(n.String())
		return &text
	}
	return nil
}

// Decode parses a snapshot document and fills connection defaults.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	s.Connection = s.Connection.OrUnknown()
	return &s, nil
}
