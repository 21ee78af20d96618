package pipeline

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/jkaberg/obd-diag/internal/collector"
	"github.com/jkaberg/obd-diag/internal/dtc"
	"github.com/jkaberg/obd-diag/internal/report"
	"github.com/jkaberg/obd-diag/internal/sensors"
	"github.com/jkaberg/obd-diag/internal/state"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestProcessor(policy state.Policy) (*Processor, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	opts := DefaultOptions()
	opts.Policy = policy
	opts.Now = func() time.Time { return fixedNow }
	opts.NewID = func() string { return "test-id" }
	return NewProcessor(opts, logger), &buf
}

func text(s string) *string { return &s }

func TestProcess_OverheatingHybridFault(t *testing.T) {
	p, _ := newTestProcessor(state.DefaultPolicy)

	r := p.Process(&collector.Snapshot{
		DTCs: []dtc.RawFault{{Code: "P0A80", Description: "Replace Hybrid Battery Pack"}},
		Sensors: sensors.Raw{
			"COOLANT_TEMP": text("115 degree_Celsius"),
			"SPEED":        text("0 kph"),
			"RPM":          text("800 revolutions_per_minute"),
		},
	})

	assert.Equal(t, report.HealthCritical, r.Analysis.HealthStatus)
	assert.False(t, r.Analysis.Drivable)
	assert.True(t, r.Analysis.ImmediateActionRequired)
	assert.Equal(t, report.RecommendOverheating, r.Analysis.Recommendation)
	assert.Equal(t, fixedNow, r.Metadata.Timestamp)
	assert.Equal(t, "test-id", r.Metadata.ReportID)
	assert.Equal(t, report.DefaultVersion, r.Metadata.Version)
	assert.Equal(t, "Unknown", r.Connection.Status)

	require.Len(t, r.DTCs.Codes, 1)
	assert.True(t, r.DTCs.Codes[0].HybridRelated)
	assert.Equal(t, dtc.SeverityCritical, r.DTCs.Codes[0].Severity)
	require.NoError(t, report.Validate(&r))
}

func TestProcess_IdleHealthy(t *testing.T) {
	p, _ := newTestProcessor(state.DefaultPolicy)
	ts := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	r := p.Process(&collector.Snapshot{
		Timestamp: ts,
		Sensors: sensors.Raw{
			"SPEED":        text("0 kph"),
			"RPM":          text("750 rpm"),
			"COOLANT_TEMP": text("90 degC"),
			"FUEL_LEVEL":   nil,
		},
	})

	assert.Equal(t, report.HealthHealthy, r.Analysis.HealthStatus)
	assert.Equal(t, state.ModeIdle, r.VehicleState.Mode)
	assert.Equal(t, ts, r.Metadata.Timestamp)
	assert.Contains(t, r.Sensors, "fuel_level_pct")
	assert.Nil(t, r.Sensors["fuel_level_pct"])
}

func TestProcess_MilesPerHour(t *testing.T) {
	p, _ := newTestProcessor(state.DefaultPolicy)
	r := p.Process(&collector.Snapshot{Sensors: sensors.Raw{"SPEED": text("40 mile_per_hour")}})

	v, ok := r.Sensors.Get("speed_kph")
	require.True(t, ok)
	assert.InDelta(t, 64.37, v, 0.01)
	assert.True(t, r.VehicleState.VehicleMoving)
}

func TestProcess_SoftWarningsLogged(t *testing.T) {
	p, buf := newTestProcessor(state.DefaultPolicy)
	r := p.Process(&collector.Snapshot{Sensors: sensors.Raw{
		"RPM":   text("garbage"),
		"SPEED": text("400 kph"),
	}})

	assert.Nil(t, r.Sensors["rpm"])
	assert.Contains(t, buf.String(), "Unparseable sensor readings")
	assert.Contains(t, buf.String(), "speed_kph out of reasonable range")
}

func TestProcess_NilSnapshotStrictPolicy(t *testing.T) {
	p, _ := newTestProcessor(state.Policy{TreatAbsentAsZero: false})
	r := p.Process(nil)

	assert.Equal(t, state.VehicleState{Mode: state.ModeNormal}, r.VehicleState)
	assert.Equal(t, report.HealthHealthy, r.Analysis.HealthStatus)
	assert.Empty(t, r.DTCs.Codes)
	require.NoError(t, report.Validate(&r))

	data, err := json.Marshal(r)
	require.NoError(t, err)
	require.NoError(t, report.ValidateJSON(data))
}

func TestNewProcessor_FillsDefaults(t *testing.T) {
	p := NewProcessor(Options{Policy: state.DefaultPolicy}, logrus.New())
	r := p.Process(&collector.Snapshot{})

	assert.Equal(t, report.DefaultSystem, r.Metadata.System)
	assert.False(t, r.Metadata.Timestamp.IsZero())
	assert.Len(t, r.Metadata.ReportID, 36)
}
