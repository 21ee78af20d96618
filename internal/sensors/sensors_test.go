package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	raw := Raw{
		"SPEED":                  str("64.0 kilometer_per_hour"),
		"RPM":                    str("3823.25 revolutions_per_minute"),
		"COOLANT_TEMP":           str("95 degree_Celsius"),
		"ENGINE_LOAD":            str("45.5 percent"),
		"RUN_TIME":               str("  120  "),
		"CONTROL_MODULE_VOLTAGE": nil,
		"FUEL_LEVEL":             str("None"),
		"FUEL_PRESSURE":          str("abc kilopascal"),
		"THROTTLE_POS":           str(""),
		"MAF":                    str("NaN gps"),
	}

	got := Normalize(raw)
	require.Len(t, got, len(raw))

	assert.Equal(t, &Reading{Value: 64.0, Unit: "kilometer_per_hour"}, got["SPEED"])
	assert.Equal(t, &Reading{Value: 3823.25, Unit: "revolutions_per_minute"}, got["RPM"])
	assert.Equal(t, &Reading{Value: 95, Unit: "degree_Celsius"}, got["COOLANT_TEMP"])
	assert.Equal(t, &Reading{Value: 45.5, Unit: "percent"}, got["ENGINE_LOAD"])
	assert.Equal(t, &Reading{Value: 120, Unit: ""}, got["RUN_TIME"])

	for _, name := range []string{"CONTROL_MODULE_VOLTAGE", "FUEL_LEVEL", "FUEL_PRESSURE", "THROTTLE_POS", "MAF"} {
		v, ok := got[name]
		assert.True(t, ok, name)
		assert.Nil(t, v, name)
	}
}

func TestNormalize_UnitWithSpaces(t *testing.T) {
	got := Normalize(Raw{"SPEED": str("40\tmile per hour")})
	require.NotNil(t, got["SPEED"])
	assert.Equal(t, "mile per hour", got["SPEED"].Unit)
}

func TestUnparsed(t *testing.T) {
	raw := Raw{
		"SPEED":        str("12 kph"),
		"RPM":          str("fast"),
		"FUEL_LEVEL":   str("None"),
		"COOLANT_TEMP": nil,
	}
	assert.Equal(t, []string{"RPM"}, Unparsed(raw, Normalize(raw)))
}

func TestStandardize(t *testing.T) {
	normalized := Normalized{
		"SPEED":                  {Value: 64.0, Unit: "kilometer_per_hour"},
		"RPM":                    {Value: 3823.254, Unit: "revolutions_per_minute"},
		"COOLANT_TEMP":           {Value: 203, Unit: "degree_Fahrenheit"},
		"FUEL_PRESSURE":          {Value: 50, Unit: "psi"},
		"INTAKE_PRESSURE":        {Value: 101.33, Unit: "kilopascal"},
		"CONTROL_MODULE_VOLTAGE": {Value: 13.456, Unit: "volt"},
		"ENGINE_LOAD":            {Value: 45.56, Unit: "percent"},
		"THROTTLE_POS":           {Value: 12.34, Unit: "percent"},
		"FUEL_LEVEL":             {Value: 80.04, Unit: "percent"},
		"TIMING_ADVANCE":         {Value: 10.556, Unit: "degree"},
	}

	got := Standardize(normalized)
	expect := map[string]float64{
		"speed_kph":                64.0,
		"rpm":                      3823.25,
		"coolant_temp_c":           95.0,
		"fuel_pressure_kpa":        344.7,
		"intake_pressure_kpa":      101.3,
		"control_module_voltage_v": 13.46,
		"engine_load_pct":          45.6,
		"throttle_pos_pct":         12.3,
		"fuel_level_pct":           80.0,
		"timing_advance":           10.56,
	}
	require.Len(t, got, len(expect))
	for k, want := range expect {
		v, ok := got.Get(k)
		require.True(t, ok, k)
		assert.InDelta(t, want, v, 1e-9, k)
	}
}

func TestStandardize_Absent(t *testing.T) {
	got := Standardize(Normalized{
		"SPEED":                  nil,
		"CONTROL_MODULE_VOLTAGE": nil,
		"SOME_CUSTOM_PID":        nil,
	})
	for _, k := range []string{"speed_kph", "control_module_voltage_v", "some_custom_pid"} {
		v, ok := got[k]
		assert.True(t, ok, k)
		assert.Nil(t, v, k)
	}
}

func TestStandardize_OverflowIsAbsent(t *testing.T) {
	tests := []struct {
		name, raw, key string
	}{
		{"SPEED", "1e307 kilometer_per_hour", "speed_kph"},
		{"SPEED", "1.7e308 mile_per_hour", "speed_kph"},
		{"COOLANT_TEMP", "1.7e308 degree_Fahrenheit", "coolant_temp_c"},
		{"RPM", "1.7e308 revolutions_per_minute", "rpm"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Standardize(Normalize(Raw{tt.name: str(tt.raw)}))
			require.Contains(t, got, tt.key)
			assert.Nil(t, got[tt.key])
		})
	}
}

func TestStandardize_PresentWinsOnKeyCollision(t *testing.T) {
	for i := 0; i < 50; i++ {
		got := Standardize(Normalize(Raw{
			"SPEED": str("64 kph"),
			"speed": nil,
			"Speed": str("1e307 kph"),
		}))
		v, ok := got.Get("speed_kph")
		require.True(t, ok)
		assert.Equal(t, 64.0, v)
	}
}

func TestRoundTrip(t *testing.T) {
	got := Standardize(Normalize(Raw{"SPEED": str("64.0 kilometer_per_hour")}))
	v, ok := got.Get("speed_kph")
	require.True(t, ok)
	assert.Equal(t, 64.0, v)

	got = Standardize(Normalize(Raw{"SPEED": str("40.0 mile_per_hour")}))
	v, ok = got.Get("speed_kph")
	require.True(t, ok)
	assert.InDelta(t, 64.37, v, 1e-9)
}

func TestRoundTrip_AbsentPropagates(t *testing.T) {
	got := Standardize(Normalize(Raw{
		"COOLANT_TEMP": str("hot degree_Celsius"),
		"RPM":          nil,
	}))
	_, ok := got.Get("coolant_temp_c")
	assert.False(t, ok)
	_, ok = got.Get("rpm")
	assert.False(t, ok)
	assert.Contains(t, got, "coolant_temp_c")
	assert.Contains(t, got, "rpm")
}

func TestStandardKeyAgreesWithConversions(t *testing.T) {
	for _, d := range AllPIDs {
		key, _ := convert(d.Name, Reading{Value: 1})
		assert.Equal(t, d.StandardKey, key, d.Name)
	}
}

func TestLookupPID(t *testing.T) {
	assert.Equal(t, PIDSpeed, LookupPID("SPEED"))
	assert.Equal(t, PIDCoolantTemp, LookupPID(" coolant_temp "))
	assert.Equal(t, PIDUnsupported, LookupPID("WARP_DRIVE"))
	assert.Equal(t, "UNSUPPORTED", PIDUnsupported.String())
	assert.Equal(t, "RPM", PIDRPM.String())
	assert.Nil(t, GetPIDByID(PIDUnsupported))
	assert.Equal(t, "warp_drive", StandardKey("WARP_DRIVE"))
}

func TestParseMonitored(t *testing.T) {
	list, unknown := ParseMonitored("SPEED, rpm:1, FUEL_PRESSURE:0, WARP_DRIVE")
	require.Len(t, list, 3)
	assert.Equal(t, []string{"WARP_DRIVE"}, unknown)
	assert.Equal(t, MonitoredPID{ID: PIDRPM, Name: "RPM", Publish: true}, list[1])
	assert.False(t, list[2].Publish)

	assert.Equal(t, []string{"SPEED", "RPM", "FUEL_PRESSURE"}, PollNames(list))
	assert.Equal(t, []string{"speed_kph", "rpm"}, PublishedKeys(list))
}

func TestParseMonitored_DefaultsWhenEmpty(t *testing.T) {
	list, unknown := ParseMonitored("")
	assert.Empty(t, unknown)
	assert.Equal(t, DefaultPIDs(), PollNames(list))
}

func TestValidateStandard(t *testing.T) {
	warnings := ValidateStandard(Standard{
		"speed_kph":       Float(350),
		"coolant_temp_c":  Float(92),
		"engine_load_pct": Float(-3),
		"rpm":             nil,
	})
	assert.Equal(t, []string{
		"engine_load_pct out of reasonable range: -3.0%",
		"speed_kph out of reasonable range: 350.0km/h",
	}, warnings)
	assert.Empty(t, ValidateStandard(nil))
}

func TestPresent(t *testing.T) {
	assert.Equal(t, []string{"rpm", "speed_kph"}, Present(Standard{
		"speed_kph": Float(1),
		"rpm":       Float(2),
		"maf":       nil,
	}))
}
