package sensors

import "strings"

// PID identifies an OBD-II sensor parameter we know how to query and convert.
type PID int

const (
	PIDUnsupported PID = iota
	PIDSpeed
	PIDRPM
	PIDEngineLoad
	PIDCoolantTemp
	PIDThrottlePos
	PIDFuelLevel
	PIDFuelPressure
	PIDHybridBatteryRemaining
	PIDControlModuleVoltage
	PIDIntakeTemp
	PIDAmbientAirTemp
	PIDOilTemp
	PIDIntakePressure
	PIDBarometricPressure
	PIDTimingAdvance
	PIDMAF
	PIDRunTime
)

// PIDDefinition provides metadata for a sensor parameter.
type PIDDefinition struct {
	ID          PID
	Name        string // OBD command name, e.g. "COOLANT_TEMP"
	StandardKey string // key in the standardized sensor map
	EnglishName string
	Unit        string // standard unit after conversion
	DeviceClass string // Home Assistant device class, "" if none
}

// AllPIDs defines the metadata for all supported sensors. StandardKey must
// agree with the key the conversion rules produce for Name; absent readings
// are reported under it.
var AllPIDs = []PIDDefinition{
	{PIDSpeed, "SPEED", "speed_kph", "Vehicle Speed", "km/h", "speed"},
	{PIDRPM, "RPM", "rpm", "Engine RPM", "rpm", ""},
	{PIDEngineLoad, "ENGINE_LOAD", "engine_load_pct", "Engine Load", "%", ""},
	{PIDCoolantTemp, "COOLANT_TEMP", "coolant_temp_c", "Coolant Temperature", "°C", "temperature"},
	{PIDThrottlePos, "THROTTLE_POS", "throttle_pos_pct", "Throttle Position", "%", ""},
	{PIDFuelLevel, "FUEL_LEVEL", "fuel_level_pct", "Fuel Level", "%", ""},
	{PIDFuelPressure, "FUEL_PRESSURE", "fuel_pressure_kpa", "Fuel Pressure", "kPa", "pressure"},
	{PIDHybridBatteryRemaining, "HYBRID_BATTERY_REMAINING", "hybrid_battery_remaining", "Hybrid Battery Remaining", "%", "battery"},
	{PIDControlModuleVoltage, "CONTROL_MODULE_VOLTAGE", "control_module_voltage_v", "Control Module Voltage", "V", "voltage"},
	{PIDIntakeTemp, "INTAKE_TEMP", "intake_temp_c", "Intake Air Temperature", "°C", "temperature"},
	{PIDAmbientAirTemp, "AMBIANT_AIR_TEMP", "ambiant_air_temp_c", "Ambient Air Temperature", "°C", "temperature"},
	{PIDOilTemp, "OIL_TEMP", "oil_temp_c", "Engine Oil Temperature", "°C", "temperature"},
	{PIDIntakePressure, "INTAKE_PRESSURE", "intake_pressure_kpa", "Intake Manifold Pressure", "kPa", "pressure"},
	{PIDBarometricPressure, "BAROMETRIC_PRESSURE", "barometric_pressure_kpa", "Barometric Pressure", "kPa", "pressure"},
	{PIDTimingAdvance, "TIMING_ADVANCE", "timing_advance", "Timing Advance", "°", ""},
	{PIDMAF, "MAF", "maf", "Mass Air Flow", "g/s", ""},
	{PIDRunTime, "RUN_TIME", "run_time", "Engine Run Time", "s", "duration"},
}

var pidByName = func() map[string]PID {
	m := make(map[string]PID, len(AllPIDs))
	for _, d := range AllPIDs {
		m[d.Name] = d.ID
	}
	return m
}()

// LookupPID resolves a sensor name (case-insensitive) to its PID.
// Unknown names resolve to PIDUnsupported.
func LookupPID(name string) PID {
	if id, ok := pidByName[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return id
	}
	return PIDUnsupported
}

// GetPIDByID returns a sensor definition by its ID, or nil for PIDUnsupported.
func GetPIDByID(id PID) *PIDDefinition {
	for _, d := range AllPIDs {
		if d.ID == id {
			return &d
		}
	}
	return nil
}

func (p PID) String() string {
	if d := GetPIDByID(p); d != nil {
		return d.Name
	}
	return "UNSUPPORTED"
}

// StandardKey returns the standardized key for a sensor name. Names missing
// from AllPIDs fall back to the lowercased name.
func StandardKey(name string) string {
	if d := GetPIDByID(LookupPID(name)); d != nil {
		return d.StandardKey
	}
	return strings.ToLower(name)
}

// DefaultPIDs returns the sensor list collected when none is configured.
func DefaultPIDs() []string {
	return []string{
		// Basic engine parameters
		"SPEED",
		"RPM",
		"ENGINE_LOAD",
		"COOLANT_TEMP",
		"THROTTLE_POS",
		// Fuel system
		"FUEL_LEVEL",
		"FUEL_PRESSURE",
		// Hybrid specific, not available on every vehicle
		"HYBRID_BATTERY_REMAINING",
		"CONTROL_MODULE_VOLTAGE",
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
