// Package state derives a discrete vehicle operating state from standardized
// sensor values.
package state

// Mode is the inferred driving mode.
type Mode string

const (
	ModeIdle         Mode = "idle"
	ModeCruising     Mode = "cruising"
	ModeAccelerating Mode = "accelerating"
	ModeOff          Mode = "off"
	ModeNormal       Mode = "normal"
)

// Standard keys consumed by Derive.
const (
	KeySpeed   = "speed_kph"
	KeyRPM     = "rpm"
	KeyLoad    = "engine_load_pct"
	KeyCoolant = "coolant_temp_c"
	KeyVoltage = "control_module_voltage_v"
)

// Thresholds. Comparisons in Derive use these exact boundaries.
const (
	MovingSpeedKph   = 5.0
	StoppedSpeedKph  = 1.0
	RunningRPM       = 300.0
	OffRPM           = 100.0
	IdleMinRPM       = 500.0
	IdleMaxRPM       = 1000.0
	HighRPM          = 4000.0
	ColdCoolantC     = 60.0
	NormalCoolantC   = 90.0
	OverheatCoolantC = 110.0
	LowLoadPct       = 30.0
	HighLoadPct      = 70.0
	HighVoltageV     = 100.0
	LowVoltageV      = 20.0
)

// Policy controls how absent sensor values take part in thresholding.
type Policy struct {
	// TreatAbsentAsZero evaluates an absent value as 0. With it disabled a
	// flag whose input is absent is false.
	TreatAbsentAsZero bool
}

// DefaultPolicy treats absent values as 0. "No data" therefore reads as
// "value is zero", so a missing RPM reports engine_off.
var DefaultPolicy = Policy{TreatAbsentAsZero: true}

// VehicleState is the set of flags inferred from one sensor snapshot.
type VehicleState struct {
	VehicleMoving      bool `json:"vehicle_moving"`
	VehicleStopped     bool `json:"vehicle_stopped"`
	EngineRunning      bool `json:"engine_running"`
	EngineOff          bool `json:"engine_off"`
	EngineIdle         bool `json:"engine_idle"`
	EngineHighRPM      bool `json:"engine_high_rpm"`
	EngineCold         bool `json:"engine_cold"`
	EngineWarm         bool `json:"engine_warm"`
	EngineNormalTemp   bool `json:"engine_normal_temp"`
	EngineOverheating  bool `json:"engine_overheating"`
	LowLoad            bool `json:"low_load"`
	ModerateLoad       bool `json:"moderate_load"`
	HighLoad           bool `json:"high_load"`
	HighVoltagePresent bool `json:"high_voltage_present"`
	LowVoltageSystem   bool `json:"low_voltage_system"`
	Mode               Mode `json:"mode"`
}
