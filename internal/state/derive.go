package state

import "github.com/jkaberg/obd-diag/internal/sensors"

// input is a sensor value as seen by the thresholds: ok is false only when
// the value is absent and the policy does not substitute 0.
type input struct {
	v  float64
	ok bool
}

func read(std sensors.Standard, key string, p Policy) input {
	v, ok := std.Get(key)
	if !ok && p.TreatAbsentAsZero {
		return input{0, true}
	}
	return input{v, ok}
}

func (in input) gt(x float64) bool { return in.ok && in.v > x }
func (in input) lt(x float64) bool { return in.ok && in.v < x }

// within reports lo <= v < hi.
func (in input) within(lo, hi float64) bool { return in.ok && in.v >= lo && in.v < hi }

// Derive infers the vehicle state using DefaultPolicy.
func Derive(std sensors.Standard) VehicleState {
	return DeriveWithPolicy(std, DefaultPolicy)
}

// DeriveWithPolicy infers the vehicle state from standardized sensors.
func DeriveWithPolicy(std sensors.Standard, p Policy) VehicleState {
	speed := read(std, KeySpeed, p)
	rpm := read(std, KeyRPM, p)
	load := read(std, KeyLoad, p)
	coolant := read(std, KeyCoolant, p)
	voltage := read(std, KeyVoltage, p)

	s := VehicleState{
		VehicleMoving:  speed.gt(MovingSpeedKph),
		VehicleStopped: speed.lt(StoppedSpeedKph),

		EngineRunning: rpm.gt(RunningRPM),
		EngineOff:     rpm.lt(OffRPM),
		EngineIdle:    rpm.gt(IdleMinRPM) && rpm.lt(IdleMaxRPM) && speed.lt(MovingSpeedKph),
		EngineHighRPM: rpm.gt(HighRPM),

		EngineCold:        coolant.lt(ColdCoolantC),
		EngineWarm:        coolant.within(ColdCoolantC, NormalCoolantC),
		EngineNormalTemp:  coolant.ok && coolant.v >= NormalCoolantC && coolant.v <= OverheatCoolantC,
		EngineOverheating: coolant.gt(OverheatCoolantC),

		LowLoad:      load.lt(LowLoadPct),
		ModerateLoad: load.within(LowLoadPct, HighLoadPct),
		HighLoad:     load.ok && load.v >= HighLoadPct,
	}

	// Only a positive voltage says anything about the electrical system;
	// without one we assume a plain 12 V vehicle.
	if voltage.gt(0) {
		s.HighVoltagePresent = voltage.v > HighVoltageV
		s.LowVoltageSystem = voltage.v < LowVoltageV
	} else {
		s.HighVoltagePresent = false
		s.LowVoltageSystem = voltage.ok
	}

	s.Mode = resolveMode(s, speed, rpm)
	return s
}

// modeRule maps a matching state to a mode; rules are evaluated in order.
type modeRule struct {
	match func(s VehicleState, speed, rpm input) bool
	mode  Mode
}

var modeRules = []modeRule{
	{func(s VehicleState, _, _ input) bool { return s.VehicleStopped && s.EngineRunning }, ModeIdle},
	{func(s VehicleState, _, _ input) bool { return s.VehicleMoving && s.LowLoad }, ModeCruising},
	{func(s VehicleState, _, _ input) bool { return s.VehicleMoving && s.HighLoad }, ModeAccelerating},
	{func(_ VehicleState, speed, rpm input) bool { return speed.lt(StoppedSpeedKph) && rpm.lt(OffRPM) }, ModeOff},
}

func resolveMode(s VehicleState, speed, rpm input) Mode {
	for _, r := range modeRules {
		if r.match(s, speed, rpm) {
			return r.mode
		}
	}
	return ModeNormal
}
