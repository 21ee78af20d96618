package transmission

import (
	"fmt"

	"github.com/jkaberg/obd-diag/internal/sensors"
)

// Home Assistant component types.
const (
	ComponentSensor       = "sensor"
	ComponentBinarySensor = "binary_sensor"
)

// Entity describes one Home Assistant entity read from the state payload.
// Key is both the state payload key and the discovery object ID.
type Entity struct {
	Key         string
	Name        string
	Component   string
	DeviceClass string
	Unit        string
	Icon        string
	StateClass  string
	Category    string
}

func (e Entity) valueTemplate() string {
	if e.Component == ComponentBinarySensor {
		return fmt.Sprintf("{{ 'ON' if value_json.%s else 'OFF' }}", e.Key)
	}
	return fmt.Sprintf("{{ value_json.%s }}", e.Key)
}

// AnalysisEntities are always exposed. Edit this slice to add or remove
// analysis entities; no other code changes are required.
var AnalysisEntities = []Entity{
	{Key: "health_status", Name: "Health Status", Component: ComponentSensor, Icon: "mdi:car-wrench"},
	{Key: "drivable", Name: "Drivable", Component: ComponentBinarySensor, Icon: "mdi:car-check"},
	{Key: "immediate_action_required", Name: "Immediate Action Required", Component: ComponentBinarySensor, DeviceClass: "problem"},
	{Key: "recommendation", Name: "Recommendation", Component: ComponentSensor, Icon: "mdi:message-alert", Category: "diagnostic"},
	{Key: "warnings", Name: "Warnings", Component: ComponentSensor, Icon: "mdi:alert", Category: "diagnostic"},
	{Key: "mode", Name: "Operating Mode", Component: ComponentSensor, Icon: "mdi:car-cruise-control"},
	{Key: "engine_overheating", Name: "Engine Overheating", Component: ComponentBinarySensor, DeviceClass: "heat"},
	{Key: "high_voltage_present", Name: "High Voltage System", Component: ComponentBinarySensor, Icon: "mdi:flash"},
	{Key: "dtc_count", Name: "Fault Codes", Component: ComponentSensor, Icon: "mdi:engine-outline", StateClass: "measurement"},
	{Key: "dtc_codes", Name: "Active Fault Codes", Component: ComponentSensor, Icon: "mdi:format-list-bulleted", Category: "diagnostic"},
	{Key: "safety_critical_count", Name: "Safety-Critical Faults", Component: ComponentSensor, Icon: "mdi:alert-octagon", StateClass: "measurement"},
}

// Entities returns the analysis entities followed by one sensor entity per
// published monitored PID.
func Entities(monitored []sensors.MonitoredPID) []Entity {
	out := make([]Entity, 0, len(AnalysisEntities)+len(monitored))
	out = append(out, AnalysisEntities...)

	for _, m := range monitored {
		if !m.Publish {
			continue
		}
		def := sensors.GetPIDByID(m.ID)
		if def == nil {
			continue
		}
		out = append(out, Entity{
			Key:         def.StandardKey,
			Name:        def.EnglishName,
			Component:   ComponentSensor,
			DeviceClass: def.DeviceClass,
			Unit:        def.Unit,
			StateClass:  "measurement",
		})
	}
	return out
}
