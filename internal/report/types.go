package report

import (
	"time"

	"github.com/jkaberg/obd-diag/internal/dtc"
	"github.com/jkaberg/obd-diag/internal/sensors"
	"github.com/jkaberg/obd-diag/internal/state"
)

// Defaults for the report metadata block.
const (
	DefaultVersion = "1.0"
	DefaultSystem  = "Hybrid Vehicle Diagnostic Intelligence System"
)

// HealthStatus is the aggregate verdict over faults and vehicle state.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "HEALTHY"
	HealthAttention HealthStatus = "ATTENTION"
	HealthWarning   HealthStatus = "WARNING"
	HealthCritical  HealthStatus = "CRITICAL"
)

// Metadata describes the report itself.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	System    string    `json:"system"`
	ReportID  string    `json:"report_id,omitempty"`
}

// ConnectionInfo is passed through unchanged from the vehicle connection.
type ConnectionInfo struct {
	Port              string `json:"port"`
	Protocol          string `json:"protocol"`
	Status            string `json:"status"`
	SupportedCommands int    `json:"supported_commands"`
}

// OrUnknown fills empty text fields with "Unknown".
func (c ConnectionInfo) OrUnknown() ConnectionInfo {
	for _, f := range []*string{&c.Port, &c.Protocol, &c.Status} {
		if *f == "" {
			*f = "Unknown"
		}
	}
	return c
}

// DTCSection holds the classified fault codes and their summary.
type DTCSection struct {
	Count   int                   `json:"count"`
	Codes   []dtc.ClassifiedFault `json:"codes"`
	Summary dtc.Summary           `json:"summary"`
}

// Analysis is the high-level verdict for the reasoning consumer.
type Analysis struct {
	HealthStatus            HealthStatus `json:"health_status"`
	Warnings                []string     `json:"warnings"`
	Drivable                bool         `json:"drivable"`
	ImmediateActionRequired bool         `json:"immediate_action_required"`
	Recommendation          string       `json:"recommendation"`
}

// DiagnosticReport is the complete output of one collection cycle.
type DiagnosticReport struct {
	Metadata     Metadata           `json:"metadata"`
	Connection   ConnectionInfo     `json:"connection"`
	DTCs         DTCSection         `json:"dtcs"`
	Sensors      sensors.Standard   `json:"sensors"`
	VehicleState state.VehicleState `json:"vehicle_state"`
	Analysis     Analysis           `json:"analysis"`
}
