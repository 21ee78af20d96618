// Package report combines classified faults, standardized sensors and the
// derived vehicle state into one DiagnosticReport with a health verdict.
package report

import (
	"fmt"

	"github.com/jkaberg/obd-diag/internal/dtc"
	"github.com/jkaberg/obd-diag/internal/sensors"
	"github.com/jkaberg/obd-diag/internal/state"
)

// Recommendation texts.
const (
	RecommendOverheating = "STOP IMMEDIATELY: Engine overheating. Do not continue driving. Seek immediate service."
	RecommendSafetyFmt   = "STOP IMMEDIATELY: Safety-critical fault detected (%s). Do not drive. Contact qualified technician."
	RecommendCritical    = "CRITICAL: Stop driving and seek immediate professional diagnosis."
	RecommendWarning     = "Schedule service soon. Critical fault codes detected. Avoid extended driving."
	RecommendAttention   = "Minor faults detected. Schedule service at your convenience."
	RecommendHealthy     = "Vehicle operating normally. No immediate action required."
)

// Assemble builds a report. Inputs are copied where needed so the report does
// not share slices with the caller.
func Assemble(
	faults []dtc.ClassifiedFault,
	std sensors.Standard,
	vs state.VehicleState,
	conn ConnectionInfo,
	meta Metadata,
) DiagnosticReport {
	codes := make([]dtc.ClassifiedFault, len(faults))
	copy(codes, faults)

	sensorsOut := make(sensors.Standard, len(std))
	for k, v := range std {
		sensorsOut[k] = v
	}

	return DiagnosticReport{
		Metadata:   meta,
		Connection: conn,
		DTCs: DTCSection{
			Count:   len(codes),
			Codes:   codes,
			Summary: dtc.Summarize(codes),
		},
		Sensors:      sensorsOut,
		VehicleState: vs,
		Analysis:     Analyze(codes, vs),
	}
}

// Analyze computes health status, warnings and the recommendation.
func Analyze(faults []dtc.ClassifiedFault, vs state.VehicleState) Analysis {
	sum := dtc.Summarize(faults)
	status := healthStatus(sum, vs)

	warnings := []string{}
	switch {
	case sum.SafetyCritical > 0:
		warnings = append(warnings, fmt.Sprintf("%d safety-critical fault(s) detected", sum.SafetyCritical))
	case sum.Critical > 0:
		warnings = append(warnings, fmt.Sprintf("%d critical fault(s) detected", sum.Critical))
	case sum.Total > 0:
		warnings = append(warnings, fmt.Sprintf("%d fault code(s) present", sum.Total))
	}
	if vs.EngineOverheating {
		warnings = append(warnings, "Engine overheating detected")
	}
	if vs.EngineHighRPM {
		warnings = append(warnings, "Engine running at high RPM")
	}

	return Analysis{
		HealthStatus:            status,
		Warnings:                warnings,
		Drivable:                status != HealthCritical,
		ImmediateActionRequired: status == HealthCritical,
		Recommendation:          recommend(status, faults, vs),
	}
}

// healthStatus escalates HEALTHY -> ATTENTION -> WARNING -> CRITICAL; the
// highest applicable level wins.
func healthStatus(sum dtc.Summary, vs state.VehicleState) HealthStatus {
	switch {
	case sum.SafetyCritical > 0 || vs.EngineOverheating:
		return HealthCritical
	case sum.Critical > 0:
		return HealthWarning
	case sum.Total > 0:
		return HealthAttention
	default:
		return HealthHealthy
	}
}

func recommend(status HealthStatus, faults []dtc.ClassifiedFault, vs state.VehicleState) string {
	switch status {
	case HealthCritical:
		if vs.EngineOverheating {
			return RecommendOverheating
		}
		if sc := dtc.SafetyCritical(faults); len(sc) > 0 {
			return fmt.Sprintf(RecommendSafetyFmt, sc[0].Code)
		}
		return RecommendCritical
	case HealthWarning:
		return RecommendWarning
	case HealthAttention:
		return RecommendAttention
	default:
		return RecommendHealthy
	}
}
