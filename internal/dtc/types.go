package dtc

import (
	"encoding/json"
	"fmt"
)

// Domain is the top-level fault category taken from the first character of a code.
type Domain string

const (
	DomainPowertrain Domain = "Powertrain"
	DomainChassis    Domain = "Chassis"
	DomainBody       Domain = "Body"
	DomainNetwork    Domain = "Network"
	DomainUnknown    Domain = "Unknown"
)

// CodeType tells SAE generic codes apart from manufacturer specific ones.
type CodeType string

const (
	CodeTypeGeneric      CodeType = "Generic (SAE)"
	CodeTypeManufacturer CodeType = "Manufacturer-specific"
	CodeTypeUnknown      CodeType = "Unknown"
)

// Severity is the urgency tier of a fault. It is independent of the
// safety-critical flag.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityCritical Severity = "Critical"
)

// RawFault is a (code, description) pair as reported by the vehicle.
type RawFault struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// UnmarshalJSON accepts both the tuple form ["P0420", "..."] used by OBD
// bridges and the object form {"code": "...", "description": "..."}.
func (f *RawFault) UnmarshalJSON(b []byte) error {
	var pair []string
	if err := json.Unmarshal(b, &pair); err == nil {
		switch len(pair) {
		case 0:
			return fmt.Errorf("empty fault tuple")
		case 1:
			f.Code, f.Description = pair[0], ""
		default:
			f.Code, f.Description = pair[0], pair[1]
		}
		return nil
	}

	type plain RawFault
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("failed to decode fault: %w", err)
	}
	*f = RawFault(p)
	return nil
}

// ClassifiedFault is a fault code with all derived classification metadata.
// Values are never mutated after Classify returns them.
type ClassifiedFault struct {
	Code           string   `json:"code"`
	Description    string   `json:"description"`
	Domain         Domain   `json:"domain"`
	CodeType       CodeType `json:"code_type"`
	Subsystem      string   `json:"subsystem"`
	Severity       Severity `json:"severity"`
	SafetyCritical bool     `json:"safety_critical"`
	HybridRelated  bool     `json:"hybrid_related"`
}

func (f ClassifiedFault) String() string {
	return fmt.Sprintf("%s: %s [%s]", f.Code, f.Description, f.Severity)
}

// Summary counts faults per severity and flag.
type Summary struct {
	Total          int `json:"total"`
	Critical       int `json:"critical"`
	Medium         int `json:"medium"`
	Low            int `json:"low"`
	SafetyCritical int `json:"safety_critical"`
	HybridRelated  int `json:"hybrid_related"`
}
