package report

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for report validation failures.
var (
	ErrMissingField      = errors.New("missing required field")
	ErrInconsistentCount = errors.New("inconsistent count")
	ErrMalformedDocument = errors.New("malformed report document")
)

// ValidationError wraps a sentinel with the offending field path.
type ValidationError struct {
	Field   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Wrapped, e.Field)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

func missing(field string) error {
	return &ValidationError{Field: field, Wrapped: ErrMissingField}
}

// Validate checks that an assembled report carries every required field.
// A nil report is a programming error and panics.
func Validate(r *DiagnosticReport) error {
	if r == nil {
		panic("report: Validate called with nil report")
	}

	switch {
	case r.Metadata.Timestamp.IsZero():
		return missing("metadata.timestamp")
	case r.Metadata.Version == "":
		return missing("metadata.version")
	case r.Sensors == nil:
		return missing("sensors")
	case r.Analysis.HealthStatus == "":
		return missing("analysis.health_status")
	case r.Analysis.Recommendation == "":
		return missing("analysis.recommendation")
	}

	if r.DTCs.Count != len(r.DTCs.Codes) {
		return &ValidationError{Field: "dtcs.count", Wrapped: ErrInconsistentCount}
	}
	if r.DTCs.Summary.Total != r.DTCs.Count {
		return &ValidationError{Field: "dtcs.summary.total", Wrapped: ErrInconsistentCount}
	}
	return nil
}

// requiredSections are the top-level keys of a serialized report.
var requiredSections = []string{"metadata", "connection", "dtcs", "sensors", "vehicle_state", "analysis"}

// ValidateJSON checks a serialized report document for the required
// top-level sections and the metadata timestamp.
func ValidateJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	for _, field := range requiredSections {
		if _, ok := doc[field]; !ok {
			return missing(field)
		}
	}

	var meta map[string]json.RawMessage
	if err := json.Unmarshal(doc["metadata"], &meta); err != nil {
		return fmt.Errorf("%w: metadata: %v", ErrMalformedDocument, err)
	}
	if ts, ok := meta["timestamp"]; !ok || string(ts) == "null" || string(ts) == `""` {
		return missing("metadata.timestamp")
	}
	return nil
}
