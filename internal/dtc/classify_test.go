package dtc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code      string
		domain    Domain
		codeType  CodeType
		subsystem string
		severity  Severity
		safety    bool
		hybrid    bool
	}{
		{"P0A80", DomainPowertrain, CodeTypeGeneric, "Hybrid/Electric System", SeverityCritical, true, true},
		{"P0420", DomainPowertrain, CodeTypeGeneric, "Emissions Control", SeverityMedium, false, false},
		{"P0301", DomainPowertrain, CodeTypeGeneric, "Ignition System", SeverityLow, false, false},
		{"C0071", DomainChassis, CodeTypeGeneric, "Chassis System", SeverityCritical, true, false},
		{"P0601", DomainPowertrain, CodeTypeGeneric, "Vehicle Speed & Idle Control", SeverityCritical, true, false},
		{"P0562", DomainPowertrain, CodeTypeGeneric, "Vehicle Speed & Idle Control", SeverityLow, true, false},
		{"B0001", DomainBody, CodeTypeGeneric, "Body System", SeverityLow, false, false},
		{"U0100", DomainNetwork, CodeTypeGeneric, "Network Communication", SeverityLow, false, false},
		{"P1A10", DomainPowertrain, CodeTypeManufacturer, "Hybrid/Electric System", SeverityLow, false, true},
		{"P3000", DomainPowertrain, CodeTypeManufacturer, "Powertrain (General)", SeverityLow, false, true},
		{"P0700", DomainPowertrain, CodeTypeGeneric, "Transmission", SeverityMedium, false, false},
		{"P0171", DomainPowertrain, CodeTypeGeneric, "Fuel/Air Metering and Auxiliary Emissions", SeverityLow, false, false},
		{"C1234", DomainChassis, CodeTypeManufacturer, "Chassis System", SeverityLow, true, false},
		{"X9999", DomainUnknown, CodeTypeUnknown, "Unknown", SeverityLow, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := Classify(tt.code, "x")
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.domain, got.Domain)
			assert.Equal(t, tt.codeType, got.CodeType)
			assert.Equal(t, tt.subsystem, got.Subsystem)
			assert.Equal(t, tt.severity, got.Severity)
			assert.Equal(t, tt.safety, got.SafetyCritical)
			assert.Equal(t, tt.hybrid, got.HybridRelated)
		})
	}
}

// P0420 sits under the P04 prefix, which the rule table marks Medium; it is
// never safety-critical.
func TestClassify_P0420NotSafetyCritical(t *testing.T) {
	got := Classify("P0420", "Catalyst System Efficiency Below Threshold")
	assert.False(t, got.SafetyCritical)
	assert.NotEqual(t, SeverityCritical, got.Severity)
}

func TestClassify_Uppercases(t *testing.T) {
	got := Classify("p0a80", "")
	assert.Equal(t, "P0A80", got.Code)
	assert.True(t, got.HybridRelated)
}

func TestClassify_ShortCodes(t *testing.T) {
	for _, code := range []string{"", "P", "Z"} {
		got := Classify(code, "")
		assert.Equal(t, CodeTypeUnknown, got.CodeType, code)
		assert.Equal(t, SeverityLow, got.Severity, code)
	}
	assert.Equal(t, DomainUnknown, Classify("", "").Domain)
	assert.Equal(t, DomainPowertrain, Classify("P", "").Domain)
}

func TestClassify_DescriptionIgnored(t *testing.T) {
	a := Classify("P0606", "ECU processor fault")
	b := Classify("P0606", "something else entirely")
	a.Description, b.Description = "", ""
	assert.Equal(t, a, b)
}

func TestClassify_Idempotent(t *testing.T) {
	for _, code := range []string{"P0A80", "C0071", "P0420", "U0100", "B1000"} {
		assert.Equal(t, Classify(code, "d"), Classify(code, "d"))
	}
}

func TestSeverityRules_FirstMatchWins(t *testing.T) {
	// P06xx hits the exact ECU rule first; the result matches the prefix rule
	// anyway but the exact rule must be listed first.
	require.NotEmpty(t, SeverityRules)
	assert.True(t, SeverityRules[0].Match("P0601"))
	assert.False(t, SeverityRules[0].Match("P0610"))
	assert.Equal(t, SeverityCritical, Classify("P0610", "").Severity)
}

func TestClassifyAll_PreservesOrder(t *testing.T) {
	raw := []RawFault{
		{Code: "U0100"},
		{Code: "P0A80"},
		{Code: "C0071"},
	}
	got := ClassifyAll(raw)
	require.Len(t, got, 3)
	assert.Equal(t, "U0100", got[0].Code)
	assert.Equal(t, "P0A80", got[1].Code)
	assert.Equal(t, "C0071", got[2].Code)
	assert.Empty(t, ClassifyAll(nil))
}

func TestRawFault_UnmarshalJSON(t *testing.T) {
	var faults []RawFault
	data := `[["P0420","Catalyst"],{"code":"C0071","description":"ABS"},["U0100"]]`
	require.NoError(t, json.Unmarshal([]byte(data), &faults))
	require.Len(t, faults, 3)
	assert.Equal(t, RawFault{Code: "P0420", Description: "Catalyst"}, faults[0])
	assert.Equal(t, RawFault{Code: "C0071", Description: "ABS"}, faults[1])
	assert.Equal(t, RawFault{Code: "U0100"}, faults[2])

	var f RawFault
	assert.Error(t, json.Unmarshal([]byte(`[]`), &f))
	assert.Error(t, json.Unmarshal([]byte(`42`), &f))
}

func TestClassifiedFault_String(t *testing.T) {
	assert.Equal(t, "P0420: Catalyst [Medium]", Classify("P0420", "Catalyst").String())
}
