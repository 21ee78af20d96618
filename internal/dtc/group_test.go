package dtc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleFaults() []ClassifiedFault {
	return ClassifyAll([]RawFault{
		{"P0A80", "Hybrid Battery Pack Deterioration"},
		{"P0420", "Catalyst System Efficiency Below Threshold"},
		{"P0301", "Cylinder 1 Misfire Detected"},
		{"C0071", "ABS Control Module Fault"},
		{"P0601", "Internal Control Module Memory Check Sum Error"},
		{"P3000", "Battery Voltage High"},
	})
}

func TestBySeverity(t *testing.T) {
	groups := BySeverity(sampleFaults())
	assert.Len(t, groups[SeverityCritical], 3)
	assert.Len(t, groups[SeverityMedium], 1)
	assert.Len(t, groups[SeverityLow], 2)

	empty := BySeverity(nil)
	assert.Len(t, empty, 3)
	assert.Empty(t, empty[SeverityCritical])
}

func TestSafetyCritical(t *testing.T) {
	got := SafetyCritical(sampleFaults())
	codes := make([]string, 0, len(got))
	for _, f := range got {
		codes = append(codes, f.Code)
	}
	assert.Equal(t, []string{"P0A80", "C0071", "P0601"}, codes)
}

func TestHybridRelated(t *testing.T) {
	got := HybridRelated(sampleFaults())
	assert.Len(t, got, 2)
	assert.Equal(t, "P0A80", got[0].Code)
	assert.Equal(t, "P3000", got[1].Code)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{
		Total:          6,
		Critical:       3,
		Medium:         1,
		Low:            2,
		SafetyCritical: 3,
		HybridRelated:  2,
	}, Summarize(sampleFaults()))
	assert.Equal(t, Summary{}, Summarize(nil))
}
