package bus

import (
	"testing"

	"github.com/jkaberg/obd-diag/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FanOut(t *testing.T) {
	b := New()
	a, c := b.Subscribe(), b.Subscribe()

	r := &report.DiagnosticReport{}
	b.Publish(r)

	assert.Same(t, r, <-a)
	assert.Same(t, r, <-c)
}

func TestBus_SlowSubscriberSkips(t *testing.T) {
	b := New()
	ch := b.Subscribe()

	first := &report.DiagnosticReport{Metadata: report.Metadata{ReportID: "1"}}
	second := &report.DiagnosticReport{Metadata: report.Metadata{ReportID: "2"}}
	b.Publish(first)
	b.Publish(second)

	assert.Same(t, first, <-ch)
	select {
	case got := <-ch:
		t.Fatalf("unexpected report %s", got.Metadata.ReportID)
	default:
	}

	b.Publish(second)
	assert.Same(t, second, <-ch)
}

func TestBus_Close(t *testing.T) {
	b := New()
	ch := b.Subscribe()
	b.Close()
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)

	b.Publish(&report.DiagnosticReport{})
	late := b.Subscribe()
	_, ok = <-late
	require.False(t, ok)
}
