package cache

import (
	"testing"
	"time"

	"github.com/jkaberg/obd-diag/internal/dtc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func faults(codes ...string) []dtc.ClassifiedFault {
	out := make([]dtc.ClassifiedFault, 0, len(codes))
	for _, c := range codes {
		out = append(out, dtc.Classify(c, ""))
	}
	return out
}

func TestFaultCache_NewAndRepeated(t *testing.T) {
	c := NewFaultCache(time.Hour)
	t0 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	d := c.Observe(faults("P0420", "P0A80"), t0)
	require.Len(t, d.New, 2)
	assert.Equal(t, "P0420", d.New[0].Code)
	assert.Empty(t, d.Cleared)

	d = c.Observe(faults("P0420", "P0A80", "C0035"), t0.Add(time.Minute))
	require.Len(t, d.New, 1)
	assert.Equal(t, "C0035", d.New[0].Code)

	first, ok := c.FirstSeen("P0420")
	require.True(t, ok)
	assert.Equal(t, t0, first)
	assert.Equal(t, []string{"C0035", "P0420", "P0A80"}, c.Active())
}

func TestFaultCache_IntermittentAndCleared(t *testing.T) {
	c := NewFaultCache(10 * time.Minute)
	t0 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	c.Observe(faults("P0300"), t0)

	d := c.Observe(nil, t0.Add(5*time.Minute))
	assert.True(t, d.Empty())

	d = c.Observe(faults("P0300"), t0.Add(6*time.Minute))
	assert.True(t, d.Empty(), "flicker within ttl is not new")

	d = c.Observe(nil, t0.Add(17*time.Minute))
	assert.Equal(t, []string{"P0300"}, d.Cleared)
	assert.Empty(t, c.Active())

	_, ok := c.FirstSeen("P0300")
	assert.False(t, ok)

	d = c.Observe(faults("P0300"), t0.Add(20*time.Minute))
	assert.Len(t, d.New, 1)
}
