// Package cache remembers the fault codes seen in recent reports so the
// runtime can tell newly appeared faults from ones it already announced.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/jkaberg/obd-diag/internal/dtc"
)

type entry struct {
	fault     dtc.ClassifiedFault
	firstSeen time.Time
	lastSeen  time.Time
}

// Delta is the outcome of one Observe call.
type Delta struct {
	New     []dtc.ClassifiedFault // faults not in the cache before, input order
	Cleared []string              // codes unseen for longer than the TTL, sorted
}

// Empty reports whether nothing appeared or cleared.
func (d Delta) Empty() bool { return len(d.New) == 0 && len(d.Cleared) == 0 }

// FaultCache is safe for concurrent use. A code missing from a report stays
// cached until it has been unseen for ttl, so intermittent faults are not
// announced on every flicker.
type FaultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*entry
}

// NewFaultCache returns an empty cache.
func NewFaultCache(ttl time.Duration) *FaultCache {
	return &FaultCache{ttl: ttl, entries: make(map[string]*entry)}
}

// Observe records the faults present at time at.
func (c *FaultCache) Observe(faults []dtc.ClassifiedFault, at time.Time) Delta {
	c.mu.Lock()
	defer c.mu.Unlock()

	var d Delta
	for _, f := range faults {
		if e, ok := c.entries[f.Code]; ok {
			e.lastSeen = at
			e.fault = f
			continue
		}
		c.entries[f.Code] = &entry{fault: f, firstSeen: at, lastSeen: at}
		d.New = append(d.New, f)
	}

	for code, e := range c.entries {
		if at.Sub(e.lastSeen) > c.ttl {
			delete(c.entries, code)
			d.Cleared = append(d.Cleared, code)
		}
	}
	sort.Strings(d.Cleared)
	return d
}

// FirstSeen returns when code was first observed in its current cache entry.
func (c *FaultCache) FirstSeen(code string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[code]
	if !ok {
		return time.Time{}, false
	}
	return e.firstSeen, true
}

// Active returns the cached codes, sorted.
func (c *FaultCache) Active() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	codes := make([]string, 0, len(c.entries))
	for code := range c.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
