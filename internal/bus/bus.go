package bus

import (
	"sync"

	"github.com/jkaberg/obd-diag/internal/report"
)

// Bus fans every published report out to all subscribers. Subscribers only
// see reports published after they subscribed. Safe for concurrent use.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan *report.DiagnosticReport
	closed      bool
}

// New creates a ready-to-use Bus.
func New() *Bus { return &Bus{} }

// Subscribe returns a channel receiving future reports. The channel is closed
// by Close.
func (b *Bus) Subscribe() <-chan *report.DiagnosticReport {
	ch := make(chan *report.DiagnosticReport, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Publish delivers r without blocking. A subscriber still busy with the
// previous report skips this one and gets the next.
func (b *Bus) Publish(r *report.DiagnosticReport) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- r:
		default:
		}
	}
}

// Close closes every subscriber channel. Later publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
