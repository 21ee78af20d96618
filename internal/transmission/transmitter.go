// Package transmission delivers diagnostic reports to downstream consumers.
package transmission

import (
	"context"

	"github.com/jkaberg/obd-diag/internal/report"
)

// Transmitter delivers one report. Implementations must be safe to call from
// a single scheduler goroutine; they are not required to be concurrent-safe.
type Transmitter interface {
	Transmit(ctx context.Context, r *report.DiagnosticReport) error
	IsConnected() bool
}
