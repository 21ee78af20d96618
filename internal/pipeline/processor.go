// Package pipeline runs one snapshot through classification, normalization,
// state derivation and report assembly.
package pipeline

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jkaberg/obd-diag/internal/collector"
	"github.com/jkaberg/obd-diag/internal/dtc"
	"github.com/jkaberg/obd-diag/internal/report"
	"github.com/jkaberg/obd-diag/internal/sensors"
	"github.com/jkaberg/obd-diag/internal/state"
	"github.com/sirupsen/logrus"
)

// Options configure a Processor. Start from DefaultOptions; Policy is taken
// as given, the other fields fall back to defaults when empty.
type Options struct {
	Policy  state.Policy
	Version string
	System  string
	// Now supplies the report time when the snapshot carries none.
	Now func() time.Time
	// NewID supplies report IDs; nil uses random UUIDs.
	NewID func() string
}

// DefaultOptions returns the options used by the service.
func DefaultOptions() Options {
	return Options{
		Policy:  state.DefaultPolicy,
		Version: report.DefaultVersion,
		System:  report.DefaultSystem,
		Now:     time.Now,
		NewID:   func() string { return uuid.NewString() },
	}
}

// Processor turns snapshots into reports.
type Processor struct {
	opts   Options
	logger *logrus.Logger
}

// NewProcessor creates a processor.
func NewProcessor(opts Options, logger *logrus.Logger) *Processor {
	def := DefaultOptions()
	if opts.Version == "" {
		opts.Version = def.Version
	}
	if opts.System == "" {
		opts.System = def.System
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	if opts.NewID == nil {
		opts.NewID = def.NewID
	}
	return &Processor{opts: opts, logger: logger}
}

// Process builds the report for snap. Data quality problems are logged and
// never fail the cycle.
func (p *Processor) Process(snap *collector.Snapshot) report.DiagnosticReport {
	if snap == nil {
		snap = &collector.Snapshot{}
	}

	faults := dtc.ClassifyAll(snap.DTCs)

	normalized := sensors.Normalize(snap.Sensors)
	if unparsed := sensors.Unparsed(snap.Sensors, normalized); len(unparsed) > 0 {
		sort.Strings(unparsed)
		p.logger.WithField("sensors", unparsed).Warn("Unparseable sensor readings treated as absent")
	}

	std := sensors.Standardize(normalized)
	for _, w := range sensors.ValidateStandard(std) {
		p.logger.Warn(w)
	}

	vs := state.DeriveWithPolicy(std, p.opts.Policy)

	ts := snap.Timestamp
	if ts.IsZero() {
		ts = p.opts.Now()
	}

	r := report.Assemble(faults, std, vs, snap.Connection.OrUnknown(), report.Metadata{
		Timestamp: ts,
		Version:   p.opts.Version,
		System:    p.opts.System,
		ReportID:  p.opts.NewID(),
	})

	p.logger.WithFields(logrus.Fields{
		"health":  r.Analysis.HealthStatus,
		"mode":    r.VehicleState.Mode,
		"dtcs":    r.DTCs.Count,
		"sensors": len(sensors.Present(std)),
	}).Debug("Assembled diagnostic report")
	return r
}
