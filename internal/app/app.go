package app

import (
	"context"
	"errors"
	"time"

	"github.com/jkaberg/obd-diag/internal/bus"
	"github.com/jkaberg/obd-diag/internal/cache"
	"github.com/jkaberg/obd-diag/internal/collector"
	"github.com/jkaberg/obd-diag/internal/config"
	"github.com/jkaberg/obd-diag/internal/domain"
	"github.com/jkaberg/obd-diag/internal/notify"
	"github.com/jkaberg/obd-diag/internal/pipeline"
	"github.com/jkaberg/obd-diag/internal/report"
	"github.com/jkaberg/obd-diag/internal/transmission"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// schedulerTick is how often the scheduler checks whether a target is due.
var schedulerTick = time.Second

// linkRecoveryThreshold is the number of consecutive failed polls before the
// link recoverer runs.
const linkRecoveryThreshold = 3

// LinkRecoverer restores the network link to the bridge, e.g. Wi-Fi.
type LinkRecoverer interface {
	CheckAndReenable(ctx context.Context) (bool, error)
}

// Target is one configured transmitter with its base interval.
type Target struct {
	Name     string
	Interval time.Duration
	Tx       transmission.Transmitter
}

// Services are the collaborators Run wires together. Faults, Notifier and
// Link are optional.
type Services struct {
	Source    collector.Source
	Processor *pipeline.Processor
	Targets   []Target
	Faults    *cache.FaultCache
	Notifier  notify.Notifier
	Link      LinkRecoverer
}

// transmitInterval returns the fast cadence while the vehicle moves or the
// report is CRITICAL, otherwise base.
func transmitInterval(base, fast time.Duration, r *report.DiagnosticReport) time.Duration {
	if r == nil || fast <= 0 || fast >= base {
		return base
	}
	if r.VehicleState.VehicleMoving || r.Analysis.HealthStatus == report.HealthCritical {
		return fast
	}
	return base
}

// Run starts the collector and the scheduler and blocks until ctx is
// cancelled.
func Run(ctx context.Context, cfg *config.Config, svc Services, logger *logrus.Logger) {
	messageBus := bus.New()
	defer messageBus.Close()

	sub := messageBus.Subscribe()
	grp, ctx := errgroup.WithContext(ctx)

	// Collector -----------------------------------------------------------
	grp.Go(func() error {
		c := &cycle{cfg: cfg, svc: svc, logger: logger}
		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()
		for {
			if r := c.run(ctx); r != nil {
				messageBus.Publish(r)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})

	// Central scheduler ----------------------------------------------------
	type txState struct {
		Target
		lastSent   time.Time
		lastReport *report.DiagnosticReport
	}

	states := make([]txState, 0, len(svc.Targets))
	for _, t := range svc.Targets {
		states = append(states, txState{Target: t, lastSent: time.Now().Add(-t.Interval)})
	}

	grp.Go(func() error {
		var latest *report.DiagnosticReport
		ticker := time.NewTicker(schedulerTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case r, ok := <-sub:
				if !ok {
					return nil
				}
				latest = r
			case <-ticker.C:
				if latest == nil {
					continue
				}
				now := time.Now()
				for i := range states {
					st := &states[i]
					since := now.Sub(st.lastSent)
					if since < transmitInterval(st.Interval, cfg.FastInterval, latest) {
						continue
					}
					forced := cfg.ForceUpdateInterval > 0 && since >= cfg.ForceUpdateInterval
					if !forced && !domain.Changed(st.lastReport, latest) {
						continue
					}

					txCtx, cancel := context.WithTimeout(ctx, config.TransmitTimeout)
					err := st.Tx.Transmit(txCtx, latest)
					cancel()

					st.lastSent = now
					if err != nil {
						logger.WithError(err).WithField("target", st.Name).Warn("Transmit failed")
						// retry on the next due tick even without a change
						st.lastReport = nil
						continue
					}
					st.lastReport = latest
				}
			}
		}
	})

	if err := grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Warn("app: background group exited")
	}
}

// cycle holds the collector's state across polls.
type cycle struct {
	cfg        *config.Config
	svc        Services
	logger     *logrus.Logger
	lastHealth report.HealthStatus
	failures   int
}

// run collects and processes one snapshot. It returns nil when the cycle
// produced no usable report.
func (c *cycle) run(ctx context.Context) *report.DiagnosticReport {
	collectCtx, cancel := context.WithTimeout(ctx, c.cfg.GetBridgeTimeout())
	snap, err := c.svc.Source.Collect(collectCtx)
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			c.logger.WithError(err).Warn("collector: poll failed")
			c.recoverLink(ctx)
		}
		return nil
	}
	c.failures = 0

	r := c.svc.Processor.Process(snap)
	if err := report.Validate(&r); err != nil {
		c.logger.WithError(err).Error("collector: assembled report is invalid")
		return nil
	}

	if c.svc.Faults != nil {
		delta := c.svc.Faults.Observe(r.DTCs.Codes, r.Metadata.Timestamp)
		for _, f := range delta.New {
			c.logger.WithFields(logrus.Fields{
				"code":            f.Code,
				"severity":        f.Severity,
				"subsystem":       f.Subsystem,
				"safety_critical": f.SafetyCritical,
			}).Warn("New fault code detected")
		}
		for _, code := range delta.Cleared {
			c.logger.WithField("code", code).Info("Fault code cleared")
		}
	}

	if r.Analysis.HealthStatus != c.lastHealth {
		c.logger.WithFields(logrus.Fields{
			"from": c.lastHealth,
			"to":   r.Analysis.HealthStatus,
		}).Info("Vehicle health changed")
		if c.svc.Notifier != nil {
			title, content, urgent := notify.HealthMessage(&r)
			c.svc.Notifier.Notify(ctx, title, content, urgent)
		}
		c.lastHealth = r.Analysis.HealthStatus
	}
	return &r
}

// recoverLink runs the link recoverer once every linkRecoveryThreshold
// consecutive failures.
func (c *cycle) recoverLink(ctx context.Context) {
	c.failures++
	if c.svc.Link == nil || c.failures < linkRecoveryThreshold {
		return
	}
	c.failures = 0
	restored, err := c.svc.Link.CheckAndReenable(ctx)
	if err != nil {
		c.logger.WithError(err).Debug("Link check failed (non-fatal)")
		return
	}
	if restored {
		c.logger.Info("Network link restored")
	}
}
