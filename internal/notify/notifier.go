// Package notify posts Android notifications through Termux when the vehicle
// health changes, for head units running the service under Termux.
package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/jkaberg/obd-diag/internal/report"
	"github.com/sirupsen/logrus"
)

const notifyTimeout = 1500 * time.Millisecond

// defaultPath is absolute so no PATH lookup is needed; older Android seccomp
// policies block the faccessat2 call that lookup uses.
func defaultPath() string {
	prefix := os.Getenv("PREFIX")
	if prefix == "" {
		prefix = "/data/data/com.termux/files/usr"
	}
	return prefix + "/bin/termux-notification"
}

// Notifier posts a titled message.
type Notifier interface {
	Notify(ctx context.Context, title, content string, urgent bool)
}

// TermuxNotifier updates one notification in place via termux-notification.
// Missing Termux is not an error; failures are logged at debug level.
type TermuxNotifier struct {
	id     string
	path   string
	logger *logrus.Logger
}

// NewTermuxNotifier creates a notifier with a fixed notification ID.
func NewTermuxNotifier(logger *logrus.Logger) *TermuxNotifier {
	return &TermuxNotifier{id: "obd-diag", path: defaultPath(), logger: logger}
}

// Notify posts or replaces the notification. Urgent messages use high
// priority and vibrate.
func (n *TermuxNotifier) Notify(ctx context.Context, title, content string, urgent bool) {
	if title == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	priority := "low"
	args := []string{"--id", n.id, "-t", title, "-c", content}
	if urgent {
		priority = "high"
		args = append(args, "--vibrate", "500,200,500")
	} else {
		args = append(args, "--ongoing")
	}
	args = append(args, "--priority", priority)

	if err := exec.CommandContext(ctx, n.path, args...).Run(); err != nil {
		n.logger.WithError(err).Debug("termux-notification execution failed")
	}
}

// HealthMessage renders a report as a notification. urgent is set for
// CRITICAL reports.
func HealthMessage(r *report.DiagnosticReport) (title, content string, urgent bool) {
	title = fmt.Sprintf("Vehicle %s", r.Analysis.HealthStatus)

	lines := []string{r.Analysis.Recommendation}
	if len(r.DTCs.Codes) > 0 {
		codes := make([]string, 0, len(r.DTCs.Codes))
		for _, f := range r.DTCs.Codes {
			codes = append(codes, f.Code)
		}
		lines = append(lines, "Faults: "+strings.Join(codes, ", "))
	}
	lines = append(lines, r.Analysis.Warnings...)
	return title, strings.Join(lines, "\n"), r.Analysis.HealthStatus == report.HealthCritical
}
