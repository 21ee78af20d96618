// Package wifi keeps the Android head unit's Wi-Fi radio on, which Wi-Fi
// OBD dongles need to stay reachable.
package wifi

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const commandTimeout = 5 * time.Second

// runFunc executes a command and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Manager checks and re-enables Wi-Fi through the Android settings and svc
// tools.
type Manager struct {
	run    runFunc
	settle time.Duration
	logger *logrus.Logger
}

// NewManager creates a manager using the real Android tools.
func NewManager(logger *logrus.Logger) *Manager {
	return &Manager{run: execRun, settle: 500 * time.Millisecond, logger: logger}
}

// IsEnabled reports whether the global wifi_on setting is "1".
func (m *Manager) IsEnabled(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := m.run(ctx, "settings", "get", "global", "wifi_on")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) == "1", nil
}

// Enable turns Wi-Fi on.
func (m *Manager) Enable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	_, err := m.run(ctx, "svc", "wifi", "enable")
	return err
}

// CheckAndReenable enables Wi-Fi when it is off. It returns true when Wi-Fi
// was off and is now on.
func (m *Manager) CheckAndReenable(ctx context.Context) (bool, error) {
	enabled, err := m.IsEnabled(ctx)
	if err != nil || enabled {
		return false, err
	}

	m.logger.Info("WiFi is disabled, attempting to re-enable...")
	if err := m.Enable(ctx); err != nil {
		m.logger.WithError(err).Warn("Failed to enable WiFi")
		return false, err
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(m.settle):
	}

	enabled, err = m.IsEnabled(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("Failed to verify WiFi status after enabling")
		return true, nil
	}
	if !enabled {
		m.logger.Warn("WiFi enable command succeeded but WiFi is still disabled")
		return false, nil
	}
	m.logger.Info("WiFi successfully re-enabled")
	return true, nil
}
