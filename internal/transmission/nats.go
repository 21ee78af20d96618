package transmission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jkaberg/obd-diag/internal/report"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const natsFlushTimeout = 5 * time.Second

// NATSTransmitter publishes report JSON on "<prefix>.<device>.report".
type NATSTransmitter struct {
	conn    *nats.Conn
	subject string
	logger  *logrus.Logger
}

// ReportSubject returns the subject reports for deviceID are published on.
func ReportSubject(prefix, deviceID string) string {
	return fmt.Sprintf("%s.%s.report", prefix, deviceID)
}

// NewNATSTransmitter connects to the server at url. The connection
// reconnects forever; Close releases it.
func NewNATSTransmitter(url, subjectPrefix, deviceID string, logger *logrus.Logger) (*NATSTransmitter, error) {
	conn, err := nats.Connect(url,
		nats.Name("obd-diag-"+deviceID),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrlRedacted()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	t := &NATSTransmitter{
		conn:    conn,
		subject: ReportSubject(subjectPrefix, deviceID),
		logger:  logger,
	}
	logger.WithFields(logrus.Fields{
		"url":     conn.ConnectedUrlRedacted(),
		"subject": t.subject,
	}).Info("NATS transmitter connected")
	return t, nil
}

// Transmit publishes r and waits for the server to acknowledge the flush.
func (t *NATSTransmitter) Transmit(ctx context.Context, r *report.DiagnosticReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := t.conn.Publish(t.subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", t.subject, err)
	}

	flushCtx, cancel := context.WithTimeout(ctx, natsFlushTimeout)
	defer cancel()
	if err := t.conn.FlushWithContext(flushCtx); err != nil {
		return fmt.Errorf("failed to flush NATS publish: %w", err)
	}

	t.logger.WithFields(logrus.Fields{
		"subject": t.subject,
		"size":    len(data),
	}).Debug("Published report to NATS")
	return nil
}

// IsConnected reports the NATS connection state.
func (t *NATSTransmitter) IsConnected() bool { return t.conn.IsConnected() }

// Close drains pending messages and closes the connection.
func (t *NATSTransmitter) Close() error {
	return t.conn.Drain()
}
