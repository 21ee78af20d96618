package transmission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jkaberg/obd-diag/internal/report"
	"github.com/sirupsen/logrus"
)

// WebhookTransmitter POSTs each report as JSON to an HTTP endpoint, typically
// the reasoning service that consumes the reports.
type WebhookTransmitter struct {
	url        string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewWebhookTransmitter creates a transmitter for url. A non-empty token is
// sent as a bearer token.
func NewWebhookTransmitter(url, token, version string, httpClient *http.Client, logger *logrus.Logger) *WebhookTransmitter {
	return &WebhookTransmitter{
		url:        url,
		token:      token,
		userAgent:  "obd-diag/" + version,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Transmit sends r. Any non-2xx answer is an error.
func (t *WebhookTransmitter) Transmit(ctx context.Context, r *report.DiagnosticReport) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, resp.Status)
	}

	t.logger.WithFields(logrus.Fields{
		"health":      r.Analysis.HealthStatus,
		"dtcs":        r.DTCs.Count,
		"status_code": resp.StatusCode,
	}).Debug("Successfully transmitted report to webhook")
	return nil
}

// IsConnected always returns true for the HTTP-based transmitter.
func (t *WebhookTransmitter) IsConnected() bool { return true }
