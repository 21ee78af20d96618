package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jkaberg/obd-diag/internal/sensors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DiagnosticsPath is served by the OBD bridge.
const DiagnosticsPath = "/api/diagnostics"

// ELM327 style adapters queue requests on a slow serial line, so requests to
// the bridge are spaced by at least MinRequestGap after a burst of
// requestBurst.
const (
	MinRequestGap = 250 * time.Millisecond
	requestBurst  = 2
)

// HTTPSource polls an OBD bridge over HTTP.
type HTTPSource struct {
	baseURL    string
	pids       []sensors.MonitoredPID
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// NewHTTPSource creates a source for the bridge at baseURL
// (e.g. "http://192.168.0.10:8080").
func NewHTTPSource(baseURL string, pids []sensors.MonitoredPID, httpClient *http.Client, logger *logrus.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		pids:       pids,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(MinRequestGap), requestBurst),
		logger:     logger,
	}
}

// Collect fetches one snapshot for the monitored PIDs.
func (s *HTTPSource) Collect(ctx context.Context) (*Snapshot, error) {
	body, err := s.get(ctx, s.requestURL())
	if err != nil {
		return nil, fmt.Errorf("bridge request failed: %w", err)
	}

	snap, err := Decode(body)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"dtcs":    len(snap.DTCs),
		"sensors": len(snap.Sensors),
		"status":  snap.Connection.Status,
	}).Debug("Collected snapshot")
	return snap, nil
}

// IsHealthy reports whether the bridge answers a request.
func (s *HTTPSource) IsHealthy(ctx context.Context) bool {
	_, err := s.get(ctx, s.baseURL+DiagnosticsPath+"?pids="+sensors.PIDSpeed.String())
	return err == nil
}

func (s *HTTPSource) requestURL() string {
	q := url.Values{}
	q.Set("pids", strings.Join(sensors.PollNames(s.pids), ","))
	return s.baseURL + DiagnosticsPath + "?" + q.Encode()
}

func (s *HTTPSource) get(ctx context.Context, fullURL string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	s.logger.WithField("url", fullURL).Debug("Requesting diagnostics")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bridge returned status %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"response_size": len(body),
	}).Debug("Received bridge response")
	return body, nil
}
