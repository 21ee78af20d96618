// Package netutil builds the HTTP clients used to reach the OBD bridge.
package netutil

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var privateNets = func() []*net.IPNet {
	var out []*net.IPNet
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
		"fc00::/7",
		"fe80::/10",
	} {
		_, n, err := net.ParseCIDR(cidr)
		if err == nil {
			out = append(out, n)
		}
	}
	return out
}()

// NewTransport returns an HTTP transport with conservative timeouts. Bridges
// on the car's Wi-Fi typically serve self-signed certificates, so
// insecureTLS disables verification when the operator asks for it.
func NewTransport(insecureTLS bool, logger *logrus.Logger) *http.Transport {
	if insecureTLS {
		logger.Debug("TLS certificate verification disabled for OBD bridge")
	}
	return &http.Transport{
		DialContext: dialContext(logger),
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: insecureTLS, //nolint:gosec // opt-in for self-signed bridges
			MinVersion:         tls.VersionTLS12,
		},
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
	}
}

func dialContext(logger *logrus.Logger) func(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"host":  host,
			"local": IsLocalHost(host),
		}).Debug("Dialing OBD bridge")
		return dialer.DialContext(ctx, network, addr)
	}
}

// IsLocalHost reports whether host is loopback, an mDNS/LAN name or an
// address in a private range.
func IsLocalHost(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	if strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".lan") {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	if ip.IsLoopback() {
		return true
	}
	for _, n := range privateNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// NewHTTPClient creates an HTTP client with the given overall timeout.
func NewHTTPClient(timeout time.Duration, insecureTLS bool, logger *logrus.Logger) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(insecureTLS, logger),
	}
}
