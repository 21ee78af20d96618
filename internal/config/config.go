package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jkaberg/obd-diag/internal/state"
)

// Config holds all configuration options for obd-diag.
type Config struct {
	// Device Configuration
	DeviceID string `json:"device_id"` // Unique device identifier, used in topics and subjects

	// Application Configuration
	Verbose bool `json:"verbose"` // Enable verbose logging
	Notify  bool `json:"notify"`  // Post Android notifications on health changes
	WiFi    bool `json:"wifi"`    // Re-enable Android Wi-Fi when the bridge stays unreachable

	// OBD bridge
	BridgeURL     string `json:"bridge_url"`     // Base URL of the OBD bridge
	PIDs          string `json:"pids"`           // Comma separated PID names, ":0" suffix = not published
	BridgeTimeout int    `json:"bridge_timeout"` // Bridge request timeout in seconds
	InsecureTLS   bool   `json:"insecure_tls"`   // Skip certificate verification (bridge, broker)

	// Analysis
	StrictAbsent bool `json:"strict_absent"` // Absent sensors make flags false instead of reading as 0

	// MQTT Configuration
	MQTTUrl         string `json:"mqtt_url"`         // MQTT URL (ws, wss, mqtt, mqtts)
	DiscoveryPrefix string `json:"discovery_prefix"` // Home Assistant discovery prefix

	// NATS Configuration
	NATSUrl           string `json:"nats_url"`
	NATSSubjectPrefix string `json:"nats_subject_prefix"`

	// Webhook Configuration
	WebhookURL   string `json:"webhook_url"`
	WebhookToken string `json:"webhook_token"`

	// File export
	OutputDir  string `json:"output_dir"`
	PrettyJSON bool   `json:"pretty_json"`

	// Intervals
	PollInterval        time.Duration `json:"poll_interval"`
	FastInterval        time.Duration `json:"fast_interval"`
	MQTTInterval        time.Duration `json:"mqtt_interval"`
	NATSInterval        time.Duration `json:"nats_interval"`
	WebhookInterval     time.Duration `json:"webhook_interval"`
	ExportInterval      time.Duration `json:"export_interval"`
	ForceUpdateInterval time.Duration `json:"force_update_interval"` // Re-send unchanged reports after this long, 0 = never
}

// GetDefaultConfig returns a configuration with sensible defaults.
func GetDefaultConfig() *Config {
	return &Config{
		DeviceID:          DefaultDeviceID,
		BridgeURL:         DefaultBridgeURL,
		BridgeTimeout:     int(BridgeTimeout / time.Second),
		DiscoveryPrefix:   DefaultDiscoveryPrefix,
		NATSSubjectPrefix: DefaultNATSSubjectPrefix,
		PrettyJSON:        true,

		PollInterval:    BridgePollInterval,
		FastInterval:    FastTransmitInterval,
		MQTTInterval:    MQTTTransmitInterval,
		NATSInterval:    NATSTransmitInterval,
		WebhookInterval: WebhookTransmitInterval,
		ExportInterval:  ExportInterval,
	}
}

// Validate checks if the configuration is valid and fills non-positive
// intervals with their defaults.
func (c *Config) Validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("device ID is required")
	}
	if strings.ContainsAny(c.DeviceID, " .*>+#/") {
		return fmt.Errorf("device ID %q must not contain spaces, dots, slashes or wildcards", c.DeviceID)
	}

	if !hasScheme(c.BridgeURL, "http://", "https://") {
		return fmt.Errorf("bridge URL must use http:// or https://")
	}
	if c.MQTTUrl != "" && !hasScheme(c.MQTTUrl, "ws://", "wss://", "mqtt://", "mqtts://") {
		return fmt.Errorf("MQTT URL must use supported protocol (ws://, wss://, mqtt://, or mqtts://)")
	}
	if c.NATSUrl != "" && !hasScheme(c.NATSUrl, "nats://", "tls://", "ws://", "wss://") {
		return fmt.Errorf("NATS URL must use supported protocol (nats://, tls://, ws://, or wss://)")
	}
	if c.WebhookURL != "" && !hasScheme(c.WebhookURL, "http://", "https://") {
		return fmt.Errorf("webhook URL must use http:// or https://")
	}
	if c.WebhookToken != "" && c.WebhookURL == "" {
		return fmt.Errorf("webhook URL is required when a webhook token is provided")
	}
	if c.HasNATS() && c.NATSSubjectPrefix == "" {
		c.NATSSubjectPrefix = DefaultNATSSubjectPrefix
	}
	if c.DiscoveryPrefix == "" {
		c.DiscoveryPrefix = DefaultDiscoveryPrefix
	}

	if c.BridgeTimeout <= 0 {
		c.BridgeTimeout = int(BridgeTimeout / time.Second)
	}
	defaultDuration(&c.PollInterval, BridgePollInterval)
	defaultDuration(&c.FastInterval, FastTransmitInterval)
	defaultDuration(&c.MQTTInterval, MQTTTransmitInterval)
	defaultDuration(&c.NATSInterval, NATSTransmitInterval)
	defaultDuration(&c.WebhookInterval, WebhookTransmitInterval)
	defaultDuration(&c.ExportInterval, ExportInterval)
	if c.ForceUpdateInterval < 0 {
		c.ForceUpdateInterval = 0
	}
	return nil
}

func hasScheme(u string, schemes ...string) bool {
	for _, s := range schemes {
		if strings.HasPrefix(u, s) {
			return true
		}
	}
	return false
}

func defaultDuration(d *time.Duration, def time.Duration) {
	if *d <= 0 {
		*d = def
	}
}

// HasMQTT returns true if MQTT is configured.
func (c *Config) HasMQTT() bool { return c.MQTTUrl != "" }

// HasNATS returns true if NATS is configured.
func (c *Config) HasNATS() bool { return c.NATSUrl != "" }

// HasWebhook returns true if the webhook is configured.
func (c *Config) HasWebhook() bool { return c.WebhookURL != "" }

// HasExport returns true if reports are written to files.
func (c *Config) HasExport() bool { return c.OutputDir != "" }

// GetBridgeTimeout returns the bridge timeout as a duration.
func (c *Config) GetBridgeTimeout() time.Duration {
	return time.Duration(c.BridgeTimeout) * time.Second
}

// Policy returns the absent-value policy for state derivation.
func (c *Config) Policy() state.Policy {
	return state.Policy{TreatAbsentAsZero: !c.StrictAbsent}
}
