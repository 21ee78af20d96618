package config

import "time"

// Central place for timing constants and other defaults.

const (
	// Polling / transmission intervals
	BridgePollInterval      = 5 * time.Second  // Poll the OBD bridge
	FastTransmitInterval    = 5 * time.Second  // Cadence while moving or CRITICAL
	MQTTTransmitInterval    = 30 * time.Second // Publish to MQTT
	NATSTransmitInterval    = 10 * time.Second // Publish to NATS
	WebhookTransmitInterval = 30 * time.Second // POST to the webhook
	ExportInterval          = 60 * time.Second // Write JSON files

	// Operation time-outs (to avoid blocking goroutines)
	BridgeTimeout   = 8 * time.Second  // OBD bridge HTTP call
	TransmitTimeout = 10 * time.Second // Any single transmit

	// Faults not seen for this long are reported as cleared.
	DefaultFaultCacheTTL = time.Hour

	DefaultBridgeURL         = "http://localhost:35000"
	DefaultDiscoveryPrefix   = "homeassistant"
	DefaultNATSSubjectPrefix = "obd_diag"
	DefaultDeviceID          = "obd_vehicle"
)
