package transmission

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jkaberg/obd-diag/internal/mqtt"
	"github.com/jkaberg/obd-diag/internal/report"
	"github.com/jkaberg/obd-diag/internal/sensors"
	"github.com/sirupsen/logrus"
)

// Publisher is the subset of *mqtt.Client the transmitter needs.
type Publisher interface {
	Publish(topic string, payload []byte, retained bool) error
	IsConnected() bool
	Topics() mqtt.Topics
}

// MQTTTransmitter publishes reports and a flat Home Assistant state payload.
type MQTTTransmitter struct {
	client          Publisher
	discoveryPrefix string
	entities        []Entity
	sensorKeys      []string
	logger          *logrus.Logger
	published       map[string]bool // discovery configs already sent
}

// HADiscoveryConfig is a Home Assistant MQTT discovery document.
type HADiscoveryConfig struct {
	Name              string   `json:"name"`
	UniqueID          string   `json:"unique_id"`
	StateTopic        string   `json:"state_topic"`
	ValueTemplate     string   `json:"value_template,omitempty"`
	DeviceClass       string   `json:"device_class,omitempty"`
	UnitOfMeasurement string   `json:"unit_of_measurement,omitempty"`
	Device            HADevice `json:"device"`
	AvailabilityTopic string   `json:"availability_topic"`
	Icon              string   `json:"icon,omitempty"`
	StateClass        string   `json:"state_class,omitempty"`
	EntityCategory    string   `json:"entity_category,omitempty"`
}

// HADevice groups all entities of one vehicle in Home Assistant.
type HADevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	SWVersion    string   `json:"sw_version,omitempty"`
}

// NewMQTTTransmitter creates a transmitter exposing the analysis entities and
// the published sensors of monitored.
func NewMQTTTransmitter(client Publisher, discoveryPrefix string, monitored []sensors.MonitoredPID, logger *logrus.Logger) *MQTTTransmitter {
	return &MQTTTransmitter{
		client:          client,
		discoveryPrefix: discoveryPrefix,
		entities:        Entities(monitored),
		sensorKeys:      sensors.PublishedKeys(monitored),
		logger:          logger,
		published:       make(map[string]bool),
	}
}

// Transmit publishes discovery (once per entity), the full report, the flat
// state and availability.
func (t *MQTTTransmitter) Transmit(ctx context.Context, r *report.DiagnosticReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !t.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	t.publishDiscovery()

	topics := t.client.Topics()

	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := t.client.Publish(topics.Report(), doc, true); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}

	state, err := json.Marshal(t.statePayload(r))
	if err != nil {
		return fmt.Errorf("failed to marshal state payload: %w", err)
	}
	if err := t.client.Publish(topics.State(), state, true); err != nil {
		return fmt.Errorf("failed to publish state: %w", err)
	}

	if err := t.client.Publish(topics.Availability(), []byte("online"), true); err != nil {
		return fmt.Errorf("failed to publish availability: %w", err)
	}

	t.logger.WithFields(logrus.Fields{
		"topic":  topics.Report(),
		"health": r.Analysis.HealthStatus,
		"dtcs":   r.DTCs.Count,
	}).Info("Published diagnostic report")
	return nil
}

// IsConnected reports the broker connection state.
func (t *MQTTTransmitter) IsConnected() bool { return t.client.IsConnected() }

// statePayload flattens the parts of a report that entities read. Absent
// sensors are sent as null.
func (t *MQTTTransmitter) statePayload(r *report.DiagnosticReport) map[string]any {
	codes := make([]string, 0, len(r.DTCs.Codes))
	for _, f := range r.DTCs.Codes {
		codes = append(codes, f.Code)
	}

	state := map[string]any{
		"health_status":             r.Analysis.HealthStatus,
		"drivable":                  r.Analysis.Drivable,
		"immediate_action_required": r.Analysis.ImmediateActionRequired,
		"recommendation":            r.Analysis.Recommendation,
		"warnings":                  strings.Join(r.Analysis.Warnings, "; "),
		"mode":                      r.VehicleState.Mode,
		"engine_overheating":        r.VehicleState.EngineOverheating,
		"high_voltage_present":      r.VehicleState.HighVoltagePresent,
		"dtc_count":                 r.DTCs.Count,
		"dtc_codes":                 strings.Join(codes, ","),
		"safety_critical_count":     r.DTCs.Summary.SafetyCritical,
	}
	for _, k := range t.sensorKeys {
		if v, ok := r.Sensors.Get(k); ok {
			state[k] = v
		} else {
			state[k] = nil
		}
	}
	return state
}

func (t *MQTTTransmitter) device() HADevice {
	id := t.client.Topics().DeviceID
	return HADevice{
		Identifiers:  []string{fmt.Sprintf("%s_%s", mqtt.TopicRoot, id)},
		Name:         fmt.Sprintf("OBD Diagnostics %s", id),
		Model:        "OBD-II",
		Manufacturer: "obd-diag",
		SWVersion:    report.DefaultVersion,
	}
}

// publishDiscovery sends the config of every entity not yet published.
// Failures are logged and retried on the next transmit.
func (t *MQTTTransmitter) publishDiscovery() {
	topics := t.client.Topics()
	device := t.device()

	for _, e := range t.entities {
		uniqueID := fmt.Sprintf("%s_%s", topics.DeviceID, e.Key)
		if t.published[uniqueID] {
			continue
		}

		cfg := HADiscoveryConfig{
			Name:              e.Name,
			UniqueID:          uniqueID,
			StateTopic:        topics.State(),
			ValueTemplate:     e.valueTemplate(),
			DeviceClass:       e.DeviceClass,
			UnitOfMeasurement: e.Unit,
			Device:            device,
			AvailabilityTopic: topics.Availability(),
			Icon:              e.Icon,
			StateClass:        e.StateClass,
			EntityCategory:    e.Category,
		}
		payload, err := json.Marshal(cfg)
		if err != nil {
			t.logger.WithError(err).WithField("entity", e.Key).Error("Failed to marshal discovery config")
			continue
		}

		topic := topics.Discovery(t.discoveryPrefix, e.Component, e.Key)
		if err := t.client.Publish(topic, payload, true); err != nil {
			t.logger.WithError(err).WithField("entity", e.Key).Warn("Failed to publish discovery config")
			continue
		}

		t.logger.WithFields(logrus.Fields{
			"entity": e.Key,
			"topic":  topic,
		}).Debug("Published discovery config")
		t.published[uniqueID] = true
	}
}
