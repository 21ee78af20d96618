package mqtt

import "fmt"

// TopicRoot prefixes every topic this service publishes.
const TopicRoot = "obd_diag"

// Topics is the topic layout for one device.
type Topics struct {
	DeviceID string
}

// NewTopics returns the layout for deviceID.
func NewTopics(deviceID string) Topics { return Topics{DeviceID: deviceID} }

// Base is "obd_diag/<device>".
func (t Topics) Base() string { return BuildCleanTopic(TopicRoot, t.DeviceID) }

// Report carries the full diagnostic report document.
func (t Topics) Report() string { return t.Base() + "/report" }

// State carries the flat Home Assistant state payload.
func (t Topics) State() string { return t.Base() + "/state" }

// Availability carries "online" / "offline".
func (t Topics) Availability() string { return t.Base() + "/availability" }

// Discovery is the Home Assistant discovery config topic for one entity.
func (t Topics) Discovery(prefix, component, objectID string) string {
	return fmt.Sprintf("%s/%s/%s_%s/%s/config", prefix, component, TopicRoot, t.DeviceID, objectID)
}
