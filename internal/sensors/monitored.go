package sensors

import "strings"

// MonitoredPID is a sensor we request from the vehicle and, when Publish is
// true, expose in outward state payloads.
type MonitoredPID struct {
	ID      PID
	Name    string
	Publish bool
}

// ParseMonitored parses a comma separated list such as
// "SPEED,RPM,FUEL_PRESSURE:0". A ":0" suffix keeps the sensor internal
// (collected and used for state derivation, not published); ":1" or no suffix
// publishes it. Unknown names are returned in the second slice so the caller
// can warn about them. An empty or fully unknown list yields DefaultPIDs.
func ParseMonitored(list string) ([]MonitoredPID, []string) {
	var (
		out     []MonitoredPID
		unknown []string
	)

	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		publish := true
		name := p
		if before, after, ok := strings.Cut(p, ":"); ok {
			name = before
			if after == "0" {
				publish = false
			}
		}

		id := LookupPID(name)
		if id == PIDUnsupported {
			unknown = append(unknown, name)
			continue
		}
		out = append(out, MonitoredPID{ID: id, Name: id.String(), Publish: publish})
	}

	if len(out) == 0 {
		for _, name := range DefaultPIDs() {
			id := LookupPID(name)
			out = append(out, MonitoredPID{ID: id, Name: name, Publish: true})
		}
	}
	return out, unknown
}

// PollNames returns every monitored sensor name to request from the vehicle.
func PollNames(list []MonitoredPID) []string {
	names := make([]string, 0, len(list))
	for _, m := range list {
		names = append(names, m.Name)
	}
	return names
}

// PublishedKeys returns the standard keys of the sensors whose Publish flag
// is true.
func PublishedKeys(list []MonitoredPID) []string {
	keys := make([]string, 0, len(list))
	for _, m := range list {
		if m.Publish {
			keys = append(keys, StandardKey(m.Name))
		}
	}
	return keys
}
