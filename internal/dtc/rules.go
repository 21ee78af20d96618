package dtc

import "strings"

// Match reports whether a rule applies to an upper-cased code.
type Match func(code string) bool

// Prefix matches codes starting with p.
func Prefix(p string) Match {
	return func(code string) bool { return strings.HasPrefix(code, p) }
}

// Exact matches any of the listed codes.
func Exact(codes ...string) Match {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return func(code string) bool {
		_, ok := set[code]
		return ok
	}
}

// SeverityRule maps a matching code to a severity.
type SeverityRule struct {
	Match    Match
	Severity Severity
}

// SubsystemRule maps a matching code to a subsystem label.
type SubsystemRule struct {
	Match     Match
	Subsystem string
}

// SeverityRules is evaluated top to bottom; the first match wins. Codes that
// match nothing are SeverityLow.
var SeverityRules = []SeverityRule{
	{Exact("P0601", "P0602", "P0606"), SeverityCritical}, // ECU memory / programming / processor
	{Prefix("P0A"), SeverityCritical},                     // hybrid system
	{Prefix("P06"), SeverityCritical},                     // computer & output circuit
	{Prefix("C0"), SeverityCritical},                      // brakes, stability control
	{Prefix("P04"), SeverityMedium},                       // emissions
	{Prefix("P07"), SeverityMedium},                       // transmission
	{Prefix("P08"), SeverityMedium},                       // transmission
}

// SafetyRules mark a code safety-critical when any of them match.
var SafetyRules = []Match{
	Prefix("P0A"), // high-voltage hybrid system
	Prefix("C"),
	Exact("P0601", "P0602", "P0606", "P0562"),
}

// HybridRules mark a code hybrid-related when any of them match.
var HybridRules = []Match{
	Prefix("P0A"),
	Prefix("P1A"),
	Exact("P3000", "P3001"),
}

// SubsystemRules is first-match-wins; the domain fallback applies when
// nothing matches.
var SubsystemRules = []SubsystemRule{
	{Prefix("P0A"), "Hybrid/Electric System"},
	{Prefix("P1A"), "Hybrid/Electric System"},
	{Prefix("P01"), "Fuel/Air Metering and Auxiliary Emissions"},
	{Prefix("P02"), "Fuel/Air Metering and Auxiliary Emissions"},
	{Prefix("P03"), "Ignition System"},
	{Prefix("P04"), "Emissions Control"},
	{Prefix("P05"), "Vehicle Speed & Idle Control"},
	{Prefix("P06"), "Vehicle Speed & Idle Control"},
	{Prefix("P07"), "Transmission"},
	{Prefix("P08"), "Transmission"},
}

var domainSubsystems = map[Domain]string{
	DomainPowertrain: "Powertrain (General)",
	DomainChassis:    "Chassis System",
	DomainBody:       "Body System",
	DomainNetwork:    "Network Communication",
}

var domainByLetter = map[byte]Domain{
	'P': DomainPowertrain,
	'C': DomainChassis,
	'B': DomainBody,
	'U': DomainNetwork,
}

var codeTypeByDigit = map[byte]CodeType{
	'0': CodeTypeGeneric,
	'2': CodeTypeGeneric,
	'1': CodeTypeManufacturer,
	'3': CodeTypeManufacturer,
}

func anyMatch(rules []Match, code string) bool {
	for _, m := range rules {
		if m(code) {
			return true
		}
	}
	return false
}
