// Package dtc parses and classifies OBD-II diagnostic trouble codes.
//
// Classification depends on the code string alone; the description is carried
// through untouched. All decisions come from the ordered rule tables in
// rules.go so new codes can be added without touching Classify.
package dtc

import "strings"

// Classify derives domain, type, subsystem, severity and the safety / hybrid
// flags for a single code. Malformed or short codes never fail; they simply
// classify as Unknown.
func Classify(code, description string) ClassifiedFault {
	code = strings.ToUpper(code)
	domain := parseDomain(code)

	return ClassifiedFault{
		Code:           code,
		Description:    description,
		Domain:         domain,
		CodeType:       parseCodeType(code),
		Subsystem:      subsystem(code, domain),
		Severity:       severity(code),
		SafetyCritical: anyMatch(SafetyRules, code),
		HybridRelated:  anyMatch(HybridRules, code),
	}
}

// ClassifyAll classifies every fault, preserving input order.
func ClassifyAll(raw []RawFault) []ClassifiedFault {
	out := make([]ClassifiedFault, 0, len(raw))
	for _, f := range raw {
		out = append(out, Classify(f.Code, f.Description))
	}
	return out
}

func parseDomain(code string) Domain {
	if code == "" {
		return DomainUnknown
	}
	if d, ok := domainByLetter[code[0]]; ok {
		return d
	}
	return DomainUnknown
}

func parseCodeType(code string) CodeType {
	if len(code) < 2 {
		return CodeTypeUnknown
	}
	if t, ok := codeTypeByDigit[code[1]]; ok {
		return t
	}
	return CodeTypeUnknown
}

func subsystem(code string, domain Domain) string {
	for _, r := range SubsystemRules {
		if r.Match(code) {
			return r.Subsystem
		}
	}
	if s, ok := domainSubsystems[domain]; ok {
		return s
	}
	return "Unknown"
}

func severity(code string) Severity {
	for _, r := range SeverityRules {
		if r.Match(code) {
			return r.Severity
		}
	}
	return SeverityLow
}
