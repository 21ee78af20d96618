package dtc

// BySeverity groups faults per severity. All three tiers are always present.
func BySeverity(faults []ClassifiedFault) map[Severity][]ClassifiedFault {
	out := map[Severity][]ClassifiedFault{
		SeverityCritical: {},
		SeverityMedium:   {},
		SeverityLow:      {},
	}
	for _, f := range faults {
		out[f.Severity] = append(out[f.Severity], f)
	}
	return out
}

// SafetyCritical returns only the safety-critical faults, in input order.
func SafetyCritical(faults []ClassifiedFault) []ClassifiedFault {
	return filter(faults, func(f ClassifiedFault) bool { return f.SafetyCritical })
}

// HybridRelated returns only the hybrid-related faults, in input order.
func HybridRelated(faults []ClassifiedFault) []ClassifiedFault {
	return filter(faults, func(f ClassifiedFault) bool { return f.HybridRelated })
}

// Summarize counts faults per severity tier and flag.
func Summarize(faults []ClassifiedFault) Summary {
	s := Summary{Total: len(faults)}
	for _, f := range faults {
		switch f.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityMedium:
			s.Medium++
		default:
			s.Low++
		}
		if f.SafetyCritical {
			s.SafetyCritical++
		}
		if f.HybridRelated {
			s.HybridRelated++
		}
	}
	return s
}

func filter(faults []ClassifiedFault, keep func(ClassifiedFault) bool) []ClassifiedFault {
	var out []ClassifiedFault
	for _, f := range faults {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
