package audit

// Synthesize reduces the raised flags to one overall severity: absent when
// nothing was flagged, otherwise LOW escalated to the highest floor any flag
// imposes. Severity never downgrades.
func Synthesize(flags []Flag) Severity {
	if len(flags) == 0 {
		return SeverityNone
	}
	sev := SeverityLow
	for _, f := range flags {
		sev = sev.Max(f.Severity)
	}
	return sev
}
