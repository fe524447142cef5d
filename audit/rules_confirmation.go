package audit

import (
	"strings"

	"github.com/warp/personnel-audit/generic"
)

const leaveApproved = "APPROVED"

func evalConfirmationTiming(in *Input) []Flag {
	s := in.Snapshot
	th := in.th()
	var out []Flag

	if !s.IsConfirmed {
		if svc, ok := in.ServiceYears(); ok {
			switch {
			case svc >= th.UnconfirmedCriticalYears:
				out = append(out, flag(CategoryConfirmation,
					"still unconfirmed after %.1f years of service", svc).withSeverity(SeverityHigh))
			case svc >= th.UnconfirmedWarningYears:
				out = append(out, flag(CategoryConfirmation,
					"unconfirmed after %.1f years of service, beyond the probation period", svc).withSeverity(SeverityMedium))
			}
		}
		if g, ok := in.Grade(); ok && g >= th.UnconfirmedPromotedGrade && g > in.EntryGrade() {
			out = append(out, flag(CategoryConfirmation,
				"promoted to GL %02d from entry GL %02d without confirmation of appointment", g, in.EntryGrade()).withSeverity(SeverityHigh))
		}
		return out
	}

	if !s.ConfirmationDate.IsZero() && !s.FirstAppointment.IsZero() {
		// Negative gaps are a temporal-integrity violation, reported there.
		gap := generic.YearsBetween(s.FirstAppointment, s.ConfirmationDate)
		switch {
		case gap >= 0 && gap < th.ConfirmEarlyYears:
			out = append(out, flag(CategoryConfirmation,
				"confirmed %.1f years after first appointment, before the %.0f-year probation elapsed", gap, th.ProbationYears))
		case gap > th.ConfirmLateYears:
			out = append(out, flag(CategoryConfirmation,
				"confirmed %.1f years after first appointment, later than %.1f years", gap, th.ConfirmLateYears))
		}
	}

	if cg, ok := parseLevel(s.ConfirmationGradeLevel); ok {
		entry := in.EntryGrade()
		switch {
		case cg < entry:
			out = append(out, flag(CategoryConfirmation,
				"confirmed on GL %02d, below entry GL %02d", cg, entry))
		case cg > entry+th.ConfirmationGradeSpread:
			out = append(out, flag(CategoryConfirmation,
				"confirmed on GL %02d, more than %d grades above entry GL %02d", cg, th.ConfirmationGradeSpread, entry))
		}
	}

	if !present(s.ConfirmationLetterRef) {
		out = append(out, flag(CategoryConfirmation, "confirmed without a confirmation letter reference"))
	}

	if cs, ok := parseLevel(s.ConfirmationStep); ok && cs > th.MaxStep {
		out = append(out, flag(CategoryConfirmation, "confirmation step %02d exceeds the maximum step %02d", cs, th.MaxStep))
	}
	return out
}

func evalProbation(in *Input) []Flag {
	if !in.OnProbation() {
		return nil
	}
	s := in.Snapshot
	var out []Flag

	for _, l := range s.Leaves {
		if l.NormalizedStatus() != leaveApproved {
			continue
		}
		out = append(out, flag(CategoryProbation,
			"%s leave from %s approved during probation", strings.ToLower(strings.TrimSpace(l.Type)), l.StartDate))
	}

	if y, ok := parseYear(s.NYSCYear); ok && !s.FirstAppointment.IsZero() && y >= s.FirstAppointment.Year() {
		out = append(out, flag(CategoryProbation,
			"NYSC year %d is not before appointment year %d", y, s.FirstAppointment.Year()).withSeverity(SeverityHigh))
	}
	return out
}
