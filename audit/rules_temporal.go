package audit

import (
	"github.com/warp/personnel-audit/generic"
)

type namedDate struct {
	label string
	date  generic.TimePoint
}

func evalTemporalIntegrity(in *Input) []Flag {
	s := in.Snapshot
	var out []Flag

	if !s.DateOfBirth.IsZero() && !s.FirstAppointment.IsZero() && !s.DateOfBirth.Before(s.FirstAppointment) {
		out = append(out, flag(CategoryTemporal,
			"date of birth %s is not before first appointment %s", s.DateOfBirth, s.FirstAppointment).withSeverity(SeverityHigh))
	}

	dates := []namedDate{
		{"date of birth", s.DateOfBirth},
		{"first appointment", s.FirstAppointment},
		{"present appointment", s.PresentAppointment},
		{"confirmation", s.ConfirmationDate},
		{"suspension", s.SuspensionDate},
	}
	for _, e := range in.History {
		label := e
		label.Date = generic.TimePoint{}
		dates = append(dates, namedDate{describeEntry(label), e.Date})
	}
	for _, d := range dates {
		if !d.date.IsZero() && d.date.After(in.AsOf) {
			out = append(out, flag(CategoryTemporal, "%s date %s is in the future", d.label, d.date))
		}
	}

	if !s.FirstAppointment.IsZero() {
		if !s.PresentAppointment.IsZero() && s.PresentAppointment.Before(s.FirstAppointment) {
			out = append(out, flag(CategoryTemporal,
				"present appointment %s precedes first appointment %s", s.PresentAppointment, s.FirstAppointment))
		}
		if !s.ConfirmationDate.IsZero() && s.ConfirmationDate.Before(s.FirstAppointment) {
			out = append(out, flag(CategoryTemporal,
				"confirmation %s precedes first appointment %s", s.ConfirmationDate, s.FirstAppointment))
		}
	}
	return out
}

func evalRetirementHorizon(in *Input) []Flag {
	p := in.Params
	warn := in.th().RetirementWarningYears
	var out []Flag

	if age, ok := in.Age(); ok {
		if left := float64(p.RetirementAge) - age; left >= 0 && left <= warn {
			out = append(out, flag(CategoryRetirementHorizon,
				"%.1f years to statutory retirement age of %d", left, p.RetirementAge).withSeverity(SeverityMedium))
		}
	}
	if svc, ok := in.ServiceYears(); ok {
		if left := float64(p.MaxServiceYears) - svc; left >= 0 && left <= warn {
			out = append(out, flag(CategoryRetirementHorizon,
				"%.1f years to the %d-year service limit", left, p.MaxServiceYears).withSeverity(SeverityMedium))
		}
	}
	return out
}

func evalCompulsoryRetirement(in *Input) []Flag {
	p := in.Params
	var out []Flag
	if age, ok := in.Age(); ok && age > float64(p.RetirementAge) {
		out = append(out, flag(CategoryCompulsoryRetirement,
			"age %.1f exceeds the compulsory retirement age of %d", age, p.RetirementAge).withSeverity(SeverityHigh))
	}
	if svc, ok := in.ServiceYears(); ok && svc > float64(p.MaxServiceYears) {
		out = append(out, flag(CategoryCompulsoryRetirement,
			"%.1f years of service exceeds the %d-year limit", svc, p.MaxServiceYears).withSeverity(SeverityHigh))
	}
	return out
}
