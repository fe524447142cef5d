package audit

func evalNYSC(in *Input) []Flag {
	s := in.Snapshot
	th := in.th()

	status := s.NYSCStatus.Normalize()
	year, hasYear := parseYear(s.NYSCYear)
	// A recorded service year with no status is read as a discharge.
	if status == "" && hasYear {
		status = NYSCDischarged
	}

	switch status {
	case NYSCExempted, NYSCExcluded:
		return nil
	case "", NYSCNone:
		// Only a missing record is conditional on the qualification and cadre.
		if in.Params.NYSCRequired() && RequiresNYSCService(s.HighestQualification) {
			return []Flag{flag(CategoryNYSC,
				"%s holder has no NYSC discharge or exemption on record", NormalizeQualification(s.HighestQualification)).withSeverity(SeverityHigh)}
		}
		return nil
	}

	if !hasYear {
		return []Flag{flag(CategoryNYSC, "NYSC status %s with no service year recorded", status)}
	}

	var out []Flag
	if year > in.AsOf.Year() {
		out = append(out, flag(CategoryNYSC, "NYSC year %d is in the future", year))
	}
	if !s.FirstAppointment.IsZero() {
		appt := s.FirstAppointment.Year()
		if year > appt {
			out = append(out, flag(CategoryNYSC, "NYSC year %d is after appointment year %d", year, appt))
		} else if appt-year > th.MaxNYSCGapYears {
			out = append(out, flag(CategoryNYSC,
				"%d years between NYSC (%d) and appointment (%d), more than %d", appt-year, year, appt, th.MaxNYSCGapYears))
		}
	}
	if !s.DateOfBirth.IsZero() {
		age := year - s.DateOfBirth.Year()
		switch {
		case age < th.MinNYSCAge:
			out = append(out, flag(CategoryNYSC, "NYSC in %d implies age %d, below %d", year, age, th.MinNYSCAge))
		case age > th.MaxNYSCAge:
			out = append(out, flag(CategoryNYSC, "NYSC in %d implies age %d, above %d", year, age, th.MaxNYSCAge))
		}
	}
	return out
}
