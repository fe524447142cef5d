package audit

type rankedCertificate struct {
	code string
	rank int
	year int
}

func evalCertificates(in *Input) []Flag {
	s := in.Snapshot
	var out []Flag

	if present(s.HighestQualification) && len(s.Certificates) == 0 {
		out = append(out, flag(CategoryCertificate,
			"highest qualification %s claimed with no certificate on file", NormalizeQualification(s.HighestQualification)))
	}

	var ranked []rankedCertificate
	for _, c := range s.Certificates {
		year, hasYear := parseYear(c.Year)
		if hasYear && year > in.AsOf.Year() {
			out = append(out, flag(CategoryCertificate, "%s certificate year %d is in the future", c.Type, year))
		}
		code, rank, ok := CertificateRank(c.Type)
		if !ok || !hasYear {
			continue
		}
		if !s.DateOfBirth.IsZero() {
			age := year - s.DateOfBirth.Year()
			if minAge, ok := MinimumAgeForRank(rank); ok && age < minAge {
				out = append(out, flag(CategoryCertificate,
					"%s awarded in %d implies age %d, below the plausible minimum of %d", code, year, age, minAge))
			}
		}
		ranked = append(ranked, rankedCertificate{code: code, rank: rank, year: year})
	}

	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			lo, hi := ranked[i], ranked[j]
			if lo.rank > hi.rank {
				lo, hi = hi, lo
			}
			if lo.rank < hi.rank && hi.year < lo.year {
				out = append(out, flag(CategoryCertificate,
					"%s (%d) predates the lower-level %s (%d)", hi.code, hi.year, lo.code, lo.year))
			}
		}
	}
	return out
}
