package audit

import (
	"strings"

	"github.com/warp/personnel-audit/generic"
)

// professionalBodies are substrings that mark a certificate type as issued
// by a professional or regulatory body.
var professionalBodies = []string{
	"ICAN", "ACCA", "CITN", "CIBN", "ANAN", "COREN", "MDCN", "NMC", "PCN",
	"TRCN", "NBA", "NIQS", "ARCON", "NIESV", "CIPM", "NIM", "CHARTERED",
	"PROFESSIONAL", "LICENSE", "LICENCE", "REGISTRATION", "FELLOW",
}

func evalEntryAge(in *Input) []Flag {
	s := in.Snapshot
	if s.DateOfBirth.IsZero() || s.FirstAppointment.IsZero() {
		return nil
	}
	age := generic.YearsBetween(s.DateOfBirth, s.FirstAppointment)
	th := in.th()
	switch {
	case age < th.MinEntryAge:
		return []Flag{flag(CategoryEntryAge, "appointed at age %.1f, below the minimum entry age of %.0f", age, th.MinEntryAge)}
	case age > th.MaxEntryAge:
		return []Flag{flag(CategoryEntryAge, "appointed at age %.1f, above the maximum entry age of %.0f", age, th.MaxEntryAge)}
	}
	return nil
}

func evalQualificationEntry(in *Input) []Flag {
	s := in.Snapshot
	code := NormalizeQualification(s.HighestQualification)
	if code == "" {
		return nil
	}
	entry := in.EntryGrade()

	var out []Flag
	if req, ok := in.Params.QualificationOverrides[code]; ok {
		if req.MinGradeLevel > 0 && entry < req.MinGradeLevel {
			out = append(out, flag(CategoryQualification,
				"entry grade GL %02d is below the cadre minimum GL %02d for %s holders", entry, req.MinGradeLevel, code))
		}
		if req.Designation != "" && present(s.Designation) {
			// Only meaningful while the officer still holds the entry grade.
			if g, ok := in.Grade(); ok && g == entry && !strings.EqualFold(strings.TrimSpace(s.Designation), req.Designation) {
				out = append(out, flag(CategoryQualification,
					"designation %q does not match the required entry designation %q for %s holders", s.Designation, req.Designation, code))
			}
		}
		return out
	}

	if minGrade, ok := MinimumEntryGrade(code); ok && entry < minGrade {
		out = append(out, flag(CategoryQualification,
			"entry grade GL %02d is below the minimum GL %02d for %s holders", entry, minGrade, code))
	}
	return out
}

func evalProfessionalCertificate(in *Input) []Flag {
	if !in.Params.RequiresProfessionalCertificate {
		return nil
	}
	for _, c := range in.Snapshot.Certificates {
		t := strings.ToUpper(c.Type)
		for _, kw := range professionalBodies {
			if strings.Contains(t, kw) {
				return nil
			}
		}
	}
	return []Flag{flag(CategoryProfessionalCert,
		"cadre %q requires a professional certificate and none is on file", in.Snapshot.Cadre).withSeverity(SeverityMedium)}
}

func evalCadreBounds(in *Input) []Flag {
	g, ok := in.Grade()
	if !ok {
		return nil
	}
	p := in.Params
	switch {
	case p.CadreMinGrade > 0 && g < p.CadreMinGrade:
		return []Flag{flag(CategoryCadreBounds, "GL %02d is below the cadre minimum GL %02d", g, p.CadreMinGrade)}
	case p.CadreMaxGrade > 0 && g > p.CadreMaxGrade:
		return []Flag{flag(CategoryCadreBounds, "GL %02d is above the cadre maximum GL %02d", g, p.CadreMaxGrade)}
	}
	return nil
}
