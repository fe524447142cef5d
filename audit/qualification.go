package audit

import (
	"strconv"
	"strings"
	"unicode"
)

// =============================================================================
// QUALIFICATION RESOLVER - Static entry-grade and academic-rank tables
// =============================================================================

// minimumEntryGrade is the lowest grade level a holder of the qualification
// may be appointed on.
var minimumEntryGrade = map[string]int{
	"FSLC": 2,
	"SSCE": 4, "WAEC": 4, "GCE": 4, "NECO": 4,
	"OND": 6, "NCE": 6,
	"BSC": 8, "BA": 8, "HND": 8, "BENG": 8, "MSC": 8, "MA": 8, "MENG": 8,
	"PHD": 9,
}

// qualificationRank orders certificate levels, lowest first.
var qualificationRank = map[string]int{
	"FSLC": 1,
	"SSCE": 2, "WAEC": 2, "GCE": 2, "NECO": 2,
	"OND": 3, "NCE": 3,
	"BSC": 4, "BA": 4, "HND": 4, "BENG": 4,
	"MSC": 5, "MA": 5, "MENG": 5,
	"PHD": 6,
}

// minimumCertificateAge is the youngest plausible age at award, by rank.
var minimumCertificateAge = map[int]int{
	1: 10,
	2: 15,
	3: 17,
	4: 19,
	5: 21,
	6: 24,
}

// NormalizeQualification upper-cases a code and strips punctuation and
// spaces, so "B.Sc." and "bsc" both resolve to "BSC".
func NormalizeQualification(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MinimumEntryGrade resolves the static minimum entry grade. Unknown codes
// report false: no constraint.
func MinimumEntryGrade(code string) (int, bool) {
	g, ok := minimumEntryGrade[NormalizeQualification(code)]
	return g, ok
}

// QualificationRank resolves the academic level of a code.
func QualificationRank(code string) (int, bool) {
	r, ok := qualificationRank[NormalizeQualification(code)]
	return r, ok
}

// CertificateRank resolves a certificate type that may be free text, such as
// "B.Sc Computer Science" or "WAEC (May/June)". The first recognised token
// wins.
func CertificateRank(certType string) (string, int, bool) {
	if r, ok := QualificationRank(certType); ok {
		return NormalizeQualification(certType), r, true
	}
	for _, tok := range strings.FieldsFunc(certType, func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == ')' || r == ',' || r == '/'
	}) {
		if r, ok := QualificationRank(tok); ok {
			return NormalizeQualification(tok), r, true
		}
	}
	return "", 0, false
}

// MinimumAgeForRank is the youngest plausible award age for a rank.
func MinimumAgeForRank(rank int) (int, bool) {
	a, ok := minimumCertificateAge[rank]
	return a, ok
}

// MinimumAgeForCertificate is the youngest plausible award age for a
// qualification code.
func MinimumAgeForCertificate(code string) (int, bool) {
	r, ok := QualificationRank(code)
	if !ok {
		return 0, false
	}
	return MinimumAgeForRank(r)
}

// RequiresNYSCService reports whether the qualification makes its holder
// liable for national service (HND and university degrees).
func RequiresNYSCService(code string) bool {
	r, ok := QualificationRank(code)
	return ok && r >= 4
}

// =============================================================================
// NUMERIC FIELD PARSING - absent or unparsable means "no opinion"
// =============================================================================

// ParseLevel reads a grade level or step the way the rule sections do.
func ParseLevel(s string) (int, bool) { return parseLevel(s) }

// parseLevel reads "08", "8", or "GL 08". Returns false for blank or garbage.
func parseLevel(s string) (int, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "GL"))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseYear reads a four-digit year.
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func present(s string) bool { return strings.TrimSpace(s) != "" }
