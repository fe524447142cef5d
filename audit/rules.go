/*
rules.go - Rule section registry and shared evaluation input

PURPOSE:
  Every compliance check is a Rule: a pure function from the evaluation
  Input to zero or more Flags. The engine folds Sections() in order and
  concatenates their flags, so output order is stable and reproducible.

ORDER:
  Sections run in the order listed in Sections(). Apart from career history
  (which depends on the merged chronology prepared before any rule runs),
  sections do not read each other's output.

ADDING A SECTION:
  1. Write evalXxx(in *Input) []Flag in a rules_*.go file
  2. Add a Rule{ID, Category, Summary, Eval} to Sections()
  3. Test it in isolation with a hand-built Input (see rules_test.go)
*/
package audit

import (
	"fmt"

	"github.com/warp/personnel-audit/generic"
)

// Flag categories. Each flag reason renders as "<Category>: <description>".
const (
	CategoryEntryAge             = "ENTRY AGE"
	CategoryQualification        = "QUALIFICATION"
	CategoryProfessionalCert     = "PROFESSIONAL CERTIFICATE"
	CategoryCadreBounds          = "CADRE BOUNDS"
	CategoryTemporal             = "TEMPORAL INTEGRITY"
	CategoryRetirementHorizon    = "RETIREMENT HORIZON"
	CategoryConfirmation         = "CONFIRMATION"
	CategoryProbation            = "PROBATION"
	CategoryStep                 = "STEP"
	CategorySalary               = "SALARY"
	CategoryOrganization         = "ORGANIZATION"
	CategoryIllegalPromotion     = "ILLEGAL PROMOTION"
	CategoryStagnation           = "STAGNATION"
	CategoryCareerHistory        = "CAREER HISTORY"
	CategoryCertificate          = "CERTIFICATE"
	CategoryCompulsoryRetirement = "COMPULSORY RETIREMENT"
	CategoryNYSC                 = "NYSC"
	CategorySuspension           = "SUSPENSION"
	CategoryLeave                = "LEAVE"
)

// Rule is one independent validator.
type Rule struct {
	ID       string
	Category string
	Summary  string
	Eval     func(in *Input) []Flag
}

// Sections returns the rule sections in evaluation order.
func Sections() []Rule {
	return []Rule{
		{ID: "entry-age", Category: CategoryEntryAge, Summary: "Age at first appointment within the allowed band", Eval: evalEntryAge},
		{ID: "qualification-entry", Category: CategoryQualification, Summary: "Entry grade meets the qualification minimum", Eval: evalQualificationEntry},
		{ID: "professional-certificate", Category: CategoryProfessionalCert, Summary: "Cadre-mandated professional certificate on file", Eval: evalProfessionalCertificate},
		{ID: "cadre-bounds", Category: CategoryCadreBounds, Summary: "Current grade within cadre bounds", Eval: evalCadreBounds},
		{ID: "temporal-integrity", Category: CategoryTemporal, Summary: "Dates are ordered and not in the future", Eval: evalTemporalIntegrity},
		{ID: "retirement-horizon", Category: CategoryRetirementHorizon, Summary: "Approaching age or service retirement", Eval: evalRetirementHorizon},
		{ID: "confirmation-timing", Category: CategoryConfirmation, Summary: "Confirmation timing, grade and paperwork", Eval: evalConfirmationTiming},
		{ID: "probation", Category: CategoryProbation, Summary: "Restrictions during probation", Eval: evalProbation},
		{ID: "step-bounds", Category: CategoryStep, Summary: "Step within 01-15 and consistent with entry", Eval: evalStepBounds},
		{ID: "salary-consistency", Category: CategorySalary, Summary: "Salary matches the grade/step/scale table", Eval: evalSalaryConsistency},
		{ID: "organization", Category: CategoryOrganization, Summary: "Ministry and department recorded", Eval: evalOrganization},
		{ID: "progression", Category: CategoryIllegalPromotion, Summary: "Grade against theoretical progression", Eval: evalProgression},
		{ID: "career-history", Category: CategoryCareerHistory, Summary: "Chronology and paperwork of career events", Eval: evalCareerHistory},
		{ID: "certificates", Category: CategoryCertificate, Summary: "Certificate plausibility", Eval: evalCertificates},
		{ID: "compulsory-retirement", Category: CategoryCompulsoryRetirement, Summary: "Past retirement age or service limit", Eval: evalCompulsoryRetirement},
		{ID: "nysc", Category: CategoryNYSC, Summary: "National service requirement", Eval: evalNYSC},
		{ID: "suspension-leave", Category: CategorySuspension, Summary: "Suspension and leave status", Eval: evalSuspensionLeave},
	}
}

// =============================================================================
// INPUT - Everything a rule section may read
// =============================================================================

// Input is prepared once per audit and shared read-only by every section.
type Input struct {
	Snapshot    Snapshot
	Params      Params // normalized
	History     []HistoryEntry
	AsOf        generic.TimePoint
	Progression Progression
	Salary      SalaryLookup // may be nil: salary comparisons are skipped
}

// NewInput normalizes params, merges history and runs the simulator.
func NewInput(s Snapshot, asOf generic.TimePoint, lookup SalaryLookup) *Input {
	params := s.Params.Normalize()
	in := &Input{
		Snapshot: s,
		Params:   params,
		History:  MergeHistory(s.Promotions, s.CareerActions),
		AsOf:     asOf,
		Salary:   lookup,
	}
	in.Progression = simulate(in.EntryGrade(), s.FirstAppointment, asOf, params.PromotionIntervals, params.Thresholds)
	return in
}

func (in *Input) th() Thresholds { return in.Params.Thresholds }

func (in *Input) Grade() (int, bool)     { return parseLevel(in.Snapshot.GradeLevel) }
func (in *Input) Step() (int, bool)      { return parseLevel(in.Snapshot.Step) }
func (in *Input) EntryStep() (int, bool) { return parseLevel(in.Snapshot.EntryStep) }

// EntryGrade falls back to DefaultEntryGrade when the entry grade is missing
// or unparsable.
func (in *Input) EntryGrade() int {
	if g, ok := parseLevel(in.Snapshot.EntryGradeLevel); ok && g > 0 {
		return g
	}
	return in.th().DefaultEntryGrade
}

// Age is the fractional age at the as-of date.
func (in *Input) Age() (float64, bool) {
	if in.Snapshot.DateOfBirth.IsZero() {
		return 0, false
	}
	return generic.YearsBetween(in.Snapshot.DateOfBirth, in.AsOf), true
}

// ServiceYears is the fractional service since first appointment.
func (in *Input) ServiceYears() (float64, bool) {
	if in.Snapshot.FirstAppointment.IsZero() {
		return 0, false
	}
	return generic.YearsBetween(in.Snapshot.FirstAppointment, in.AsOf), true
}

// OnProbation is true while service is under the probation period and the
// employee is unconfirmed.
func (in *Input) OnProbation() bool {
	svc, ok := in.ServiceYears()
	return ok && svc >= 0 && svc < in.th().ProbationYears && !in.Snapshot.IsConfirmed
}

// =============================================================================
// FLAG HELPERS
// =============================================================================

func flag(category, format string, args ...any) Flag {
	return Flag{Category: category, Message: fmt.Sprintf(format, args...)}
}

func (f Flag) withSeverity(s Severity) Flag {
	f.Severity = s
	return f
}
