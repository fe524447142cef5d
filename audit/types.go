/*
Package audit implements the personnel Compliance Audit Engine.

PURPOSE:
  Takes a snapshot of one employee's career record plus the regulatory
  parameters of their cadre, and produces the list of policy violations
  with an aggregated severity. The engine is advisory: it detects, it never
  mutates a record, performs I/O, or recommends remediation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Snapshot: The immutable input, assembled fresh by the caller on every write
  - Promotion / CareerAction: Two historical shapes of the same career event
  - Certificate / LeaveRecord: Supporting documents and absences
  - Flag: One violation, "<Category>: <description>", with a severity floor
  - Result: The aggregate returned to the caller and persisted verbatim

DESIGN PRINCIPLES:
  1. Determinism: identical snapshot + params + as-of date => identical result
  2. Availability over strictness: unparsable fields are "no opinion", the
     dependent checks are skipped instead of failing the audit
  3. Typed evidence: monetary figures ride on the Flag as decimals, severity
     never re-derives a number from formatted text
  4. Independence: every rule section is a pure function of its Input

USAGE:
  engine := audit.NewEngine(salary.DefaultTable())
  snap.Params = cadreParams
  result := engine.Audit(snap)
  if result.IsFlagged {
      record.FlagReason = result.Joined()
      record.FlagSeverity = result.Severity
  }

SEE ALSO:
  - params.go: Regulatory parameters and thresholds
  - progression.go: Career-progression simulator
  - rules.go: Rule section registry and evaluation order
  - engine.go: Orchestrator
*/
package audit

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/personnel-audit/generic"
)

// =============================================================================
// SNAPSHOT - One employee's career record at audit time
// =============================================================================

// Snapshot is the engine input. Grades, steps and salary stay strings so that
// whatever the registry captured is audited as captured; parsing happens per
// rule and failures mean "field absent".
type Snapshot struct {
	// Identity and timeline
	DateOfBirth        generic.TimePoint `json:"date_of_birth"`
	FirstAppointment   generic.TimePoint `json:"date_of_first_appointment"`
	PresentAppointment generic.TimePoint `json:"date_of_present_appointment"`
	ConfirmationDate   generic.TimePoint `json:"date_of_confirmation"`

	// Position
	GradeLevel      string `json:"grade_level"`
	Step            string `json:"step"`
	Designation     string `json:"designation"`
	EntryGradeLevel string `json:"entry_grade_level"`
	EntryStep       string `json:"entry_step"`

	// Confirmation
	ConfirmationGradeLevel string `json:"confirmation_grade_level"`
	ConfirmationStep       string `json:"confirmation_step"`
	ConfirmationLetterRef  string `json:"confirmation_letter_ref"`
	IsConfirmed            bool   `json:"is_confirmed"`

	// Compensation
	SalaryScale string `json:"salary_scale"`
	Salary      string `json:"salary"`

	// Education and service
	HighestQualification string            `json:"highest_qualification"`
	NYSCYear             string            `json:"nysc_year"`
	NYSCStatus           NYSCStatus        `json:"nysc_status"`
	IsSuspended          bool              `json:"is_suspended"`
	SuspensionDate       generic.TimePoint `json:"suspension_date"`
	SuspensionReason     string            `json:"suspension_reason"`

	// Organizational
	Ministry        string `json:"ministry"`
	Department      string `json:"department"`
	Cadre           string `json:"cadre"`
	AppointmentType string `json:"appointment_type"`
	State           string `json:"state"`

	// Collections
	Promotions    []Promotion    `json:"promotions,omitempty"`
	CareerActions []CareerAction `json:"career_actions,omitempty"`
	Certificates  []Certificate  `json:"certificates,omitempty"`
	Leaves        []LeaveRecord  `json:"leave_records,omitempty"`

	// Params are resolved by the caller from cadre/state configuration on
	// every audit; they are never stored with the record.
	Params Params `json:"-"`
}

// NYSCStatus is the national-service standing of the employee.
type NYSCStatus string

const (
	NYSCDischarged NYSCStatus = "DISCHARGED"
	NYSCExempted   NYSCStatus = "EXEMPTED"
	NYSCExcluded   NYSCStatus = "EXCLUDED"
	NYSCNone       NYSCStatus = "NONE"
)

// Normalize upper-cases the status; blank stays blank (absent).
func (s NYSCStatus) Normalize() NYSCStatus {
	return NYSCStatus(strings.ToUpper(strings.TrimSpace(string(s))))
}

// Promotion is the legacy shape of a career event.
type Promotion struct {
	Date         generic.TimePoint `json:"promotion_date"`
	GradeLevel   string            `json:"grade_level"`
	Step         string            `json:"step"`
	Designation  string            `json:"designation"`
	Salary       string            `json:"salary"`
	AuthorityRef string            `json:"authority_ref"`
	GazetteNo    string            `json:"gazette_number"`
}

// CareerAction is the typed, modern shape of a career event.
type CareerAction struct {
	Type            string            `json:"action_type"`
	EffectiveDate   generic.TimePoint `json:"effective_date"`
	FromGradeLevel  string            `json:"from_grade_level"`
	FromStep        string            `json:"from_step"`
	FromDesignation string            `json:"from_designation"`
	FromSalary      string            `json:"from_salary"`
	ToGradeLevel    string            `json:"to_grade_level"`
	ToStep          string            `json:"to_step"`
	ToDesignation   string            `json:"to_designation"`
	ToSalary        string            `json:"to_salary"`
	AuthorityRef    string            `json:"authority_ref"`
	GazetteNo       string            `json:"gazette_number"`
}

// Certificate is an academic or professional credential on file.
type Certificate struct {
	Type        string `json:"certificate_type"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	Number      string `json:"certificate_number"`
}

// LeaveRecord is one leave application.
type LeaveRecord struct {
	Type      string            `json:"leave_type"`
	StartDate generic.TimePoint `json:"start_date"`
	EndDate   generic.TimePoint `json:"end_date"`
	Status    string            `json:"status"`
}

// Window returns the leave as a date period.
func (l LeaveRecord) Window() generic.Period {
	return generic.Period{Start: l.StartDate, End: l.EndDate}
}

// NormalizedType upper-cases the leave type and folds separators to '_'.
func (l LeaveRecord) NormalizedType() string {
	return normalizeTag(l.Type)
}

// NormalizedStatus upper-cases the leave status.
func (l LeaveRecord) NormalizedStatus() string {
	return strings.ToUpper(strings.TrimSpace(l.Status))
}

// =============================================================================
// SEVERITY - Ordered, escalate-only
// =============================================================================

type Severity string

const (
	SeverityNone     Severity = ""
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Max returns the more severe of s and o.
func (s Severity) Max(o Severity) Severity {
	if o.Rank() > s.Rank() {
		return o
	}
	return s
}

func (s Severity) AtLeast(o Severity) bool { return s.Rank() >= o.Rank() }

// ParseSeverity accepts any case; unknown input yields SeverityNone.
func ParseSeverity(s string) Severity {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if sev.Rank() == 0 {
		return SeverityNone
	}
	return sev
}

// =============================================================================
// FLAG & RESULT
// =============================================================================

// Flag is one detected violation.
type Flag struct {
	Section  string   `json:"section"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity,omitempty"` // floor this flag imposes; empty = LOW

	// Overpayment carries the estimated excess pay for illegal promotions.
	Overpayment *decimal.Decimal `json:"overpayment,omitempty"`
}

// String renders "<Category>: <description>".
func (f Flag) String() string {
	return f.Category + ": " + f.Message
}

// Result is the audit output.
type Result struct {
	IsFlagged   bool              `json:"is_flagged"`
	FlagReason  []string          `json:"flag_reason"`
	Severity    Severity          `json:"severity,omitempty"`
	Flags       []Flag            `json:"flags,omitempty"`
	Progression Progression       `json:"theoretical_progression"`
	AsOf        generic.TimePoint `json:"as_of"`
}

// ReasonSeparator joins flag reasons into the persisted display string.
const ReasonSeparator = " | "

// Joined returns the flag reasons as a single display string.
func (r Result) Joined() string {
	return strings.Join(r.FlagReason, ReasonSeparator)
}

// HasCategory reports whether any flag carries the given category.
func (r Result) HasCategory(category string) bool {
	for _, f := range r.Flags {
		if f.Category == category {
			return true
		}
	}
	return false
}

// SplitReasons undoes Joined for a persisted display string.
func SplitReasons(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	return strings.Split(joined, ReasonSeparator)
}

func normalizeTag(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
