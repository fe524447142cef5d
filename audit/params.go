/*
params.go - Regulatory parameters and audit thresholds

PURPOSE:
  Everything the rule sections compare against lives here, injected by the
  caller alongside the snapshot. Cadre and state configuration resolve to a
  Params value (see factory/cadre.go); the engine never hardcodes a limit
  inside a rule.

DEFAULTS:
  DefaultParams() returns the conservative civil-service defaults:
  - Retirement at 60 years of age or 35 years of service
  - Promotion every 2 years up to GL 06, 3 years GL 07-14, 4 years GL 15+
  - NYSC required for tertiary qualifications
  - Entry age 18-50, probation 2 years, step cap 15

  Normalize() fills every zero-valued field from the defaults, so a partially
  configured cadre still gets a complete, conservative audit.

INTERVAL RULES:
  Promotion intervals are keyed by grade range, e.g. "03-06": 2 means a
  grade between 03 and 06 inclusive needs 2 years before the next grade.
  ParseIntervalRules() reads that map form into ordered IntervalRule values.

SEE ALSO:
  - progression.go: Consumes IntervalRule via YearsRequired
  - factory/cadre.go: JSON cadre configuration -> Params
*/
package audit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PARAMS - Cadre/state regulatory parameters
// =============================================================================

type Params struct {
	RetirementAge   int
	MaxServiceYears int

	PromotionIntervals []IntervalRule

	// RequiresNYSC defaults to true when nil.
	RequiresNYSC *bool

	// QualificationOverrides replace the static qualification table for this
	// cadre. Keys are normalized qualification codes.
	QualificationOverrides map[string]EntryRequirement

	// Cadre grade bounds; 0 means unbounded.
	CadreMinGrade int
	CadreMaxGrade int

	RequiresProfessionalCertificate bool

	Thresholds Thresholds
}

// EntryRequirement is a cadre-specific entry rule for one qualification.
type EntryRequirement struct {
	MinGradeLevel int
	Designation   string // required entry designation, empty = any
}

// IntervalRule maps an inclusive grade range to a promotion interval in years.
type IntervalRule struct {
	MinGrade int
	MaxGrade int
	Years    int
}

func (r IntervalRule) Matches(grade int) bool {
	return grade >= r.MinGrade && grade <= r.MaxGrade
}

func (r IntervalRule) Key() string {
	return fmt.Sprintf("%02d-%02d", r.MinGrade, r.MaxGrade)
}

// Thresholds are the numeric limits the rule sections apply.
type Thresholds struct {
	MinEntryAge float64
	MaxEntryAge float64

	ProbationYears float64
	MaxStep        int

	RetirementWarningYears float64

	ConfirmEarlyYears        float64
	ConfirmLateYears         float64
	UnconfirmedWarningYears  float64
	UnconfirmedCriticalYears float64
	ConfirmationGradeSpread  int
	UnconfirmedPromotedGrade int

	SalaryTolerance    decimal.Decimal
	MinPlausibleSalary decimal.Decimal

	// MinistryRequiredGrade is the lowest grade that must name a ministry.
	MinistryRequiredGrade int

	MaxHistoryGapYears    float64
	GradesPerPromotion    int
	MinDeltaForHistoryGap int

	MaxNYSCGapYears int
	MinNYSCAge      int
	MaxNYSCAge      int

	OverpaymentAdvisory decimal.Decimal // CRITICAL plus a recovery advisory flag
	OverpaymentCritical decimal.Decimal
	OverpaymentHigh     decimal.Decimal
	OverpaymentMedium   decimal.Decimal

	// DefaultEntryGrade is assumed whenever the entry grade is not recorded.
	DefaultEntryGrade int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinEntryAge:              18,
		MaxEntryAge:              50,
		ProbationYears:           2,
		MaxStep:                  15,
		RetirementWarningYears:   2,
		ConfirmEarlyYears:        1.9,
		ConfirmLateYears:         2.5,
		UnconfirmedWarningYears:  2.1,
		UnconfirmedCriticalYears: 5,
		ConfirmationGradeSpread:  2,
		UnconfirmedPromotedGrade: 10,
		SalaryTolerance:          decimal.RequireFromString("0.05"),
		MinPlausibleSalary:       decimal.NewFromInt(30000),
		MinistryRequiredGrade:    10,
		MaxHistoryGapYears:       6,
		GradesPerPromotion:       2,
		MinDeltaForHistoryGap:    3,
		MaxNYSCGapYears:          3,
		MinNYSCAge:               18,
		MaxNYSCAge:               35,
		OverpaymentAdvisory:      decimal.NewFromInt(1000000),
		OverpaymentCritical:      decimal.NewFromInt(500000),
		OverpaymentHigh:          decimal.NewFromInt(200000),
		OverpaymentMedium:        decimal.NewFromInt(50000),
		DefaultEntryGrade:        8,
	}
}

// DefaultParams returns the conservative civil-service defaults.
func DefaultParams() Params {
	requires := true
	return Params{
		RetirementAge:   60,
		MaxServiceYears: 35,
		RequiresNYSC:    &requires,
		Thresholds:      DefaultThresholds(),
	}
}

// NYSCRequired reports whether the cadre requires national service at all.
func (p Params) NYSCRequired() bool {
	return p.RequiresNYSC == nil || *p.RequiresNYSC
}

// Normalize returns a copy with every zero-valued field taken from defaults.
func (p Params) Normalize() Params {
	d := DefaultParams()
	if p.RetirementAge <= 0 {
		p.RetirementAge = d.RetirementAge
	}
	if p.MaxServiceYears <= 0 {
		p.MaxServiceYears = d.MaxServiceYears
	}
	if p.RequiresNYSC == nil {
		p.RequiresNYSC = d.RequiresNYSC
	}
	p.Thresholds = p.Thresholds.normalize(d.Thresholds)

	rules := make([]IntervalRule, len(p.PromotionIntervals))
	copy(rules, p.PromotionIntervals)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].MinGrade < rules[j].MinGrade })
	p.PromotionIntervals = rules
	return p
}

func (t Thresholds) normalize(d Thresholds) Thresholds {
	orF := func(v, def float64) float64 {
		if v <= 0 {
			return def
		}
		return v
	}
	orI := func(v, def int) int {
		if v <= 0 {
			return def
		}
		return v
	}
	orD := func(v, def decimal.Decimal) decimal.Decimal {
		if !v.IsPositive() {
			return def
		}
		return v
	}

	t.MinEntryAge = orF(t.MinEntryAge, d.MinEntryAge)
	t.MaxEntryAge = orF(t.MaxEntryAge, d.MaxEntryAge)
	t.ProbationYears = orF(t.ProbationYears, d.ProbationYears)
	t.MaxStep = orI(t.MaxStep, d.MaxStep)
	t.RetirementWarningYears = orF(t.RetirementWarningYears, d.RetirementWarningYears)
	t.ConfirmEarlyYears = orF(t.ConfirmEarlyYears, d.ConfirmEarlyYears)
	t.ConfirmLateYears = orF(t.ConfirmLateYears, d.ConfirmLateYears)
	t.UnconfirmedWarningYears = orF(t.UnconfirmedWarningYears, d.UnconfirmedWarningYears)
	t.UnconfirmedCriticalYears = orF(t.UnconfirmedCriticalYears, d.UnconfirmedCriticalYears)
	t.ConfirmationGradeSpread = orI(t.ConfirmationGradeSpread, d.ConfirmationGradeSpread)
	t.UnconfirmedPromotedGrade = orI(t.UnconfirmedPromotedGrade, d.UnconfirmedPromotedGrade)
	t.MinistryRequiredGrade = orI(t.MinistryRequiredGrade, d.MinistryRequiredGrade)
	t.SalaryTolerance = orD(t.SalaryTolerance, d.SalaryTolerance)
	t.MinPlausibleSalary = orD(t.MinPlausibleSalary, d.MinPlausibleSalary)
	t.MaxHistoryGapYears = orF(t.MaxHistoryGapYears, d.MaxHistoryGapYears)
	t.GradesPerPromotion = orI(t.GradesPerPromotion, d.GradesPerPromotion)
	t.MinDeltaForHistoryGap = orI(t.MinDeltaForHistoryGap, d.MinDeltaForHistoryGap)
	t.MaxNYSCGapYears = orI(t.MaxNYSCGapYears, d.MaxNYSCGapYears)
	t.MinNYSCAge = orI(t.MinNYSCAge, d.MinNYSCAge)
	t.MaxNYSCAge = orI(t.MaxNYSCAge, d.MaxNYSCAge)
	t.OverpaymentAdvisory = orD(t.OverpaymentAdvisory, d.OverpaymentAdvisory)
	t.OverpaymentCritical = orD(t.OverpaymentCritical, d.OverpaymentCritical)
	t.OverpaymentHigh = orD(t.OverpaymentHigh, d.OverpaymentHigh)
	t.OverpaymentMedium = orD(t.OverpaymentMedium, d.OverpaymentMedium)
	t.DefaultEntryGrade = orI(t.DefaultEntryGrade, d.DefaultEntryGrade)
	return t
}

// =============================================================================
// INTERVAL RULE PARSING
// =============================================================================

// ParseIntervalRules reads {"03-06": 2, "07": 3} into ordered rules. A single
// grade key covers just that grade. Ranges may not overlap, so at most one
// rule matches any grade.
func ParseIntervalRules(m map[string]int) ([]IntervalRule, error) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rules := make([]IntervalRule, 0, len(m))
	for _, key := range keys {
		years := m[key]
		lo, hi, err := parseGradeRange(key)
		if err != nil {
			return nil, err
		}
		if years <= 0 {
			return nil, fmt.Errorf("interval %q: years must be positive, got %d", key, years)
		}
		rules = append(rules, IntervalRule{MinGrade: lo, MaxGrade: hi, Years: years})
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].MinGrade != rules[j].MinGrade {
			return rules[i].MinGrade < rules[j].MinGrade
		}
		return rules[i].MaxGrade < rules[j].MaxGrade
	})
	for i := 1; i < len(rules); i++ {
		if prev, cur := rules[i-1], rules[i]; cur.MinGrade <= prev.MaxGrade {
			return nil, fmt.Errorf("interval %q overlaps %q", cur.Key(), prev.Key())
		}
	}
	return rules, nil
}

func parseGradeRange(key string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(key), "-", 2)
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("interval %q: bad lower grade", key)
	}
	hi := lo
	if len(parts) == 2 {
		hi, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("interval %q: bad upper grade", key)
		}
	}
	if lo < 1 || hi > 17 || lo > hi {
		return 0, 0, fmt.Errorf("interval %q: range must lie within 01-17", key)
	}
	return lo, hi, nil
}
