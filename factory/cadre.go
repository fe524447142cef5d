/*
Package factory provides JSON to Go cadre conversion.

PURPOSE:
  Converts JSON cadre definitions into audit.Params. Regulatory limits
  (retirement age, promotion intervals, entry rules, grade bounds) change by
  cadre and by state; keeping them in JSON lets an establishments officer
  adjust them without a release, and the registry stores them verbatim.

JSON SCHEMA:
  {
    "id": "teaching",
    "name": "Teaching Service",
    "retirement_age": 65,
    "max_service_years": 40,
    "promotion_intervals": {"03-06": 2, "07-14": 3, "15-17": 4},
    "requires_nysc": true,
    "qualification_overrides": {
      "NCE": {"min_grade_level": 7, "designation": "Education Officer II"}
    },
    "min_grade_level": 6,
    "max_grade_level": 17,
    "requires_professional_certificate": true,
    "thresholds": {"max_entry_age": 45}
  }

  Every field except id is optional. Missing limits fall back to
  audit.DefaultParams() when the engine normalizes them.

USAGE:
  f := factory.NewCadreFactory()
  params, cj, err := f.ParseCadre(factory.TeachingCadreJSON())
  snapshot.Params = *params

SEE ALSO:
  - audit/params.go: Params and defaults
  - presets.go: Built-in cadre definitions
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// CadreJSON is the JSON representation of a cadre.
type CadreJSON struct {
	ID                              string                     `json:"id"`
	Name                            string                     `json:"name"`
	RetirementAge                   int                        `json:"retirement_age,omitempty"`
	MaxServiceYears                 int                        `json:"max_service_years,omitempty"`
	PromotionIntervals              map[string]int             `json:"promotion_intervals,omitempty"`
	RequiresNYSC                    *bool                      `json:"requires_nysc,omitempty"` // nil = required
	QualificationOverrides          map[string]RequirementJSON `json:"qualification_overrides,omitempty"`
	MinGradeLevel                   int                        `json:"min_grade_level,omitempty"`
	MaxGradeLevel                   int                        `json:"max_grade_level,omitempty"`
	RequiresProfessionalCertificate bool                       `json:"requires_professional_certificate,omitempty"`
	Thresholds                      *ThresholdsJSON            `json:"thresholds,omitempty"`
}

// RequirementJSON is a cadre-specific entry rule for one qualification.
type RequirementJSON struct {
	MinGradeLevel int    `json:"min_grade_level,omitempty"`
	Designation   string `json:"designation,omitempty"`
}

// ThresholdsJSON overrides individual audit thresholds. Zero keeps the default.
type ThresholdsJSON struct {
	MinEntryAge            float64 `json:"min_entry_age,omitempty"`
	MaxEntryAge            float64 `json:"max_entry_age,omitempty"`
	ProbationYears         float64 `json:"probation_years,omitempty"`
	MaxStep                int     `json:"max_step,omitempty"`
	RetirementWarningYears float64 `json:"retirement_warning_years,omitempty"`
	SalaryTolerance        float64 `json:"salary_tolerance,omitempty"` // fraction, 0.05 = 5%
	MinPlausibleSalary     int64   `json:"min_plausible_salary,omitempty"`
	MaxHistoryGapYears     float64 `json:"max_history_gap_years,omitempty"`
	MaxNYSCGapYears        int     `json:"max_nysc_gap_years,omitempty"`
	MinistryRequiredGrade  int     `json:"ministry_required_grade,omitempty"`
	DefaultEntryGrade      int     `json:"default_entry_grade,omitempty"`
}

// =============================================================================
// CADRE FACTORY
// =============================================================================

// CadreFactory converts JSON cadres to audit parameters.
type CadreFactory struct{}

func NewCadreFactory() *CadreFactory {
	return &CadreFactory{}
}

// ParseCadre parses a JSON string into Params and the validated CadreJSON.
func (f *CadreFactory) ParseCadre(jsonStr string) (*audit.Params, *CadreJSON, error) {
	var cj CadreJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return nil, nil, &generic.ValidationError{Field: "cadre", Message: "malformed JSON", Err: fmt.Errorf("%w: %v", generic.ErrInvalidConfig, err)}
	}
	params, err := f.FromJSON(cj)
	if err != nil {
		return nil, nil, err
	}
	return params, &cj, nil
}

// FromJSON validates a CadreJSON and converts it to Params.
func (f *CadreFactory) FromJSON(cj CadreJSON) (*audit.Params, error) {
	if err := validate(cj); err != nil {
		return nil, err
	}

	rules, err := audit.ParseIntervalRules(cj.PromotionIntervals)
	if err != nil {
		return nil, invalid("promotion_intervals", err.Error())
	}

	params := &audit.Params{
		RetirementAge:                   cj.RetirementAge,
		MaxServiceYears:                 cj.MaxServiceYears,
		PromotionIntervals:              rules,
		RequiresNYSC:                    cj.RequiresNYSC,
		CadreMinGrade:                   cj.MinGradeLevel,
		CadreMaxGrade:                   cj.MaxGradeLevel,
		RequiresProfessionalCertificate: cj.RequiresProfessionalCertificate,
	}

	if len(cj.QualificationOverrides) > 0 {
		params.QualificationOverrides = make(map[string]audit.EntryRequirement, len(cj.QualificationOverrides))
		for code, req := range cj.QualificationOverrides {
			params.QualificationOverrides[audit.NormalizeQualification(code)] = audit.EntryRequirement{
				MinGradeLevel: req.MinGradeLevel,
				Designation:   strings.TrimSpace(req.Designation),
			}
		}
	}

	if cj.Thresholds != nil {
		params.Thresholds = parseThresholds(*cj.Thresholds)
	}

	normalized := params.Normalize()
	return &normalized, nil
}

// ToJSON converts Params back to a CadreJSON.
func (f *CadreFactory) ToJSON(id, name string, p audit.Params) CadreJSON {
	cj := CadreJSON{
		ID:                              id,
		Name:                            name,
		RetirementAge:                   p.RetirementAge,
		MaxServiceYears:                 p.MaxServiceYears,
		RequiresNYSC:                    p.RequiresNYSC,
		MinGradeLevel:                   p.CadreMinGrade,
		MaxGradeLevel:                   p.CadreMaxGrade,
		RequiresProfessionalCertificate: p.RequiresProfessionalCertificate,
	}
	if len(p.PromotionIntervals) > 0 {
		cj.PromotionIntervals = make(map[string]int, len(p.PromotionIntervals))
		for _, r := range p.PromotionIntervals {
			cj.PromotionIntervals[r.Key()] = r.Years
		}
	}
	if len(p.QualificationOverrides) > 0 {
		cj.QualificationOverrides = make(map[string]RequirementJSON, len(p.QualificationOverrides))
		for code, req := range p.QualificationOverrides {
			cj.QualificationOverrides[code] = RequirementJSON{MinGradeLevel: req.MinGradeLevel, Designation: req.Designation}
		}
	}
	cj.Thresholds = thresholdsToJSON(p.Thresholds)
	return cj
}

// thresholdsToJSON keeps only the overrides that differ from the defaults;
// nil when there are none.
func thresholdsToJSON(th audit.Thresholds) *ThresholdsJSON {
	d := audit.DefaultThresholds()
	var (
		tj      ThresholdsJSON
		changed bool
	)
	setF := func(dst *float64, v, def float64) {
		if v > 0 && v != def {
			*dst, changed = v, true
		}
	}
	setI := func(dst *int, v, def int) {
		if v > 0 && v != def {
			*dst, changed = v, true
		}
	}
	setF(&tj.MinEntryAge, th.MinEntryAge, d.MinEntryAge)
	setF(&tj.MaxEntryAge, th.MaxEntryAge, d.MaxEntryAge)
	setF(&tj.ProbationYears, th.ProbationYears, d.ProbationYears)
	setI(&tj.MaxStep, th.MaxStep, d.MaxStep)
	setF(&tj.RetirementWarningYears, th.RetirementWarningYears, d.RetirementWarningYears)
	setF(&tj.MaxHistoryGapYears, th.MaxHistoryGapYears, d.MaxHistoryGapYears)
	setI(&tj.MaxNYSCGapYears, th.MaxNYSCGapYears, d.MaxNYSCGapYears)
	setI(&tj.MinistryRequiredGrade, th.MinistryRequiredGrade, d.MinistryRequiredGrade)
	setI(&tj.DefaultEntryGrade, th.DefaultEntryGrade, d.DefaultEntryGrade)
	if th.SalaryTolerance.IsPositive() && !th.SalaryTolerance.Equal(d.SalaryTolerance) {
		tj.SalaryTolerance, _ = th.SalaryTolerance.Float64()
		changed = true
	}
	if th.MinPlausibleSalary.IsPositive() && !th.MinPlausibleSalary.Equal(d.MinPlausibleSalary) {
		tj.MinPlausibleSalary = th.MinPlausibleSalary.IntPart()
		changed = true
	}
	if !changed {
		return nil
	}
	return &tj
}

// =============================================================================
// VALIDATION
// =============================================================================

func validate(cj CadreJSON) error {
	if strings.TrimSpace(cj.ID) == "" {
		return invalid("id", "is required")
	}
	if cj.RetirementAge != 0 && (cj.RetirementAge < 40 || cj.RetirementAge > 75) {
		return invalid("retirement_age", fmt.Sprintf("%d is outside 40-75", cj.RetirementAge))
	}
	if cj.MaxServiceYears < 0 || cj.MaxServiceYears > 50 {
		return invalid("max_service_years", fmt.Sprintf("%d is outside 0-50", cj.MaxServiceYears))
	}
	for _, g := range []struct {
		field string
		value int
	}{{"min_grade_level", cj.MinGradeLevel}, {"max_grade_level", cj.MaxGradeLevel}} {
		if g.value < 0 || g.value > 17 {
			return invalid(g.field, fmt.Sprintf("%d is outside 01-17", g.value))
		}
	}
	if cj.MinGradeLevel > 0 && cj.MaxGradeLevel > 0 && cj.MinGradeLevel > cj.MaxGradeLevel {
		return invalid("min_grade_level", "must not exceed max_grade_level")
	}

	codes := make([]string, 0, len(cj.QualificationOverrides))
	for code := range cj.QualificationOverrides {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		req := cj.QualificationOverrides[code]
		if audit.NormalizeQualification(code) == "" {
			return invalid("qualification_overrides", fmt.Sprintf("empty qualification code %q", code))
		}
		if req.MinGradeLevel < 0 || req.MinGradeLevel > 17 {
			return invalid("qualification_overrides."+code, fmt.Sprintf("min_grade_level %d is outside 01-17", req.MinGradeLevel))
		}
	}

	if t := cj.Thresholds; t != nil {
		if t.MinEntryAge > 0 && t.MaxEntryAge > 0 && t.MinEntryAge >= t.MaxEntryAge {
			return invalid("thresholds.min_entry_age", "must be below max_entry_age")
		}
		if t.SalaryTolerance < 0 || t.SalaryTolerance >= 1 {
			return invalid("thresholds.salary_tolerance", "must be a fraction below 1")
		}
	}
	return nil
}

func invalid(field, msg string) error {
	return &generic.ValidationError{Field: field, Message: msg, Err: generic.ErrInvalidConfig}
}

func parseThresholds(tj ThresholdsJSON) audit.Thresholds {
	th := audit.Thresholds{
		MinEntryAge:            tj.MinEntryAge,
		MaxEntryAge:            tj.MaxEntryAge,
		ProbationYears:         tj.ProbationYears,
		MaxStep:                tj.MaxStep,
		RetirementWarningYears: tj.RetirementWarningYears,
		MaxHistoryGapYears:     tj.MaxHistoryGapYears,
		MaxNYSCGapYears:        tj.MaxNYSCGapYears,
		MinistryRequiredGrade:  tj.MinistryRequiredGrade,
		DefaultEntryGrade:      tj.DefaultEntryGrade,
	}
	if tj.SalaryTolerance > 0 {
		th.SalaryTolerance = decimal.NewFromFloat(tj.SalaryTolerance)
	}
	if tj.MinPlausibleSalary > 0 {
		th.MinPlausibleSalary = decimal.NewFromInt(tj.MinPlausibleSalary)
	}
	return th
}
