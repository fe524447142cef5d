/*
progression.go - Career-progression simulator

PURPOSE:
  Projects where an employee on a textbook, uninterrupted promotion track
  would stand today. The illegal-promotion detector compares the actual
  grade against this projection in both directions: above it is
  acceleration, more than one grade below it is stagnation.

ALGORITHM:
  Start at the entry grade (DefaultEntryGrade when unknown), step 1.
  For each completed year of service:
    1. yearsRequired = interval for the CURRENT theoretical grade
       (cadre IntervalRule, else 2 years <= GL06, 4 years >= GL15, 3 otherwise)
    2. yearsAtLevel++
    3. yearsAtLevel >= yearsRequired  -> grade+1, step 1, yearsAtLevel 0
       otherwise                      -> step+1, capped at MaxStep

EXAMPLE:
  Entry GL08, 3 full years, default intervals:
    year 1: GL08 step 2
    year 2: GL08 step 3
    year 3: GL09 step 1

SEE ALSO:
  - rules_progression.go: Illegal promotion and stagnation
  - rules_history.go: Uses YearsRequired for illegal-speed gaps
*/
package audit

import "github.com/warp/personnel-audit/generic"

// Progression is the simulator output.
type Progression struct {
	Grade        int `json:"grade_level"`
	Step         int `json:"step"`
	ServiceYears int `json:"service_years"`
}

// YearsRequired returns the promotion interval for a grade. The first rule
// whose range contains the grade wins; otherwise the default schedule.
func YearsRequired(grade int, rules []IntervalRule) int {
	for _, r := range rules {
		if r.Matches(grade) {
			return r.Years
		}
	}
	switch {
	case grade <= 6:
		return 2
	case grade >= 15:
		return 4
	default:
		return 3
	}
}

// Simulate runs the projection with the default step cap.
func Simulate(entryGrade int, firstAppointment, asOf generic.TimePoint, rules []IntervalRule) Progression {
	return simulate(entryGrade, firstAppointment, asOf, rules, DefaultThresholds())
}

func simulate(entryGrade int, firstAppointment, asOf generic.TimePoint, rules []IntervalRule, th Thresholds) Progression {
	grade := entryGrade
	if grade <= 0 {
		grade = th.DefaultEntryGrade
	}
	p := Progression{Grade: grade, Step: 1}
	if firstAppointment.IsZero() || asOf.IsZero() {
		return p
	}

	p.ServiceYears = generic.WholeYearsBetween(firstAppointment, asOf)
	yearsAtLevel := 0
	for year := 0; year < p.ServiceYears; year++ {
		required := YearsRequired(p.Grade, rules)
		yearsAtLevel++
		if yearsAtLevel >= required {
			p.Grade++
			p.Step = 1
			yearsAtLevel = 0
			continue
		}
		if p.Step < th.MaxStep {
			p.Step++
		}
	}
	return p
}
