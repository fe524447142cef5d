package audit

import (
	"github.com/shopspring/decimal"
	"github.com/warp/personnel-audit/generic"
)

var hundred = decimal.NewFromInt(100)

func evalStepBounds(in *Input) []Flag {
	s := in.Snapshot
	maxStep := in.th().MaxStep
	step, hasStep := in.Step()
	grade, hasGrade := in.Grade()
	var out []Flag

	if hasStep {
		if step > maxStep {
			out = append(out, flag(CategoryStep, "step %02d exceeds the maximum step %02d", step, maxStep))
		}
		if step <= 0 {
			out = append(out, flag(CategoryStep, "step %q is not a valid step", s.Step))
		}
	}
	if present(s.Step) && !hasGrade {
		out = append(out, flag(CategoryStep, "step %q recorded without a grade level", s.Step))
	}

	entryStep, hasEntryStep := in.EntryStep()
	if hasEntryStep && entryStep > maxStep {
		out = append(out, flag(CategoryStep, "entry step %02d exceeds the maximum step %02d", entryStep, maxStep))
	}
	if entryGrade, ok := parseLevel(s.EntryGradeLevel); ok && hasGrade && hasStep && hasEntryStep &&
		grade == entryGrade && step < entryStep {
		out = append(out, flag(CategoryStep,
			"step %02d is below entry step %02d while still on entry GL %02d", step, entryStep, grade))
	}
	return out
}

func evalSalaryConsistency(in *Input) []Flag {
	s := in.Snapshot
	if !present(s.Salary) {
		return nil
	}
	th := in.th()
	grade, hasGrade := in.Grade()
	var out []Flag

	if !hasGrade {
		out = append(out, flag(CategorySalary, "salary %s recorded without a grade level", s.Salary))
	}
	actual, ok := generic.ParseAmount(s.Salary)
	if !ok {
		return out
	}
	if !actual.IsPositive() {
		return append(out, flag(CategorySalary, "salary %s is not a positive amount", generic.Naira(actual)))
	}
	if actual.LessThan(th.MinPlausibleSalary) {
		out = append(out, flag(CategorySalary,
			"salary %s is below the plausible minimum of %s", generic.Naira(actual), generic.Naira(th.MinPlausibleSalary)))
	}

	step, hasStep := in.Step()
	if !hasGrade || !hasStep || in.Salary == nil {
		return out
	}
	expected, ok := in.Salary.Lookup(grade, step, s.SalaryScale)
	if !ok || !expected.IsPositive() {
		return out
	}
	deviation := actual.Sub(expected).Abs().Div(expected)
	if deviation.GreaterThan(th.SalaryTolerance) {
		out = append(out, flag(CategorySalary,
			"salary %s differs from the GL %02d step %02d scale amount %s by %s%%",
			generic.Naira(actual), grade, step, generic.Naira(expected), deviation.Mul(hundred).StringFixed(1)))
	}
	return out
}

func evalOrganization(in *Input) []Flag {
	s := in.Snapshot
	var out []Flag
	if g, ok := in.Grade(); ok && g >= in.th().MinistryRequiredGrade && !present(s.Ministry) {
		out = append(out, flag(CategoryOrganization, "GL %02d officer has no ministry recorded", g))
	}
	if present(s.Department) && !present(s.Ministry) {
		out = append(out, flag(CategoryOrganization, "department %q recorded without a ministry", s.Department))
	}
	return out
}
