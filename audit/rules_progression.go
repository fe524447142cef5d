package audit

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/warp/personnel-audit/generic"
)

var monthsPerYear = decimal.NewFromInt(12)

func evalProgression(in *Input) []Flag {
	if in.Snapshot.FirstAppointment.IsZero() {
		return nil
	}
	actual, ok := in.Grade()
	if !ok {
		return nil
	}
	theo := in.Progression

	switch {
	case actual > theo.Grade:
		return illegalPromotion(in, actual)
	case actual < theo.Grade-1:
		return []Flag{flag(CategoryStagnation,
			"GL %02d is %d grades below the expected GL %02d after %d years of service; possible stagnation or underpayment",
			actual, theo.Grade-actual, theo.Grade, theo.ServiceYears)}
	}
	return nil
}

func illegalPromotion(in *Input, actual int) []Flag {
	theo := in.Progression
	th := in.th()
	f := flag(CategoryIllegalPromotion,
		"GL %02d exceeds the expected GL %02d step %02d after %d years of service from entry GL %02d",
		actual, theo.Grade, theo.Step, theo.ServiceYears, in.EntryGrade())

	over, months, ok := estimateOverpayment(in, actual)
	if !ok {
		return []Flag{f}
	}
	f.Overpayment = &over
	f.Message += "; estimated overpayment " + generic.Naira(over).String() + " over " + pluralMonths(months)
	f.Severity = OverpaymentSeverity(over, th)

	out := []Flag{f}
	if over.GreaterThanOrEqual(th.OverpaymentAdvisory) {
		out = append(out, Flag{
			Category: CategoryIllegalPromotion,
			Message:  "estimated overpayment exceeds " + generic.Naira(th.OverpaymentAdvisory).String() + "; refer for salary recovery and disciplinary review",
			Severity: SeverityCritical,
		})
	}
	return out
}

// estimateOverpayment accrues the monthly difference between the actual and
// theoretical annual pay over the months spent at the present appointment.
func estimateOverpayment(in *Input, actualGrade int) (decimal.Decimal, int, bool) {
	s := in.Snapshot
	if in.Salary == nil || s.PresentAppointment.IsZero() {
		return decimal.Zero, 0, false
	}
	theo := in.Progression
	theoretical, ok := in.Salary.Lookup(theo.Grade, theo.Step, s.SalaryScale)
	if !ok {
		return decimal.Zero, 0, false
	}

	actual, ok := generic.ParseAmount(s.Salary)
	if !ok || !actual.IsPositive() {
		step, hasStep := in.Step()
		if !hasStep || step <= 0 {
			step = 1
		}
		if actual, ok = in.Salary.Lookup(actualGrade, step, s.SalaryScale); !ok {
			return decimal.Zero, 0, false
		}
	}

	diff := actual.Sub(theoretical)
	if !diff.IsPositive() {
		return decimal.Zero, 0, false
	}
	months := generic.MonthsBetween(s.PresentAppointment, in.AsOf)
	monthly := diff.Div(monthsPerYear)
	return monthly.Mul(decimal.NewFromInt(int64(months))).Round(2), months, true
}

// OverpaymentSeverity classifies an estimated overpayment. Below the medium
// tier the flag carries no floor beyond LOW.
func OverpaymentSeverity(over decimal.Decimal, th Thresholds) Severity {
	switch {
	case over.GreaterThanOrEqual(th.OverpaymentAdvisory), over.GreaterThanOrEqual(th.OverpaymentCritical):
		return SeverityCritical
	case over.GreaterThanOrEqual(th.OverpaymentHigh):
		return SeverityHigh
	case over.GreaterThanOrEqual(th.OverpaymentMedium):
		return SeverityMedium
	}
	return SeverityNone
}

func pluralMonths(n int) string {
	if n == 1 {
		return "1 month"
	}
	return strconv.Itoa(n) + " months"
}
