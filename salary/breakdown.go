package salary

import (
	"github.com/shopspring/decimal"
)

var (
	allowanceRate = decimal.RequireFromString("0.40")
	pensionRate   = decimal.RequireFromString("0.08")
	housingRate   = decimal.RequireFromString("0.025")
	payeRate      = decimal.RequireFromString("0.07")
	stoppageRate  = decimal.RequireFromString("0.50")
	twelve        = decimal.NewFromInt(12)
)

// Breakdown is the annual pay composition for one grade/step.
type Breakdown struct {
	Basic      decimal.Decimal `json:"basic"`
	Allowances decimal.Decimal `json:"allowances"`
	Gross      decimal.Decimal `json:"gross"`
	Deductions decimal.Decimal `json:"deductions"`
	Net        decimal.Decimal `json:"net"`
	Stoppage   decimal.Decimal `json:"stoppage"` // withheld while on suspension
	Monthly    decimal.Decimal `json:"monthly_net"`
}

// Breakdown expands the table amount into allowances, deductions and net
// pay. Suspended officers are on half pay: half the net is withheld.
func (t *Table) Breakdown(gradeLevel, step int, scale string, suspended bool) (Breakdown, bool) {
	basic, ok := t.Lookup(gradeLevel, step, scale)
	if !ok {
		return Breakdown{}, false
	}
	allowances := basic.Mul(allowanceRate)
	gross := basic.Add(allowances)
	deductions := basic.Mul(pensionRate).
		Add(basic.Mul(housingRate)).
		Add(gross.Mul(payeRate))
	net := gross.Sub(deductions)

	stoppage := decimal.Zero
	if suspended {
		stoppage = net.Mul(stoppageRate)
	}
	payable := net.Sub(stoppage)

	return Breakdown{
		Basic:      basic.Round(2),
		Allowances: allowances.Round(2),
		Gross:      gross.Round(2),
		Deductions: deductions.Round(2),
		Net:        net.Round(2),
		Stoppage:   stoppage.Round(2),
		Monthly:    payable.Div(twelve).Round(2),
	}, true
}
