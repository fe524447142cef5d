/*
Package generic provides the domain-agnostic primitives the audit engine,
the salary service, and the registry share.

PURPOSE:
  Career records are mostly dates and money. This package owns both so that
  every consumer agrees on how an absent date is represented, how elapsed
  service is counted, and how a currency amount is rounded and printed.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A decimal amount with a currency (annual salaries, overpayments)
  - Currency: ISO-ish code used for formatting only

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift when
     accruing monthly differences over many years
  2. Absence is explicit: zero TimePoints and zero Money are "not recorded"
  3. No I/O: everything here is a value type

USAGE:
  basic := generic.NewMoney(decimal.NewFromInt(1982400), generic.NGN)
  fmt.Println(basic) // ₦1,982,400.00

SEE ALSO:
  - time.go: TimePoint and elapsed-service arithmetic
  - period.go: Date windows for leave and suspension
  - errors.go: Sentinel errors shared by store and api
*/
package generic

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Amount with currency
// =============================================================================

type Currency string

const NGN Currency = "NGN"

var currencySymbols = map[Currency]string{
	NGN: "₦",
}

type Money struct {
	Value    decimal.Decimal
	Currency Currency
}

func NewMoney(value decimal.Decimal, currency Currency) Money {
	return Money{Value: value, Currency: currency}
}

func Naira(value decimal.Decimal) Money { return Money{Value: value, Currency: NGN} }

// ParseAmount reads an integer-ish amount that may carry thousands
// separators, a currency symbol, or surrounding blanks ("₦1,250,000").
// The second result is false when nothing numeric could be read.
func ParseAmount(s string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (m Money) Add(o Money) Money           { return Money{Value: m.Value.Add(o.Value), Currency: m.Currency} }
func (m Money) Sub(o Money) Money           { return Money{Value: m.Value.Sub(o.Value), Currency: m.Currency} }
func (m Money) Mul(d decimal.Decimal) Money { return Money{Value: m.Value.Mul(d), Currency: m.Currency} }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsPositive() bool            { return m.Value.IsPositive() }

// String renders the amount with two decimals and thousands separators.
func (m Money) String() string {
	return currencySymbols[m.Currency] + FormatAmount(m.Value)
}

// FormatAmount renders d as "1,234,567.89".
func FormatAmount(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac := fixed, ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, frac = fixed[:i], fixed[i:]
	}

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 && !(b.Len() == 1 && d.IsNegative()) {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}
