/*
engine.go - Audit orchestrator

PURPOSE:
  The public entry point. Prepares the shared Input (normalized params,
  merged history, simulator output), folds every rule section in order,
  and synthesizes the overall severity.

CONCURRENCY:
  An Engine holds only its configuration. Audit is safe to call from any
  number of request handlers at once; each call reads only its snapshot.

TIME:
  The only wall-clock read is the injected clock used by Audit. AuditAt
  takes the as-of date explicitly and is fully deterministic.

EXAMPLE:
  engine := audit.NewEngine(salary.DefaultTable(),
      audit.WithClock(func() time.Time { return fixed }))
  res := engine.Audit(snapshot)
  // res.FlagReason: ["ILLEGAL PROMOTION: GL 14 exceeds ...", ...]
  // res.Severity:   CRITICAL

SEE ALSO:
  - rules.go: Section order
  - severity.go: Severity reduction
  - salary/table.go: Default SalaryLookup
*/
package audit

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/personnel-audit/generic"
)

// SalaryLookup maps a grade/step/scale to its annual amount. It must be
// deterministic and free of side effects. The second result is false when
// the table has no entry.
type SalaryLookup interface {
	Lookup(gradeLevel, step int, scale string) (decimal.Decimal, bool)
}

// Engine runs the rule sections.
type Engine struct {
	salary   SalaryLookup
	clock    func() time.Time
	sections []Rule
}

type Option func(*Engine)

// WithClock overrides the wall clock used by Audit.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithSections replaces the evaluation order. Intended for tests and for
// deployments that disable a section.
func WithSections(rules []Rule) Option {
	return func(e *Engine) { e.sections = rules }
}

// NewEngine builds an engine. A nil lookup disables salary comparisons and
// overpayment estimates; the rest of the audit still runs.
func NewEngine(lookup SalaryLookup, opts ...Option) *Engine {
	e := &Engine{
		salary:   lookup,
		clock:    time.Now,
		sections: Sections(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Audit evaluates the snapshot as of today.
func (e *Engine) Audit(s Snapshot) Result {
	return e.AuditAt(s, generic.FromTime(e.clock()))
}

// AuditAt evaluates the snapshot as of the given date.
func (e *Engine) AuditAt(s Snapshot, asOf generic.TimePoint) Result {
	in := NewInput(s, asOf, e.salary)

	var flags []Flag
	for _, rule := range e.sections {
		for _, f := range rule.Eval(in) {
			if f.Section == "" {
				f.Section = rule.ID
			}
			flags = append(flags, f)
		}
	}

	res := Result{
		IsFlagged:   len(flags) > 0,
		FlagReason:  make([]string, 0, len(flags)),
		Flags:       flags,
		Severity:    Synthesize(flags),
		Progression: in.Progression,
		AsOf:        asOf,
	}
	for _, f := range flags {
		res.FlagReason = append(res.FlagReason, f.String())
	}
	return res
}

// Simulate runs the progression simulator with the engine's clock.
func (e *Engine) Simulate(entryGrade int, firstAppointment generic.TimePoint, params Params) Progression {
	p := params.Normalize()
	return simulate(entryGrade, firstAppointment, generic.FromTime(e.clock()), p.PromotionIntervals, p.Thresholds)
}
