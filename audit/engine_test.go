package audit_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/generic"
	"github.com/warp/personnel-audit/salary"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var asOf = generic.NewTimePoint(2026, time.October, 19)

func newTestEngine(opts ...audit.Option) *audit.Engine {
	opts = append([]audit.Option{audit.WithClock(func() time.Time { return asOf.Time })}, opts...)
	return audit.NewEngine(salary.DefaultTable(), opts...)
}

func d(s string) generic.TimePoint { return generic.MustParseDate(s) }

func findFlag(res audit.Result, category string) (audit.Flag, bool) {
	for _, f := range res.Flags {
		if f.Category == category {
			return f, true
		}
	}
	return audit.Flag{}, false
}

// illegalPromotionSnapshot is an officer appointed on GL 08 in 2018 who sits
// on GL 14 eight years later.
func illegalPromotionSnapshot() audit.Snapshot {
	return audit.Snapshot{
		DateOfBirth:          d("1990-01-15"),
		FirstAppointment:     d("2018-01-01"),
		PresentAppointment:   d("2020-01-01"),
		EntryGradeLevel:      "08",
		GradeLevel:           "14",
		Step:                 "05",
		HighestQualification: "BSC",
		Params:               audit.DefaultParams(),
	}
}

// cleanRecordSnapshot is a complete, compliant career on a cadre with a
// two-year interval up to GL 09. The bare legal-promotion record (GL 08 in
// 2015, GL 12 today) conflicts with the default schedule, which expects
// GL 11 after eleven years and would flag GL 12 as illegal; the cadre's
// shorter intervals make GL 12 the expected grade.
func cleanRecordSnapshot(t *testing.T) audit.Snapshot {
	t.Helper()
	rules, err := audit.ParseIntervalRules(map[string]int{"07-09": 2, "10-12": 3})
	require.NoError(t, err)
	params := audit.DefaultParams()
	params.PromotionIntervals = rules

	promo := func(date, grade, ref string) audit.Promotion {
		return audit.Promotion{Date: d(date), GradeLevel: grade, Step: "01", AuthorityRef: ref, GazetteNo: "G/" + ref}
	}
	return audit.Snapshot{
		DateOfBirth:            d("1988-03-10"),
		FirstAppointment:       d("2015-01-01"),
		PresentAppointment:     d("2025-01-01"),
		ConfirmationDate:       d("2017-01-01"),
		EntryGradeLevel:        "08",
		GradeLevel:             "12",
		Step:                   "03",
		IsConfirmed:            true,
		ConfirmationGradeLevel: "08",
		ConfirmationLetterRef:  "CONF/2017/044",
		HighestQualification:   "BSC",
		NYSCYear:               "2014",
		NYSCStatus:             audit.NYSCDischarged,
		Ministry:               "Works",
		Department:             "Highways",
		Promotions: []audit.Promotion{
			promo("2017-01-01", "09", "PRM/17/1"),
			promo("2019-01-01", "10", "PRM/19/1"),
			promo("2022-01-01", "11", "PRM/22/1"),
			promo("2025-01-01", "12", "PRM/25/1"),
		},
		Certificates: []audit.Certificate{
			{Type: "WAEC", Year: "2006"},
			{Type: "BSC Civil Engineering", Year: "2013"},
		},
		Params: params,
	}
}

// =============================================================================
// ACCEPTANCE SCENARIOS
// =============================================================================

func TestAudit_IllegalPromotion_FlaggedCriticalWithOverpayment(t *testing.T) {
	// GIVEN: GL 08 entry in 2018, GL 14 today, present appointment 2020
	// WHEN: Audited on 2026-10-19 against the default salary table
	// THEN: Illegal promotion is flagged with a typed overpayment estimate

	res := newTestEngine().Audit(illegalPromotionSnapshot())

	assert.True(t, res.IsFlagged)
	assert.Equal(t, audit.SeverityCritical, res.Severity)
	assert.Equal(t, audit.Progression{Grade: 10, Step: 3, ServiceYears: 8}, res.Progression)

	f, ok := findFlag(res, audit.CategoryIllegalPromotion)
	require.True(t, ok, "expected an ILLEGAL PROMOTION flag, got %v", res.FlagReason)
	require.NotNil(t, f.Overpayment)
	// (1,982,400 - 1,135,200) / 12 * 81 months
	assert.True(t, f.Overpayment.Equal(decimal.NewFromInt(5718600)), "got %s", f.Overpayment)
	assert.Contains(t, f.Message, "₦5,718,600.00")
	assert.Equal(t, audit.SeverityCritical, f.Severity)
	assert.Equal(t, "progression", f.Section)

	var advisory int
	for _, f := range res.Flags {
		if f.Category == audit.CategoryIllegalPromotion && f.Overpayment == nil {
			advisory++
		}
	}
	assert.Equal(t, 1, advisory, "expected one recovery advisory flag")
}

func TestAudit_LegalPromotion_NotFlagged(t *testing.T) {
	// GIVEN: A complete record promoted exactly on the cadre schedule
	// WHEN: Audited
	// THEN: Nothing is flagged and severity is absent

	res := newTestEngine().Audit(cleanRecordSnapshot(t))

	assert.False(t, res.IsFlagged, "unexpected flags: %v", res.FlagReason)
	assert.Empty(t, res.FlagReason)
	assert.Equal(t, audit.SeverityNone, res.Severity)
	assert.Equal(t, 12, res.Progression.Grade)
	assert.Equal(t, "", res.Joined())
}

func TestAudit_UnderageEntry_Flagged(t *testing.T) {
	res := newTestEngine().Audit(audit.Snapshot{
		DateOfBirth:      d("2005-01-01"),
		FirstAppointment: d("2020-01-01"),
		GradeLevel:       "08",
	})

	assert.True(t, res.IsFlagged)
	f, ok := findFlag(res, audit.CategoryEntryAge)
	require.True(t, ok)
	assert.Contains(t, f.Message, "15.0")
}

func TestAudit_PastRetirementAge_Flagged(t *testing.T) {
	res := newTestEngine().Audit(audit.Snapshot{
		DateOfBirth:      d("1960-01-01"),
		FirstAppointment: d("1985-01-01"),
		GradeLevel:       "14",
	})

	assert.True(t, res.IsFlagged)
	assert.True(t, res.HasCategory(audit.CategoryCompulsoryRetirement))
	assert.True(t, res.Severity.AtLeast(audit.SeverityHigh))
}

func TestAudit_DegreeWithoutNYSC_AtLeastHigh(t *testing.T) {
	res := newTestEngine().Audit(audit.Snapshot{
		HighestQualification: "BSC",
		Certificates:         []audit.Certificate{{Type: "BSC", Year: "2010"}},
	})

	assert.True(t, res.IsFlagged)
	assert.True(t, res.HasCategory(audit.CategoryNYSC))
	assert.True(t, res.Severity.AtLeast(audit.SeverityHigh))
}

// =============================================================================
// ENGINE PROPERTIES
// =============================================================================

func TestAudit_Deterministic(t *testing.T) {
	engine := newTestEngine()
	snap := illegalPromotionSnapshot()

	first := engine.AuditAt(snap, asOf)
	second := engine.AuditAt(snap, asOf)

	assert.Equal(t, first, second)
}

func TestAudit_AddingUnrelatedDataKeepsEarlierReasons(t *testing.T) {
	// GIVEN: GL 09 to GL 10 in eight months
	base := audit.Snapshot{
		DateOfBirth:      d("1990-01-15"),
		FirstAppointment: d("2015-01-01"),
		EntryGradeLevel:  "08",
		GradeLevel:       "10",
		Step:             "01",
		Promotions: []audit.Promotion{
			{Date: d("2017-01-01"), GradeLevel: "09", Step: "01", AuthorityRef: "A1", GazetteNo: "G1"},
			{Date: d("2017-09-01"), GradeLevel: "10", Step: "01", AuthorityRef: "A2", GazetteNo: "G2"},
		},
		Params: audit.DefaultParams(),
	}
	engine := newTestEngine()
	before := engine.Audit(base)
	require.True(t, before.HasCategory(audit.CategoryCareerHistory), before.FlagReason)

	additions := map[string]func(s *audit.Snapshot){
		"gradeless transfer": func(s *audit.Snapshot) {
			s.CareerActions = append(s.CareerActions, audit.CareerAction{Type: "transfer", EffectiveDate: d("2017-05-01")})
		},
		"same-grade confirmation": func(s *audit.Snapshot) {
			s.CareerActions = append(s.CareerActions, audit.CareerAction{Type: "confirmation", EffectiveDate: d("2017-06-01"), ToGradeLevel: "09"})
		},
		"certificate": func(s *audit.Snapshot) {
			s.Certificates = append(s.Certificates, audit.Certificate{Type: "WAEC", Year: "2007"})
		},
		"department": func(s *audit.Snapshot) { s.Department = "Planning" },
	}

	for name, add := range additions {
		t.Run(name, func(t *testing.T) {
			// WHEN: Unrelated data is added
			s := base
			s.Promotions = append([]audit.Promotion(nil), base.Promotions...)
			add(&s)
			after := engine.Audit(s)

			// THEN: Every earlier reason survives and severity never drops
			for _, r := range before.FlagReason {
				assert.Contains(t, after.FlagReason, r)
			}
			assert.True(t, after.Severity.AtLeast(before.Severity), "%s < %s", after.Severity, before.Severity)
		})
	}
}

func TestAudit_SuspensionIsAlwaysCritical(t *testing.T) {
	// GIVEN: An otherwise clean record
	// WHEN: The officer is suspended
	// THEN: Overall severity is CRITICAL

	snap := cleanRecordSnapshot(t)
	snap.IsSuspended = true
	snap.SuspensionDate = d("2026-06-01")
	snap.SuspensionReason = "pending investigation"

	res := newTestEngine().Audit(snap)

	assert.Equal(t, audit.SeverityCritical, res.Severity)
	f, ok := findFlag(res, audit.CategorySuspension)
	require.True(t, ok)
	assert.Equal(t, "employee is on suspension since 2026-06-01 (pending investigation)", f.Message)
}

func TestAudit_FlagsFollowSectionOrder(t *testing.T) {
	res := newTestEngine().Audit(illegalPromotionSnapshot())
	require.True(t, res.IsFlagged)

	index := map[string]int{}
	for i, r := range audit.Sections() {
		index[r.ID] = i
	}
	for i := 1; i < len(res.Flags); i++ {
		assert.LessOrEqual(t, index[res.Flags[i-1].Section], index[res.Flags[i].Section],
			"flag %d (%s) out of order", i, res.Flags[i].Section)
	}
	assert.Len(t, res.FlagReason, len(res.Flags))
	assert.Equal(t, res.FlagReason, audit.SplitReasons(res.Joined()))
}

func TestAudit_ReasonFormat(t *testing.T) {
	res := newTestEngine().Audit(illegalPromotionSnapshot())
	for i, f := range res.Flags {
		assert.Equal(t, f.Category+": "+f.Message, res.FlagReason[i])
	}
}

func TestAudit_NilSalaryLookup_SkipsOverpayment(t *testing.T) {
	engine := audit.NewEngine(nil, audit.WithClock(func() time.Time { return asOf.Time }))

	res := engine.Audit(illegalPromotionSnapshot())

	f, ok := findFlag(res, audit.CategoryIllegalPromotion)
	require.True(t, ok)
	assert.Nil(t, f.Overpayment)
	assert.Equal(t, audit.SeverityNone, f.Severity)
}

func TestAudit_WithSections_RunsOnlyGivenRules(t *testing.T) {
	var only []audit.Rule
	for _, r := range audit.Sections() {
		if r.ID == "entry-age" {
			only = append(only, r)
		}
	}
	engine := newTestEngine(audit.WithSections(only))

	res := engine.Audit(audit.Snapshot{
		DateOfBirth:          d("2005-01-01"),
		FirstAppointment:     d("2020-01-01"),
		HighestQualification: "BSC",
		IsSuspended:          true,
	})

	require.Len(t, res.Flags, 1)
	assert.Equal(t, audit.CategoryEntryAge, res.Flags[0].Category)
	assert.Equal(t, audit.SeverityLow, res.Severity)
}

func TestAudit_EmptySnapshot_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		res := newTestEngine().Audit(audit.Snapshot{})
		assert.False(t, res.IsFlagged)
	})
}

func TestAudit_GarbageFields_AreNoOpinion(t *testing.T) {
	res := newTestEngine().Audit(audit.Snapshot{
		GradeLevel:      "senior",
		Step:            "",
		EntryGradeLevel: "??",
		NYSCYear:        "twenty",
	})
	assert.False(t, res.IsFlagged, "unexpected flags: %v", res.FlagReason)
}

func TestEngine_Simulate_UsesClock(t *testing.T) {
	p := newTestEngine().Simulate(8, d("2018-01-01"), audit.DefaultParams())
	assert.Equal(t, audit.Progression{Grade: 10, Step: 3, ServiceYears: 8}, p)
}
