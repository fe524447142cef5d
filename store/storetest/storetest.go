// Package storetest holds the behavioral suite every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/generic"
	"github.com/warp/personnel-audit/store"
)

// Run exercises s through every store.Store operation. newStore must return
// an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("create and get", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("duplicate create", func(t *testing.T) { testDuplicate(t, newStore(t)) })
	t.Run("not found", func(t *testing.T) { testNotFound(t, newStore(t)) })
	t.Run("save updates flag", func(t *testing.T) { testSave(t, newStore(t)) })
	t.Run("update flag compare and set", func(t *testing.T) { testUpdateFlag(t, newStore(t)) })
	t.Run("list flagged", func(t *testing.T) { testListFlagged(t, newStore(t)) })
	t.Run("cadre versions", func(t *testing.T) { testCadres(t, newStore(t)) })
	t.Run("audit trail", func(t *testing.T) { testAuditTrail(t, newStore(t)) })
	t.Run("delete cascades", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("reset", func(t *testing.T) { testReset(t, newStore(t)) })
}

func employee(id, name string, sev audit.Severity) store.Employee {
	return store.Employee{
		ID:      id,
		Name:    name,
		CadreID: "general",
		Snapshot: audit.Snapshot{
			DateOfBirth:      generic.MustParseDate("1990-03-12"),
			FirstAppointment: generic.MustParseDate("2015-01-05"),
			GradeLevel:       "08",
			Step:             "02",
			Promotions: []audit.Promotion{
				{Date: generic.MustParseDate("2018-01-01"), GradeLevel: "08", Step: "01", AuthorityRef: "PRM/18/1"},
			},
		},
		Flag: store.FlagStatus{
			IsFlagged: sev != audit.SeverityNone,
			Severity:  sev,
			Reason:    reasonFor(sev),
			AuditedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		},
	}
}

func reasonFor(sev audit.Severity) string {
	if sev == audit.SeverityNone {
		return ""
	}
	return "STEP: step 16 exceeds maximum 15"
}

func testCreateAndGet(t *testing.T, s store.Store) {
	ctx := context.Background()

	// GIVEN: A new employee
	emp := employee("emp-1", "Adaeze Okafor", audit.SeverityHigh)

	// WHEN: Created and read back
	require.NoError(t, s.CreateEmployee(ctx, emp))
	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)

	// THEN: The snapshot and flag status survive the round trip
	assert.Equal(t, "Adaeze Okafor", got.Name)
	assert.Equal(t, "general", got.CadreID)
	assert.Equal(t, "08", got.Snapshot.GradeLevel)
	assert.True(t, got.Snapshot.DateOfBirth.Equal(emp.Snapshot.DateOfBirth))
	require.Len(t, got.Snapshot.Promotions, 1)
	assert.Equal(t, "08", got.Snapshot.Promotions[0].GradeLevel)
	assert.True(t, got.Flag.IsFlagged)
	assert.Equal(t, audit.SeverityHigh, got.Flag.Severity)
	assert.Equal(t, emp.Flag.Reason, got.Flag.Reason)
	assert.True(t, got.Flag.AuditedAt.Equal(emp.Flag.AuditedAt))
	assert.False(t, got.CreatedAt.IsZero())
}

func testDuplicate(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, employee("emp-1", "A", audit.SeverityNone)))

	err := s.CreateEmployee(ctx, employee("emp-1", "B", audit.SeverityNone))
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrDuplicateEmployee))
	assert.True(t, generic.IsConflict(err))
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.GetEmployee(ctx, "missing")
	assert.True(t, errors.Is(err, generic.ErrEmployeeNotFound))

	err = s.SaveEmployee(ctx, employee("missing", "X", audit.SeverityNone))
	assert.True(t, errors.Is(err, generic.ErrEmployeeNotFound))

	err = s.DeleteEmployee(ctx, "missing")
	assert.True(t, errors.Is(err, generic.ErrEmployeeNotFound))

	err = s.AppendAuditRun(ctx, store.AuditRun{ID: "r1", EmployeeID: "missing", RunAt: time.Now()})
	assert.True(t, errors.Is(err, generic.ErrEmployeeNotFound))

	_, err = s.GetCadre(ctx, "missing")
	assert.True(t, errors.Is(err, generic.ErrCadreNotFound))
	assert.True(t, generic.IsNotFound(err))
}

func testSave(t *testing.T, s store.Store) {
	ctx := context.Background()
	emp := employee("emp-1", "Adaeze Okafor", audit.SeverityCritical)
	require.NoError(t, s.CreateEmployee(ctx, emp))

	// GIVEN: The record is corrected and re-audits clean
	emp.Snapshot.Step = "03"
	emp.Flag = store.FlagStatus{AuditedAt: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)}

	// WHEN: Saved
	require.NoError(t, s.SaveEmployee(ctx, emp))

	// THEN: The stored flag is cleared
	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "03", got.Snapshot.Step)
	assert.False(t, got.Flag.IsFlagged)
	assert.Equal(t, audit.SeverityNone, got.Flag.Severity)
	assert.Empty(t, got.Flag.Reason)
}

func testUpdateFlag(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, employee("emp-1", "Adaeze Okafor", audit.SeverityHigh)))
	read, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)

	// WHEN: The flag is cleared against the version just read
	cleared := store.FlagStatus{AuditedAt: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.UpdateFlag(ctx, "emp-1", read.UpdatedAt, cleared))

	// THEN: Only the flag changes; the snapshot and UpdatedAt stay
	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.False(t, got.Flag.IsFlagged)
	assert.Empty(t, got.Flag.Reason)
	assert.True(t, got.Flag.AuditedAt.Equal(cleared.AuditedAt))
	assert.Equal(t, "02", got.Snapshot.Step)
	assert.True(t, got.UpdatedAt.Equal(read.UpdatedAt))

	// WHEN: The record is saved after it was read
	edited := *got
	edited.Snapshot.Step = "05"
	require.NoError(t, s.SaveEmployee(ctx, edited))

	// THEN: A flag computed from the old read is rejected
	err = s.UpdateFlag(ctx, "emp-1", read.UpdatedAt, store.FlagStatus{IsFlagged: true, Severity: audit.SeverityLow, Reason: "stale"})
	assert.True(t, errors.Is(err, generic.ErrStaleRecord))
	assert.True(t, generic.IsConflict(err))
	got, err = s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "05", got.Snapshot.Step)
	assert.False(t, got.Flag.IsFlagged)

	err = s.UpdateFlag(ctx, "missing", read.UpdatedAt, cleared)
	assert.True(t, errors.Is(err, generic.ErrEmployeeNotFound))
}

func testListFlagged(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, e := range []store.Employee{
		employee("e1", "Bello", audit.SeverityMedium),
		employee("e2", "Chukwu", audit.SeverityCritical),
		employee("e3", "Danjuma", audit.SeverityNone),
		employee("e4", "Abubakar", audit.SeverityCritical),
		employee("e5", "Eze", audit.SeverityLow),
	} {
		require.NoError(t, s.CreateEmployee(ctx, e))
	}

	all, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "Abubakar", all[0].Name)

	// WHEN: Listing every flagged employee
	flagged, err := s.ListFlagged(ctx, audit.SeverityNone)
	require.NoError(t, err)

	// THEN: Most severe first, ties by name, clean records excluded
	assert.Equal(t, []string{"e4", "e2", "e1", "e5"}, ids(flagged))

	high, err := s.ListFlagged(ctx, audit.SeverityHigh)
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e2"}, ids(high))
}

func testCadres(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.SaveCadre(ctx, store.Cadre{ID: "teaching", Name: "Teaching Service", ConfigJSON: `{"id":"teaching"}`}))
	require.NoError(t, s.SaveCadre(ctx, store.Cadre{ID: "general", Name: "General Administrative", ConfigJSON: `{"id":"general"}`}))

	c, err := s.GetCadre(ctx, "teaching")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Version)

	// WHEN: The cadre is saved again
	require.NoError(t, s.SaveCadre(ctx, store.Cadre{ID: "teaching", Name: "Teaching Service", ConfigJSON: `{"id":"teaching","retirement_age":65}`}))

	// THEN: The version increments and the new config replaces the old
	c, err = s.GetCadre(ctx, "teaching")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Version)
	assert.Contains(t, c.ConfigJSON, "retirement_age")

	list, err := s.ListCadres(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "general", list[0].ID)
}

func testAuditTrail(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, employee("emp-1", "A", audit.SeverityNone)))

	base := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	first := store.FlagStatus{AuditedAt: base}
	second := store.FlagStatus{IsFlagged: true, Severity: audit.SeverityHigh, Reason: "STEP: x", AuditedAt: base.Add(90 * time.Minute)}
	third := store.FlagStatus{AuditedAt: base.Add(500 * time.Millisecond)}

	require.NoError(t, s.AppendAuditRun(ctx, store.NewAuditRun("emp-1", store.TriggerEmployeeCreated, first)))
	require.NoError(t, s.AppendAuditRun(ctx, store.NewAuditRun("emp-1", store.TriggerCareerAction, second)))
	require.NoError(t, s.AppendAuditRun(ctx, store.NewAuditRun("emp-1", store.TriggerProfileUpdated, third)))

	runs, err := s.ListAuditRuns(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.Equal(t, store.TriggerCareerAction, runs[0].Trigger)
	assert.Equal(t, store.TriggerProfileUpdated, runs[1].Trigger)
	assert.Equal(t, store.TriggerEmployeeCreated, runs[2].Trigger)
	assert.True(t, runs[0].IsFlagged)
	assert.Equal(t, audit.SeverityHigh, runs[0].Severity)
	assert.Equal(t, "STEP: x", runs[0].Reason)
	assert.True(t, runs[0].RunAt.Equal(second.AuditedAt))

	none, err := s.ListAuditRuns(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, employee("emp-1", "A", audit.SeverityNone)))
	require.NoError(t, s.AppendAuditRun(ctx, store.NewAuditRun("emp-1", store.TriggerEmployeeCreated, store.FlagStatus{AuditedAt: time.Now()})))

	require.NoError(t, s.DeleteEmployee(ctx, "emp-1"))

	_, err := s.GetEmployee(ctx, "emp-1")
	assert.True(t, errors.Is(err, generic.ErrEmployeeNotFound))
	runs, err := s.ListAuditRuns(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func testReset(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, employee("emp-1", "A", audit.SeverityLow)))
	require.NoError(t, s.SaveCadre(ctx, store.Cadre{ID: "general", Name: "General"}))

	require.NoError(t, s.Reset(ctx))

	emps, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, emps)
	cadres, err := s.ListCadres(ctx)
	require.NoError(t, err)
	assert.Empty(t, cadres)
}

func ids(emps []store.Employee) []string {
	out := make([]string, len(emps))
	for i, e := range emps {
		out[i] = e.ID
	}
	return out
}
