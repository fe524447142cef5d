/*
handlers_test.go - Tests for API handlers

Tests for:
- Audit on every write (create, update, confirm, career action, documents)
- Persisted flag status and audit trail
- Flagged listing, stateless audit, simulator, cadres, salary
- Error status mapping
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/store"
	"github.com/warp/personnel-audit/store/sqlite"
)

var testNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func setupTestHandler(t *testing.T) (*Handler, *chi.Mux) {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := NewHandler(st, nil,
		WithClock(func() time.Time { return testNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, h.LoadCadres(context.Background()))
	return h, NewRouter(h)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		buf = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const illegalPromotionBody = `{
  "id": "emp-1",
  "name": "Emeka Nwosu",
  "cadre_id": "general",
  "date_of_birth": "1990-01-15",
  "date_of_first_appointment": "2018-01-01",
  "date_of_present_appointment": "2020-01-01",
  "entry_grade_level": "08",
  "grade_level": "14",
  "step": "05",
  "highest_qualification": "BSC"
}`

func hasPrefix(reasons []string, prefix string) bool {
	for _, r := range reasons {
		if strings.HasPrefix(r, prefix) {
			return true
		}
	}
	return false
}

// =============================================================================
// AUDIT ON WRITE
// =============================================================================

func TestCreateEmployee_AuditsOnWrite(t *testing.T) {
	// GIVEN: A record promoted far ahead of the simulator
	_, router := setupTestHandler(t)

	// WHEN: Created
	rec := do(t, router, http.MethodPost, "/api/employees", illegalPromotionBody)

	// THEN: The audit outcome is returned and persisted verbatim
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[AuditResponse](t, rec)
	assert.True(t, resp.Result.IsFlagged)
	assert.Equal(t, audit.SeverityCritical, resp.Result.Severity)
	assert.Equal(t, audit.Progression{Grade: 10, Step: 3, ServiceYears: 8}, resp.Result.Progression)
	assert.Equal(t, strings.Join(resp.Result.FlagReason, " | "), resp.Employee.FlagReason)
	assert.Equal(t, "CRITICAL", resp.Employee.FlagSeverity)
	require.NotNil(t, resp.Changes)
	assert.Equal(t, resp.Result.FlagReason, resp.Changes.Added)

	got := decode[EmployeeDTO](t, do(t, router, http.MethodGet, "/api/employees/emp-1", nil))
	assert.True(t, got.IsFlagged)
	assert.Equal(t, resp.Employee.FlagReason, got.FlagReason)
	assert.Equal(t, resp.Result.FlagReason, got.FlagReasons)
	assert.Equal(t, "14", got.Record.GradeLevel)
	assert.Equal(t, "2026-10-19T12:00:00Z", got.AuditedAt)

	runs := decode[[]AuditRunDTO](t, do(t, router, http.MethodGet, "/api/employees/emp-1/audits", nil))
	require.Len(t, runs, 1)
	assert.Equal(t, "employee_created", runs[0].Trigger)
	assert.Equal(t, "CRITICAL", runs[0].Severity)
	assert.Equal(t, resp.Result.FlagReason, runs[0].Reasons)
}

func TestCreateEmployee_Errors(t *testing.T) {
	_, router := setupTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", illegalPromotionBody).Code)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"duplicate id", illegalPromotionBody, http.StatusConflict},
		{"missing name", `{"id": "emp-2"}`, http.StatusBadRequest},
		{"unknown cadre", `{"name": "X", "cadre_id": "navy"}`, http.StatusBadRequest},
		{"bad date", `{"name": "X", "date_of_birth": "15/01/1990"}`, http.StatusBadRequest},
		{"malformed", `{"name": `, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/employees", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestCreateEmployee_GeneratesID(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/employees", `{"name": "Ada Obi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode[AuditResponse](t, rec)
	assert.True(t, strings.HasPrefix(resp.Employee.ID, "emp-"))
	assert.Equal(t, "general", resp.Employee.CadreID)
	assert.False(t, resp.Result.IsFlagged)
}

func TestUpdateEmployee_ReportsClearedReasons(t *testing.T) {
	// GIVEN: A record appointed at fifteen
	_, router := setupTestHandler(t)
	body := `{"id": "emp-1", "name": "Ibrahim Musa", "date_of_birth": "2005-01-01", "date_of_first_appointment": "2020-01-01", "grade_level": "08"}`
	created := decode[AuditResponse](t, do(t, router, http.MethodPost, "/api/employees", body))
	require.True(t, hasPrefix(created.Result.FlagReason, "ENTRY AGE:"))

	// WHEN: The date of birth is corrected
	fixed := `{"date_of_birth": "1995-01-01", "date_of_first_appointment": "2020-01-01", "grade_level": "08"}`
	rec := do(t, router, http.MethodPut, "/api/employees/emp-1", fixed)

	// THEN: The entry-age reason is reported as cleared
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[AuditResponse](t, rec)
	assert.False(t, hasPrefix(resp.Result.FlagReason, "ENTRY AGE:"))
	assert.True(t, hasPrefix(resp.Changes.Removed, "ENTRY AGE:"))
	assert.Equal(t, "Ibrahim Musa", resp.Employee.Name)

	runs := decode[[]AuditRunDTO](t, do(t, router, http.MethodGet, "/api/employees/emp-1/audits", nil))
	require.Len(t, runs, 2)
	assert.Equal(t, "profile_updated", runs[0].Trigger)
	assert.Equal(t, "employee_created", runs[1].Trigger)
}

func TestUpdateEmployee_NotFound(t *testing.T) {
	_, router := setupTestHandler(t)
	rec := do(t, router, http.MethodPut, "/api/employees/missing", `{"name": "X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmEmployee(t *testing.T) {
	_, router := setupTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", illegalPromotionBody).Code)

	// WHEN: A confirmation is recorded
	rec := do(t, router, http.MethodPost, "/api/employees/emp-1/confirm", ConfirmRequest{
		ConfirmationDate: date("2020-01-10"),
		GradeLevel:       "08",
		LetterRef:        "CONF/2020/17",
	})

	// THEN: The record is confirmed and re-audited with the confirmation trigger
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[AuditResponse](t, rec)
	assert.True(t, resp.Employee.Record.IsConfirmed)
	assert.Equal(t, "CONF/2020/17", resp.Employee.Record.ConfirmationLetterRef)

	runs := decode[[]AuditRunDTO](t, do(t, router, http.MethodGet, "/api/employees/emp-1/audits", nil))
	assert.Equal(t, "confirmation", runs[0].Trigger)

	rec = do(t, router, http.MethodPost, "/api/employees/emp-1/confirm", `{"confirmation_grade_level": "08"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddCareerAction_MovesPosition(t *testing.T) {
	_, router := setupTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", illegalPromotionBody).Code)

	rec := do(t, router, http.MethodPost, "/api/employees/emp-1/career-actions", `{
	  "action_type": "PROMOTION",
	  "effective_date": "2026-01-01",
	  "from_grade_level": "14",
	  "to_grade_level": "15",
	  "to_step": "01",
	  "authority_ref": "PRM/26/3"
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[AuditResponse](t, rec)
	assert.Equal(t, "15", resp.Employee.Record.GradeLevel)
	assert.Equal(t, "01", resp.Employee.Record.Step)
	assert.Equal(t, "2026-01-01", resp.Employee.Record.PresentAppointment.String())
	require.Len(t, resp.Employee.Record.CareerActions, 1)

	runs := decode[[]AuditRunDTO](t, do(t, router, http.MethodGet, "/api/employees/emp-1/audits", nil))
	assert.Equal(t, "career_action", runs[0].Trigger)

	rec = do(t, router, http.MethodPost, "/api/employees/emp-1/career-actions", `{"effective_date": "2026-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReauditEmployee_AttachesDocuments(t *testing.T) {
	// GIVEN: A graduate with no national service on file
	_, router := setupTestHandler(t)
	body := `{"id": "emp-1", "name": "Tunde Bakare", "highest_qualification": "BSC", "certificates": [{"certificate_type": "BSC", "year": "2010"}]}`
	created := decode[AuditResponse](t, do(t, router, http.MethodPost, "/api/employees", body))
	require.True(t, hasPrefix(created.Result.FlagReason, "NYSC:"))

	// WHEN: The discharge certificate arrives
	rec := do(t, router, http.MethodPost, "/api/employees/emp-1/audit", `{"nysc_year": "2011", "nysc_status": "DISCHARGED"}`)

	// THEN: The record is re-audited with the document trigger
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[AuditResponse](t, rec)
	assert.Equal(t, "2011", resp.Employee.Record.NYSCYear)
	assert.Equal(t, audit.NYSCDischarged, resp.Employee.Record.NYSCStatus)

	runs := decode[[]AuditRunDTO](t, do(t, router, http.MethodGet, "/api/employees/emp-1/audits", nil))
	assert.Equal(t, "document_reaudit", runs[0].Trigger)

	// An empty body simply re-audits
	rec = do(t, router, http.MethodPost, "/api/employees/emp-1/audit", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDeleteEmployee(t *testing.T) {
	_, router := setupTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", illegalPromotionBody).Code)

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/employees/emp-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/employees/emp-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/api/employees/emp-1", nil).Code)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestListFlagged(t *testing.T) {
	h, router := setupTestHandler(t)
	require.NoError(t, h.LoadScenarioByID(context.Background(), "registry"))

	all := decode[[]EmployeeDTO](t, do(t, router, http.MethodGet, "/api/flagged", nil))
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		prev := audit.Severity(all[i-1].FlagSeverity)
		assert.True(t, prev.AtLeast(audit.Severity(all[i].FlagSeverity)), "not ordered by severity")
	}

	critical := decode[[]EmployeeDTO](t, do(t, router, http.MethodGet, "/api/flagged?min_severity=critical", nil))
	ids := make([]string, len(critical))
	for i, e := range critical {
		ids[i] = e.ID
		assert.Equal(t, "CRITICAL", e.FlagSeverity)
	}
	assert.Contains(t, ids, "emp-illegal-promotion")
	assert.Contains(t, ids, "emp-suspended-officer")

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/flagged?min_severity=urgent", nil).Code)
}

func TestGetSalary(t *testing.T) {
	_, router := setupTestHandler(t)
	body := `{"id": "emp-1", "name": "Ada Obi", "grade_level": "08", "step": "01"}`
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", body).Code)

	rec := do(t, router, http.MethodGet, "/api/employees/emp-1/salary", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dto := decode[SalaryDTO](t, rec)
	assert.Equal(t, 8, dto.GradeLevel)
	assert.Equal(t, "CONPSS", dto.Scale)
	assert.True(t, dto.Breakdown.Basic.Equal(decimal.NewFromInt(780000)), dto.Breakdown.Basic.String())
	assert.True(t, dto.Breakdown.Stoppage.IsZero())

	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/employees", `{"id": "emp-2", "name": "No Grade"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, router, http.MethodGet, "/api/employees/emp-2/salary", nil).Code)
}

// =============================================================================
// STATELESS AUDIT & SIMULATOR
// =============================================================================

func TestAuditSnapshot_DoesNotStore(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/audit", `{
	  "cadre_id": "general",
	  "as_of": "2026-10-19",
	  "record": {
	    "date_of_birth": "1990-01-15",
	    "date_of_first_appointment": "2018-01-01",
	    "date_of_present_appointment": "2020-01-01",
	    "entry_grade_level": "08",
	    "grade_level": "14",
	    "step": "05"
	  }
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[audit.Result](t, rec)
	assert.Equal(t, audit.SeverityCritical, res.Severity)
	assert.True(t, res.HasCategory(audit.CategoryIllegalPromotion))

	emps := decode[[]EmployeeDTO](t, do(t, router, http.MethodGet, "/api/employees", nil))
	assert.Empty(t, emps)
}

func TestAuditSnapshot_InlineCadre(t *testing.T) {
	_, router := setupTestHandler(t)
	seed := cleanRecordSeed()

	rec := do(t, router, http.MethodPost, "/api/audit", map[string]any{
		"cadre":  json.RawMessage(worksCadreJSON),
		"as_of":  "2026-10-19",
		"record": seed.Snapshot,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[audit.Result](t, rec)
	assert.False(t, res.IsFlagged, "unexpected flags: %v", res.FlagReason)

	rec = do(t, router, http.MethodPost, "/api/audit", `{"cadre": {"id": "x", "retirement_age": 20}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, router, http.MethodPost, "/api/audit", `{"cadre_id": "navy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulate(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/simulate", `{"entry_grade_level": 8, "date_of_first_appointment": "2018-01-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, audit.Progression{Grade: 10, Step: 3, ServiceYears: 8}, decode[audit.Progression](t, rec))

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/simulate", `{"entry_grade_level": 8}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/simulate", `{"entry_grade_level": 20, "date_of_first_appointment": "2018-01-01"}`).Code)
}

// =============================================================================
// CADRES
// =============================================================================

func TestCadres(t *testing.T) {
	_, router := setupTestHandler(t)

	list := decode[[]CadreDTO](t, do(t, router, http.MethodGet, "/api/cadres", nil))
	require.Len(t, list, 3)

	rec := do(t, router, http.MethodPost, "/api/cadres", worksCadreJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[CadreDTO](t, rec)
	assert.Equal(t, "works", created.ID)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, map[string]int{"07-09": 2, "10-12": 3}, created.Config.PromotionIntervals)

	again := decode[CadreDTO](t, do(t, router, http.MethodPost, "/api/cadres", worksCadreJSON))
	assert.Equal(t, 2, again.Version)

	got := decode[CadreDTO](t, do(t, router, http.MethodGet, "/api/cadres/teaching", nil))
	assert.Equal(t, 65, got.Config.RetirementAge)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/cadres/navy", nil).Code)

	rec = do(t, router, http.MethodPost, "/api/cadres", `{"id": "x", "min_grade_level": 12, "max_grade_level": 8}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "min_grade_level", decode[ErrorResponse](t, rec).Code)
}

func TestCadres_CorruptStoredConfig(t *testing.T) {
	// GIVEN: A stored cadre whose config no longer parses
	h, router := setupTestHandler(t)
	require.NoError(t, h.Store.SaveCadre(context.Background(), store.Cadre{ID: "broken", Name: "Broken", ConfigJSON: "{"}))

	// WHEN: It is read directly
	rec := do(t, router, http.MethodGet, "/api/cadres/broken", nil)

	// THEN: The read fails instead of serving an empty cadre
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// AND: The listing skips it and keeps the valid cadres
	list := decode[[]CadreDTO](t, do(t, router, http.MethodGet, "/api/cadres", nil))
	require.NotEmpty(t, list)
	for _, c := range list {
		assert.NotEqual(t, "broken", c.ID)
	}
}

func TestCadreChange_AppliesOnNextAudit(t *testing.T) {
	// GIVEN: An officer born 1962 on a cadre that retires at 65
	h, router := setupTestHandler(t)
	body := `{"id": "emp-1", "name": "Ngozi Eze", "cadre_id": "teaching", "date_of_birth": "1962-03-01", "date_of_first_appointment": "1995-01-01", "grade_level": "14"}`
	created := decode[AuditResponse](t, do(t, router, http.MethodPost, "/api/employees", body))
	require.False(t, created.Result.HasCategory(audit.CategoryCompulsoryRetirement), created.Result.FlagReason)

	// WHEN: The cadre drops its retirement age to 60 and the registry re-audits
	teaching := `{"id": "teaching", "name": "Teaching Service", "retirement_age": 60, "max_service_years": 40}`
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/cadres", teaching).Code)
	summary, err := h.ReauditAll(context.Background(), "scheduled")
	require.NoError(t, err)

	// THEN: The officer is now past retirement
	assert.Equal(t, 1, summary.Audited)
	assert.Equal(t, 1, summary.Changed)
	got := decode[EmployeeDTO](t, do(t, router, http.MethodGet, "/api/employees/emp-1", nil))
	assert.True(t, hasPrefix(got.FlagReasons, "COMPULSORY RETIREMENT:"), got.FlagReasons)
}
