/*
scenarios_test.go - Tests for demo scenarios

PURPOSE:
	Each scenario is loaded through the audit-on-write path and checked
	against the outcome its description promises. These double as
	end-to-end tests of handler, engine, cadre factory and store.
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/store"
)

func loadScenario(t *testing.T, h *Handler, id string) []store.Employee {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.LoadScenarioByID(ctx, id))
	emps, err := h.Store.ListEmployees(ctx)
	require.NoError(t, err)
	return emps
}

func TestScenario_Outcomes(t *testing.T) {
	tests := []struct {
		id       string
		flagged  bool
		category string
		atLeast  audit.Severity
	}{
		{"illegal-promotion", true, audit.CategoryIllegalPromotion, audit.SeverityCritical},
		{"clean-record", false, "", audit.SeverityNone},
		{"underage-entry", true, audit.CategoryEntryAge, audit.SeverityLow},
		{"past-retirement", true, audit.CategoryCompulsoryRetirement, audit.SeverityHigh},
		{"degree-without-nysc", true, audit.CategoryNYSC, audit.SeverityHigh},
		{"suspended-officer", true, audit.CategorySuspension, audit.SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			// GIVEN: A fresh registry
			h, _ := setupTestHandler(t)

			// WHEN: The scenario is loaded
			emps := loadScenario(t, h, tt.id)

			// THEN: Its single employee carries the promised outcome
			require.Len(t, emps, 1)
			flag := emps[0].Flag
			assert.Equal(t, tt.flagged, flag.IsFlagged, "reasons: %s", flag.Reason)
			assert.True(t, flag.Severity.AtLeast(tt.atLeast), "severity %q", flag.Severity)
			if tt.category != "" {
				assert.True(t, hasPrefix(audit.SplitReasons(flag.Reason), tt.category+":"), flag.Reason)
			}

			runs, err := h.Store.ListAuditRuns(context.Background(), emps[0].ID)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, store.TriggerEmployeeCreated, runs[0].Trigger)
		})
	}
}

func TestScenario_Registry(t *testing.T) {
	h, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "registry"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	emps, err := h.Store.ListEmployees(context.Background())
	require.NoError(t, err)
	assert.Len(t, emps, 6)

	current := decode[ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios/current", nil))
	assert.Equal(t, "registry", current.ID)

	// Loading again replaces rather than duplicates
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "clean-record"}).Code)
	emps, err = h.Store.ListEmployees(context.Background())
	require.NoError(t, err)
	assert.Len(t, emps, 1)
}

func TestScenario_ReauditIsStable(t *testing.T) {
	// GIVEN: The full registry
	h, _ := setupTestHandler(t)
	loadScenario(t, h, "registry")

	// WHEN: Re-audited on the same day
	summary, err := h.ReauditAll(context.Background(), store.TriggerScheduled)
	require.NoError(t, err)

	// THEN: Nothing changes, and every employee gains a scheduled run
	assert.Equal(t, 6, summary.Audited)
	assert.Equal(t, 5, summary.Flagged)
	assert.Zero(t, summary.Changed)
	assert.Zero(t, summary.Failed)

	runs, err := h.Store.ListAuditRuns(context.Background(), "emp-clean-record")
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

func TestScenario_UnknownAndReset(t *testing.T) {
	h, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	loadScenario(t, h, "illegal-promotion")
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/scenarios/reset", nil).Code)

	emps, err := h.Store.ListEmployees(context.Background())
	require.NoError(t, err)
	assert.Empty(t, emps)

	// Presets survive a reset, the scenario-only cadre does not
	cadres := decode[[]CadreDTO](t, do(t, router, http.MethodGet, "/api/cadres", nil))
	ids := make([]string, len(cadres))
	for i, c := range cadres {
		ids[i] = c.ID
	}
	assert.ElementsMatch(t, []string{"general", "teaching", "medical"}, ids)
	assert.False(t, strings.Contains(strings.Join(ids, ","), "works"))

	assert.Equal(t, "null\n", do(t, router, http.MethodGet, "/api/scenarios/current", nil).Body.String())
}

func TestScenarioList(t *testing.T) {
	_, router := setupTestHandler(t)

	list := decode[[]ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios", nil))
	require.Len(t, list, len(scenarioSeeds))
	for _, s := range list {
		_, ok := scenarioSeeds[s.ID]
		assert.True(t, ok, s.ID)
	}
}
