/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built registries that exercise the audit engine end to end.
	Each scenario resets the database, restores the preset cadres, and
	creates employees through the same audit-on-write path as the API.

AVAILABLE SCENARIOS:

	illegal-promotion:    GL 08 entry in 2018 now on GL 14, overpayment estimate
	clean-record:         Complete, compliant career promoted on schedule
	underage-entry:       Appointed at fifteen
	past-retirement:      Still in service past the retirement age
	degree-without-nysc:  Graduate with no national service record
	suspended-officer:    Clean record under suspension
	registry:             All of the above in one registry

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "registry"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description, expected outcome
 2. Add a seed function returning the employees
 3. Add it to scenarioSeeds

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: auditRecord, the write path scenarios reuse
  - factory/presets.go: Preset cadres
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/generic"
	"github.com/warp/personnel-audit/store"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "illegal-promotion",
		Name:        "Illegal Promotion",
		Description: "Appointed on GL 08 in 2018, on GL 14 today with a 2020 present appointment",
		Expected:    "CRITICAL, simulator expects GL 10 step 3, overpayment estimated",
	},
	{
		ID:          "clean-record",
		Name:        "Clean Record",
		Description: "Works cadre officer promoted exactly on the cadre schedule with full paperwork",
		Expected:    "not flagged",
	},
	{
		ID:          "underage-entry",
		Name:        "Underage Entry",
		Description: "Born 2005, first appointment 2020",
		Expected:    "ENTRY AGE flag",
	},
	{
		ID:          "past-retirement",
		Name:        "Past Retirement",
		Description: "Born 1960 and still in service",
		Expected:    "COMPULSORY RETIREMENT, at least HIGH",
	},
	{
		ID:          "degree-without-nysc",
		Name:        "Degree Without NYSC",
		Description: "B.Sc. holder with no national service year or status",
		Expected:    "NYSC flag, at least HIGH",
	},
	{
		ID:          "suspended-officer",
		Name:        "Suspended Officer",
		Description: "Clean career record, suspended pending investigation",
		Expected:    "CRITICAL",
	},
	{
		ID:          "registry",
		Name:        "Full Registry",
		Description: "Every scenario above loaded together",
		Expected:    "five flagged, one clean",
	},
}

// worksCadreJSON is the cadre the clean record is promoted against.
const worksCadreJSON = `{
  "id": "works",
  "name": "Works and Engineering",
  "retirement_age": 60,
  "max_service_years": 35,
  "promotion_intervals": {"07-09": 2, "10-12": 3},
  "requires_nysc": true
}`

type seedEmployee struct {
	ID       string
	Name     string
	CadreID  string
	Snapshot audit.Snapshot
}

var scenarioSeeds = map[string]func() []seedEmployee{
	"illegal-promotion":   func() []seedEmployee { return []seedEmployee{illegalPromotionSeed()} },
	"clean-record":        func() []seedEmployee { return []seedEmployee{cleanRecordSeed()} },
	"underage-entry":      func() []seedEmployee { return []seedEmployee{underageEntrySeed()} },
	"past-retirement":     func() []seedEmployee { return []seedEmployee{pastRetirementSeed()} },
	"degree-without-nysc": func() []seedEmployee { return []seedEmployee{degreeWithoutNYSCSeed()} },
	"suspended-officer":   func() []seedEmployee { return []seedEmployee{suspendedOfficerSeed()} },
	"registry": func() []seedEmployee {
		return []seedEmployee{
			illegalPromotionSeed(),
			cleanRecordSeed(),
			underageEntrySeed(),
			pastRetirementSeed(),
			degreeWithoutNYSCSeed(),
			suspendedOfficerSeed(),
		}
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the registry and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, ok := scenarioSeeds[req.ScenarioID]; !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err := h.LoadScenarioByID(r.Context(), req.ScenarioID); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// LoadScenarioByID resets the registry and loads one scenario. Used by the
// HTTP handler and by the server's seed option.
func (h *Handler) LoadScenarioByID(ctx context.Context, id string) error {
	seed, ok := scenarioSeeds[id]
	if !ok {
		return fmt.Errorf("unknown scenario %q", id)
	}

	if err := h.reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := h.saveCadreJSON(ctx, worksCadreJSON); err != nil {
		return err
	}

	for _, s := range seed() {
		emp := &store.Employee{ID: s.ID, Name: s.Name, CadreID: s.CadreID, Snapshot: s.Snapshot}
		if _, _, err := h.auditRecord(ctx, emp, store.TriggerEmployeeCreated, true); err != nil {
			return fmt.Errorf("employee %s: %w", s.ID, err)
		}
	}

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
	h.Logger.Info("scenario loaded", "scenario", id)
	return nil
}

func (h *Handler) saveCadreJSON(ctx context.Context, js string) error {
	params, cj, err := h.CadreFactory.ParseCadre(js)
	if err != nil {
		return err
	}
	if err := h.Store.SaveCadre(ctx, store.Cadre{ID: cj.ID, Name: cj.Name, ConfigJSON: js}); err != nil {
		return err
	}
	h.mu.Lock()
	h.params[cj.ID] = *params
	h.mu.Unlock()
	return nil
}

// =============================================================================
// SCENARIO SEEDS
// =============================================================================

func date(s string) generic.TimePoint { return generic.MustParseDate(s) }

func illegalPromotionSeed() seedEmployee {
	return seedEmployee{
		ID:      "emp-illegal-promotion",
		Name:    "Emeka Nwosu",
		CadreID: "general",
		Snapshot: audit.Snapshot{
			DateOfBirth:          date("1990-01-15"),
			FirstAppointment:     date("2018-01-01"),
			PresentAppointment:   date("2020-01-01"),
			EntryGradeLevel:      "08",
			GradeLevel:           "14",
			Step:                 "05",
			HighestQualification: "BSC",
		},
	}
}

func cleanRecordSeed() seedEmployee {
	promo := func(d, grade, ref string) audit.Promotion {
		return audit.Promotion{Date: date(d), GradeLevel: grade, Step: "01", AuthorityRef: ref, GazetteNo: "G/" + ref}
	}
	return seedEmployee{
		ID:      "emp-clean-record",
		Name:    "Funmilayo Adebayo",
		CadreID: "works",
		Snapshot: audit.Snapshot{
			DateOfBirth:            date("1988-03-10"),
			FirstAppointment:       date("2015-01-01"),
			PresentAppointment:     date("2025-01-01"),
			ConfirmationDate:       date("2017-01-01"),
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
		},
	}
}

func underageEntrySeed() seedEmployee {
	return seedEmployee{
		ID:      "emp-underage-entry",
		Name:    "Ibrahim Musa",
		CadreID: "general",
		Snapshot: audit.Snapshot{
			DateOfBirth:      date("2005-01-01"),
			FirstAppointment: date("2020-01-01"),
			GradeLevel:       "08",
		},
	}
}

func pastRetirementSeed() seedEmployee {
	return seedEmployee{
		ID:      "emp-past-retirement",
		Name:    "Grace Okon",
		CadreID: "general",
		Snapshot: audit.Snapshot{
			DateOfBirth:      date("1960-01-01"),
			FirstAppointment: date("1985-01-01"),
			GradeLevel:       "14",
		},
	}
}

func degreeWithoutNYSCSeed() seedEmployee {
	return seedEmployee{
		ID:      "emp-degree-without-nysc",
		Name:    "Tunde Bakare",
		CadreID: "general",
		Snapshot: audit.Snapshot{
			HighestQualification: "BSC",
			Certificates:         []audit.Certificate{{Type: "BSC", Year: "2010"}},
		},
	}
}

func suspendedOfficerSeed() seedEmployee {
	s := cleanRecordSeed()
	s.ID = "emp-suspended-officer"
	s.Name = "Halima Yusuf"
	s.Snapshot.IsSuspended = true
	s.Snapshot.SuspensionDate = date("2026-06-01")
	s.Snapshot.SuspensionReason = "pending investigation"
	return s
}
