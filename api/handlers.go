/*
handlers.go - HTTP API handlers for the personnel registry

PURPOSE:
  Exposes the registry and the audit engine via REST API. Every write to an
  employee record assembles a fresh snapshot, resolves the cadre parameters,
  runs the engine, and persists the outcome with the record.

ENDPOINTS:
  Employees:
    GET    /api/employees                     List all employees
    POST   /api/employees                     Create employee (audits)
    GET    /api/employees/{id}                Get employee with flag status
    PUT    /api/employees/{id}                Replace record (audits)
    DELETE /api/employees/{id}                Delete employee and trail
    POST   /api/employees/{id}/confirm        Record confirmation (audits)
    POST   /api/employees/{id}/career-actions Append career action (audits)
    POST   /api/employees/{id}/audit          Attach documents and re-audit
    GET    /api/employees/{id}/audits         Audit trail, newest first
    GET    /api/employees/{id}/salary         Pay breakdown for current position

  Audit:
    GET    /api/flagged?min_severity=HIGH     Flagged employees, most severe first
    POST   /api/audit                         Stateless audit of a snapshot
    POST   /api/simulate                      Progression simulator
    POST   /api/admin/reaudit                 Re-audit every stored employee

  Cadres:
    GET    /api/cadres                        List cadres
    POST   /api/cadres                        Create or replace a cadre
    GET    /api/cadres/{id}                   Get cadre

AUDIT ON WRITE:
  The engine result is persisted verbatim: is_flagged, the " | "-joined
  flag_reason and flag_severity. Each write also appends an audit run
  carrying its trigger, and the response reports which reasons were raised
  or cleared relative to the previous audit.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, unknown cadre on a record
  - 404: Resource not found
  - 409: Duplicate employee ID
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scheduler.go: Periodic re-audit
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/factory"
	"github.com/warp/personnel-audit/generic"
	"github.com/warp/personnel-audit/salary"
	"github.com/warp/personnel-audit/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        store.Store
	Engine       *audit.Engine
	Salary       *salary.Table
	CadreFactory *factory.CadreFactory
	DefaultCadre string
	Logger       *slog.Logger

	now func() time.Time

	// Parsed cadre parameters keyed by cadre ID
	mu     sync.RWMutex
	params map[string]audit.Params

	// Track currently loaded scenario
	currentScenario string
}

type HandlerOption func(*Handler)

// WithClock fixes the audit date and the recorded timestamps.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) { h.now = now }
}

func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.Logger = l }
}

// WithDefaultCadre names the cadre used for records without one.
func WithDefaultCadre(id string) HandlerOption {
	return func(h *Handler) { h.DefaultCadre = id }
}

// NewHandler creates a new handler. A nil table means the built-in CONPSS
// scale.
func NewHandler(st store.Store, table *salary.Table, opts ...HandlerOption) *Handler {
	if table == nil {
		table = salary.DefaultTable()
	}
	h := &Handler{
		Store:        st,
		Salary:       table,
		CadreFactory: factory.NewCadreFactory(),
		DefaultCadre: "general",
		Logger:       slog.Default(),
		now:          time.Now,
		params:       make(map[string]audit.Params),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.Engine = audit.NewEngine(table, audit.WithClock(h.now))
	return h
}

// LoadCadres stores any missing preset cadre and loads every stored cadre
// into the cache. Unparsable stored cadres are skipped with a warning.
func (h *Handler) LoadCadres(ctx context.Context) error {
	records, err := h.Store.ListCadres(ctx)
	if err != nil {
		return err
	}
	stored := make(map[string]bool, len(records))
	for _, r := range records {
		stored[r.ID] = true
	}

	for id, js := range factory.Presets() {
		if stored[id] {
			continue
		}
		_, cj, err := h.CadreFactory.ParseCadre(js)
		if err != nil {
			return fmt.Errorf("preset %s: %w", id, err)
		}
		if err := h.Store.SaveCadre(ctx, store.Cadre{ID: cj.ID, Name: cj.Name, ConfigJSON: js}); err != nil {
			return err
		}
	}

	records, err = h.Store.ListCadres(ctx)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.params = make(map[string]audit.Params, len(records))
	for _, r := range records {
		params, _, err := h.CadreFactory.ParseCadre(r.ConfigJSON)
		if err != nil {
			h.Logger.Warn("skipping invalid cadre", "cadre_id", r.ID, "error", err)
			continue
		}
		h.params[r.ID] = *params
	}
	return nil
}

// resolveParams returns the parameters for a cadre, parsing and caching the
// stored configuration on first use. An unknown cadre is a client error.
func (h *Handler) resolveParams(ctx context.Context, cadreID string) (audit.Params, error) {
	if cadreID == "" {
		cadreID = h.DefaultCadre
	}

	h.mu.RLock()
	p, ok := h.params[cadreID]
	h.mu.RUnlock()
	if ok {
		return p, nil
	}

	rec, err := h.Store.GetCadre(ctx, cadreID)
	if errors.Is(err, generic.ErrCadreNotFound) {
		return audit.Params{}, &generic.ValidationError{Field: "cadre_id", Message: fmt.Sprintf("unknown cadre %q", cadreID)}
	}
	if err != nil {
		return audit.Params{}, err
	}
	params, _, err := h.CadreFactory.ParseCadre(rec.ConfigJSON)
	if err != nil {
		return audit.Params{}, fmt.Errorf("cadre %s: %w", cadreID, err)
	}

	h.mu.Lock()
	h.params[cadreID] = *params
	h.mu.Unlock()
	return *params, nil
}

// auditRecord runs the engine on emp, stores the outcome (inserting when
// create is set) and appends an audit run. The returned change compares the
// new reasons with those previously stored on emp.
func (h *Handler) auditRecord(ctx context.Context, emp *store.Employee, trigger store.Trigger, create bool) (audit.Result, audit.ReasonChange, error) {
	res, change, err := h.evaluate(ctx, emp)
	if err != nil {
		return audit.Result{}, audit.ReasonChange{}, err
	}

	if create {
		err = h.Store.CreateEmployee(ctx, *emp)
	} else {
		err = h.Store.SaveEmployee(ctx, *emp)
	}
	if err != nil {
		return audit.Result{}, audit.ReasonChange{}, err
	}
	if err := h.recordRun(ctx, emp, trigger, res, change); err != nil {
		return audit.Result{}, audit.ReasonChange{}, err
	}
	return res, change, nil
}

// reauditStored re-audits a record as read from the store and writes only
// its flag status. If the record was saved in between, it is read again
// and audited once more, so a concurrent edit is never overwritten.
func (h *Handler) reauditStored(ctx context.Context, emp store.Employee, trigger store.Trigger) (audit.Result, audit.ReasonChange, error) {
	for attempt := 0; ; attempt++ {
		res, change, err := h.evaluate(ctx, &emp)
		if err != nil {
			return audit.Result{}, audit.ReasonChange{}, err
		}
		err = h.Store.UpdateFlag(ctx, emp.ID, emp.UpdatedAt, emp.Flag)
		if errors.Is(err, generic.ErrStaleRecord) && attempt == 0 {
			fresh, gerr := h.Store.GetEmployee(ctx, emp.ID)
			if gerr != nil {
				return audit.Result{}, audit.ReasonChange{}, gerr
			}
			emp = *fresh
			continue
		}
		if err != nil {
			return audit.Result{}, audit.ReasonChange{}, err
		}
		if err := h.recordRun(ctx, &emp, trigger, res, change); err != nil {
			return audit.Result{}, audit.ReasonChange{}, err
		}
		return res, change, nil
	}
}

// evaluate audits emp against its cadre and replaces emp.Flag with the
// outcome. The change is relative to the flag emp carried before.
func (h *Handler) evaluate(ctx context.Context, emp *store.Employee) (audit.Result, audit.ReasonChange, error) {
	if emp.CadreID == "" {
		emp.CadreID = h.DefaultCadre
	}
	params, err := h.resolveParams(ctx, emp.CadreID)
	if err != nil {
		return audit.Result{}, audit.ReasonChange{}, err
	}

	snap := emp.Snapshot
	if snap.Cadre == "" {
		snap.Cadre = emp.CadreID
	}
	snap.Params = params
	res := h.Engine.Audit(snap)

	previous := audit.SplitReasons(emp.Flag.Reason)
	emp.Flag = store.FlagStatusFrom(res, h.now())
	return res, audit.DiffReasons(previous, res.FlagReason), nil
}

func (h *Handler) recordRun(ctx context.Context, emp *store.Employee, trigger store.Trigger, res audit.Result, change audit.ReasonChange) error {
	if err := h.Store.AppendAuditRun(ctx, store.NewAuditRun(emp.ID, trigger, emp.Flag)); err != nil {
		return fmt.Errorf("append audit run: %w", err)
	}
	h.Logger.Debug("employee audited",
		"employee_id", emp.ID,
		"trigger", string(trigger),
		"flagged", res.IsFlagged,
		"severity", string(res.Severity),
		"added", len(change.Added),
		"removed", len(change.Removed),
	)
	return nil
}

// loadEmployee reads the employee named in the URL, writing the error
// response itself on failure.
func (h *Handler) loadEmployee(w http.ResponseWriter, r *http.Request) (*store.Employee, bool) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return nil, false
	}
	return emp, true
}

// writeAudited re-audits emp and writes the AuditResponse.
func (h *Handler) writeAudited(w http.ResponseWriter, r *http.Request, emp *store.Employee, trigger store.Trigger, create bool) {
	res, change, err := h.auditRecord(r.Context(), emp, trigger, create)
	if err != nil {
		writeDomainError(w, "Failed to audit employee", err)
		return
	}
	status := http.StatusOK
	if create {
		status = http.StatusCreated
	}
	writeJSON(w, status, AuditResponse{Employee: toEmployeeDTO(*emp), Result: res, Changes: &change})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTOs(employees))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee registers a new employee and audits the record.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeDomainError(w, "Invalid employee", &generic.ValidationError{Field: "name", Message: "required"})
		return
	}
	if req.ID == "" {
		req.ID = store.NewEmployeeID()
	}

	emp := &store.Employee{
		ID:       req.ID,
		Name:     strings.TrimSpace(req.Name),
		CadreID:  req.CadreID,
		Snapshot: req.Snapshot,
	}
	h.writeAudited(w, r, emp, store.TriggerEmployeeCreated, true)
}

// UpdateEmployee replaces the record and re-audits it.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		emp.Name = name
	}
	if req.CadreID != "" {
		emp.CadreID = req.CadreID
	}
	emp.Snapshot = req.Snapshot

	h.writeAudited(w, r, emp, store.TriggerProfileUpdated, false)
}

// DeleteEmployee removes an employee and its audit trail.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConfirmEmployee records the confirmation of appointment and re-audits.
func (h *Handler) ConfirmEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.ConfirmationDate.IsZero() {
		writeDomainError(w, "Invalid confirmation", &generic.ValidationError{Field: "date_of_confirmation", Message: "required"})
		return
	}

	emp.Snapshot.IsConfirmed = true
	emp.Snapshot.ConfirmationDate = req.ConfirmationDate
	emp.Snapshot.ConfirmationGradeLevel = req.GradeLevel
	emp.Snapshot.ConfirmationStep = req.Step
	emp.Snapshot.ConfirmationLetterRef = req.LetterRef

	h.writeAudited(w, r, emp, store.TriggerConfirmation, false)
}

// AddCareerAction appends a career action. When the action names a
// destination position the record's present position moves with it.
func (h *Handler) AddCareerAction(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	var action audit.CareerAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		writeDecodeError(w, err)
		return
	}
	if strings.TrimSpace(action.Type) == "" {
		writeDomainError(w, "Invalid career action", &generic.ValidationError{Field: "action_type", Message: "required"})
		return
	}
	if action.EffectiveDate.IsZero() {
		writeDomainError(w, "Invalid career action", &generic.ValidationError{Field: "effective_date", Message: "required"})
		return
	}

	s := &emp.Snapshot
	s.CareerActions = append(s.CareerActions, action)
	if action.ToGradeLevel != "" {
		s.GradeLevel = action.ToGradeLevel
		s.PresentAppointment = action.EffectiveDate
	}
	if action.ToStep != "" {
		s.Step = action.ToStep
	}
	if action.ToDesignation != "" {
		s.Designation = action.ToDesignation
	}
	if action.ToSalary != "" {
		s.Salary = action.ToSalary
	}

	h.writeAudited(w, r, emp, store.TriggerCareerAction, false)
}

// ReauditEmployee attaches any documents in the body and re-audits.
func (h *Handler) ReauditEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	var req DocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeDecodeError(w, err)
		return
	}

	s := &emp.Snapshot
	s.Certificates = append(s.Certificates, req.Certificates...)
	s.Leaves = append(s.Leaves, req.Leaves...)
	if req.NYSCYear != nil {
		s.NYSCYear = *req.NYSCYear
	}
	if req.NYSCStatus != nil {
		s.NYSCStatus = audit.NYSCStatus(*req.NYSCStatus)
	}

	h.writeAudited(w, r, emp, store.TriggerDocumentReaudit, false)
}

// ListEmployeeAudits returns an employee's audit trail, newest first.
func (h *Handler) ListEmployeeAudits(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	runs, err := h.Store.ListAuditRuns(r.Context(), emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list audits", err)
		return
	}

	dtos := make([]AuditRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toAuditRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSalary returns the pay breakdown for the employee's present grade and
// step. A suspended employee shows the half-pay stoppage.
func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	grade, gok := audit.ParseLevel(emp.Snapshot.GradeLevel)
	step, sok := audit.ParseLevel(emp.Snapshot.Step)
	if !gok || !sok {
		writeError(w, http.StatusUnprocessableEntity, "Record has no usable grade level and step", nil)
		return
	}

	scale := emp.Snapshot.SalaryScale
	if strings.TrimSpace(scale) == "" {
		scale = h.Salary.DefaultScale()
	}
	b, found := h.Salary.Breakdown(grade, step, scale, emp.Snapshot.IsSuspended)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No %s scale entry for GL %02d step %02d", strings.ToUpper(scale), grade, step), nil)
		return
	}

	writeJSON(w, http.StatusOK, SalaryDTO{
		EmployeeID: emp.ID,
		GradeLevel: grade,
		Step:       step,
		Scale:      strings.ToUpper(scale),
		Suspended:  emp.Snapshot.IsSuspended,
		Breakdown:  b,
	})
}

// =============================================================================
// AUDIT HANDLERS
// =============================================================================

// ListFlagged returns flagged employees, most severe first.
func (h *Handler) ListFlagged(w http.ResponseWriter, r *http.Request) {
	minSeverity := audit.SeverityNone
	if v := r.URL.Query().Get("min_severity"); v != "" {
		minSeverity = audit.ParseSeverity(v)
		if minSeverity == audit.SeverityNone {
			writeError(w, http.StatusBadRequest, "min_severity must be LOW, MEDIUM, HIGH or CRITICAL", nil)
			return
		}
	}

	employees, err := h.Store.ListFlagged(r.Context(), minSeverity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list flagged employees", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTOs(employees))
}

// AuditSnapshot audits a snapshot without storing anything.
func (h *Handler) AuditSnapshot(w http.ResponseWriter, r *http.Request) {
	var req StatelessAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	var params audit.Params
	if len(req.Cadre) > 0 {
		p, _, err := h.CadreFactory.ParseCadre(string(req.Cadre))
		if err != nil {
			writeDomainError(w, "Invalid cadre", err)
			return
		}
		params = *p
	} else {
		p, err := h.resolveParams(r.Context(), req.CadreID)
		if err != nil {
			writeDomainError(w, "Invalid cadre", err)
			return
		}
		params = p
	}

	snap := req.Record
	snap.Params = params
	var res audit.Result
	if req.AsOf.IsZero() {
		res = h.Engine.Audit(snap)
	} else {
		res = h.Engine.AuditAt(snap, req.AsOf)
	}
	writeJSON(w, http.StatusOK, res)
}

// Simulate runs the progression simulator for an entry grade and date.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.FirstAppointment.IsZero() {
		writeDomainError(w, "Invalid simulation", &generic.ValidationError{Field: "date_of_first_appointment", Message: "required"})
		return
	}
	if req.EntryGradeLevel < 0 || req.EntryGradeLevel > 17 {
		writeDomainError(w, "Invalid simulation", &generic.ValidationError{Field: "entry_grade_level", Message: "must be between 1 and 17, or 0 for the default entry grade"})
		return
	}

	params, err := h.resolveParams(r.Context(), req.CadreID)
	if err != nil {
		writeDomainError(w, "Invalid cadre", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.Simulate(req.EntryGradeLevel, req.FirstAppointment, params))
}

// TriggerReaudit re-audits every stored employee now.
func (h *Handler) TriggerReaudit(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ReauditAll(r.Context(), store.TriggerScheduled)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to re-audit employees", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// CADRE HANDLERS
// =============================================================================

// ListCadres returns all cadres.
func (h *Handler) ListCadres(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListCadres(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cadres", err)
		return
	}

	dtos := make([]CadreDTO, 0, len(records))
	for _, rec := range records {
		var cfg factory.CadreJSON
		if err := json.Unmarshal([]byte(rec.ConfigJSON), &cfg); err != nil {
			h.Logger.Warn("skipping corrupt stored cadre", "cadre_id", rec.ID, "error", err)
			continue
		}
		dtos = append(dtos, toCadreDTO(rec, cfg))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCadre validates and stores a cadre configuration. Saving an
// existing ID replaces it and bumps the version; stored records pick up the
// new parameters on their next audit.
func (h *Handler) CreateCadre(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeDecodeError(w, err)
		return
	}

	params, cj, err := h.CadreFactory.ParseCadre(string(raw))
	if err != nil {
		writeDomainError(w, "Invalid cadre", err)
		return
	}
	name := cj.Name
	if name == "" {
		name = cj.ID
	}

	rec := store.Cadre{ID: cj.ID, Name: name, ConfigJSON: string(raw)}
	if err := h.Store.SaveCadre(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save cadre", err)
		return
	}
	h.mu.Lock()
	h.params[cj.ID] = *params
	h.mu.Unlock()

	saved, err := h.Store.GetCadre(r.Context(), cj.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read cadre", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCadreDTO(*saved, *cj))
}

// GetCadre returns a single cadre.
func (h *Handler) GetCadre(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetCadre(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get cadre", err)
		return
	}
	var cfg factory.CadreJSON
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Stored cadre is corrupt", err)
		return
	}
	writeJSON(w, http.StatusOK, toCadreDTO(*rec, cfg))
}

// ResetDatabase clears all data and restores the preset cadres.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) reset(ctx context.Context) error {
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	h.mu.Lock()
	h.params = make(map[string]audit.Params)
	h.currentScenario = ""
	h.mu.Unlock()
	return h.LoadCadres(ctx)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the generic error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	resp := ErrorResponse{Error: message, Details: err.Error()}
	var ve *generic.ValidationError
	if errors.As(err, &ve) {
		resp.Code = ve.Field
	}

	switch {
	case generic.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, resp)
	case generic.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, resp)
	case generic.IsConflict(err):
		writeJSON(w, http.StatusConflict, resp)
	default:
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

// writeDecodeError reports a malformed body. Bad dates inside the body
// surface here too, via TimePoint.UnmarshalJSON.
func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, generic.ErrInvalidDate) {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid request body", err)
}
