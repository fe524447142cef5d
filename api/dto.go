/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Records travel as the
  audit.Snapshot JSON shape so the registry and the engine agree on field
  names; everything else is an API-specific wrapper.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:
    EmployeeDTO, EmployeeRequest, ConfirmRequest, DocumentsRequest

  Audit:
    AuditResponse, StatelessAuditRequest, SimulateRequest, AuditRunDTO,
    ReauditSummaryDTO

  Cadre:
    CadreDTO (wraps factory.CadreJSON)

  Salary:
    SalaryDTO (wraps salary.Breakdown)

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/cadre.go: CadreJSON type
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/factory"
	"github.com/warp/personnel-audit/generic"
	"github.com/warp/personnel-audit/salary"
	"github.com/warp/personnel-audit/store"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee record and its last audit outcome.
type EmployeeDTO struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	CadreID      string         `json:"cadre_id"`
	Record       audit.Snapshot `json:"record"`
	IsFlagged    bool           `json:"is_flagged"`
	FlagReason   string         `json:"flag_reason"`
	FlagReasons  []string       `json:"flag_reasons"`
	FlagSeverity string         `json:"flag_severity,omitempty"`
	AuditedAt    string         `json:"audited_at,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
	UpdatedAt    string         `json:"updated_at,omitempty"`
}

// EmployeeRequest creates or replaces an employee record. The snapshot
// fields sit at the top level of the body.
type EmployeeRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	CadreID string `json:"cadre_id"`
	audit.Snapshot
}

// ConfirmRequest records a confirmation of appointment.
type ConfirmRequest struct {
	ConfirmationDate generic.TimePoint `json:"date_of_confirmation"`
	GradeLevel       string            `json:"confirmation_grade_level"`
	Step             string            `json:"confirmation_step"`
	LetterRef        string            `json:"confirmation_letter_ref"`
}

// DocumentsRequest attaches documents before a re-audit. Every field is
// optional; an empty body simply re-audits.
type DocumentsRequest struct {
	Certificates []audit.Certificate `json:"certificates,omitempty"`
	Leaves       []audit.LeaveRecord `json:"leave_records,omitempty"`
	NYSCYear     *string             `json:"nysc_year,omitempty"`
	NYSCStatus   *string             `json:"nysc_status,omitempty"`
}

// =============================================================================
// AUDIT
// =============================================================================

// AuditResponse is returned by every write that re-audits a record.
type AuditResponse struct {
	Employee EmployeeDTO         `json:"employee"`
	Result   audit.Result        `json:"result"`
	Changes  *audit.ReasonChange `json:"changes,omitempty"`
}

// StatelessAuditRequest audits a snapshot without storing it. Cadre, when
// present, is a full cadre document and wins over CadreID.
type StatelessAuditRequest struct {
	CadreID string            `json:"cadre_id"`
	Cadre   json.RawMessage   `json:"cadre,omitempty"`
	AsOf    generic.TimePoint `json:"as_of"`
	Record  audit.Snapshot    `json:"record"`
}

// SimulateRequest runs the progression simulator on its own.
type SimulateRequest struct {
	EntryGradeLevel  int               `json:"entry_grade_level"`
	FirstAppointment generic.TimePoint `json:"date_of_first_appointment"`
	CadreID          string            `json:"cadre_id"`
}

// AuditRunDTO is one entry of an employee's audit trail.
type AuditRunDTO struct {
	ID        string   `json:"id"`
	Trigger   string   `json:"trigger"`
	IsFlagged bool     `json:"is_flagged"`
	Severity  string   `json:"severity,omitempty"`
	Reason    string   `json:"reason"`
	Reasons   []string `json:"reasons"`
	RunAt     string   `json:"run_at"`
}

// ReauditSummaryDTO reports a bulk re-audit.
type ReauditSummaryDTO struct {
	Trigger string `json:"trigger"`
	Audited int    `json:"audited"`
	Flagged int    `json:"flagged"`
	Changed int    `json:"changed"`
	Failed  int    `json:"failed"`
	RunAt   string `json:"run_at"`
}

// =============================================================================
// CADRES & SALARY
// =============================================================================

// CadreDTO represents a cadre configuration in API responses.
type CadreDTO struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Config    factory.CadreJSON `json:"config"`
	Version   int               `json:"version"`
	CreatedAt string            `json:"created_at,omitempty"`
	UpdatedAt string            `json:"updated_at,omitempty"`
}

// SalaryDTO is the pay breakdown for an employee's current position.
type SalaryDTO struct {
	EmployeeID string           `json:"employee_id"`
	GradeLevel int              `json:"grade_level"`
	Step       int              `json:"step"`
	Scale      string           `json:"scale"`
	Suspended  bool             `json:"suspended"`
	Breakdown  salary.Breakdown `json:"breakdown"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Expected    string `json:"expected"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e store.Employee) EmployeeDTO {
	reasons := audit.SplitReasons(e.Flag.Reason)
	if reasons == nil {
		reasons = []string{}
	}
	return EmployeeDTO{
		ID:           e.ID,
		Name:         e.Name,
		CadreID:      e.CadreID,
		Record:       e.Snapshot,
		IsFlagged:    e.Flag.IsFlagged,
		FlagReason:   e.Flag.Reason,
		FlagReasons:  reasons,
		FlagSeverity: string(e.Flag.Severity),
		AuditedAt:    formatTimestamp(e.Flag.AuditedAt),
		CreatedAt:    formatTimestamp(e.CreatedAt),
		UpdatedAt:    formatTimestamp(e.UpdatedAt),
	}
}

func toEmployeeDTOs(emps []store.Employee) []EmployeeDTO {
	dtos := make([]EmployeeDTO, len(emps))
	for i, e := range emps {
		dtos[i] = toEmployeeDTO(e)
	}
	return dtos
}

func toAuditRunDTO(r store.AuditRun) AuditRunDTO {
	reasons := audit.SplitReasons(r.Reason)
	if reasons == nil {
		reasons = []string{}
	}
	return AuditRunDTO{
		ID:        r.ID,
		Trigger:   string(r.Trigger),
		IsFlagged: r.IsFlagged,
		Severity:  string(r.Severity),
		Reason:    r.Reason,
		Reasons:   reasons,
		RunAt:     formatTimestamp(r.RunAt),
	}
}

func toCadreDTO(c store.Cadre, cfg factory.CadreJSON) CadreDTO {
	return CadreDTO{
		ID:        c.ID,
		Name:      c.Name,
		Config:    cfg,
		Version:   c.Version,
		CreatedAt: formatTimestamp(c.CreatedAt),
		UpdatedAt: formatTimestamp(c.UpdatedAt),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
