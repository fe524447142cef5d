/*
Package store defines the registry persistence layer the audit engine is
embedded in.

PURPOSE:
  The audit engine is pure; the registry is not. Every write to an employee
  record (create, profile update, confirmation, career action, document
  upload) re-runs the audit and persists the result verbatim alongside the
  record. This package holds those records and the interface the sqlite and
  memory implementations satisfy.

KEY TYPES:
  Employee:  The stored snapshot plus its last audit outcome
  Cadre:     A cadre configuration, stored as its JSON document
  AuditRun:  One audit execution, append-only, for the audit trail
  Trigger:   What caused an audit run

PERSISTED AUDIT OUTCOME:
  FlagStatus.Reason is the " | "-joined flag list exactly as the engine
  produced it. Readers split it with audit.SplitReasons; nothing re-derives
  severity from the text.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - store/memory: In-memory for tests and the demo server

SEE ALSO:
  - audit/engine.go: Produces the Result persisted here
  - api/handlers.go: The write path that audits on every change
*/
package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/personnel-audit/audit"
)

// =============================================================================
// TRIGGERS - What caused an audit run
// =============================================================================

type Trigger string

const (
	TriggerEmployeeCreated Trigger = "employee_created"
	TriggerProfileUpdated  Trigger = "profile_updated"
	TriggerConfirmation    Trigger = "confirmation"
	TriggerCareerAction    Trigger = "career_action"
	TriggerDocumentReaudit Trigger = "document_reaudit"
	TriggerScheduled       Trigger = "scheduled"
)

// =============================================================================
// RECORDS
// =============================================================================

// FlagStatus is the audit outcome stored on the employee record.
type FlagStatus struct {
	IsFlagged bool
	Reason    string // audit.Result.Joined()
	Severity  audit.Severity
	AuditedAt time.Time
}

// FlagStatusFrom converts an engine result into the persisted form.
func FlagStatusFrom(res audit.Result, at time.Time) FlagStatus {
	return FlagStatus{
		IsFlagged: res.IsFlagged,
		Reason:    res.Joined(),
		Severity:  res.Severity,
		AuditedAt: at.UTC(),
	}
}

// Employee is a registry record.
type Employee struct {
	ID        string
	Name      string
	CadreID   string
	Snapshot  audit.Snapshot // Params are never stored; resolved from CadreID per audit
	Flag      FlagStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cadre is a stored cadre configuration. ConfigJSON is a factory.CadreJSON
// document; Version increments on every save.
type Cadre struct {
	ID         string
	Name       string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AuditRun records one audit execution.
type AuditRun struct {
	ID         string
	EmployeeID string
	Trigger    Trigger
	IsFlagged  bool
	Severity   audit.Severity
	Reason     string
	RunAt      time.Time
}

// NewAuditRun builds a run record with a fresh ID.
func NewAuditRun(employeeID string, trigger Trigger, status FlagStatus) AuditRun {
	return AuditRun{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Trigger:    trigger,
		IsFlagged:  status.IsFlagged,
		Severity:   status.Severity,
		Reason:     status.Reason,
		RunAt:      status.AuditedAt,
	}
}

// NewEmployeeID generates an employee identifier for records created
// without one.
func NewEmployeeID() string {
	return "emp-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// =============================================================================
// STORE - Registry persistence
// =============================================================================

// Store persists employees, cadres and the audit trail. Lookups of missing
// records return generic.ErrEmployeeNotFound / generic.ErrCadreNotFound.
type Store interface {
	// CreateEmployee inserts a new record; generic.ErrDuplicateEmployee if the ID is taken.
	CreateEmployee(ctx context.Context, emp Employee) error
	// SaveEmployee updates an existing record; generic.ErrEmployeeNotFound otherwise.
	SaveEmployee(ctx context.Context, emp Employee) error
	// UpdateFlag writes only the flag status, and only if the record's
	// UpdatedAt still equals readAt; generic.ErrStaleRecord otherwise.
	// UpdatedAt is left unchanged.
	UpdateFlag(ctx context.Context, id string, readAt time.Time, flag FlagStatus) error
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id string) error

	// ListFlagged returns flagged employees at or above minSeverity, most
	// severe first. SeverityNone means every flagged employee.
	ListFlagged(ctx context.Context, minSeverity audit.Severity) ([]Employee, error)

	SaveCadre(ctx context.Context, c Cadre) error
	GetCadre(ctx context.Context, id string) (*Cadre, error)
	ListCadres(ctx context.Context) ([]Cadre, error)

	// AppendAuditRun is append-only; runs are never updated or deleted
	// except by Reset or by deleting the employee.
	AppendAuditRun(ctx context.Context, run AuditRun) error
	// ListAuditRuns returns an employee's runs, newest first.
	ListAuditRuns(ctx context.Context, employeeID string) ([]AuditRun, error)

	// Reset clears all data (for tests and the demo).
	Reset(ctx context.Context) error
}

// FilterFlagged keeps flagged employees at or above minSeverity and orders them by
// severity (most severe first), then name, then ID.
func FilterFlagged(emps []Employee, minSeverity audit.Severity) []Employee {
	out := make([]Employee, 0, len(emps))
	for _, e := range emps {
		if e.Flag.IsFlagged && e.Flag.Severity.AtLeast(minSeverity) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Flag.Severity.Rank(), out[j].Flag.Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
