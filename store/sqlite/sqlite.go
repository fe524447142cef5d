/*
Package sqlite provides a SQLite-backed implementation of store.Store.

PURPOSE:
  Persists the employee registry, cadre configurations and the audit trail.
  The snapshot is stored as a JSON document next to the denormalized audit
  outcome columns (is_flagged, flag_reason, flag_severity) so the flagged
  list is a single indexed query.

KEY TABLES:
  employees:   Registry record + last audit outcome
  cadres:      Cadre JSON documents (versioned)
  audit_runs:  Append-only audit trail, cascades with its employee

INDEXES:
  - idx_employees_flagged: Flagged list (hot path for the review queue)
  - idx_audit_runs_employee: Audit history per employee, newest first

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of database/sql. In-memory
  databases are pinned to one connection, otherwise every pooled
  connection would see its own empty database.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/audit.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool with versioned migrations.

SEE ALSO:
  - store/store.go: Interface and records
  - store/memory: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/generic"
	"github.com/warp/personnel-audit/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if dbPath == ":memory:" {
		dsn = ":memory:?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees (registry record + last audit outcome)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		cadre_id TEXT,
		snapshot_json TEXT NOT NULL,
		is_flagged INTEGER NOT NULL DEFAULT 0,
		flag_reason TEXT,
		flag_severity TEXT,
		audited_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_flagged
		ON employees(is_flagged, flag_severity);
	CREATE INDEX IF NOT EXISTS idx_employees_cadre
		ON employees(cadre_id);

	-- Cadres (versioned configuration documents)
	CREATE TABLE IF NOT EXISTS cadres (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Audit runs (append-only trail)
	CREATE TABLE IF NOT EXISTS audit_runs (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		trigger_type TEXT NOT NULL,
		is_flagged INTEGER NOT NULL,
		severity TEXT,
		reason TEXT,
		run_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_runs_employee
		ON audit_runs(employee_id, run_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

const employeeColumns = `id, name, cadre_id, snapshot_json, is_flagged, flag_reason, flag_severity, audited_at, created_at, updated_at`

// CreateEmployee inserts a new employee.
func (s *Store) CreateEmployee(ctx context.Context, emp store.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := json.Marshal(emp.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	now := time.Now().UTC()
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = now
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		emp.ID, emp.Name, emp.CadreID, string(snap),
		boolToInt(emp.Flag.IsFlagged), emp.Flag.Reason, string(emp.Flag.Severity), formatTime(emp.Flag.AuditedAt),
		formatTime(emp.CreatedAt), formatTime(now),
	)
	if isPrimaryKeyConflict(err) {
		return fmt.Errorf("%w: %s", generic.ErrDuplicateEmployee, emp.ID)
	}
	return err
}

// SaveEmployee updates an existing employee.
func (s *Store) SaveEmployee(ctx context.Context, emp store.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := json.Marshal(emp.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE employees SET
			name = ?, cadre_id = ?, snapshot_json = ?,
			is_flagged = ?, flag_reason = ?, flag_severity = ?, audited_at = ?,
			updated_at = ?
		WHERE id = ?`,
		emp.Name, emp.CadreID, string(snap),
		boolToInt(emp.Flag.IsFlagged), emp.Flag.Reason, string(emp.Flag.Severity), formatTime(emp.Flag.AuditedAt),
		formatTime(time.Now().UTC()), emp.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, emp.ID)
	}
	return nil
}

// UpdateFlag stores a flag status computed from the version read at readAt.
func (s *Store) UpdateFlag(ctx context.Context, id string, readAt time.Time, flag store.FlagStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE employees SET
			is_flagged = ?, flag_reason = ?, flag_severity = ?, audited_at = ?
		WHERE id = ? AND updated_at = ?`,
		boolToInt(flag.IsFlagged), flag.Reason, string(flag.Severity), formatTime(flag.AuditedAt),
		id, formatTime(readAt),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	return fmt.Errorf("%w: %s", generic.ErrStaleRecord, id)
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (*store.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]store.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryEmployees(ctx, "SELECT "+employeeColumns+" FROM employees ORDER BY name, id")
}

// ListFlagged returns flagged employees at or above minSeverity.
func (s *Store) ListFlagged(ctx context.Context, minSeverity audit.Severity) ([]store.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emps, err := s.queryEmployees(ctx, "SELECT "+employeeColumns+" FROM employees WHERE is_flagged = 1")
	if err != nil {
		return nil, err
	}
	return store.FilterFlagged(emps, minSeverity), nil
}

// DeleteEmployee removes an employee and its audit trail.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	return nil
}

func (s *Store) queryEmployees(ctx context.Context, query string, args ...any) ([]store.Employee, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emps []store.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		emps = append(emps, emp)
	}
	return emps, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (store.Employee, error) {
	var (
		emp                                  store.Employee
		cadreID, reason, severity, auditedAt sql.NullString
		snapJSON, createdAt, updatedAt       string
		flagged                              int
	)
	if err := row.Scan(&emp.ID, &emp.Name, &cadreID, &snapJSON, &flagged, &reason, &severity, &auditedAt, &createdAt, &updatedAt); err != nil {
		return emp, err
	}
	if err := json.Unmarshal([]byte(snapJSON), &emp.Snapshot); err != nil {
		return emp, fmt.Errorf("decode snapshot for %s: %w", emp.ID, err)
	}
	emp.CadreID = cadreID.String
	emp.Flag = store.FlagStatus{
		IsFlagged: flagged != 0,
		Reason:    reason.String,
		Severity:  audit.ParseSeverity(severity.String),
		AuditedAt: parseTime(auditedAt.String),
	}
	emp.CreatedAt = parseTime(createdAt)
	emp.UpdatedAt = parseTime(updatedAt)
	return emp, nil
}

// =============================================================================
// CADRE STORE
// =============================================================================

// SaveCadre upserts a cadre, bumping its version on update.
func (s *Store) SaveCadre(ctx context.Context, c store.Cadre) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO cadres (id, name, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			version = cadres.version + 1,
			updated_at = excluded.updated_at
	`
	now := formatTime(time.Now().UTC())
	_, err := s.db.ExecContext(ctx, query, c.ID, c.Name, c.ConfigJSON, now, now)
	return err
}

// GetCadre retrieves a cadre by ID.
func (s *Store) GetCadre(ctx context.Context, id string) (*store.Cadre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c store.Cadre
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM cadres WHERE id = ?",
		id,
	).Scan(&c.ID, &c.Name, &c.ConfigJSON, &c.Version, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", generic.ErrCadreNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

// ListCadres returns all cadres ordered by name.
func (s *Store) ListCadres(ctx context.Context) ([]store.Cadre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM cadres ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cadres []store.Cadre
	for rows.Next() {
		var c store.Cadre
		var createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.ConfigJSON, &c.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(createdAt)
		c.UpdatedAt = parseTime(updatedAt)
		cadres = append(cadres, c)
	}
	return cadres, rows.Err()
}

// =============================================================================
// AUDIT TRAIL
// =============================================================================

// AppendAuditRun records an audit execution.
func (s *Store) AppendAuditRun(ctx context.Context, run store.AuditRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees WHERE id = ?", run.EmployeeID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, run.EmployeeID)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_runs (id, employee_id, trigger_type, is_flagged, severity, reason, run_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.EmployeeID, string(run.Trigger), boolToInt(run.IsFlagged),
		string(run.Severity), run.Reason, formatTime(run.RunAt),
	)
	return err
}

// ListAuditRuns returns an employee's audit runs, newest first.
func (s *Store) ListAuditRuns(ctx context.Context, employeeID string) ([]store.AuditRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, trigger_type, is_flagged, severity, reason, run_at
		FROM audit_runs WHERE employee_id = ?
		ORDER BY run_at DESC, rowid DESC`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.AuditRun
	for rows.Next() {
		var (
			r                store.AuditRun
			trigger, runAt   string
			severity, reason sql.NullString
			flagged          int
		)
		if err := rows.Scan(&r.ID, &r.EmployeeID, &trigger, &flagged, &severity, &reason, &runAt); err != nil {
			return nil, err
		}
		r.Trigger = store.Trigger(trigger)
		r.IsFlagged = flagged != 0
		r.Severity = audit.ParseSeverity(severity.String)
		r.Reason = reason.String
		r.RunAt = parseTime(runAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"audit_runs", "employees", "cadres"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func isPrimaryKeyConflict(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) &&
		(se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timeLayout is fixed width so ORDER BY on the text column is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
