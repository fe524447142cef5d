// Package memory provides an in-memory store.Store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/generic"
	"github.com/warp/personnel-audit/store"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[string]store.Employee
	cadres    map[string]store.Cadre
	runs      map[string][]store.AuditRun // employee ID -> runs in append order
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		employees: make(map[string]store.Employee),
		cadres:    make(map[string]store.Cadre),
		runs:      make(map[string][]store.AuditRun),
	}
}

func (m *Memory) CreateEmployee(_ context.Context, emp store.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[emp.ID]; ok {
		return fmt.Errorf("%w: %s", generic.ErrDuplicateEmployee, emp.ID)
	}
	now := time.Now().UTC()
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = now
	}
	emp.UpdatedAt = now
	m.employees[emp.ID] = cloneEmployee(emp)
	return nil
}

func (m *Memory) SaveEmployee(_ context.Context, emp store.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.employees[emp.ID]
	if !ok {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, emp.ID)
	}
	emp.CreatedAt = existing.CreatedAt
	emp.UpdatedAt = time.Now().UTC()
	m.employees[emp.ID] = cloneEmployee(emp)
	return nil
}

func (m *Memory) UpdateFlag(_ context.Context, id string, readAt time.Time, flag store.FlagStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.employees[id]
	if !ok {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	if !existing.UpdatedAt.Equal(readAt) {
		return fmt.Errorf("%w: %s", generic.ErrStaleRecord, id)
	}
	existing.Flag = flag
	m.employees[id] = existing
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id string) (*store.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	out := cloneEmployee(emp)
	return &out, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]store.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedEmployeesLocked(), nil
}

func (m *Memory) ListFlagged(_ context.Context, minSeverity audit.Severity) ([]store.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return store.FilterFlagged(m.sortedEmployeesLocked(), minSeverity), nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[id]; !ok {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	delete(m.employees, id)
	delete(m.runs, id)
	return nil
}

func (m *Memory) sortedEmployeesLocked() []store.Employee {
	out := make([]store.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, cloneEmployee(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// =============================================================================
// CADRES
// =============================================================================

func (m *Memory) SaveCadre(_ context.Context, c store.Cadre) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := m.cadres[c.ID]; ok {
		c.Version = existing.Version + 1
		c.CreatedAt = existing.CreatedAt
	} else {
		c.Version = 1
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	m.cadres[c.ID] = c
	return nil
}

func (m *Memory) GetCadre(_ context.Context, id string) (*store.Cadre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cadres[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", generic.ErrCadreNotFound, id)
	}
	return &c, nil
}

func (m *Memory) ListCadres(_ context.Context) ([]store.Cadre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]store.Cadre, 0, len(m.cadres))
	for _, c := range m.cadres {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// =============================================================================
// AUDIT TRAIL
// =============================================================================

func (m *Memory) AppendAuditRun(_ context.Context, run store.AuditRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[run.EmployeeID]; !ok {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, run.EmployeeID)
	}
	m.runs[run.EmployeeID] = append(m.runs[run.EmployeeID], run)
	return nil
}

// ListAuditRuns returns runs newest first; equal timestamps keep reverse
// append order.
func (m *Memory) ListAuditRuns(_ context.Context, employeeID string) ([]store.AuditRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := m.runs[employeeID]
	out := make([]store.AuditRun, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		out = append(out, runs[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RunAt.After(out[j].RunAt) })
	return out, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.employees = make(map[string]store.Employee)
	m.cadres = make(map[string]store.Cadre)
	m.runs = make(map[string][]store.AuditRun)
	return nil
}

// cloneEmployee copies the snapshot collections so callers cannot mutate
// stored state through shared slices.
func cloneEmployee(e store.Employee) store.Employee {
	s := e.Snapshot
	s.Promotions = append([]audit.Promotion(nil), s.Promotions...)
	s.CareerActions = append([]audit.CareerAction(nil), s.CareerActions...)
	s.Certificates = append([]audit.Certificate(nil), s.Certificates...)
	s.Leaves = append([]audit.LeaveRecord(nil), s.Leaves...)
	e.Snapshot = s
	return e
}
