/*
scheduler.go - Periodic re-audit scheduler

PURPOSE:
  Time alone changes audit outcomes: officers cross the retirement horizon,
  probation windows lapse, stagnation accrues. The scheduler re-audits every
  stored employee on an interval so persisted flags track the calendar and
  not only the last write.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Each pass audits every employee with trigger "scheduled"
  - A record that fails (for example a deleted cadre) is logged and counted,
    the pass continues
  - Only the flag columns are written, and only if the record is unchanged
    since it was listed; an edited record is read again and re-audited

USAGE:
  scheduler := NewReauditScheduler(handler, 24*time.Hour)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerReaudit endpoint (manual pass)
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/personnel-audit/generic"
	"github.com/warp/personnel-audit/store"
)

// ReauditAll audits every stored employee with the given trigger.
func (h *Handler) ReauditAll(ctx context.Context, trigger store.Trigger) (ReauditSummaryDTO, error) {
	summary := ReauditSummaryDTO{Trigger: string(trigger), RunAt: formatTimestamp(h.now())}

	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		return summary, fmt.Errorf("list employees: %w", err)
	}

	for i := range employees {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		emp := employees[i]
		res, change, err := h.reauditStored(ctx, emp, trigger)
		if errors.Is(err, generic.ErrEmployeeNotFound) {
			continue // deleted since the list was read
		}
		if err != nil {
			summary.Failed++
			h.Logger.Warn("re-audit failed", "employee_id", emp.ID, "error", err)
			continue
		}
		summary.Audited++
		if res.IsFlagged {
			summary.Flagged++
		}
		if change.Changed() {
			summary.Changed++
			h.Logger.Info("audit outcome changed",
				"employee_id", emp.ID,
				"severity", string(res.Severity),
				"raised", change.Added,
				"cleared", change.Removed,
			)
		}
	}
	return summary, nil
}

// ReauditScheduler re-audits the registry on an interval.
type ReauditScheduler struct {
	Handler  *Handler
	Interval time.Duration
	Enabled  bool
	Logger   *slog.Logger

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun time.Time
}

// NewReauditScheduler creates a scheduler. A non-positive interval leaves
// it disabled.
func NewReauditScheduler(h *Handler, interval time.Duration) *ReauditScheduler {
	return &ReauditScheduler{
		Handler:  h,
		Interval: interval,
		Enabled:  interval > 0,
		Logger:   h.Logger.With("component", "reaudit-scheduler"),
	}
}

// Start begins the scheduler. The first pass runs immediately.
func (rs *ReauditScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Logger.Info("disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.Interval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)
	go rs.run(rs.ticker, rs.stop)

	rs.Logger.Info("started", "interval", rs.Interval.String())
}

// Stop stops the scheduler and waits for an in-flight pass.
func (rs *ReauditScheduler) Stop() {
	rs.mu.Lock()
	ticker, stop := rs.ticker, rs.stop
	rs.ticker = nil
	rs.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(stop)
	rs.wg.Wait()
	rs.Logger.Info("stopped")
}

func (rs *ReauditScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	rs.RunNow(context.Background())

	for {
		select {
		case <-ticker.C:
			rs.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow performs one pass synchronously.
func (rs *ReauditScheduler) RunNow(ctx context.Context) ReauditSummaryDTO {
	start := time.Now()
	summary, err := rs.Handler.ReauditAll(ctx, store.TriggerScheduled)
	if err != nil {
		rs.Logger.Error("re-audit pass failed", "error", err)
	}

	rs.mu.Lock()
	rs.lastRun = start
	rs.mu.Unlock()

	rs.Logger.Info("re-audit pass complete",
		"audited", summary.Audited,
		"flagged", summary.Flagged,
		"changed", summary.Changed,
		"failed", summary.Failed,
		"duration", time.Since(start).String(),
	)
	return summary
}

// NextRunTime estimates when the next pass starts; zero before the first.
func (rs *ReauditScheduler) NextRunTime() time.Time {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.lastRun.IsZero() {
		return time.Time{}
	}
	return rs.lastRun.Add(rs.Interval)
}
