/*
Package batch runs the scheduled jobs: periodic accrual and year close.

PURPOSE:
  Two jobs own the write side of the accrual lifecycle:
  - RunAccrualBatch: materializes accrual events into ledger entries for
    every active employee, as of a date
  - RunYearClose: carries forward or forfeits each balance at year end

DESIGN:
  - Fan-out across employees with a worker pool; employees are fully
    independent, so there is no global lock
  - One employee's failure never aborts the batch; failures are logged
    and collected into the summary
  - Accrual entries carry deterministic idempotency keys, so re-running
    a batch after a partial failure only fills in the gaps

SEE ALSO:
  - accrual/calculator.go: the pure event schedule
  - ledger/ledger.go: Append and CloseYear
  - batch/scheduler.go: background trigger
*/
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hrworks/leave-engine/accrual"
	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/ledger"
	"github.com/hrworks/leave-engine/policy"
)

const defaultWorkers = 4

// Runner executes batch jobs over the employee population.
type Runner struct {
	Employees policy.EmployeeSource
	Resolver  *policy.Resolver
	Calc      *accrual.Calculator
	Ledger    *ledger.Ledger
	Workers   int
	Log       zerolog.Logger

	// RecordCloseRun persists a year-close audit record after each
	// employee x leave type unit. Nil disables audit recording.
	RecordCloseRun func(ctx context.Context, r CloseRun) error
}

// Failure identifies one employee the batch could not process.
type Failure struct {
	EmployeeID string `json:"employee_id"`
	Err        string `json:"error"`
}

// Summary reports what a batch run did.
type Summary struct {
	Processed int       `json:"processed"` // entries appended
	Skipped   int       `json:"skipped"`   // already present (idempotency key hit)
	Failed    int       `json:"failed"`    // employees that errored
	Failures  []Failure `json:"failures,omitempty"`
}

// CloseRun is the audit record for one year-close unit.
type CloseRun struct {
	EmployeeID  string
	LeaveType   policy.LeaveType
	Year        int
	CarriedOver decimal.Decimal
	Forfeited   decimal.Decimal
	Status      string
	Error       string
	CompletedAt time.Time
}

type employeeResult struct {
	processed int
	skipped   int
	err       error
}

// RunAccrualBatch appends the accrual entries due on or before asOf for
// every employee, for the calendar year of asOf. Entries already in the
// ledger (by idempotency key) are skipped, so the batch is safe to
// re-run daily over the same year.
func (r *Runner) RunAccrualBatch(ctx context.Context, asOf calendar.Date) (Summary, error) {
	return r.forEachEmployee(ctx, "accrual", func(ctx context.Context, emp policy.Employee) employeeResult {
		return r.accrueEmployee(ctx, emp, asOf)
	})
}

// RunYearClose closes every employee's balances for the year: carry
// forward within policy caps, forfeit the rest, open the next year.
// Already-closed balances are counted as skipped.
func (r *Runner) RunYearClose(ctx context.Context, year int) (Summary, error) {
	return r.forEachEmployee(ctx, "year-close", func(ctx context.Context, emp policy.Employee) employeeResult {
		return r.closeEmployee(ctx, emp, year)
	})
}

// forEachEmployee fans work out across the population with a worker
// pool and folds the per-employee results into one summary.
func (r *Runner) forEachEmployee(ctx context.Context, job string, fn func(context.Context, policy.Employee) employeeResult) (Summary, error) {
	employees, err := r.Employees.ListEmployees(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list employees: %w", err)
	}

	workers := r.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	type keyed struct {
		employeeID string
		employeeResult
	}

	jobs := make(chan policy.Employee)
	results := make(chan keyed, len(employees))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for emp := range jobs {
				results <- keyed{emp.ID, fn(ctx, emp)}
			}
		}()
	}

	for _, emp := range employees {
		jobs <- emp
	}
	close(jobs)
	wg.Wait()
	close(results)

	var summary Summary
	for res := range results {
		summary.Processed += res.processed
		summary.Skipped += res.skipped
		if res.err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{
				EmployeeID: res.employeeID,
				Err:        res.err.Error(),
			})
			r.Log.Error().Err(res.err).
				Str("job", job).
				Str("employee_id", res.employeeID).
				Msg("batch unit failed")
		}
	}

	r.Log.Info().
		Str("job", job).
		Int("employees", len(employees)).
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("batch completed")

	return summary, nil
}

func (r *Runner) accrueEmployee(ctx context.Context, emp policy.Employee, asOf calendar.Date) employeeResult {
	pol, err := r.Resolver.Resolve(ctx, emp, asOf)
	if err != nil {
		return employeeResult{err: err}
	}

	var res employeeResult
	yearStart := calendar.StartOfYear(asOf.Year())

	for _, cfg := range pol.LeaveTypes {
		events := r.Calc.Events(emp, cfg, pol.EffectiveFrom, yearStart, asOf)
		for _, ev := range events {
			e := ledger.NewEntry(
				emp.ID, cfg.LeaveType, ev.On.Year(),
				ledger.EventAccrual, ev.Days, ev.On,
			)
			e.Reason = ev.Reason
			e.IdempotencyKey = accrualKey(emp.ID, cfg.LeaveType, ev.On)
			e.CreatedBy = "system"
			e.CreatedByType = "system"

			if _, err := r.Ledger.Append(ctx, e, cfg); err != nil {
				if errors.Is(err, ledger.ErrDuplicateIdempotencyKey) {
					res.skipped++
					continue
				}
				res.err = fmt.Errorf("accrue %s/%s: %w", emp.ID, cfg.LeaveType, err)
				return res
			}
			res.processed++
		}
	}
	return res
}

func (r *Runner) closeEmployee(ctx context.Context, emp policy.Employee, year int) employeeResult {
	pol, err := r.Resolver.Resolve(ctx, emp, calendar.EndOfYear(year))
	if err != nil {
		return employeeResult{err: err}
	}

	var res employeeResult
	for _, cfg := range pol.LeaveTypes {
		closed, err := r.Ledger.CloseYear(ctx, emp.ID, cfg.LeaveType, year, cfg)
		if err != nil {
			res.err = fmt.Errorf("close %s/%s: %w", emp.ID, cfg.LeaveType, err)
			r.record(ctx, emp.ID, cfg.LeaveType, year, ledger.CloseResult{}, err)
			return res
		}

		if closed.AlreadyClosed {
			res.skipped++
		} else {
			res.processed++
			r.record(ctx, emp.ID, cfg.LeaveType, year, closed, nil)
		}
	}
	return res
}

func (r *Runner) record(ctx context.Context, employeeID string, lt policy.LeaveType, year int, closed ledger.CloseResult, runErr error) {
	if r.RecordCloseRun == nil {
		return
	}

	run := CloseRun{
		EmployeeID:  employeeID,
		LeaveType:   lt,
		Year:        year,
		CarriedOver: closed.CarriedOver,
		Forfeited:   closed.Forfeited,
		Status:      "completed",
		CompletedAt: time.Now().UTC(),
	}
	if runErr != nil {
		run.Status = "failed"
		run.Error = runErr.Error()
	}

	if err := r.RecordCloseRun(ctx, run); err != nil {
		r.Log.Warn().Err(err).
			Str("employee_id", employeeID).
			Str("leave_type", string(lt)).
			Int("year", year).
			Msg("failed to record year-close run")
	}
}

func accrualKey(employeeID string, lt policy.LeaveType, on calendar.Date) string {
	return fmt.Sprintf("accrual-%s-%s-%s", employeeID, lt, on)
}
