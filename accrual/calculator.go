/*
Package accrual computes how many leave days an employee has earned.

PURPOSE:
  Turns a LeaveTypeConfig plus an employee's joining date into accrual
  events on the calendar. The calculator is a pure function of calendar
  math: calling it twice with identical inputs yields identical output.
  It never writes anything - the batch runner materializes its events
  as ledger entries.

ACCRUAL TYPES:
  Yearly:
    Full annual quota credited once per year. In the joining year the
    grant lands on the joining date; subsequent years on January 1.
    With pro-rata enabled the joining-year grant is reduced to
    quota x remainingMonths / 12.

  Monthly:
    The accrual rate is credited on the first of each month, starting
    from the later of the policy's effective date and the joining date
    plus the minimum-service gate. With pro-rata enabled a mid-month
    start is reduced by the fraction of the month already elapsed:
    joining on the 15th of a 30-day month at rate 1.0 earns 0.5.

NUMERIC POLICY:
  All amounts are decimal.Decimal and stay unrounded here. Rounding to
  two decimal places happens exactly once, at ledger-entry creation,
  so per-month rounding error never compounds across a year.

SEE ALSO:
  - batch: materializes events as ledger entries on a schedule
  - policy: LeaveTypeConfig interpreted uniformly for every leave type
*/
package accrual

import (
	"github.com/shopspring/decimal"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/policy"
)

// =============================================================================
// EVENTS
// =============================================================================

// Event is a single accrual occurrence on the calendar.
type Event struct {
	On     calendar.Date
	Days   decimal.Decimal
	Reason string
}

// =============================================================================
// CALCULATOR
// =============================================================================

type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// AccruedAsOf returns the days earned for one leave type within the
// calendar year of asOf, up to and including asOf.
func (c *Calculator) AccruedAsOf(emp policy.Employee, cfg policy.LeaveTypeConfig, policyEffective calendar.Date, asOf calendar.Date) decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.Events(emp, cfg, policyEffective, calendar.StartOfYear(asOf.Year()), asOf) {
		total = total.Add(e.Days)
	}
	return total
}

// Events generates accrual events in [from, to], inclusive.
// Events before the minimum-service gate or the policy's effective date
// are never generated.
func (c *Calculator) Events(emp policy.Employee, cfg policy.LeaveTypeConfig, policyEffective calendar.Date, from, to calendar.Date) []Event {
	start := accrualStart(emp, cfg, policyEffective)
	if start.After(to) {
		return nil
	}

	switch cfg.AccrualType {
	case policy.AccrualYearly:
		return yearlyEvents(cfg, start, from, to)
	case policy.AccrualMonthly:
		return monthlyEvents(cfg, start, from, to)
	default:
		return nil
	}
}

// accrualStart is the first day any accrual may occur: the later of the
// policy's effective date and the joining date pushed past the
// minimum-service gate.
func accrualStart(emp policy.Employee, cfg policy.LeaveTypeConfig, policyEffective calendar.Date) calendar.Date {
	start := emp.JoiningDate.AddMonths(cfg.MinServiceMonths)
	if policyEffective.After(start) {
		start = policyEffective
	}
	return start
}

// =============================================================================
// YEARLY ACCRUAL
// =============================================================================

func yearlyEvents(cfg policy.LeaveTypeConfig, start, from, to calendar.Date) []Event {
	var events []Event
	twelve := decimal.NewFromInt(12)

	for year := from.Year(); year <= to.Year(); year++ {
		grantDate := calendar.StartOfYear(year)
		if start.After(grantDate) {
			grantDate = start
		}
		if grantDate.Year() != year {
			// Gate pushes the grant past year end; nothing accrues this year.
			continue
		}

		amount := cfg.AnnualQuota
		reason := "annual grant"

		// Pro-rate only the year accrual begins mid-year.
		if cfg.ProRataForNewJoiners && grantDate.After(calendar.StartOfYear(year)) {
			remainingMonths := 12 - int(grantDate.Month()) + 1
			amount = cfg.AnnualQuota.
				Mul(decimal.NewFromInt(int64(remainingMonths))).
				Div(twelve)
			reason = "pro-rated annual grant"
		}

		if from.BeforeOrEqual(grantDate) && grantDate.BeforeOrEqual(to) {
			events = append(events, Event{On: grantDate, Days: amount, Reason: reason})
		}
	}
	return events
}

// =============================================================================
// MONTHLY ACCRUAL
// =============================================================================

func monthlyEvents(cfg policy.LeaveTypeConfig, start, from, to calendar.Date) []Event {
	var events []Event
	rate := cfg.EffectiveAccrualRate()

	current := calendar.StartOfMonth(start)
	for current.BeforeOrEqual(to) {
		on := current
		amount := rate
		reason := "monthly accrual"

		// First month with a mid-month start: the event lands on the
		// start date, pro-rated by the fraction of the month remaining.
		if current.Equal(calendar.StartOfMonth(start)) && start.After(current) {
			on = start
			if cfg.ProRataForNewJoiners {
				daysInMonth := calendar.DaysInMonth(start)
				remaining := daysInMonth - start.Day()
				amount = rate.
					Mul(decimal.NewFromInt(int64(remaining))).
					Div(decimal.NewFromInt(int64(daysInMonth)))
				reason = "pro-rated joining month accrual"
			}
		}

		if from.BeforeOrEqual(on) && on.BeforeOrEqual(to) {
			events = append(events, Event{On: on, Days: amount, Reason: reason})
		}
		current = current.AddMonths(1)
	}
	return events
}
