/*
Package payroll projects ledger events into monetary adjustments.

PURPOSE:
  At payroll period close, the payroll engine asks this bridge what the
  leave ledger implies in money terms:
  - LOP (loss of pay): days the balance went further negative during the
    period, for leave types that allow negative balances
  - Encashment: unused days converted to payment, capped by policy

  This is a read-only projection. The actual payroll run is an external
  collaborator; this engine never reaches into payroll internals.

DAILY RATE:
  Rates divide the salary component by a fixed 30-day month. That is the
  business convention for payroll, not calendar-day arithmetic.

SEE ALSO:
  - policy/types.go: PayrollIntegration, passed in explicitly
  - ledger/ledger.go: the entries this bridge reads
*/
package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/ledger"
	"github.com/hrworks/leave-engine/policy"
)

// payrollMonthDays is the fixed divisor for daily rates.
var payrollMonthDays = decimal.NewFromInt(30)

// Salary is the slice of the payroll master this bridge needs.
type Salary struct {
	MonthlyBasic decimal.Decimal `json:"monthly_basic"`
	MonthlyGross decimal.Decimal `json:"monthly_gross"`
}

// Adjustments is what the payroll engine applies for one employee and
// one payroll period.
type Adjustments struct {
	EmployeeID string          `json:"employee_id"`
	Period     calendar.Period `json:"period"`

	LOPDays   decimal.Decimal `json:"lop_days"`
	LOPAmount decimal.Decimal `json:"lop_amount"`

	EncashmentDays   decimal.Decimal `json:"encashment_days"`
	EncashmentAmount decimal.Decimal `json:"encashment_amount"`
}

// Bridge computes payroll adjustments from ledger state.
type Bridge struct {
	Ledger *ledger.Ledger
}

// ComputeAdjustments sums LOP and encashment over the period under the
// given policy. The policy's payroll integration config is an explicit
// parameter so the bridge stays testable without a configuration store.
func (b *Bridge) ComputeAdjustments(ctx context.Context, emp policy.Employee, salary Salary, period calendar.Period, pol policy.LeavePolicy) (Adjustments, error) {
	adj := Adjustments{EmployeeID: emp.ID, Period: period}

	for _, cfg := range pol.LeaveTypes {
		if cfg.CanBeNegative {
			lop, err := b.lopDays(ctx, emp.ID, cfg.LeaveType, period)
			if err != nil {
				return Adjustments{}, err
			}
			adj.LOPDays = adj.LOPDays.Add(lop)
		}

		if cfg.EncashmentAllowed {
			days, err := b.encashedDays(ctx, emp.ID, cfg, period)
			if err != nil {
				return Adjustments{}, err
			}
			adj.EncashmentDays = adj.EncashmentDays.Add(days)
		}
	}

	lopRate, err := dailyRate(salary, pol.Payroll.LOPDeductionFormula, pol.Payroll.FixedDailyRate)
	if err != nil {
		return Adjustments{}, err
	}
	encashRate, err := dailyRate(salary, pol.Payroll.EncashmentFormula, pol.Payroll.FixedDailyRate)
	if err != nil {
		return Adjustments{}, err
	}

	adj.LOPAmount = adj.LOPDays.Mul(lopRate).Round(2)
	adj.EncashmentAmount = adj.EncashmentDays.Mul(encashRate).Round(2)
	return adj, nil
}

// lopDays is how much further negative the balance went during the
// period: max(0, negative-at-end - negative-at-start). A balance that
// recovered toward zero contributes no LOP. Balances are scoped to a
// ledger year, so a period straddling December 31 is evaluated year by
// year against each year's own ledger.
func (b *Bridge) lopDays(ctx context.Context, employeeID string, lt policy.LeaveType, period calendar.Period) (decimal.Decimal, error) {
	total := decimal.Zero

	for year := period.Start.Year(); year <= period.End.Year(); year++ {
		from := period.Start
		if year > period.Start.Year() {
			from = calendar.StartOfYear(year)
		}
		to := period.End
		if year < period.End.Year() {
			to = calendar.EndOfYear(year)
		}

		// Roll the year's entries forward to the clamped boundaries.
		entries, err := b.Ledger.Entries(ctx, employeeID, lt, year)
		if err != nil {
			return decimal.Zero, err
		}

		atStart := balanceAsOf(entries, from.AddDays(-1))
		atEnd := balanceAsOf(entries, to)

		negStart := decimal.Min(atStart, decimal.Zero).Neg()
		negEnd := decimal.Min(atEnd, decimal.Zero).Neg()

		if lop := negEnd.Sub(negStart); lop.IsPositive() {
			total = total.Add(lop)
		}
	}
	return total, nil
}

// encashedDays sums encashment entries in the period, capped by the
// policy's encashment_max_days.
func (b *Bridge) encashedDays(ctx context.Context, employeeID string, cfg policy.LeaveTypeConfig, period calendar.Period) (decimal.Decimal, error) {
	entries, err := b.Ledger.EntriesInRange(ctx, employeeID, cfg.LeaveType, period.Start, period.End)
	if err != nil {
		return decimal.Zero, err
	}

	days := decimal.Zero
	for _, e := range entries {
		if e.Type == ledger.EventEncashment {
			days = days.Add(e.Days.Neg()) // stored negative, report positive
		}
	}

	if cfg.EncashmentMaxDays != nil && days.GreaterThan(*cfg.EncashmentMaxDays) {
		days = *cfg.EncashmentMaxDays
	}
	return days, nil
}

// balanceAsOf replays entries with effective date <= asOf.
func balanceAsOf(entries []ledger.Entry, asOf calendar.Date) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		if e.EffectiveDate.BeforeOrEqual(asOf) {
			sum = sum.Add(e.Days)
		}
	}
	return sum
}

func dailyRate(salary Salary, formula policy.RateFormula, fixed decimal.Decimal) (decimal.Decimal, error) {
	switch formula {
	case policy.FormulaBasicPerDay:
		return salary.MonthlyBasic.Div(payrollMonthDays), nil
	case policy.FormulaGrossPerDay:
		return salary.MonthlyGross.Div(payrollMonthDays), nil
	case policy.FormulaFixed:
		return fixed, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown rate formula %q", formula)
	}
}
