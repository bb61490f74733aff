/*
Package ledger is the append-only record of every balance-affecting leave event.

PURPOSE:
  The ledger is the source of truth. Every accrual, consumption,
  carry-forward, encashment, adjustment, and reversal is an immutable
  Entry; the per-(employee, leave type, year) Balance row is a cache
  recomputed transactionally with each append and reconstructible at any
  time by replaying the entries.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: entries are never updated or deleted; mistakes are
     corrected with reversal entries.
  2. REPLAY: sum of signed entry days == cached current balance, always.
     A mismatch is LedgerCorruption and is never silently repaired.
  3. ATOMICITY: an entry and its balance update are one unit - neither
     is visible without the other.
  4. SERIALIZATION: mutations for the same (employee, leave type, year)
     are strictly ordered; different employees proceed in parallel.
  5. WRITE-TIME SUFFICIENCY: a consumption that would drive a
     non-negative-capable balance below zero is rejected at append time,
     even if an earlier validation passed (check-then-act race).

SIGN CONVENTION:
  Days are signed: accrual and carry-forward are positive, consumption
  and encashment are negative, reversal carries the opposite sign of the
  entry it undoes. Days are rounded to two decimal places exactly once,
  at entry creation.

SEE ALSO:
  - store/memory, store/sqlite: Store implementations
  - request: validates proposed consumption against the cached balance
  - payroll: projects period ledger deltas into money
*/
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/policy"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

type EventType string

const (
	EventAccrual      EventType = "accrual"       // earned days (batch job)
	EventConsumption  EventType = "consumption"   // approved leave taken
	EventCarryForward EventType = "carry_forward" // opening balance from prior year
	EventEncashment   EventType = "encashment"    // days converted to pay
	EventAdjustment   EventType = "adjustment"    // manual correction / year-close zeroing
	EventReversal     EventType = "reversal"      // undo of a previous entry
)

// DaysPrecision is the decimal precision of ledger days. Intermediate
// accrual math stays unrounded; rounding happens once, here.
const DaysPrecision = 2

// =============================================================================
// ENTRY - Immutable once written
// =============================================================================

type Entry struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employee_id"`
	LeaveType  policy.LeaveType `json:"leave_type"`
	Year       int              `json:"year"`

	Type          EventType       `json:"event_type"`
	Days          decimal.Decimal `json:"days"` // signed
	EffectiveDate calendar.Date   `json:"effective_date"`

	ReferenceID    string `json:"reference_id,omitempty"` // e.g. leave-request id
	Reason         string `json:"reason,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	// Audit
	CreatedBy     string    `json:"created_by"`
	CreatedByType string    `json:"created_by_type"` // "employee", "manager", "system", "admin"
	CreatedAt     time.Time `json:"created_at"`
}

// NewEntry builds an entry with a fresh ID and days rounded to ledger
// precision. This is the only place rounding happens.
func NewEntry(employeeID string, lt policy.LeaveType, year int, typ EventType, days decimal.Decimal, effective calendar.Date) Entry {
	return Entry{
		ID:            uuid.NewString(),
		EmployeeID:    employeeID,
		LeaveType:     lt,
		Year:          year,
		Type:          typ,
		Days:          days.Round(DaysPrecision),
		EffectiveDate: effective,
		CreatedAt:     time.Now().UTC(),
	}
}

// =============================================================================
// BALANCE - Materialized view, one row per employee x leave type x year
// =============================================================================

// Balance is a cache of the ledger replay. It is mutated exclusively by
// Ledger.Append, never edited directly.
type Balance struct {
	EmployeeID string           `json:"employee_id"`
	LeaveType  policy.LeaveType `json:"leave_type"`
	Year       int              `json:"year"`

	Opening    decimal.Decimal `json:"opening_balance"` // carry-forward from prior year
	Accrued    decimal.Decimal `json:"accrued_to_date"`
	Consumed   decimal.Decimal `json:"consumed"` // stored positive
	Encashed   decimal.Decimal `json:"encashed"` // stored positive
	Adjustment decimal.Decimal `json:"adjustment"`
}

// ZeroBalance returns an empty balance row for a key.
func ZeroBalance(employeeID string, lt policy.LeaveType, year int) Balance {
	return Balance{EmployeeID: employeeID, LeaveType: lt, Year: year}
}

// Current is opening + accrued - consumed - encashed + adjustment.
func (b Balance) Current() decimal.Decimal {
	return b.Opening.Add(b.Accrued).Sub(b.Consumed).Sub(b.Encashed).Add(b.Adjustment)
}

// apply folds one entry into the balance. Replaying every entry through
// apply reconstructs the cached row exactly.
func (b Balance) apply(e Entry) Balance {
	switch e.Type {
	case EventAccrual:
		b.Accrued = b.Accrued.Add(e.Days)
	case EventConsumption:
		b.Consumed = b.Consumed.Add(e.Days.Neg())
	case EventCarryForward:
		b.Opening = b.Opening.Add(e.Days)
	case EventEncashment:
		b.Encashed = b.Encashed.Add(e.Days.Neg())
	case EventAdjustment:
		b.Adjustment = b.Adjustment.Add(e.Days)
	case EventReversal:
		// A reversal restores what its referenced consumption took.
		b.Consumed = b.Consumed.Sub(e.Days)
	}
	return b
}

// Replay folds a set of entries into a balance from zero.
func Replay(employeeID string, lt policy.LeaveType, year int, entries []Entry) Balance {
	b := ZeroBalance(employeeID, lt, year)
	for _, e := range entries {
		b = b.apply(e)
	}
	return b
}
