/*
ledger.go - The BalanceLedger: append, balance lookup, year close

WRITE PATH:
  Append is the ONLY mutation path. It serializes on the
  (employee, leave type, year) key, re-verifies the sufficiency
  invariant against the freshest balance, and hands entry + recomputed
  balance to the store as one atomic unit. A request validated as
  sufficient moments earlier can still fail here if a concurrent
  consumption drained the balance in between - Append is the authority,
  the validator is advice.

YEAR CLOSE:
  CloseYear moves min(balance, cap) into the next year as its opening
  carry-forward entry and zeroes the old year with an adjustment entry,
  so forfeited days stay visible in the audit trail. It is idempotent:
  deterministic idempotency keys make a retry after partial failure
  finish the job, and a rerun of a closed year a no-op.
*/
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/policy"
)

// =============================================================================
// KEYED LOCK - Serializes one balance key, leaves the rest parallel
// =============================================================================

type balanceKey struct {
	EmployeeID string
	LeaveType  policy.LeaveType
	Year       int
}

// keyedMutex hands out one mutex per balance key. Locks are never
// reclaimed; the key space is bounded by employees x leave types x years.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[balanceKey]*sync.Mutex
}

func (km *keyedMutex) get(k balanceKey) *sync.Mutex {
	km.mu.Lock()
	defer km.mu.Unlock()
	if km.locks == nil {
		km.locks = make(map[balanceKey]*sync.Mutex)
	}
	if _, ok := km.locks[k]; !ok {
		km.locks[k] = &sync.Mutex{}
	}
	return km.locks[k]
}

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	store Store
	keys  keyedMutex
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Append records an entry and atomically refreshes the cached balance.
// cfg governs the sufficiency invariant: consumption against a
// non-negative-capable config that would go below zero is rejected with
// InsufficientBalanceError, regardless of any earlier validation.
func (l *Ledger) Append(ctx context.Context, e Entry, cfg policy.LeaveTypeConfig) (Balance, error) {
	key := balanceKey{EmployeeID: e.EmployeeID, LeaveType: e.LeaveType, Year: e.Year}
	lock := l.keys.get(key)
	lock.Lock()
	defer lock.Unlock()

	return l.appendLocked(ctx, e, cfg)
}

func (l *Ledger) appendLocked(ctx context.Context, e Entry, cfg policy.LeaveTypeConfig) (Balance, error) {
	if e.IdempotencyKey != "" {
		exists, err := l.store.HasEntry(ctx, e.IdempotencyKey)
		if err != nil {
			return Balance{}, err
		}
		if exists {
			return Balance{}, ErrDuplicateIdempotencyKey
		}
	}

	e.Days = e.Days.Round(DaysPrecision)

	current, found, err := l.store.Balance(ctx, e.EmployeeID, e.LeaveType, e.Year)
	if err != nil {
		return Balance{}, err
	}
	if !found {
		current = ZeroBalance(e.EmployeeID, e.LeaveType, e.Year)
	}

	next := current.apply(e)

	if err := checkSufficiency(e, cfg, current, next); err != nil {
		return Balance{}, err
	}

	if err := l.store.AppendEntry(ctx, e, next); err != nil {
		return Balance{}, err
	}
	return next, nil
}

// checkSufficiency enforces the write-time balance invariant.
// Consumption and downward adjustments may go negative only when the
// config allows LOP; encashment may never go negative.
func checkSufficiency(e Entry, cfg policy.LeaveTypeConfig, before, after Balance) error {
	if !after.Current().IsNegative() {
		return nil
	}

	switch e.Type {
	case EventConsumption, EventAdjustment:
		if cfg.CanBeNegative {
			return nil
		}
	case EventEncashment:
		// never negative
	default:
		return nil
	}

	return &InsufficientBalanceError{
		EmployeeID: e.EmployeeID,
		LeaveType:  e.LeaveType,
		Year:       e.Year,
		Available:  before.Current(),
		Requested:  e.Days.Neg(),
	}
}

// CurrentBalance returns the cached balance row for a key. A key with no
// entries yet returns a zero balance, not an error.
func (l *Ledger) CurrentBalance(ctx context.Context, employeeID string, lt policy.LeaveType, year int) (Balance, error) {
	b, found, err := l.store.Balance(ctx, employeeID, lt, year)
	if err != nil {
		return Balance{}, err
	}
	if !found {
		return ZeroBalance(employeeID, lt, year), nil
	}
	return b, nil
}

// Balances returns all cached balance rows for an employee in a year.
func (l *Ledger) Balances(ctx context.Context, employeeID string, year int) ([]Balance, error) {
	return l.store.Balances(ctx, employeeID, year)
}

// Entries returns the full ledger for a balance key.
func (l *Ledger) Entries(ctx context.Context, employeeID string, lt policy.LeaveType, year int) ([]Entry, error) {
	return l.store.Entries(ctx, employeeID, lt, year)
}

// EntriesInRange returns one leave type's entries across a date range.
func (l *Ledger) EntriesInRange(ctx context.Context, employeeID string, lt policy.LeaveType, from, to calendar.Date) ([]Entry, error) {
	return l.store.EntriesInRange(ctx, employeeID, lt, from, to)
}

// =============================================================================
// YEAR CLOSE
// =============================================================================

// CloseResult reports what a year close did.
type CloseResult struct {
	EmployeeID    string           `json:"employee_id"`
	LeaveType     policy.LeaveType `json:"leave_type"`
	Year          int              `json:"year"`
	CarriedOver   decimal.Decimal  `json:"carried_over"`
	Forfeited     decimal.Decimal  `json:"forfeited"`
	AlreadyClosed bool             `json:"already_closed"`
}

// CloseYear carries the closing balance into year+1 (bounded by the
// carry-forward cap) and zeroes the closed year with an adjustment
// entry. Excess above the cap is forfeited by policy - it remains
// visible in the audit trail as part of the zeroing adjustment.
//
// Idempotent: rerunning a closed year is a no-op, and a retry after a
// partial failure completes the remaining half.
func (l *Ledger) CloseYear(ctx context.Context, employeeID string, lt policy.LeaveType, year int, cfg policy.LeaveTypeConfig) (CloseResult, error) {
	// Lock both years, old first, so concurrent closes and appends
	// serialize without deadlock.
	oldLock := l.keys.get(balanceKey{EmployeeID: employeeID, LeaveType: lt, Year: year})
	newLock := l.keys.get(balanceKey{EmployeeID: employeeID, LeaveType: lt, Year: year + 1})
	oldLock.Lock()
	defer oldLock.Unlock()
	newLock.Lock()
	defer newLock.Unlock()

	result := CloseResult{EmployeeID: employeeID, LeaveType: lt, Year: year}

	adjKey := closeKey(employeeID, lt, year, "zero")
	carryKey := closeKey(employeeID, lt, year, "carry")

	// The zeroing adjustment is written last, so its presence means the
	// close fully completed.
	closed, err := l.store.HasEntry(ctx, adjKey)
	if err != nil {
		return result, err
	}
	if closed {
		result.AlreadyClosed = true
		return result, nil
	}

	balance, _, err := l.store.Balance(ctx, employeeID, lt, year)
	if err != nil {
		return result, err
	}
	current := balance.Current()

	carry := decimal.Zero
	if cfg.CarryForward && current.IsPositive() {
		carry = current
		if cfg.MaxCarryForward != nil && carry.GreaterThan(*cfg.MaxCarryForward) {
			carry = *cfg.MaxCarryForward
		}
	}
	result.CarriedOver = carry.Round(DaysPrecision)
	result.Forfeited = current.Sub(carry).Round(DaysPrecision)

	// Step 1: opening entry in the new year. Skipped on retry if it
	// already landed before the crash.
	if carry.IsPositive() {
		carried, err := l.store.HasEntry(ctx, carryKey)
		if err != nil {
			return result, err
		}
		if !carried {
			cf := NewEntry(employeeID, lt, year+1, EventCarryForward, carry, calendar.StartOfYear(year+1))
			cf.Reason = fmt.Sprintf("carry-forward from %d", year)
			cf.ReferenceID = closeRef(year)
			cf.IdempotencyKey = carryKey
			cf.CreatedBy = "system"
			cf.CreatedByType = "system"
			if _, err := l.appendLocked(ctx, cf, cfg); err != nil {
				return result, err
			}
		}
	}

	// Step 2: zero the closed year for audit closure. The adjustment
	// covers both the carried and forfeited portions.
	if !current.IsZero() {
		adj := NewEntry(employeeID, lt, year, EventAdjustment, current.Neg(), calendar.EndOfYear(year))
		adj.Reason = fmt.Sprintf("year close: carried %s, forfeited %s", result.CarriedOver, result.Forfeited)
		adj.ReferenceID = closeRef(year)
		adj.IdempotencyKey = adjKey
		adj.CreatedBy = "system"
		adj.CreatedByType = "system"
		if _, err := l.appendLocked(ctx, adj, cfg); err != nil {
			return result, err
		}
	} else {
		// Nothing to zero; record the close marker so reruns short-circuit.
		marker := NewEntry(employeeID, lt, year, EventAdjustment, decimal.Zero, calendar.EndOfYear(year))
		marker.Reason = "year close: nothing to carry"
		marker.ReferenceID = closeRef(year)
		marker.IdempotencyKey = adjKey
		marker.CreatedBy = "system"
		marker.CreatedByType = "system"
		if _, err := l.appendLocked(ctx, marker, cfg); err != nil {
			return result, err
		}
	}

	return result, nil
}

func closeKey(employeeID string, lt policy.LeaveType, year int, step string) string {
	return fmt.Sprintf("close-%s-%s-%d-%s", employeeID, lt, year, step)
}

func closeRef(year int) string {
	return fmt.Sprintf("year-close-%d", year)
}

// =============================================================================
// INTEGRITY
// =============================================================================

// Verify replays the ledger for a key and compares it with the cached
// balance. A mismatch returns CorruptionError and leaves the cache
// untouched: reconciliation is a human decision.
func (l *Ledger) Verify(ctx context.Context, employeeID string, lt policy.LeaveType, year int) error {
	entries, err := l.store.Entries(ctx, employeeID, lt, year)
	if err != nil {
		return err
	}
	cached, found, err := l.store.Balance(ctx, employeeID, lt, year)
	if err != nil {
		return err
	}
	if !found {
		if len(entries) == 0 {
			return nil
		}
		cached = ZeroBalance(employeeID, lt, year)
	}

	replayed := Replay(employeeID, lt, year, entries)
	if !replayed.Current().Equal(cached.Current()) {
		return &CorruptionError{
			EmployeeID: employeeID,
			LeaveType:  lt,
			Year:       year,
			Cached:     cached.Current(),
			Replayed:   replayed.Current(),
		}
	}
	return nil
}
