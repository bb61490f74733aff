package ledger

import (
	"context"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/policy"
)

// =============================================================================
// STORE - Persistence for entries and cached balances (append-only)
// =============================================================================

// Store persists ledger entries and their materialized balances.
// IMPORTANT: entries are APPEND-ONLY. No Update, No Delete. Ever.
// Corrections are made via reversal entries.
type Store interface {
	// AppendEntry persists an entry together with the recomputed balance
	// row as a single atomic unit. Neither is visible without the other.
	// Returns ErrDuplicateIdempotencyKey if the entry's key exists.
	AppendEntry(ctx context.Context, e Entry, b Balance) error

	// Entries returns all entries for a balance key, ordered by
	// effective date then creation time.
	Entries(ctx context.Context, employeeID string, lt policy.LeaveType, year int) ([]Entry, error)

	// EntriesInRange returns an employee's entries for one leave type
	// with effective dates in [from, to], across year boundaries.
	EntriesInRange(ctx context.Context, employeeID string, lt policy.LeaveType, from, to calendar.Date) ([]Entry, error)

	// Balance returns the cached balance row, or (zero, false, nil)
	// when no entry has ever been written for the key.
	Balance(ctx context.Context, employeeID string, lt policy.LeaveType, year int) (Balance, bool, error)

	// Balances returns all cached balance rows for an employee in a year.
	Balances(ctx context.Context, employeeID string, year int) ([]Balance, error)

	// HasEntry checks whether an idempotency key already exists.
	HasEntry(ctx context.Context, idempotencyKey string) (bool, error)
}
