package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hrworks/leave-engine/policy"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientBalance is returned when a consumption or encashment
	// would drive a balance below zero and the governing config does not
	// allow negative balances. Raised both by the validator and again,
	// authoritatively, at append time.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrDuplicateIdempotencyKey is returned when an entry with the same
	// idempotency key already exists. Expected behavior for retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrConcurrentConflict is returned when the store could not commit
	// because a concurrent writer held the database. Transient: retry
	// with a refreshed balance.
	ErrConcurrentConflict = errors.New("concurrent ledger mutation conflict")

	// ErrLedgerCorruption is returned when the cached balance disagrees
	// with the ledger replay. Fatal: requires manual reconciliation and
	// must never be silently auto-corrected.
	ErrLedgerCorruption = errors.New("ledger replay does not match cached balance")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InsufficientBalanceError reports a balance shortage with full context.
type InsufficientBalanceError struct {
	EmployeeID string
	LeaveType  policy.LeaveType
	Year       int
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance for %s/%d: available %s, requested %s",
		e.LeaveType, e.EmployeeID, e.Year, e.Available.String(), e.Requested.String())
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// CorruptionError reports a replay mismatch. The cached row is left
// untouched so the discrepancy stays visible for reconciliation.
type CorruptionError struct {
	EmployeeID string
	LeaveType  policy.LeaveType
	Year       int
	Cached     decimal.Decimal
	Replayed   decimal.Decimal
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("ledger corruption for %s/%s/%d: cached balance %s, replay %s",
		e.EmployeeID, e.LeaveType, e.Year, e.Cached.String(), e.Replayed.String())
}

func (e *CorruptionError) Unwrap() error { return ErrLedgerCorruption }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the operation might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentConflict)
}

// IsClientError returns true if the error is due to the caller's request
// rather than engine state.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrDuplicateIdempotencyKey)
}

// IsFatal returns true for errors that demand operator attention.
func IsFatal(err error) bool {
	return errors.Is(err, ErrLedgerCorruption)
}
