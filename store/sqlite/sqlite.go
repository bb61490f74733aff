/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces (ledger.Store, policy.Store,
  policy.EmployeeSource) using SQLite. In production, the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The ledger tables are append-only:
  - No UPDATE statements on ledger_entries
  - No DELETE statements on ledger_entries
  - Corrections via reversal entries only
  leave_balances is the one exception: it is a cache row upserted in the
  same transaction as the entry it reflects.

KEY TABLES:
  ledger_entries:  Immutable ledger of all balance changes
  leave_balances:  Cached balance per employee x leave type x year
  policies:        Policy documents (config stored as JSON)
  employees:       Employee projection for batch iteration
  year_close_runs: Audit trail for year-close batches

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The unique index on
  idempotency_key is the last line of defense against double-writes.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/ledger"
	"github.com/hrworks/leave-engine/policy"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Ledger entries (append-only)
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		year INTEGER NOT NULL,
		event_type TEXT NOT NULL,
		days TEXT NOT NULL,
		effective_date TEXT NOT NULL,
		reference_id TEXT,
		reason TEXT,
		idempotency_key TEXT UNIQUE,
		created_by TEXT,
		created_by_type TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_employee_type_year
		ON ledger_entries(employee_id, leave_type, year);
	CREATE INDEX IF NOT EXISTS idx_entries_effective_date
		ON ledger_entries(employee_id, leave_type, effective_date);
	CREATE INDEX IF NOT EXISTS idx_entries_reference
		ON ledger_entries(reference_id) WHERE reference_id IS NOT NULL;

	-- Balance cache, upserted in the same transaction as its entry
	CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		year INTEGER NOT NULL,
		opening TEXT NOT NULL,
		accrued TEXT NOT NULL,
		consumed TEXT NOT NULL,
		encashed TEXT NOT NULL,
		adjustment TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, leave_type, year)
	);

	-- Policies (full document as JSON, scope columns for lookup)
	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		scope TEXT NOT NULL,
		scope_value TEXT NOT NULL DEFAULT '',
		effective_from TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_policies_scope
		ON policies(scope, scope_value);

	-- Employees (projection of the employee master)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		designation TEXT,
		department TEXT,
		joining_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Year-close audit trail
	CREATE TABLE IF NOT EXISTS year_close_runs (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		year INTEGER NOT NULL,
		carried_over TEXT NOT NULL,
		forfeited TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		completed_at TEXT NOT NULL,
		UNIQUE(employee_id, leave_type, year)
	);

	CREATE INDEX IF NOT EXISTS idx_year_close_runs_year
		ON year_close_runs(year);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER STORE (ledger.Store interface)
// =============================================================================

// AppendEntry inserts the entry and upserts the balance row inside one
// database transaction, so neither is ever visible without the other.
func (s *Store) AppendEntry(ctx context.Context, e ledger.Entry, b ledger.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		if isBusyError(err) {
			return ledger.ErrConcurrentConflict
		}
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries
		(id, employee_id, leave_type, year, event_type, days, effective_date,
		 reference_id, reason, idempotency_key, created_by, created_by_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.EmployeeID,
		string(e.LeaveType),
		e.Year,
		string(e.Type),
		e.Days.String(),
		e.EffectiveDate.String(),
		nullString(e.ReferenceID),
		nullString(e.Reason),
		nullString(e.IdempotencyKey),
		e.CreatedBy,
		e.CreatedByType,
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateIdempotencyKey
		}
		if isBusyError(err) {
			return ledger.ErrConcurrentConflict
		}
		return fmt.Errorf("failed to append entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO leave_balances
		(employee_id, leave_type, year, opening, accrued, consumed, encashed, adjustment, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, leave_type, year) DO UPDATE SET
			opening = excluded.opening,
			accrued = excluded.accrued,
			consumed = excluded.consumed,
			encashed = excluded.encashed,
			adjustment = excluded.adjustment,
			updated_at = excluded.updated_at
	`,
		b.EmployeeID,
		string(b.LeaveType),
		b.Year,
		b.Opening.String(),
		b.Accrued.String(),
		b.Consumed.String(),
		b.Encashed.String(),
		b.Adjustment.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isBusyError(err) {
			return ledger.ErrConcurrentConflict
		}
		return fmt.Errorf("failed to upsert balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isBusyError(err) {
			return ledger.ErrConcurrentConflict
		}
		return err
	}
	return nil
}

// Entries returns the entries for one employee x leave type x year,
// ordered by effective date then creation time.
func (s *Store) Entries(ctx context.Context, employeeID string, lt policy.LeaveType, year int) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, leave_type, year, event_type, days, effective_date,
		       reference_id, reason, idempotency_key, created_by, created_by_type, created_at
		FROM ledger_entries
		WHERE employee_id = ? AND leave_type = ? AND year = ?
		ORDER BY effective_date ASC, created_at ASC
	`

	return s.queryEntries(ctx, query, employeeID, string(lt), year)
}

// EntriesInRange returns entries by effective date, crossing ledger years.
func (s *Store) EntriesInRange(ctx context.Context, employeeID string, lt policy.LeaveType, from, to calendar.Date) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, leave_type, year, event_type, days, effective_date,
		       reference_id, reason, idempotency_key, created_by, created_by_type, created_at
		FROM ledger_entries
		WHERE employee_id = ? AND leave_type = ?
		  AND effective_date >= ? AND effective_date <= ?
		ORDER BY effective_date ASC, created_at ASC
	`

	return s.queryEntries(ctx, query, employeeID, string(lt), from.String(), to.String())
}

// Balance returns the cached balance row, or (zero, false, nil) if absent.
func (s *Store) Balance(ctx context.Context, employeeID string, lt policy.LeaveType, year int) (ledger.Balance, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		b                                                ledger.Balance
		leaveType                                        string
		opening, accrued, consumed, encashed, adjustment string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT employee_id, leave_type, year, opening, accrued, consumed, encashed, adjustment
		FROM leave_balances
		WHERE employee_id = ? AND leave_type = ? AND year = ?
	`, employeeID, string(lt), year).Scan(
		&b.EmployeeID, &leaveType, &b.Year,
		&opening, &accrued, &consumed, &encashed, &adjustment,
	)
	if err == sql.ErrNoRows {
		return ledger.Balance{}, false, nil
	}
	if err != nil {
		return ledger.Balance{}, false, err
	}

	b.LeaveType = policy.LeaveType(leaveType)
	if b.Opening, err = decimal.NewFromString(opening); err != nil {
		return ledger.Balance{}, false, fmt.Errorf("corrupt balance row: %w", err)
	}
	b.Accrued, _ = decimal.NewFromString(accrued)
	b.Consumed, _ = decimal.NewFromString(consumed)
	b.Encashed, _ = decimal.NewFromString(encashed)
	b.Adjustment, _ = decimal.NewFromString(adjustment)
	return b, true, nil
}

// Balances returns all cached balance rows for an employee in a year.
func (s *Store) Balances(ctx context.Context, employeeID string, year int) ([]ledger.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, leave_type, year, opening, accrued, consumed, encashed, adjustment
		FROM leave_balances
		WHERE employee_id = ? AND year = ?
		ORDER BY leave_type
	`, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []ledger.Balance
	for rows.Next() {
		var (
			b                                                ledger.Balance
			leaveType                                        string
			opening, accrued, consumed, encashed, adjustment string
		)
		if err := rows.Scan(&b.EmployeeID, &leaveType, &b.Year,
			&opening, &accrued, &consumed, &encashed, &adjustment); err != nil {
			return nil, err
		}
		b.LeaveType = policy.LeaveType(leaveType)
		b.Opening, _ = decimal.NewFromString(opening)
		b.Accrued, _ = decimal.NewFromString(accrued)
		b.Consumed, _ = decimal.NewFromString(consumed)
		b.Encashed, _ = decimal.NewFromString(encashed)
		b.Adjustment, _ = decimal.NewFromString(adjustment)
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// HasEntry checks if an idempotency key exists.
func (s *Store) HasEntry(ctx context.Context, idempotencyKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ledger_entries WHERE idempotency_key = ?",
		idempotencyKey,
	).Scan(&count)

	return count > 0, err
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (ledger.Entry, error) {
	var (
		e                                     ledger.Entry
		leaveType, eventType, days, effective string
		referenceID, reason, idempotencyKey   sql.NullString
		createdBy, createdByType              sql.NullString
		createdAt                             string
	)

	err := rows.Scan(
		&e.ID, &e.EmployeeID, &leaveType, &e.Year, &eventType, &days, &effective,
		&referenceID, &reason, &idempotencyKey, &createdBy, &createdByType, &createdAt,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

	e.LeaveType = policy.LeaveType(leaveType)
	e.Type = ledger.EventType(eventType)
	if e.Days, err = decimal.NewFromString(days); err != nil {
		return e, fmt.Errorf("corrupt entry %s: %w", e.ID, err)
	}
	if e.EffectiveDate, err = calendar.Parse(effective); err != nil {
		return e, fmt.Errorf("corrupt entry %s: %w", e.ID, err)
	}
	e.ReferenceID = referenceID.String
	e.Reason = reason.String
	e.IdempotencyKey = idempotencyKey.String
	e.CreatedBy = createdBy.String
	e.CreatedByType = createdByType.String
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return e, nil
}

// =============================================================================
// POLICY STORE (policy.Store interface)
// =============================================================================

// SavePolicy inserts or replaces a policy. The full document goes into
// config_json; scope columns are denormalized for lookup.
func (s *Store) SavePolicy(ctx context.Context, p policy.LeavePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal policy: %w", err)
	}

	query := `
		INSERT INTO policies (id, scope, scope_value, effective_from, is_active, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			scope = excluded.scope,
			scope_value = excluded.scope_value,
			effective_from = excluded.effective_from,
			is_active = excluded.is_active,
			config_json = excluded.config_json,
			version = policies.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query,
		p.ID, string(p.Scope), p.ScopeValue, p.EffectiveFrom.String(), p.Active,
		string(configJSON), p.Version, now, now,
	)
	return err
}

// GetPolicy retrieves a policy by ID, or (zero, false, nil) if absent.
func (s *Store) GetPolicy(ctx context.Context, id string) (policy.LeavePolicy, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	var version int
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json, version FROM policies WHERE id = ?", id,
	).Scan(&configJSON, &version)
	if err == sql.ErrNoRows {
		return policy.LeavePolicy{}, false, nil
	}
	if err != nil {
		return policy.LeavePolicy{}, false, err
	}

	p, err := unmarshalPolicy(configJSON, version)
	if err != nil {
		return policy.LeavePolicy{}, false, err
	}
	return p, true, nil
}

// ListPolicies returns all policy records.
func (s *Store) ListPolicies(ctx context.Context) ([]policy.LeavePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPolicies(ctx, "SELECT config_json, version FROM policies ORDER BY id")
}

// ListPoliciesByScope returns policies at one scope level.
func (s *Store) ListPoliciesByScope(ctx context.Context, scope policy.Scope) ([]policy.LeavePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPolicies(ctx,
		"SELECT config_json, version FROM policies WHERE scope = ? ORDER BY id", string(scope))
}

func (s *Store) queryPolicies(ctx context.Context, query string, args ...any) ([]policy.LeavePolicy, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []policy.LeavePolicy
	for rows.Next() {
		var configJSON string
		var version int
		if err := rows.Scan(&configJSON, &version); err != nil {
			return nil, err
		}
		p, err := unmarshalPolicy(configJSON, version)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func unmarshalPolicy(configJSON string, version int) (policy.LeavePolicy, error) {
	var p policy.LeavePolicy
	if err := json.Unmarshal([]byte(configJSON), &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal policy: %w", err)
	}
	p.Version = version
	return p, nil
}

// =============================================================================
// EMPLOYEE SOURCE (policy.EmployeeSource interface)
// =============================================================================

// SaveEmployee inserts or updates an employee projection.
func (s *Store) SaveEmployee(ctx context.Context, emp policy.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, designation, department, joining_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			designation = excluded.designation,
			department = excluded.department,
			joining_date = excluded.joining_date
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Designation, emp.Department,
		emp.JoiningDate.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID, or (zero, false, nil) if absent.
func (s *Store) GetEmployee(ctx context.Context, id string) (policy.Employee, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp policy.Employee
	var designation, department sql.NullString
	var joiningDate string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, designation, department, joining_date FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.Name, &designation, &department, &joiningDate)
	if err == sql.ErrNoRows {
		return policy.Employee{}, false, nil
	}
	if err != nil {
		return policy.Employee{}, false, err
	}

	emp.Designation = designation.String
	emp.Department = department.String
	if emp.JoiningDate, err = calendar.Parse(joiningDate); err != nil {
		return policy.Employee{}, false, fmt.Errorf("corrupt employee %s: %w", id, err)
	}
	return emp, true, nil
}

// ListEmployees returns all employees.
func (s *Store) ListEmployees(ctx context.Context) ([]policy.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, designation, department, joining_date FROM employees ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []policy.Employee
	for rows.Next() {
		var emp policy.Employee
		var designation, department sql.NullString
		var joiningDate string
		if err := rows.Scan(&emp.ID, &emp.Name, &designation, &department, &joiningDate); err != nil {
			return nil, err
		}
		emp.Designation = designation.String
		emp.Department = department.String
		if emp.JoiningDate, err = calendar.Parse(joiningDate); err != nil {
			return nil, fmt.Errorf("corrupt employee %s: %w", emp.ID, err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// =============================================================================
// YEAR-CLOSE RUNS
// =============================================================================

// YearCloseRun records the outcome of one year-close unit of work.
type YearCloseRun struct {
	ID          string
	EmployeeID  string
	LeaveType   policy.LeaveType
	Year        int
	CarriedOver decimal.Decimal
	Forfeited   decimal.Decimal
	Status      string // completed, failed
	Error       string
	CompletedAt time.Time
}

// SaveYearCloseRun records a year-close outcome, replacing any earlier
// record for the same employee x leave type x year (retries overwrite).
func (s *Store) SaveYearCloseRun(ctx context.Context, r YearCloseRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO year_close_runs
		(id, employee_id, leave_type, year, carried_over, forfeited, status, error, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, leave_type, year) DO UPDATE SET
			carried_over = excluded.carried_over,
			forfeited = excluded.forfeited,
			status = excluded.status,
			error = excluded.error,
			completed_at = excluded.completed_at
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.EmployeeID, string(r.LeaveType), r.Year,
		r.CarriedOver.String(), r.Forfeited.String(),
		r.Status, nullString(r.Error),
		r.CompletedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// YearCloseRuns returns all recorded runs for a year.
func (s *Store) YearCloseRuns(ctx context.Context, year int) ([]YearCloseRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, leave_type, year, carried_over, forfeited, status, error, completed_at
		FROM year_close_runs
		WHERE year = ?
		ORDER BY employee_id, leave_type
	`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []YearCloseRun
	for rows.Next() {
		var (
			r                     YearCloseRun
			leaveType             string
			carried, forfeited    string
			errMsg                sql.NullString
			completedAt           string
		)
		if err := rows.Scan(&r.ID, &r.EmployeeID, &leaveType, &r.Year,
			&carried, &forfeited, &r.Status, &errMsg, &completedAt); err != nil {
			return nil, err
		}
		r.LeaveType = policy.LeaveType(leaveType)
		r.CarriedOver, _ = decimal.NewFromString(carried)
		r.Forfeited, _ = decimal.NewFromString(forfeited)
		r.Error = errMsg.String
		r.CompletedAt, _ = time.Parse(time.RFC3339, completedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isBusyError detects SQLite's transient lock contention, surfaced to
// callers as a retryable conflict rather than a hard failure.
func isBusyError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}
