// Package memory provides an in-memory Store implementation for tests and dev.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/ledger"
	"github.com/hrworks/leave-engine/policy"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu          sync.RWMutex
	entries     map[entryKey][]ledger.Entry
	balances    map[entryKey]ledger.Balance
	idempotency map[string]bool
	policies    map[string]policy.LeavePolicy
	employees   map[string]policy.Employee
}

type entryKey struct {
	EmployeeID string
	LeaveType  policy.LeaveType
	Year       int
}

func New() *Store {
	return &Store{
		entries:     make(map[entryKey][]ledger.Entry),
		balances:    make(map[entryKey]ledger.Balance),
		idempotency: make(map[string]bool),
		policies:    make(map[string]policy.LeavePolicy),
		employees:   make(map[string]policy.Employee),
	}
}

// =============================================================================
// LEDGER STORE (ledger.Store interface)
// =============================================================================

// AppendEntry inserts the entry and the balance row under one lock, so
// neither is ever visible without the other.
func (s *Store) AppendEntry(_ context.Context, e ledger.Entry, b ledger.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.IdempotencyKey != "" && s.idempotency[e.IdempotencyKey] {
		return ledger.ErrDuplicateIdempotencyKey
	}

	k := entryKey{EmployeeID: e.EmployeeID, LeaveType: e.LeaveType, Year: e.Year}
	s.entries[k] = insertOrdered(s.entries[k], e)
	s.balances[k] = b
	if e.IdempotencyKey != "" {
		s.idempotency[e.IdempotencyKey] = true
	}
	return nil
}

// insertOrdered keeps entries sorted by effective date, then creation time.
func insertOrdered(entries []ledger.Entry, e ledger.Entry) []ledger.Entry {
	i := sort.Search(len(entries), func(i int) bool {
		if !entries[i].EffectiveDate.Equal(e.EffectiveDate) {
			return entries[i].EffectiveDate.After(e.EffectiveDate)
		}
		return entries[i].CreatedAt.After(e.CreatedAt)
	})
	entries = append(entries, ledger.Entry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = e
	return entries
}

func (s *Store) Entries(_ context.Context, employeeID string, lt policy.LeaveType, year int) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k := entryKey{EmployeeID: employeeID, LeaveType: lt, Year: year}
	out := make([]ledger.Entry, len(s.entries[k]))
	copy(out, s.entries[k])
	return out, nil
}

func (s *Store) EntriesInRange(_ context.Context, employeeID string, lt policy.LeaveType, from, to calendar.Date) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ledger.Entry
	for year := from.Year(); year <= to.Year(); year++ {
		k := entryKey{EmployeeID: employeeID, LeaveType: lt, Year: year}
		for _, e := range s.entries[k] {
			if from.BeforeOrEqual(e.EffectiveDate) && e.EffectiveDate.BeforeOrEqual(to) {
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EffectiveDate.Equal(out[j].EffectiveDate) {
			return out[i].EffectiveDate.Before(out[j].EffectiveDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) Balance(_ context.Context, employeeID string, lt policy.LeaveType, year int) (ledger.Balance, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.balances[entryKey{EmployeeID: employeeID, LeaveType: lt, Year: year}]
	return b, ok, nil
}

func (s *Store) Balances(_ context.Context, employeeID string, year int) ([]ledger.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ledger.Balance
	for k, b := range s.balances {
		if k.EmployeeID == employeeID && k.Year == year {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveType < out[j].LeaveType })
	return out, nil
}

func (s *Store) HasEntry(_ context.Context, idempotencyKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idempotency[idempotencyKey], nil
}

// =============================================================================
// POLICY STORE (policy.Store interface)
// =============================================================================

func (s *Store) SavePolicy(_ context.Context, p policy.LeavePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[p.ID] = p
	return nil
}

func (s *Store) GetPolicy(_ context.Context, id string) (policy.LeavePolicy, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[id]
	return p, ok, nil
}

func (s *Store) ListPolicies(_ context.Context) ([]policy.LeavePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]policy.LeavePolicy, 0, len(s.policies))
	for _, p := range s.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListPoliciesByScope(_ context.Context, scope policy.Scope) ([]policy.LeavePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []policy.LeavePolicy
	for _, p := range s.policies {
		if p.Scope == scope {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// EMPLOYEE SOURCE (policy.EmployeeSource interface)
// =============================================================================

func (s *Store) SaveEmployee(_ context.Context, e policy.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
	return nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (policy.Employee, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	return e, ok, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]policy.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]policy.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
