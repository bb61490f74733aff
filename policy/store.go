package policy

import "context"

// =============================================================================
// STORE - Persistence for policy records (pure data access, no rules)
// =============================================================================

// Store persists LeavePolicy records. Business rules (precedence,
// eligibility) live in the resolver, not here.
type Store interface {
	// SavePolicy inserts or replaces a policy record.
	SavePolicy(ctx context.Context, p LeavePolicy) error

	// GetPolicy returns a policy by ID, or (zero, false, nil) if absent.
	GetPolicy(ctx context.Context, id string) (LeavePolicy, bool, error)

	// ListPolicies returns all policy records.
	ListPolicies(ctx context.Context) ([]LeavePolicy, error)

	// ListPoliciesByScope returns policies at one scope level,
	// regardless of active flag or effective date.
	ListPoliciesByScope(ctx context.Context, scope Scope) ([]LeavePolicy, error)
}

// EmployeeSource lists the employees the batch jobs iterate over.
// Backed by the employee master in production; the stores keep a local
// projection so batches can run without reaching into that system.
type EmployeeSource interface {
	SaveEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, bool, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}
