/*
resolver.go - Scope precedence resolution

PURPOSE:
  Given an employee, find the single policy that governs them. Several
  active policies may cover the same employee through different scopes;
  that is normal, not an error. Precedence breaks the tie:

    employee > role > department > company

  Specificity always dominates recency: an employee-scoped policy wins
  over a department-scoped one even if the department policy is newer.
  Recency only matters WITHIN a scope level, where the latest
  EffectiveFrom wins.

DESIGN:
  The precedence order is an ordered chain of scope matchers rather than
  a hardcoded switch, so a fifth level (e.g. location) can be added by
  appending one entry without touching call sites.

FAILURE MODE:
  No company-wide fallback means the org is misconfigured. Resolve
  returns ErrPolicyNotFound; callers must surface it, never treat it as
  zero entitlement.
*/
package policy

import (
	"context"

	"github.com/hrworks/leave-engine/calendar"
)

// =============================================================================
// SCOPE CHAIN
// =============================================================================

// scopeMatcher pairs a scope level with the employee attribute it matches.
type scopeMatcher struct {
	Scope Scope
	Value func(Employee) string
}

// precedenceChain is evaluated most-specific-first.
var precedenceChain = []scopeMatcher{
	{ScopeEmployee, func(e Employee) string { return e.ID }},
	{ScopeRole, func(e Employee) string { return e.Designation }},
	{ScopeDepartment, func(e Employee) string { return e.Department }},
	{ScopeCompany, func(Employee) string { return "" }},
}

// =============================================================================
// RESOLVER
// =============================================================================

type Resolver struct {
	Store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{Store: store}
}

// Resolve finds the effective policy for an employee on a date.
func (r *Resolver) Resolve(ctx context.Context, emp Employee, asOf calendar.Date) (LeavePolicy, error) {
	for _, m := range precedenceChain {
		candidates, err := r.Store.ListPoliciesByScope(ctx, m.Scope)
		if err != nil {
			return LeavePolicy{}, err
		}

		winner, found := pickLatest(candidates, m.Value(emp), m.Scope, asOf)
		if found {
			return winner, nil
		}
	}

	return LeavePolicy{}, &NotFoundError{EmployeeID: emp.ID, AsOf: asOf.String()}
}

// pickLatest selects the eligible policy at one scope level with the most
// recent EffectiveFrom. Company scope matches unconditionally.
func pickLatest(candidates []LeavePolicy, scopeValue string, scope Scope, asOf calendar.Date) (LeavePolicy, bool) {
	var winner LeavePolicy
	found := false

	for _, p := range candidates {
		if !p.EligibleAt(asOf) {
			continue
		}
		if scope != ScopeCompany && p.ScopeValue != scopeValue {
			continue
		}
		if !found || p.EffectiveFrom.After(winner.EffectiveFrom) {
			winner = p
			found = true
		}
	}

	return winner, found
}
