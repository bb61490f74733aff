package policy

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONFIGURATION CHECKS
// =============================================================================

// ConfigWarning flags a suspicious but permitted configuration.
// HR may intentionally override conventions (e.g. an accrual rate that
// outpaces the annual quota); these are surfaced, never silently fixed.
type ConfigWarning struct {
	LeaveType LeaveType
	Field     string
	Message   string
}

func (w ConfigWarning) String() string {
	return fmt.Sprintf("%s.%s: %s", w.LeaveType, w.Field, w.Message)
}

// Validate checks hard invariants and returns soft warnings.
// A non-nil error means the policy must not be saved; warnings are
// advisory and accompany a valid policy.
func (p *LeavePolicy) Validate() ([]ConfigWarning, error) {
	if p.Scope != ScopeCompany && p.ScopeValue == "" {
		return nil, fmt.Errorf("policy %q: scope %s requires a scope_value", p.Name, p.Scope)
	}
	if p.Scope == ScopeCompany && p.ScopeValue != "" {
		return nil, fmt.Errorf("policy %q: company scope must not set scope_value", p.Name)
	}

	var warnings []ConfigWarning
	seen := make(map[LeaveType]bool)

	for _, c := range p.LeaveTypes {
		if seen[c.LeaveType] {
			return nil, fmt.Errorf("policy %q: duplicate leave type %s", p.Name, c.LeaveType)
		}
		seen[c.LeaveType] = true

		if c.AnnualQuota.IsNegative() {
			return nil, fmt.Errorf("policy %q: %s annual_quota must be >= 0", p.Name, c.LeaveType)
		}
		if c.EncashmentAllowed && c.EncashmentMaxDays != nil && c.EncashmentMaxDays.GreaterThan(c.AnnualQuota) {
			return nil, fmt.Errorf("policy %q: %s encashment_max_days exceeds annual_quota", p.Name, c.LeaveType)
		}

		// Design convention, not hard-enforced: a monthly rate that
		// outpaces the quota is assumed to be an intentional HR override.
		if c.AccrualType == AccrualMonthly {
			yearly := c.EffectiveAccrualRate().Mul(decimal.NewFromInt(12))
			if yearly.GreaterThan(c.AnnualQuota) {
				warnings = append(warnings, ConfigWarning{
					LeaveType: c.LeaveType,
					Field:     "accrual_rate",
					Message: fmt.Sprintf("rate x 12 (%s) exceeds annual_quota (%s)",
						yearly.String(), c.AnnualQuota.String()),
				})
			}
		}
	}

	return warnings, nil
}
