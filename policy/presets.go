/*
presets.go - Ready-to-use policy configurations

PURPOSE:
  Starting-point policies for common Indian HR setups. These are what a
  fresh deployment seeds before HR customizes anything: a company-wide
  default covering casual, sick and earned leave, plus statutory
  maternity and paternity grants.

CUSTOMIZATION:
  These are templates, not law. Real deployments adjust quotas,
  carry-forward caps and notice periods per company handbook, usually
  through the policy API rather than in code.

SEE ALSO:
  - warnings.go: every preset passes Validate with no warnings
  - cmd/server: seeds StandardCompanyPolicy on an empty development DB
*/
package policy

import (
	"github.com/shopspring/decimal"

	"github.com/hrworks/leave-engine/calendar"
)

// =============================================================================
// PRESET POLICIES
// =============================================================================

// StandardCompanyPolicy is a typical company-wide default: 12 casual
// days accruing monthly with LOP beyond zero, 8 sick days needing a
// certificate past 2, and 18 earned days with capped carry-forward and
// encashment.
func StandardCompanyPolicy(id string, effectiveFrom calendar.Date) LeavePolicy {
	sickCap := decimal.NewFromInt(5)
	earnedCarry := decimal.NewFromInt(10)
	earnedEncash := decimal.NewFromInt(10)

	return LeavePolicy{
		ID:            id,
		Name:          "Standard Company Policy",
		Description:   "Company-wide default leave entitlements",
		Scope:         ScopeCompany,
		EffectiveFrom: effectiveFrom,
		Active:        true,
		LeaveTypes: []LeaveTypeConfig{
			{
				LeaveType:            LeaveCasual,
				AnnualQuota:          decimal.NewFromInt(12),
				AccrualType:          AccrualMonthly,
				ProRataForNewJoiners: true,
				CanBeNegative:        true,
				AdvanceNoticeDays:    2,
			},
			{
				LeaveType:                   LeaveSick,
				AnnualQuota:                 decimal.NewFromInt(8),
				AccrualType:                 AccrualYearly,
				ProRataForNewJoiners:        true,
				MaxConsecutiveDays:          &sickCap,
				RequiresMedicalCertificate:  true,
				MedicalCertificateThreshold: decimal.NewFromInt(2),
			},
			{
				LeaveType:            LeaveEarned,
				AnnualQuota:          decimal.NewFromInt(18),
				AccrualType:          AccrualMonthly,
				MinServiceMonths:     3,
				ProRataForNewJoiners: true,
				CarryForward:         true,
				MaxCarryForward:      &earnedCarry,
				EncashmentAllowed:    true,
				EncashmentMaxDays:    &earnedEncash,
				AdvanceNoticeDays:    7,
			},
		},
		Payroll: PayrollIntegration{
			LOPDeductionFormula: FormulaBasicPerDay,
			EncashmentFormula:   FormulaBasicPerDay,
		},
	}
}

// MaternityPolicy grants the statutory 26 weeks upfront, no carry-over.
func MaternityPolicy(id string, effectiveFrom calendar.Date) LeavePolicy {
	return LeavePolicy{
		ID:            id,
		Name:          "Maternity Leave",
		Description:   "Statutory maternity entitlement, granted upfront",
		Scope:         ScopeCompany,
		EffectiveFrom: effectiveFrom,
		Active:        true,
		LeaveTypes: []LeaveTypeConfig{{
			LeaveType:   LeaveMaternity,
			AnnualQuota: decimal.NewFromInt(182),
			AccrualType: AccrualYearly,
		}},
		Payroll: PayrollIntegration{
			LOPDeductionFormula: FormulaBasicPerDay,
			EncashmentFormula:   FormulaBasicPerDay,
		},
	}
}

// UseItOrLoseItPolicy is a variant where nothing survives year end.
func UseItOrLoseItPolicy(id string, annualDays int64, effectiveFrom calendar.Date) LeavePolicy {
	return LeavePolicy{
		ID:            id,
		Name:          "Use It or Lose It",
		Description:   "Full grant in January, unused days forfeit in December",
		Scope:         ScopeCompany,
		EffectiveFrom: effectiveFrom,
		Active:        true,
		LeaveTypes: []LeaveTypeConfig{{
			LeaveType:   LeaveCasual,
			AnnualQuota: decimal.NewFromInt(annualDays),
			AccrualType: AccrualYearly,
		}},
		Payroll: PayrollIntegration{
			LOPDeductionFormula: FormulaBasicPerDay,
			EncashmentFormula:   FormulaBasicPerDay,
		},
	}
}
