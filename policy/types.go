/*
Package policy defines the leave policy data model and scope resolution.

PURPOSE:
  A LeavePolicy is the contract between the organization and a group of
  employees: which leave types they get, how those accrue, what carries
  forward, and how unpaid leave and encashment translate into payroll.
  Policies attach at one of four organizational scopes; the ScopeResolver
  (resolver.go) decides which single policy governs a given employee.

KEY CONCEPTS:
  - LeavePolicy: versioned ruleset with an effective date and a scope
  - LeaveTypeConfig: per-leave-type accrual and consumption rules
  - PayrollIntegration: how ledger events become money (see payroll package)
  - Scope precedence: employee > role > department > company

LIFECYCLE:
  Policies are created and edited by HR. Once leave has accrued under a
  policy for a closed payroll period the policy is never edited in place;
  a new version with a later EffectiveFrom supersedes it.

SEE ALSO:
  - resolver.go: scope precedence resolution
  - warnings.go: configuration sanity checks
  - accrual: interprets LeaveTypeConfig uniformly per leave type
*/
package policy

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hrworks/leave-engine/calendar"
)

// =============================================================================
// SCOPE - Which organizational level a policy applies to
// =============================================================================

type Scope string

const (
	ScopeCompany    Scope = "company"
	ScopeDepartment Scope = "department"
	ScopeRole       Scope = "role"
	ScopeEmployee   Scope = "employee"
)

// =============================================================================
// LEAVE TYPES
// =============================================================================

type LeaveType string

const (
	LeaveCasual       LeaveType = "casual"
	LeaveSick         LeaveType = "sick"
	LeaveEarned       LeaveType = "earned"
	LeaveMaternity    LeaveType = "maternity"
	LeavePaternity    LeaveType = "paternity"
	LeaveBereavement  LeaveType = "bereavement"
	LeaveCompensatory LeaveType = "compensatory"
)

// LeaveTypes lists every known leave type, in display order.
var LeaveTypes = []LeaveType{
	LeaveCasual, LeaveSick, LeaveEarned, LeaveMaternity,
	LeavePaternity, LeaveBereavement, LeaveCompensatory,
}

// =============================================================================
// ACCRUAL CONFIGURATION
// =============================================================================

type AccrualType string

const (
	// AccrualYearly credits the full annual quota once per year.
	AccrualYearly AccrualType = "yearly"

	// AccrualMonthly credits a fixed rate on the first of each month.
	AccrualMonthly AccrualType = "monthly"
)

// =============================================================================
// LEAVE TYPE CONFIG - Rules for one leave type within a policy
// =============================================================================

// LeaveTypeConfig is pure data; the accrual and ledger packages interpret
// every leave type uniformly through this one shape. There is no per-type
// class hierarchy.
type LeaveTypeConfig struct {
	LeaveType LeaveType `json:"leave_type"`

	// Entitlement
	AnnualQuota decimal.Decimal  `json:"annual_quota"`
	AccrualType AccrualType      `json:"accrual_type"`
	AccrualRate *decimal.Decimal `json:"accrual_rate,omitempty"` // nil: AnnualQuota/12 for monthly

	// Year-end behavior
	CarryForward    bool             `json:"carry_forward"`
	MaxCarryForward *decimal.Decimal `json:"max_carry_forward,omitempty"` // nil = unlimited

	// Encashment
	EncashmentAllowed bool             `json:"encashment_allowed"`
	EncashmentMaxDays *decimal.Decimal `json:"encashment_max_days,omitempty"` // nil = unlimited

	// New joiners
	MinServiceMonths     int  `json:"min_service_months"`
	ProRataForNewJoiners bool `json:"pro_rata_for_new_joiners"`

	// Consumption constraints
	CanBeNegative               bool             `json:"can_be_negative"` // enables LOP
	RequiresMedicalCertificate  bool             `json:"requires_medical_certificate"`
	MedicalCertificateThreshold decimal.Decimal  `json:"medical_certificate_threshold"` // days
	MaxConsecutiveDays          *decimal.Decimal `json:"max_consecutive_days,omitempty"`
	AdvanceNoticeDays           int              `json:"advance_notice_days"`
}

// EffectiveAccrualRate returns the monthly accrual rate, defaulting to
// AnnualQuota/12 when no explicit rate is configured.
func (c LeaveTypeConfig) EffectiveAccrualRate() decimal.Decimal {
	if c.AccrualRate != nil {
		return *c.AccrualRate
	}
	return c.AnnualQuota.Div(decimal.NewFromInt(12))
}

// =============================================================================
// PAYROLL INTEGRATION - How ledger events become money
// =============================================================================

type RateFormula string

const (
	FormulaBasicPerDay RateFormula = "basic_per_day"
	FormulaGrossPerDay RateFormula = "gross_per_day"
	FormulaFixed       RateFormula = "fixed"
)

// PayrollIntegration configures the monetary side of leave events.
// It is passed explicitly into the payroll bridge, never read from
// ambient state.
type PayrollIntegration struct {
	LOPDeductionFormula RateFormula     `json:"lop_deduction_formula"`
	EncashmentFormula   RateFormula     `json:"encashment_formula"`
	FixedDailyRate      decimal.Decimal `json:"fixed_daily_rate"` // used when formula = fixed
}

// =============================================================================
// LEAVE POLICY
// =============================================================================

type LeavePolicy struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Scope      Scope  `json:"scope"`
	ScopeValue string `json:"scope_value,omitempty"` // empty for company scope

	EffectiveFrom calendar.Date `json:"effective_from"`
	Active        bool          `json:"is_active"`

	LeaveTypes []LeaveTypeConfig  `json:"leave_types"`
	Payroll    PayrollIntegration `json:"payroll_integration"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Config returns the configuration for a leave type, if the policy covers it.
func (p *LeavePolicy) Config(lt LeaveType) (LeaveTypeConfig, bool) {
	for _, c := range p.LeaveTypes {
		if c.LeaveType == lt {
			return c, true
		}
	}
	return LeaveTypeConfig{}, false
}

// EligibleAt reports whether the policy can govern anyone on the given date.
func (p *LeavePolicy) EligibleAt(asOf calendar.Date) bool {
	return p.Active && p.EffectiveFrom.BeforeOrEqual(asOf)
}

// =============================================================================
// EMPLOYEE - Projection of the external employee master
// =============================================================================

// Employee carries only the fields this engine consumes. The employee
// master system owns the full record.
type Employee struct {
	ID          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	Designation string        `json:"designation"`
	Department  string        `json:"department"`
	JoiningDate calendar.Date `json:"joining_date"`
}

// MonthsOfService returns completed months of service as of a date.
func (e Employee) MonthsOfService(asOf calendar.Date) int {
	return calendar.MonthsBetween(e.JoiningDate, asOf)
}
