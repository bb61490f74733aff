package request

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/policy"
)

// =============================================================================
// VALIDATOR - Every check runs; the caller sees all violations at once
// =============================================================================

type ViolationCode string

const (
	InsufficientNotice         ViolationCode = "insufficient_notice"
	ExceedsConsecutiveLimit    ViolationCode = "exceeds_consecutive_limit"
	MedicalCertificateRequired ViolationCode = "medical_certificate_required"
	InsufficientBalance        ViolationCode = "insufficient_balance"
)

type Violation struct {
	Code    ViolationCode `json:"code"`
	Message string        `json:"message"`
}

// Result holds every violation found. A UI renders the full list, not
// just the first failure.
type Result struct {
	Violations []Violation     `json:"violations,omitempty"`
	Available  decimal.Decimal `json:"available"`
}

func (r Result) OK() bool { return len(r.Violations) == 0 }

// Validator evaluates a request against a resolved leave type config and
// the latest committed balance. It never writes the ledger; the ledger
// re-verifies sufficiency inside its own lock at append time.
type Validator struct {
	// Today is injectable for tests. Defaults to calendar.Today.
	Today func() calendar.Date
}

func (v *Validator) today() calendar.Date {
	if v.Today != nil {
		return v.Today()
	}
	return calendar.Today()
}

// Validate runs all four policy checks and returns the full reason
// list. available is the current balance for the request's leave type
// and year at validation time.
func (v *Validator) Validate(req LeaveRequest, cfg policy.LeaveTypeConfig, available decimal.Decimal) Result {
	res := Result{Available: available}

	// Even with zero required notice a backdated start date fails:
	// notice is negative, so the comparison always runs.
	notice := calendar.DaysBetween(v.today(), req.StartDate)
	if notice < cfg.AdvanceNoticeDays {
		res.Violations = append(res.Violations, Violation{
			Code: InsufficientNotice,
			Message: fmt.Sprintf("%s leave needs %d days notice, got %d",
				req.LeaveType, cfg.AdvanceNoticeDays, notice),
		})
	}

	if cfg.MaxConsecutiveDays != nil && req.DaysRequested.GreaterThan(*cfg.MaxConsecutiveDays) {
		res.Violations = append(res.Violations, Violation{
			Code: ExceedsConsecutiveLimit,
			Message: fmt.Sprintf("requested %s days exceeds the %s consecutive-day limit",
				req.DaysRequested, cfg.MaxConsecutiveDays),
		})
	}

	if cfg.RequiresMedicalCertificate &&
		req.DaysRequested.GreaterThan(cfg.MedicalCertificateThreshold) &&
		!req.HasMedicalCertificate {
		res.Violations = append(res.Violations, Violation{
			Code: MedicalCertificateRequired,
			Message: fmt.Sprintf("medical certificate required for %s leave beyond %s days",
				req.LeaveType, cfg.MedicalCertificateThreshold),
		})
	}

	if !cfg.CanBeNegative && available.Sub(req.DaysRequested).IsNegative() {
		res.Violations = append(res.Violations, Violation{
			Code: InsufficientBalance,
			Message: fmt.Sprintf("requested %s days, %s available",
				req.DaysRequested, available),
		})
	}

	return res
}
