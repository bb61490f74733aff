package request

import (
	"context"
	"fmt"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/ledger"
	"github.com/hrworks/leave-engine/policy"
)

// =============================================================================
// SERVICE - Validate, approve, cancel against one employee's ledger
// =============================================================================

// Service glues resolution, validation and the ledger together for the
// approval workflow. The workflow owns who may approve; this service
// owns what approval does to the balance.
type Service struct {
	Resolver  *policy.Resolver
	Employees policy.EmployeeSource
	Ledger    *ledger.Ledger
	Validator *Validator
}

// Check resolves the employee's policy and validates the request against
// it and the latest committed balance.
func (s *Service) Check(ctx context.Context, req LeaveRequest) (Result, error) {
	cfg, err := s.resolveConfig(ctx, req)
	if err != nil {
		return Result{}, err
	}

	bal, err := s.Ledger.CurrentBalance(ctx, req.EmployeeID, req.LeaveType, req.StartDate.Year())
	if err != nil {
		return Result{}, err
	}

	return s.Validator.Validate(req, cfg, bal.Current()), nil
}

// Approve validates once more and appends the consumption entry. The
// append re-checks sufficiency under the balance lock, so a request
// that passed Check can still come back with ErrInsufficientBalance
// here when a concurrent consumption won the race.
func (s *Service) Approve(ctx context.Context, req LeaveRequest, approverID string) (ledger.Balance, error) {
	cfg, err := s.resolveConfig(ctx, req)
	if err != nil {
		return ledger.Balance{}, err
	}

	bal, err := s.Ledger.CurrentBalance(ctx, req.EmployeeID, req.LeaveType, req.StartDate.Year())
	if err != nil {
		return ledger.Balance{}, err
	}
	if res := s.Validator.Validate(req, cfg, bal.Current()); !res.OK() {
		return ledger.Balance{}, &ValidationError{RequestID: req.ID, Result: res}
	}

	e := ledger.NewEntry(
		req.EmployeeID, req.LeaveType, req.StartDate.Year(),
		ledger.EventConsumption, req.DaysRequested.Neg(), req.StartDate,
	)
	e.ReferenceID = req.ID
	e.Reason = req.Reason
	e.IdempotencyKey = fmt.Sprintf("consume-%s", req.ID)
	e.CreatedBy = approverID
	e.CreatedByType = "manager"

	return s.Ledger.Append(ctx, e, cfg)
}

// Cancel reverses an approved consumption. The reversal carries the
// opposite sign under the same reference so the audit trail pairs up.
func (s *Service) Cancel(ctx context.Context, req LeaveRequest, actorID string) (ledger.Balance, error) {
	cfg, err := s.resolveConfig(ctx, req)
	if err != nil {
		return ledger.Balance{}, err
	}

	e := ledger.NewEntry(
		req.EmployeeID, req.LeaveType, req.StartDate.Year(),
		ledger.EventReversal, req.DaysRequested, req.StartDate,
	)
	e.ReferenceID = req.ID
	e.Reason = "leave cancelled"
	e.IdempotencyKey = fmt.Sprintf("reverse-%s", req.ID)
	e.CreatedBy = actorID
	e.CreatedByType = "employee"

	return s.Ledger.Append(ctx, e, cfg)
}

func (s *Service) resolveConfig(ctx context.Context, req LeaveRequest) (policy.LeaveTypeConfig, error) {
	emp, found, err := s.Employees.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return policy.LeaveTypeConfig{}, err
	}
	if !found {
		return policy.LeaveTypeConfig{}, fmt.Errorf("unknown employee %q", req.EmployeeID)
	}

	pol, err := s.Resolver.Resolve(ctx, emp, calendar.Today())
	if err != nil {
		return policy.LeaveTypeConfig{}, err
	}

	cfg, ok := pol.Config(req.LeaveType)
	if !ok {
		return policy.LeaveTypeConfig{}, fmt.Errorf("%w: %s under policy %q",
			policy.ErrLeaveTypeNotCovered, req.LeaveType, pol.Name)
	}
	return cfg, nil
}

// ValidationError wraps a failed Result so callers can distinguish
// "the request is bad" from infrastructure errors.
type ValidationError struct {
	RequestID string
	Result    Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("request %s failed validation with %d violation(s)",
		e.RequestID, len(e.Result.Violations))
}
