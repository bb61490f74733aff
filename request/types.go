/*
Package request validates and applies leave requests.

PURPOSE:
  Handles the leave request lifecycle against a resolved policy:
  1. Validation: every policy constraint checked, all violations reported
  2. Approval: a consumption entry is appended to the ledger
  3. Cancellation: a reversal entry undoes an approved consumption

  The validator itself never writes the ledger. A request validated as
  sufficient can still fail at append time if a concurrent consumption
  exhausted the balance in between; the ledger re-verifies sufficiency
  inside its lock.

KEY COMPONENTS:
  LeaveRequest: What the approval workflow hands us (referenced, not owned)
  Validator:    Pure policy-constraint evaluation
  Service:      Approval/cancellation orchestration over the ledger

SEE ALSO:
  - ledger/ledger.go: Append with write-time sufficiency check
  - policy/types.go: LeaveTypeConfig constraints
*/
package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/policy"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// LeaveRequest is the slice of the approval workflow's request entity
// this engine consumes. The workflow owns the full record.
type LeaveRequest struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employee_id"`
	LeaveType  policy.LeaveType `json:"leave_type"`

	StartDate     calendar.Date   `json:"start_date"`
	EndDate       calendar.Date   `json:"end_date"`
	DaysRequested decimal.Decimal `json:"days_requested"`

	HasMedicalCertificate bool   `json:"has_medical_certificate"`
	Reason                string `json:"reason,omitempty"`

	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// New builds a pending request covering [start, end]. DaysRequested
// defaults to the inclusive calendar span; callers adjust it when
// half-days or non-working days apply.
func New(employeeID string, lt policy.LeaveType, start, end calendar.Date) LeaveRequest {
	return LeaveRequest{
		ID:            uuid.NewString(),
		EmployeeID:    employeeID,
		LeaveType:     lt,
		StartDate:     start,
		EndDate:       end,
		DaysRequested: decimal.NewFromInt(int64(calendar.DaysBetween(start, end) + 1)),
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}
