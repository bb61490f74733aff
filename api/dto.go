/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/hrworks/leave-engine/ledger"
	"github.com/hrworks/leave-engine/policy"
	"github.com/hrworks/leave-engine/request"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`
	Department  string `json:"department,omitempty"`
	JoiningDate string `json:"joining_date"`
}

type CreateEmployeeRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	JoiningDate string `json:"joining_date"`
}

// =============================================================================
// POLICIES
// =============================================================================

// CreatePolicyResponse returns the saved policy plus any non-fatal
// configuration warnings, so the UI can show them without blocking.
type CreatePolicyResponse struct {
	Policy   policy.LeavePolicy     `json:"policy"`
	Warnings []policy.ConfigWarning `json:"warnings,omitempty"`
}

// =============================================================================
// BALANCES - What the employee-facing UI renders
// =============================================================================

type BalanceDTO struct {
	LeaveType string `json:"leave_type"`
	Year      int    `json:"year"`

	Opening    string `json:"opening_balance"`
	Accrued    string `json:"accrued_to_date"`
	Consumed   string `json:"consumed"`
	Encashed   string `json:"encashed"`
	Adjustment string `json:"adjustment"`
	Available  string `json:"available"`
}

func toBalanceDTO(b ledger.Balance) BalanceDTO {
	return BalanceDTO{
		LeaveType:  string(b.LeaveType),
		Year:       b.Year,
		Opening:    b.Opening.String(),
		Accrued:    b.Accrued.String(),
		Consumed:   b.Consumed.String(),
		Encashed:   b.Encashed.String(),
		Adjustment: b.Adjustment.String(),
		Available:  b.Current().String(),
	}
}

type EntryDTO struct {
	ID            string `json:"id"`
	LeaveType     string `json:"leave_type"`
	Year          int    `json:"year"`
	EventType     string `json:"event_type"`
	Days          string `json:"days"`
	EffectiveDate string `json:"effective_date"`
	ReferenceID   string `json:"reference_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
	CreatedBy     string `json:"created_by,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func toEntryDTO(e ledger.Entry) EntryDTO {
	return EntryDTO{
		ID:            e.ID,
		LeaveType:     string(e.LeaveType),
		Year:          e.Year,
		EventType:     string(e.Type),
		Days:          e.Days.String(),
		EffectiveDate: e.EffectiveDate.String(),
		ReferenceID:   e.ReferenceID,
		Reason:        e.Reason,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// =============================================================================
// REQUESTS
// =============================================================================

type ValidateRequestBody struct {
	EmployeeID            string `json:"employee_id"`
	LeaveType             string `json:"leave_type"`
	StartDate             string `json:"start_date"`
	EndDate               string `json:"end_date"`
	DaysRequested         string `json:"days_requested,omitempty"` // default: inclusive span
	HasMedicalCertificate bool   `json:"has_medical_certificate"`
	Reason                string `json:"reason,omitempty"`
}

type ValidateResponse struct {
	OK         bool                `json:"ok"`
	Available  string              `json:"available"`
	Violations []request.Violation `json:"violations,omitempty"`
}

type ApproveRequestBody struct {
	ValidateRequestBody
	RequestID  string `json:"request_id"`
	ApproverID string `json:"approver_id"`
}

// =============================================================================
// PAYROLL
// =============================================================================

type PayrollRequestBody struct {
	EmployeeID   string `json:"employee_id"`
	MonthlyBasic string `json:"monthly_basic"`
	MonthlyGross string `json:"monthly_gross"`
	PeriodStart  string `json:"period_start"`
	PeriodEnd    string `json:"period_end"`
}

type AdjustmentsDTO struct {
	EmployeeID       string `json:"employee_id"`
	LOPDays          string `json:"lop_days"`
	LOPAmount        string `json:"lop_amount"`
	EncashmentDays   string `json:"encashment_days"`
	EncashmentAmount string `json:"encashment_amount"`
}

// =============================================================================
// ADMIN
// =============================================================================

type AdjustmentRequestBody struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	Year       int    `json:"year"`
	Days       string `json:"days"` // signed
	Reason     string `json:"reason"`
	CreatedBy  string `json:"created_by"`
}

type AccrualRunRequestBody struct {
	AsOf string `json:"as_of,omitempty"` // default: today
}

type YearCloseRequestBody struct {
	Year int `json:"year"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
