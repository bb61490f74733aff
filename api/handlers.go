/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes the leave policy and accrual engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                List employees
    POST   /api/employees                Create employee
    GET    /api/employees/{id}           Get employee
    GET    /api/employees/{id}/policy    Resolve governing policy
    GET    /api/employees/{id}/balances  Balance summary per leave type
    GET    /api/employees/{id}/ledger    Ledger entries

  Policies:
    GET    /api/policies                 List policies
    POST   /api/policies                 Create/replace policy
    GET    /api/policies/{id}            Get policy
    POST   /api/policies/{id}/deactivate Soft-deactivate

  Requests:
    POST   /api/requests/validate        Validate a leave request
    POST   /api/requests/approve         Approve (appends consumption)
    POST   /api/requests/cancel          Cancel (appends reversal)

  Payroll:
    POST   /api/payroll/adjustments      LOP/encashment projection

  Admin:
    POST   /api/admin/accrual-run        Trigger accrual batch
    POST   /api/admin/year-close         Trigger year close
    POST   /api/admin/adjustments        Manual balance adjustment

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (insufficient balance, duplicate idempotency key)
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware. Authentication and authorization belong
  to the surrounding HR platform, outside this engine.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hrworks/leave-engine/batch"
	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/ledger"
	"github.com/hrworks/leave-engine/payroll"
	"github.com/hrworks/leave-engine/policy"
	"github.com/hrworks/leave-engine/request"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Policies  policy.Store
	Employees policy.EmployeeSource
	Resolver  *policy.Resolver
	Ledger    *ledger.Ledger
	Requests  *request.Service
	Bridge    *payroll.Bridge
	Runner    *batch.Runner
	Log       zerolog.Logger
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Employees.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	joining, err := calendar.Parse(req.JoiningDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid joining_date, want YYYY-MM-DD", err)
		return
	}

	emp := policy.Employee{
		ID:          req.ID,
		Name:        req.Name,
		Designation: req.Designation,
		Department:  req.Department,
		JoiningDate: joining,
	}
	if err := h.Employees.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// ResolvePolicy returns the policy governing the employee on a date
// (?as_of=YYYY-MM-DD, default today).
func (h *Handler) ResolvePolicy(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	asOf := calendar.Today()
	if s := r.URL.Query().Get("as_of"); s != "" {
		var err error
		if asOf, err = calendar.Parse(s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of, want YYYY-MM-DD", err)
			return
		}
	}

	pol, err := h.Resolver.Resolve(r.Context(), emp, asOf)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) {
			writeError(w, http.StatusNotFound, "no policy covers this employee", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to resolve policy", err)
		return
	}
	writeJSON(w, http.StatusOK, pol)
}

// GetBalances returns the employee's balance rows for a year
// (?year=NNNN, default current year).
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	year := h.yearParam(r)
	balances, err := h.Ledger.Balances(r.Context(), emp.ID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load balances", err)
		return
	}

	dtos := make([]BalanceDTO, len(balances))
	for i, b := range balances {
		dtos[i] = toBalanceDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLedger returns entries for ?leave_type=&year=.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	lt := policy.LeaveType(r.URL.Query().Get("leave_type"))
	if lt == "" {
		writeError(w, http.StatusBadRequest, "leave_type is required", nil)
		return
	}

	entries, err := h.Ledger.Entries(r.Context(), emp.ID, lt, h.yearParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}

	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Policies.ListPolicies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list policies", err)
		return
	}
	writeJSON(w, http.StatusOK, policies)
}

func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var pol policy.LeavePolicy
	if err := json.NewDecoder(r.Body).Decode(&pol); err != nil {
		writeError(w, http.StatusBadRequest, "invalid policy body", err)
		return
	}

	warnings, err := pol.Validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid policy", err)
		return
	}

	if err := h.Policies.SavePolicy(r.Context(), pol); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save policy", err)
		return
	}

	for _, warn := range warnings {
		h.Log.Warn().
			Str("policy", pol.Name).
			Str("leave_type", string(warn.LeaveType)).
			Str("field", warn.Field).
			Msg(warn.Message)
	}

	writeJSON(w, http.StatusCreated, CreatePolicyResponse{Policy: pol, Warnings: warnings})
}

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	pol, found, err := h.Policies.GetPolicy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load policy", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "policy not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, pol)
}

// DeactivatePolicy soft-deactivates: the record stays for audit, the
// resolver stops considering it.
func (h *Handler) DeactivatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pol, found, err := h.Policies.GetPolicy(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load policy", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "policy not found", nil)
		return
	}

	pol.Active = false
	if err := h.Policies.SavePolicy(ctx, pol); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save policy", err)
		return
	}
	writeJSON(w, http.StatusOK, pol)
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

func (h *Handler) ValidateRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLeaveRequest(w, r)
	if !ok {
		return
	}

	res, err := h.Requests.Check(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, "validation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, ValidateResponse{
		OK:         res.OK(),
		Available:  res.Available.String(),
		Violations: res.Violations,
	})
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	var body ApproveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	req, ok := h.buildLeaveRequest(w, body.ValidateRequestBody)
	if !ok {
		return
	}
	if body.RequestID != "" {
		req.ID = body.RequestID
	}

	bal, err := h.Requests.Approve(r.Context(), req, body.ApproverID)
	if err != nil {
		var verr *request.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusConflict, ValidateResponse{
				OK:         false,
				Available:  verr.Result.Available.String(),
				Violations: verr.Result.Violations,
			})
			return
		}
		h.writeDomainError(w, "approval failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(bal))
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	var body ApproveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	req, ok := h.buildLeaveRequest(w, body.ValidateRequestBody)
	if !ok {
		return
	}
	if body.RequestID != "" {
		req.ID = body.RequestID
	}

	bal, err := h.Requests.Cancel(r.Context(), req, body.ApproverID)
	if err != nil {
		h.writeDomainError(w, "cancellation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(bal))
}

// =============================================================================
// PAYROLL HANDLER
// =============================================================================

func (h *Handler) PayrollAdjustments(w http.ResponseWriter, r *http.Request) {
	var body PayrollRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx := r.Context()
	emp, found, err := h.Employees.GetEmployee(ctx, body.EmployeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load employee", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "employee not found", nil)
		return
	}

	start, err := calendar.Parse(body.PeriodStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period_start", err)
		return
	}
	end, err := calendar.Parse(body.PeriodEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period_end", err)
		return
	}

	basic, err := decimal.NewFromString(body.MonthlyBasic)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid monthly_basic", err)
		return
	}
	gross, err := decimal.NewFromString(body.MonthlyGross)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid monthly_gross", err)
		return
	}

	pol, err := h.Resolver.Resolve(ctx, emp, end)
	if err != nil {
		h.writeDomainError(w, "failed to resolve policy", err)
		return
	}

	adj, err := h.Bridge.ComputeAdjustments(ctx, emp,
		payroll.Salary{MonthlyBasic: basic, MonthlyGross: gross},
		calendar.Period{Start: start, End: end}, pol)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute adjustments", err)
		return
	}

	writeJSON(w, http.StatusOK, AdjustmentsDTO{
		EmployeeID:       adj.EmployeeID,
		LOPDays:          adj.LOPDays.String(),
		LOPAmount:        adj.LOPAmount.String(),
		EncashmentDays:   adj.EncashmentDays.String(),
		EncashmentAmount: adj.EncashmentAmount.String(),
	})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

func (h *Handler) RunAccrualBatch(w http.ResponseWriter, r *http.Request) {
	var body AccrualRunRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	asOf := calendar.Today()
	if body.AsOf != "" {
		var err error
		if asOf, err = calendar.Parse(body.AsOf); err != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of", err)
			return
		}
	}

	summary, err := h.Runner.RunAccrualBatch(r.Context(), asOf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "accrual batch failed", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) RunYearClose(w http.ResponseWriter, r *http.Request) {
	var body YearCloseRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if body.Year == 0 {
		writeError(w, http.StatusBadRequest, "year is required", nil)
		return
	}

	summary, err := h.Runner.RunYearClose(r.Context(), body.Year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "year-close batch failed", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// CreateAdjustment appends a manual adjustment entry with actor audit.
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var body AdjustmentRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	days, err := decimal.NewFromString(body.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid days", err)
		return
	}
	if body.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required for adjustments", nil)
		return
	}

	ctx := r.Context()
	emp, found, err := h.Employees.GetEmployee(ctx, body.EmployeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load employee", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "employee not found", nil)
		return
	}

	lt := policy.LeaveType(body.LeaveType)
	pol, err := h.Resolver.Resolve(ctx, emp, calendar.Today())
	if err != nil {
		h.writeDomainError(w, "failed to resolve policy", err)
		return
	}
	cfg, ok := pol.Config(lt)
	if !ok {
		writeError(w, http.StatusBadRequest, "leave type not covered by policy", nil)
		return
	}

	year := body.Year
	if year == 0 {
		year = calendar.Today().Year()
	}

	e := ledger.NewEntry(emp.ID, lt, year, ledger.EventAdjustment, days, calendar.Today())
	e.Reason = body.Reason
	e.CreatedBy = body.CreatedBy
	e.CreatedByType = "admin"

	bal, err := h.Ledger.Append(ctx, e, cfg)
	if err != nil {
		h.writeDomainError(w, "failed to append adjustment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBalanceDTO(bal))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadEmployee(w http.ResponseWriter, r *http.Request) (policy.Employee, bool) {
	emp, found, err := h.Employees.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load employee", err)
		return policy.Employee{}, false
	}
	if !found {
		writeError(w, http.StatusNotFound, "employee not found", nil)
		return policy.Employee{}, false
	}
	return emp, true
}

func (h *Handler) yearParam(r *http.Request) int {
	if s := r.URL.Query().Get("year"); s != "" {
		if d, err := calendar.Parse(s + "-01-01"); err == nil {
			return d.Year()
		}
	}
	return calendar.Today().Year()
}

func (h *Handler) decodeLeaveRequest(w http.ResponseWriter, r *http.Request) (request.LeaveRequest, bool) {
	var body ValidateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return request.LeaveRequest{}, false
	}
	return h.buildLeaveRequest(w, body)
}

func (h *Handler) buildLeaveRequest(w http.ResponseWriter, body ValidateRequestBody) (request.LeaveRequest, bool) {
	start, err := calendar.Parse(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date", err)
		return request.LeaveRequest{}, false
	}
	end, err := calendar.Parse(body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date", err)
		return request.LeaveRequest{}, false
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date precedes start_date", nil)
		return request.LeaveRequest{}, false
	}

	req := request.New(body.EmployeeID, policy.LeaveType(body.LeaveType), start, end)
	req.HasMedicalCertificate = body.HasMedicalCertificate
	req.Reason = body.Reason

	if body.DaysRequested != "" {
		days, err := decimal.NewFromString(body.DaysRequested)
		if err != nil || !days.IsPositive() {
			writeError(w, http.StatusBadRequest, "invalid days_requested", err)
			return request.LeaveRequest{}, false
		}
		req.DaysRequested = days
	}
	return req, true
}

// writeDomainError maps domain sentinels onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, policy.ErrPolicyNotFound):
		writeError(w, http.StatusNotFound, msg, err)
	case ledger.IsClientError(err):
		writeError(w, http.StatusConflict, msg, err)
	case ledger.IsRetryable(err):
		writeError(w, http.StatusServiceUnavailable, msg, err)
	case ledger.IsFatal(err):
		h.Log.Error().Err(err).Msg("ledger corruption detected")
		writeError(w, http.StatusInternalServerError, msg, err)
	default:
		writeError(w, http.StatusInternalServerError, msg, err)
	}
}

func toEmployeeDTO(e policy.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:          e.ID,
		Name:        e.Name,
		Designation: e.Designation,
		Department:  e.Department,
		JoiningDate: e.JoiningDate.String(),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
