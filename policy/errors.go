package policy

import (
	"errors"
	"fmt"
)

var (
	// ErrPolicyNotFound is returned when no policy covers an employee -
	// not even a company-wide fallback. This is a hard misconfiguration:
	// callers must surface it, never silently default to zero entitlement.
	ErrPolicyNotFound = errors.New("no applicable leave policy")

	// ErrLeaveTypeNotCovered is returned when the resolved policy has no
	// configuration for the requested leave type.
	ErrLeaveTypeNotCovered = errors.New("leave type not covered by policy")
)

// NotFoundError carries the employee and date for which resolution failed.
type NotFoundError struct {
	EmployeeID string
	AsOf       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no applicable leave policy for employee %s as of %s", e.EmployeeID, e.AsOf)
}

func (e *NotFoundError) Unwrap() error { return ErrPolicyNotFound }
