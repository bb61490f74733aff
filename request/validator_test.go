package request_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/policy"
	"github.com/hrworks/leave-engine/request"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// fixedToday pins the validator clock to 2025-06-01.
func fixedToday() calendar.Date { return calendar.NewDate(2025, time.June, 1) }

func newValidator() *request.Validator {
	return &request.Validator{Today: fixedToday}
}

func sickConfig() policy.LeaveTypeConfig {
	maxConsecutive := decimal.NewFromInt(5)
	return policy.LeaveTypeConfig{
		LeaveType:                   policy.LeaveSick,
		AnnualQuota:                 decimal.NewFromInt(8),
		AccrualType:                 policy.AccrualYearly,
		AdvanceNoticeDays:           7,
		MaxConsecutiveDays:          &maxConsecutive,
		RequiresMedicalCertificate:  true,
		MedicalCertificateThreshold: decimal.NewFromInt(2),
		CanBeNegative:               false,
	}
}

func codes(res request.Result) []request.ViolationCode {
	var out []request.ViolationCode
	for _, v := range res.Violations {
		out = append(out, v.Code)
	}
	return out
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate_AllViolationsReportedTogether(t *testing.T) {
	// GIVEN: a request that breaks notice, consecutive-limit, certificate,
	//        and balance rules at once
	// THEN:  all four violations come back in a single result

	req := request.New("emp-1", policy.LeaveSick,
		calendar.NewDate(2025, time.June, 3), calendar.NewDate(2025, time.June, 9))
	require.True(t, req.DaysRequested.Equal(decimal.NewFromInt(7)))

	res := newValidator().Validate(req, sickConfig(), decimal.NewFromInt(3))

	require.False(t, res.OK())
	assert.ElementsMatch(t, []request.ViolationCode{
		request.InsufficientNotice,
		request.ExceedsConsecutiveLimit,
		request.MedicalCertificateRequired,
		request.InsufficientBalance,
	}, codes(res))
	assert.True(t, res.Available.Equal(decimal.NewFromInt(3)))
}

func TestValidate_CleanRequestPasses(t *testing.T) {
	req := request.New("emp-1", policy.LeaveSick,
		calendar.NewDate(2025, time.June, 10), calendar.NewDate(2025, time.June, 11))
	req.HasMedicalCertificate = true

	res := newValidator().Validate(req, sickConfig(), decimal.NewFromInt(8))

	assert.True(t, res.OK(), "violations: %v", res.Violations)
}

func TestValidate_NoticeBoundary(t *testing.T) {
	tests := []struct {
		name   string
		notice int
		start  calendar.Date
		ok     bool
	}{
		{"exactly the notice window", 7, calendar.NewDate(2025, time.June, 8), true},
		{"one day short", 7, calendar.NewDate(2025, time.June, 7), false},
		{"same-day request", 7, calendar.NewDate(2025, time.June, 1), false},
		{"same-day with zero notice", 0, calendar.NewDate(2025, time.June, 1), true},
		{"backdated with zero notice", 0, calendar.NewDate(2025, time.May, 27), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sickConfig()
			cfg.AdvanceNoticeDays = tt.notice
			req := request.New("emp-1", policy.LeaveSick, tt.start, tt.start)
			req.HasMedicalCertificate = true

			res := newValidator().Validate(req, cfg, decimal.NewFromInt(8))

			if tt.ok {
				assert.NotContains(t, codes(res), request.InsufficientNotice)
			} else {
				assert.Contains(t, codes(res), request.InsufficientNotice)
			}
		})
	}
}

func TestValidate_MedicalCertificateSuppliedClearsViolation(t *testing.T) {
	req := request.New("emp-1", policy.LeaveSick,
		calendar.NewDate(2025, time.June, 10), calendar.NewDate(2025, time.June, 13))
	req.HasMedicalCertificate = true

	res := newValidator().Validate(req, sickConfig(), decimal.NewFromInt(8))

	assert.NotContains(t, codes(res), request.MedicalCertificateRequired)
}

func TestValidate_ThresholdNotExceededNeedsNoCertificate(t *testing.T) {
	// Two days requested, threshold two: certificate not required.
	req := request.New("emp-1", policy.LeaveSick,
		calendar.NewDate(2025, time.June, 10), calendar.NewDate(2025, time.June, 11))

	res := newValidator().Validate(req, sickConfig(), decimal.NewFromInt(8))

	assert.NotContains(t, codes(res), request.MedicalCertificateRequired)
}

func TestValidate_NegativeCapableTypeSkipsBalanceCheck(t *testing.T) {
	cfg := sickConfig()
	cfg.CanBeNegative = true

	req := request.New("emp-1", policy.LeaveSick,
		calendar.NewDate(2025, time.June, 10), calendar.NewDate(2025, time.June, 11))
	req.HasMedicalCertificate = true

	res := newValidator().Validate(req, cfg, decimal.Zero)

	assert.NotContains(t, codes(res), request.InsufficientBalance)
}

func TestValidate_ExactBalanceIsSufficient(t *testing.T) {
	req := request.New("emp-1", policy.LeaveSick,
		calendar.NewDate(2025, time.June, 10), calendar.NewDate(2025, time.June, 12))
	req.HasMedicalCertificate = true

	res := newValidator().Validate(req, sickConfig(), decimal.NewFromInt(3))

	assert.NotContains(t, codes(res), request.InsufficientBalance)
}
