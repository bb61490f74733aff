package policy_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/policy"
)

func basePolicy() policy.LeavePolicy {
	return testPolicy("p1", policy.ScopeCompany, "", calendar.NewDate(2025, time.January, 1))
}

func TestValidate_ScopeValueRules(t *testing.T) {
	p := basePolicy()
	p.Scope = policy.ScopeDepartment
	p.ScopeValue = ""
	_, err := p.Validate()
	assert.Error(t, err, "non-company scope needs a scope_value")

	p = basePolicy()
	p.ScopeValue = "platform"
	_, err = p.Validate()
	assert.Error(t, err, "company scope must not carry a scope_value")
}

func TestValidate_DuplicateLeaveType(t *testing.T) {
	p := basePolicy()
	p.LeaveTypes = append(p.LeaveTypes, p.LeaveTypes[0])

	_, err := p.Validate()
	assert.Error(t, err)
}

func TestValidate_EncashmentCapAgainstQuota(t *testing.T) {
	p := basePolicy()
	maxDays := decimal.NewFromInt(20) // quota is 12
	p.LeaveTypes[0].EncashmentAllowed = true
	p.LeaveTypes[0].EncashmentMaxDays = &maxDays

	_, err := p.Validate()
	assert.Error(t, err)
}

func TestValidate_MonthlyRateOverrideIsWarningNotError(t *testing.T) {
	// GIVEN: accrual_rate x 12 exceeds annual_quota
	// THEN:  flagged as a warning; HR overrides are permitted, not fixed

	p := basePolicy()
	rate := decimal.NewFromFloat(1.5) // x12 = 18 > quota 12
	p.LeaveTypes[0].AccrualType = policy.AccrualMonthly
	p.LeaveTypes[0].AccrualRate = &rate

	warnings, err := p.Validate()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, policy.LeaveCasual, warnings[0].LeaveType)
	assert.Equal(t, "accrual_rate", warnings[0].Field)
}

func TestValidate_CleanPolicy(t *testing.T) {
	p := basePolicy()
	warnings, err := p.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestEffectiveAccrualRate_DefaultsToQuotaOverTwelve(t *testing.T) {
	cfg := policy.LeaveTypeConfig{
		LeaveType:   policy.LeaveEarned,
		AnnualQuota: decimal.NewFromInt(18),
		AccrualType: policy.AccrualMonthly,
	}
	assert.True(t, cfg.EffectiveAccrualRate().Equal(decimal.NewFromFloat(1.5)))

	rate := decimal.NewFromInt(2)
	cfg.AccrualRate = &rate
	assert.True(t, cfg.EffectiveAccrualRate().Equal(rate))
}

func TestMonthsOfService(t *testing.T) {
	emp := policy.Employee{ID: "e", JoiningDate: calendar.NewDate(2025, time.January, 15)}

	assert.Equal(t, 0, emp.MonthsOfService(calendar.NewDate(2025, time.February, 14)))
	assert.Equal(t, 1, emp.MonthsOfService(calendar.NewDate(2025, time.February, 15)))
	assert.Equal(t, 6, emp.MonthsOfService(calendar.NewDate(2025, time.July, 20)))
}
