package payroll_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/ledger"
	"github.com/hrworks/leave-engine/payroll"
	"github.com/hrworks/leave-engine/policy"
	"github.com/hrworks/leave-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const testEmployeeID = "emp-1"

func newTestBridge(t *testing.T) (*payroll.Bridge, *ledger.Ledger) {
	t.Helper()
	led := ledger.New(memory.New())
	return &payroll.Bridge{Ledger: led}, led
}

func lopPolicy(lopFormula policy.RateFormula, fixedRate decimal.Decimal) policy.LeavePolicy {
	return policy.LeavePolicy{
		ID:     "pol-1",
		Name:   "Company Default",
		Scope:  policy.ScopeCompany,
		Active: true,
		LeaveTypes: []policy.LeaveTypeConfig{{
			LeaveType:     policy.LeaveCasual,
			AnnualQuota:   decimal.NewFromInt(12),
			AccrualType:   policy.AccrualMonthly,
			CanBeNegative: true,
		}},
		Payroll: policy.PayrollIntegration{
			LOPDeductionFormula: lopFormula,
			EncashmentFormula:   lopFormula,
			FixedDailyRate:      fixedRate,
		},
	}
}

func encashPolicy(maxDays int64) policy.LeavePolicy {
	m := decimal.NewFromInt(maxDays)
	return policy.LeavePolicy{
		ID:     "pol-2",
		Name:   "Company Default",
		Scope:  policy.ScopeCompany,
		Active: true,
		LeaveTypes: []policy.LeaveTypeConfig{{
			LeaveType:         policy.LeaveEarned,
			AnnualQuota:       decimal.NewFromInt(18),
			AccrualType:       policy.AccrualMonthly,
			EncashmentAllowed: true,
			EncashmentMaxDays: &m,
		}},
		Payroll: policy.PayrollIntegration{
			LOPDeductionFormula: policy.FormulaBasicPerDay,
			EncashmentFormula:   policy.FormulaBasicPerDay,
		},
	}
}

func testSalary() payroll.Salary {
	return payroll.Salary{
		MonthlyBasic: decimal.NewFromInt(60000),
		MonthlyGross: decimal.NewFromInt(90000),
	}
}

func june2025() calendar.Period {
	return calendar.MonthOf(calendar.NewDate(2025, time.June, 15))
}

func record(t *testing.T, led *ledger.Ledger, lt policy.LeaveType, typ ledger.EventType, days string, on calendar.Date, cfg policy.LeaveTypeConfig) {
	t.Helper()
	e := ledger.NewEntry(testEmployeeID, lt, on.Year(), typ, decimal.RequireFromString(days), on)
	_, err := led.Append(context.Background(), e, cfg)
	require.NoError(t, err)
}

// =============================================================================
// LOSS OF PAY
// =============================================================================

func TestLOP_DeepeningNegativeBalanceDeducts(t *testing.T) {
	// GIVEN: balance 1 entering June, 3 days consumed mid-June
	// THEN:  2 LOP days at basic/30

	bridge, led := newTestBridge(t)
	pol := lopPolicy(policy.FormulaBasicPerDay, decimal.Zero)
	cfg := pol.LeaveTypes[0]

	record(t, led, policy.LeaveCasual, ledger.EventAccrual, "1", calendar.NewDate(2025, time.May, 1), cfg)
	record(t, led, policy.LeaveCasual, ledger.EventConsumption, "-3", calendar.NewDate(2025, time.June, 10), cfg)

	adj, err := bridge.ComputeAdjustments(context.Background(),
		policy.Employee{ID: testEmployeeID}, testSalary(), june2025(), pol)
	require.NoError(t, err)

	assert.True(t, adj.LOPDays.Equal(decimal.NewFromInt(2)), "got %s", adj.LOPDays)
	// 2 x 60000/30 = 4000
	assert.True(t, adj.LOPAmount.Equal(decimal.NewFromInt(4000)), "got %s", adj.LOPAmount)
}

func TestLOP_RecoveringBalanceDeductsNothing(t *testing.T) {
	// Negative before the period, accrual during it: nothing new to deduct.
	bridge, led := newTestBridge(t)
	pol := lopPolicy(policy.FormulaBasicPerDay, decimal.Zero)
	cfg := pol.LeaveTypes[0]

	record(t, led, policy.LeaveCasual, ledger.EventConsumption, "-2", calendar.NewDate(2025, time.May, 10), cfg)
	record(t, led, policy.LeaveCasual, ledger.EventAccrual, "1", calendar.NewDate(2025, time.June, 1), cfg)

	adj, err := bridge.ComputeAdjustments(context.Background(),
		policy.Employee{ID: testEmployeeID}, testSalary(), june2025(), pol)
	require.NoError(t, err)

	assert.True(t, adj.LOPDays.IsZero(), "got %s", adj.LOPDays)
	assert.True(t, adj.LOPAmount.IsZero())
}

func TestLOP_AlreadyNegativeAtStartOnlyChargesTheDelta(t *testing.T) {
	// -1 entering June, -3 by June end: only the 2 extra days are new LOP.
	bridge, led := newTestBridge(t)
	pol := lopPolicy(policy.FormulaGrossPerDay, decimal.Zero)
	cfg := pol.LeaveTypes[0]

	record(t, led, policy.LeaveCasual, ledger.EventConsumption, "-1", calendar.NewDate(2025, time.May, 20), cfg)
	record(t, led, policy.LeaveCasual, ledger.EventConsumption, "-2", calendar.NewDate(2025, time.June, 12), cfg)

	adj, err := bridge.ComputeAdjustments(context.Background(),
		policy.Employee{ID: testEmployeeID}, testSalary(), june2025(), pol)
	require.NoError(t, err)

	assert.True(t, adj.LOPDays.Equal(decimal.NewFromInt(2)))
	// 2 x 90000/30 = 6000
	assert.True(t, adj.LOPAmount.Equal(decimal.NewFromInt(6000)), "got %s", adj.LOPAmount)
}

func TestLOP_FixedRateFormula(t *testing.T) {
	bridge, led := newTestBridge(t)
	pol := lopPolicy(policy.FormulaFixed, decimal.NewFromInt(1500))
	cfg := pol.LeaveTypes[0]

	record(t, led, policy.LeaveCasual, ledger.EventConsumption, "-2", calendar.NewDate(2025, time.June, 5), cfg)

	adj, err := bridge.ComputeAdjustments(context.Background(),
		policy.Employee{ID: testEmployeeID}, testSalary(), june2025(), pol)
	require.NoError(t, err)

	assert.True(t, adj.LOPDays.Equal(decimal.NewFromInt(2)))
	assert.True(t, adj.LOPAmount.Equal(decimal.NewFromInt(3000)), "got %s", adj.LOPAmount)
}

func TestLOP_PeriodSpanningYearBoundary(t *testing.T) {
	// GIVEN: a payroll period Dec 15 - Jan 15 with the balance going
	//        negative in both ledger years
	// THEN:  each year's deepening is charged against its own ledger

	bridge, led := newTestBridge(t)
	pol := lopPolicy(policy.FormulaBasicPerDay, decimal.Zero)
	cfg := pol.LeaveTypes[0]

	// 2025: 1 day entering the period, -2 by year end.
	record(t, led, policy.LeaveCasual, ledger.EventAccrual, "1", calendar.NewDate(2025, time.December, 1), cfg)
	record(t, led, policy.LeaveCasual, ledger.EventConsumption, "-3", calendar.NewDate(2025, time.December, 20), cfg)
	// 2026: fresh ledger year goes -1 inside the period.
	record(t, led, policy.LeaveCasual, ledger.EventConsumption, "-1", calendar.NewDate(2026, time.January, 10), cfg)

	period := calendar.Period{
		Start: calendar.NewDate(2025, time.December, 15),
		End:   calendar.NewDate(2026, time.January, 15),
	}

	adj, err := bridge.ComputeAdjustments(context.Background(),
		policy.Employee{ID: testEmployeeID}, testSalary(), period, pol)
	require.NoError(t, err)

	assert.True(t, adj.LOPDays.Equal(decimal.NewFromInt(3)), "got %s", adj.LOPDays)
	// 3 x 60000/30 = 6000
	assert.True(t, adj.LOPAmount.Equal(decimal.NewFromInt(6000)), "got %s", adj.LOPAmount)
}

func TestLOP_UnknownFormulaErrors(t *testing.T) {
	bridge, _ := newTestBridge(t)
	pol := lopPolicy("per_diem", decimal.Zero)

	_, err := bridge.ComputeAdjustments(context.Background(),
		policy.Employee{ID: testEmployeeID}, testSalary(), june2025(), pol)
	assert.Error(t, err)
}

// =============================================================================
// ENCASHMENT
// =============================================================================

func TestEncashment_SumsPeriodEntries(t *testing.T) {
	bridge, led := newTestBridge(t)
	pol := encashPolicy(10)
	cfg := pol.LeaveTypes[0]

	record(t, led, policy.LeaveEarned, ledger.EventAccrual, "8", calendar.NewDate(2025, time.January, 1), cfg)
	record(t, led, policy.LeaveEarned, ledger.EventEncashment, "-3", calendar.NewDate(2025, time.June, 30), cfg)

	adj, err := bridge.ComputeAdjustments(context.Background(),
		policy.Employee{ID: testEmployeeID}, testSalary(), june2025(), pol)
	require.NoError(t, err)

	assert.True(t, adj.EncashmentDays.Equal(decimal.NewFromInt(3)))
	// 3 x 60000/30 = 6000
	assert.True(t, adj.EncashmentAmount.Equal(decimal.NewFromInt(6000)), "got %s", adj.EncashmentAmount)
}

func TestEncashment_CappedByPolicy(t *testing.T) {
	bridge, led := newTestBridge(t)
	pol := encashPolicy(2)
	cfg := pol.LeaveTypes[0]

	record(t, led, policy.LeaveEarned, ledger.EventAccrual, "8", calendar.NewDate(2025, time.January, 1), cfg)
	record(t, led, policy.LeaveEarned, ledger.EventEncashment, "-5", calendar.NewDate(2025, time.June, 30), cfg)

	adj, err := bridge.ComputeAdjustments(context.Background(),
		policy.Employee{ID: testEmployeeID}, testSalary(), june2025(), pol)
	require.NoError(t, err)

	assert.True(t, adj.EncashmentDays.Equal(decimal.NewFromInt(2)), "got %s", adj.EncashmentDays)
}

func TestEncashment_EntriesOutsidePeriodIgnored(t *testing.T) {
	bridge, led := newTestBridge(t)
	pol := encashPolicy(10)
	cfg := pol.LeaveTypes[0]

	record(t, led, policy.LeaveEarned, ledger.EventAccrual, "8", calendar.NewDate(2025, time.January, 1), cfg)
	record(t, led, policy.LeaveEarned, ledger.EventEncashment, "-3", calendar.NewDate(2025, time.May, 31), cfg)

	adj, err := bridge.ComputeAdjustments(context.Background(),
		policy.Employee{ID: testEmployeeID}, testSalary(), june2025(), pol)
	require.NoError(t, err)

	assert.True(t, adj.EncashmentDays.IsZero())
}
