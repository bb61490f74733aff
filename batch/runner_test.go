package batch_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrworks/leave-engine/accrual"
	"github.com/hrworks/leave-engine/batch"
	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/ledger"
	"github.com/hrworks/leave-engine/policy"
	"github.com/hrworks/leave-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRunner(t *testing.T) (*batch.Runner, *memory.Store, *ledger.Ledger) {
	t.Helper()
	store := memory.New()
	led := ledger.New(store)
	runner := &batch.Runner{
		Employees: store,
		Resolver:  policy.NewResolver(store),
		Calc:      accrual.NewCalculator(),
		Ledger:    led,
		Workers:   2,
		Log:       zerolog.Nop(),
	}
	return runner, store, led
}

func saveEmployee(t *testing.T, store *memory.Store, id string, joined calendar.Date) policy.Employee {
	t.Helper()
	emp := policy.Employee{
		ID:          id,
		Name:        id,
		Designation: "engineer",
		Department:  "platform",
		JoiningDate: joined,
	}
	require.NoError(t, store.SaveEmployee(context.Background(), emp))
	return emp
}

// casualPolicy grants 12 casual days per year, pro-rated for joiners,
// carrying at most 5 days, never negative.
func casualPolicy() policy.LeavePolicy {
	maxCarry := decimal.NewFromInt(5)
	return policy.LeavePolicy{
		ID:            "pol-company",
		Name:          "Company Default",
		Scope:         policy.ScopeCompany,
		EffectiveFrom: calendar.NewDate(2020, time.January, 1),
		Active:        true,
		LeaveTypes: []policy.LeaveTypeConfig{{
			LeaveType:            policy.LeaveCasual,
			AnnualQuota:          decimal.NewFromInt(12),
			AccrualType:          policy.AccrualYearly,
			ProRataForNewJoiners: true,
			CarryForward:         true,
			MaxCarryForward:      &maxCarry,
			CanBeNegative:        false,
		}},
	}
}

func companyPolicy(t *testing.T, store *memory.Store) policy.LeavePolicy {
	t.Helper()
	pol := casualPolicy()
	require.NoError(t, store.SavePolicy(context.Background(), pol))
	return pol
}

// =============================================================================
// ACCRUAL BATCH
// =============================================================================

func TestAccrualBatch_IsIdempotent(t *testing.T) {
	// GIVEN: a batch that already ran for the same date
	// THEN:  the rerun appends nothing; every unit counts as skipped

	runner, store, _ := newTestRunner(t)
	ctx := context.Background()
	companyPolicy(t, store)
	saveEmployee(t, store, "emp-1", calendar.NewDate(2023, time.June, 1))
	saveEmployee(t, store, "emp-2", calendar.NewDate(2024, time.February, 1))

	asOf := calendar.NewDate(2025, time.July, 1)

	first, err := runner.RunAccrualBatch(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Processed)
	assert.Equal(t, 0, first.Failed)

	second, err := runner.RunAccrualBatch(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, 0, second.Failed)
}

func TestAccrualBatch_OneFailureDoesNotAbortTheRest(t *testing.T) {
	// GIVEN: one employee whose department has no policy coverage
	// THEN:  that employee fails, the others still accrue

	runner, store, led := newTestRunner(t)
	ctx := context.Background()

	// Policy scoped to one department only - no company fallback.
	pol := casualPolicy()
	pol.ID = "pol-platform"
	pol.Scope = policy.ScopeDepartment
	pol.ScopeValue = "platform"
	require.NoError(t, store.SavePolicy(ctx, pol))

	saveEmployee(t, store, "emp-1", calendar.NewDate(2023, time.June, 1))
	orphan := saveEmployee(t, store, "emp-2", calendar.NewDate(2023, time.June, 1))
	orphan.Department = "sales"
	require.NoError(t, store.SaveEmployee(ctx, orphan))

	sum, err := runner.RunAccrualBatch(ctx, calendar.NewDate(2025, time.July, 1))
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Processed)
	require.Equal(t, 1, sum.Failed)
	assert.Equal(t, "emp-2", sum.Failures[0].EmployeeID)

	bal, err := led.CurrentBalance(ctx, "emp-1", policy.LeaveCasual, 2025)
	require.NoError(t, err)
	assert.True(t, bal.Current().Equal(decimal.NewFromInt(12)))
}

// =============================================================================
// YEAR CLOSE
// =============================================================================

func TestYearClose_RecordsAuditAndSkipsOnRerun(t *testing.T) {
	runner, store, led := newTestRunner(t)
	ctx := context.Background()
	companyPolicy(t, store)
	saveEmployee(t, store, "emp-1", calendar.NewDate(2023, time.June, 1))

	var recorded []batch.CloseRun
	runner.RecordCloseRun = func(_ context.Context, r batch.CloseRun) error {
		recorded = append(recorded, r)
		return nil
	}

	_, err := runner.RunAccrualBatch(ctx, calendar.NewDate(2025, time.December, 31))
	require.NoError(t, err)

	first, err := runner.RunYearClose(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Processed)

	require.Len(t, recorded, 1)
	assert.Equal(t, "completed", recorded[0].Status)
	assert.True(t, recorded[0].CarriedOver.Equal(decimal.NewFromInt(5)))
	assert.True(t, recorded[0].Forfeited.Equal(decimal.NewFromInt(7)))

	second, err := runner.RunYearClose(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, recorded, 1, "rerun records nothing new")

	bal, err := led.CurrentBalance(ctx, "emp-1", policy.LeaveCasual, 2026)
	require.NoError(t, err)
	assert.True(t, bal.Opening.Equal(decimal.NewFromInt(5)))
}

// =============================================================================
// END TO END - an April joiner's first year
// =============================================================================

func TestAprilJoinerFirstYear(t *testing.T) {
	// GIVEN: quota 12 yearly, pro-rata, carry cap 5, no negative balance;
	//        employee joins April 1
	// WHEN:  the year accrues, leave is requested, the year closes
	// THEN:  9 days accrue, a 10-day request bounces, 9 days pass,
	//        and nothing carries into the new year

	runner, store, led := newTestRunner(t)
	ctx := context.Background()
	companyPolicy(t, store)
	emp := saveEmployee(t, store, "emp-1", calendar.NewDate(2025, time.April, 1))

	sum, err := runner.RunAccrualBatch(ctx, calendar.NewDate(2025, time.December, 1))
	require.NoError(t, err)
	require.Equal(t, 1, sum.Processed)

	bal, err := led.CurrentBalance(ctx, emp.ID, policy.LeaveCasual, 2025)
	require.NoError(t, err)
	require.True(t, bal.Current().Equal(decimal.NewFromInt(9)), "got %s", bal.Current())

	// Ten days against nine available: rejected at append time.
	cfg, ok := companyConfig(t, store)
	require.True(t, ok)
	over := ledger.NewEntry(emp.ID, policy.LeaveCasual, 2025, ledger.EventConsumption,
		decimal.NewFromInt(-10), calendar.NewDate(2025, time.December, 10))
	_, err = led.Append(ctx, over, cfg)
	var insufficient *ledger.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)

	// Nine days exactly drains the balance.
	exact := ledger.NewEntry(emp.ID, policy.LeaveCasual, 2025, ledger.EventConsumption,
		decimal.NewFromInt(-9), calendar.NewDate(2025, time.December, 10))
	drained, err := led.Append(ctx, exact, cfg)
	require.NoError(t, err)
	require.True(t, drained.Current().IsZero())

	closeSum, err := runner.RunYearClose(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, closeSum.Processed)

	next, err := led.CurrentBalance(ctx, emp.ID, policy.LeaveCasual, 2026)
	require.NoError(t, err)
	assert.True(t, next.Current().IsZero(), "nothing to carry from a drained year")
}

func companyConfig(t *testing.T, store *memory.Store) (policy.LeaveTypeConfig, bool) {
	t.Helper()
	pol, found, err := store.GetPolicy(context.Background(), "pol-company")
	require.NoError(t, err)
	require.True(t, found)
	return pol.Config(policy.LeaveCasual)
}
