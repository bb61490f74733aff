package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/policy"
)

func TestPresets_ValidateCleanly(t *testing.T) {
	effective := calendar.NewDate(2025, time.January, 1)

	presets := []policy.LeavePolicy{
		policy.StandardCompanyPolicy("std", effective),
		policy.MaternityPolicy("mat", effective),
		policy.UseItOrLoseItPolicy("uil", 10, effective),
	}

	for _, p := range presets {
		t.Run(p.Name, func(t *testing.T) {
			warnings, err := p.Validate()
			require.NoError(t, err)
			assert.Empty(t, warnings)
		})
	}
}

func TestStandardCompanyPolicy_CoversCoreLeaveTypes(t *testing.T) {
	p := policy.StandardCompanyPolicy("std", calendar.NewDate(2025, time.January, 1))

	for _, lt := range []policy.LeaveType{policy.LeaveCasual, policy.LeaveSick, policy.LeaveEarned} {
		_, ok := p.Config(lt)
		assert.True(t, ok, "missing %s", lt)
	}

	casual, _ := p.Config(policy.LeaveCasual)
	assert.True(t, casual.CanBeNegative, "casual drives LOP in the standard setup")
}
