package calendar_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrworks/leave-engine/calendar"
)

func TestDate_Comparisons(t *testing.T) {
	a := calendar.NewDate(2025, time.March, 10)
	b := calendar.NewDate(2025, time.March, 11)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.AfterOrEqual(a))
	assert.False(t, a.Equal(b))
}

func TestDate_Parse(t *testing.T) {
	d, err := calendar.Parse("2025-04-01")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.April, d.Month())
	assert.Equal(t, 1, d.Day())

	_, err = calendar.Parse("04/01/2025")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	d := calendar.NewDate(2025, time.December, 31)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-12-31"`, string(raw))

	var back calendar.Date
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, d.Equal(back))
}

func TestDaysBetween(t *testing.T) {
	from := calendar.NewDate(2025, time.April, 1)
	to := calendar.NewDate(2025, time.April, 15)

	assert.Equal(t, 14, calendar.DaysBetween(from, to))
	assert.Equal(t, -14, calendar.DaysBetween(to, from))
	assert.Equal(t, 0, calendar.DaysBetween(from, from))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 30, calendar.DaysInMonth(calendar.NewDate(2025, time.April, 10)))
	assert.Equal(t, 31, calendar.DaysInMonth(calendar.NewDate(2025, time.January, 1)))
	assert.Equal(t, 28, calendar.DaysInMonth(calendar.NewDate(2025, time.February, 1)))
	// 2024 is a leap year
	assert.Equal(t, 29, calendar.DaysInMonth(calendar.NewDate(2024, time.February, 1)))
}

func TestMonthsBetween_CompletedMonthsOnly(t *testing.T) {
	join := calendar.NewDate(2025, time.January, 15)

	// Day before the anniversary day: month not yet complete
	assert.Equal(t, 0, calendar.MonthsBetween(join, calendar.NewDate(2025, time.February, 14)))
	// On the anniversary day: one full month of service
	assert.Equal(t, 1, calendar.MonthsBetween(join, calendar.NewDate(2025, time.February, 15)))
	assert.Equal(t, 12, calendar.MonthsBetween(join, calendar.NewDate(2026, time.January, 15)))
}

func TestPeriod_Contains(t *testing.T) {
	p := calendar.CalendarYear(2025)

	assert.True(t, p.Contains(calendar.NewDate(2025, time.January, 1)))
	assert.True(t, p.Contains(calendar.NewDate(2025, time.December, 31)))
	assert.False(t, p.Contains(calendar.NewDate(2026, time.January, 1)))

	assert.Equal(t, 365, p.Days())
}

func TestMonthOf(t *testing.T) {
	p := calendar.MonthOf(calendar.NewDate(2025, time.April, 17))

	assert.True(t, p.Start.Equal(calendar.NewDate(2025, time.April, 1)))
	assert.True(t, p.End.Equal(calendar.NewDate(2025, time.April, 30)))
	assert.Equal(t, 30, p.Days())
}
