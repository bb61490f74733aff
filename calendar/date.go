/*
Package calendar provides day-granularity date arithmetic for the leave engine.

PURPOSE:
  Leave policies are defined in whole calendar days: accruals land on the
  first of a month, year boundaries fall on January 1, and service length
  is measured in completed months. This package wraps time.Time with a
  day-granularity Date so the rest of the engine never has to think about
  hours, time zones, or DST.

KEY CONCEPTS:
  - Date: a calendar day, always UTC-midnight internally
  - Period: an inclusive [Start, End] day range (payroll periods, leave spans)
  - Service math: MonthsBetween for minimum-service gates and pro-ration

DESIGN PRINCIPLES:
  1. Value semantics: Date is copied freely, never mutated
  2. Normalization: comparisons ignore everything below day granularity
  3. No "now" hidden inside computations - callers inject Today()

SEE ALSO:
  - accrual: consumes Date for accrual schedules
  - ledger: keys balance rows by Date.Year()
*/
package calendar

import (
	"encoding/json"
	"time"
)

// =============================================================================
// DATE - A calendar day
// =============================================================================

type Date struct {
	Time time.Time
}

// NewDate constructs a Date at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates a time.Time to its calendar day.
func FromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day.
func Today() Date {
	return FromTime(time.Now().UTC())
}

// Parse reads a date in 2006-01-02 form.
func Parse(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return FromTime(t), nil
}

// Comparison
func (d Date) Before(o Date) bool { return d.normalize().Before(o.normalize()) }
func (d Date) After(o Date) bool { return d.normalize().After(o.normalize()) }
func (d Date) Equal(o Date) bool { return d.normalize().Equal(o.normalize()) }
func (d Date) BeforeOrEqual(o Date) bool { return d.Before(o) || d.Equal(o) }
func (d Date) AfterOrEqual(o Date) bool { return d.After(o) || d.Equal(o) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date { return FromTime(d.Time.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return FromTime(d.Time.AddDate(0, n, 0)) }
func (d Date) AddYears(n int) Date { return FromTime(d.Time.AddDate(n, 0, 0)) }

// Properties
func (d Date) Year() int { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int { return d.Time.Day() }
func (d Date) IsZero() bool { return d.Time.IsZero() }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// MarshalJSON renders the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "2006-01-02".
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// CALENDAR HELPERS
// =============================================================================

func StartOfYear(year int) Date { return NewDate(year, time.January, 1) }
func EndOfYear(year int) Date { return NewDate(year, time.December, 31) }
func StartOfMonth(d Date) Date { return NewDate(d.Year(), d.Month(), 1) }

// DaysInMonth returns the number of days in the date's month.
func DaysInMonth(d Date) int {
	first := NewDate(d.Year(), d.Month(), 1)
	return first.AddMonths(1).AddDays(-1).Day()
}

// DaysBetween returns the whole days from 'from' to 'to'. Negative if to < from.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// MonthsBetween returns completed calendar months from 'from' to 'to'.
// A month counts only once the anniversary day has been reached, so an
// employee joining January 15 has 1 month of service on February 15,
// not February 1.
func MonthsBetween(from, to Date) int {
	if to.Before(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// =============================================================================
// PERIOD - Inclusive day range
// =============================================================================

// Period is an inclusive [Start, End] range of calendar days.
type Period struct {
	Start Date
	End   Date
}

// CalendarYear returns the Jan 1 - Dec 31 period for a year.
func CalendarYear(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// MonthOf returns the period covering the date's month.
func MonthOf(d Date) Period {
	start := StartOfMonth(d)
	return Period{Start: start, End: start.AddMonths(1).AddDays(-1)}
}

// Contains reports whether the day falls inside the period.
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns the inclusive day count of the period.
func (p Period) Days() int { return DaysBetween(p.Start, p.End) + 1 }

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
