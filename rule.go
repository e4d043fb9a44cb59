package tzrule

import (
	"fmt"
	"time"

	"github.com/tzcore/tzrule/internal/calendarmath"
)

// Indicator selects which offset basis a rule's time-of-day is expressed
// against. It is a closed, exhaustively-matched enum: a fourth value is a
// programming error (spec.md §7, UnsupportedIndicator), not a case callers
// are expected to handle gracefully.
type Indicator int

const (
	// UTC means the rule's time-of-day is a universal-time instant.
	UTC Indicator = iota
	// Standard means the rule's time-of-day is a standard-time local
	// reading (no DST savings applied).
	Standard
	// Wall means the rule's time-of-day is a wall-clock local reading
	// (standard offset plus whatever savings were in effect immediately
	// before this rule fires).
	Wall
)

func (i Indicator) String() string {
	switch i {
	case UTC:
		return "UTC"
	case Standard:
		return "STANDARD"
	case Wall:
		return "WALL"
	default:
		return fmt.Sprintf("Indicator(%d)", int(i))
	}
}

func (i Indicator) valid() bool {
	return i == UTC || i == Standard || i == Wall
}

// DayForm identifies how a DaySelector resolves to a day-of-month in a
// given year. Modeled after the teacher's tzdata.DayForm, but closed over
// the four forms the core engine actually needs to evaluate — tzdata's own
// parsing vocabulary stays in the tzdata package.
type DayForm int

const (
	// DayFixed selects a fixed day-of-month.
	DayFixed DayForm = iota
	// DayLastWeekday selects the last occurrence of a weekday in the month.
	DayLastWeekday
	// DayOnOrAfter selects the first occurrence of a weekday on or after a
	// day-of-month, possibly spilling into the following month.
	DayOnOrAfter
	// DayOnOrBefore selects the last occurrence of a weekday on or before a
	// day-of-month, possibly spilling into the preceding month.
	DayOnOrBefore
)

// DaySelector picks a specific day within a given month and year. It is the
// closed sum spec.md §4.1 calls "date selector" variants.
type DaySelector struct {
	form    DayForm
	month   time.Month
	day     int
	weekday time.Weekday
}

// FixedDay returns a selector for a fixed day-of-month.
func FixedDay(month time.Month, day int) DaySelector {
	return DaySelector{form: DayFixed, month: month, day: day}
}

// LastWeekdayOf returns a selector for the last occurrence of weekday in the
// given month.
func LastWeekdayOf(month time.Month, weekday time.Weekday) DaySelector {
	return DaySelector{form: DayLastWeekday, month: month, weekday: weekday}
}

// WeekdayOnOrAfter returns a selector for the first occurrence of weekday on
// or after day in the given month.
func WeekdayOnOrAfter(month time.Month, day int, weekday time.Weekday) DaySelector {
	return DaySelector{form: DayOnOrAfter, month: month, day: day, weekday: weekday}
}

// WeekdayOnOrBefore returns a selector for the last occurrence of weekday on
// or before day in the given month.
func WeekdayOnOrBefore(month time.Month, day int, weekday time.Weekday) DaySelector {
	return DaySelector{form: DayOnOrBefore, month: month, day: day, weekday: weekday}
}

// GregorianDate is a resolved civil date in the proleptic Gregorian
// calendar. Month and Day may fall outside the year or month the selector
// was resolved for, e.g. "Dec Sun>=31" spills into January of the
// following year.
type GregorianDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DaylightSavingRule is an immutable description of one recurring annual
// switch: the calendar date it fires on in a given year, the local
// time-of-day it fires at, the DST savings it establishes, and which
// offset basis its time-of-day is expressed in. See spec.md §3 and §4.1.
type DaylightSavingRule struct {
	date      DaySelector
	timeOfDay time.Duration
	savings   int32
	indicator Indicator
}

// NewDaylightSavingRule builds a rule. timeOfDay is the local time-of-day
// the rule fires at; it may be negative or exceed 24h to mean "on the
// preceding/following civil day," per spec.md §3. savings is 0 for a rule
// that returns to standard time.
func NewDaylightSavingRule(date DaySelector, timeOfDay time.Duration, savings int32, indicator Indicator) DaylightSavingRule {
	return DaylightSavingRule{date: date, timeOfDay: timeOfDay, savings: savings, indicator: indicator}
}

// Date resolves the rule's firing date in the given Gregorian year.
func (r DaylightSavingRule) Date(year int) GregorianDate {
	y, m, d := resolveDay(year, r.date)
	return GregorianDate{Year: y, Month: m, Day: d}
}

// TimeOfDay returns the local time-of-day of the switch.
func (r DaylightSavingRule) TimeOfDay() time.Duration { return r.timeOfDay }

// Savings returns the seconds to add to the standard offset once the rule
// is in effect.
func (r DaylightSavingRule) Savings() int32 { return r.savings }

// Indicator returns the offset basis the rule's time-of-day is expressed
// against.
func (r DaylightSavingRule) Indicator() Indicator { return r.indicator }

// IsStandard reports whether the rule returns to standard time (the rule
// spec.md §3 requires at least one of per rule set).
func (r DaylightSavingRule) IsStandard() bool { return r.savings == 0 }

// resolveDay materializes a DaySelector into a Gregorian date for the given
// year. DayOnOrAfter and DayOnOrBefore may spill into the neighboring month
// or year (e.g. "Sun>=25 in December" can land in January).
func resolveDay(year int, d DaySelector) (int, time.Month, int) {
	switch d.form {
	case DayFixed:
		return year, monthOf(d), d.day
	case DayLastWeekday:
		day := calendarmath.LastWeekdayOfMonth(year, monthOf(d), d.weekday)
		return year, monthOf(d), day
	case DayOnOrAfter:
		return calendarmath.NextWeekday(year, monthOf(d), d.day, d.weekday)
	case DayOnOrBefore:
		return calendarmath.PreviousWeekday(year, monthOf(d), d.day, d.weekday)
	default:
		panic(fmt.Sprintf("tzrule: unknown day form %d", d.form))
	}
}

func monthOf(d DaySelector) time.Month { return d.month }
