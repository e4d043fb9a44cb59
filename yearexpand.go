package tzrule

import (
	"time"

	"github.com/tzcore/tzrule/internal/calendarmath"
)

// transitionsForYear returns exactly len(rules) transitions, one per rule,
// in firing order for the given civil year (spec.md §4.4). The previous
// offset of rule i wraps from the cycle tail back to its head within the
// same year — a deliberate simplification spec.md §9 calls out explicitly.
func transitionsForYear(standardOffset int32, rules []DaylightSavingRule, year int) []ZonalTransition {
	n := len(rules)
	out := make([]ZonalTransition, n)
	for i, r := range rules {
		prev := rules[(i-1+n)%n]
		out[i] = transitionAt(standardOffset, prev.Savings(), r, year)
	}
	return out
}

// transitionAt computes the single transition rule fires at in year, given
// the DST savings in effect immediately before it (spec.md §4.2).
func transitionAt(standardOffset, previousSavings int32, r DaylightSavingRule, year int) ZonalTransition {
	shift := shiftFor(r.Indicator(), standardOffset, previousSavings)
	d := r.Date(year)
	secOfDay := int64(r.TimeOfDay() / time.Second)
	tt := calendarmath.ToPOSIXSeconds(d.Year, d.Month, d.Day, secOfDay) - int64(shift)
	return ZonalTransition{
		PosixTime:      tt,
		PreviousOffset: standardOffset + previousSavings,
		TotalOffset:    standardOffset + r.Savings(),
		DSTSavings:     r.Savings(),
	}
}

// ruleCycle is the incremental "walk the annual cycle forward forever"
// iterator spec.md §4.5 and §4.7 both describe: seed a starting year from a
// biased instant, then emit one transition per step, incrementing the year
// each time the cycle wraps from the last rule back to the first. It backs
// transitions_in, next_transition, and the construction-time initial
// transition consistency check.
type ruleCycle struct {
	standardOffset int32
	rules          []DaylightSavingRule
	n              int
	i              int
	year           int
}

func newRuleCycle(standardOffset int32, rules []DaylightSavingRule) *ruleCycle {
	return &ruleCycle{standardOffset: standardOffset, rules: rules, n: len(rules)}
}

// seed establishes the starting year using from as the biased instant
// (spec.md §4.5: "gregorian_year(max(start, initial.posix_time) + shift)"),
// where shift is computed against the first rule in the cycle.
func (c *ruleCycle) seed(from int64) {
	rule0 := c.rules[0]
	prev := c.rules[c.n-1]
	shift := shiftFor(rule0.Indicator(), c.standardOffset, prev.Savings())
	c.year = calendarmath.YearFromPOSIXSeconds(from + int64(shift))
	c.i = 0
}

// next returns the next transition in the cycle and advances the iterator.
func (c *ruleCycle) next() ZonalTransition {
	if c.i > 0 && c.i%c.n == 0 {
		c.year++
	}
	idx := c.i % c.n
	rule := c.rules[idx]
	prev := c.rules[(idx-1+c.n)%c.n]
	c.i++
	return transitionAt(c.standardOffset, prev.Savings(), rule, c.year)
}
