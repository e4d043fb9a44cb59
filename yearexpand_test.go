package tzrule

import (
	"testing"
	"time"
)

func euRules() []DaylightSavingRule {
	return []DaylightSavingRule{
		NewDaylightSavingRule(LastWeekdayOf(time.March, time.Sunday), 1*time.Hour, 3600, UTC),
		NewDaylightSavingRule(LastWeekdayOf(time.October, time.Sunday), 1*time.Hour, 0, UTC),
	}
}

func TestTransitionsForYear_EUPair(t *testing.T) {
	rules := euRules()
	got := transitionsForYear(3600, rules, 2024)
	if len(got) != 2 {
		t.Fatalf("transitionsForYear() returned %d transitions, want 2", len(got))
	}

	spring := got[0]
	if !spring.IsGap() {
		t.Errorf("spring transition IsGap() = false, want true")
	}
	if spring.PreviousOffset != 3600 || spring.TotalOffset != 7200 {
		t.Errorf("spring transition offsets = (%d, %d), want (3600, 7200)", spring.PreviousOffset, spring.TotalOffset)
	}

	fall := got[1]
	if !fall.IsOverlap() {
		t.Errorf("fall transition IsOverlap() = false, want true")
	}
	if fall.PreviousOffset != 7200 || fall.TotalOffset != 3600 {
		t.Errorf("fall transition offsets = (%d, %d), want (7200, 3600)", fall.PreviousOffset, fall.TotalOffset)
	}
	if fall.PosixTime <= spring.PosixTime {
		t.Errorf("fall.PosixTime (%d) <= spring.PosixTime (%d)", fall.PosixTime, spring.PosixTime)
	}
}

func TestRuleCycle_monotonicAcrossYearWrap(t *testing.T) {
	rules := euRules()
	c := newRuleCycle(3600, rules)
	c.seed(0)

	var last int64 = -1 << 62
	for i := 0; i < 40; i++ { // 20 years' worth of transitions
		tr := c.next()
		if tr.PosixTime <= last {
			t.Fatalf("step %d: PosixTime %d did not increase past previous %d", i, tr.PosixTime, last)
		}
		last = tr.PosixTime
	}
}

func TestRuleCycle_seedDeterminesStartYear(t *testing.T) {
	rules := euRules()
	c := newRuleCycle(3600, rules)
	// 2024-06-01 UTC: mid-year, after the 2024 spring transition.
	const midYear2024 = 1717200000
	c.seed(midYear2024)

	// seed only fixes the cycle's starting year, not a position within it:
	// the first step replays the year's own first rule (spring), even
	// though it is already in the past relative to the seed instant. This
	// is the "seed determines year, caller filters the result" contract
	// TransitionsIn and NextTransition build on.
	year2024 := transitionsForYear(3600, rules, 2024)
	if first := c.next(); first != year2024[0] {
		t.Errorf("first transition after seeding mid-2024 = %+v, want the 2024 spring transition %+v", first, year2024[0])
	}
	if second := c.next(); second != year2024[1] {
		t.Errorf("second transition after seeding mid-2024 = %+v, want the 2024 fall transition %+v", second, year2024[1])
	}
}
