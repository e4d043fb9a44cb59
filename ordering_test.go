package tzrule

import (
	"errors"
	"testing"
	"time"
)

func TestOrderRules_EUPair(t *testing.T) {
	springForward := NewDaylightSavingRule(LastWeekdayOf(time.March, time.Sunday), 1*time.Hour, 3600, UTC)
	fallBack := NewDaylightSavingRule(LastWeekdayOf(time.October, time.Sunday), 1*time.Hour, 0, UTC)

	ordered, err := orderRules(3600, []DaylightSavingRule{fallBack, springForward})
	if err != nil {
		t.Fatalf("orderRules() error: %v", err)
	}
	if len(ordered) != 2 {
		t.Fatalf("orderRules() returned %d rules, want 2", len(ordered))
	}
	if ordered[0].Date(2000).Month != time.March {
		t.Errorf("ordered[0] fires in %v, want March", ordered[0].Date(2000).Month)
	}
	if ordered[1].Date(2000).Month != time.October {
		t.Errorf("ordered[1] fires in %v, want October", ordered[1].Date(2000).Month)
	}
}

func TestOrderRules_coincidentDatesIsError(t *testing.T) {
	a := NewDaylightSavingRule(FixedDay(time.January, 1), 0, 3600, UTC)
	b := NewDaylightSavingRule(FixedDay(time.January, 1), 0, 0, UTC)

	_, err := orderRules(0, []DaylightSavingRule{a, b})
	if !errors.Is(err, ErrInvalidRules) {
		t.Fatalf("orderRules() error = %v, want wrapping ErrInvalidRules", err)
	}
}

func TestShiftFor(t *testing.T) {
	tests := []struct {
		indicator       Indicator
		standardOffset  int32
		previousSavings int32
		want            int32
	}{
		{UTC, 3600, 3600, 0},
		{Standard, 3600, 3600, 3600},
		{Wall, 3600, 3600, 7200},
	}
	for _, tt := range tests {
		if got := shiftFor(tt.indicator, tt.standardOffset, tt.previousSavings); got != tt.want {
			t.Errorf("shiftFor(%v, %d, %d) = %d, want %d", tt.indicator, tt.standardOffset, tt.previousSavings, got, tt.want)
		}
	}
}

func TestShiftFor_unsupportedIndicatorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("shiftFor(invalid) did not panic")
		}
	}()
	shiftFor(Indicator(99), 0, 0)
}
