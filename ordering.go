package tzrule

import (
	"fmt"
	"sort"
	"time"

	"github.com/tzcore/tzrule/internal/calendarmath"
)

// referenceYear is the canonical calendar year rules are laid onto to
// compute their relative annual firing order. It must be a leap year so a
// fixed Feb 29 rule (vanishingly rare in practice, but a valid DaySelector)
// resolves to a real date. The choice of year otherwise does not matter:
// only the relative month/day/time ordering within one calendar cycle is
// used, never the resulting absolute instant.
const referenceYear = 2000

// orderRules sorts rules into the canonical annual cycle spec.md §4.3
// describes: by month, then resolved day-in-year under referenceYear, then
// by time-of-day converted to a common basis. It returns ErrInvalidRules if
// two distinct rules resolve to the same firing position, per the Open
// Question decision recorded in DESIGN.md (coincident rule dates are a
// construction error here, not resolved by a stable tiebreak).
func orderRules(standardOffset int32, rules []DaylightSavingRule) ([]DaylightSavingRule, error) {
	n := len(rules)
	ordered := make([]DaylightSavingRule, n)
	copy(ordered, rules)
	keys := make([]int64, n)
	for i, r := range ordered {
		keys[i] = annualOrdinal(standardOffset, r)
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })

	sorted := make([]DaylightSavingRule, n)
	sortedKeys := make([]int64, n)
	for i, j := range idx {
		sorted[i] = ordered[j]
		sortedKeys[i] = keys[j]
	}
	for i := 1; i < n; i++ {
		if sortedKeys[i] == sortedKeys[i-1] {
			return nil, fmt.Errorf("%w: rules %d and %d fire at the same position in the annual cycle", ErrInvalidRules, i-1, i)
		}
	}
	return sorted, nil
}

// annualOrdinal computes a single comparable key for a rule's firing
// position within referenceYear, with its time-of-day converted to a
// common basis (nominal savings of 0, per spec.md §4.3). It reuses the same
// POSIX-second construction the year expander uses for actual transitions,
// so the resulting order always matches actual transition order within a
// single calendar year.
func annualOrdinal(standardOffset int32, r DaylightSavingRule) int64 {
	shift := shiftFor(r.Indicator(), standardOffset, 0)
	d := r.Date(referenceYear)
	secOfDay := int64(r.TimeOfDay() / time.Second)
	return calendarmath.ToPOSIXSeconds(d.Year, d.Month, d.Day, secOfDay) - int64(shift)
}

// shiftFor returns the basis shift spec.md §4.2 defines for converting a
// rule's locally-expressed time-of-day into a POSIX second count.
// previousSavings is the DST savings in effect immediately before the rule
// fires; callers computing the ordering-only basis pass 0 (spec.md §4.3's
// "nominal savings of 0").
func shiftFor(indicator Indicator, standardOffset, previousSavings int32) int32 {
	switch indicator {
	case UTC:
		return 0
	case Standard:
		return standardOffset
	case Wall:
		return standardOffset + previousSavings
	default:
		panic(fmt.Sprintf("tzrule: %v", ErrUnsupportedIndicator))
	}
}
