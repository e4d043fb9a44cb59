// Package tzrule implements a rule-based timezone transition engine: given
// a standard UTC offset and a small set of recurring daylight-saving
// rules, it computes the active total offset, the next and previous
// transitions, and how local wall-clock values map to absolute time across
// gaps and overlaps, for any point in civil or absolute time.
//
// The engine is the extrapolation tail of a historical transition table
// (beyond the last explicitly recorded transition), or a standalone model
// for zones defined purely by a recurring annual pattern. Parsing tzdata
// rule files, storing historical transitions, and other calendar systems
// are out of scope here; see the tzdata2rule package for the adapter that
// bridges a parsed IANA rule set into a RuleBasedModel.
package tzrule

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/tzcore/tzrule/internal/calendarmath"
)

const (
	minRuleCount = 2
	maxRuleCount = 128
)

// RuleBasedModel is the public contract spec.md §3/§6 describes. It is
// immutable after construction except for its year cache.
type RuleBasedModel struct {
	initial        InitialTransition
	rules          []DaylightSavingRule
	standardOffset int32
	stdTransitions []ZonalTransition
	cache          *yearCache
	logger         *slog.Logger
}

// New constructs a model whose initial transition is synthesized as
// "rules apply for all time" (spec.md §6: "When only the standard offset
// is supplied, the initial transition is synthesised with posix_time =
// MIN"). now is used to precompute StdTransitions and to fix the year
// cache's horizon (now's year + 100); logger may be nil.
func New(standardOffset int32, rules []DaylightSavingRule, now time.Time, logger *slog.Logger) (*RuleBasedModel, error) {
	return newModel(RulesForever(standardOffset), rules, now, logger)
}

// NewWithInitialTransition constructs a model whose rule-based era begins
// at an explicit boundary, tying it to a pre-model history the caller owns
// (spec.md §1's "extrapolation tail of a historical transition table").
func NewWithInitialTransition(initial InitialTransition, rules []DaylightSavingRule, now time.Time, logger *slog.Logger) (*RuleBasedModel, error) {
	return newModel(initial, rules, now, logger)
}

func newModel(initial InitialTransition, rules []DaylightSavingRule, now time.Time, logger *slog.Logger) (*RuleBasedModel, error) {
	if err := validateRuleSet(rules); err != nil {
		return nil, err
	}
	standardOffset := initial.StandardOffset()
	ordered, err := orderRules(standardOffset, rules)
	if err != nil {
		return nil, err
	}
	if err := validateInitialConsistency(initial, standardOffset, ordered); err != nil {
		return nil, err
	}

	m := &RuleBasedModel{
		initial:        initial,
		rules:          ordered,
		standardOffset: standardOffset,
		logger:         logger,
	}
	m.cache = newYearCache(now.Year()+100, func(year int) []ZonalTransition {
		return transitionsForYear(m.standardOffset, m.rules, year)
	}, logger)

	horizon := now.AddDate(1, 0, 0).Unix()
	std, err := m.TransitionsIn(0, horizon)
	if err != nil {
		return nil, fmt.Errorf("tzrule: precomputing std_transitions: %w", err)
	}
	m.stdTransitions = std
	return m, nil
}

// validateRuleSet checks spec.md §3 invariants 1-2 and rejects unsupported
// indicators before anything touches calendar math.
func validateRuleSet(rules []DaylightSavingRule) error {
	var errs []error
	if n := len(rules); n < minRuleCount || n >= maxRuleCount {
		errs = append(errs, fmt.Errorf("%w: %d rules, want [%d,%d)", ErrInvalidRules, n, minRuleCount, maxRuleCount))
	}
	hasZero := false
	for i, r := range rules {
		if r.Savings() == 0 {
			hasZero = true
		}
		if !r.Indicator().valid() {
			errs = append(errs, fmt.Errorf("%w: rule %d has indicator %v", ErrUnsupportedIndicator, i, r.Indicator()))
		}
	}
	if !hasZero {
		errs = append(errs, fmt.Errorf("%w: no rule has zero savings", ErrInvalidRules))
	}
	return errors.Join(errs...)
}

// validateInitialConsistency enforces spec.md §3 invariant 5: if the
// initial transition has a finite boundary, the first rule-generated
// transition strictly after it must hand off from the initial total
// offset.
func validateInitialConsistency(initial InitialTransition, standardOffset int32, orderedRules []DaylightSavingRule) error {
	posixTime, ok := initial.PosixTime()
	if !ok {
		return nil
	}
	c := newRuleCycle(standardOffset, orderedRules)
	c.seed(posixTime)
	for {
		t := c.next()
		if t.PosixTime > posixTime {
			if t.PreviousOffset != standardOffset {
				return fmt.Errorf("%w: first transition after initial (posix_time=%d) has previous_offset %d, want %d",
					ErrInconsistentInitial, t.PosixTime, t.PreviousOffset, standardOffset)
			}
			return nil
		}
	}
}

// InitialOffset returns the total offset in effect during the pre-model
// era (spec.md §4.9).
func (m *RuleBasedModel) InitialOffset() int32 { return m.initial.StandardOffset() }

// Initial returns the model's initial transition.
func (m *RuleBasedModel) Initial() InitialTransition { return m.initial }

// Rules returns the rules in their canonical annual order.
func (m *RuleBasedModel) Rules() []DaylightSavingRule {
	out := make([]DaylightSavingRule, len(m.rules))
	copy(out, m.rules)
	return out
}

// StandardOffset returns the zone's base UTC offset, ignoring DST.
func (m *RuleBasedModel) StandardOffset() int32 { return m.standardOffset }

// StdTransitions returns the transitions precomputed at construction time
// over [UNIX_EPOCH, construction_now + 1 year) (spec.md §4.9). The
// returned slice is shared and must not be mutated.
func (m *RuleBasedModel) StdTransitions() []ZonalTransition { return m.stdTransitions }

// yearTransitions fetches the cached (or recomputed, beyond the cache
// horizon) transitions for a civil year.
func (m *RuleBasedModel) yearTransitions(year int) []ZonalTransition {
	return m.cache.get(year)
}

// TransitionsIn returns the transitions whose instant lies in [start, end)
// and is strictly greater than the initial transition's boundary (spec.md
// §4.5).
func (m *RuleBasedModel) TransitionsIn(start, end int64) ([]ZonalTransition, error) {
	if start > end {
		return nil, fmt.Errorf("%w: start %d > end %d", ErrInvalidInterval, start, end)
	}
	initialTime, hasInitial := m.initial.PosixTime()
	if hasInitial && end <= initialTime {
		return nil, nil
	}
	if start == end {
		return nil, nil
	}

	seedFrom := start
	if hasInitial && initialTime > seedFrom {
		seedFrom = initialTime
	}
	c := newRuleCycle(m.standardOffset, m.rules)
	c.seed(seedFrom)

	var out []ZonalTransition
	for {
		t := c.next()
		if t.PosixTime >= end {
			break
		}
		if t.PosixTime >= start && (!hasInitial || t.PosixTime > initialTime) {
			out = append(out, t)
		}
	}
	return out, nil
}

// NextTransition returns the first transition strictly after
// max(ut, initial.posix_time) (spec.md §4.7). It always terminates: the
// annual cycle is non-degenerate (at least 2 rules, at least one with zero
// savings), so the cycle's POSIX times strictly increase without bound.
func (m *RuleBasedModel) NextTransition(ut int64) ZonalTransition {
	start := ut
	if initialTime, ok := m.initial.PosixTime(); ok && initialTime > start {
		start = initialTime
	}
	c := newRuleCycle(m.standardOffset, m.rules)
	c.seed(start)
	for {
		t := c.next()
		if t.PosixTime > start {
			return t
		}
	}
}

// StartTransition returns the greatest transition with posix_time ≤ ut and
// posix_time > initial.posix_time. The second return value is false if ut
// is at or before the initial boundary (spec.md §4.7).
func (m *RuleBasedModel) StartTransition(ut int64) (ZonalTransition, bool) {
	initialTime, hasInitial := m.initial.PosixTime()
	if hasInitial && ut <= initialTime {
		return ZonalTransition{}, false
	}

	rule0 := m.rules[0]
	lastRule := m.rules[len(m.rules)-1]
	shift := shiftFor(rule0.Indicator(), m.standardOffset, lastRule.Savings())
	year := yearFromBiasedInstant(ut, shift)

	list := m.yearTransitions(year)
	pos := sort.Search(len(list), func(i int) bool { return list[i].PosixTime > ut })

	var candidate ZonalTransition
	if pos == 0 {
		prevList := m.yearTransitions(year - 1)
		candidate = prevList[len(prevList)-1]
	} else {
		candidate = list[pos-1]
	}

	if hasInitial && candidate.PosixTime <= initialTime {
		return ZonalTransition{}, false
	}
	return candidate, true
}

// ConflictTransition returns the transition whose local window (spec.md
// §4.8) contains the local-second-count L as a gap or overlap, else false.
func (m *RuleBasedModel) ConflictTransition(L int64) (ZonalTransition, bool) {
	t, conflict, _ := m.localLookup(L)
	if conflict {
		return t, true
	}
	return ZonalTransition{}, false
}

// ValidOffsets returns the total offsets L may legitimately denote: empty
// inside a gap, one element elsewhere, two (current, previous) inside an
// overlap (spec.md §4.8).
func (m *RuleBasedModel) ValidOffsets(L int64) []int32 {
	t, conflict, offset := m.localLookup(L)
	if !conflict {
		return []int32{offset}
	}
	if t.IsGap() {
		return nil
	}
	return []int32{t.TotalOffset, t.PreviousOffset}
}

// localLookup implements the shared scan spec.md §4.8 describes for both
// ConflictTransition and ValidOffsets.
func (m *RuleBasedModel) localLookup(L int64) (conflictTransition ZonalTransition, isConflict bool, offset int32) {
	initialTime, hasInitial := m.initial.PosixTime()
	if hasInitial {
		threshold := initialTime + int64(m.initial.StandardOffset())
		if L <= threshold {
			return ZonalTransition{}, false, m.initial.StandardOffset()
		}
	}

	year := yearFromBiasedInstant(L, 0)
	list := m.yearTransitions(year)
	if len(list) == 0 {
		return ZonalTransition{}, false, m.standardOffset
	}

	running := list[0].PreviousOffset
	for _, t := range list {
		lo, hi := localWindow(t)
		if L >= lo && L < hi {
			return t, true, 0
		}
		if L < lo {
			return ZonalTransition{}, false, running
		}
		running = t.TotalOffset
	}
	return ZonalTransition{}, false, running
}

// localWindow returns the half-open local-second-count range a transition
// makes ambiguous or unreachable (spec.md §4.8).
func localWindow(t ZonalTransition) (lo, hi int64) {
	switch {
	case t.IsGap():
		return t.PosixTime + int64(t.PreviousOffset), t.PosixTime + int64(t.TotalOffset)
	case t.IsOverlap():
		return t.PosixTime + int64(t.TotalOffset), t.PosixTime + int64(t.PreviousOffset)
	default:
		return t.PosixTime, t.PosixTime
	}
}

func yearFromBiasedInstant(instant int64, shift int32) int {
	return calendarmath.YearFromPOSIXSeconds(instant + int64(shift))
}
