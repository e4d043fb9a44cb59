package tzrule

import "math"

// ZonalTransition is an instant at which the total UTC offset of a zone
// changes. It carries both sides of the change so a consumer never needs a
// second lookup to classify it. See spec.md §3.
type ZonalTransition struct {
	PosixTime      int64
	PreviousOffset int32
	TotalOffset    int32
	DSTSavings     int32
}

// IsGap reports whether this transition skips a range of local wall-clock
// values (clocks move forward).
func (t ZonalTransition) IsGap() bool { return t.TotalOffset > t.PreviousOffset }

// IsOverlap reports whether this transition repeats a range of local
// wall-clock values (clocks move backward).
func (t ZonalTransition) IsOverlap() bool { return t.TotalOffset < t.PreviousOffset }

// minPosixTime is the sentinel spec.md §3 calls MIN: "rules apply for all
// time," i.e. there is no pre-model era at all.
const minPosixTime = math.MinInt64

// InitialTransition anchors the boundary between the pre-model history (an
// external collaborator's job, per spec.md §1) and this model's
// rule-generated transitions. It is always at the standard offset with zero
// DST savings (spec.md §3, invariant 4).
type InitialTransition struct {
	posixTime      int64
	forever        bool
	standardOffset int32
}

// RulesForever returns an initial transition meaning the rules apply for
// all time; there is no pre-model era to defer to.
func RulesForever(standardOffset int32) InitialTransition {
	return InitialTransition{posixTime: minPosixTime, forever: true, standardOffset: standardOffset}
}

// StartingAt returns an initial transition marking the boundary at which
// the rule-based era begins. Before posixTime the caller's pre-model
// history governs; at and after it, this model's rules apply.
func StartingAt(posixTime int64, standardOffset int32) InitialTransition {
	return InitialTransition{posixTime: posixTime, forever: false, standardOffset: standardOffset}
}

// Forever reports whether this initial transition has no finite boundary
// (the "rules apply for all time" sentinel).
func (i InitialTransition) Forever() bool { return i.forever }

// PosixTime returns the boundary instant and true, or (0, false) if the
// rules apply for all time.
func (i InitialTransition) PosixTime() (int64, bool) {
	if i.forever {
		return 0, false
	}
	return i.posixTime, true
}

// StandardOffset returns the standard offset shared by previous_offset and
// total_offset on this initial transition (spec.md §3, invariant 4).
func (i InitialTransition) StandardOffset() int32 { return i.standardOffset }

// AsTransition renders the initial transition as a ZonalTransition for
// callers that want a uniform type. Its PosixTime is meaningless when
// Forever is true.
func (i InitialTransition) AsTransition() ZonalTransition {
	return ZonalTransition{
		PosixTime:      i.posixTime,
		PreviousOffset: i.standardOffset,
		TotalOffset:    i.standardOffset,
		DSTSavings:     0,
	}
}
