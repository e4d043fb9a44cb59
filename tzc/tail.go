package tzc

import (
	"fmt"

	"github.com/tzcore/tzrule"
	"github.com/tzcore/tzrule/tzif"
)

// CompileTail renders a RuleBasedModel's transitions over [start, end) into
// a tzif.V2DataBlock, the same shape Compile builds from tzdata directly.
// It lets a caller attach rule-engine output to a tzif.File without first
// serializing it back through tzdata: the engine's own TransitionsIn is the
// source of truth for the tail. transitions, used for the historical part
// of a zone's rule set, computes only one instant per rule (its FROM year).
func CompileTail(m *tzrule.RuleBasedModel, start, end int64) (tzif.V2DataBlock, error) {
	transitions, err := m.TransitionsIn(start, end)
	if err != nil {
		return tzif.V2DataBlock{}, fmt.Errorf("tzc: compiling tail: %w", err)
	}

	var block tzif.V2DataBlock
	typeIndex := make(map[int32]uint8)
	standard := m.StandardOffset()

	typeFor := func(offset int32) uint8 {
		if idx, ok := typeIndex[offset]; ok {
			return idx
		}
		dst := offset != standard
		var desigIdx uint8
		block.TimeZoneDesignation, desigIdx = appendDesignation(block.TimeZoneDesignation, designation(offset, dst))
		idx := uint8(len(block.LocalTimeTypeRecord))
		block.LocalTimeTypeRecord = append(block.LocalTimeTypeRecord, tzif.LocalTimeTypeRecord{
			Utoff: offset,
			Dst:   dst,
			Idx:   desigIdx,
		})
		typeIndex[offset] = idx
		return idx
	}

	if len(transitions) == 0 {
		typeFor(standard)
		return block, nil
	}

	typeFor(transitions[0].PreviousOffset)
	for _, t := range transitions {
		idx := typeFor(t.TotalOffset)
		block.TransitionTimes = append(block.TransitionTimes, t.PosixTime)
		block.TransitionTypes = append(block.TransitionTypes, idx)
	}
	return block, nil
}

// designation synthesizes a placeholder time zone abbreviation from an
// offset, since a RuleBasedModel carries no designation strings of its own
// (spec.md's data model has no LETTER/FORMAT equivalent).
func designation(offset int32, dst bool) string {
	sign := byte('+')
	o := offset
	if o < 0 {
		sign = '-'
		o = -o
	}
	suffix := "STD"
	if dst {
		suffix = "DST"
	}
	return fmt.Sprintf("%c%02d%02d%s", sign, o/3600, (o/60)%60, suffix)
}
