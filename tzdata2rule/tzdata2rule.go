// Package tzdata2rule adapts parsed IANA tzdata rule files into
// tzrule.RuleBasedModel values. A zone's final, UNTIL-less continuation
// line together with the indefinite tail of its named rule set (the rules
// whose TO column is "max") is exactly the "standard offset + recurring
// rules" input the core engine consumes — this is the "extrapolation tail
// of a historical transition table" spec.md §1 describes, made concrete.
//
// Build accepts either a zone's canonical name or one of its tzdata Link
// aliases; alias chains are resolved against the file's LinkLines before
// the zone's continuation lines are looked up.
//
// This package is new: the teacher's internal/tzir package sketched the
// same idea (activeRules, ruleOccurrenceIn, validForever) as an unfinished,
// debug-print prototype. This is its real, tested replacement.
package tzdata2rule

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tzcore/tzrule"
	"github.com/tzcore/tzrule/internal/calendarmath"
	"github.com/tzcore/tzrule/tzdata"
)

// Build constructs a RuleBasedModel for zoneName from f. now and logger are
// forwarded to tzrule.New/NewWithInitialTransition exactly as a direct
// caller of the core engine would supply them.
func Build(f tzdata.File, zoneName string, now time.Time, logger *slog.Logger) (*tzrule.RuleBasedModel, error) {
	target, err := resolveLink(f.LinkLines, zoneName)
	if err != nil {
		return nil, err
	}

	lines := continuationLines(f, target)
	if len(lines) == 0 {
		return nil, fmt.Errorf("tzdata2rule: no zone lines for %q", target)
	}
	last := lines[len(lines)-1]
	if last.Until.Defined {
		return nil, fmt.Errorf("tzdata2rule: zone %q has no open-ended (UNTIL-less) continuation line to extrapolate from", target)
	}

	standardOffset := int32(last.Offset / time.Second)

	switch last.Rules.Form {
	case tzdata.ZoneRulesStandard:
		// No DST ever again: model it as a single always-on rule pair so
		// the engine's invariant (>=2 rules, one with zero savings) still
		// holds; both rules carry zero savings, so the offset never changes.
		rules := standingRulePair()
		return newModel(lines, standardOffset, rules, now, logger)
	case tzdata.ZoneRulesName:
		tail := tailRules(f.RuleLines, last.Rules.Name)
		if len(tail) == 0 {
			return nil, fmt.Errorf("tzdata2rule: zone %q's rule set %q has no indefinite (TO=max) rules", target, last.Rules.Name)
		}
		rules := make([]tzrule.DaylightSavingRule, len(tail))
		for i, r := range tail {
			rules[i] = convertRule(r)
		}
		return newModel(lines, standardOffset, rules, now, logger)
	default:
		return nil, fmt.Errorf("tzdata2rule: zone %q's final continuation has unsupported RULES form %v", target, last.Rules.Form)
	}
}

func newModel(lines []tzdata.ZoneLine, standardOffset int32, rules []tzrule.DaylightSavingRule, now time.Time, logger *slog.Logger) (*tzrule.RuleBasedModel, error) {
	if len(lines) == 1 {
		return tzrule.New(standardOffset, rules, now, logger)
	}
	previous := lines[len(lines)-2]
	boundary, err := untilInstant(previous)
	if err != nil {
		return nil, fmt.Errorf("tzdata2rule: computing initial transition boundary: %w", err)
	}
	return tzrule.NewWithInitialTransition(tzrule.StartingAt(boundary, standardOffset), rules, now, logger)
}

// standingRulePair synthesizes the degenerate rule set for a zone whose
// final continuation never observes DST again (RULES = "-"): two
// zero-savings rules firing one second apart on January 1 (UTC), satisfying
// the engine's construction invariants (at least two rules, one with zero
// savings, no two at the same annual position) without ever actually
// toggling the offset.
func standingRulePair() []tzrule.DaylightSavingRule {
	jan1 := tzrule.FixedDay(time.January, 1)
	return []tzrule.DaylightSavingRule{
		tzrule.NewDaylightSavingRule(jan1, 0, 0, tzrule.UTC),
		tzrule.NewDaylightSavingRule(jan1, time.Second, 0, tzrule.UTC),
	}
}

// resolveLink follows Link lines so callers can pass either a canonical zone
// name or one of its aliases (e.g. "Europe/Vaduz", linked to
// "Europe/Zurich"). Chains are followed until a name with no alias pointing
// away from it is reached; a cycle is reported rather than looped forever.
func resolveLink(links []tzdata.LinkLine, name string) (string, error) {
	seen := map[string]bool{name: true}
	for {
		next, ok := findLinkTarget(links, name)
		if !ok {
			return name, nil
		}
		if seen[next] {
			return "", fmt.Errorf("tzdata2rule: link cycle resolving %q", name)
		}
		seen[next] = true
		name = next
	}
}

func findLinkTarget(links []tzdata.LinkLine, aliasName string) (string, bool) {
	for _, l := range links {
		if l.To == aliasName {
			return l.From, true
		}
	}
	return "", false
}

// continuationLines returns zoneName's zone lines in file order: the named
// line followed by any continuation lines.
func continuationLines(f tzdata.File, zoneName string) []tzdata.ZoneLine {
	var lines []tzdata.ZoneLine
	active := false
	for _, l := range f.ZoneLines {
		if !l.Continuation {
			active = l.Name == zoneName
		}
		if active {
			lines = append(lines, l)
		}
	}
	return lines
}

// tailRules returns the rules in name's rule set that extrapolate forever
// (TO = max), in file order. Rule ordering within the tail is
// tzrule.New's job (spec.md §4.3), not this adapter's.
func tailRules(all []tzdata.RuleLine, name string) []tzdata.RuleLine {
	var out []tzdata.RuleLine
	for _, r := range all {
		if r.Name == name && r.To == tzdata.MaxYear {
			out = append(out, r)
		}
	}
	return out
}

// convertRule maps one tzdata.RuleLine onto the engine's closed rule
// representation.
func convertRule(r tzdata.RuleLine) tzrule.DaylightSavingRule {
	date := convertDay(r.In, r.On)
	return tzrule.NewDaylightSavingRule(date, r.At.Duration, int32(r.Save.Duration/time.Second), convertIndicator(r.At.Form))
}

func convertDay(month time.Month, d tzdata.Day) tzrule.DaySelector {
	switch d.Form {
	case tzdata.DayFormDayNum:
		return tzrule.FixedDay(month, d.Num)
	case tzdata.DayFormLast:
		return tzrule.LastWeekdayOf(month, d.Day)
	case tzdata.DayFormAfter:
		return tzrule.WeekdayOnOrAfter(month, d.Num, d.Day)
	case tzdata.DayFormBefore:
		return tzrule.WeekdayOnOrBefore(month, d.Num, d.Day)
	default:
		panic(fmt.Sprintf("tzdata2rule: unknown day form %v", d.Form))
	}
}

func convertIndicator(form tzdata.TimeForm) tzrule.Indicator {
	switch form {
	case tzdata.UniversalTime:
		return tzrule.UTC
	case tzdata.StandardTime:
		return tzrule.Standard
	case tzdata.WallClock, tzdata.DaylightSavingTime:
		// DaylightSavingTime is not a valid AT-column suffix in real tzdata
		// files; tzdata.Parse never produces it for RuleLine.At. Treat it
		// the same as WallClock defensively rather than reject the rule.
		return tzrule.Wall
	default:
		return tzrule.Wall
	}
}

// untilInstant approximates the POSIX instant a continuation line's UNTIL
// column denotes. The tzdata spec says UNTIL is "interpreted using the
// rules in effect just before the transition," which in general requires
// replaying that line's own DST history; this adapter approximates it
// using the line's standard offset only, which is exact for the common
// case (a zone whose previous continuation had no DST) and accurate to
// within the DST savings otherwise.
func untilInstant(line tzdata.ZoneLine) (int64, error) {
	u := line.Until
	year := u.Year
	month := time.January
	day := 1
	var secOfDay int64

	if u.Parts.Has(tzdata.UntilMonth) {
		month = u.Month
	}
	if u.Parts.Has(tzdata.UntilDay) {
		y, m, d := resolveUntilDay(year, month, u.Day)
		year, month, day = y, m, d
	}
	if u.Parts.Has(tzdata.UntilTime) {
		secOfDay = int64(u.Time.Duration / time.Second)
	}

	shift := int32(line.Offset / time.Second)
	return calendarmath.ToPOSIXSeconds(year, month, day, secOfDay) - int64(shift), nil
}

func resolveUntilDay(year int, month time.Month, d tzdata.Day) (int, time.Month, int) {
	switch d.Form {
	case tzdata.DayFormDayNum:
		return year, month, d.Num
	case tzdata.DayFormLast:
		return year, month, calendarmath.LastWeekdayOfMonth(year, month, d.Day)
	case tzdata.DayFormAfter:
		return calendarmath.NextWeekday(year, month, d.Num, d.Day)
	case tzdata.DayFormBefore:
		return calendarmath.PreviousWeekday(year, month, d.Num, d.Day)
	default:
		return year, month, 1
	}
}
