package tzdata2rule

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tzcore/tzrule"
	"github.com/tzcore/tzrule/tzdata"
)

func parse(t *testing.T, src string) tzdata.File {
	t.Helper()
	f, err := tzdata.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("tzdata.Parse() error: %v", err)
	}
	return f
}

func TestBuild_namedRuleSet(t *testing.T) {
	const src = `
Rule EU 1981 max - Mar lastSun 1:00u 1:00 S
Rule EU 1996 max - Oct lastSun 1:00u 0 -

Zone Europe/Testland 1:00 EU CE%sT
`
	f := parse(t, src)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m, err := Build(f, "Europe/Testland", now, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if m.StandardOffset() != 3600 {
		t.Errorf("StandardOffset() = %d, want 3600", m.StandardOffset())
	}
	if !m.Initial().Forever() {
		t.Error("Initial().Forever() = false, want true (single continuation line)")
	}
	if got := len(m.Rules()); got != 2 {
		t.Fatalf("len(Rules()) = %d, want 2", got)
	}
	if m.Rules()[0].Date(2000).Month != time.March {
		t.Errorf("Rules()[0] fires in %v, want March", m.Rules()[0].Date(2000).Month)
	}
}

func TestBuild_standardOnlyZone(t *testing.T) {
	const src = `
Zone Etc/Teststandard 2:00 - TST
`
	f := parse(t, src)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m, err := Build(f, "Etc/Teststandard", now, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if m.StandardOffset() != 7200 {
		t.Errorf("StandardOffset() = %d, want 7200", m.StandardOffset())
	}
	next := m.NextTransition(now.Unix())
	if next.TotalOffset != 7200 || next.PreviousOffset != 7200 {
		t.Errorf("standing rule pair offsets = (%d, %d), want (7200, 7200)", next.PreviousOffset, next.TotalOffset)
	}
}

func TestBuild_multipleContinuationLines(t *testing.T) {
	const src = `
Rule EU 1981 max - Mar lastSun 1:00u 1:00 S
Rule EU 1996 max - Oct lastSun 1:00u 0 -

Zone Europe/Testland 0:00 - LMT 1980 Jan 1 0:00
                      1:00 EU CE%sT
`
	f := parse(t, src)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m, err := Build(f, "Europe/Testland", now, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if m.Initial().Forever() {
		t.Error("Initial().Forever() = true, want false (zone has a pre-1980 LMT era)")
	}
	boundary, ok := m.Initial().PosixTime()
	if !ok {
		t.Fatal("Initial().PosixTime() ok = false, want true")
	}
	want := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	if boundary != want {
		t.Errorf("Initial().PosixTime() = %d, want %d", boundary, want)
	}
}

func TestBuild_resolvesLinkAlias(t *testing.T) {
	const src = `
Rule EU 1981 max - Mar lastSun 1:00u 1:00 S
Rule EU 1996 max - Oct lastSun 1:00u 0 -

Zone Europe/Testland 1:00 EU CE%sT
Link Europe/Testland Europe/Aliastown
`
	f := parse(t, src)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m, err := Build(f, "Europe/Aliastown", now, nil)
	if err != nil {
		t.Fatalf("Build() for a linked alias: error: %v", err)
	}
	if m.StandardOffset() != 3600 {
		t.Errorf("StandardOffset() = %d, want 3600", m.StandardOffset())
	}
}

func TestBuild_rejectsLinkCycle(t *testing.T) {
	const src = `
Link Europe/A Europe/B
Link Europe/B Europe/A
`
	f := parse(t, src)
	if _, err := Build(f, "Europe/A", time.Now(), nil); err == nil {
		t.Fatal("Build() on a link cycle: want error, got nil")
	}
}

func TestBuild_unknownZone(t *testing.T) {
	f := parse(t, "Zone Etc/Teststandard 2:00 - TST\n")
	if _, err := Build(f, "Nowhere/Land", time.Now(), nil); err == nil {
		t.Fatal("Build() for an unknown zone: want error, got nil")
	}
}

func TestBuild_finalContinuationWithUntilRejected(t *testing.T) {
	const src = `
Rule EU 1981 max - Mar lastSun 1:00u 1:00 S
Rule EU 1996 max - Oct lastSun 1:00u 0 -

Zone Europe/Testland 0:00 - LMT 1980 Jan 1 0:00
                      1:00 EU CE%sT 2030 Jan 1 0:00
`
	f := parse(t, src)
	if _, err := Build(f, "Europe/Testland", time.Now(), nil); err == nil {
		t.Fatal("Build() on a zone whose last continuation line has an UNTIL: want error, got nil")
	}
}

func TestBuild_noIndefiniteTailRules(t *testing.T) {
	const src = `
Rule Historical 1981 1995 - Mar lastSun 1:00u 1:00 S
Rule Historical 1981 1995 - Oct lastSun 1:00u 0 -

Zone Europe/Testland 1:00 Historical CE%sT
`
	f := parse(t, src)
	if _, err := Build(f, "Europe/Testland", time.Now(), nil); err == nil {
		t.Fatal("Build() with no TO=max rules left in the set: want error, got nil")
	}
}

func TestBuild_unsupportedRulesForm(t *testing.T) {
	const src = `
Zone Etc/Testoffset 1:00 1:30 TST
`
	f := parse(t, src)
	if _, err := Build(f, "Etc/Testoffset", time.Now(), nil); err == nil {
		t.Fatal("Build() with a numeric RULES field (ZoneRulesTime): want error, got nil")
	}
}

func TestConvertIndicator(t *testing.T) {
	tests := []struct {
		form tzdata.TimeForm
		want tzrule.Indicator
	}{
		{tzdata.UniversalTime, tzrule.UTC},
		{tzdata.StandardTime, tzrule.Standard},
		{tzdata.WallClock, tzrule.Wall},
	}
	for _, tt := range tests {
		if got := convertIndicator(tt.form); got != tt.want {
			t.Errorf("convertIndicator(%v) = %v, want %v", tt.form, got, tt.want)
		}
	}
}

func TestBuild_propagatesConstructionErrors(t *testing.T) {
	// A single rule for the whole set can never satisfy tzrule's minimum
	// rule count; Build must surface that as-is rather than swallowing it.
	const src = `
Rule Solo 1981 max - Mar lastSun 1:00u 1:00 S

Zone Europe/Testland 1:00 Solo CE%sT
`
	f := parse(t, src)
	_, err := Build(f, "Europe/Testland", time.Now(), nil)
	if !errors.Is(err, tzrule.ErrInvalidRules) {
		t.Fatalf("Build() error = %v, want wrapping tzrule.ErrInvalidRules", err)
	}
}
