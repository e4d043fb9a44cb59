package tzrule

import "testing"

func TestZonalTransition_IsGapIsOverlap(t *testing.T) {
	tests := []struct {
		name        string
		t           ZonalTransition
		wantGap     bool
		wantOverlap bool
	}{
		{"spring forward", ZonalTransition{PreviousOffset: 3600, TotalOffset: 7200}, true, false},
		{"fall back", ZonalTransition{PreviousOffset: 7200, TotalOffset: 3600}, false, true},
		{"no change", ZonalTransition{PreviousOffset: 3600, TotalOffset: 3600}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.t.IsGap(); got != tt.wantGap {
				t.Errorf("IsGap() = %v, want %v", got, tt.wantGap)
			}
			if got := tt.t.IsOverlap(); got != tt.wantOverlap {
				t.Errorf("IsOverlap() = %v, want %v", got, tt.wantOverlap)
			}
		})
	}
}

func TestRulesForever(t *testing.T) {
	i := RulesForever(3600)
	if !i.Forever() {
		t.Error("Forever() = false, want true")
	}
	if _, ok := i.PosixTime(); ok {
		t.Error("PosixTime() ok = true, want false")
	}
	if got := i.StandardOffset(); got != 3600 {
		t.Errorf("StandardOffset() = %d, want 3600", got)
	}
}

func TestStartingAt(t *testing.T) {
	i := StartingAt(1000, 3600)
	if i.Forever() {
		t.Error("Forever() = true, want false")
	}
	posixTime, ok := i.PosixTime()
	if !ok {
		t.Fatal("PosixTime() ok = false, want true")
	}
	if posixTime != 1000 {
		t.Errorf("PosixTime() = %d, want 1000", posixTime)
	}

	got := i.AsTransition()
	want := ZonalTransition{PosixTime: 1000, PreviousOffset: 3600, TotalOffset: 3600, DSTSavings: 0}
	if got != want {
		t.Errorf("AsTransition() = %+v, want %+v", got, want)
	}
}
