package model

import (
	"testing"
	"time"
)

func ts(d, h int) time.Time {
	return time.Date(2026, time.September, d, h, 0, 0, 0, time.Local)
}

func TestEndDayDefaultsToStart(t *testing.T) {
	a := Activity{ID: "a", Start: ts(10, 14)}
	if !a.EndDay().Equal(a.StartDay()) {
		t.Errorf("zero End should collapse to a single day at Start")
	}
	if a.SpanDays() != 1 {
		t.Errorf("SpanDays = %d, want 1", a.SpanDays())
	}
}

func TestMalformedIntervalRecoveredAsSingleDay(t *testing.T) {
	a := Activity{ID: "a", Start: ts(10, 9), End: ts(4, 18)}
	if !a.EndDay().Equal(a.StartDay()) {
		t.Errorf("End before Start should anchor at Start, got %v", a.EndDay())
	}
	if a.Covers(ts(4, 0)) {
		t.Errorf("malformed activity must not cover its bogus end day")
	}
	if !a.Covers(ts(10, 0)) {
		t.Errorf("malformed activity must cover its start day")
	}
}

func TestCoversAcrossZones(t *testing.T) {
	// Same calendar days, wildly different zones: containment must go by
	// date fields, not by instant comparison.
	ahead := time.FixedZone("UTC+14", 14*60*60)
	behind := time.FixedZone("UTC-11", -11*60*60)
	a := Activity{
		ID:    "a",
		Start: time.Date(2026, time.September, 7, 9, 0, 0, 0, ahead),
		End:   time.Date(2026, time.September, 9, 18, 0, 0, 0, ahead),
	}

	for d := 7; d <= 9; d++ {
		probe := time.Date(2026, time.September, d, 0, 0, 0, 0, behind)
		if !a.Covers(probe) {
			t.Errorf("Sep %d (UTC-11) not covered by Sep 7-9 activity (UTC+14)", d)
		}
	}
	if a.Covers(time.Date(2026, time.September, 6, 23, 0, 0, 0, behind)) {
		t.Errorf("day before the span must not be covered")
	}
	if a.Covers(time.Date(2026, time.September, 10, 1, 0, 0, 0, behind)) {
		t.Errorf("day after the span must not be covered")
	}
	if a.SpanDays() != 3 {
		t.Errorf("SpanDays = %d, want 3", a.SpanDays())
	}
}

func TestCoversInclusiveBounds(t *testing.T) {
	a := Activity{ID: "a", Start: ts(10, 23), End: ts(12, 1)}
	tests := []struct {
		day  int
		want bool
	}{
		{9, false},
		{10, true},
		{11, true},
		{12, true},
		{13, false},
	}
	for _, tt := range tests {
		if got := a.Covers(ts(tt.day, 15)); got != tt.want {
			t.Errorf("Covers(Sep %d) = %v, want %v", tt.day, got, tt.want)
		}
	}
	if a.SpanDays() != 3 {
		t.Errorf("SpanDays = %d, want 3", a.SpanDays())
	}
}
