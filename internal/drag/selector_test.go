package drag

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	// September 2026: the 7th is a Monday, the 5th a Saturday.
	return time.Date(2026, time.September, d, 0, 0, 0, 0, time.Local)
}

func fixedNow() time.Time { return day(1) }

type captured struct {
	start, end time.Time
	count      int
}

func newTestSelector(src ReleaseSource, weekendDisabled, disablePast bool) (*Selector, *captured) {
	got := &captured{}
	s := NewSelector(src, Options{
		WeekendDisabled:  weekendDisabled,
		DisablePastDates: disablePast,
		Now:              fixedNow,
		OnSelect: func(start, end time.Time) {
			got.start, got.end = start, end
			got.count++
		},
	})
	return s, got
}

func TestNormalizationIdempotence(t *testing.T) {
	// Dragging 10 -> 15 and 15 -> 10 must emit the identical pair.
	runDrag := func(from, to int) (time.Time, time.Time) {
		s, got := newTestSelector(nil, false, false)
		s.PointerDown(day(from))
		s.PointerEnter(day(to))
		s.Release()
		if got.count != 1 {
			t.Fatalf("emitted %d times, want 1", got.count)
		}
		return got.start, got.end
	}

	s1, e1 := runDrag(10, 15)
	s2, e2 := runDrag(15, 10)
	if !s1.Equal(s2) || !e1.Equal(e2) {
		t.Errorf("forward drag (%v, %v) != backward drag (%v, %v)", s1, e1, s2, e2)
	}
	if s1.Day() != 10 || e1.Day() != 15 {
		t.Errorf("range = (%d, %d), want (10, 15)", s1.Day(), e1.Day())
	}
}

func TestEmittedRangeAnchoredAtNoon(t *testing.T) {
	s, got := newTestSelector(nil, false, false)
	s.PointerDown(day(10))
	s.Release()

	if got.start.Hour() != 12 || got.end.Hour() != 12 {
		t.Errorf("range not noon-anchored: start %v, end %v", got.start, got.end)
	}
}

func TestWeekendBlockedFromStartingDrag(t *testing.T) {
	s, got := newTestSelector(nil, true, false)

	if s.PointerDown(day(5)) { // Saturday
		t.Fatalf("drag started on a disabled Saturday")
	}
	if s.Active() {
		t.Fatalf("selector left idle state")
	}
	s.Release()
	if got.count != 0 {
		t.Errorf("release after blocked press emitted %d ranges, want 0", got.count)
	}
}

func TestPastDateBlockedFromStartingDrag(t *testing.T) {
	s, _ := newTestSelector(nil, false, true)
	past := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.Local)
	if s.PointerDown(past) {
		t.Fatalf("drag started on a past day")
	}
	// A later press on an eligible day starts normally.
	if !s.PointerDown(day(10)) {
		t.Fatalf("eligible day refused a drag")
	}
}

func TestSingleDayCollapse(t *testing.T) {
	s, got := newTestSelector(nil, false, false)
	s.PointerDown(day(8))
	s.Release()

	if got.count != 1 {
		t.Fatalf("emitted %d times, want 1", got.count)
	}
	if !got.start.Equal(got.end) {
		t.Errorf("single-day drag emitted (%v, %v), want equal start/end", got.start, got.end)
	}
}

func TestReenteringAnchorCollapsesRange(t *testing.T) {
	s, got := newTestSelector(nil, false, false)
	s.PointerDown(day(8))
	s.PointerEnter(day(12))
	s.PointerEnter(day(8))
	s.Release()

	if !got.start.Equal(got.end) || got.start.Day() != 8 {
		t.Errorf("re-entering the anchor should collapse to a single day, got (%v, %v)",
			got.start, got.end)
	}
}

func TestReleaseWithoutDragIsNoop(t *testing.T) {
	s, got := newTestSelector(nil, false, false)
	s.Release()
	if got.count != 0 {
		t.Errorf("idle release emitted %d ranges", got.count)
	}
}

func TestReleaseViaSurfaceCompletesDrag(t *testing.T) {
	surface := NewSurface()
	s, got := newTestSelector(surface, false, false)

	s.PointerDown(day(8))
	s.PointerEnter(day(10))
	if surface.Len() != 1 {
		t.Fatalf("drag did not subscribe to the release source")
	}

	// Pointer released outside the grid: the surface still reports it.
	surface.NotifyRelease()

	if got.count != 1 {
		t.Fatalf("surface release emitted %d ranges, want 1", got.count)
	}
	if s.Active() {
		t.Errorf("selector still active after release")
	}
	if surface.Len() != 0 {
		t.Errorf("release subscription leaked")
	}
}

func TestCancelDiscardsWithoutEmitting(t *testing.T) {
	surface := NewSurface()
	s, got := newTestSelector(surface, false, false)

	s.PointerDown(day(8))
	s.Cancel()

	if got.count != 0 {
		t.Errorf("cancel emitted a range")
	}
	if surface.Len() != 0 {
		t.Errorf("cancel left the release subscription behind")
	}
	surface.NotifyRelease() // must be a no-op now
	if got.count != 0 {
		t.Errorf("stale release handler fired after cancel")
	}
}

func TestCloseDetachesForGood(t *testing.T) {
	surface := NewSurface()
	s, got := newTestSelector(surface, false, false)

	s.PointerDown(day(8))
	s.Close()

	if surface.Len() != 0 {
		t.Errorf("close left a dangling release handler")
	}
	if s.PointerDown(day(9)) {
		t.Errorf("closed selector accepted input")
	}
	if got.count != 0 {
		t.Errorf("close emitted a range")
	}
}

func TestNewPressDiscardsInFlightDrag(t *testing.T) {
	surface := NewSurface()
	s, got := newTestSelector(surface, false, false)

	// The release for the first drag never arrives; a fresh press must
	// recover by dropping the stale drag and starting over.
	s.PointerDown(day(8))
	s.PointerEnter(day(12))
	if !s.PointerDown(day(10)) {
		t.Fatalf("press during an active drag did not start a new one")
	}

	if got.count != 0 {
		t.Errorf("discarded drag emitted a range")
	}
	anchor, _, ok := s.Range()
	if !ok || anchor.Day() != 10 {
		t.Errorf("anchor = %d, want fresh anchor 10", anchor.Day())
	}
	if surface.Len() != 1 {
		t.Errorf("subscriptions = %d, want exactly the new drag's", surface.Len())
	}

	s.Release()
	if got.count != 1 || got.start.Day() != 10 || got.end.Day() != 10 {
		t.Errorf("new drag emitted (%d, %d) x%d, want single-day 10",
			got.start.Day(), got.end.Day(), got.count)
	}

	// A press on a blocked day must not disturb an in-flight drag.
	s2, _ := newTestSelector(nil, true, false)
	s2.PointerDown(day(8))
	if s2.PointerDown(day(5)) { // Saturday
		t.Fatalf("blocked day started a drag")
	}
	if anchor, _, ok := s2.Range(); !ok || anchor.Day() != 8 {
		t.Errorf("blocked press disturbed the active drag")
	}
}
