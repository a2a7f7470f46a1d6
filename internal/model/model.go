package model

import (
	"time"

	"lanecal/internal/dateutil"
)

// Activity is a single marketing activity as supplied by the host.
// The engine reads it but never mutates or persists it.
type Activity struct {
	// ID is an opaque unique identifier.
	ID string

	// Title is the display string shown on the activity's start day.
	Title string

	// Category is an opaque key the host resolves to a display color;
	// the engine never interprets it.
	Category string

	// Start / End bound the activity. End may be the zero value, which
	// means a single-day activity anchored at Start. Time-of-day is
	// ignored for all layout decisions.
	Start time.Time
	End   time.Time
}

// StartDay returns the activity's start truncated to day granularity.
func (a Activity) StartDay() time.Time {
	return dateutil.TruncateToDay(a.Start)
}

// EndDay returns the activity's end truncated to day granularity.
//
// A zero End, or an End that falls before Start once truncated, collapses
// the activity to a single day anchored at Start; malformed intervals are
// recovered here rather than rejected.
func (a Activity) EndDay() time.Time {
	start := a.StartDay()
	if a.End.IsZero() {
		return start
	}
	end := dateutil.TruncateToDay(a.End)
	if end.Before(start) {
		return start
	}
	return end
}

// Covers reports whether the activity's day interval contains the given
// day, inclusive on both ends. Containment compares calendar-day fields,
// never instants, so the activity's zone and the grid's zone may differ.
func (a Activity) Covers(day time.Time) bool {
	d := dateutil.DayOf(day)
	return !d.Before(dateutil.DayOf(a.StartDay())) && !d.After(dateutil.DayOf(a.EndDay()))
}

// SpanDays returns the number of calendar days the activity covers,
// at least 1. The difference is computed on UTC reconstructions of the
// day fields so DST transitions cannot skew the count.
func (a Activity) SpanDays() int {
	return int(dateutil.DayOf(a.EndDay()).Sub(dateutil.DayOf(a.StartDay()))/(24*time.Hour)) + 1
}

// ColorFunc resolves a display color for an activity. The host supplies
// one; the engine carries the result into grid cells without looking at it.
type ColorFunc func(Activity) string
