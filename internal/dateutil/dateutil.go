package dateutil

import "time"

// DayKeyLayout is the canonical calendar-day key format (YYYY-MM-DD).
const DayKeyLayout = "2006-01-02"

// DayKey returns the canonical YYYY-MM-DD key for t, derived from t's own
// calendar fields. Two times on the same local day always map to the same
// key regardless of time-of-day.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// TruncateToDay returns t with hour, minute, second and nanosecond zeroed,
// keeping t's location.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NoonOf returns 12:00:00 on t's calendar day in t's location.
//
// Noon is the anchor used when a selected range is handed back to the
// host: serializing midnight to an ISO date can shift a day across
// timezone conversions, noon cannot.
func NoonOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.Location())
}

// DayOf returns t's calendar day as a location-independent value: the
// date fields reconstructed at UTC midnight. Days from timestamps in
// different zones compare correctly through it, where comparing the raw
// instants would not.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsBeforeDay reports whether t's calendar day is strictly before ref's.
// Like SameDay, it compares date fields, not instants, so t and ref may
// carry different zones.
func IsBeforeDay(t, ref time.Time) bool {
	return DayOf(t).Before(DayOf(ref))
}

// MonthDays enumerates every calendar day of the given month, from the 1st
// through the last day, in order. The slice is rebuilt on every call.
func MonthDays(year int, month time.Month) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	// Day 0 of the next month is the last day of this one.
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local)

	days := make([]time.Time, 0, last.Day())
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
