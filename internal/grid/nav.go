package grid

import "time"

// NextMonth steps the visible (year, month) pair forward one month,
// wrapping December into January of the next year.
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// PrevMonth steps the visible (year, month) pair back one month, wrapping
// January into December of the previous year.
//
// When floorAtNow is set and the visible month is the month containing
// now, the input is returned unchanged: with past dates disabled there is
// nothing selectable behind the current month, so backward navigation
// clamps instead of erroring.
func PrevMonth(year int, month time.Month, floorAtNow bool, now time.Time) (int, time.Month) {
	if floorAtNow && year == now.Year() && month == now.Month() {
		return year, month
	}
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
