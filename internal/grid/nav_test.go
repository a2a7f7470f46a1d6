package grid

import (
	"testing"
	"time"
)

func TestNextMonthWrapsYear(t *testing.T) {
	tests := []struct {
		year      int
		month     time.Month
		wantYear  int
		wantMonth time.Month
	}{
		{2026, time.March, 2026, time.April},
		{2026, time.December, 2027, time.January},
	}
	for _, tt := range tests {
		y, m := NextMonth(tt.year, tt.month)
		if y != tt.wantYear || m != tt.wantMonth {
			t.Errorf("NextMonth(%d, %v) = (%d, %v), want (%d, %v)",
				tt.year, tt.month, y, m, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestPrevMonthWrapsYear(t *testing.T) {
	now := day(2020, time.January, 1)
	y, m := PrevMonth(2026, time.January, false, now)
	if y != 2025 || m != time.December {
		t.Errorf("PrevMonth(2026, January) = (%d, %v), want (2025, December)", y, m)
	}
}

func TestPrevMonthFloorsAtCurrentMonth(t *testing.T) {
	now := day(2026, time.September, 15)

	y, m := PrevMonth(2026, time.September, true, now)
	if y != 2026 || m != time.September {
		t.Errorf("floored PrevMonth moved to (%d, %v), want clamp at current month", y, m)
	}

	// A future month still steps back normally.
	y, m = PrevMonth(2026, time.October, true, now)
	if y != 2026 || m != time.September {
		t.Errorf("PrevMonth from future month = (%d, %v), want (2026, September)", y, m)
	}

	// Without the floor the same call steps back.
	y, m = PrevMonth(2026, time.September, false, now)
	if y != 2026 || m != time.August {
		t.Errorf("unfloored PrevMonth = (%d, %v), want (2026, August)", y, m)
	}
}
