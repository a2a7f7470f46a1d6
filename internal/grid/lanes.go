package grid

import (
	"sort"
	"time"

	"lanecal/internal/dateutil"
	"lanecal/internal/model"
)

// DefaultLaneCap is the number of lanes rendered per day before the
// remaining activities collapse into the overflow count.
const DefaultLaneCap = 3

// DayLanes holds the computed lane layout for one calendar day.
type DayLanes struct {
	// Slots is the ordered list of visible lanes. A nil entry is an empty
	// placeholder left behind by a finished activity; it keeps later lanes
	// from shifting down so bars stay row-aligned day-to-day.
	Slots []*model.Activity

	// Covering is the uncapped count of activities covering this day,
	// including those beyond the visible lanes.
	Covering int
}

// LaneMap maps a YYYY-MM-DD day key to that day's lane layout.
type LaneMap map[string]DayLanes

// AssignLanes sweeps the given month day by day and assigns each covering
// activity a lane index that stays fixed for the activity's whole span.
//
// The sweep carries a scratch map of activityID -> lane between days: an
// activity that held lane k yesterday keeps lane k today. Activities that
// start today claim the lowest lane not in use today, longest span first,
// ties broken by input order. Lanes are never compacted; a lane freed by a
// finished activity is reused only by a new arrival.
//
// Only lanes below laneCap appear in Slots. Activities pushed past the cap
// still hold their lane (and still count toward Covering) so they rejoin
// the visible rows without jumping once earlier lanes free up.
func AssignLanes(activities []model.Activity, year int, month time.Month, laneCap int) LaneMap {
	if laneCap <= 0 {
		laneCap = DefaultLaneCap
	}

	lanes := make(LaneMap)
	active := make(map[string]int) // activityID -> lane, carried across days

	for _, day := range dateutil.MonthDays(year, month) {
		covering := coveringOn(activities, day)

		// Drop activities whose span ended before today.
		present := make(map[string]bool, len(covering))
		for _, a := range covering {
			present[a.ID] = true
		}
		for id := range active {
			if !present[id] {
				delete(active, id)
			}
		}

		carried, fresh := splitCarried(covering, active)

		used := make(map[int]bool, len(covering))
		for _, a := range carried {
			used[active[a.ID]] = true
		}
		for _, a := range fresh {
			lane := 0
			for used[lane] {
				lane++
			}
			active[a.ID] = lane
			used[lane] = true
		}

		lanes[dateutil.DayKey(day)] = DayLanes{
			Slots:    buildSlots(covering, active, laneCap),
			Covering: len(covering),
		}
	}

	return lanes
}

// coveringOn returns the activities covering the given day, preserving
// input order.
func coveringOn(activities []model.Activity, day time.Time) []model.Activity {
	var out []model.Activity
	for _, a := range activities {
		if a.Covers(day) {
			out = append(out, a)
		}
	}
	return out
}

// splitCarried partitions today's covering activities into those already
// holding a lane (ordered by lane ascending) and new arrivals (ordered by
// span length descending, input order on ties).
func splitCarried(covering []model.Activity, active map[string]int) (carried, fresh []model.Activity) {
	for _, a := range covering {
		if _, ok := active[a.ID]; ok {
			carried = append(carried, a)
		} else {
			fresh = append(fresh, a)
		}
	}
	sort.SliceStable(carried, func(i, j int) bool {
		return active[carried[i].ID] < active[carried[j].ID]
	})
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].SpanDays() > fresh[j].SpanDays()
	})
	return carried, fresh
}

// buildSlots lays today's activities into their lanes, padding skipped
// lanes with nil and trimming everything at the cap.
func buildSlots(covering []model.Activity, active map[string]int, laneCap int) []*model.Activity {
	highest := -1
	for _, a := range covering {
		if lane := active[a.ID]; lane < laneCap && lane > highest {
			highest = lane
		}
	}
	if highest < 0 {
		return nil
	}

	slots := make([]*model.Activity, highest+1)
	for i := range covering {
		a := covering[i]
		if lane := active[a.ID]; lane < laneCap {
			slots[lane] = &a
		}
	}
	return slots
}
