package source

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"lanecal/internal/dateutil"
	applog "lanecal/internal/log"
	"lanecal/internal/model"
)

const defaultMaxPerEvent = 1000

// ExpandOptions controls how events become activities.
type ExpandOptions struct {
	// Location is the display timezone; nil means time.Local.
	Location *time.Location

	// RangeStart / RangeEnd bound the occurrence window, inclusive.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxPerEvent caps recurrence expansion per event; zero means
	// defaultMaxPerEvent.
	MaxPerEvent int
}

// Expand turns parsed events into activity records: plain events pass
// through when they intersect the window, recurring events are expanded
// via their RRULE with EXDATEs removed. Recurring instances get an ID of
// the form "<uid>@<start-day>" so every occurrence stays distinct.
func Expand(events []Event, opts ExpandOptions) ([]model.Activity, error) {
	if opts.RangeEnd.Before(opts.RangeStart) {
		return nil, errors.New("expand: range end precedes range start")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.MaxPerEvent <= 0 {
		opts.MaxPerEvent = defaultMaxPerEvent
	}

	var out []model.Activity
	for _, ev := range events {
		if ev.RawRRule == "" {
			if intervalsOverlap(ev.Start, ev.End, opts.RangeStart, opts.RangeEnd) {
				out = append(out, toActivity(ev, ev.Start, ev.End, opts.Location, false))
			}
			continue
		}
		out = append(out, expandRecurring(ev, opts)...)
	}
	return out, nil
}

func expandRecurring(ev Event, opts ExpandOptions) []model.Activity {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		applog.Warn("source: unparsable RRULE, keeping base event only",
			"uid", ev.UID, "rrule", ev.RawRRule)
		if intervalsOverlap(ev.Start, ev.End, opts.RangeStart, opts.RangeEnd) {
			return []model.Activity{toActivity(ev, ev.Start, ev.End, opts.Location, false)}
		}
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	starts := set.Between(
		opts.RangeStart.In(ev.Start.Location()),
		opts.RangeEnd.In(ev.Start.Location()),
		true,
	)
	if len(starts) > opts.MaxPerEvent {
		applog.Warn("source: recurrence expansion capped",
			"uid", ev.UID, "cap", opts.MaxPerEvent, "total", len(starts))
		starts = starts[:opts.MaxPerEvent]
	}

	dur := ev.End.Sub(ev.Start)
	acts := make([]model.Activity, 0, len(starts))
	for _, s := range starts {
		acts = append(acts, toActivity(ev, s, s.Add(dur), opts.Location, true))
	}
	return acts
}

func toActivity(ev Event, start, end time.Time, loc *time.Location, recurring bool) model.Activity {
	start = start.In(loc)
	end = end.In(loc)

	// ICS ends are exclusive: an all-day event covering one day carries
	// DTEND of the next morning, and a timed event may end exactly at
	// midnight. Pull such ends back so the activity's last covered day is
	// the day the event actually finishes on.
	if end.After(start) {
		if ev.AllDay {
			end = end.AddDate(0, 0, -1)
		} else if end.Equal(dateutil.TruncateToDay(end)) {
			end = end.Add(-time.Second)
		}
	}

	id := ev.UID
	if recurring {
		id = fmt.Sprintf("%s@%s", ev.UID, dateutil.DayKey(start))
	}
	if ev.Source.ID != "" {
		id = ev.Source.ID + "/" + id
	}

	return model.Activity{
		ID:       id,
		Title:    ev.Title,
		Category: ev.Category,
		Start:    start,
		End:      end,
	}
}

func intervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(aStart) {
		aEnd = aStart
	}
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
