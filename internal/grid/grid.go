package grid

import (
	"time"

	"lanecal/internal/dateutil"
	"lanecal/internal/model"
)

// SlotView is one lane slot of one day cell, ready for rendering.
// A zero SlotView (nil Activity) is an empty placeholder lane.
type SlotView struct {
	Activity *model.Activity

	// Label is the bar text for this day: the activity title on its
	// visual start day, empty on continuation days.
	Label string

	// Color is the host-resolved display color, empty when no ColorFunc
	// is configured.
	Color string

	// IsVisualStart / IsVisualEnd mark whether this day is the activity's
	// true first or last day. They decide which bar edges render rounded
	// versus flush, so a bar crossing a week boundary reads as one strip.
	IsVisualStart bool
	IsVisualEnd   bool
}

// Cell describes one slot of the 7-column month grid: either a leading
// blank or a real day.
type Cell struct {
	Blank bool

	Day int    // 1-based day of month, 0 for blanks
	Key string // YYYY-MM-DD, empty for blanks

	IsToday     bool
	IsSelected  bool
	IsDisabled  bool
	InDragRange bool

	Slots    []SlotView
	Overflow int // activities beyond the lane cap, 0 when none
}

// CellOptions configures a single grid build.
type CellOptions struct {
	WeekendDisabled  bool
	DisablePastDates bool
	LaneCap          int

	// Today anchors the is-today flag and the past-date policy.
	Today time.Time

	// SelectedKey is the day key of the current single-day selection,
	// empty when nothing is selected.
	SelectedKey string

	// DragAnchor / DragCurrent bound the in-flight drag selection. Both
	// zero when no drag is active; order does not matter, the builder
	// normalizes.
	DragAnchor  time.Time
	DragCurrent time.Time

	// ColorFor resolves bar colors; may be nil.
	ColorFor model.ColorFunc
}

// BuildGrid projects a month plus its lane map into an ordered run of day
// cells: leading blanks for the weekday offset of the 1st, then one cell
// per calendar day. It performs no mutation of its inputs.
func BuildGrid(year int, month time.Month, lanes LaneMap, opts CellOptions) []Cell {
	if opts.LaneCap <= 0 {
		opts.LaneCap = DefaultLaneCap
	}

	days := dateutil.MonthDays(year, month)
	if len(days) == 0 {
		return nil
	}

	dragLo, dragHi, dragging := normalizeDrag(opts.DragAnchor, opts.DragCurrent)

	cells := make([]Cell, 0, int(days[0].Weekday())+len(days))
	for i := 0; i < int(days[0].Weekday()); i++ {
		cells = append(cells, Cell{Blank: true})
	}

	for _, day := range days {
		key := dateutil.DayKey(day)
		dl := lanes[key]

		cell := Cell{
			Day:        day.Day(),
			Key:        key,
			IsToday:    dateutil.SameDay(day, opts.Today),
			IsSelected: key == opts.SelectedKey,
			IsDisabled: dayDisabled(day, opts),
			Slots:      buildSlotViews(day, dl.Slots, opts.ColorFor),
		}
		if dragging && !day.Before(dragLo) && !day.After(dragHi) {
			cell.InDragRange = true
		}
		if over := dl.Covering - opts.LaneCap; over > 0 {
			cell.Overflow = over
		}
		cells = append(cells, cell)
	}

	return cells
}

func buildSlotViews(day time.Time, slots []*model.Activity, colorFor model.ColorFunc) []SlotView {
	if len(slots) == 0 {
		return nil
	}
	views := make([]SlotView, len(slots))
	for i, a := range slots {
		if a == nil {
			continue
		}
		v := SlotView{
			Activity:      a,
			IsVisualStart: dateutil.SameDay(day, a.StartDay()),
			IsVisualEnd:   dateutil.SameDay(day, a.EndDay()),
		}
		if v.IsVisualStart {
			v.Label = a.Title
		}
		if colorFor != nil {
			v.Color = colorFor(*a)
		}
		views[i] = v
	}
	return views
}

func dayDisabled(day time.Time, opts CellOptions) bool {
	if opts.WeekendDisabled && dateutil.IsWeekend(day) {
		return true
	}
	if opts.DisablePastDates && dateutil.IsBeforeDay(day, opts.Today) {
		return true
	}
	return false
}

func normalizeDrag(anchor, current time.Time) (lo, hi time.Time, ok bool) {
	if anchor.IsZero() || current.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	lo = dateutil.TruncateToDay(anchor)
	hi = dateutil.TruncateToDay(current)
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	return lo, hi, true
}
