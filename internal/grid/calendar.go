package grid

import (
	"time"

	"lanecal/internal/dateutil"
	"lanecal/internal/drag"
	"lanecal/internal/model"
)

// Options configures a Calendar. Use DefaultOptions as the baseline; the
// zero value of the policy flags is NOT the default policy.
type Options struct {
	// WeekendDisabled makes Saturday/Sunday cells inert for clicks and
	// drags. Default true.
	WeekendDisabled bool

	// DisablePastDates makes days before today inert and pins backward
	// month navigation to the current month. Default true.
	DisablePastDates bool

	// LaneCap is the number of bars rendered per day before "+N more".
	LaneCap int

	// ColorFor resolves display colors for activity bars; optional.
	ColorFor model.ColorFunc

	// Now supplies the current time; injectable for tests.
	Now func() time.Time
}

// DefaultOptions returns the standard policy set: weekends and past dates
// disabled, three visible lanes.
func DefaultOptions() Options {
	return Options{
		WeekendDisabled:  true,
		DisablePastDates: true,
		LaneCap:          DefaultLaneCap,
	}
}

// Callbacks are the events the Calendar hands back to its host. Any of
// them may be nil.
type Callbacks struct {
	// OnDayClick fires for a non-drag single-day interaction on an
	// eligible day.
	OnDayClick func(dayKey string)

	// OnActivityClick fires when an activity bar is the interaction
	// target; the corresponding day click is suppressed.
	OnActivityClick func(model.Activity)

	// OnRangeSelect fires once per completed drag, start <= end, both
	// anchored to local noon.
	OnRangeSelect func(start, end time.Time)
}

// Calendar is the embeddable month view: it owns the visible (year,
// month) cursor, the derived lane map, the current selection and the drag
// state machine, and projects them into cells on demand.
//
// All methods run synchronously on the host's interaction goroutine; the
// lane map is recomputed to completion before any cell projection reads
// it, so no partial layout is ever observable.
type Calendar struct {
	opts Options
	cb   Callbacks

	activities []model.Activity

	year  int
	month time.Month

	selectedKey string

	lanes    LaneMap
	selector *drag.Selector
}

// New builds a Calendar showing the month containing opts.Now(). release
// may be nil when the host has no global release events; drags then
// complete via an explicit PointerUp call.
func New(opts Options, cb Callbacks, release drag.ReleaseSource) *Calendar {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LaneCap <= 0 {
		opts.LaneCap = DefaultLaneCap
	}

	c := &Calendar{opts: opts, cb: cb}

	now := opts.Now()
	c.year, c.month = now.Year(), now.Month()

	c.selector = drag.NewSelector(release, drag.Options{
		WeekendDisabled:  opts.WeekendDisabled,
		DisablePastDates: opts.DisablePastDates,
		Now:              opts.Now,
		OnSelect:         c.rangeSelected,
	})

	c.recompute()
	return c
}

// SetActivities replaces the activity list and rebuilds the lane map.
func (c *Calendar) SetActivities(activities []model.Activity) {
	c.activities = activities
	c.recompute()
}

// Visible returns the currently shown (year, month).
func (c *Calendar) Visible() (int, time.Month) {
	return c.year, c.month
}

// NextMonth navigates forward one month. Any in-flight drag is discarded.
func (c *Calendar) NextMonth() {
	c.selector.Cancel()
	c.year, c.month = NextMonth(c.year, c.month)
	c.recompute()
}

// PrevMonth navigates back one month, clamped at the current month while
// past dates are disabled. Any in-flight drag is discarded.
func (c *Calendar) PrevMonth() {
	c.selector.Cancel()
	c.year, c.month = PrevMonth(c.year, c.month, c.opts.DisablePastDates, c.opts.Now())
	c.recompute()
}

// Tap handles a plain (non-drag) pointer interaction on a day cell. When
// the tap landed on an activity bar the host passes it as hit: the
// activity click fires and the day click is suppressed. Taps on disabled
// days are ignored.
func (c *Calendar) Tap(day time.Time, hit *model.Activity) {
	if hit != nil {
		if c.cb.OnActivityClick != nil {
			c.cb.OnActivityClick(*hit)
		}
		return
	}
	if c.dayDisabled(day) {
		return
	}
	key := dateutil.DayKey(day)
	c.selectedKey = key
	if c.cb.OnDayClick != nil {
		c.cb.OnDayClick(key)
	}
}

// PointerDown starts a drag on day if it is eligible.
func (c *Calendar) PointerDown(day time.Time) {
	c.selector.PointerDown(day)
}

// PointerEnter extends an active drag onto day.
func (c *Calendar) PointerEnter(day time.Time) {
	c.selector.PointerEnter(day)
}

// PointerUp completes an active drag regardless of where the pointer
// ended up. Hosts wired to a ReleaseSource do not need to call this.
func (c *Calendar) PointerUp() {
	c.selector.Release()
}

// Close tears the calendar down, detaching the drag selector from its
// release source.
func (c *Calendar) Close() {
	c.selector.Close()
}

// Grid projects the current state into day cells.
func (c *Calendar) Grid() []Cell {
	opts := CellOptions{
		WeekendDisabled:  c.opts.WeekendDisabled,
		DisablePastDates: c.opts.DisablePastDates,
		LaneCap:          c.opts.LaneCap,
		Today:            c.opts.Now(),
		SelectedKey:      c.selectedKey,
		ColorFor:         c.opts.ColorFor,
	}
	if anchor, current, ok := c.selector.Range(); ok {
		opts.DragAnchor = anchor
		opts.DragCurrent = current
	}
	return BuildGrid(c.year, c.month, c.lanes, opts)
}

func (c *Calendar) rangeSelected(start, end time.Time) {
	c.selectedKey = dateutil.DayKey(start)
	if c.cb.OnRangeSelect != nil {
		c.cb.OnRangeSelect(start, end)
	}
}

func (c *Calendar) recompute() {
	c.lanes = AssignLanes(c.activities, c.year, c.month, c.opts.LaneCap)
}

func (c *Calendar) dayDisabled(day time.Time) bool {
	if c.opts.WeekendDisabled && dateutil.IsWeekend(day) {
		return true
	}
	if c.opts.DisablePastDates && dateutil.IsBeforeDay(day, c.opts.Now()) {
		return true
	}
	return false
}
