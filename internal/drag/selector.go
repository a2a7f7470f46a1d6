// Package drag implements the press-drag-release state machine that turns
// pointer movement over day cells into a normalized date range.
package drag

import (
	"time"

	"lanecal/internal/dateutil"
)

// ReleaseSource is the host capability "tell me about a pointer release
// anywhere on the interaction surface, not just inside this widget".
// SubscribeRelease registers fn and returns the matching unsubscribe; the
// selector acquires a subscription when a drag starts and always releases
// it, so a drag ending outside the calendar still completes.
type ReleaseSource interface {
	SubscribeRelease(fn func()) (unsubscribe func())
}

// Options configures a Selector.
type Options struct {
	// WeekendDisabled blocks Saturdays and Sundays from starting a drag.
	WeekendDisabled bool

	// DisablePastDates blocks days before today from starting a drag.
	DisablePastDates bool

	// Now supplies the current time for the past-date policy; defaults to
	// time.Now.
	Now func() time.Time

	// OnSelect receives the completed range, start <= end, both anchored
	// to local noon of their day.
	OnSelect func(start, end time.Time)
}

// Selector tracks one in-flight drag. It is not safe for concurrent use;
// the host drives it from its single interaction goroutine, mirroring the
// event-driven UI it models.
type Selector struct {
	opts   Options
	source ReleaseSource

	anchor  time.Time
	current time.Time
	active  bool

	unsubscribe func()
	closed      bool
}

// NewSelector builds a Selector over the given release source. source may
// be nil, in which case the host must call Release itself.
func NewSelector(source ReleaseSource, opts Options) *Selector {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Selector{opts: opts, source: source}
}

// PointerDown begins a drag anchored at day. A press on an ineligible day
// (weekend or past date, per options) is a no-op and the selector keeps
// its current state; the return value reports whether a drag started.
//
// A press while a drag is already in flight discards the old drag without
// emitting and starts the new one. Releases can get lost (the pointer-up
// happened while the surface wasn't delivering), and a fresh press is the
// recovery path out of a wedged drag.
func (s *Selector) PointerDown(day time.Time) bool {
	if s.closed || s.dayBlocked(day) {
		return false
	}
	if s.active {
		s.reset()
	}
	d := dateutil.TruncateToDay(day)
	s.anchor = d
	s.current = d
	s.active = true
	if s.source != nil {
		s.unsubscribe = s.source.SubscribeRelease(s.Release)
	}
	return true
}

// PointerEnter extends the active drag to day. Re-entering the anchor day
// collapses the range back to a single day. Ignored while idle.
func (s *Selector) PointerEnter(day time.Time) {
	if !s.active {
		return
	}
	s.current = dateutil.TruncateToDay(day)
}

// Release completes the drag wherever the pointer ended up: the range is
// normalized so start <= end, anchored to noon, emitted once, and the
// selector returns to idle. A release with no drag in flight is a no-op.
func (s *Selector) Release() {
	if !s.active {
		return
	}

	lo, hi := s.anchor, s.current
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	emit := s.opts.OnSelect

	s.reset()

	if emit != nil {
		emit(dateutil.NoonOf(lo), dateutil.NoonOf(hi))
	}
}

// Cancel discards any in-flight drag without emitting. Used when the view
// changes under the pointer, e.g. on month navigation.
func (s *Selector) Cancel() {
	s.reset()
}

// Close cancels any in-flight drag and detaches from the release source
// for good. The selector ignores all input afterwards. Hosts call this on
// teardown so no release handler outlives the component that owns it.
func (s *Selector) Close() {
	s.reset()
	s.closed = true
}

// Active reports whether a drag is in flight.
func (s *Selector) Active() bool {
	return s.active
}

// Range returns the current anchor and pointer day of the in-flight drag;
// ok is false while idle.
func (s *Selector) Range() (anchor, current time.Time, ok bool) {
	if !s.active {
		return time.Time{}, time.Time{}, false
	}
	return s.anchor, s.current, true
}

func (s *Selector) reset() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.anchor = time.Time{}
	s.current = time.Time{}
	s.active = false
}

func (s *Selector) dayBlocked(day time.Time) bool {
	if s.opts.WeekendDisabled && dateutil.IsWeekend(day) {
		return true
	}
	if s.opts.DisablePastDates && dateutil.IsBeforeDay(day, s.opts.Now()) {
		return true
	}
	return false
}
