// Package source turns subscribed ICS feeds into the activity records the
// layout engine consumes.
package source

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	applog "lanecal/internal/log"
)

// Source identifies one subscribed ICS feed.
type Source struct {
	// ID prefixes synthesized activity IDs and appears in logs.
	ID string
	// URL is the ICS endpoint.
	URL string
	// Category, when set, overrides the category key of every event from
	// this feed.
	Category string
}

// Event is a normalized VEVENT before recurrence expansion.
type Event struct {
	Source Source

	UID      string
	Title    string
	Category string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule string
	ExDates  []time.Time
}

// Parse parses one ICS payload into events. Individual malformed VEVENTs
// are logged and skipped; the payload as a whole only fails when it is not
// a calendar at all.
func Parse(src Source, body []byte) ([]Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, perr := parseEvent(src, ve)
		if perr != nil {
			applog.Warn("source: skipping vevent", "id", src.ID, "reason", perr.Error())
			continue
		}
		events = append(events, ev)
	}

	applog.Debug("source: parsed feed", "id", src.ID, "events", len(events))
	return events, nil
}

func parseEvent(src Source, ve *ical.VEvent) (Event, error) {
	ev := Event{Source: src}

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil && p.Value != "" {
		ev.UID = p.Value
	} else {
		// Feeds without UIDs still need stable-enough activity IDs.
		ev.UID = uuid.NewString()
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Title = p.Value
	}
	if ev.Title == "" {
		ev.Title = "(untitled)"
	}

	ev.Category = src.Category
	if ev.Category == "" {
		// Raw property name; the library's constant set varies between
		// versions.
		if p := ve.GetProperty("CATEGORIES"); p != nil {
			// Multiple categories may be comma-joined; the first one wins.
			ev.Category = strings.TrimSpace(strings.SplitN(p.Value, ",", 2)[0])
		}
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return ev, errors.New("missing or unparsable DTSTART")
	}
	end, err := ve.GetEndAt()
	if err != nil {
		end = start
	}
	ev.Start = start
	ev.End = end

	// All-day detection: VALUE=DATE parameter or a date-only DTSTART.
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			ev.AllDay = true
		}
		if !strings.Contains(p.Value, "T") {
			ev.AllDay = true
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		ev.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, perr := parseStamp(part); perr == nil {
				ev.ExDates = append(ev.ExDates, t)
			}
		}
	}

	return ev, nil
}

// parseStamp parses the basic ICS date / date-time / UTC forms used by
// EXDATE values.
func parseStamp(v string) (time.Time, error) {
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, time.Local)
	default:
		return time.ParseInLocation("20060102", v, time.Local)
	}
}
