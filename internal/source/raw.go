// Package source discovers calendars and fetches their events for a week
// window, normalizing raw API payloads into typed event records. Transport
// backends implement the Client interface; the adapter owns discovery
// caching, concurrent fan-out and removed-calendar recovery.
package source

import (
	"strings"
	"time"

	"github.com/tartampluch/weekgrid/internal/color"
	"github.com/tartampluch/weekgrid/internal/event"
)

// Descriptor identifies a discovered calendar.
type Descriptor struct {
	EntityID    string `json:"entity_id"`
	DisplayName string `json:"name"`
}

// RawTime is the wire form of an event boundary: either a date-only value
// or a full timestamp, never both.
type RawTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
}

// RawEvent is the wire record shape delivered by event-source backends.
type RawEvent struct {
	Summary     string  `json:"summary,omitempty"`
	Start       RawTime `json:"start"`
	End         RawTime `json:"end"`
	Color       any     `json:"color,omitempty"`
	Location    string  `json:"location,omitempty"`
	Description string  `json:"description,omitempty"`
}

const dateOnlyLayout = "2006-01-02"

// localDateTimeLayouts are tried after RFC3339 for timestamps lacking a
// zone designator; they are interpreted in the display location.
var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalize converts a raw record into a typed event. It enforces
// start <= end (a degenerate end is clamped to one minute past start),
// detects all-day semantics and flags untitled events. Records whose
// boundaries cannot be parsed are dropped with ok=false.
func Normalize(raw RawEvent, calendarID string, loc *time.Location) (event.Event, bool) {
	if loc == nil {
		loc = time.Local
	}

	start, startDateOnly, ok := parseBoundary(raw.Start, loc)
	if !ok {
		return event.Event{}, false
	}
	end, endDateOnly, ok := parseBoundary(raw.End, loc)
	if !ok {
		// A missing end on a date-only start means the whole day; a
		// missing end on a timestamp means a point event, which the
		// clamp below gives the minimum duration.
		end = start
		endDateOnly = startDateOnly
		if startDateOnly {
			end = start.AddDate(0, 0, 1)
		}
	}

	if !end.After(start) {
		end = start.Add(time.Minute)
	}

	title := strings.TrimSpace(raw.Summary)

	ev := event.Event{
		CalendarID:  calendarID,
		Title:       title,
		Untitled:    title == "",
		Start:       start,
		End:         end,
		AllDay:      isAllDay(start, end, startDateOnly && endDateOnly),
		Color:       color.Default.ResolveValue(raw.Color),
		Location:    raw.Location,
		Description: raw.Description,
	}
	return ev, true
}

func parseBoundary(rt RawTime, loc *time.Location) (t time.Time, dateOnly, ok bool) {
	if rt.Date != "" {
		parsed, err := time.ParseInLocation(dateOnlyLayout, rt.Date, loc)
		if err != nil {
			return time.Time{}, false, false
		}
		return parsed, true, true
	}
	if rt.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, rt.DateTime); err == nil {
			return parsed.In(loc), false, true
		}
		for _, layout := range localDateTimeLayouts {
			if parsed, err := time.ParseInLocation(layout, rt.DateTime, loc); err == nil {
				return parsed, false, true
			}
		}
	}
	return time.Time{}, false, false
}

// isAllDay applies the all-day rule: date-only boundaries, or a span of
// at least 24 hours starting and ending exactly at local midnight.
func isAllDay(start, end time.Time, dateOnly bool) bool {
	if dateOnly {
		return true
	}
	if end.Sub(start) < 24*time.Hour {
		return false
	}
	return isMidnight(start) && isMidnight(end)
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
