// Package event defines the normalized calendar event value type shared by
// the source adapter and the layout engine.
package event

import "time"

// Event is a normalized calendar event for one render pass. Events are
// immutable value objects: they are rebuilt from raw payloads on every
// fetch and carry no identity across renders.
type Event struct {
	// CalendarID names the calendar this event belongs to.
	CalendarID string

	// Title is the event summary. Untitled marks events whose raw record
	// had no summary so renderers can substitute a localized placeholder.
	Title    string
	Untitled bool

	// Start and End bound the event; Start <= End always holds after
	// normalization. All-day events span whole local days with an
	// exclusive End on a midnight boundary.
	Start time.Time
	End   time.Time

	AllDay bool

	// Color is the raw color value from the source ("" when unset);
	// resolution happens in the preference/color pipeline.
	Color string

	Location    string
	Description string
}

// Duration returns the event's length.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Overlaps reports whether the event intersects the half-open interval
// [start, end).
func (e Event) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && e.End.After(start)
}
