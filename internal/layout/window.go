package layout

import (
	"math"
	"time"
)

// DaysPerWeek is the number of days in a week window. Days are ordered
// Monday=0 .. Sunday=6.
const DaysPerWeek = 7

// WeekWindow is a Monday-start week derived purely from a reference time
// and a signed week offset.
type WeekWindow struct {
	// Monday is local midnight of the week's first day.
	Monday time.Time

	// Offset is the signed distance in weeks from the current week.
	Offset int
}

// Week returns the window containing now shifted by offset weeks.
func Week(now time.Time, offset int) WeekWindow {
	day := Midnight(now)
	// time.Weekday counts Sunday=0; shift to Monday=0.
	weekday := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -weekday+offset*DaysPerWeek)
	return WeekWindow{Monday: monday, Offset: offset}
}

// Day returns local midnight of day i (Monday=0 .. Sunday=6).
func (w WeekWindow) Day(i int) time.Time {
	return w.Monday.AddDate(0, 0, i)
}

// Start returns the inclusive start of the window.
func (w WeekWindow) Start() time.Time {
	return w.Monday
}

// End returns the exclusive end of the window (the following Monday's
// midnight).
func (w WeekWindow) End() time.Time {
	return w.Monday.AddDate(0, 0, DaysPerWeek)
}

// SundayEnd returns the last instant of the window, Sunday 23:59:59.999.
func (w WeekWindow) SundayEnd() time.Time {
	return w.End().Add(-time.Millisecond)
}

// Contains reports whether t falls inside the window.
func (w WeekWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start()) && t.Before(w.End())
}

// DayIndex returns the window day index containing t, or -1.
func (w WeekWindow) DayIndex(t time.Time) int {
	if !w.Contains(t) {
		return -1
	}
	return DaysBetween(w.Monday, t)
}

// Midnight truncates t to local midnight.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the whole-day difference between the dates of a and
// b, ignoring time of day. Days shortened or stretched by a DST shift
// still count as one calendar day.
func DaysBetween(a, b time.Time) int {
	da, db := Midnight(a), Midnight(b)
	return int(math.Round(db.Sub(da).Hours() / 24))
}
