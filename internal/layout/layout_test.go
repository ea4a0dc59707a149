package layout_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/weekgrid/internal/event"
	"github.com/tartampluch/weekgrid/internal/layout"
)

// monday is a fixed reference week start (Monday 2024-01-01).
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func window() layout.WeekWindow {
	return layout.Week(monday.Add(10*time.Hour), 0)
}

func timed(id string, day int, startHour, startMin, endHour, endMin int) event.Event {
	d := monday.AddDate(0, 0, day)
	return event.Event{
		CalendarID: "cal.test",
		Title:      id,
		Start:      time.Date(d.Year(), d.Month(), d.Day(), startHour, startMin, 0, 0, d.Location()),
		End:        time.Date(d.Year(), d.Month(), d.Day(), endHour, endMin, 0, 0, d.Location()),
	}
}

func allDay(id string, day, days int) event.Event {
	start := monday.AddDate(0, 0, day)
	return event.Event{
		CalendarID: "cal.test",
		Title:      id,
		Start:      start,
		End:        start.AddDate(0, 0, days),
		AllDay:     true,
	}
}

func findTimed(t *testing.T, day layout.DayLayout, title string) layout.DisplayEvent {
	t.Helper()
	for _, de := range day.Timed {
		if de.Event.Title == title {
			return de
		}
	}
	require.Failf(t, "event not found", "no timed event %q in day %s", title, day.Date)
	return layout.DisplayEvent{}
}

func TestWeek_MondayStart(t *testing.T) {
	// 2024-01-03 is a Wednesday; its week starts Monday 2024-01-01.
	wed := time.Date(2024, 1, 3, 15, 30, 0, 0, time.UTC)
	w := layout.Week(wed, 0)
	assert.Equal(t, monday, w.Monday)
	assert.Equal(t, 0, w.Offset)

	// Sunday belongs to the same week, not the next one.
	sun := time.Date(2024, 1, 7, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, layout.Week(sun, 0).Monday)

	// Offsets shift by whole weeks in either direction.
	assert.Equal(t, monday.AddDate(0, 0, 7), layout.Week(wed, 1).Monday)
	assert.Equal(t, monday.AddDate(0, 0, -14), layout.Week(wed, -2).Monday)

	// The window's last instant is Sunday 23:59:59.999.
	assert.Equal(t, time.Date(2024, 1, 7, 23, 59, 59, 999000000, time.UTC), w.SundayEnd())
}

func TestLayout_BasicColumnAssignment(t *testing.T) {
	// Scenario: two overlapping events on Monday get distinct columns; a
	// third event starting after the first ended reuses column 0 because
	// the sweep evicts actives whose end <= the new start (10:00 <= 10:05).
	events := []event.Event{
		timed("A", 0, 9, 0, 10, 0),
		timed("B", 0, 9, 30, 10, 30),
		timed("C", 0, 10, 5, 11, 0),
	}

	wl := layout.Layout(events, window(), layout.Options{})
	day := wl.Days[0]
	require.Len(t, day.Timed, 3)

	assert.Equal(t, 0, findTimed(t, day, "A").Column)
	assert.Equal(t, 1, findTimed(t, day, "B").Column)
	assert.Equal(t, 0, findTimed(t, day, "C").Column)
	assert.Equal(t, 2, day.Columns)
}

func TestLayout_ColumnNonOverlapProperty(t *testing.T) {
	// Property: any two timed events with overlapping clipped intervals
	// on the same day occupy different columns.
	events := []event.Event{
		timed("A", 1, 9, 0, 12, 0),
		timed("B", 1, 9, 15, 10, 0),
		timed("C", 1, 9, 30, 11, 0),
		timed("D", 1, 10, 30, 13, 0),
		timed("E", 1, 11, 45, 12, 30),
		timed("F", 1, 12, 40, 14, 0),
	}

	wl := layout.Layout(events, window(), layout.Options{})
	day := wl.Days[1]
	require.Len(t, day.Timed, len(events))

	for i := 0; i < len(day.Timed); i++ {
		for j := i + 1; j < len(day.Timed); j++ {
			a, b := day.Timed[i], day.Timed[j]
			overlap := a.DisplayStart.Before(b.DisplayEnd) && b.DisplayStart.Before(a.DisplayEnd)
			if overlap {
				assert.NotEqualf(t, a.Column, b.Column,
					"%s and %s overlap but share column %d", a.Event.Title, b.Event.Title, a.Column)
			}
		}
	}
}

func TestLayout_IndentRegimes(t *testing.T) {
	// The indent policy switches regimes at exactly four columns: fixed
	// 15% steps capped at 45% up to three, then 50%/(n-1) steps capped
	// at 50%.
	tests := []struct {
		total  int
		column int
		want   float64
	}{
		{1, 0, 0},
		{2, 0, 0},
		{2, 1, 15},
		{3, 2, 30},
		{4, 1, 50.0 / 3},
		{4, 3, 50},
		{5, 4, 50},
		{6, 2, 20},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("total=%d col=%d", tt.total, tt.column), func(t *testing.T) {
			// Build total stacked events all overlapping 9:00-17:00 so the
			// sweep assigns columns 0..total-1 in order.
			var events []event.Event
			for i := 0; i < tt.total; i++ {
				events = append(events, timed(fmt.Sprintf("E%d", i), 2, 9, i, 17, 0))
			}
			wl := layout.Layout(events, window(), layout.Options{})
			day := wl.Days[2]
			require.Equal(t, tt.total, day.Columns)

			de := findTimed(t, day, fmt.Sprintf("E%d", tt.column))
			assert.Equal(t, tt.column, de.Column)
			assert.InDelta(t, tt.want, de.IndentPercent, 1e-9)
		})
	}
}

func TestLayout_VerticalGeometry(t *testing.T) {
	// Default viewport is 1440px over 1440 minutes: one pixel per minute.
	events := []event.Event{
		timed("morning", 0, 9, 0, 10, 30),
		timed("blip", 0, 14, 0, 14, 5),
	}

	wl := layout.Layout(events, window(), layout.Options{})
	assert.Equal(t, 1.0, wl.PixelsPerMinute)

	morning := findTimed(t, wl.Days[0], "morning")
	assert.Equal(t, 540.0, morning.Top)
	assert.Equal(t, 90.0, morning.Height)

	// A five-minute event is floored to the minimum legible height.
	blip := findTimed(t, wl.Days[0], "blip")
	assert.Equal(t, 840.0, blip.Top)
	assert.Equal(t, float64(layout.MinEventMinutes), blip.Height)
}

func TestLayout_TrimUnusedHours(t *testing.T) {
	// Week-wide extremes: Tuesday 08:00 start, Thursday 18:00 end.
	// Padding adds 20% of the unused head (480min) and tail (360min):
	// viewport [384, 1152), shared by every day of the week.
	events := []event.Event{
		timed("tue", 1, 8, 0, 9, 0),
		timed("thu", 3, 17, 0, 18, 0),
	}

	wl := layout.Layout(events, window(), layout.Options{TrimUnusedHours: true, ViewportHeight: 768})
	assert.Equal(t, 384, wl.VisibleStartMin)
	assert.Equal(t, 1152, wl.VisibleEndMin)
	assert.Equal(t, 1.0, wl.PixelsPerMinute)

	tue := findTimed(t, wl.Days[1], "tue")
	assert.Equal(t, float64(480-384), tue.Top)

	thu := findTimed(t, wl.Days[3], "thu")
	assert.Equal(t, float64(17*60-384), thu.Top)
}

func TestLayout_TrimFallsBackWithoutTimedEvents(t *testing.T) {
	// Only all-day events: the trimmed span is degenerate and the full
	// 24h viewport applies.
	wl := layout.Layout([]event.Event{allDay("holiday", 0, 1)}, window(),
		layout.Options{TrimUnusedHours: true})
	assert.Equal(t, 0, wl.VisibleStartMin)
	assert.Equal(t, layout.MinutesPerDay, wl.VisibleEndMin)
}

func TestLayout_MultiDaySpanLabeling(t *testing.T) {
	// Scenario: Monday 09:00 to Wednesday 09:00 produces exactly three
	// projections labeled (1/3), (2/3), (3/3).
	ev := event.Event{
		CalendarID: "cal.test",
		Title:      "offsite",
		Start:      monday.Add(9 * time.Hour),
		End:        monday.AddDate(0, 0, 2).Add(9 * time.Hour),
	}

	wl := layout.Layout([]event.Event{ev}, window(), layout.Options{})

	var got []layout.DisplayEvent
	for d := 0; d < layout.DaysPerWeek; d++ {
		for _, de := range wl.Days[d].Timed {
			if de.Event.Title == "offsite" {
				got = append(got, de)
			}
		}
	}
	require.Len(t, got, 3)
	for i, de := range got {
		assert.Equal(t, 3, de.DaySpan)
		assert.Equal(t, i+1, de.DayIndex)
	}

	// Middle day is clipped to the full day boundary.
	mid := got[1]
	assert.Equal(t, monday.AddDate(0, 0, 1), mid.DisplayStart)
	assert.Equal(t, monday.AddDate(0, 0, 2), mid.DisplayEnd)
}

func TestLayout_MultiDaySpanAcrossDSTChange(t *testing.T) {
	// Scenario: in America/New_York the week of 2024-03-04 ends on the
	// spring-forward Sunday (2024-03-10 has only 23 hours). A Saturday
	// 09:00 to Monday 09:00 event still touches three calendar days, so
	// its projections read (1/3), (2/3) and, in the following week,
	// (3/3).
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start := time.Date(2024, 3, 9, 9, 0, 0, 0, loc)
	ev := event.Event{
		CalendarID: "cal.test",
		Title:      "retreat",
		Start:      start,
		End:        time.Date(2024, 3, 11, 9, 0, 0, 0, loc),
	}

	w := layout.Week(start, 0)
	require.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, loc), w.Monday)

	wl := layout.Layout([]event.Event{ev}, w, layout.Options{})

	sat := findTimed(t, wl.Days[5], "retreat")
	assert.Equal(t, 3, sat.DaySpan)
	assert.Equal(t, 1, sat.DayIndex)

	sun := findTimed(t, wl.Days[6], "retreat")
	assert.Equal(t, 3, sun.DaySpan)
	assert.Equal(t, 2, sun.DayIndex)

	// The tail lands in the next window on its Monday.
	next := layout.Week(start, 1)
	nl := layout.Layout([]event.Event{ev}, next, layout.Options{})
	mon := findTimed(t, nl.Days[0], "retreat")
	assert.Equal(t, 3, mon.DaySpan)
	assert.Equal(t, 3, mon.DayIndex)
}

func TestLayout_AllDayLaneStacking(t *testing.T) {
	events := []event.Event{
		allDay("second", 2, 1),
		allDay("first", 0, 3),
		timed("meeting", 1, 10, 0, 11, 0),
	}

	wl := layout.Layout(events, window(), layout.Options{})

	// Wednesday holds both all-day events, stacked by clipped start.
	wed := wl.Days[2]
	require.Len(t, wed.AllDay, 2)
	assert.Equal(t, "first", wed.AllDay[0].Event.Title)
	assert.Equal(t, 0, wed.AllDay[0].Row)
	assert.Equal(t, "second", wed.AllDay[1].Event.Title)
	assert.Equal(t, 1, wed.AllDay[1].Row)
	assert.Equal(t, layout.AllDayRowHeight, wed.AllDay[1].Top)

	// All-day events never enter the timed lane.
	require.Len(t, wed.Timed, 0)
	require.Len(t, wl.Days[1].Timed, 1)

	// The one-day all-day event spans exactly one day.
	assert.Equal(t, 1, wed.AllDay[1].DaySpan)
	assert.Equal(t, 3, wed.AllDay[0].DaySpan)
}

func TestNowIndicator(t *testing.T) {
	events := []event.Event{timed("A", 0, 9, 0, 10, 0)}
	wl := layout.Layout(events, window(), layout.Options{})

	// Wednesday 09:30: day 2, minute 570.
	ind := wl.NowIndicator(monday.AddDate(0, 0, 2).Add(9*time.Hour + 30*time.Minute))
	assert.True(t, ind.Visible)
	assert.Equal(t, 2, ind.DayIndex)
	assert.Equal(t, 570.0, ind.Top)

	// Outside the displayed week: no-op.
	ind = wl.NowIndicator(monday.AddDate(0, 0, 9))
	assert.False(t, ind.Visible)
	assert.Equal(t, -1, ind.DayIndex)
}

func TestNowIndicator_OutsideTrimmedRange(t *testing.T) {
	events := []event.Event{timed("A", 0, 10, 0, 12, 0)}
	wl := layout.Layout(events, window(), layout.Options{TrimUnusedHours: true})

	// 03:00 falls before the trimmed viewport: the marker is a no-op.
	ind := wl.NowIndicator(monday.Add(3 * time.Hour))
	assert.False(t, ind.Visible)

	// 11:00 falls inside it.
	ind = wl.NowIndicator(monday.Add(11 * time.Hour))
	assert.True(t, ind.Visible)
	assert.Equal(t, 0, ind.DayIndex)
}
