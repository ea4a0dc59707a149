// Package layout transforms normalized calendar events into a
// non-overlapping 2D weekly grid: per-day all-day and timed lanes, lane
// column assignment, and pixel geometry on a shared time axis. The engine
// is a pure function of its inputs; nothing here touches rendering.
package layout

import (
	"sort"
	"time"

	"github.com/tartampluch/weekgrid/internal/event"
)

const (
	// MinutesPerDay spans the full 24h viewport.
	MinutesPerDay = 1440

	// MinEventMinutes is the duration floor that keeps very short events
	// legible: boxes never shrink below this many minutes of height.
	MinEventMinutes = 30

	// DefaultViewportHeight is the untrimmed time-axis height in pixels,
	// chosen so the untrimmed scale is exactly one pixel per minute.
	DefaultViewportHeight = 1440.0

	// AllDayRowHeight is the fixed height of one all-day lane row.
	AllDayRowHeight = 22.0

	// trimPadding expands the trimmed viewport by this share of the
	// unused head/tail margin on each side.
	trimPadding = 0.20
)

// Options control a layout pass.
type Options struct {
	// TrimUnusedHours compresses the viewport to the union of actual
	// event times across the whole week, with padding margins.
	TrimUnusedHours bool

	// ViewportHeight is the available pixel height of the time axis.
	// Zero means DefaultViewportHeight.
	ViewportHeight float64
}

// DisplayEvent is the per-day projection of an event: its clipped
// interval, lane position and pixel geometry. Computed fresh per render,
// never cached.
type DisplayEvent struct {
	Event event.Event

	// DaySpan is the number of calendar days the event touches; DayIndex
	// is this projection's 1-based position within that span, for
	// "(2/3)" style labels.
	DaySpan  int
	DayIndex int

	// DisplayStart/DisplayEnd are the event interval clipped to this
	// day's [00:00, 24:00) boundary.
	DisplayStart time.Time
	DisplayEnd   time.Time

	// Column is the lane assignment of timed events; Row is the
	// stacking position of all-day events.
	Column int
	Row    int

	// Top and Height position the box on the time axis, in pixels.
	Top    float64
	Height float64

	// IndentPercent is the horizontal indentation of the box, as a
	// percentage of the day column width.
	IndentPercent float64
}

// DayLayout is one day's lanes.
type DayLayout struct {
	Date    time.Time
	AllDay  []DisplayEvent
	Timed   []DisplayEvent
	Columns int
}

// WeekLayout is the full layout result: seven days on one shared
// pixel-per-minute scale.
type WeekLayout struct {
	Window WeekWindow
	Days   [DaysPerWeek]DayLayout

	// VisibleStartMin/VisibleEndMin bound the viewport in minutes of
	// day; PixelsPerMinute is the uniform week-wide scale.
	VisibleStartMin int
	VisibleEndMin   int
	PixelsPerMinute float64
}

// Layout computes the weekly grid for the given events and window.
func Layout(events []event.Event, window WeekWindow, opts Options) WeekLayout {
	height := opts.ViewportHeight
	if height <= 0 {
		height = DefaultViewportHeight
	}

	// Global ordering: absolute start time, stable. Per-day partitions
	// re-sort by clipped start; ties keep this order.
	sorted := make([]event.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	visStart, visEnd := visibleRange(sorted, window, opts.TrimUnusedHours)
	pxPerMin := height / float64(visEnd-visStart)

	out := WeekLayout{
		Window:          window,
		VisibleStartMin: visStart,
		VisibleEndMin:   visEnd,
		PixelsPerMinute: pxPerMin,
	}

	for d := 0; d < DaysPerWeek; d++ {
		dayStart := window.Day(d)
		dayEnd := window.Day(d + 1)
		out.Days[d] = layoutDay(sorted, dayStart, dayEnd, visStart, pxPerMin)
	}

	return out
}

func layoutDay(events []event.Event, dayStart, dayEnd time.Time, visStart int, pxPerMin float64) DayLayout {
	day := DayLayout{Date: dayStart}

	var allDay, timed []DisplayEvent
	for _, ev := range events {
		if !ev.Overlaps(dayStart, dayEnd) {
			continue
		}
		de := project(ev, dayStart, dayEnd)
		if ev.AllDay {
			allDay = append(allDay, de)
		} else {
			timed = append(timed, de)
		}
	}

	// All-day lane: clipped start ascending, simple vertical stacking.
	sort.SliceStable(allDay, func(i, j int) bool {
		return allDay[i].DisplayStart.Before(allDay[j].DisplayStart)
	})
	for i := range allDay {
		allDay[i].Row = i
		allDay[i].Top = float64(i) * AllDayRowHeight
		allDay[i].Height = AllDayRowHeight
	}

	// Timed lane: greedy sweep over events sorted by clipped start.
	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].DisplayStart.Before(timed[j].DisplayStart)
	})
	maxColumn := assignColumns(timed)
	total := 0
	if len(timed) > 0 {
		total = maxColumn + 1
	}

	for i := range timed {
		de := &timed[i]
		de.IndentPercent = indentPercent(de.Column, total)

		startMin := minuteOfDay(de.DisplayStart, dayStart)
		endMin := minuteOfDay(de.DisplayEnd, dayStart)
		duration := endMin - startMin
		if duration < MinEventMinutes {
			duration = MinEventMinutes
		}
		de.Top = float64(startMin-visStart) * pxPerMin
		de.Height = float64(duration) * pxPerMin
	}

	day.AllDay = allDay
	day.Timed = timed
	day.Columns = total
	return day
}

// assignColumns runs the sweep: walking events by clipped start, evict
// every active event whose clipped end is at or before the new start, then
// take the lowest column the remaining actives do not occupy. Returns the
// highest column handed out.
func assignColumns(timed []DisplayEvent) int {
	type active struct {
		end    time.Time
		column int
	}
	var actives []active
	maxColumn := 0

	for i := range timed {
		de := &timed[i]

		kept := actives[:0]
		for _, a := range actives {
			if a.end.After(de.DisplayStart) {
				kept = append(kept, a)
			}
		}
		actives = kept

		used := make(map[int]bool, len(actives))
		for _, a := range actives {
			used[a.column] = true
		}
		column := 0
		for used[column] {
			column++
		}

		de.Column = column
		if column > maxColumn {
			maxColumn = column
		}
		actives = append(actives, active{end: de.DisplayEnd, column: column})
	}

	return maxColumn
}

// indentPercent computes the horizontal indentation of a column. Up to
// three columns indent a fixed 15% step capped at 45%; from four columns
// on, the step shrinks so the last column tops out at 50% and events never
// push fully off-screen.
func indentPercent(column, totalColumns int) float64 {
	switch {
	case totalColumns <= 1:
		return 0
	case totalColumns <= 3:
		indent := float64(column) * 15
		if indent > 45 {
			indent = 45
		}
		return indent
	default:
		step := 50.0 / float64(totalColumns-1)
		indent := float64(column) * step
		if indent > 50 {
			indent = 50
		}
		return indent
	}
}

// project clips an event to one day and computes its span labeling.
func project(ev event.Event, dayStart, dayEnd time.Time) DisplayEvent {
	displayStart := ev.Start
	if displayStart.Before(dayStart) {
		displayStart = dayStart
	}
	displayEnd := ev.End
	if displayEnd.After(dayEnd) {
		displayEnd = dayEnd
	}

	// The last touched day: an exclusive midnight end belongs to the
	// previous day.
	last := ev.End
	if Midnight(last).Equal(last) && last.After(ev.Start) {
		last = last.Add(-time.Nanosecond)
	}
	span := DaysBetween(ev.Start, last) + 1

	return DisplayEvent{
		Event:        ev,
		DaySpan:      span,
		DayIndex:     DaysBetween(ev.Start, dayStart) + 1,
		DisplayStart: displayStart,
		DisplayEnd:   displayEnd,
	}
}

// visibleRange computes the viewport in minutes of day. Trimming unites
// the clipped intervals of every timed event across the week, then pads
// each side by a share of the unused margin; a degenerate union falls back
// to the full 24h axis.
func visibleRange(events []event.Event, window WeekWindow, trim bool) (int, int) {
	if !trim {
		return 0, MinutesPerDay
	}

	earliest, latest := MinutesPerDay, 0
	for d := 0; d < DaysPerWeek; d++ {
		dayStart := window.Day(d)
		dayEnd := window.Day(d + 1)
		for _, ev := range events {
			if ev.AllDay || !ev.Overlaps(dayStart, dayEnd) {
				continue
			}
			de := project(ev, dayStart, dayEnd)
			if m := minuteOfDay(de.DisplayStart, dayStart); m < earliest {
				earliest = m
			}
			if m := minuteOfDay(de.DisplayEnd, dayStart); m > latest {
				latest = m
			}
		}
	}

	if earliest >= latest {
		return 0, MinutesPerDay
	}

	start := earliest - int(trimPadding*float64(earliest))
	end := latest + int(trimPadding*float64(MinutesPerDay-latest))
	if start < 0 {
		start = 0
	}
	if end > MinutesPerDay {
		end = MinutesPerDay
	}
	return start, end
}

func minuteOfDay(t, dayStart time.Time) int {
	return int(t.Sub(dayStart) / time.Minute)
}
