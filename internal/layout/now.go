package layout

import "time"

// Indicator is the position of the "current time" marker.
type Indicator struct {
	// DayIndex is the window day holding the marker (Monday=0), -1 when
	// not visible.
	DayIndex int

	// Top is the pixel offset on the shared time axis.
	Top float64

	// Visible is false when now falls outside the displayed week or
	// outside the trimmed time range; the marker is then a no-op.
	Visible bool
}

// NowIndicator locates now on the laid-out week. It recomputes only the
// marker position and is independent of fetch or render cycles.
func (wl WeekLayout) NowIndicator(now time.Time) Indicator {
	day := wl.Window.DayIndex(now)
	if day < 0 {
		return Indicator{DayIndex: -1}
	}

	minute := minuteOfDay(now, wl.Window.Day(day))
	if minute < wl.VisibleStartMin || minute >= wl.VisibleEndMin {
		return Indicator{DayIndex: -1}
	}

	return Indicator{
		DayIndex: day,
		Top:      float64(minute-wl.VisibleStartMin) * wl.PixelsPerMinute,
		Visible:  true,
	}
}
