package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tartampluch/weekgrid/internal/app"
	"github.com/tartampluch/weekgrid/internal/color"
	"github.com/tartampluch/weekgrid/internal/config"
	"github.com/tartampluch/weekgrid/internal/layout"
)

// Styles groups the lipgloss styles of the grid.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Today    lipgloss.Style
	Gutter   lipgloss.Style
	GridLine lipgloss.Style
	NowLine  lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style
	Error    lipgloss.Style
	Empty    lipgloss.Style
	Dialog   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),
		Today: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("220")).
			Bold(true),
		Gutter: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		GridLine: lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")),
		NowLine: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Reverse(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		Empty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true),
		Dialog: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 2),
	}
}

const (
	gutterWidth = 6
	minColWidth = 8
	minGridRows = 12
)

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 || !m.loaded {
		return "..."
	}

	switch m.ctrl.Dialog() {
	case app.DialogSettings:
		return m.viewSettings()
	case app.DialogDetails:
		return m.viewDetails()
	}
	return m.viewGrid()
}

func (m *Model) viewGrid() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.view.Title))
	if m.view.Err != nil {
		b.WriteString("  ")
		b.WriteString(m.styles.Error.Render(m.view.Err.Error()))
	}
	b.WriteString("\n")

	if m.view.NoCalendars {
		b.WriteString("\n")
		b.WriteString(m.styles.Empty.Render(m.i18n.T(config.TKeyNoCalendars)))
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render(m.i18n.T(config.TKeyNoCalendarsHint)))
		b.WriteString("\n")
		return b.String()
	}

	colWidth := (m.width - gutterWidth) / layout.DaysPerWeek
	if colWidth < minColWidth {
		colWidth = minColWidth
	}

	b.WriteString(m.renderHeaders(colWidth))
	b.WriteString(m.renderAllDayLane(colWidth))
	b.WriteString(m.renderTimedGrid(colWidth))

	if m.weekIsEmpty() {
		b.WriteString(m.styles.Empty.Render(m.i18n.T(config.TKeyNoEvents)))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render(m.i18n.T(config.TKeyNavHelp)))
	return b.String()
}

func (m *Model) renderHeaders(colWidth int) string {
	p := m.prefs.Snapshot()
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutterWidth))
	for i, h := range m.view.Headers {
		label := pad(h.Label, colWidth)
		style := m.styles.Header
		if h.IsToday && p.HighlightToday {
			style = m.styles.Today.Background(lipgloss.Color(p.HighlightColor)).
				Foreground(lipgloss.Color(color.TextColor(p.HighlightColor, "")))
		}
		if i == m.selDay {
			style = style.Underline(true)
		}
		b.WriteString(style.Render(label))
	}
	b.WriteString("\n")
	return b.String()
}

// renderAllDayLane stacks all-day events in fixed rows above the grid.
func (m *Model) renderAllDayLane(colWidth int) string {
	rows := 0
	for _, day := range m.view.Layout.Days {
		for _, ev := range day.AllDay {
			if ev.Row+1 > rows {
				rows = ev.Row + 1
			}
		}
	}
	if rows == 0 {
		return ""
	}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		b.WriteString(pad(m.i18n.T(config.TKeyAllDay), gutterWidth))
		for d, day := range m.view.Layout.Days {
			cell := strings.Repeat(" ", colWidth)
			for i, ev := range day.AllDay {
				if ev.Row != r {
					continue
				}
				cell = m.eventStyle(ev, d, i).Render(pad(m.eventLabel(ev), colWidth))
				break
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderTimedGrid(colWidth int) string {
	lay := m.view.Layout
	span := lay.VisibleEndMin - lay.VisibleStartMin

	rows := m.height - 6
	if rows < minGridRows {
		rows = minGridRows
	}
	step := (span + rows - 1) / rows
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		minute := lay.VisibleStartMin + r*step
		if minute >= lay.VisibleEndMin {
			break
		}

		b.WriteString(m.styles.Gutter.Render(pad(fmt.Sprintf("%02d:%02d", minute/60, minute%60), gutterWidth)))

		for d, day := range lay.Days {
			b.WriteString(m.renderCell(day, d, minute, step, colWidth))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderCell draws one day column slice [minute, minute+step). The
// leftmost covering lane wins; the title shows on the event's first row.
func (m *Model) renderCell(day layout.DayLayout, dayIdx, minute, step, colWidth int) string {
	var (
		found    bool
		best     layout.DisplayEvent
		bestIdx  int
		firstRow bool
	)
	for i, ev := range day.Timed {
		start := minuteOf(ev.DisplayStart)
		end := start + int(ev.Height/m.view.Layout.PixelsPerMinute)
		if minute+step <= start || minute >= end {
			continue
		}
		if !found || ev.Column < best.Column {
			found = true
			best = ev
			bestIdx = i
			firstRow = minute <= start && start < minute+step
		}
	}

	if !found {
		if m.isNowCell(dayIdx, minute, step) {
			return m.styles.NowLine.Render(pad(strings.Repeat("─", colWidth-1), colWidth))
		}
		return m.styles.GridLine.Render(pad("·", colWidth))
	}

	indent := int(best.IndentPercent / 100 * float64(colWidth))
	text := strings.Repeat(" ", indent)
	if firstRow {
		text += m.eventLabel(best)
	}
	return m.eventStyle(best, dayIdx, len(day.AllDay)+bestIdx).Render(pad(text, colWidth))
}

// isNowCell reports whether the live time indicator falls inside this
// cell's minute slice.
func (m *Model) isNowCell(dayIdx, minute, step int) bool {
	ind := m.view.Now
	if !ind.Visible || ind.DayIndex != dayIdx {
		return false
	}
	nowMin := m.view.Layout.VisibleStartMin + int(ind.Top/m.view.Layout.PixelsPerMinute)
	return minute <= nowMin && nowMin < minute+step
}

// eventStyle colors an event box: its calendar color as background with a
// contrast-safe text color on top.
func (m *Model) eventStyle(ev layout.DisplayEvent, dayIdx, idx int) lipgloss.Style {
	if dayIdx == m.selDay && idx == m.selEvent {
		return m.styles.Selected
	}
	bg := ev.Event.Color
	if bg == "" {
		return m.styles.GridLine.Reverse(true)
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(color.TextColor(bg, "")))
}

func (m *Model) eventLabel(ev layout.DisplayEvent) string {
	title := ev.Event.Title
	if ev.Event.Untitled {
		title = m.i18n.T(config.TKeyUntitledEvent)
	}
	if ev.DaySpan > 1 {
		title += " " + m.i18n.Tf(config.TKeyDaySpan, map[string]any{
			"Index": ev.DayIndex,
			"Span":  ev.DaySpan,
		})
	}
	return title
}

func (m *Model) viewSettings() string {
	p := m.prefs.Snapshot()
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.i18n.T(config.TKeySettingsTitle)))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s: %s [L]\n", m.i18n.T(config.TKeyLblLanguage), p.Language))
	b.WriteString(fmt.Sprintf("%s: %s [T]\n", m.i18n.T(config.TKeyLblTheme), m.themeLabel(p.Theme)))
	b.WriteString(fmt.Sprintf("%s: %s [H]\n", m.i18n.T(config.TKeyLblHighlight), onOff(p.HighlightToday)))
	b.WriteString(fmt.Sprintf("%s: %s [u]\n", m.i18n.T(config.TKeyLblTrimHours), onOff(p.TrimHours)))
	b.WriteString("\n")

	b.WriteString(m.styles.Header.Render(m.i18n.T(config.TKeyLblHiddenCals)))
	b.WriteString("\n")
	for i, cal := range m.view.Calendars {
		cursor := "  "
		if i == m.settingsRow {
			cursor = "> "
		}
		mark := "[x]"
		if p.Hidden[cal.EntityID] {
			mark = "[ ]"
		}
		name := cal.DisplayName
		if name == "" {
			name = cal.EntityID
		}
		line := fmt.Sprintf("%s%s %s", cursor, mark, name)
		if c := p.Colors[cal.EntityID]; c != "" {
			swatch := lipgloss.NewStyle().Background(lipgloss.Color(c)).Render("  ")
			line += " " + swatch
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(fmt.Sprintf("[r] %s  [esc] %s",
		m.i18n.T(config.TKeyBtnReset), m.i18n.T(config.TKeyBtnClose))))

	return m.styles.Dialog.Render(b.String())
}

func (m *Model) viewDetails() string {
	sel := m.ctrl.Selected()
	if sel == nil {
		return m.viewGrid()
	}
	ev := sel.Event

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.eventLabel(*sel)))
	b.WriteString("\n\n")
	if ev.AllDay {
		b.WriteString(m.i18n.T(config.TKeyAllDay))
	} else {
		b.WriteString(fmt.Sprintf("%s - %s",
			ev.Start.Format("Mon 2 Jan 15:04"),
			ev.End.Format("15:04")))
	}
	b.WriteString("\n")
	if ev.Location != "" {
		b.WriteString(ev.Location)
		b.WriteString("\n")
	}
	if ev.Description != "" {
		b.WriteString("\n")
		b.WriteString(ev.Description)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("[esc] " + m.i18n.T(config.TKeyBtnClose)))
	return m.styles.Dialog.Render(b.String())
}

func (m *Model) themeLabel(theme string) string {
	switch theme {
	case config.ThemeLight:
		return m.i18n.T(config.TKeyThemeLight)
	case config.ThemeDark:
		return m.i18n.T(config.TKeyThemeDark)
	default:
		return m.i18n.T(config.TKeyThemeSystem)
	}
}

func (m *Model) weekIsEmpty() bool {
	for _, day := range m.view.Layout.Days {
		if len(day.AllDay) > 0 || len(day.Timed) > 0 {
			return false
		}
	}
	return true
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// minuteOf is a time's minute of day in its own location.
func minuteOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// pad truncates or right-pads s to exactly width cells.
func pad(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
