// Package ui renders the weekly grid in the terminal and feeds user
// interaction back into the controller and the preference store.
package ui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tartampluch/weekgrid/internal/app"
	"github.com/tartampluch/weekgrid/internal/config"
	"github.com/tartampluch/weekgrid/internal/i18n"
	"github.com/tartampluch/weekgrid/internal/layout"
	"github.com/tartampluch/weekgrid/internal/prefs"
)

type weekLoadedMsg struct {
	view app.WeekView
}

// WeekLoaded wraps a refreshed view as a bubbletea message. The refresh
// command uses it internally; tests feed views through it directly.
func WeekLoaded(view app.WeekView) tea.Msg {
	return weekLoadedMsg{view: view}
}

type tickMsg time.Time

// Model is the bubbletea model for the week grid.
type Model struct {
	ctrl  *app.Controller
	i18n  *i18n.Resolver
	prefs *prefs.Manager
	log   *slog.Logger

	view   app.WeekView
	loaded bool

	// Selection state for the details dialog: a day column and an index
	// into that day's timed lane.
	selDay   int
	selEvent int

	// Settings dialog cursor over the calendar list.
	settingsRow int

	width  int
	height int
	styles Styles
}

// NewModel wires the UI to its collaborators.
func NewModel(ctrl *app.Controller, res *i18n.Resolver, p *prefs.Manager) *Model {
	return &Model{
		ctrl:   ctrl,
		i18n:   res,
		prefs:  p,
		log:    slog.With(config.LogKeyComponent, config.CompUI),
		styles: DefaultStyles(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.refreshCmd(),
		m.tickCmd(),
	)
}

// refreshCmd fetches and lays out the current week off the update loop.
func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return weekLoadedMsg{view: m.ctrl.Refresh(context.Background())}
	}
}

// tickCmd schedules the once-a-minute now-indicator update.
func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case weekLoadedMsg:
		// A navigation that happened mid-fetch makes this result stale.
		if msg.view.Generation != m.ctrl.Generation() {
			return m, nil
		}
		m.view = msg.view
		m.loaded = true
		m.clampSelection()
		return m, nil

	case tickMsg:
		if m.loaded {
			m.view.Now = m.ctrl.Tick(m.view.Layout)
		}
		return m, m.tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ctrl.Dialog() != app.DialogNone {
		return m.handleDialogKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "n", "right":
		m.ctrl.Next()
		return m, m.refreshCmd()

	case "p", "left":
		m.ctrl.Prev()
		return m, m.refreshCmd()

	case "t":
		m.ctrl.Today()
		return m, m.refreshCmd()

	case "s":
		m.settingsRow = 0
		m.ctrl.OpenSettings()
		return m, nil

	case "h":
		m.moveDay(-1)
	case "l":
		m.moveDay(+1)
	case "k", "up":
		m.moveEvent(-1)
	case "j", "down":
		m.moveEvent(+1)

	case "enter":
		if ev, ok := m.selectedEvent(); ok {
			m.ctrl.OpenDetails(ev)
		}
	}

	return m, nil
}

func (m *Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ctrl.Dialog() == app.DialogSettings {
		if cmd, handled := m.handleSettingsKey(msg); handled {
			return m, cmd
		}
	}

	switch msg.String() {
	case "esc", "enter", "q":
		m.ctrl.CloseDialog()
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// handleSettingsKey mutates preferences from the settings dialog. Every
// change persists immediately and re-renders on the next frame; toggles
// that affect fetching or geometry trigger a refresh.
func (m *Model) handleSettingsKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "k", "up":
		if m.settingsRow > 0 {
			m.settingsRow--
		}
		return nil, true

	case "j", "down":
		if m.settingsRow < len(m.view.Calendars)-1 {
			m.settingsRow++
		}
		return nil, true

	case " ":
		// Toggle visibility of the calendar under the cursor.
		if m.settingsRow < len(m.view.Calendars) {
			id := m.view.Calendars[m.settingsRow].EntityID
			hidden := m.prefs.Snapshot().Hidden[id]
			if err := m.prefs.SetHidden(id, !hidden); err != nil {
				m.log.Warn(config.ErrStoreWrite, config.LogKeyError, err)
			}
		}
		return m.refreshCmd(), true

	case "L":
		if err := m.ctrl.SetLanguage(m.nextLanguage()); err != nil {
			m.log.Warn(config.ErrStoreWrite, config.LogKeyError, err)
		}
		return m.refreshCmd(), true

	case "T":
		if err := m.prefs.SetTheme(nextTheme(m.prefs.Snapshot().Theme)); err != nil {
			m.log.Warn(config.ErrStoreWrite, config.LogKeyError, err)
		}
		return nil, true

	case "H":
		on := m.prefs.Snapshot().HighlightToday
		if err := m.prefs.SetHighlightToday(!on); err != nil {
			m.log.Warn(config.ErrStoreWrite, config.LogKeyError, err)
		}
		return nil, true

	case "u":
		on := m.prefs.Snapshot().TrimHours
		if err := m.prefs.SetTrimHours(!on); err != nil {
			m.log.Warn(config.ErrStoreWrite, config.LogKeyError, err)
		}
		return m.refreshCmd(), true

	case "r":
		if err := m.prefs.ResetAll(); err != nil {
			m.log.Warn(config.ErrStoreWrite, config.LogKeyError, err)
		}
		m.i18n.SetLanguage(m.prefs.Snapshot().Language)
		return m.refreshCmd(), true
	}

	return nil, false
}

// nextLanguage cycles system -> en -> fr -> de -> system.
func (m *Model) nextLanguage() string {
	cycle := append([]string{config.LanguageSystem}, m.i18n.Supported()...)
	current := m.prefs.Snapshot().Language
	for i, lang := range cycle {
		if lang == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func nextTheme(current string) string {
	switch current {
	case config.ThemeSystem:
		return config.ThemeLight
	case config.ThemeLight:
		return config.ThemeDark
	default:
		return config.ThemeSystem
	}
}

func (m *Model) moveDay(delta int) {
	m.selDay = (m.selDay + delta + 7) % 7
	m.selEvent = 0
	m.clampSelection()
}

func (m *Model) moveEvent(delta int) {
	m.selEvent += delta
	m.clampSelection()
}

func (m *Model) clampSelection() {
	if !m.loaded {
		return
	}
	n := len(m.view.Layout.Days[m.selDay].Timed) + len(m.view.Layout.Days[m.selDay].AllDay)
	if n == 0 {
		m.selEvent = 0
		return
	}
	if m.selEvent < 0 {
		m.selEvent = 0
	}
	if m.selEvent >= n {
		m.selEvent = n - 1
	}
}

// selectedEvent returns the event under the cursor, all-day lane first.
func (m *Model) selectedEvent() (layout.DisplayEvent, bool) {
	if !m.loaded {
		return layout.DisplayEvent{}, false
	}
	day := m.view.Layout.Days[m.selDay]
	if m.selEvent < len(day.AllDay) {
		return day.AllDay[m.selEvent], true
	}
	idx := m.selEvent - len(day.AllDay)
	if idx < len(day.Timed) {
		return day.Timed[idx], true
	}
	return layout.DisplayEvent{}, false
}
