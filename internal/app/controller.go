// Package app hosts the interaction controller: week navigation, dialog
// state and the refresh cycle tying preferences, the calendar source and
// the layout engine together for the rendering layer.
package app

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tartampluch/weekgrid/internal/config"
	"github.com/tartampluch/weekgrid/internal/event"
	"github.com/tartampluch/weekgrid/internal/i18n"
	"github.com/tartampluch/weekgrid/internal/layout"
	"github.com/tartampluch/weekgrid/internal/prefs"
	"github.com/tartampluch/weekgrid/internal/source"
)

// Fetcher is the calendar-source collaborator consumed by the controller.
// *source.Adapter satisfies it.
type Fetcher interface {
	FetchWeek(ctx context.Context, window layout.WeekWindow, hidden map[string]bool) ([]event.Event, error)
	Discover(ctx context.Context) ([]source.Descriptor, error)
}

// Dialog enumerates the modal state of the view.
type Dialog int

const (
	DialogNone Dialog = iota
	DialogSettings
	DialogDetails
)

// DayHeader describes one column header of the week grid.
type DayHeader struct {
	Date  time.Time
	Label string

	// IsToday is true only in the current week, for the real current
	// weekday.
	IsToday bool
}

// WeekView is the complete render input for one week: window, headers,
// geometry and the empty-state signals. It is rebuilt from scratch on every
// refresh; the renderer never mutates it.
type WeekView struct {
	// Generation identifies the navigation state this view was built
	// for. A view whose generation no longer matches the controller is
	// stale and must be dropped, not rendered.
	Generation uint64

	Window  layout.WeekWindow
	Title   string
	Headers [layout.DaysPerWeek]DayHeader
	Layout  layout.WeekLayout
	Now     layout.Indicator

	Calendars []source.Descriptor

	// NoCalendars distinguishes "nothing to show because there are no
	// calendars" from a plain empty week.
	NoCalendars bool

	// Err carries a transient fetch failure; the previous view stays on
	// screen when it is set.
	Err error
}

// Controller owns the week offset, dialog state and refresh generation.
type Controller struct {
	clock   Clock
	fetcher Fetcher
	prefs   *prefs.Manager
	i18n    *i18n.Resolver
	log     *slog.Logger

	generation atomic.Uint64

	mu       sync.Mutex
	offset   int
	dialog   Dialog
	selected *layout.DisplayEvent
}

// NewController wires the controller's collaborators.
func NewController(clock Clock, fetcher Fetcher, p *prefs.Manager, res *i18n.Resolver) *Controller {
	return &Controller{
		clock:   clock,
		fetcher: fetcher,
		prefs:   p,
		i18n:    res,
		log:     slog.With(config.LogKeyComponent, config.CompApp),
	}
}

// Offset returns the signed week offset relative to the current week.
func (c *Controller) Offset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// Next moves one week forward and invalidates in-flight refreshes.
func (c *Controller) Next() int { return c.shift(+1) }

// Prev moves one week backward and invalidates in-flight refreshes.
func (c *Controller) Prev() int { return c.shift(-1) }

// Today jumps back to the current week.
func (c *Controller) Today() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = 0
	c.generation.Add(1)
	c.log.Debug(config.MsgWeekChanged, config.LogKeyOffset, c.offset)
	return c.offset
}

func (c *Controller) shift(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += delta
	c.generation.Add(1)
	c.log.Debug(config.MsgWeekChanged, config.LogKeyOffset, c.offset)
	return c.offset
}

// Generation returns the current navigation generation. Renderers compare
// it against WeekView.Generation to drop stale fetch results.
func (c *Controller) Generation() uint64 {
	return c.generation.Load()
}

// Refresh fetches and lays out the week for the current offset. It never
// returns an error: fetch failures are folded into the view's NoCalendars
// and Err fields so the renderer can show the right empty state. A
// navigation that happens mid-fetch is handled by the caller via the
// generation check; the stale result is simply discarded.
func (c *Controller) Refresh(ctx context.Context) WeekView {
	gen := c.generation.Load()

	c.mu.Lock()
	offset := c.offset
	c.mu.Unlock()

	now := c.clock.Now()
	window := layout.Week(now, offset)
	p := c.prefs.Snapshot()

	view := WeekView{
		Generation: gen,
		Window:     window,
		Title:      c.title(window),
		Headers:    c.headers(window, now, offset),
	}

	events, err := c.fetcher.FetchWeek(ctx, window, p.Hidden)
	if err != nil {
		if errors.Is(err, source.ErrNoCalendars) {
			view.NoCalendars = true
		} else {
			view.Err = err
		}
		view.Layout = layout.Layout(nil, window, layout.Options{})
		return view
	}

	view.Calendars = c.ensureColors(ctx)
	colors := c.prefs.Snapshot().Colors
	for i := range events {
		if events[i].Color == "" {
			events[i].Color = colors[events[i].CalendarID]
		}
	}

	view.Layout = layout.Layout(events, window, layout.Options{
		TrimUnusedHours: p.TrimHours,
	})
	view.Now = view.Layout.NowIndicator(now)
	return view
}

// ensureColors assigns palette colors to any discovered calendar that has
// none yet and returns the discovered list for the settings UI.
func (c *Controller) ensureColors(ctx context.Context) []source.Descriptor {
	cals, err := c.fetcher.Discover(ctx)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(cals))
	for _, cal := range cals {
		ids = append(ids, cal.EntityID)
	}
	if err := c.prefs.EnsureColors(ids); err != nil {
		c.log.Warn(config.ErrStoreWrite, config.LogKeyError, err)
	}
	return cals
}

// Tick recomputes only the now-indicator against an existing layout. The
// renderer calls it once a minute; it never re-fetches.
func (c *Controller) Tick(week layout.WeekLayout) layout.Indicator {
	return week.NowIndicator(c.clock.Now())
}

// SetLanguage routes a language change to both the preference store and
// the localization resolver.
func (c *Controller) SetLanguage(pref string) error {
	err := c.prefs.SetLanguage(pref)
	c.i18n.SetLanguage(pref)
	return err
}

// OpenSettings switches the view to the settings dialog.
func (c *Controller) OpenSettings() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = DialogSettings
	c.selected = nil
}

// OpenDetails switches the view to the event-details dialog.
func (c *Controller) OpenDetails(ev layout.DisplayEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = DialogDetails
	c.selected = &ev
}

// CloseDialog returns the view to the plain grid.
func (c *Controller) CloseDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = DialogNone
	c.selected = nil
}

// Dialog returns the current modal state.
func (c *Controller) Dialog() Dialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialog
}

// Selected returns the event shown in the details dialog, if any.
func (c *Controller) Selected() *layout.DisplayEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

func (c *Controller) title(window layout.WeekWindow) string {
	return c.i18n.Tf(config.TKeyWeekOf, map[string]any{
		"Date": window.Monday.Format("2006-01-02"),
	})
}

// weekdayKeys maps a Monday-based day index to its translation key.
var weekdayKeys = [layout.DaysPerWeek]string{
	config.TKeyDayMon,
	config.TKeyDayTue,
	config.TKeyDayWed,
	config.TKeyDayThu,
	config.TKeyDayFri,
	config.TKeyDaySat,
	config.TKeyDaySun,
}

func (c *Controller) headers(window layout.WeekWindow, now time.Time, offset int) [layout.DaysPerWeek]DayHeader {
	var out [layout.DaysPerWeek]DayHeader
	today := layout.Midnight(now)
	for i := 0; i < layout.DaysPerWeek; i++ {
		date := window.Day(i)
		out[i] = DayHeader{
			Date:    date,
			Label:   c.i18n.T(weekdayKeys[i]) + " " + strconv.Itoa(date.Day()),
			IsToday: offset == 0 && date.Equal(today),
		}
	}
	return out
}
