package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/weekgrid/internal/app"
	"github.com/tartampluch/weekgrid/internal/config"
	"github.com/tartampluch/weekgrid/internal/event"
	"github.com/tartampluch/weekgrid/internal/i18n"
	"github.com/tartampluch/weekgrid/internal/layout"
	"github.com/tartampluch/weekgrid/internal/prefs"
	"github.com/tartampluch/weekgrid/internal/source"
	"github.com/tartampluch/weekgrid/internal/store"
)

// mockClock returns a fixed instant for deterministic windows.
type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time { return m.now }

// fakeFetcher serves canned events and records the windows it was asked
// for.
type fakeFetcher struct {
	calendars []source.Descriptor
	events    []event.Event
	err       error
	windows   []layout.WeekWindow
}

func (f *fakeFetcher) FetchWeek(_ context.Context, window layout.WeekWindow, hidden map[string]bool) ([]event.Event, error) {
	f.windows = append(f.windows, window)
	if f.err != nil {
		return nil, f.err
	}
	var out []event.Event
	for _, ev := range f.events {
		if !hidden[ev.CalendarID] && ev.Overlaps(window.Start(), window.End()) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeFetcher) Discover(_ context.Context) ([]source.Descriptor, error) {
	return f.calendars, nil
}

// wednesday is mid-week so both navigation directions stay in range.
var wednesday = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

func newController(f *fakeFetcher) (*app.Controller, *prefs.Manager) {
	p := prefs.NewManager(store.NewMemory())
	p.ApplyConfig(&config.File{})
	res := i18n.NewResolver(config.DefaultLanguage)
	res.SystemLanguages = func() []string { return nil }
	return app.NewController(&mockClock{now: wednesday}, f, p, res), p
}

func TestController_Navigation(t *testing.T) {
	c, _ := newController(&fakeFetcher{calendars: []source.Descriptor{{EntityID: "cal.a"}}})

	assert.Equal(t, 0, c.Offset())
	assert.Equal(t, 1, c.Next())
	assert.Equal(t, 2, c.Next())
	assert.Equal(t, 1, c.Prev())
	assert.Equal(t, 0, c.Today())

	view := c.Refresh(context.Background())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), view.Window.Monday)
}

func TestController_GenerationInvalidatesStaleViews(t *testing.T) {
	c, _ := newController(&fakeFetcher{calendars: []source.Descriptor{{EntityID: "cal.a"}}})

	view := c.Refresh(context.Background())
	assert.Equal(t, c.Generation(), view.Generation)

	// Navigating mid-flight makes the earlier view stale.
	c.Next()
	assert.NotEqual(t, c.Generation(), view.Generation)

	fresh := c.Refresh(context.Background())
	assert.Equal(t, c.Generation(), fresh.Generation)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), fresh.Window.Monday)
}

func TestController_HeadersMarkOnlyRealToday(t *testing.T) {
	c, _ := newController(&fakeFetcher{calendars: []source.Descriptor{{EntityID: "cal.a"}}})

	view := c.Refresh(context.Background())
	for i, h := range view.Headers {
		assert.Equal(t, i == 2, h.IsToday, "day %d", i) // Wednesday
	}
	assert.Equal(t, "Mon 1", view.Headers[0].Label)
	assert.Equal(t, "Sun 7", view.Headers[6].Label)
	assert.Equal(t, "Week of 2024-01-01", view.Title)

	// Any other week has no today at all.
	c.Next()
	view = c.Refresh(context.Background())
	for i, h := range view.Headers {
		assert.False(t, h.IsToday, "day %d", i)
	}
}

func TestController_RefreshAppliesPreferenceColors(t *testing.T) {
	f := &fakeFetcher{
		calendars: []source.Descriptor{{EntityID: "cal.a"}},
		events: []event.Event{{
			CalendarID: "cal.a",
			Title:      "Standup",
			Start:      time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
			End:        time.Date(2024, 1, 3, 9, 30, 0, 0, time.UTC),
		}},
	}
	c, p := newController(f)
	require.NoError(t, p.SetColor("cal.a", "#336699"))

	view := c.Refresh(context.Background())
	require.Len(t, view.Layout.Days[2].Timed, 1)
	assert.Equal(t, "#336699", view.Layout.Days[2].Timed[0].Event.Color)
}

func TestController_RefreshAssignsPaletteGaps(t *testing.T) {
	f := &fakeFetcher{calendars: []source.Descriptor{
		{EntityID: "cal.a"},
		{EntityID: "cal.b"},
	}}
	c, p := newController(f)

	c.Refresh(context.Background())
	colors := p.Snapshot().Colors
	assert.NotEmpty(t, colors["cal.a"])
	assert.NotEmpty(t, colors["cal.b"])
	assert.NotEqual(t, colors["cal.a"], colors["cal.b"])
}

func TestController_RefreshClassifiesEmptyStates(t *testing.T) {
	c, _ := newController(&fakeFetcher{err: source.ErrNoCalendars})
	view := c.Refresh(context.Background())
	assert.True(t, view.NoCalendars)
	assert.NoError(t, view.Err)

	transient := errors.New("backend unreachable")
	c, _ = newController(&fakeFetcher{err: transient})
	view = c.Refresh(context.Background())
	assert.False(t, view.NoCalendars)
	assert.ErrorIs(t, view.Err, transient)
}

func TestController_RefreshHonorsHiddenCalendars(t *testing.T) {
	f := &fakeFetcher{
		calendars: []source.Descriptor{{EntityID: "cal.a"}, {EntityID: "cal.b"}},
		events: []event.Event{
			{
				CalendarID: "cal.a",
				Title:      "Visible",
				Start:      time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
				End:        time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC),
			},
			{
				CalendarID: "cal.b",
				Title:      "Hidden",
				Start:      time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
				End:        time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC),
			},
		},
	}
	c, p := newController(f)
	require.NoError(t, p.SetHidden("cal.b", true))

	view := c.Refresh(context.Background())
	require.Len(t, view.Layout.Days[2].Timed, 1)
	assert.Equal(t, "Visible", view.Layout.Days[2].Timed[0].Event.Title)
}

func TestController_TickRecomputesIndicatorOnly(t *testing.T) {
	f := &fakeFetcher{calendars: []source.Descriptor{{EntityID: "cal.a"}}}
	c, _ := newController(f)

	view := c.Refresh(context.Background())
	fetches := len(f.windows)

	ind := c.Tick(view.Layout)
	assert.True(t, ind.Visible)
	assert.Equal(t, 2, ind.DayIndex)
	assert.Equal(t, len(f.windows), fetches)

	// In a different displayed week the indicator disappears.
	c.Next()
	other := c.Refresh(context.Background())
	ind = c.Tick(other.Layout)
	assert.False(t, ind.Visible)
}

func TestController_DialogState(t *testing.T) {
	c, _ := newController(&fakeFetcher{})

	assert.Equal(t, app.DialogNone, c.Dialog())

	c.OpenSettings()
	assert.Equal(t, app.DialogSettings, c.Dialog())
	assert.Nil(t, c.Selected())

	ev := layout.DisplayEvent{Event: event.Event{Title: "Standup"}}
	c.OpenDetails(ev)
	assert.Equal(t, app.DialogDetails, c.Dialog())
	require.NotNil(t, c.Selected())
	assert.Equal(t, "Standup", c.Selected().Event.Title)

	c.CloseDialog()
	assert.Equal(t, app.DialogNone, c.Dialog())
	assert.Nil(t, c.Selected())
}

func TestController_SetLanguageUpdatesResolver(t *testing.T) {
	p := prefs.NewManager(store.NewMemory())
	p.ApplyConfig(&config.File{})
	res := i18n.NewResolver(config.DefaultLanguage)
	res.SystemLanguages = func() []string { return nil }
	c := app.NewController(&mockClock{now: wednesday}, &fakeFetcher{}, p, res)

	require.NoError(t, c.SetLanguage("fr"))
	assert.Equal(t, "fr", res.Active())
	assert.Equal(t, "fr", p.Snapshot().Language)
}
