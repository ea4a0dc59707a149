package source

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/tartampluch/weekgrid/internal/config"
	"github.com/tartampluch/weekgrid/internal/event"
	"github.com/tartampluch/weekgrid/internal/layout"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Client is the event-source collaborator: a backend that lists calendars
// and delivers raw event records for a date range.
type Client interface {
	ListCalendars(ctx context.Context) ([]Descriptor, error)
	FetchEvents(ctx context.Context, calendarID string, start, end time.Time) ([]RawEvent, error)
}

// Snapshot is the live-state collaborator: a synchronous view of currently
// known calendar entities and friendly names. It serves only as a fallback
// during initial discovery, never during error-driven refresh.
type Snapshot interface {
	Calendars() []Descriptor
}

// Adapter discovers calendars and fetches events for week windows.
type Adapter struct {
	// Client must be set. Snapshot is optional.
	Client   Client
	Snapshot Snapshot

	// Entities is the explicit caller-supplied calendar list. When
	// non-empty, backend discovery is skipped entirely.
	Entities []string

	mu         sync.Mutex
	available  []Descriptor
	discovered bool

	flight singleflight.Group
}

// Available returns the cached calendar list from the last discovery.
func (a *Adapter) Available() []Descriptor {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Descriptor, len(a.available))
	copy(out, a.available)
	return out
}

// Invalidate drops the cached calendar list; the next Discover call hits
// the backend again. Hosts call this on state-change signals.
func (a *Adapter) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.available = nil
	a.discovered = false
}

// Discover returns the available calendars, from cache when possible.
// Concurrent callers share a single underlying backend call. When the
// backend fails during this initial discovery, the live-state snapshot
// fills in, if present.
func (a *Adapter) Discover(ctx context.Context) ([]Descriptor, error) {
	a.mu.Lock()
	if a.discovered {
		cached := make([]Descriptor, len(a.available))
		copy(cached, a.available)
		a.mu.Unlock()
		return cached, nil
	}
	a.mu.Unlock()

	result, err, _ := a.flight.Do("discover", func() (any, error) {
		return a.discover(ctx, true)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Descriptor), nil
}

// Refresh re-discovers the calendar list, bypassing the cache. It is the
// error-driven path and deliberately never falls back to the snapshot:
// stale state data must not mask a removed calendar.
func (a *Adapter) Refresh(ctx context.Context) ([]Descriptor, error) {
	result, err, _ := a.flight.Do("refresh", func() (any, error) {
		return a.discover(ctx, false)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Descriptor), nil
}

func (a *Adapter) discover(ctx context.Context, allowSnapshot bool) ([]Descriptor, error) {
	if allowSnapshot {
		// A caller that lost the race between the cache check and the
		// flight must not trigger a second backend call.
		a.mu.Lock()
		if a.discovered {
			cached := make([]Descriptor, len(a.available))
			copy(cached, a.available)
			a.mu.Unlock()
			return cached, nil
		}
		a.mu.Unlock()
	}

	log := slog.With(config.LogKeyComponent, config.CompSource)

	var list []Descriptor
	if len(a.Entities) > 0 {
		// Explicit entity list: no backend discovery at all.
		for _, id := range a.Entities {
			list = append(list, Descriptor{EntityID: id})
		}
		list = a.mergeSnapshotNames(list)
	} else {
		if a.Client == nil {
			return nil, errors.New(config.ErrNoClient)
		}
		log.Debug(config.MsgDiscoverStart)
		apiList, err := a.Client.ListCalendars(ctx)
		if err != nil {
			if !allowSnapshot || a.Snapshot == nil {
				log.Warn(config.MsgDiscoverFail, config.LogKeyError, err)
				return nil, err
			}
			log.Warn(config.MsgSnapshotUsed, config.LogKeyError, err)
			apiList = a.Snapshot.Calendars()
		}
		list = a.mergeSnapshotNames(apiList)
	}

	a.mu.Lock()
	a.available = list
	a.discovered = true
	a.mu.Unlock()

	cached := make([]Descriptor, len(list))
	copy(cached, list)
	return cached, nil
}

// mergeSnapshotNames fills missing display names from the snapshot. API
// names take precedence; entries with no snapshot match pass through
// unchanged.
func (a *Adapter) mergeSnapshotNames(list []Descriptor) []Descriptor {
	if a.Snapshot == nil {
		return list
	}
	names := make(map[string]string)
	for _, d := range a.Snapshot.Calendars() {
		names[d.EntityID] = d.DisplayName
	}
	out := make([]Descriptor, 0, len(list))
	for _, d := range list {
		if d.DisplayName == "" {
			d.DisplayName = names[d.EntityID]
		}
		out = append(out, d)
	}
	return out
}

// FetchWeek fetches events for every visible calendar of the window,
// concurrently. Per-calendar failures are logged and isolated. A failure
// classified as "calendar removed" triggers one re-discovery, and when the
// recovered list differs the whole cycle restarts exactly once; further
// removed-failures in the retried cycle are treated as transient. When
// every visible calendar failed as removed and no events were collected,
// ErrNoCalendars is returned instead of an empty week.
func (a *Adapter) FetchWeek(ctx context.Context, window layout.WeekWindow, hidden map[string]bool) ([]event.Event, error) {
	return a.fetchWeek(ctx, window, hidden, false)
}

func (a *Adapter) fetchWeek(ctx context.Context, window layout.WeekWindow, hidden map[string]bool, retried bool) ([]event.Event, error) {
	log := slog.With(config.LogKeyComponent, config.CompSource)

	if a.Client == nil {
		return nil, errors.New(config.ErrNoClient)
	}

	cals, err := a.Discover(ctx)
	if err != nil {
		return nil, err
	}
	if len(cals) == 0 {
		return nil, ErrNoCalendars
	}

	var visible []Descriptor
	for _, c := range cals {
		if !hidden[c.EntityID] {
			visible = append(visible, c)
		}
	}
	if len(visible) == 0 {
		// Everything is hidden: a valid, empty week.
		return nil, nil
	}

	loc := window.Monday.Location()
	start := window.Start()
	end := window.End()

	events := make([][]event.Event, len(visible))
	errs := make([]error, len(visible))

	began := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i, cal := range visible {
		i, cal := i, cal
		g.Go(func() error {
			raws, err := a.Client.FetchEvents(gctx, cal.EntityID, start, end)
			if err != nil {
				// Isolated per calendar; siblings keep going.
				errs[i] = err
				log.Warn(config.MsgFetchFailed,
					config.LogKeyCalendar, cal.EntityID,
					config.LogKeyError, err,
				)
				return nil
			}
			normalized := make([]event.Event, 0, len(raws))
			for _, raw := range raws {
				if ev, ok := Normalize(raw, cal.EntityID, loc); ok {
					normalized = append(normalized, ev)
				}
			}
			events[i] = normalized
			return nil
		})
	}
	// Goroutines never return errors; Wait only joins them.
	_ = g.Wait()
	log.Debug(config.MsgWeekFetched,
		config.LogKeyCount, len(visible),
		config.LogKeyDuration, time.Since(began).Milliseconds(),
	)

	removed := 0
	var all []event.Event
	for i := range visible {
		if errs[i] != nil && IsCalendarRemoved(errs[i]) {
			removed++
			log.Warn(config.MsgCalRemoved, config.LogKeyCalendar, visible[i].EntityID)
		}
		all = append(all, events[i]...)
	}

	if removed > 0 && !retried {
		refreshed, err := a.Refresh(ctx)
		if err == nil && !sameEntityIDs(refreshed, cals) {
			log.Info(config.MsgFetchRestart, config.LogKeyCount, len(refreshed))
			return a.fetchWeek(ctx, window, hidden, true)
		}
	}

	if removed == len(visible) && len(all) == 0 {
		return nil, ErrNoCalendars
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Start.Before(all[j].Start)
	})
	return all, nil
}

func sameEntityIDs(a, b []Descriptor) bool {
	if len(a) != len(b) {
		return false
	}
	ids := make(map[string]bool, len(a))
	for _, d := range a {
		ids[d.EntityID] = true
	}
	for _, d := range b {
		if !ids[d.EntityID] {
			return false
		}
	}
	return true
}
