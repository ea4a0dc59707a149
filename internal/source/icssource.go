package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/weekgrid/internal/config"
)

// ICSClient implements Client over a fixed set of ICS feeds, keyed by
// calendar ID. Feed values are http(s) URLs or local file paths. It covers
// static subscriptions; recurrence expansion is out of scope, so only
// concrete VEVENT instances inside the requested range are returned.
type ICSClient struct {
	// Feeds maps calendar IDs to ICS locations.
	Feeds map[string]string

	Client *http.Client
}

// NewICSClient creates an ICSClient with the configured timeout.
func NewICSClient(feeds map[string]string) *ICSClient {
	return &ICSClient{
		Feeds:  feeds,
		Client: &http.Client{Timeout: config.HTTPTimeout},
	}
}

func (c *ICSClient) ListCalendars(ctx context.Context) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(c.Feeds))
	for id := range c.Feeds {
		out = append(out, Descriptor{EntityID: id, DisplayName: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out, nil
}

func (c *ICSClient) FetchEvents(ctx context.Context, calendarID string, start, end time.Time) ([]RawEvent, error) {
	location, ok := c.Feeds[calendarID]
	if !ok {
		// Phrased so the adapter classifies it as a removed calendar.
		return nil, fmt.Errorf("no calendar with id %q", calendarID)
	}

	body, err := c.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	cal, err := ical.NewDecoder(body).Decode()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDecodeICS, err)
	}

	loc := start.Location()
	var out []RawEvent
	for _, ev := range cal.Events() {
		raw, ok := rawFromVEvent(ev, loc)
		if !ok {
			continue
		}
		evStart, evEnd, ok := rawRange(raw, loc)
		if !ok || !evStart.Before(end) || !evEnd.After(start) {
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}

func (c *ICSClient) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, config.SchemeHTTP+"://") ||
		strings.HasPrefix(location, config.SchemeHTTPS+"://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set(config.HeaderUserAgent, config.UserAgent)
		resp, err := c.Client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
		}
		return resp.Body, nil
	}
	return os.Open(location)
}

// rawFromVEvent converts one VEVENT into the wire record shape, preserving
// the date-only vs timestamp distinction.
func rawFromVEvent(ev ical.Event, loc *time.Location) (RawEvent, bool) {
	startProp := ev.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return RawEvent{}, false
	}

	start, err := ev.DateTimeStart(loc)
	if err != nil {
		return RawEvent{}, false
	}
	end, err := ev.DateTimeEnd(loc)
	if err != nil || end.IsZero() {
		end = start
	}

	dateOnly := startProp.Params.Get(ical.ParamValue) == string(ical.ValueDate)

	raw := RawEvent{}
	if dateOnly {
		raw.Start = RawTime{Date: start.Format(dateOnlyLayout)}
		raw.End = RawTime{Date: end.Format(dateOnlyLayout)}
	} else {
		raw.Start = RawTime{DateTime: start.Format(time.RFC3339)}
		raw.End = RawTime{DateTime: end.Format(time.RFC3339)}
	}

	if p := ev.Props.Get(ical.PropSummary); p != nil {
		raw.Summary = p.Value
	}
	if p := ev.Props.Get(ical.PropLocation); p != nil {
		raw.Location = p.Value
	}
	if p := ev.Props.Get(ical.PropDescription); p != nil {
		raw.Description = p.Value
	}
	if p := ev.Props.Get(ical.PropColor); p != nil {
		raw.Color = p.Value
	}
	return raw, true
}

func rawRange(raw RawEvent, loc *time.Location) (time.Time, time.Time, bool) {
	start, _, ok := parseBoundary(raw.Start, loc)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, _, ok := parseBoundary(raw.End, loc)
	if !ok {
		end = start.Add(time.Minute)
	}
	if !end.After(start) {
		end = start.Add(time.Minute)
	}
	return start, end, true
}
