package source_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/weekgrid/internal/source"
)

func TestNormalize_AllDayDetection(t *testing.T) {
	loc := time.UTC

	// Date-only boundaries: all-day, one-day span.
	ev, ok := source.Normalize(source.RawEvent{
		Summary: "Holiday",
		Start:   source.RawTime{Date: "2024-01-01"},
		End:     source.RawTime{Date: "2024-01-02"},
	}, "cal.a", loc)
	require.True(t, ok)
	assert.True(t, ev.AllDay)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, loc), ev.Start)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, loc), ev.End)

	// Midnight-to-midnight timestamps spanning >= 24h: all-day too.
	ev, ok = source.Normalize(source.RawEvent{
		Summary: "Conference",
		Start:   source.RawTime{DateTime: "2024-01-01T00:00:00"},
		End:     source.RawTime{DateTime: "2024-01-03T00:00:00"},
	}, "cal.a", loc)
	require.True(t, ok)
	assert.True(t, ev.AllDay)
	assert.Equal(t, 48*time.Hour, ev.Duration())

	// A timed midnight start under 24h stays timed.
	ev, ok = source.Normalize(source.RawEvent{
		Summary: "Late show",
		Start:   source.RawTime{DateTime: "2024-01-01T00:00:00"},
		End:     source.RawTime{DateTime: "2024-01-01T02:00:00"},
	}, "cal.a", loc)
	require.True(t, ok)
	assert.False(t, ev.AllDay)
}

func TestNormalize_DegenerateInterval(t *testing.T) {
	// End before start is clamped to one minute past start.
	ev, ok := source.Normalize(source.RawEvent{
		Summary: "Glitch",
		Start:   source.RawTime{DateTime: "2024-01-01T10:00:00"},
		End:     source.RawTime{DateTime: "2024-01-01T09:00:00"},
	}, "cal.a", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Minute, ev.Duration())

	// A missing end yields the same minimum duration.
	ev, ok = source.Normalize(source.RawEvent{
		Summary: "Point",
		Start:   source.RawTime{DateTime: "2024-01-01T10:00:00"},
	}, "cal.a", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Minute, ev.Duration())

	// A date-only start with no end covers the whole day, ending at the
	// next midnight.
	ev, ok = source.Normalize(source.RawEvent{
		Summary: "Anniversary",
		Start:   source.RawTime{Date: "2024-01-01"},
	}, "cal.a", time.UTC)
	require.True(t, ok)
	assert.True(t, ev.AllDay)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ev.End)
}

func TestNormalize_UntitledAndColor(t *testing.T) {
	ev, ok := source.Normalize(source.RawEvent{
		Summary: "   ",
		Start:   source.RawTime{DateTime: "2024-01-01T10:00:00"},
		End:     source.RawTime{DateTime: "2024-01-01T11:00:00"},
		Color:   float64(0xff8800), // JSON numbers decode as float64
	}, "cal.a", time.UTC)
	require.True(t, ok)
	assert.True(t, ev.Untitled)
	assert.Equal(t, "", ev.Title)
	assert.Equal(t, "#ff8800", ev.Color)

	ev, ok = source.Normalize(source.RawEvent{
		Summary: "Colored",
		Start:   source.RawTime{DateTime: "2024-01-01T10:00:00"},
		End:     source.RawTime{DateTime: "2024-01-01T11:00:00"},
		Color:   "rgb(255, 0, 0)",
	}, "cal.a", time.UTC)
	require.True(t, ok)
	assert.Equal(t, "#ff0000", ev.Color)
}

func TestNormalize_UnparseableBoundariesDropped(t *testing.T) {
	_, ok := source.Normalize(source.RawEvent{
		Summary: "Broken",
		Start:   source.RawTime{Date: "not-a-date"},
	}, "cal.a", time.UTC)
	assert.False(t, ok)

	_, ok = source.Normalize(source.RawEvent{Summary: "Empty"}, "cal.a", time.UTC)
	assert.False(t, ok)
}

func TestIsCalendarRemoved(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"HTTP 404", &source.StatusError{Code: 404}, true},
		{"HTTP 400", &source.StatusError{Code: 400}, true},
		{"HTTP 500", &source.StatusError{Code: 500}, false},
		{"not found message", assert.AnError, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, source.IsCalendarRemoved(tt.err))
		})
	}

	assert.True(t, source.IsCalendarRemoved(errString("entity Not Found")))
	assert.True(t, source.IsCalendarRemoved(errString("there is no calendar with that id")))
	assert.True(t, source.IsCalendarRemoved(errString("Unable to find component")))
	assert.True(t, source.IsCalendarRemoved(errString("400 Bad Request")))
	assert.False(t, source.IsCalendarRemoved(errString("connection refused")))
}

type errString string

func (e errString) Error() string { return string(e) }
