package source

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoCalendars signals the distinct "no calendars available" state, as
// opposed to a valid week with zero events.
var ErrNoCalendars = errors.New("source: no calendars available")

// StatusError carries an HTTP status from a backend.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("source: server returned %s", e.Status)
	}
	return fmt.Sprintf("source: server returned status %d", e.Code)
}

// removedPatterns are the message fragments that classify a failure as
// "calendar no longer exists" when no HTTP status is available.
var removedPatterns = []string{
	"not found",
	"no calendar",
	"unable to find",
	"bad request",
}

// IsCalendarRemoved classifies a fetch failure. HTTP 400/404 and the known
// message patterns mean the calendar itself became unavailable and the
// calendar list should be re-discovered; anything else is transient.
func IsCalendarRemoved(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code == http.StatusBadRequest || statusErr.Code == http.StatusNotFound {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range removedPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
