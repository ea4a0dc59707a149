package app

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The controller uses it to anchor week windows and the "today" flag.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
