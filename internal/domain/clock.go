package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps generated views. Tests replace it with a fake through SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the view clock; nil restores the wall clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time in UTC from the package clock.
func Now() time.Time {
	return clock.Now().UTC()
}
