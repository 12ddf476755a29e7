package providers

import "time"

// Clock is the only source of wall-clock time for cache expiry and streak dates.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func NewClockProvider() Clock {
	return systemClock{}
}
