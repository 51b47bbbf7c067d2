package clock

import "time"

// Clock supplies the current time. The booking horizon is computed from it,
// so services take a Clock instead of calling time.Now directly.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// New returns a Clock backed by the system time.
func New() Clock {
	return systemClock{}
}

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	Time time.Time
}

func (f Fixed) Now() time.Time { return f.Time }
