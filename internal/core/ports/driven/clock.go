package driven

import "time"

// Clock abstracts time for deterministic TTL and timestamp testing.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
