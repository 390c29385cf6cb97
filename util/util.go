package util

import "time"

// SkipThrottler lets through at most one event every d, and skips the rest.
type SkipThrottler struct {
	d    time.Duration
	last time.Time
	now  func() time.Time
}

func NewSkipThrottler(d time.Duration) *SkipThrottler {
	tt := &SkipThrottler{d: d, now: time.Now}
	return tt
}

// Ok reports whether an event at the current time should be let through.
// The first event is always let through.
func (tt *SkipThrottler) Ok() bool {
	now := tt.now()
	if !tt.last.IsZero() && now.Before(tt.last.Add(tt.d)) {
		return false
	}

	tt.last = now
	return true
}
