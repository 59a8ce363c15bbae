// Package clock abstracts wall time so drivers can be tested without sleeping.
package clock

import "time"

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

// Now returns the current time using the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FakeClock is a manually driven Clock.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (f *FakeClock) Now() time.Time {
	return f.now
}

func (f *FakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *FakeClock) Set(t time.Time) {
	f.now = t
}

// Stopwatch reports the seconds elapsed between successive laps.
type Stopwatch struct {
	clk  Clock
	last time.Time
}

// NewStopwatch starts a stopwatch at clk's current time.
func NewStopwatch(clk Clock) *Stopwatch {
	return &Stopwatch{clk: clk, last: clk.Now()}
}

// Lap returns the seconds since the previous lap (or since creation) and
// restarts the count. A clock that moves backwards yields 0.
func (s *Stopwatch) Lap() float64 {
	now := s.clk.Now()
	dt := now.Sub(s.last).Seconds()
	s.last = now
	if dt < 0 {
		return 0
	}
	return dt
}
