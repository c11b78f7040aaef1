package study

import "time"

// Clock abstracts time for the timer and result timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock. Its readings carry Go's monotonic
// component, so elapsed times are immune to clock adjustments.
func SystemClock() Clock { return systemClock{} }

// Timer is a stopwatch for one active trial.
type Timer struct {
	clock   Clock
	started time.Time
	running bool
}

// NewTimer creates a stopped timer.
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock()
	}
	return &Timer{clock: clock}
}

// Start records the start reading, discarding any previous one.
func (t *Timer) Start() {
	t.started = t.clock.Now()
	t.running = true
}

// StopAndMeasure stops the timer and returns elapsed milliseconds with
// sub-millisecond precision. ok is false if the timer was not running.
func (t *Timer) StopAndMeasure() (ms float64, ok bool) {
	if !t.running {
		return 0, false
	}
	elapsed := t.clock.Now().Sub(t.started)
	t.running = false
	if elapsed < 0 {
		elapsed = 0
	}
	return float64(elapsed) / float64(time.Millisecond), true
}

// Running reports whether the timer is started.
func (t *Timer) Running() bool {
	return t.running
}

// StartedAt returns the start reading of the running timer.
func (t *Timer) StartedAt() time.Time {
	return t.started
}
