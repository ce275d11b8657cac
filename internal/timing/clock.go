// Package timing provides the measurement primitives for codecbench: a
// clock abstraction with tick-edge alignment and a calibrated loop that
// repeats an operation until a minimum wall-clock window has elapsed.
package timing

import (
	"time"
)

// Clock is the counter the calibrated loop measures against. Readings are
// opaque durations; only Span may be used to compare them, because legacy
// counters wrap around.
type Clock interface {
	// Now returns the current counter reading.
	Now() time.Duration

	// Span returns the elapsed time since start, correcting for counter
	// wraparound. The result is never negative.
	Span(start time.Duration) time.Duration
}

// monotonicClock reads the Go runtime's monotonic clock. This is the
// default on every supported platform.
type monotonicClock struct {
	base time.Time
}

// NewMonotonicClock returns the default sub-millisecond clock.
func NewMonotonicClock() Clock {
	return &monotonicClock{base: time.Now()}
}

func (c *monotonicClock) Now() time.Duration {
	return time.Since(c.base)
}

func (c *monotonicClock) Span(start time.Duration) time.Duration {
	d := c.Now() - start
	if d < 0 {
		// Monotonic readings cannot regress; guard anyway so a broken
		// injected base never yields a negative span.
		d = 0
	}
	return d
}

// legacyRollover is the modulus of the millisecond counter used on
// platforms without sub-millisecond timers: the counter wraps every
// 0x100000 seconds (~12.1 days).
const legacyRollover = time.Duration(0x100000*1000) * time.Millisecond

// legacyMillisClock emulates a coarse millisecond counter with periodic
// rollover. Kept for platforms lacking sub-millisecond timers and used by
// tests to exercise the wraparound correction.
type legacyMillisClock struct {
	millis func() int64
}

// NewLegacyMillisClock returns a coarse clock backed by the given
// millisecond source. A nil source reads wall-clock milliseconds.
func NewLegacyMillisClock(millis func() int64) Clock {
	if millis == nil {
		millis = func() int64 { return time.Now().UnixMilli() }
	}
	return &legacyMillisClock{millis: millis}
}

func (c *legacyMillisClock) Now() time.Duration {
	ms := c.millis() % int64(legacyRollover/time.Millisecond)
	return time.Duration(ms) * time.Millisecond
}

func (c *legacyMillisClock) Span(start time.Duration) time.Duration {
	d := c.Now() - start
	if d < 0 {
		d += legacyRollover
	}
	return d
}

// AlignToTick busy-waits until the clock's reading changes, then returns
// the fresh reading. Starting a measurement on a tick boundary avoids
// undercounting a partial first tick on coarse clocks.
func AlignToTick(c Clock) time.Duration {
	start := c.Now()
	for c.Now() == start {
	}
	return c.Now()
}
