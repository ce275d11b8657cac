package timing

import (
	"time"
)

// Trial is the outcome of one calibrated trial.
type Trial struct {
	// PerPass is the average duration of one pass: elapsed / passes.
	PerPass time.Duration
	// Passes is the number of completed passes; always at least 1.
	Passes int
	// Elapsed is the total measured span of the trial.
	Elapsed time.Duration
}

// Loop repeats an operation until a minimum elapsed window, yielding a
// per-pass average. Callers run several trials and keep the minimum:
// scheduler jitter only ever slows a pass down, never speeds it up below
// true throughput.
type Loop struct {
	clock  Clock
	window time.Duration
}

// NewLoop creates a calibrated loop over the given clock. window is the
// minimum elapsed duration of one trial.
func NewLoop(clock Clock, window time.Duration) *Loop {
	if clock == nil {
		clock = NewMonotonicClock()
	}
	return &Loop{clock: clock, window: window}
}

// Run performs one calibrated trial: align to a tick edge, then execute
// pass repeatedly until the window has elapsed. The pass always executes
// at least once, so the per-pass average is never a division by zero.
// A pass error aborts the trial immediately.
func (l *Loop) Run(pass func() error) (Trial, error) {
	start := AlignToTick(l.clock)

	passes := 0
	for {
		if err := pass(); err != nil {
			return Trial{}, err
		}
		passes++
		if l.clock.Span(start) >= l.window {
			break
		}
	}

	elapsed := l.clock.Span(start)
	return Trial{
		PerPass: elapsed / time.Duration(passes),
		Passes:  passes,
		Elapsed: elapsed,
	}, nil
}

// MinPerPass returns the smaller of a running best and a new trial's
// per-pass average. A zero best is treated as unset.
func MinPerPass(best time.Duration, trial Trial) time.Duration {
	if best == 0 || trial.PerPass < best {
		return trial.PerPass
	}
	return best
}

// ThroughputMBps converts bytes processed per pass and a per-pass duration
// into decimal (1000-based) megabytes per second.
func ThroughputMBps(bytes int64, perPass time.Duration) float64 {
	if perPass <= 0 {
		return 0
	}
	return float64(bytes) / perPass.Seconds() / 1e6
}
