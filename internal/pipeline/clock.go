package pipeline

import "github.com/jonboulle/clockwork"

// clock is the time source for run timestamps and fetch durations.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
