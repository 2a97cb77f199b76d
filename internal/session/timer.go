// Package session tracks study time and goal progress for one reading day.
package session

import (
	"fmt"
	"time"
)

// Clock is the time source of a Timer.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock, including its monotonic reading.
var SystemClock Clock = systemClock{}

// Timer counts whole seconds since it was created. It never pauses.
type Timer struct {
	clock   Clock
	started time.Time
}

// NewTimer starts a timer on clock. A nil clock uses SystemClock.
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock
	}
	return &Timer{clock: clock, started: clock.Now()}
}

// Read returns the elapsed whole seconds.
func (t *Timer) Read() int {
	elapsed := t.clock.Now().Sub(t.started)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Second)
}

// FormatElapsed renders seconds as "Xm YYs".
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dm %02ds", seconds/60, seconds%60)
}
