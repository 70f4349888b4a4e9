// Package clk provides a hw.TickSource backed by the system clock.
package clk

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/robotalks/softserial.go/pkg/hw"
)

// Source implements hw.TickSource over a benbjohnson clock, so tests
// can substitute a mock clock and drive time explicitly.
type Source struct {
	clock clock.Clock
	epoch time.Time
}

// New creates a Source over the real system clock.
func New() *Source {
	return With(clock.New())
}

// With creates a Source over the given clock.
func With(c clock.Clock) *Source {
	return &Source{clock: c, epoch: c.Now()}
}

// Now implements hw.TickSource.
func (s *Source) Now() hw.Tick {
	return hw.Tick(s.clock.Since(s.epoch) / time.Microsecond)
}

// Elapsed implements hw.TickSource. Subtraction on the 32-bit counter
// keeps it correct across wraparound.
func (s *Source) Elapsed(start, end hw.Tick) time.Duration {
	return time.Duration(end-start) * time.Microsecond
}

// Delay implements hw.TickSource.
func (s *Source) Delay(d time.Duration) {
	s.clock.Sleep(d)
}

// WaitUntil implements hw.Waiter with a sleep for the remaining time
// instead of a spin.
func (s *Source) WaitUntil(start hw.Tick, d time.Duration) {
	if remain := d - s.Elapsed(start, s.Now()); remain > 0 {
		s.clock.Sleep(remain)
	}
}
