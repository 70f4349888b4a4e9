package hw

import "time"

// Pin identifies a GPIO line on the platform's numbering scheme.
type Pin int

// PinNone is the reserved "not connected" pin. Engines treat a feature
// bound to PinNone as disabled.
const PinNone Pin = -1

// Valid reports whether the pin refers to a real line.
func (p Pin) Valid() bool {
	return p >= 0
}

// Level is the digital state of a line.
type Level bool

// Line levels.
const (
	Low  Level = false
	High Level = true
)

// Mode is the direction of a line.
type Mode int

// Line directions.
const (
	Input Mode = iota
	Output
)

// GPIO provides synchronous access to digital lines. Calls have no
// failure mode: the physical layer carries no error signaling, so a
// misbehaving line surfaces only as wrong levels read back.
type GPIO interface {
	SetMode(pin Pin, mode Mode)
	SetValue(pin Pin, level Level)
	Value(pin Pin) Level
}

// Tick is a microsecond counter value. It wraps around; always compare
// ticks through TickSource.Elapsed, never directly.
type Tick uint32

// TickSource provides monotonic time for pacing bit transitions.
type TickSource interface {
	// Now returns the current counter value.
	Now() Tick
	// Elapsed computes the duration between two counter values and is
	// correct across counter wraparound.
	Elapsed(start, end Tick) time.Duration
	// Delay blocks the caller for at least d, with microsecond
	// granularity. Whether it spins or sleeps is the source's choice.
	Delay(d time.Duration)
}

// Waiter is an optional TickSource capability: wait until at least d
// has elapsed since start. Sources backed by a precise sleep implement
// it to avoid spinning.
type Waiter interface {
	WaitUntil(start Tick, d time.Duration)
}

// WaitUntil blocks until the source reports at least d elapsed since
// start. It polls Now in a tight loop unless the source implements
// Waiter.
func WaitUntil(ts TickSource, start Tick, d time.Duration) {
	if w, ok := ts.(Waiter); ok {
		w.WaitUntil(start, d)
		return
	}
	for ts.Elapsed(start, ts.Now()) < d {
	}
}
