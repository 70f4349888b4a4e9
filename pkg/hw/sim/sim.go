// Package sim provides an in-memory GPIO board and tick source for
// tests and for running the stack without hardware.
package sim

import (
	"sort"
	"sync"
	"time"

	"github.com/robotalks/softserial.go/pkg/hw"
)

// Clock is a deterministic hw.TickSource. Every Now call advances the
// counter by Step so that poll loops always make progress, and Delay
// advances it by exactly the requested duration.
type Clock struct {
	// Step is the advance applied per Now call. Zero means 1µs.
	Step time.Duration

	lock sync.Mutex
	now  hw.Tick
}

// NewClock creates a Clock starting at tick zero.
func NewClock() *Clock {
	return &Clock{}
}

func (c *Clock) step() hw.Tick {
	s := hw.Tick(c.Step / time.Microsecond)
	if s == 0 {
		s = 1
	}
	return s
}

// Now implements hw.TickSource.
func (c *Clock) Now() hw.Tick {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now += c.step()
	return c.now
}

// At returns the current counter without advancing it.
func (c *Clock) At() hw.Tick {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Elapsed implements hw.TickSource.
func (c *Clock) Elapsed(start, end hw.Tick) time.Duration {
	return time.Duration(end-start) * time.Microsecond
}

// Delay implements hw.TickSource.
func (c *Clock) Delay(d time.Duration) {
	ticks := hw.Tick((d + time.Microsecond - 1) / time.Microsecond)
	c.lock.Lock()
	c.now += ticks
	c.lock.Unlock()
}

// Edge is a level change at an offset from the start of a recording or
// playback.
type Edge struct {
	At    time.Duration
	Level hw.Level
}

// Board is an in-memory hw.GPIO. Pins spring into existence on first
// use as inputs reading Low.
type Board struct {
	clock *Clock

	lock sync.Mutex
	pins map[hw.Pin]*line
}

type line struct {
	mode  hw.Mode
	level hw.Level

	wiredTo hw.Pin
	wired   bool

	playing   bool
	playStart hw.Tick
	playback  []Edge

	rec *Recorder
}

// NewBoard creates a Board on the given clock.
func NewBoard(clock *Clock) *Board {
	return &Board{clock: clock, pins: make(map[hw.Pin]*line)}
}

func (b *Board) line(pin hw.Pin) *line {
	l := b.pins[pin]
	if l == nil {
		l = &line{}
		b.pins[pin] = l
	}
	return l
}

// SetMode implements hw.GPIO.
func (b *Board) SetMode(pin hw.Pin, mode hw.Mode) {
	if !pin.Valid() {
		return
	}
	b.lock.Lock()
	b.line(pin).mode = mode
	b.lock.Unlock()
}

// Mode returns the current direction of a pin.
func (b *Board) Mode(pin hw.Pin) hw.Mode {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.line(pin).mode
}

// SetValue implements hw.GPIO.
func (b *Board) SetValue(pin hw.Pin, level hw.Level) {
	if !pin.Valid() {
		return
	}
	b.lock.Lock()
	l := b.line(pin)
	l.level = level
	if l.rec != nil {
		l.rec.record(b.clock.At(), level)
	}
	b.lock.Unlock()
}

// Value implements hw.GPIO.
func (b *Board) Value(pin hw.Pin) hw.Level {
	if !pin.Valid() {
		return hw.Low
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	l := b.line(pin)
	if l.playing {
		return playbackLevel(l, b.clock)
	}
	if l.wired {
		return b.line(l.wiredTo).level
	}
	return l.level
}

func playbackLevel(l *line, clock *Clock) hw.Level {
	elapsed := clock.Elapsed(l.playStart, clock.At())
	idx := sort.Search(len(l.playback), func(i int) bool {
		return l.playback[i].At > elapsed
	})
	if idx == 0 {
		return l.playback[0].Level
	}
	return l.playback[idx-1].Level
}

// Wire mirrors the driven level of pin from onto reads of pin to.
// Wiring an engine's output to its own input gives SPI loopback.
func (b *Board) Wire(from, to hw.Pin) {
	b.lock.Lock()
	l := b.line(to)
	l.wiredTo, l.wired = from, true
	b.lock.Unlock()
}

// Play feeds a waveform to reads of an input pin. Offsets are measured
// from the moment Play is called; the first edge should carry offset
// zero to define the initial level.
func (b *Board) Play(pin hw.Pin, edges []Edge) {
	b.lock.Lock()
	l := b.line(pin)
	l.playing, l.playStart, l.playback = true, b.clock.At(), edges
	b.lock.Unlock()
}

// Recorder captures the edge history of an output pin.
type Recorder struct {
	start hw.Tick
	clock *Clock
	edges []Edge
}

// Record starts capturing level changes of a pin, seeded with its
// current level at offset zero.
func (b *Board) Record(pin hw.Pin) *Recorder {
	b.lock.Lock()
	defer b.lock.Unlock()
	l := b.line(pin)
	rec := &Recorder{start: b.clock.At(), clock: b.clock}
	rec.edges = append(rec.edges, Edge{At: 0, Level: l.level})
	l.rec = rec
	return rec
}

func (r *Recorder) record(at hw.Tick, level hw.Level) {
	r.edges = append(r.edges, Edge{At: r.clock.Elapsed(r.start, at), Level: level})
}

// Edges returns the captured waveform.
func (r *Recorder) Edges() []Edge {
	return r.edges
}

// Changes returns the number of level changes captured, excluding the
// seed sample.
func (r *Recorder) Changes() int {
	return len(r.edges) - 1
}
