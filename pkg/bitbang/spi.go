package bitbang

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/softserial.go/pkg/hw"
)

// SPIMode selects the clock polarity/phase pair. The low bit is CPHA,
// the high bit is CPOL, matching the usual mode 0..3 numbering.
type SPIMode int

// SPI modes.
const (
	SPIMode0 SPIMode = iota
	SPIMode1
	SPIMode2
	SPIMode3
)

func (m SPIMode) cpol() bool { return m&2 != 0 }
func (m SPIMode) cpha() bool { return m&1 != 0 }

// ChipSelect is the select-line policy around a transfer.
type ChipSelect int

// Chip-select policies.
const (
	// CSActiveLow drives select low for the duration of a transfer.
	CSActiveLow ChipSelect = iota
	// CSActiveHigh drives select high for the duration of a transfer.
	CSActiveHigh
	// CSNone leaves the select line alone.
	CSNone
)

// MaxSPIClock is the highest clock frequency the engine will pace
// explicitly. Above it (or without a tick source) transfers free-run.
const MaxSPIClock = 1000000

// SPI bit-bangs a synchronous serial bus on up to four GPIO lines.
// Any of the data/select pins may be hw.PinNone to run half-duplex or
// without select. The instance exclusively owns its pins until Close.
type SPI struct {
	ticks hw.TickSource
	gpio  hw.GPIO

	sck  hw.Pin
	mosi hw.Pin
	miso hw.Pin
	sel  hw.Pin

	mode SPIMode
	cs   ChipSelect
	half time.Duration
}

// NewSPI claims the given pins and returns an engine in mode 0 with
// active-low select and unpaced (free-running) clocking. The clock
// line is driven to its idle level and select to its deasserted level
// immediately.
func NewSPI(ticks hw.TickSource, gpio hw.GPIO, sck, mosi, miso, sel hw.Pin) *SPI {
	s := &SPI{
		ticks: ticks,
		gpio:  gpio,
		sck:   sck,
		mosi:  mosi,
		miso:  miso,
		sel:   sel,
	}
	s.gpio.SetMode(s.sck, hw.Output)
	s.gpio.SetValue(s.sck, s.idleLevel())
	if s.mosi.Valid() {
		s.gpio.SetMode(s.mosi, hw.Output)
	}
	if s.miso.Valid() {
		s.gpio.SetMode(s.miso, hw.Input)
	}
	if s.sel.Valid() {
		s.gpio.SetMode(s.sel, hw.Output)
		s.gpio.SetValue(s.sel, s.deassertedLevel())
	}
	return s
}

// Close releases all claimed pins back to input mode, in reverse order
// of acquisition, leaving the bus in a safe state.
func (s *SPI) Close() {
	for _, pin := range []hw.Pin{s.sel, s.miso, s.mosi, s.sck} {
		if pin.Valid() {
			s.gpio.SetMode(pin, hw.Input)
		}
	}
}

// SetClock configures the clock frequency in Hz. Only values in
// (0, MaxSPIClock] with a tick source present enable paced edges; any
// other value disables explicit delays and the engine free-runs.
func (s *SPI) SetClock(hz int) {
	if hz > 0 && hz <= MaxSPIClock && s.ticks != nil {
		s.half = time.Second / time.Duration(2*hz)
	} else {
		s.half = 0
	}
}

// SetMode changes the polarity/phase pair and drives the clock line to
// the new idle level. It must never be called mid-transfer.
func (s *SPI) SetMode(mode SPIMode) {
	s.mode = mode & 3
	s.gpio.SetValue(s.sck, s.idleLevel())
}

// SetChipSelect changes the select-line policy and drives the line,
// if present, to the new deasserted level.
func (s *SPI) SetChipSelect(cs ChipSelect) {
	s.cs = cs
	if s.sel.Valid() && cs != CSNone {
		s.gpio.SetValue(s.sel, s.deassertedLevel())
	}
}

// SetBitsPerWord is accepted for interface symmetry with hardware
// controllers. Words are always 8 bits; other values are ignored.
func (s *SPI) SetBitsPerWord(bits int) {
	if bits != 8 {
		glog.V(2).Infof("spi: %d bits/word unsupported, staying at 8", bits)
	}
}

// Read clocks in len(buf) bytes. The output line, if configured, is
// not driven and stays at its last level. Returns the number of bytes
// read.
func (s *SPI) Read(buf []byte) int {
	if buf == nil {
		return 0
	}
	return s.Transfer(buf, nil, len(buf))
}

// Write clocks out len(buf) bytes. Returns the number of bytes
// written.
func (s *SPI) Write(buf []byte) int {
	if buf == nil {
		return 0
	}
	return s.Transfer(nil, buf, len(buf))
}

// Transfer performs a full- or half-duplex exchange of n bytes, MSB
// first. Either buffer may be nil; bytes are driven only when a
// master-out pin is configured and wr is non-nil, and sampled only
// when a master-in pin is configured and rd is non-nil. Select, if
// configured, is asserted across the whole transfer and always
// deasserted on the way out. Returns 0 with no pin activity when n is
// not positive or both buffers are nil, n otherwise.
func (s *SPI) Transfer(rd, wr []byte, n int) int {
	if n <= 0 || (rd == nil && wr == nil) {
		return 0
	}
	drive := s.mosi.Valid() && wr != nil
	sample := s.miso.Valid() && rd != nil

	s.selectLine(true)
	defer s.selectLine(false)

	for i := 0; i < n; i++ {
		var out byte
		if wr != nil {
			out = wr[i]
		}
		in := s.transferByte(out, drive, sample)
		if rd != nil {
			rd[i] = in
		}
	}
	return n
}

func (s *SPI) transferByte(out byte, drive, sample bool) byte {
	var in byte
	for bit := 7; bit >= 0; bit-- {
		mask := byte(1) << uint(bit)
		if !s.mode.cpha() {
			// Data is set up before the leading edge and sampled on it.
			if drive {
				s.gpio.SetValue(s.mosi, hw.Level(out&mask != 0))
			}
			if sample && s.gpio.Value(s.miso) == hw.High {
				in |= mask
			}
			s.gpio.SetValue(s.sck, s.activeLevel())
			s.wait()
			s.gpio.SetValue(s.sck, s.idleLevel())
		} else {
			// Data is set up on the leading edge and sampled on the
			// trailing one.
			s.gpio.SetValue(s.sck, s.activeLevel())
			if drive {
				s.gpio.SetValue(s.mosi, hw.Level(out&mask != 0))
			}
			s.wait()
			if sample && s.gpio.Value(s.miso) == hw.High {
				in |= mask
			}
			s.gpio.SetValue(s.sck, s.idleLevel())
		}
	}
	return in
}

func (s *SPI) wait() {
	if s.half > 0 {
		hw.WaitUntil(s.ticks, s.ticks.Now(), s.half)
	}
}

func (s *SPI) selectLine(assert bool) {
	if !s.sel.Valid() || s.cs == CSNone {
		return
	}
	if assert {
		s.gpio.SetValue(s.sel, s.assertedLevel())
	} else {
		s.gpio.SetValue(s.sel, s.deassertedLevel())
	}
}

func (s *SPI) idleLevel() hw.Level {
	return hw.Level(s.mode.cpol())
}

func (s *SPI) activeLevel() hw.Level {
	return hw.Level(!s.mode.cpol())
}

func (s *SPI) assertedLevel() hw.Level {
	return hw.Level(s.cs == CSActiveHigh)
}

func (s *SPI) deassertedLevel() hw.Level {
	return hw.Level(s.cs != CSActiveHigh)
}
