package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/softserial.go/pkg/hw"
)

func TestClockAdvances(t *testing.T) {
	c := NewClock()
	first := c.Now()
	require.Equal(t, hw.Tick(1), first)
	c.Delay(10 * time.Microsecond)
	require.Equal(t, 11*time.Microsecond, c.Elapsed(0, c.At()))
}

func TestWire(t *testing.T) {
	b := NewBoard(NewClock())
	b.Wire(hw.Pin(1), hw.Pin(2))
	b.SetValue(hw.Pin(1), hw.High)
	require.Equal(t, hw.High, b.Value(hw.Pin(2)))
	b.SetValue(hw.Pin(1), hw.Low)
	require.Equal(t, hw.Low, b.Value(hw.Pin(2)))
}

func TestRecordAndPlay(t *testing.T) {
	c := NewClock()
	b := NewBoard(c)
	pin := hw.Pin(7)
	b.SetValue(pin, hw.High)
	rec := b.Record(pin)
	c.Delay(50 * time.Microsecond)
	b.SetValue(pin, hw.Low)
	c.Delay(50 * time.Microsecond)
	b.SetValue(pin, hw.High)
	require.Equal(t, 2, rec.Changes())
	require.Equal(t, Edge{At: 0, Level: hw.High}, rec.Edges()[0])

	in := hw.Pin(8)
	b.Play(in, rec.Edges())
	require.Equal(t, hw.High, b.Value(in))
	c.Delay(60 * time.Microsecond)
	require.Equal(t, hw.Low, b.Value(in))
	c.Delay(60 * time.Microsecond)
	require.Equal(t, hw.High, b.Value(in))
}

func TestPinNoneIgnored(t *testing.T) {
	b := NewBoard(NewClock())
	b.SetValue(hw.PinNone, hw.High)
	b.SetMode(hw.PinNone, hw.Output)
	require.Equal(t, hw.Low, b.Value(hw.PinNone))
}
