package bitbang

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/softserial.go/pkg/hw"
	"github.com/robotalks/softserial.go/pkg/hw/sim"
)

const (
	pinTX = hw.Pin(5)
	pinRX = hw.Pin(6)

	testBaud = 9600
)

// captureTX records the waveform the transmitter produces for data,
// with a couple of bit periods of leading idle.
func captureTX(t *testing.T, data []byte, baud int) []sim.Edge {
	t.Helper()
	clock := sim.NewClock()
	board := sim.NewBoard(clock)
	u := NewUART(clock, board, pinTX, hw.PinNone, baud)
	defer u.Close()
	rec := board.Record(pinTX)
	clock.Delay(2 * time.Second / time.Duration(baud))
	require.Equal(t, len(data), u.Write(data))
	return rec.Edges()
}

func TestWriteReadRoundTrip(t *testing.T) {
	data := []byte{0x55, 0xaa, 0x00, 0xff, 0x7e}
	edges := captureTX(t, data, testBaud)

	clock := sim.NewClock()
	board := sim.NewBoard(clock)
	u := NewUART(clock, board, hw.PinNone, pinRX, testBaud)
	board.Play(pinRX, edges)
	buf := make([]byte, len(data))
	require.Equal(t, len(data), u.Read(buf))
	require.Equal(t, data, buf)
}

func TestReadPartialOnTimeout(t *testing.T) {
	data := []byte{0x12, 0x34}
	edges := captureTX(t, data, testBaud)

	clock := sim.NewClock()
	board := sim.NewBoard(clock)
	u := NewUART(clock, board, hw.PinNone, pinRX, testBaud)
	board.Play(pinRX, edges)
	// Ask for more bytes than the waveform carries: the call times out
	// waiting for a third start bit and reports a short count.
	buf := make([]byte, 5)
	require.Equal(t, 2, u.ReadWithTimeout(buf, 20*time.Millisecond))
	require.Equal(t, data, buf[:2])
}

func TestWriteFreeRun(t *testing.T) {
	board := sim.NewBoard(sim.NewClock())
	u := NewUART(nil, board, pinTX, hw.PinNone, testBaud)
	defer u.Close()
	rec := board.Record(pinTX)
	require.Equal(t, 1, u.Write([]byte{0x42}))
	// Start bit, eight data bits, stop bit.
	require.Equal(t, 10, rec.Changes())
	require.Equal(t, hw.High, board.Value(pinTX))
}

func TestReadFreeRunNoop(t *testing.T) {
	board := sim.NewBoard(sim.NewClock())
	u := NewUART(nil, board, hw.PinNone, pinRX, testBaud)
	buf := make([]byte, 4)
	require.Equal(t, 0, u.Read(buf))
}

func TestReadLineNeverIdle(t *testing.T) {
	clock := sim.NewClock()
	board := sim.NewBoard(clock)
	u := NewUART(clock, board, hw.PinNone, pinRX, testBaud)
	board.Play(pinRX, []sim.Edge{{At: 0, Level: hw.Low}})
	buf := make([]byte, 1)
	require.Equal(t, 0, u.ReadWithTimeout(buf, 5*time.Millisecond))
}

func TestReadNoops(t *testing.T) {
	clock := sim.NewClock()
	board := sim.NewBoard(clock)
	u := NewUART(clock, board, pinTX, hw.PinNone, testBaud)
	require.Equal(t, 0, u.Read(make([]byte, 4))) // no RX pin
	require.Equal(t, 0, u.ReadWithTimeout(nil, time.Second))
}

func TestWriteNoops(t *testing.T) {
	clock := sim.NewClock()
	board := sim.NewBoard(clock)
	u := NewUART(clock, board, hw.PinNone, pinRX, testBaud)
	require.Equal(t, 0, u.Write([]byte{1, 2, 3})) // no TX pin
	rx := NewUART(clock, board, pinTX, hw.PinNone, testBaud)
	require.Equal(t, 0, rx.Write(nil))
}

func TestTXIdleHighAndClose(t *testing.T) {
	clock := sim.NewClock()
	board := sim.NewBoard(clock)
	u := NewUART(clock, board, pinTX, pinRX, testBaud)
	require.Equal(t, hw.Output, board.Mode(pinTX))
	require.Equal(t, hw.High, board.Value(pinTX))
	require.Equal(t, hw.Input, board.Mode(pinRX))
	u.Close()
	require.Equal(t, hw.Input, board.Mode(pinTX))
}

func TestStartBitHold(t *testing.T) {
	// The start bit is held low for 3/5 of a bit period before the
	// cumulative data schedule begins.
	edges := captureTX(t, []byte{0xff}, testBaud)
	require.True(t, len(edges) >= 3)
	require.Equal(t, hw.High, edges[0].Level)
	require.Equal(t, hw.Low, edges[1].Level)
	require.Equal(t, hw.High, edges[2].Level)

	bit := time.Second / testBaud
	hold := edges[2].At - edges[1].At
	require.GreaterOrEqual(t, hold, bit*3/5)
	require.Less(t, hold, bit*7/10)
}

func TestWriteWithTimeoutIgnoresTimeout(t *testing.T) {
	clock := sim.NewClock()
	board := sim.NewBoard(clock)
	u := NewUART(clock, board, pinTX, hw.PinNone, testBaud)
	require.Equal(t, 2, u.WriteWithTimeout([]byte{1, 2}, time.Nanosecond))
	u.Flush() // no-op, must not panic
}
