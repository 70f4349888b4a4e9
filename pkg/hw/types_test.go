package hw

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedTicks struct {
	now Tick
}

func (f *fixedTicks) Now() Tick { return f.now }

func (f *fixedTicks) Elapsed(start, end Tick) time.Duration {
	return time.Duration(end-start) * time.Microsecond
}

func (f *fixedTicks) Delay(d time.Duration) {
	f.now += Tick(d / time.Microsecond)
}

type waitingTicks struct {
	fixedTicks
	waits []time.Duration
}

func (w *waitingTicks) WaitUntil(start Tick, d time.Duration) {
	w.waits = append(w.waits, d)
	w.now = start + Tick(d/time.Microsecond)
}

func TestElapsedWraparound(t *testing.T) {
	ts := &fixedTicks{}
	testCases := []struct {
		name       string
		start, end Tick
		expect     time.Duration
	}{
		{"zero", 100, 100, 0},
		{"simple", 100, 350, 250 * time.Microsecond},
		{"wrap", 0xfffffff0, 0x10, 0x20 * time.Microsecond},
		{"wrap from max", 0xffffffff, 0, time.Microsecond},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, ts.Elapsed(tc.start, tc.end))
		})
	}
}

func TestWaitUntilSpins(t *testing.T) {
	ts := &fixedTicks{now: 40}
	start := ts.Now()
	WaitUntil(ts, start, 0)
	require.Equal(t, Tick(40), ts.now)
}

func TestWaitUntilDelegates(t *testing.T) {
	ts := &waitingTicks{}
	WaitUntil(ts, 0, 5*time.Millisecond)
	require.Equal(t, []time.Duration{5 * time.Millisecond}, ts.waits)
	require.Equal(t, Tick(5000), ts.now)
}

func TestPinNone(t *testing.T) {
	require.False(t, PinNone.Valid())
	require.True(t, Pin(0).Valid())
	require.True(t, Pin(17).Valid())
}
