package clk

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/softserial.go/pkg/hw"
)

func TestNowAdvancesWithClock(t *testing.T) {
	mock := clock.NewMock()
	s := With(mock)
	require.Equal(t, hw.Tick(0), s.Now())
	mock.Add(1500 * time.Microsecond)
	require.Equal(t, hw.Tick(1500), s.Now())
	require.Equal(t, 1500*time.Microsecond, s.Elapsed(0, s.Now()))
}

func TestDelay(t *testing.T) {
	mock := clock.NewMock()
	s := With(mock)
	done := make(chan struct{})
	go func() {
		s.Delay(10 * time.Millisecond)
		close(done)
	}()
	// Let the sleeper register its timer before advancing.
	time.Sleep(time.Millisecond)
	mock.Add(10 * time.Millisecond)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Delay did not return")
	}
}

func TestWaitUntilElapsedAlready(t *testing.T) {
	mock := clock.NewMock()
	s := With(mock)
	start := s.Now()
	mock.Add(2 * time.Millisecond)
	// Deadline already passed, must not block.
	s.WaitUntil(start, time.Millisecond)
}
