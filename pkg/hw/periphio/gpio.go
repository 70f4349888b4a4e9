// Package periphio binds hw.GPIO to real pins through periph.io.
package periphio

import (
	"fmt"
	"sync"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/robotalks/softserial.go/pkg/hw"
)

// GPIO implements hw.GPIO over periph.io registered pins.
type GPIO struct {
	lock sync.Mutex
	pins map[hw.Pin]pinState
}

type pinState struct {
	pin   gpio.PinIO
	mode  hw.Mode
	level hw.Level
}

// Open initializes the periph.io host drivers and returns a GPIO.
func Open() (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	return &GPIO{pins: make(map[hw.Pin]pinState)}, nil
}

func (g *GPIO) lookup(pin hw.Pin) (pinState, bool) {
	if !pin.Valid() {
		return pinState{}, false
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	st, ok := g.pins[pin]
	if !ok {
		p := gpioreg.ByName(fmt.Sprintf("%d", int(pin)))
		if p == nil {
			glog.Errorf("no registered GPIO line for pin %d", int(pin))
			return pinState{}, false
		}
		st = pinState{pin: p, mode: hw.Input}
		g.pins[pin] = st
	}
	return st, true
}

// SetMode implements hw.GPIO.
func (g *GPIO) SetMode(pin hw.Pin, mode hw.Mode) {
	st, ok := g.lookup(pin)
	if !ok {
		return
	}
	var err error
	if mode == hw.Input {
		err = st.pin.In(gpio.PullNoChange, gpio.NoEdge)
	} else {
		err = st.pin.Out(toPeriph(st.level))
	}
	if err != nil {
		glog.Errorf("pin %d: set mode: %v", int(pin), err)
		return
	}
	st.mode = mode
	g.lock.Lock()
	g.pins[pin] = st
	g.lock.Unlock()
}

// SetValue implements hw.GPIO.
func (g *GPIO) SetValue(pin hw.Pin, level hw.Level) {
	st, ok := g.lookup(pin)
	if !ok {
		return
	}
	if err := st.pin.Out(toPeriph(level)); err != nil {
		glog.Errorf("pin %d: set value: %v", int(pin), err)
		return
	}
	st.level = level
	st.mode = hw.Output
	g.lock.Lock()
	g.pins[pin] = st
	g.lock.Unlock()
}

// Value implements hw.GPIO.
func (g *GPIO) Value(pin hw.Pin) hw.Level {
	st, ok := g.lookup(pin)
	if !ok {
		return hw.Low
	}
	return hw.Level(st.pin.Read() == gpio.High)
}

func toPeriph(level hw.Level) gpio.Level {
	if level == hw.High {
		return gpio.High
	}
	return gpio.Low
}
