// Package camd implements the camera telemetry daemon: one camera on
// a bit-banged UART, captures published over MQTT.
package camd

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/softserial.go/pkg/bitbang"
	"github.com/robotalks/softserial.go/pkg/camera"
	"github.com/robotalks/softserial.go/pkg/camera/lsy201"
	"github.com/robotalks/softserial.go/pkg/camera/vc0706"
	"github.com/robotalks/softserial.go/pkg/hw"
	"github.com/robotalks/softserial.go/pkg/hw/clk"
	"github.com/robotalks/softserial.go/pkg/hw/periphio"
	"github.com/robotalks/softserial.go/pkg/telemetry/mqtt"
)

// Config carries everything needed to run the daemon.
type Config struct {
	BrokerURL string
	ID        string

	Model string
	Baud  int
	TXPin int
	RXPin int

	Width    int
	Height   int
	Interval time.Duration
}

var defaultConfig = Config{
	BrokerURL: "mqtt://localhost:1883/cam/",
	Model:     "lsy201",
	Baud:      lsy201.DefaultBaud,
	TXPin:     -1,
	RXPin:     -1,
	Width:     320,
	Height:    240,
}

func init() {
	if val := os.Getenv("CAMERAD_MQTT_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
	if val := os.Getenv("CAMERAD_ID"); val != "" {
		defaultConfig.ID = val
	}
	if val := os.Getenv("CAMERAD_MODEL"); val != "" {
		defaultConfig.Model = val
	}
	if val := os.Getenv("CAMERAD_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Baud = baud
		}
	}
}

// SetupFlags registers command line flags mirroring the defaults.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BrokerURL, "mqtt", defaultConfig.BrokerURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Camera ID, defaults to the machine ID.")
	flag.StringVar(&defaultConfig.Model, "camera", defaultConfig.Model, "Camera model: lsy201 or vc0706.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "UART baud rate.")
	flag.IntVar(&defaultConfig.TXPin, "tx-pin", defaultConfig.TXPin, "GPIO pin driving the camera RX line.")
	flag.IntVar(&defaultConfig.RXPin, "rx-pin", defaultConfig.RXPin, "GPIO pin reading the camera TX line.")
	flag.IntVar(&defaultConfig.Width, "width", defaultConfig.Width, "Capture width.")
	flag.IntVar(&defaultConfig.Height, "height", defaultConfig.Height, "Capture height.")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Periodic capture interval, 0 for on-demand only.")
}

// NewConfig snapshots the current defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewCamera builds the configured driver from a transport.
func NewCamera(model string, t camera.Transport, baud int) (camera.Camera, error) {
	switch model {
	case "lsy201":
		return lsy201.New(t, baud), nil
	case "vc0706":
		return vc0706.New(t, baud), nil
	}
	return nil, fmt.Errorf("unknown camera model %q", model)
}

// NewDaemon binds the pins and broker from the config.
func (c *Config) NewDaemon() (*Daemon, error) {
	if c.ID == "" {
		if id, err := machineid.ID(); err == nil {
			c.ID = id
		} else {
			c.ID = "camera"
		}
	}
	gpio, err := periphio.Open()
	if err != nil {
		return nil, err
	}
	uart := bitbang.NewUART(clk.New(), gpio, hw.Pin(c.TXPin), hw.Pin(c.RXPin), c.Baud)
	cam, err := NewCamera(c.Model, uart, c.Baud)
	if err != nil {
		uart.Close()
		return nil, err
	}
	queue, err := mqtt.NewQueue(c.BrokerURL)
	if err != nil {
		uart.Close()
		return nil, err
	}
	return &Daemon{Config: *c, cam: cam, uart: uart, queue: queue}, nil
}
