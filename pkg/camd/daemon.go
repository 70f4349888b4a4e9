package camd

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/softserial.go/pkg/bitbang"
	"github.com/robotalks/softserial.go/pkg/camera"
	"github.com/robotalks/softserial.go/pkg/telemetry/mqtt"
)

// Meta is the JSON record published next to every capture.
type Meta struct {
	ID     string    `json:"id"`
	Model  string    `json:"model"`
	Bytes  int       `json:"bytes"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	At     time.Time `json:"at"`
}

// Daemon owns one camera and publishes captures. The camera stack is
// single-threaded, so every operation funnels through the one Run
// loop: a capture completes before the next request is looked at.
type Daemon struct {
	Config

	cam   camera.Camera
	uart  *bitbang.UART
	queue *mqtt.Queue

	snapCh chan struct{}
}

// Run implements framework.Runnable.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.uart.Close()

	if err := d.queue.Connect(); err != nil {
		return err
	}
	defer d.queue.Close()

	d.snapCh = make(chan struct{}, 1)
	d.queue.Sub(d.ID+"/snap", func(string, []byte) {
		select {
		case d.snapCh <- struct{}{}:
		default:
		}
	})

	if err := d.cam.Reset(); err != nil {
		return err
	}
	if err := d.cam.SetImageSize(d.Width, d.Height); err != nil {
		return err
	}
	glog.Infof("camerad %s ready (%s %dx%d)", d.ID, d.Model, d.Width, d.Height)

	var tick <-chan time.Time
	if d.Interval > 0 {
		ticker := time.NewTicker(d.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			d.capture()
		case <-d.snapCh:
			d.capture()
		}
	}
}

func (d *Daemon) capture() {
	if err := d.cam.TakeSnapshot(); err != nil {
		glog.Errorf("snapshot: %v", err)
		return
	}
	pic, err := d.cam.Picture()
	// Resume regardless of the read outcome so the next capture starts
	// from a live frame.
	d.resume()
	if err != nil {
		glog.Errorf("picture: %v", err)
		return
	}
	d.queue.Pub(d.ID+"/jpeg", pic)
	meta, err := json.Marshal(Meta{
		ID:     d.ID,
		Model:  d.Model,
		Bytes:  len(pic),
		Width:  d.Width,
		Height: d.Height,
		At:     time.Now().UTC(),
	})
	if err == nil {
		d.queue.Pub(d.ID+"/meta", meta)
	}
	glog.V(1).Infof("published %d bytes", len(pic))
}

func (d *Daemon) resume() {
	if r, ok := d.cam.(interface{ Resume() error }); ok {
		if err := r.Resume(); err != nil {
			glog.Warningf("resume: %v", err)
		}
	}
}
