// Package vc0706 drives VC0706-based serial camera modules.
package vc0706

import (
	"encoding/binary"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/softserial.go/pkg/camera"
	"github.com/robotalks/softserial.go/pkg/camera/proto"
)

// VC0706 command set.
const (
	cmdGetVersion byte = 0x11
	cmdReset      byte = 0x26
	cmdWriteData  byte = 0x31
	cmdReadFBuf   byte = 0x32
	cmdFBufLen    byte = 0x34
	cmdFBufCtrl   byte = 0x36
)

// Frame-buffer control arguments. The command id matches the LS-Y201
// snapshot command but the flags mean something else: 0x00 freezes the
// current frame, 0x02 resumes the live feed.
const (
	fbufStopCurrent byte = 0x00
	fbufStopNext    byte = 0x01
	fbufResume      byte = 0x02
)

// currentFrame selects the frozen frame buffer in length and read
// commands.
const currentFrame byte = 0x00

// Image size codes are written through the data-register path.
var sizeRegisterPrefix = []byte{0x05, 0x04, 0x01, 0x00, 0x19}

type size struct {
	w, h int
}

var sizeCodes = map[size]byte{
	{640, 480}: 0x00,
	{320, 240}: 0x11,
	{160, 120}: 0x22,
}

// DefaultBaud is the module's factory line rate.
const DefaultBaud = 38400

const bootBannerTimeout = 500 * time.Millisecond

// Camera drives one VC0706 over a framed serial link. The chip has no
// SetBaudRate capability in this driver; its pause/resume buffer
// control is the distinguishing feature instead.
type Camera struct {
	link *proto.Link
}

var _ camera.Camera = (*Camera)(nil)

// New creates a driver over the given transport running at baud.
func New(t camera.Transport, baud int) *Camera {
	return &Camera{link: proto.New(t, baud)}
}

// Link exposes the underlying protocol link for tracing and tuning.
func (c *Camera) Link() *proto.Link {
	return c.link
}

// Reset implements camera.Camera and consumes the chip's unframed
// boot text.
func (c *Camera) Reset() error {
	if err := c.link.Send(cmdReset, nil); err != nil {
		return err
	}
	if err := c.link.Ack(cmdReset); err != nil {
		return err
	}
	banner := c.link.ReadText(128, bootBannerTimeout)
	if banner != "" {
		glog.V(2).Infof("vc0706 boot: %q", banner)
	}
	return nil
}

// Version reads the firmware identification string.
func (c *Camera) Version() (string, error) {
	if err := c.link.Send(cmdGetVersion, nil); err != nil {
		return "", err
	}
	return c.link.AckString(cmdGetVersion)
}

// SetImageSize implements camera.Camera.
func (c *Camera) SetImageSize(w, h int) error {
	code, ok := sizeCodes[size{w, h}]
	if !ok {
		return camera.ErrUnsupportedSize
	}
	payload := append(append([]byte(nil), sizeRegisterPrefix...), code)
	if err := c.link.Send(cmdWriteData, payload); err != nil {
		return err
	}
	return c.link.Ack(cmdWriteData)
}

// TakeSnapshot implements camera.Camera by freezing the current frame
// in the chip's buffer.
func (c *Camera) TakeSnapshot() error {
	return c.fbufCtrl(fbufStopCurrent)
}

// Pause freezes the frame buffer at the next frame boundary.
func (c *Camera) Pause() error {
	return c.fbufCtrl(fbufStopNext)
}

// Resume unfreezes the frame buffer for live updates.
func (c *Camera) Resume() error {
	return c.fbufCtrl(fbufResume)
}

func (c *Camera) fbufCtrl(arg byte) error {
	if err := c.link.Send(cmdFBufCtrl, []byte{arg}); err != nil {
		return err
	}
	return c.link.Ack(cmdFBufCtrl)
}

// PictureSize implements camera.Camera.
func (c *Camera) PictureSize() (int, error) {
	if err := c.link.Send(cmdFBufLen, []byte{currentFrame}); err != nil {
		return 0, err
	}
	v, err := c.link.AckUint32(cmdFBufLen)
	return int(v), err
}

// Picture implements camera.Camera.
func (c *Camera) Picture() ([]byte, error) {
	n, err := c.PictureSize()
	if err != nil {
		return nil, err
	}
	return c.link.ReadData(cmdReadFBuf, readWindow(0, n), n)
}

// readWindow builds the fixed 12-byte retrieval descriptor: frame
// buffer selector, MCU transfer mode, start address, length, and the
// standard 1ms gap.
func readWindow(start, length int) []byte {
	w := make([]byte, 12)
	w[0] = currentFrame
	w[1] = 0x0a
	binary.BigEndian.PutUint32(w[2:6], uint32(start))
	binary.BigEndian.PutUint32(w[6:10], uint32(length))
	w[10], w[11] = 0x00, 0x0a
	return w
}
