// Package lsy201 drives LinkSprite LS-Y201 JPEG camera modules.
package lsy201

import (
	"encoding/binary"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/softserial.go/pkg/camera"
	"github.com/robotalks/softserial.go/pkg/camera/proto"
)

// LS-Y201 command set.
const (
	cmdReset     byte = 0x26
	cmdSetBaud   byte = 0x24
	cmdReadBuf   byte = 0x32
	cmdBufLen    byte = 0x34
	cmdFrameCtrl byte = 0x36
	cmdSetSize   byte = 0x54
)

// Frame-control arguments sharing command 0x36.
const (
	frameSnapshot byte = 0x00
	frameStop     byte = 0x01
	frameResume   byte = 0x03
)

// DefaultBaud is the module's factory line rate.
const DefaultBaud = 38400

const bootBannerTimeout = 500 * time.Millisecond

type size struct {
	w, h int
}

// The module knows three resolutions; anything else is rejected
// before touching the wire.
var sizeCodes = map[size]byte{
	{160, 120}: 0x22,
	{320, 240}: 0x11,
	{640, 480}: 0x00,
}

// Two-byte divisors for the SetBaudRate command.
var baudCodes = map[int][2]byte{
	9600:   {0xae, 0xc8},
	19200:  {0x56, 0xe4},
	38400:  {0x2a, 0xf2},
	57600:  {0x1c, 0x4c},
	115200: {0x0d, 0xa6},
}

// Camera drives one LS-Y201 over a framed serial link.
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

// Reset implements camera.Camera. The module prints an unframed boot
// banner after acknowledging; it is consumed here so the next command
// starts from a clean line.
func (c *Camera) Reset() error {
	if err := c.link.Send(cmdReset, nil); err != nil {
		return err
	}
	if err := c.link.Ack(cmdReset); err != nil {
		return err
	}
	banner := c.link.ReadText(128, bootBannerTimeout)
	if banner != "" {
		glog.V(2).Infof("lsy201 boot: %q", banner)
	}
	return nil
}

// SetImageSize implements camera.Camera.
func (c *Camera) SetImageSize(w, h int) error {
	code, ok := sizeCodes[size{w, h}]
	if !ok {
		return camera.ErrUnsupportedSize
	}
	if err := c.link.Send(cmdSetSize, []byte{code}); err != nil {
		return err
	}
	return c.link.Ack(cmdSetSize)
}

// TakeSnapshot implements camera.Camera: it buffers the current frame
// for retrieval.
func (c *Camera) TakeSnapshot() error {
	return c.frameCtrl(frameSnapshot)
}

// Stop halts frame updates without buffering a new picture.
func (c *Camera) Stop() error {
	return c.frameCtrl(frameStop)
}

// Resume returns the module to live frame updates after a snapshot.
func (c *Camera) Resume() error {
	return c.frameCtrl(frameResume)
}

func (c *Camera) frameCtrl(arg byte) error {
	if err := c.link.Send(cmdFrameCtrl, []byte{arg}); err != nil {
		return err
	}
	return c.link.Ack(cmdFrameCtrl)
}

// PictureSize implements camera.Camera.
func (c *Camera) PictureSize() (int, error) {
	if err := c.link.Send(cmdBufLen, []byte{0x00}); err != nil {
		return 0, err
	}
	v, err := c.link.AckUint32(cmdBufLen)
	return int(v), err
}

// Picture implements camera.Camera: it queries the buffered JPEG
// length and fetches exactly that many bytes in one window.
func (c *Camera) Picture() ([]byte, error) {
	n, err := c.PictureSize()
	if err != nil {
		return nil, err
	}
	return c.link.ReadData(cmdReadBuf, readWindow(0, n), n)
}

// SetBaudRate reconfigures the module's line rate from the divisor
// table and retargets the link's timeout budgets. The transport must
// be retuned by the caller.
func (c *Camera) SetBaudRate(baud int) error {
	div, ok := baudCodes[baud]
	if !ok {
		return camera.ErrUnsupportedBaud
	}
	if err := c.link.Send(cmdSetBaud, div[:]); err != nil {
		return err
	}
	if err := c.link.Ack(cmdSetBaud); err != nil {
		return err
	}
	c.link.Baud = baud
	return nil
}

// readWindow builds the fixed 12-byte retrieval descriptor: MCU-mode
// transfer of [start, start+length) with the standard 1ms gap.
func readWindow(start, length int) []byte {
	w := make([]byte, 12)
	w[0] = 0x00
	w[1] = 0x0a
	binary.BigEndian.PutUint32(w[2:6], uint32(start))
	binary.BigEndian.PutUint32(w[6:10], uint32(length))
	w[10], w[11] = 0x00, 0x0a
	return w
}
