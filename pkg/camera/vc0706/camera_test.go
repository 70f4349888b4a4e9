package vc0706

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/softserial.go/pkg/camera"
	"github.com/robotalks/softserial.go/pkg/camera/camtest"
)

func newTestCamera() (*Camera, *camtest.Transport) {
	tr := &camtest.Transport{}
	c := New(tr, DefaultBaud)
	c.Link().Sleep = func(time.Duration) {}
	return c, tr
}

func ack(tr *camtest.Transport, cmd byte) {
	tr.Reply(0x76, 0x00, cmd, 0x00, 0x00)
}

func TestVersion(t *testing.T) {
	c, tr := newTestCamera()
	version := "VC0703 1.00"
	tr.Reply(0x76, 0x00, 0x11, 0x00, byte(len(version)))
	tr.Reply([]byte(version)...)
	s, err := c.Version()
	require.NoError(t, err)
	require.Equal(t, version, s)
	require.Equal(t, [][]byte{{0x56, 0x00, 0x11, 0x00}}, tr.Writes)
}

func TestSetImageSizeRegisterPath(t *testing.T) {
	c, tr := newTestCamera()
	ack(tr, cmdWriteData)
	require.NoError(t, c.SetImageSize(160, 120))
	require.Equal(t, [][]byte{
		{0x56, 0x00, 0x31, 0x06, 0x05, 0x04, 0x01, 0x00, 0x19, 0x22},
	}, tr.Writes)
}

func TestSetImageSizeUnsupported(t *testing.T) {
	c, tr := newTestCamera()
	require.Equal(t, camera.ErrUnsupportedSize, c.SetImageSize(1280, 720))
	require.Empty(t, tr.Writes)
}

func TestBufferControlFlags(t *testing.T) {
	c, tr := newTestCamera()
	ack(tr, cmdFBufCtrl)
	ack(tr, cmdFBufCtrl)
	ack(tr, cmdFBufCtrl)
	require.NoError(t, c.TakeSnapshot())
	require.NoError(t, c.Pause())
	require.NoError(t, c.Resume())
	require.Equal(t, [][]byte{
		{0x56, 0x00, 0x36, 0x01, 0x00},
		{0x56, 0x00, 0x36, 0x01, 0x01},
		{0x56, 0x00, 0x36, 0x01, 0x02},
	}, tr.Writes)
}

func TestPicture(t *testing.T) {
	c, tr := newTestCamera()
	tr.Reply(0x76, 0x00, 0x34, 0x00, 0x04, 0x00, 0x00, 0x00, 0x40) // 64 bytes
	ack(tr, cmdReadFBuf)
	jpeg := make([]byte, 64)
	jpeg[0], jpeg[1] = 0xff, 0xd8
	tr.Reply(jpeg...)
	ack(tr, cmdReadFBuf)

	buf, err := c.Picture()
	require.NoError(t, err)
	require.Equal(t, jpeg, buf)
	require.Equal(t, [][]byte{
		{0x56, 0x00, 0x34, 0x01, 0x00},
		{0x56, 0x00, 0x32, 0x0c,
			0x00, 0x0a,
			0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x40,
			0x00, 0x0a},
	}, tr.Writes)
}

func TestResetConsumesBanner(t *testing.T) {
	c, tr := newTestCamera()
	ack(tr, cmdReset)
	tr.Reply([]byte("VC0703 init done\r\n")...)
	require.NoError(t, c.Reset())
	require.Empty(t, tr.Pending())
}
