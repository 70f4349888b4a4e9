package camd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/softserial.go/pkg/camera/camtest"
	"github.com/robotalks/softserial.go/pkg/camera/lsy201"
	"github.com/robotalks/softserial.go/pkg/camera/vc0706"
)

func TestNewCamera(t *testing.T) {
	tr := &camtest.Transport{}
	cam, err := NewCamera("lsy201", tr, 38400)
	require.NoError(t, err)
	require.IsType(t, &lsy201.Camera{}, cam)

	cam, err = NewCamera("vc0706", tr, 38400)
	require.NoError(t, err)
	require.IsType(t, &vc0706.Camera{}, cam)

	_, err = NewCamera("ov7670", tr, 38400)
	require.Error(t, err)
}

func TestNewConfigIsCopy(t *testing.T) {
	a, b := NewConfig(), NewConfig()
	a.Baud = 115200
	require.NotEqual(t, a.Baud, b.Baud)
}
