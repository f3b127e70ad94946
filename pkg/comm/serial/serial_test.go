package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goserial "go.bug.st/serial"
)

func TestNormalize(t *testing.T) {
	opts, err := PortOptions{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, PortOptions{BaudRate: DefaultBaudRate, DataBits: 8, StopBits: 1, Parity: "N"}, opts)

	opts, err = PortOptions{BaudRate: 9600, Parity: " even "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "E", opts.Parity)

	for _, bad := range []PortOptions{{DataBits: 9}, {StopBits: 3}, {Parity: "mark"}} {
		_, err = bad.Normalize()
		assert.Error(t, err, "%+v", bad)
	}
}

func TestMode(t *testing.T) {
	mode, err := PortOptions{BaudRate: 19200, StopBits: 2, Parity: "O"}.Mode()
	require.NoError(t, err)
	assert.Equal(t, &goserial.Mode{
		BaudRate: 19200,
		DataBits: 8,
		Parity:   goserial.OddParity,
		StopBits: goserial.TwoStopBits,
	}, mode)
}

func TestParseURL(t *testing.T) {
	path, opts, err := ParseURL("serial:///dev/ttyUSB0?baud=9600&parity=E")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", path)
	assert.Equal(t, 9600, opts.BaudRate)
	assert.Equal(t, "E", opts.Parity)

	path, _, err = ParseURL("serial:COM3")
	require.NoError(t, err)
	assert.Equal(t, "COM3", path)

	_, _, err = ParseURL("serial:///dev/ttyS0?baud=fast")
	require.Error(t, err)
	_, _, err = ParseURL("tcp://host:1")
	require.Error(t, err)
}
