package stream

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLengthPrefixed(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	require.NoError(t, rw.WritePacket([]byte{1, 2, 3}))
	require.NoError(t, rw.WritePacket(nil))
	require.Equal(t, []byte{3, 0, 0, 0, 1, 2, 3, 0, 0, 0, 0}, buf.Bytes())

	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, pkt)
	pkt, err = rw.ReadPacket()
	require.NoError(t, err)
	require.Empty(t, pkt)
	_, err = rw.ReadPacket()
	require.Equal(t, io.EOF, err)
}

func TestFixed(t *testing.T) {
	var buf bytes.Buffer
	rw := NewFixed(&buf, 4)
	require.NoError(t, rw.WritePacket([]byte{1, 2, 3, 4}))
	var sizeErr *FrameSizeError
	require.True(t, errors.As(rw.WritePacket([]byte{1}), &sizeErr))
	require.Equal(t, 1, sizeErr.Actual)

	buf.Write([]byte{5, 6})
	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, pkt)
	_, err = rw.ReadPacket()
	require.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestOverPipe(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	w, r := NewFixed(a, 3), NewFixed(b, 3)
	go w.WritePacket([]byte{7, 8, 9})
	pkt, err := r.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{7, 8, 9}, pkt)
}

func TestLengthPrefixedLimit(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	rw.MaxPacketSize = 4
	var sizeErr *FrameSizeError
	require.True(t, errors.As(rw.WritePacket(make([]byte, 5)), &sizeErr))
	require.Equal(t, 5, sizeErr.Actual)
	require.Zero(t, buf.Len())

	buf.Write([]byte{0, 0, 1, 0})
	_, err := rw.ReadPacket()
	require.True(t, errors.As(err, &sizeErr))
	require.Equal(t, 4, sizeErr.Expect)
	require.Equal(t, 1<<16, sizeErr.Actual)
}
