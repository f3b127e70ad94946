package hexdump

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/bitlog.go/pkg/comm"
)

func TestTime(t *testing.T) {
	ts := time.Unix(1234, 5000)
	require.Equal(t, "1234.000005", FormatTime(ts))
	parsed, err := ParseTime("1234.000005")
	require.NoError(t, err)
	require.True(t, ts.Equal(parsed))
	parsed, err = ParseTime("12.5")
	require.NoError(t, err)
	require.Equal(t, int64(500*time.Millisecond), int64(parsed.Nanosecond()))
	_, err = ParseTime("x.1")
	require.Error(t, err)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Now = func() time.Time { return time.Unix(10, 20000) }
	require.NoError(t, w.WritePacket([]byte{0x10, 0x00, 0xef, 0xbe}))
	w.Lowercase = true
	require.NoError(t, w.WritePacket([]byte{0xab}))
	require.Equal(t, "10.000020 10 00 EF BE\n10.000020 ab\n", buf.String())
}

func TestReader(t *testing.T) {
	input := "10.000020 10 00 EF BE\n\n  01 ff\n3.5 zz\n"
	r := NewReader(strings.NewReader(input))

	rec, err := r.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0, 0xef, 0xbe}, rec.Raw)
	assert.True(t, time.Unix(10, 20000).Equal(rec.Time))

	pkt, err := r.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0xff}, pkt)

	_, err = r.ReadRecord()
	var lineErr *LineError
	require.True(t, errors.As(err, &lineErr))
	require.Equal(t, 4, lineErr.Line)

	_, err = r.ReadRecord()
	require.Equal(t, io.EOF, err)
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	pkt := []byte{0x80, 0x01, 0x34, 0x12, 0xff, 0x00}
	require.NoError(t, w.WritePacket(pkt))
	got, err := NewReader(&buf).ReadPacket()
	require.NoError(t, err)
	require.Equal(t, pkt, got)
}

func TestReaderCloseStopsListener(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	l := comm.NewListener(NewReader(pr), nil)
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("listener blocked after cancel")
	}
	_, err := pr.Read(make([]byte, 1))
	require.Equal(t, io.ErrClosedPipe, err)
}
