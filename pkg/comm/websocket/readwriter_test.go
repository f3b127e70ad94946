package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bitlog.go/pkg/bitlog"
	"github.com/robotalks/bitlog.go/pkg/comm"
)

func TestHandlerReceivesPackets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	recCh := make(chan comm.Record, 1)
	srv := httptest.NewServer(Handler(ctx, comm.HandlePacketFunc(func(_ context.Context, rec comm.Record) {
		recCh <- rec
	})))
	defer srv.Close()

	rw, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer rw.Close()

	l := bitlog.New(rw)
	l.Init(0x77)
	require.NoError(t, l.WriteData(0xa, 4))
	require.NoError(t, l.Flush())

	select {
	case rec := <-recCh:
		require.NotNil(t, rec.Packet)
		require.Equal(t, uint16(0x77), rec.Packet.SourceID)
		require.Equal(t, "1010", rec.Packet.BitString())
	case <-time.After(2 * time.Second):
		t.Fatal("packet not received")
	}
}
