package comm

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bitlog.go/pkg/bitlog"
	fx "github.com/robotalks/bitlog.go/pkg/framework"
)

// Record is a received packet.
type Record struct {
	Time time.Time
	Raw  []byte
	// Packet is nil if Raw is not a valid bitlog packet.
	Packet *bitlog.Packet
}

// TimedPacketReader reads packets with their receive time.
type TimedPacketReader interface {
	ReadRecord() (Record, error)
}

// Handler is called when a packet is received.
type Handler interface {
	HandlePacket(context.Context, Record)
}

// HandlePacketFunc is func type of Handler.
type HandlePacketFunc func(context.Context, Record)

// HandlePacket implements Handler.
func (f HandlePacketFunc) HandlePacket(ctx context.Context, rec Record) {
	f(ctx, rec)
}

// Listener reads packets and dispatches them to Handler.
type Listener struct {
	Reader  PacketReader
	Handler Handler
	// SkipInvalid drops packets which don't decode, otherwise they are
	// dispatched with a nil Packet.
	SkipInvalid bool

	now func() time.Time
}

// NewListener creates a Listener.
func NewListener(r PacketReader, h Handler) *Listener {
	return &Listener{Reader: r, Handler: h}
}

// Run implements Runnable. It returns when the reader fails or ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, l, func() error {
		for {
			rec, err := l.read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if rec.Packet, err = bitlog.DecodePacket(rec.Raw); err != nil {
				glog.Warningf("bad packet (%d bytes): %v", len(rec.Raw), err)
				if l.SkipInvalid {
					continue
				}
			}
			if h := l.Handler; h != nil {
				h.HandlePacket(ctx, rec)
			}
		}
	})
}

func (l *Listener) read() (rec Record, err error) {
	if tr, ok := l.Reader.(TimedPacketReader); ok {
		return tr.ReadRecord()
	}
	if rec.Raw, err = l.Reader.ReadPacket(); err != nil {
		return
	}
	if l.now != nil {
		rec.Time = l.now()
	} else {
		rec.Time = time.Now()
	}
	return
}

// Close implements io.Closer.
func (l *Listener) Close() error {
	return Close(l.Reader)
}

// Close closes v if it implements io.Closer.
func Close(v interface{}) error {
	if closer, ok := v.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
