package bitlog

import (
	"sync/atomic"

	"github.com/golang/glog"
)

// Sender consumes a complete encoded packet.
// The slice is only valid during the call and must be copied if retained.
type Sender interface {
	WritePacket(pkt []byte) error
}

// SendFunc is func type of Sender.
type SendFunc func([]byte) error

// WritePacket implements Sender.
func (f SendFunc) WritePacket(pkt []byte) error {
	return f(pkt)
}

// Discard is a Sender dropping all packets.
var Discard Sender = SendFunc(func([]byte) error { return nil })

const (
	stateUninitialized int32 = iota
	stateReady
	stateFlushing
)

// Stats are the counters of a Logger.
type Stats struct {
	// PacketsSent counts packets handed to the Sender, including failed ones.
	PacketsSent uint64
	// SendErrors counts packets the Sender failed to deliver.
	SendErrors uint64
	// Dropped counts writes and flushes rejected by the guard.
	Dropped uint64
	// BitsWritten counts bits accepted by WriteData.
	BitsWritten uint64
}

// Logger packs bits into a double buffer of packets.
type Logger struct {
	stats Stats // accessed atomically, keep first for alignment

	sender   Sender
	packets  [2]Packet
	scratch  []byte
	sourceID uint16
	seq      Seq
	state    int32
}

// New creates a Logger with DefaultCapacity.
// The Logger drops all writes until Init is called.
func New(sender Sender) *Logger {
	l, _ := NewWithCapacity(sender, DefaultCapacity)
	return l
}

// NewWithCapacity creates a Logger whose packets carry capacity bytes of data.
func NewWithCapacity(sender Sender, capacity int) (*Logger, error) {
	if capacity < 1 || capacity > MaxCapacity {
		return nil, ErrInvalidCapacity
	}
	if sender == nil {
		sender = Discard
	}
	l := &Logger{
		sender:  sender,
		scratch: make([]byte, HeaderSize+capacity),
	}
	buf := make([]byte, 2*capacity)
	l.packets[0].Data = buf[:capacity:capacity]
	l.packets[1].Data = buf[capacity:]
	return l, nil
}

// Init sets the source identifier, restarts the sequence from 0 and
// makes the Logger ready. It may be called again to restart the log, but
// not while a write or flush is in progress, which returns ErrBusy.
func (l *Logger) Init(sourceID uint16) error {
	for {
		state := atomic.LoadInt32(&l.state)
		if state == stateFlushing {
			atomic.AddUint64(&l.stats.Dropped, 1)
			return ErrBusy
		}
		if atomic.CompareAndSwapInt32(&l.state, state, stateFlushing) {
			break
		}
	}
	l.sourceID = sourceID
	l.seq = 0
	l.prepare(l.seq)
	l.release()
	glog.V(1).Infof("bitlog: source %04x ready, capacity %d", sourceID, l.Capacity())
	return nil
}

// SourceID returns the identifier given to Init.
func (l *Logger) SourceID() uint16 {
	return l.sourceID
}

// Capacity returns the data size of a packet in bytes.
func (l *Logger) Capacity() int {
	return len(l.packets[0].Data)
}

// PacketSize returns the encoded size of each packet.
func (l *Logger) PacketSize() int {
	return len(l.scratch)
}

// Ready reports whether the Logger accepts writes right now.
func (l *Logger) Ready() bool {
	return atomic.LoadInt32(&l.state) == stateReady
}

// Stats returns a snapshot of the counters.
func (l *Logger) Stats() Stats {
	return Stats{
		PacketsSent: atomic.LoadUint64(&l.stats.PacketsSent),
		SendErrors:  atomic.LoadUint64(&l.stats.SendErrors),
		Dropped:     atomic.LoadUint64(&l.stats.Dropped),
		BitsWritten: atomic.LoadUint64(&l.stats.BitsWritten),
	}
}

// Active returns a copy of the packet currently being written.
// It must not race with WriteData or Flush.
func (l *Logger) Active() *Packet {
	return l.active().Clone()
}

// WriteData appends the low width bits of value to the log.
// The call is dropped entirely with ErrNotReady or ErrBusy if the Logger
// is not initialized or is in the middle of another write or flush.
func (l *Logger) WriteData(value uint32, width uint) error {
	if width == 0 || width > MaxWidth {
		return &InvalidWidthError{Width: width}
	}
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	pkt := l.active()
	for remaining := width; remaining > 0; {
		if pkt.Full() {
			l.flush()
			pkt = l.rotate()
		}
		n := uint(pkt.Capacity()*8 - int(pkt.ValidBits))
		if n > remaining {
			n = remaining
		}
		pkt.ValidBits = byte(Pack(pkt.Data, uint(pkt.ValidBits), value>>(remaining-n), n))
		remaining -= n
	}
	atomic.AddUint64(&l.stats.BitsWritten, uint64(width))
	return nil
}

// Flush sends the active packet even if partially filled (or empty),
// then rotates to the next packet. The Sender error is returned, but
// the rotation happens regardless so the same data is never sent twice.
func (l *Logger) Flush() error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()
	err := l.flush()
	l.rotate()
	return err
}

func (l *Logger) acquire() error {
	if atomic.CompareAndSwapInt32(&l.state, stateReady, stateFlushing) {
		return nil
	}
	atomic.AddUint64(&l.stats.Dropped, 1)
	if atomic.LoadInt32(&l.state) == stateUninitialized {
		return ErrNotReady
	}
	return ErrBusy
}

func (l *Logger) release() {
	atomic.StoreInt32(&l.state, stateReady)
}

func (l *Logger) active() *Packet {
	return &l.packets[l.seq%2]
}

// flush hands the active packet to the sender without rotating.
func (l *Logger) flush() error {
	pkt := l.active()
	n := pkt.PutBytes(l.scratch)
	atomic.AddUint64(&l.stats.PacketsSent, 1)
	glog.V(2).Infof("bitlog: send %04x seq=%d bits=%d", pkt.SourceID, pkt.Seq, pkt.ValidBits)
	err := l.sender.WritePacket(l.scratch[:n])
	if err != nil {
		atomic.AddUint64(&l.stats.SendErrors, 1)
		glog.Warningf("bitlog: send %04x seq=%d failed: %v", pkt.SourceID, pkt.Seq, err)
	}
	return err
}

func (l *Logger) rotate() *Packet {
	l.seq = l.seq.Next()
	return l.prepare(l.seq)
}

func (l *Logger) prepare(seq Seq) *Packet {
	pkt := &l.packets[seq%2]
	pkt.reset(seq, l.sourceID)
	return pkt
}
