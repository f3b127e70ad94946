// Package trace reassembles received bitlog packets into per-source
// streams of bits, marking where packets were lost.
package trace

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robotalks/bitlog.go/pkg/bitlog"
	"github.com/robotalks/bitlog.go/pkg/comm"
)

// Entry is a packet in a trace, or a gap if Packet is nil.
type Entry struct {
	Time   time.Time
	Packet *bitlog.Packet
}

// IsGap reports whether packets are missing at this position.
func (e Entry) IsGap() bool {
	return e.Packet == nil
}

// Trace is the ordered packets of a single source.
type Trace struct {
	SourceID uint16
	Entries  []Entry

	started bool
	prior   bitlog.Seq
}

// Add appends a packet in arrival order.
// A repeated sequence number replaces the previous packet (retransmission),
// any other discontinuity inserts a gap.
func (t *Trace) Add(at time.Time, pkt *bitlog.Packet) {
	entry := Entry{Time: at, Packet: pkt}
	switch {
	case !t.started || pkt.Seq.Follows(t.prior):
		t.Entries = append(t.Entries, entry)
	case pkt.Seq == t.prior:
		t.Entries[len(t.Entries)-1] = entry
	default:
		t.Entries = append(t.Entries, Entry{}, entry)
	}
	t.started, t.prior = true, pkt.Seq
}

// Gaps returns the number of gaps.
func (t *Trace) Gaps() (n int) {
	for _, e := range t.Entries {
		if e.IsGap() {
			n++
		}
	}
	return
}

// Chunks splits the trace into runs of contiguous bits.
func (t *Trace) Chunks() []Chunk {
	var chunks []Chunk
	var cur Chunk
	var bits strings.Builder
	for _, e := range t.Entries {
		if e.IsGap() {
			if bits.Len() > 0 {
				cur.Bits = bits.String()
				chunks = append(chunks, cur)
			}
			cur = Chunk{}
			bits.Reset()
			continue
		}
		cur.Marks = append(cur.Marks, Mark{Offset: bits.Len(), Time: e.Time, Seq: e.Packet.Seq})
		bits.WriteString(e.Packet.BitString())
	}
	if bits.Len() > 0 {
		cur.Bits = bits.String()
		chunks = append(chunks, cur)
	}
	return chunks
}

// String renders the trace.
func (t *Trace) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Trace for source %04x:\n", t.SourceID)
	for _, e := range t.Entries {
		if e.IsGap() {
			sb.WriteString("    MISSING DATA\n")
			continue
		}
		fmt.Fprintf(&sb, "    seq %3d bits %3d:", e.Packet.Seq, e.Packet.ValidBits)
		for _, b := range e.Packet.Data {
			fmt.Fprintf(&sb, " %02X", b)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Set collects traces of all sources. It is safe for concurrent use and
// implements comm.Handler.
type Set struct {
	lock   sync.Mutex
	traces map[uint16]*Trace
}

// NewSet creates a Set.
func NewSet() *Set {
	return &Set{traces: make(map[uint16]*Trace)}
}

// Add adds a received record. Records without a valid packet are ignored.
func (s *Set) Add(rec comm.Record) bool {
	if rec.Packet == nil {
		return false
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	t := s.traces[rec.Packet.SourceID]
	if t == nil {
		t = &Trace{SourceID: rec.Packet.SourceID}
		s.traces[t.SourceID] = t
	}
	t.Add(rec.Time, rec.Packet)
	return true
}

// HandlePacket implements comm.Handler.
func (s *Set) HandlePacket(_ context.Context, rec comm.Record) {
	s.Add(rec)
}

// Sources returns the source IDs in ascending order.
func (s *Set) Sources() []uint16 {
	s.lock.Lock()
	defer s.lock.Unlock()
	ids := make([]uint16, 0, len(s.traces))
	for id := range s.traces {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Trace returns the trace of a source, or nil.
func (s *Set) Trace(sourceID uint16) *Trace {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.traces[sourceID]
}

// String renders all traces.
func (s *Set) String() string {
	var sb strings.Builder
	for _, id := range s.Sources() {
		sb.WriteString(s.Trace(id).String())
	}
	return sb.String()
}
