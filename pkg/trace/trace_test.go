package trace

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/bitlog.go/pkg/bitlog"
	"github.com/robotalks/bitlog.go/pkg/comm"
)

// collect logs writes and returns the packets as received records.
func collect(t *testing.T, sourceID uint16, writes func(*bitlog.Logger)) []comm.Record {
	var records []comm.Record
	base := time.Unix(1000, 0)
	l, err := bitlog.NewWithCapacity(bitlog.SendFunc(func(b []byte) error {
		pkt, err := bitlog.DecodePacket(b)
		require.NoError(t, err)
		records = append(records, comm.Record{
			Time:   base.Add(time.Duration(len(records)) * time.Second),
			Raw:    append([]byte(nil), b...),
			Packet: pkt,
		})
		return nil
	}), 2)
	require.NoError(t, err)
	l.Init(sourceID)
	writes(l)
	require.NoError(t, l.Flush())
	return records
}

func TestTraceOrdering(t *testing.T) {
	records := collect(t, 5, func(l *bitlog.Logger) {
		for i := 0; i < 8; i++ {
			l.WriteData(uint32(i), 8)
		}
	})
	require.Len(t, records, 4)

	s := NewSet()
	s.Add(records[0])
	s.Add(records[1])
	s.Add(records[1]) // retransmission
	s.Add(records[3]) // records[2] lost
	require.False(t, s.Add(comm.Record{Raw: []byte{1}}))

	require.Equal(t, []uint16{5}, s.Sources())
	tr := s.Trace(5)
	require.Len(t, tr.Entries, 4)
	assert.True(t, tr.Entries[2].IsGap())
	assert.Equal(t, 1, tr.Gaps())
	assert.Equal(t, bitlog.Seq(3), tr.Entries[3].Packet.Seq)

	out := s.String()
	assert.True(t, strings.HasPrefix(out, "Trace for source 0005:\n"))
	assert.Contains(t, out, "    MISSING DATA\n")
	assert.Contains(t, out, "seq   1 bits  16: 02 03")
}

func TestTraceSequenceWrap(t *testing.T) {
	var tr Trace
	for _, seq := range []bitlog.Seq{254, 255, 0, 1} {
		tr.Add(time.Time{}, &bitlog.Packet{Seq: seq, Data: make([]byte, 1)})
	}
	require.Len(t, tr.Entries, 4)
	require.Zero(t, tr.Gaps())
}

func TestChunkReader(t *testing.T) {
	records := collect(t, 9, func(l *bitlog.Logger) {
		l.WriteData(0xabc, 12)
		l.WriteData(0x5, 4)
		l.WriteData(0x3, 2) // second packet
		l.WriteData(0x1234, 16)
		l.WriteData(0xa, 4) // third packet ends with 00 1010
	})
	require.Len(t, records, 3)
	s := NewSet()
	s.Add(records[0])
	s.Add(records[2])

	chunks := s.Trace(9).Chunks()
	require.Len(t, chunks, 2)
	assert.Equal(t, "1010101111000101", chunks[0].Bits)
	assert.Equal(t, "001010", chunks[1].Bits)

	r := NewChunkReader(chunks)
	v, err := r.ReadBits(12)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xabc), v)
	at, offset := r.Time()
	assert.True(t, at.Equal(records[0].Time))
	assert.Equal(t, 12, offset)

	_, err = r.ReadBits(8)
	assert.Equal(t, ErrDataMissing, err)
	v, err = r.PeekBits(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x5), v)

	require.True(t, r.NextChunk())
	v, err = r.ReadBits(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x2), v)
	_, err = r.ReadBits(4)
	assert.Equal(t, ErrDataEnd, err)
	require.False(t, r.NextChunk())
	_, err = r.ReadBits(1)
	assert.Equal(t, ErrDataEnd, err)
	_, err = r.ReadBits(33)
	assert.Error(t, err)
}
