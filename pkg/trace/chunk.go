package trace

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/robotalks/bitlog.go/pkg/bitlog"
)

var (
	// ErrDataMissing indicates the current chunk ended before the request
	// could be satisfied but more chunks follow; the reader should move to
	// the next chunk and resynchronize.
	ErrDataMissing = errors.New("data missing")
	// ErrDataEnd indicates all data is consumed.
	ErrDataEnd = errors.New("data end")
)

// Mark locates the start of a packet within a chunk.
type Mark struct {
	Offset int
	Time   time.Time
	Seq    bitlog.Seq
}

// Chunk is a run of contiguous bits, as '0' and '1'.
type Chunk struct {
	Bits  string
	Marks []Mark
}

// ChunkReader reads raw bits across chunks.
type ChunkReader struct {
	chunks []Chunk
	chunk  int
	bit    int
}

// NewChunkReader creates a ChunkReader.
func NewChunkReader(chunks []Chunk) *ChunkReader {
	return &ChunkReader{chunks: chunks}
}

// PeekBits returns the next n bits (1..32) MSB-first without consuming.
func (r *ChunkReader) PeekBits(n int) (uint32, error) {
	if n < 1 || n > bitlog.MaxWidth {
		return 0, fmt.Errorf("invalid width %d", n)
	}
	if r.chunk >= len(r.chunks) {
		return 0, ErrDataEnd
	}
	bits := r.chunks[r.chunk].Bits
	if len(bits) < r.bit+n {
		if r.chunk < len(r.chunks)-1 {
			return 0, ErrDataMissing
		}
		return 0, ErrDataEnd
	}
	var v uint32
	for _, c := range bits[r.bit : r.bit+n] {
		v <<= 1
		if c == '1' {
			v |= 1
		}
	}
	return v, nil
}

// ReadBits returns and consumes the next n bits.
func (r *ChunkReader) ReadBits(n int) (uint32, error) {
	v, err := r.PeekBits(n)
	if err == nil {
		r.bit += n
	}
	return v, err
}

// NextChunk moves to the start of the next chunk.
func (r *ChunkReader) NextChunk() bool {
	if r.chunk < len(r.chunks) {
		r.chunk++
	}
	r.bit = 0
	return r.chunk < len(r.chunks)
}

// Time returns the arrival time of the packet holding the current bit and
// the bit offset into that packet.
func (r *ChunkReader) Time() (time.Time, int) {
	if r.chunk >= len(r.chunks) {
		return time.Time{}, 0
	}
	marks := r.chunks[r.chunk].Marks
	i := sort.Search(len(marks), func(i int) bool { return marks[i].Offset > r.bit }) - 1
	if i < 0 {
		return time.Time{}, r.bit
	}
	return marks[i].Time, r.bit - marks[i].Offset
}
