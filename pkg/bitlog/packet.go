package bitlog

import (
	"encoding/binary"
	"io"
	"strings"
)

// Packet sizes.
const (
	// HeaderSize is the size of the encoded packet header.
	HeaderSize = 4
	// DefaultCapacity is the default size of packet data in bytes.
	DefaultCapacity = 16
	// MaxCapacity is the largest data size whose bit count fits ValidBits.
	MaxCapacity = 31
	// DefaultPacketSize is the encoded size of a packet of DefaultCapacity.
	DefaultPacketSize = HeaderSize + DefaultCapacity
)

// Seq defines the type of packet sequence number.
type Seq byte

// Next calculates the next sequence number, wrapping at 256.
func (s Seq) Next() Seq {
	return s + 1
}

// Follows reports whether s comes immediately after prev.
func (s Seq) Follows(prev Seq) bool {
	return prev.Next() == s
}

// Packet is a single fixed-size bitlog packet.
type Packet struct {
	ValidBits byte
	Seq       Seq
	SourceID  uint16
	Data      []byte
}

// Capacity returns the size of data in bytes.
func (p *Packet) Capacity() int {
	return len(p.Data)
}

// Full reports whether no free bit is left.
func (p *Packet) Full() bool {
	return int(p.ValidBits) == len(p.Data)*8
}

// Size returns the encoded size.
func (p *Packet) Size() int {
	return HeaderSize + len(p.Data)
}

func (p *Packet) reset(seq Seq, sourceID uint16) {
	p.ValidBits, p.Seq, p.SourceID = 0, seq, sourceID
	for i := range p.Data {
		p.Data[i] = 0
	}
}

// PutBytes encodes the packet into dst which must hold Size() bytes.
// It returns the number of bytes written.
func (p *Packet) PutBytes(dst []byte) int {
	dst[0], dst[1] = p.ValidBits, byte(p.Seq)
	binary.LittleEndian.PutUint16(dst[2:], p.SourceID)
	return HeaderSize + copy(dst[HeaderSize:], p.Data)
}

// Bytes returns encoded bytes for sending.
func (p *Packet) Bytes() []byte {
	b := make([]byte, p.Size())
	p.PutBytes(b)
	return b
}

// WriteTo writes encoded bytes.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// Clone returns a deep copy.
func (p *Packet) Clone() *Packet {
	c := *p
	c.Data = append([]byte(nil), p.Data...)
	return &c
}

// Bit returns the bit at index i of data (MSB-first).
func (p *Packet) Bit(i int) bool {
	return p.Data[i/8]&(0x80>>uint(i%8)) != 0
}

// BitString returns the valid bits as a string of '0' and '1'.
func (p *Packet) BitString() string {
	var sb strings.Builder
	sb.Grow(int(p.ValidBits))
	for i := 0; i < int(p.ValidBits); i++ {
		if p.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// DecodePacket parses an encoded packet. Data is copied.
func DecodePacket(b []byte) (*Packet, error) {
	if len(b) < HeaderSize+1 || len(b) > HeaderSize+MaxCapacity {
		return nil, &PacketSizeError{Size: len(b)}
	}
	p := &Packet{
		ValidBits: b[0],
		Seq:       Seq(b[1]),
		SourceID:  binary.LittleEndian.Uint16(b[2:]),
		Data:      append([]byte(nil), b[HeaderSize:]...),
	}
	if int(p.ValidBits) > len(p.Data)*8 {
		return nil, &ValidBitsError{ValidBits: p.ValidBits, Capacity: len(p.Data)}
	}
	return p, nil
}
