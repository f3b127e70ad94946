// Package stream frames packets over a byte stream.
package stream

import (
	"encoding/binary"
	"io"
)

// DefaultMaxPacketSize limits length-prefixed frames when MaxPacketSize is unset.
const DefaultMaxPacketSize = 1 << 16

// ReadWriter implements PacketReadWriter over an io.ReadWriter.
// When PacketSize is set every frame is exactly PacketSize bytes, which
// fits bitlog packets. Otherwise each packet is prefixed by 4-byte
// (little-endian) length.
type ReadWriter struct {
	io.ReadWriter
	PacketSize int
	// MaxPacketSize bounds length-prefixed frames in both directions.
	MaxPacketSize int
}

// New creates a length-prefixed ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{ReadWriter: s}
}

// NewFixed creates a ReadWriter of fixed-size frames.
func NewFixed(s io.ReadWriter, packetSize int) *ReadWriter {
	return &ReadWriter{ReadWriter: s, PacketSize: packetSize}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	size := p.PacketSize
	if size <= 0 {
		var prefix uint32
		if err := binary.Read(p.ReadWriter, binary.LittleEndian, &prefix); err != nil {
			return nil, err
		}
		if int64(prefix) > int64(p.maxSize()) {
			return nil, &FrameSizeError{Expect: p.maxSize(), Actual: int(prefix)}
		}
		size = int(prefix)
	}
	pkt := make([]byte, size)
	if _, err := io.ReadFull(p.ReadWriter, pkt); err != nil {
		if err == io.EOF && p.PacketSize <= 0 {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return pkt, nil
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if p.PacketSize > 0 {
		if len(pkt) != p.PacketSize {
			return &FrameSizeError{Expect: p.PacketSize, Actual: len(pkt)}
		}
	} else if len(pkt) > p.maxSize() {
		return &FrameSizeError{Expect: p.maxSize(), Actual: len(pkt)}
	} else if err := binary.Write(p.ReadWriter, binary.LittleEndian, uint32(len(pkt))); err != nil {
		return err
	}
	_, err := p.ReadWriter.Write(pkt)
	return err
}

// Close closes the underlying stream if possible.
func (p *ReadWriter) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (p *ReadWriter) maxSize() int {
	if p.MaxPacketSize > 0 {
		return p.MaxPacketSize
	}
	return DefaultMaxPacketSize
}
