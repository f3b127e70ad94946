// Package comm provides packet transports for bitlog packets.
package comm

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes. It satisfies bitlog.Sender.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// WriteFunc is func type of PacketWriter.
type WriteFunc func([]byte) error

// WritePacket implements PacketWriter.
func (f WriteFunc) WritePacket(pkt []byte) error {
	return f(pkt)
}
