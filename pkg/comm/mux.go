package comm

import (
	fx "github.com/robotalks/bitlog.go/pkg/framework"
)

// Mux writes each packet to multiple PacketWriters.
type Mux struct {
	Writers []PacketWriter
}

// NewMux creates a Mux.
func NewMux(writers ...PacketWriter) *Mux {
	return &Mux{Writers: writers}
}

// Add adds more writers.
func (m *Mux) Add(writers ...PacketWriter) {
	m.Writers = append(m.Writers, writers...)
}

// WritePacket implements PacketWriter. Every writer is attempted.
func (m *Mux) WritePacket(pkt []byte) error {
	var errs fx.AggregatedError
	for _, w := range m.Writers {
		errs.Add(w.WritePacket(pkt))
	}
	return errs.Aggregate()
}

// Close closes all writers implementing io.Closer.
func (m *Mux) Close() error {
	var errs fx.AggregatedError
	for _, w := range m.Writers {
		errs.Add(Close(w))
	}
	return errs.Aggregate()
}
