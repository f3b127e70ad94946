// Package bitlog provides a bit-granular packet logger.
package bitlog

// Values of 1 to 32 bits are appended MSB-first into the active packet of
// a double buffer. When the active packet has no free bit left, the next
// write hands the whole fixed-size packet to a Sender, rotates to the other
// packet and resets it with the next sequence number.
//
// The logger never allocates on the write path and never blocks: a write
// issued while another write or flush is in progress (including one issued
// synchronously by the Sender) is dropped.
//
// Producer: the logging device
// Consumer: any PacketWriter transport (see pkg/comm)
