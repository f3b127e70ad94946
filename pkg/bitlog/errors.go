package bitlog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady indicates the logger is not initialized.
	ErrNotReady = errors.New("not ready")
	// ErrBusy indicates a write or flush is already in progress and
	// the call was dropped.
	ErrBusy = errors.New("busy")
	// ErrInvalidWidth is matched by InvalidWidthError.
	ErrInvalidWidth = errors.New("invalid width")
	// ErrInvalidCapacity indicates the packet capacity is out of range.
	ErrInvalidCapacity = fmt.Errorf("capacity must be between 1 and %d", MaxCapacity)
)

// InvalidWidthError rejects a write width outside 1..MaxWidth.
type InvalidWidthError struct {
	Width uint
}

// Error implements error.
func (e *InvalidWidthError) Error() string {
	return fmt.Sprintf("invalid width %d, expect 1 to %d", e.Width, MaxWidth)
}

// Is matches ErrInvalidWidth.
func (e *InvalidWidthError) Is(target error) bool {
	return target == ErrInvalidWidth
}

// PacketSizeError indicates an encoded packet of unexpected size.
type PacketSizeError struct {
	Size int
}

// Error implements error.
func (e *PacketSizeError) Error() string {
	return fmt.Sprintf("invalid packet size %d", e.Size)
}

// ValidBitsError indicates the header claims more bits than data holds.
type ValidBitsError struct {
	ValidBits byte
	Capacity  int
}

// Error implements error.
func (e *ValidBitsError) Error() string {
	return fmt.Sprintf("%d valid bits exceed capacity of %d bytes", e.ValidBits, e.Capacity)
}
