package stream

import "fmt"

// FrameSizeError rejects a packet not matching the fixed frame size or
// exceeding the maximum size of a length-prefixed frame.
type FrameSizeError struct {
	Expect int
	Actual int
}

// Error implements error.
func (e *FrameSizeError) Error() string {
	return fmt.Sprintf("packet size %d, expect %d", e.Actual, e.Expect)
}
