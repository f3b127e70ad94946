// Package collatz is the demo workload instrumented with bitlog.
package collatz

import "math"

// Writer is the logging surface used by Trace, satisfied by *bitlog.Logger.
type Writer interface {
	WriteData(value uint32, width uint) error
}

// Log record layout.
const (
	// StepWidth is the width of a step record: 1 for odd, 0 for even.
	StepWidth = 1
	// ResultWidth is the width of the final iteration count.
	ResultWidth = 16
	// StartWidth is the width of the starting number.
	StartWidth = 32
)

// Iterations returns the number of steps for n to reach 1,
// or -1 if n < 1 or the sequence overflows.
func Iterations(n int) int {
	return Trace(n, nil)
}

// Trace is Iterations logging the start number, the parity of each step
// and the result into w. Logging errors are ignored.
func Trace(n int, w Writer) int {
	log := func(v uint32, width uint) {
		if w != nil {
			w.WriteData(v, width)
		}
	}
	if n < 1 {
		return -1
	}
	log(uint32(n), StartWidth)
	iterations := 0
	for n != 1 {
		if n%2 == 0 {
			log(0, StepWidth)
			n /= 2
		} else {
			log(1, StepWidth)
			if n > (math.MaxInt32-1)/3 {
				return -1
			}
			n = n*3 + 1
		}
		iterations++
	}
	log(uint32(iterations), ResultWidth)
	return iterations
}
