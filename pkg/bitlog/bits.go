package bitlog

// MaxWidth is the maximum bit width of a single write.
const MaxWidth = 32

// alignLeft moves the low width bits of value to the top of the word.
func alignLeft(value uint32, width uint) uint32 {
	if width >= MaxWidth {
		return value
	}
	return value << (MaxWidth - width)
}

// takeBits extracts the leading bits of a left-aligned word positioned for
// a destination byte whose first bitOffset bits are already used.
// It returns the byte to OR in and the number of bits consumed.
func takeBits(word uint32, bitOffset, remaining uint) (byte, uint) {
	n := 8 - bitOffset
	if remaining < n {
		n = remaining
	}
	b := byte(word >> (24 + bitOffset))
	// drop bits beyond n which belong to the next write.
	b &^= byte(0xff) >> (bitOffset + n)
	return b, n
}

// Pack appends the low width bits of value into dst starting at bit
// position bitPos (MSB-first) and returns the new bit position.
// dst must have room for all bits; bits already set are OR-ed, so the
// region after bitPos is expected to be zero.
func Pack(dst []byte, bitPos uint, value uint32, width uint) uint {
	word := alignLeft(value, width)
	for width > 0 {
		b, n := takeBits(word, bitPos%8, width)
		dst[bitPos/8] |= b
		word <<= n
		width -= n
		bitPos += n
	}
	return bitPos
}
