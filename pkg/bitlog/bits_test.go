package bitlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlignLeft(t *testing.T) {
	require.Equal(t, uint32(0x80000000), alignLeft(1, 1))
	require.Equal(t, uint32(0xabc00000), alignLeft(0xabc, 12))
	require.Equal(t, uint32(0xabc00000), alignLeft(0xfffffabc, 12))
	require.Equal(t, uint32(0xdeadbeef), alignLeft(0xdeadbeef, 32))
}

func TestTakeBits(t *testing.T) {
	testCases := []struct {
		name      string
		word      uint32
		offset    uint
		remaining uint
		b         byte
		n         uint
	}{
		{"full byte", 0xab000000, 0, 8, 0xab, 8},
		{"aligned partial", 0xab000000, 0, 4, 0xa0, 4},
		{"offset fills byte", 0xc0000000, 4, 12, 0x0c, 4},
		{"offset partial", 0xc0000000, 2, 2, 0x30, 2},
		{"masks trailing bits", 0xffffffff, 3, 2, 0x18, 2},
		{"last bit", 0x80000000, 7, 1, 0x01, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, n := takeBits(tc.word, tc.offset, tc.remaining)
			require.Equal(t, tc.b, b)
			require.Equal(t, tc.n, n)
		})
	}
}

func TestPack(t *testing.T) {
	buf := make([]byte, 4)
	pos := Pack(buf, 0, 0xabc, 12)
	require.Equal(t, uint(12), pos)
	pos = Pack(buf, pos, 0x5, 4)
	require.Equal(t, uint(16), pos)
	pos = Pack(buf, pos, 1, 1)
	pos = Pack(buf, pos, 0, 2)
	pos = Pack(buf, pos, 0x1f, 5)
	require.Equal(t, uint(24), pos)
	require.Equal(t, []byte{0xab, 0xc5, 0x9f, 0}, buf)
}

func TestPackSplit(t *testing.T) {
	const value, width = uint32(0xdeadbeef), uint(32)
	whole := make([]byte, 8)
	Pack(whole, 3, value, width)
	for first := uint(1); first < width; first++ {
		split := make([]byte, 8)
		rest := width - first
		pos := Pack(split, 3, value>>rest, first)
		pos = Pack(split, pos, value, rest)
		require.Equal(t, uint(3)+width, pos)
		require.Equal(t, whole, split, "split at %d", first)
	}
}
