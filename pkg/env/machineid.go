package env

import (
	"hash/fnv"

	"github.com/denisbrodbeck/machineid"
)

// MachineSourceID derives a 16-bit source ID from the machine ID.
// It returns 0 if the machine ID is unavailable.
func MachineSourceID() uint16 {
	id, err := machineid.ProtectedID("bitlog")
	if err != nil {
		return 0
	}
	return SourceIDFromString(id)
}

// SourceIDFromString folds an arbitrary identifier into 16 bits.
func SourceIDFromString(s string) uint16 {
	h := fnv.New32a()
	h.Write([]byte(s))
	sum := h.Sum32()
	return uint16(sum>>16) ^ uint16(sum)
}
