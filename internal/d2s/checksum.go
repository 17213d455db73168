package d2s

import "math/bits"

const checksumOffset = 12

// Checksum computes the save checksum over buf. The stored checksum field
// (bytes 12..15) counts as zero.
func Checksum(buf []byte) uint32 {
	var sum uint32
	for i, b := range buf {
		if i >= checksumOffset && i < checksumOffset+4 {
			b = 0
		}
		sum = bits.RotateLeft32(sum, 1) + uint32(b)
	}
	return sum
}
