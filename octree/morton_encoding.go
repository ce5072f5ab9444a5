package octree

import "github.com/o0olele/svo-go/math32"

// MortonCode represents the Morton code of a 3D cell
type MortonCode uint64

// EncodeMorton3D encodes a 3D coordinate to a Morton code, x in the lowest bit of each triple
func EncodeMorton3D(x, y, z uint32) MortonCode {
	return MortonCode(splitBy3(x) | (splitBy3(y) << 1) | (splitBy3(z) << 2))
}

// splitBy3 expands a 21-bit integer to 63 bits, inserting 2 zeros after each bit
func splitBy3(v uint32) uint64 {
	x := uint64(v) & 0x1fffff
	x = (x | x<<32) & 0x1f00000000ffff
	x = (x | x<<16) & 0x1f0000ff0000ff
	x = (x | x<<8) & 0x100f00f00f00f00f
	x = (x | x<<4) & 0x10c30c30c30c30c3
	x = (x | x<<2) & 0x1249249249249249
	return x
}

// DecodeMorton3D decodes a Morton code to a 3D coordinate
func DecodeMorton3D(morton MortonCode) (uint32, uint32, uint32) {
	x := compact1By2(uint64(morton))
	y := compact1By2(uint64(morton) >> 1)
	z := compact1By2(uint64(morton) >> 2)
	return uint32(x), uint32(y), uint32(z)
}

// compact1By2 is the reverse operation, extracting 1 bit from each 3 bits
func compact1By2(x uint64) uint64 {
	x &= 0x1249249249249249
	x = (x ^ (x >> 2)) & 0x10c30c30c30c30c3
	x = (x ^ (x >> 4)) & 0x100f00f00f00f00f
	x = (x ^ (x >> 8)) & 0x1f0000ff0000ff
	x = (x ^ (x >> 16)) & 0x1f00000000ffff
	x = (x ^ (x >> 32)) & 0x1fffff
	return x
}

// MortonRange returns the half-open code range covered by the aligned block of
// span^3 cells whose min cell is c. span must be a power of two and c a multiple of it.
func MortonRange(c math32.Vector3i, span uint32) (MortonCode, MortonCode) {
	lo := EncodeMorton3D(uint32(c.X), uint32(c.Y), uint32(c.Z))
	return lo, lo + MortonCode(span)*MortonCode(span)*MortonCode(span)
}

// OctantPath returns the octant chosen at each level to reach cell c of a
// grid with 2^levels cells per axis, root first.
func OctantPath(c math32.Vector3i, levels int) []int {
	path := make([]int, levels)
	code := EncodeMorton3D(uint32(c.X), uint32(c.Y), uint32(c.Z))
	for i := 0; i < levels; i++ {
		path[i] = int(code>>(3*(levels-1-i))) & 7
	}
	return path
}
