package math32

import "math/bits"

// Bitmap is a growable set of uint32 indexes packed into 64-bit words.
type Bitmap []uint64

// NewBitmap allocates a bitmap able to hold n bits without growing.
func NewBitmap(n uint32) Bitmap {
	return make(Bitmap, (uint64(n)+63)>>6)
}

// Set sets bit x, growing the bitmap when x is past its end.
func (dst *Bitmap) Set(x uint32) {
	blkAt := int(x >> 6)
	dst.grow(blkAt)
	(*dst)[blkAt] |= 1 << (x & 63)
}

// Remove clears bit x. The bitmap never shrinks.
func (dst *Bitmap) Remove(x uint32) {
	if blkAt := int(x >> 6); blkAt < len(*dst) {
		(*dst)[blkAt] &^= 1 << (x & 63)
	}
}

// Contains reports whether bit x is set.
func (dst Bitmap) Contains(x uint32) bool {
	blkAt := int(x >> 6)
	return blkAt < len(dst) && dst[blkAt]&(1<<(x&63)) != 0
}

// AnyInRange reports whether any bit in [lo, hi) is set.
func (dst Bitmap) AnyInRange(lo, hi uint32) bool {
	if hi <= lo {
		return false
	}

	first, last := int(lo>>6), int((hi-1)>>6)
	if first >= len(dst) {
		return false
	}
	if last >= len(dst) {
		last = len(dst) - 1
		hi = uint32(len(dst)) << 6
	}

	for blk := first; blk <= last; blk++ {
		word := dst[blk]
		if blk == first {
			word &= ^uint64(0) << (lo & 63)
		}
		if blk == int((hi-1)>>6) && hi&63 != 0 {
			word &= (uint64(1) << (hi & 63)) - 1
		}
		if word != 0 {
			return true
		}
	}
	return false
}

// Count returns the number of set bits.
func (dst Bitmap) Count() int {
	n := 0
	for _, w := range dst {
		n += bits.OnesCount64(w)
	}
	return n
}

// Clear unsets every bit, keeping the capacity.
func (dst Bitmap) Clear() {
	for i := range dst {
		dst[i] = 0
	}
}

// grow extends the bitmap so block blkAt exists, doubling the capacity.
func (dst *Bitmap) grow(blkAt int) {
	if blkAt < len(*dst) {
		return
	}
	if blkAt < cap(*dst) {
		*dst = (*dst)[:blkAt+1]
		return
	}

	next := make(Bitmap, blkAt+1, 2*(blkAt+1))
	copy(next, *dst)
	*dst = next
}
