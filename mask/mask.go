// Package mask provides the presence mask that travels with every burst.
//
// A burst is a fixed array of at most Width packet slots. Bit i of the mask
// tells whether slot i holds a live packet for the current call. Slots whose
// bit is clear must never be dereferenced.
package mask

import "math/bits"

// Width is the number of slots a single mask can address.
const Width = 64

// Mask marks the live slots of a burst.
type Mask uint64

// All has every slot set.
const All = Mask(^uint64(0))

// FirstN returns a mask with the n lowest bits set. Values of n outside
// [0, Width] are clamped.
func FirstN(n int) Mask {
	if n <= 0 {
		return 0
	}

	if n >= Width {
		return All
	}

	return Mask(uint64(1)<<uint(n) - 1)
}

// Set returns m with bit i set.
func (m Mask) Set(i int) Mask {
	return m | Mask(uint64(1)<<uint(i))
}

// Clear returns m with bit i cleared.
func (m Mask) Clear(i int) Mask {
	return m &^ Mask(uint64(1)<<uint(i))
}

// Has reports whether bit i is set.
func (m Mask) Has(i int) bool {
	if i < 0 || i >= Width {
		return false
	}

	return m&Mask(uint64(1)<<uint(i)) != 0
}

// Count returns the number of live slots.
func (m Mask) Count() int {
	return bits.OnesCount64(uint64(m))
}

// Empty reports whether no slot is live.
func (m Mask) Empty() bool {
	return m == 0
}

// Pop returns the index of the lowest set bit and the mask without it. It
// returns -1 and 0 for an empty mask. Typical iteration:
//
//	for it := m; !it.Empty(); {
//		var i int
//		i, it = it.Pop()
//		use(pkts[i])
//	}
func (m Mask) Pop() (int, Mask) {
	if m == 0 {
		return -1, 0
	}

	i := bits.TrailingZeros64(uint64(m))

	return i, m & (m - 1)
}

// Highest returns the index of the highest set bit, or -1 when empty.
func (m Mask) Highest() int {
	if m == 0 {
		return -1
	}

	return Width - 1 - bits.LeadingZeros64(uint64(m))
}

// ForEach calls fn with the index of every set bit, lowest first.
func (m Mask) ForEach(fn func(i int)) {
	for it := m; it != 0; it &= it - 1 {
		fn(bits.TrailingZeros64(uint64(it)))
	}
}

// Indices lists the set bits, lowest first.
func (m Mask) Indices() []int {
	out := make([]int, 0, m.Count())
	m.ForEach(func(i int) {
		out = append(out, i)
	})

	return out
}

// FitsIn reports whether every set bit addresses a slot below n.
func (m Mask) FitsIn(n int) bool {
	if n >= Width {
		return true
	}

	if n <= 0 {
		return m == 0
	}

	return uint64(m)>>uint(n) == 0
}
