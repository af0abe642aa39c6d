// Package bitset implements a dynamically-sized unsigned bitset over bit
// positions 0..∞, backed by 64-bit words. The last word is never zero
// (canonical form), which keeps equality a length check plus word compare
// and keeps Count cheap for sparse sets.
package bitset

import "math/bits"

// NPos is returned by the Find* methods when there is no matching bit.
const NPos = ^uint(0)

// BitSet is a resizable set of non-negative integers. The zero value is an
// empty set ready to use.
type BitSet struct {
	words []uint64
}

func wordIndex(pos uint) uint { return pos / 64 }
func wordOffset(pos uint) uint { return pos % 64 }
func bitPosition(idx, offset uint) uint { return idx*64 + offset }

// Set sets the bit at pos, growing the backing storage if needed.
func (b *BitSet) Set(pos uint) *BitSet {
	idx := wordIndex(pos)
	if idx >= uint(len(b.words)) {
		grown := make([]uint64, idx+1)
		copy(grown, b.words)
		b.words = grown
	}
	b.words[idx] |= 1 << wordOffset(pos)
	return b
}

// Reset clears the bit at pos, shrinking storage if the tail becomes zero.
func (b *BitSet) Reset(pos uint) *BitSet {
	idx := wordIndex(pos)
	if idx < uint(len(b.words)) {
		b.words[idx] &^= 1 << wordOffset(pos)
		b.compact()
	}
	return b
}

// Test reports whether the bit at pos is set.
func (b *BitSet) Test(pos uint) bool {
	idx := wordIndex(pos)
	if idx < uint(len(b.words)) {
		return b.words[idx]&(1<<wordOffset(pos)) != 0
	}
	return false
}

// Clear resets the set to empty.
func (b *BitSet) Clear() {
	b.words = b.words[:0]
}

// Empty reports whether the set has no bits set. Equivalent to None.
func (b *BitSet) Empty() bool { return len(b.words) == 0 }

// None reports whether no bits are set.
func (b *BitSet) None() bool { return len(b.words) == 0 }

// Any reports whether at least one bit is set.
func (b *BitSet) Any() bool { return len(b.words) != 0 }

// Size returns the raw bit capacity, i.e. len(words)*64.
func (b *BitSet) Size() uint { return uint(len(b.words)) * 64 }

// Count returns the number of set bits.
func (b *BitSet) Count() uint {
	var n uint
	for _, w := range b.words {
		n += uint(bits.OnesCount64(w))
	}
	return n
}

// compact drops trailing zero words so the last word is never zero.
func (b *BitSet) compact() {
	n := len(b.words)
	for n > 0 && b.words[n-1] == 0 {
		n--
	}
	b.words = b.words[:n]
}

// FindFirst returns the position of the first set bit, or NPos.
func (b *BitSet) FindFirst() uint {
	for idx, w := range b.words {
		if w != 0 {
			return bitPosition(uint(idx), uint(bits.TrailingZeros64(w)))
		}
	}
	return NPos
}

// FindNext returns the position of the first set bit strictly after pos,
// or NPos.
func (b *BitSet) FindNext(pos uint) uint {
	idx := wordIndex(pos)
	if idx >= uint(len(b.words)) {
		return NPos
	}
	off := wordOffset(pos)
	if off < 63 {
		masked := b.words[idx] &^ ((uint64(1) << (off + 1)) - 1)
		if masked != 0 {
			return bitPosition(idx, uint(bits.TrailingZeros64(masked)))
		}
	}
	for i := idx + 1; i < uint(len(b.words)); i++ {
		if b.words[i] != 0 {
			return bitPosition(i, uint(bits.TrailingZeros64(b.words[i])))
		}
	}
	return NPos
}

// FindLast returns the position of the last set bit, or NPos.
func (b *BitSet) FindLast() uint {
	for idx := len(b.words) - 1; idx >= 0; idx-- {
		if b.words[idx] != 0 {
			return bitPosition(uint(idx), uint(63-bits.LeadingZeros64(b.words[idx])))
		}
	}
	return NPos
}

// FindFirstClear returns the position of the first clear bit. It may be
// exactly Size(), which is fine since Set grows storage automatically.
func (b *BitSet) FindFirstClear() uint {
	for idx, w := range b.words {
		if w != ^uint64(0) {
			return bitPosition(uint(idx), uint(bits.TrailingZeros64(^w)))
		}
	}
	return b.Size()
}

// FindNextClear returns the position of the first clear bit strictly after
// pos. It may be beyond Size().
func (b *BitSet) FindNextClear(pos uint) uint {
	idx := wordIndex(pos)
	if idx >= uint(len(b.words)) {
		return pos + 1
	}
	off := wordOffset(pos)
	if off < 63 {
		masked := b.words[idx] | ((uint64(1) << (off + 1)) - 1)
		if masked != ^uint64(0) {
			return bitPosition(idx, uint(bits.TrailingZeros64(^masked)))
		}
	}
	for i := idx + 1; i < uint(len(b.words)); i++ {
		if b.words[i] != ^uint64(0) {
			return bitPosition(i, uint(bits.TrailingZeros64(^b.words[i])))
		}
	}
	return b.Size()
}

// Intersects reports whether b and rhs have any bit in common.
func (b *BitSet) Intersects(rhs *BitSet) bool {
	n := len(b.words)
	if len(rhs.words) < n {
		n = len(rhs.words)
	}
	for i := 0; i < n; i++ {
		if b.words[i]&rhs.words[i] != 0 {
			return true
		}
	}
	return false
}

// Equal reports whether b and rhs contain exactly the same bits.
func (b *BitSet) Equal(rhs *BitSet) bool {
	if len(b.words) != len(rhs.words) {
		return false
	}
	for i := range b.words {
		if b.words[i] != rhs.words[i] {
			return false
		}
	}
	return true
}

// Or returns a new set containing b | rhs.
func (b *BitSet) Or(rhs *BitSet) *BitSet {
	minsize := len(b.words)
	if len(rhs.words) < minsize {
		minsize = len(rhs.words)
	}
	maxsize := len(b.words)
	if len(rhs.words) > maxsize {
		maxsize = len(rhs.words)
	}
	out := &BitSet{words: make([]uint64, maxsize)}
	for i := 0; i < minsize; i++ {
		out.words[i] = b.words[i] | rhs.words[i]
	}
	for i := minsize; i < len(b.words); i++ {
		out.words[i] = b.words[i]
	}
	for i := minsize; i < len(rhs.words); i++ {
		out.words[i] = rhs.words[i]
	}
	return out
}

// And returns a new set containing b & rhs.
func (b *BitSet) And(rhs *BitSet) *BitSet {
	out := &BitSet{}
	out.BuildIntersection(b, rhs)
	return out
}

// OrAssign mutates b to hold b | rhs.
func (b *BitSet) OrAssign(rhs *BitSet) *BitSet {
	if len(b.words) < len(rhs.words) {
		grown := make([]uint64, len(rhs.words))
		copy(grown, b.words)
		b.words = grown
	}
	for i := range rhs.words {
		b.words[i] |= rhs.words[i]
	}
	return b
}

// AndAssign mutates b to hold b & rhs.
func (b *BitSet) AndAssign(rhs *BitSet) *BitSet {
	minsize := len(b.words)
	if len(rhs.words) < minsize {
		minsize = len(rhs.words)
	}
	for i := 0; i < minsize; i++ {
		b.words[i] &= rhs.words[i]
	}
	for i := minsize; i < len(b.words); i++ {
		b.words[i] = 0
	}
	b.compact()
	return b
}

// Union is an alias of OrAssign, matching the "Set" naming of the original
// implementation this package is modeled on.
func (b *BitSet) Union(rhs *BitSet) { b.OrAssign(rhs) }

// Subtract clears every bit in rhs from b (b &= ^rhs).
func (b *BitSet) Subtract(rhs *BitSet) {
	minsize := len(b.words)
	if len(rhs.words) < minsize {
		minsize = len(rhs.words)
	}
	for i := 0; i < minsize; i++ {
		b.words[i] &^= rhs.words[i]
	}
	b.compact()
}

// BuildComplement sets b = lhs & ^rhs: the "in lhs, not in rhs" set.
func (b *BitSet) BuildComplement(lhs, rhs *BitSet) {
	b.words = make([]uint64, len(lhs.words))
	minsize := len(lhs.words)
	if len(rhs.words) < minsize {
		minsize = len(rhs.words)
	}
	for i := 0; i < minsize; i++ {
		b.words[i] = lhs.words[i] &^ rhs.words[i]
	}
	for i := minsize; i < len(lhs.words); i++ {
		b.words[i] = lhs.words[i]
	}
	b.compact()
}

// BuildIntersection sets b = lhs & rhs.
func (b *BitSet) BuildIntersection(lhs, rhs *BitSet) {
	minsize := len(lhs.words)
	if len(rhs.words) < minsize {
		minsize = len(rhs.words)
	}
	if minsize == 0 {
		b.words = nil
		return
	}
	out := make([]uint64, minsize)
	for i := 0; i < minsize; i++ {
		out[i] = lhs.words[i] & rhs.words[i]
	}
	b.words = out
	b.compact()
}

// Contains reports whether every bit set in rhs is also set in b.
func (b *BitSet) Contains(rhs *BitSet) bool {
	if len(b.words) < len(rhs.words) {
		return false
	}
	for i := range rhs.words {
		if rhs.words[i]&^b.words[i] != 0 {
			return false
		}
	}
	return true
}

// String renders b using a high-bit-first textual form consistent with
// boost::dynamic_bitset::to_string: character i corresponds to bit position
// Size()-1-i.
func (b *BitSet) String() string {
	return b.ToString()
}

// ToString renders b using the high-bit-first textual form described above.
func (b *BitSet) ToString() string {
	n := b.Size()
	out := make([]byte, n)
	for i := uint(0); i < n; i++ {
		if b.Test(n - 1 - i) {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}

// FromString initializes b from the format produced by ToString. The
// leftmost character is the highest bit, so the first bit set is the
// highest one and storage is resized at most once.
func (b *BitSet) FromString(s string) {
	b.words = nil
	n := uint(len(s))
	for i := uint(0); i < n; i++ {
		if s[i] == '1' {
			b.Set(n - 1 - i)
		}
	}
}

// Clone returns an independent copy of b.
func (b *BitSet) Clone() *BitSet {
	out := &BitSet{words: make([]uint64, len(b.words))}
	copy(out.words, b.words)
	return out
}
