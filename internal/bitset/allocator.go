package bitset

// IndexAllocator hands out the smallest free index up to maxIndex, reusing
// indices freed by FreeIndex. Used to assign client indices: the client's
// bit position in every interest/advertised bitset is its allocated index.
type IndexAllocator struct {
	set       BitSet
	maxIndex  uint
	lastIndex uint
}

// NewIndexAllocator returns an allocator that hands out indices 0 through
// maxIndex and never beyond.
func NewIndexAllocator(maxIndex uint) *IndexAllocator {
	return &IndexAllocator{maxIndex: maxIndex, lastIndex: NPos}
}

// AllocIndex returns the smallest free index not above maxIndex, or NPos if
// none is available.
func (a *IndexAllocator) AllocIndex() uint {
	idx := a.set.FindFirstClear()
	if idx > a.maxIndex {
		return NPos
	}
	a.set.Set(idx)
	a.lastIndex = idx
	return idx
}

// FreeIndex releases index back to the pool.
func (a *IndexAllocator) FreeIndex(index uint) {
	a.set.Reset(index)
}
