package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetResetTest(t *testing.T) {
	var b BitSet
	assert.True(t, b.Empty())

	b.Set(3)
	b.Set(130)
	assert.True(t, b.Test(3))
	assert.True(t, b.Test(130))
	assert.False(t, b.Test(4))
	assert.Equal(t, uint(2), b.Count())

	b.Reset(130)
	assert.False(t, b.Test(130))
	assert.Equal(t, uint(1), b.Count())
}

func TestCanonicalForm(t *testing.T) {
	var b BitSet
	b.Set(65)
	b.Reset(65)
	assert.True(t, b.Empty(), "trailing zero words must be compacted away")
	assert.Equal(t, uint(0), b.Size())
}

func TestFindFirstNext(t *testing.T) {
	var b BitSet
	b.Set(2)
	b.Set(70)
	b.Set(200)

	require.Equal(t, uint(2), b.FindFirst())
	require.Equal(t, uint(70), b.FindNext(2))
	require.Equal(t, uint(200), b.FindNext(70))
	require.Equal(t, NPos, b.FindNext(200))
}

func TestFindFirstClearNext(t *testing.T) {
	var b BitSet
	b.Set(0)
	b.Set(1)
	b.Set(3)

	assert.Equal(t, uint(2), b.FindFirstClear())
	assert.Equal(t, uint(4), b.FindNextClear(3))
}

func TestFindLast(t *testing.T) {
	var b BitSet
	assert.Equal(t, NPos, b.FindLast())
	b.Set(5)
	b.Set(128)
	assert.Equal(t, uint(128), b.FindLast())
}

func TestIntersectsContains(t *testing.T) {
	var a, b BitSet
	a.Set(1)
	a.Set(2)
	b.Set(2)
	b.Set(3)

	assert.True(t, a.Intersects(&b))
	assert.False(t, a.Contains(&b))

	a.Set(3)
	assert.True(t, a.Contains(&b))
}

func TestOrAnd(t *testing.T) {
	var a, b BitSet
	a.Set(1)
	a.Set(64)
	b.Set(2)
	b.Set(64)

	or := a.Or(&b)
	assert.True(t, or.Test(1))
	assert.True(t, or.Test(2))
	assert.True(t, or.Test(64))

	and := a.And(&b)
	assert.True(t, and.Test(64))
	assert.False(t, and.Test(1))
	assert.Equal(t, uint(1), and.Count())
}

func TestOrAssignAndAssign(t *testing.T) {
	var a, b BitSet
	a.Set(1)
	b.Set(1)
	b.Set(5)

	a.OrAssign(&b)
	assert.True(t, a.Test(5))

	var c BitSet
	c.Set(1)
	c.Set(5)
	c.Set(9)
	c.AndAssign(&b)
	assert.True(t, c.Test(1))
	assert.True(t, c.Test(5))
	assert.False(t, c.Test(9))
}

func TestSubtract(t *testing.T) {
	var a, b BitSet
	a.Set(1)
	a.Set(2)
	a.Set(3)
	b.Set(2)

	a.Subtract(&b)
	assert.True(t, a.Test(1))
	assert.False(t, a.Test(2))
	assert.True(t, a.Test(3))
}

func TestBuildComplement(t *testing.T) {
	var lhs, rhs, out BitSet
	lhs.Set(1)
	lhs.Set(2)
	lhs.Set(3)
	rhs.Set(2)

	out.BuildComplement(&lhs, &rhs)
	assert.True(t, out.Test(1))
	assert.False(t, out.Test(2))
	assert.True(t, out.Test(3))
}

func TestBuildIntersection(t *testing.T) {
	var lhs, rhs, out BitSet
	lhs.Set(1)
	lhs.Set(200)
	rhs.Set(1)
	rhs.Set(200)
	rhs.Set(5)

	out.BuildIntersection(&lhs, &rhs)
	assert.True(t, out.Test(1))
	assert.True(t, out.Test(200))
	assert.False(t, out.Test(5))
}

func TestEqual(t *testing.T) {
	var a, b BitSet
	a.Set(1)
	a.Set(64)
	b.Set(1)
	b.Set(64)
	assert.True(t, a.Equal(&b))

	b.Set(128)
	assert.False(t, a.Equal(&b))
}

func TestStringRoundTrip(t *testing.T) {
	var b BitSet
	b.Set(0)
	b.Set(3)
	b.Set(70)

	s := b.ToString()

	var roundtripped BitSet
	roundtripped.FromString(s)
	assert.True(t, b.Equal(&roundtripped))
}

func TestStringEmpty(t *testing.T) {
	var b BitSet
	assert.Equal(t, "", b.ToString())

	var roundtripped BitSet
	roundtripped.FromString("")
	assert.True(t, roundtripped.Empty())
}

func TestClone(t *testing.T) {
	var b BitSet
	b.Set(4)
	clone := b.Clone()
	clone.Set(9)

	assert.False(t, b.Test(9), "mutating the clone must not affect the original")
	assert.True(t, clone.Test(4))
}

func TestIndexAllocator(t *testing.T) {
	a := NewIndexAllocator(3)

	first := a.AllocIndex()
	second := a.AllocIndex()
	assert.Equal(t, uint(0), first)
	assert.Equal(t, uint(1), second)

	a.FreeIndex(first)
	reused := a.AllocIndex()
	require.NotEqual(t, NPos, reused)

	third := a.AllocIndex()
	fourth := a.AllocIndex()
	_ = third
	assert.NotEqual(t, NPos, fourth)
}
