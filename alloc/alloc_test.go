package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlloc(t *testing.T) {
	assert := assert.New(t)
	max := uint64(32)
	a := MkAlloc(max)

	assert.Equal(max, a.NumFree(), "everything should be initially free")

	n, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(0), n, "lowest number first")

	a.MarkUsed(n + 1)
	n2, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(2), n2, "should skip something marked used")

	assert.Equal(max-3, a.NumFree(), "should have used 3 numbers")

	a.FreeNum(n)
	a.FreeNum(n2)
	assert.Equal(max-1, a.NumFree(), "should have freed")

	n3, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(0), n3, "freed numbers are reused lowest-first")
}

func TestAllocExhaustion(t *testing.T) {
	assert := assert.New(t)
	a := MkAlloc(4)
	for i := uint64(0); i < 4; i++ {
		n, ok := a.AllocNum()
		assert.True(ok)
		assert.Equal(i, n)
	}
	_, ok := a.AllocNum()
	assert.False(ok, "map is exhausted")
	assert.Equal(uint64(0), a.NumFree())

	a.FreeNum(2)
	n, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(2), n)
}

func TestAllocIdempotence(t *testing.T) {
	assert := assert.New(t)
	a := MkAlloc(8)

	a.MarkUsed(3)
	a.MarkUsed(3)
	assert.Equal(uint64(7), a.NumFree(), "double reserve counts once")

	a.FreeNum(3)
	a.FreeNum(3)
	assert.Equal(uint64(8), a.NumFree(), "double free counts once")

	assert.False(a.InUse(3))
	a.MarkUsed(3)
	assert.True(a.InUse(3))
}
