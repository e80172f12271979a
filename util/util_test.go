package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMin(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint64(2), Min(2, 3))
	assert.Equal(uint64(2), Min(3, 2))
	assert.Equal(uint64(2), Min(2, 2))
}

func TestRoundUp(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint64(1), RoundUp(10, 10))
	assert.Equal(uint64(2), RoundUp(11, 10), "round up by 1")
	assert.Equal(uint64(0), RoundUp(0, 10))
	assert.Equal(uint64(20), RoundUp(200, 10))
	assert.Equal(uint64(5), RoundUp(4096*4+1, 4096))
}
