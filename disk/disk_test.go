package disk

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simple-fs/simplefs/common"
)

func mkData(b byte) common.Block {
	blk := make(common.Block, common.BlockSize)
	for i := range blk {
		blk[i] = b
	}
	return blk
}

func TestOpenTruncates(t *testing.T) {
	name := path.Join(t.TempDir(), "image")
	d, err := Open(name, 10)
	require.NoError(t, err)
	defer d.Close()

	fi, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, int64(10*common.BlockSize), fi.Size())
	assert.Equal(t, uint64(10), d.Size())
	assert.False(t, d.Mounted())
}

func TestReadBackWrite(t *testing.T) {
	d := NewMemDisk(10)

	assert.NoError(t, d.Write(3, mkData(0xab)))
	buf := make(common.Block, common.BlockSize)
	assert.NoError(t, d.Read(3, buf))
	assert.Equal(t, mkData(0xab), buf)

	// an untouched block reads as zeroes
	assert.NoError(t, d.Read(4, buf))
	assert.Equal(t, mkData(0), buf)
}

func TestFileReadBackWrite(t *testing.T) {
	name := path.Join(t.TempDir(), "image")
	d, err := Open(name, 10)
	require.NoError(t, err)
	defer d.Close()

	assert.NoError(t, d.Write(9, mkData(0x5a)))
	buf := make(common.Block, common.BlockSize)
	assert.NoError(t, d.Read(9, buf))
	assert.Equal(t, mkData(0x5a), buf)
}

func TestSanityGate(t *testing.T) {
	assert := assert.New(t)
	d := NewMemDisk(10)
	buf := make(common.Block, common.BlockSize)

	assert.ErrorIs(d.Read(10, buf), ErrOutOfRange)
	assert.ErrorIs(d.Write(10, buf), ErrOutOfRange)
	assert.ErrorIs(d.Read(0, nil), ErrBadBuffer)
	assert.ErrorIs(d.Write(0, buf[:100]), ErrBadBuffer)

	assert.NoError(d.Close())
	assert.ErrorIs(d.Read(0, buf), ErrClosed)
	assert.ErrorIs(d.Write(0, buf), ErrClosed)
	assert.ErrorIs(d.Close(), ErrClosed)
}

func TestCounters(t *testing.T) {
	assert := assert.New(t)
	d := NewMemDisk(10)
	buf := make(common.Block, common.BlockSize)

	assert.Equal(uint64(0), d.Reads())
	assert.Equal(uint64(0), d.Writes())

	d.Write(0, buf)
	d.Write(1, buf)
	d.Read(0, buf)
	assert.Equal(uint64(1), d.Reads())
	assert.Equal(uint64(2), d.Writes())

	// failed operations do not count
	d.Read(10, buf)
	assert.Equal(uint64(1), d.Reads())
}

func TestMountedFlag(t *testing.T) {
	d := NewMemDisk(10)
	assert.False(t, d.Mounted())
	d.SetMounted(true)
	assert.True(t, d.Mounted())
	d.SetMounted(false)
	assert.False(t, d.Mounted())
}
