package layout

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simple-fs/simplefs/common"
)

func TestMkSuperBlock(t *testing.T) {
	assert := assert.New(t)

	sb := MkSuperBlock(10)
	assert.Equal(common.MAGIC, sb.Magic)
	assert.Equal(uint32(10), sb.Blocks)
	assert.Equal(uint32(1), sb.InodeBlocks)
	assert.Equal(uint32(128), sb.Inodes)
	assert.Equal(common.Bnum(2), sb.DataStart())

	sb = MkSuperBlock(200)
	assert.Equal(uint32(20), sb.InodeBlocks)
	assert.Equal(uint32(2560), sb.Inodes)

	// ratio rounds up
	sb = MkSuperBlock(11)
	assert.Equal(uint32(2), sb.InodeBlocks)
}

func TestSuperBlockLayout(t *testing.T) {
	assert := assert.New(t)
	blk := MkSuperBlock(200).Encode()
	assert.Equal(int(common.BlockSize), len(blk))

	// the four fields are packed little-endian at the head of block 0
	assert.Equal(common.MAGIC, binary.LittleEndian.Uint32(blk[0:4]))
	assert.Equal(uint32(200), binary.LittleEndian.Uint32(blk[4:8]))
	assert.Equal(uint32(20), binary.LittleEndian.Uint32(blk[8:12]))
	assert.Equal(uint32(2560), binary.LittleEndian.Uint32(blk[12:16]))

	assert.Equal(MkSuperBlock(200), DecodeSuperBlock(blk))
}

func TestInodeLayout(t *testing.T) {
	assert := assert.New(t)
	ino := Inode{
		Valid:    1,
		Size:     24576,
		Direct:   [common.NDIRECT]uint32{21, 22, 23, 24, 25},
		Indirect: 26,
	}

	blk := make(common.Block, common.BlockSize)
	PutInode(blk, 3, ino)

	// records are 32 bytes, packed back to back
	off := 3 * common.INODESZ
	assert.Equal(uint32(1), binary.LittleEndian.Uint32(blk[off:off+4]))
	assert.Equal(uint32(24576), binary.LittleEndian.Uint32(blk[off+4:off+8]))
	assert.Equal(uint32(21), binary.LittleEndian.Uint32(blk[off+8:off+12]))
	assert.Equal(uint32(26), binary.LittleEndian.Uint32(blk[off+28:off+32]))

	assert.Equal(ino, GetInode(blk, 3))

	// neighboring slots are untouched
	assert.Equal(Inode{}, GetInode(blk, 2))
	assert.Equal(Inode{}, GetInode(blk, 4))
}

func TestInumMapping(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(common.Bnum(1), InumBlock(0))
	assert.Equal(uint64(0), InumSlot(0))
	assert.Equal(common.Bnum(1), InumBlock(127))
	assert.Equal(uint64(127), InumSlot(127))
	assert.Equal(common.Bnum(2), InumBlock(128))
	assert.Equal(uint64(0), InumSlot(128))
	assert.Equal(common.Bnum(3), InumBlock(300))
	assert.Equal(uint64(44), InumSlot(300))
}

func TestPointerLayout(t *testing.T) {
	assert := assert.New(t)
	blk := make(common.Block, common.BlockSize)

	PutPointer(blk, 0, 30)
	PutPointer(blk, 1023, 31)
	assert.Equal(uint32(30), binary.LittleEndian.Uint32(blk[0:4]))
	assert.Equal(uint32(31), binary.LittleEndian.Uint32(blk[4092:4096]))
	assert.Equal(common.Bnum(30), GetPointer(blk, 0))
	assert.Equal(common.Bnum(31), GetPointer(blk, 1023))
	assert.Equal(common.NULLBNUM, GetPointer(blk, 512))
}

func TestMaxFileSize(t *testing.T) {
	assert.Equal(t, uint64(4214784), MAXFILESZ)
}
