// Package layout defines the on-disk schema: the superblock in block
// 0, the packed inode records of the inode table, and the pointer
// table inside an indirect block. Records are little-endian packed
// uint32s with no padding.
package layout

import (
	"github.com/tchajed/marshal"

	"github.com/simple-fs/simplefs/common"
	"github.com/simple-fs/simplefs/util"
)

// MAXFILESZ is the largest file the pointer layout can address:
// five direct blocks plus one block of indirect pointers.
const MAXFILESZ uint64 = (common.NDIRECT + common.NINDIRECT) * common.BlockSize

// SuperBlock is the block-0 record describing the geometry of the
// image. Written once by format, read at mount, never recomputed.
type SuperBlock struct {
	Magic       uint32
	Blocks      uint32
	InodeBlocks uint32
	Inodes      uint32
}

// MkSuperBlock computes the geometry format writes for a disk of the
// given size: one tenth of the blocks, rounded up, hold inodes.
func MkSuperBlock(blocks uint64) SuperBlock {
	inodeBlocks := util.RoundUp(blocks, common.INODERATIO)
	return SuperBlock{
		Magic:       common.MAGIC,
		Blocks:      uint32(blocks),
		InodeBlocks: uint32(inodeBlocks),
		Inodes:      uint32(inodeBlocks * common.INODEBLK),
	}
}

func (sb SuperBlock) Encode() common.Block {
	enc := marshal.NewEnc(common.BlockSize)
	enc.PutInt32(sb.Magic)
	enc.PutInt32(sb.Blocks)
	enc.PutInt32(sb.InodeBlocks)
	enc.PutInt32(sb.Inodes)
	return enc.Finish()
}

func DecodeSuperBlock(blk common.Block) SuperBlock {
	dec := marshal.NewDec(blk)
	return SuperBlock{
		Magic:       dec.GetInt32(),
		Blocks:      dec.GetInt32(),
		InodeBlocks: dec.GetInt32(),
		Inodes:      dec.GetInt32(),
	}
}

// DataStart is the first block past the inode table.
func (sb SuperBlock) DataStart() common.Bnum {
	return 1 + common.Bnum(sb.InodeBlocks)
}

// Inode is one 32-byte record of the inode table. Valid is 0 or 1;
// pointer fields hold absolute block numbers, 0 meaning unallocated.
type Inode struct {
	Valid    uint32
	Size     uint32
	Direct   [common.NDIRECT]uint32
	Indirect uint32
}

// InumBlock returns the disk block hosting inum's record.
func InumBlock(inum common.Inum) common.Bnum {
	return 1 + inum/common.INODEBLK
}

// InumSlot returns inum's record index within its hosting block.
func InumSlot(inum common.Inum) uint64 {
	return inum % common.INODEBLK
}

// GetInode decodes record slot of an inode block.
func GetInode(blk common.Block, slot uint64) Inode {
	off := slot * common.INODESZ
	dec := marshal.NewDec(blk[off : off+common.INODESZ])
	var ino Inode
	ino.Valid = dec.GetInt32()
	ino.Size = dec.GetInt32()
	for i := range ino.Direct {
		ino.Direct[i] = dec.GetInt32()
	}
	ino.Indirect = dec.GetInt32()
	return ino
}

// PutInode encodes ino into record slot of an inode block.
func PutInode(blk common.Block, slot uint64, ino Inode) {
	enc := marshal.NewEnc(common.INODESZ)
	enc.PutInt32(ino.Valid)
	enc.PutInt32(ino.Size)
	for _, p := range ino.Direct {
		enc.PutInt32(p)
	}
	enc.PutInt32(ino.Indirect)
	off := slot * common.INODESZ
	copy(blk[off:off+common.INODESZ], enc.Finish())
}

// GetPointer reads entry slot of a pointer block.
func GetPointer(blk common.Block, slot uint64) common.Bnum {
	dec := marshal.NewDec(blk[slot*4 : slot*4+4])
	return common.Bnum(dec.GetInt32())
}

// PutPointer stores b as entry slot of a pointer block.
func PutPointer(blk common.Block, slot uint64, b common.Bnum) {
	enc := marshal.NewEnc(4)
	enc.PutInt32(uint32(b))
	copy(blk[slot*4:slot*4+4], enc.Finish())
}
