package fs

import (
	"github.com/simple-fs/simplefs/common"
	"github.com/simple-fs/simplefs/layout"
	"github.com/simple-fs/simplefs/util"
)

// loadInode reads the block hosting inum and decodes its record. The
// hosting block is returned so the caller can store an updated record
// without rereading it.
func (fsys *FileSystem) loadInode(inum common.Inum) (layout.Inode, common.Block, error) {
	if fsys.disk == nil {
		return layout.Inode{}, nil, ErrNotMounted
	}
	if inum >= uint64(fsys.meta.Inodes) {
		return layout.Inode{}, nil, ErrInvalidInode
	}
	blk := make(common.Block, common.BlockSize)
	if err := fsys.disk.Read(layout.InumBlock(inum), blk); err != nil {
		return layout.Inode{}, nil, err
	}
	return layout.GetInode(blk, layout.InumSlot(inum)), blk, nil
}

// storeInode encodes ino into its slot of blk and writes the block
// back to the inode table.
func (fsys *FileSystem) storeInode(inum common.Inum, ino layout.Inode, blk common.Block) error {
	layout.PutInode(blk, layout.InumSlot(inum), ino)
	return fsys.disk.Write(layout.InumBlock(inum), blk)
}

// allocBlock takes the lowest free data block. Blocks 0 through the
// end of the inode table are reserved at mount, so the result is
// always a legal data block.
func (fsys *FileSystem) allocBlock() (common.Bnum, error) {
	b, ok := fsys.freeBlocks.AllocNum()
	if !ok {
		return common.NULLBNUM, ErrNoSpace
	}
	return b, nil
}

// bmap translates file-block index k of ino into a data-block number.
// Without allocate it returns NULLBNUM for a hole. With allocate, a
// missing block (and the indirect block itself on first use) is taken
// lowest-first from the free map; an updated indirect table is written
// back immediately, while updates to ino itself are left for the
// caller to persist. fresh reports that the returned block was newly
// allocated and has no meaningful contents yet.
func (fsys *FileSystem) bmap(ino *layout.Inode, k uint64, allocate bool) (b common.Bnum, fresh bool, err error) {
	if k < common.NDIRECT {
		b = common.Bnum(ino.Direct[k])
		if b == common.NULLBNUM && allocate {
			b, err = fsys.allocBlock()
			if err != nil {
				return common.NULLBNUM, false, err
			}
			ino.Direct[k] = uint32(b)
			fresh = true
		}
		return b, fresh, nil
	}

	slot := k - common.NDIRECT
	if slot >= common.NINDIRECT {
		return common.NULLBNUM, false, ErrNoSpace
	}
	if ino.Indirect == uint32(common.NULLBNUM) {
		if !allocate {
			return common.NULLBNUM, false, nil
		}
		ib, err := fsys.allocBlock()
		if err != nil {
			return common.NULLBNUM, false, err
		}
		// zero-fill the new pointer table before first use
		if err := fsys.disk.Write(ib, make(common.Block, common.BlockSize)); err != nil {
			fsys.freeBlocks.FreeNum(ib)
			return common.NULLBNUM, false, err
		}
		ino.Indirect = uint32(ib)
		util.DPrintf(2, "bmap: indirect block %d allocated\n", ib)
	}

	ptrs := make(common.Block, common.BlockSize)
	if err := fsys.disk.Read(common.Bnum(ino.Indirect), ptrs); err != nil {
		return common.NULLBNUM, false, err
	}
	b = layout.GetPointer(ptrs, slot)
	if b == common.NULLBNUM && allocate {
		b, err = fsys.allocBlock()
		if err != nil {
			return common.NULLBNUM, false, err
		}
		layout.PutPointer(ptrs, slot, b)
		if err := fsys.disk.Write(common.Bnum(ino.Indirect), ptrs); err != nil {
			fsys.freeBlocks.FreeNum(b)
			return common.NULLBNUM, false, err
		}
		fresh = true
	}
	return b, fresh, nil
}
