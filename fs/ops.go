package fs

import (
	"errors"

	"github.com/simple-fs/simplefs/common"
	"github.com/simple-fs/simplefs/layout"
	"github.com/simple-fs/simplefs/util"
)

// Create reserves the lowest free inode slot and returns its number.
// The free map is only updated once the inode table write has
// succeeded, so a device failure leaves the file system unchanged.
func (fsys *FileSystem) Create() (common.Inum, error) {
	if fsys.disk == nil {
		return 0, ErrNotMounted
	}
	inum, ok := common.Inum(0), false
	for i := uint64(0); i < fsys.freeInodes.Len(); i++ {
		if !fsys.freeInodes.InUse(i) {
			inum, ok = i, true
			break
		}
	}
	if !ok {
		return 0, ErrNoSpace
	}
	_, blk, err := fsys.loadInode(inum)
	if err != nil {
		return 0, err
	}
	if err := fsys.storeInode(inum, layout.Inode{Valid: 1}, blk); err != nil {
		return 0, err
	}
	fsys.freeInodes.MarkUsed(inum)
	util.DPrintf(2, "create: inode %d\n", inum)
	return inum, nil
}

// Remove invalidates inum and releases every block it reaches,
// including the indirect block. The cleared inode is written before
// any free-map update, so a device failure leaves the on-disk record
// either untouched or fully cleared, never half freed.
func (fsys *FileSystem) Remove(inum common.Inum) error {
	ino, iblk, err := fsys.loadInode(inum)
	if err != nil {
		return err
	}
	if ino.Valid == 0 {
		return ErrInvalidInode
	}

	var release []common.Bnum
	for _, p := range ino.Direct {
		if common.Bnum(p) != common.NULLBNUM {
			release = append(release, common.Bnum(p))
		}
	}
	if ino.Indirect != uint32(common.NULLBNUM) {
		ptrs := make(common.Block, common.BlockSize)
		if err := fsys.disk.Read(common.Bnum(ino.Indirect), ptrs); err != nil {
			return err
		}
		for s := uint64(0); s < common.NINDIRECT; s++ {
			if p := layout.GetPointer(ptrs, s); p != common.NULLBNUM {
				release = append(release, p)
			}
		}
		release = append(release, common.Bnum(ino.Indirect))
	}

	if err := fsys.storeInode(inum, layout.Inode{}, iblk); err != nil {
		return err
	}
	for _, b := range release {
		fsys.freeBlocks.FreeNum(b)
	}
	fsys.freeInodes.FreeNum(inum)
	util.DPrintf(2, "remove: inode %d, %d blocks released\n", inum, len(release))
	return nil
}

// Stat returns the size of inum in bytes, or -1 when the slot is out
// of range or invalid.
func (fsys *FileSystem) Stat(inum common.Inum) int64 {
	ino, _, err := fsys.loadInode(inum)
	if err != nil || ino.Valid == 0 {
		return -1
	}
	return int64(ino.Size)
}

// ReadAt copies bytes starting at off into data, clamped to the file
// size, and returns how many were copied. Reading at off == size
// returns 0; reading past it is an error. A byte inside the size that
// maps to no block reports ErrCorrupt.
func (fsys *FileSystem) ReadAt(inum common.Inum, data []byte, off uint64) (int, error) {
	ino, _, err := fsys.loadInode(inum)
	if err != nil {
		return 0, err
	}
	if ino.Valid == 0 {
		return 0, ErrInvalidInode
	}
	size := uint64(ino.Size)
	if off > size {
		return 0, ErrBadOffset
	}
	end := off + util.Min(uint64(len(data)), size-off)

	n := 0
	blk := make(common.Block, common.BlockSize)
	for pos := off; pos < end; {
		b, _, err := fsys.bmap(&ino, pos/common.BlockSize, false)
		if err != nil {
			return n, err
		}
		if b == common.NULLBNUM {
			return n, ErrCorrupt
		}
		if err := fsys.disk.Read(b, blk); err != nil {
			return n, err
		}
		start := pos % common.BlockSize
		count := util.Min(common.BlockSize-start, end-pos)
		copy(data[n:], blk[start:start+count])
		n += int(count)
		pos += count
	}
	return n, nil
}

// WriteAt copies data into the file starting at off, allocating
// backing blocks on demand, and returns how many bytes landed. When
// the disk runs out of free blocks, or off+len(data) passes the
// maximum file size, the result is a short count with a nil error;
// the size reflects the bytes actually written. A device failure
// returns an error, with earlier blocks already durable.
func (fsys *FileSystem) WriteAt(inum common.Inum, data []byte, off uint64) (int, error) {
	ino, iblk, err := fsys.loadInode(inum)
	if err != nil {
		return 0, err
	}
	if ino.Valid == 0 {
		return 0, ErrInvalidInode
	}

	var length uint64
	if off < layout.MAXFILESZ {
		length = util.Min(uint64(len(data)), layout.MAXFILESZ-off)
	}

	var written uint64
	var werr error
	blk := make(common.Block, common.BlockSize)
	for written < length {
		pos := off + written
		b, fresh, err := fsys.bmap(&ino, pos/common.BlockSize, true)
		if errors.Is(err, ErrNoSpace) {
			util.DPrintf(1, "write: inode %d out of space after %d bytes\n", inum, written)
			break
		}
		if err != nil {
			werr = err
			break
		}
		start := pos % common.BlockSize
		count := util.Min(common.BlockSize-start, length-written)
		if fresh {
			// a new block starts from zeroes, not stale contents
			for i := range blk {
				blk[i] = 0
			}
		} else if start != 0 || count != common.BlockSize {
			if err := fsys.disk.Read(b, blk); err != nil {
				werr = err
				break
			}
		}
		copy(blk[start:start+count], data[written:written+count])
		if err := fsys.disk.Write(b, blk); err != nil {
			werr = err
			break
		}
		written += count
	}

	if written > 0 && off+written > uint64(ino.Size) {
		ino.Size = uint32(off + written)
	}
	if err := fsys.storeInode(inum, ino, iblk); err != nil {
		return int(written), err
	}
	return int(written), werr
}
