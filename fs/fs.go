// Package fs implements the file system engine: format, mount, and
// the per-inode operations over a block device. Files are flat byte
// ranges named by inode number; there are no directories and no
// permissions.
package fs

import (
	"errors"
	"fmt"

	"github.com/simple-fs/simplefs/alloc"
	"github.com/simple-fs/simplefs/common"
	"github.com/simple-fs/simplefs/disk"
	"github.com/simple-fs/simplefs/layout"
	"github.com/simple-fs/simplefs/util"
)

var (
	ErrBadMagic     = errors.New("fs: bad magic number")
	ErrMounted      = errors.New("fs: disk already mounted")
	ErrNotMounted   = errors.New("fs: not mounted")
	ErrInvalidInode = errors.New("fs: invalid inode")
	ErrBadOffset    = errors.New("fs: offset beyond end of file")
	ErrNoSpace      = errors.New("fs: no space")
	ErrCorrupt      = errors.New("fs: corrupt file system")
)

// FileSystem is one mounted instance. It borrows the disk for the
// duration of the mount and exclusively owns the two free maps.
type FileSystem struct {
	disk       *disk.Disk
	meta       layout.SuperBlock
	freeBlocks *alloc.Alloc
	freeInodes *alloc.Alloc
}

// Format writes a fresh, empty file system onto d: a superblock
// describing the geometry in block 0 and zeroes everywhere else.
// Formatting a mounted disk is refused.
func Format(d *disk.Disk) error {
	if d.Mounted() {
		return ErrMounted
	}
	sb := layout.MkSuperBlock(d.Size())
	if err := d.Write(0, sb.Encode()); err != nil {
		return err
	}
	zero := make(common.Block, common.BlockSize)
	for b := uint64(1); b < d.Size(); b++ {
		if err := d.Write(b, zero); err != nil {
			return err
		}
	}
	util.DPrintf(1, "format: %d blocks, %d inode blocks, %d inodes\n",
		sb.Blocks, sb.InodeBlocks, sb.Inodes)
	return nil
}

// Mount attaches fsys to d. The superblock is trusted as read from
// block 0; only the magic number is validated. The free maps are
// rebuilt by a single pass over the inode table. On failure the disk
// stays unmounted and fsys is left untouched.
func Mount(fsys *FileSystem, d *disk.Disk) error {
	if d.Mounted() || fsys.disk != nil {
		return ErrMounted
	}
	blk := make(common.Block, common.BlockSize)
	if err := d.Read(0, blk); err != nil {
		return err
	}
	sb := layout.DecodeSuperBlock(blk)
	if sb.Magic != common.MAGIC {
		return fmt.Errorf("%w: got %#x, want %#x", ErrBadMagic, sb.Magic, common.MAGIC)
	}
	freeBlocks, freeInodes, err := buildFreeMaps(d, sb)
	if err != nil {
		return err
	}
	fsys.disk = d
	fsys.meta = sb
	fsys.freeBlocks = freeBlocks
	fsys.freeInodes = freeInodes
	d.SetMounted(true)
	util.DPrintf(1, "mount: %d blocks, %d free\n", sb.Blocks, freeBlocks.NumFree())
	return nil
}

// Unmount releases the free maps and detaches the disk. Unmounting an
// already-unmounted file system is a no-op.
func (fsys *FileSystem) Unmount() {
	if fsys.disk == nil {
		return
	}
	fsys.disk.SetMounted(false)
	fsys.disk = nil
	fsys.meta = layout.SuperBlock{}
	fsys.freeBlocks = nil
	fsys.freeInodes = nil
}

// buildFreeMaps scans the inode table once, reserving the superblock,
// the table itself, and every block reachable from a valid inode.
func buildFreeMaps(d *disk.Disk, sb layout.SuperBlock) (*alloc.Alloc, *alloc.Alloc, error) {
	freeBlocks := alloc.MkAlloc(uint64(sb.Blocks))
	freeInodes := alloc.MkAlloc(uint64(sb.Inodes))
	for b := common.Bnum(0); b < sb.DataStart() && b < freeBlocks.Len(); b++ {
		freeBlocks.MarkUsed(b)
	}

	blk := make(common.Block, common.BlockSize)
	ptrs := make(common.Block, common.BlockSize)
	for b := common.Bnum(1); b < sb.DataStart(); b++ {
		if err := d.Read(b, blk); err != nil {
			return nil, nil, err
		}
		for slot := uint64(0); slot < common.INODEBLK; slot++ {
			ino := layout.GetInode(blk, slot)
			if ino.Valid == 0 {
				continue
			}
			inum := (uint64(b)-1)*common.INODEBLK + slot
			freeInodes.MarkUsed(inum)
			for _, p := range ino.Direct {
				claimBlock(freeBlocks, inum, common.Bnum(p))
			}
			if ino.Indirect == uint32(common.NULLBNUM) {
				continue
			}
			claimBlock(freeBlocks, inum, common.Bnum(ino.Indirect))
			if common.Bnum(ino.Indirect) >= freeBlocks.Len() {
				continue
			}
			if err := d.Read(common.Bnum(ino.Indirect), ptrs); err != nil {
				return nil, nil, err
			}
			for s := uint64(0); s < common.NINDIRECT; s++ {
				claimBlock(freeBlocks, inum, layout.GetPointer(ptrs, s))
			}
		}
	}
	return freeBlocks, freeInodes, nil
}

// claimBlock reserves b for inum. A block that is already reserved,
// whether by another inode or because it falls inside the reserved
// region, is a corruption signal; the bit stays in use and the scan
// goes on.
func claimBlock(freeBlocks *alloc.Alloc, inum common.Inum, b common.Bnum) {
	if b == common.NULLBNUM {
		return
	}
	if b >= freeBlocks.Len() {
		util.DPrintf(0, "mount: inode %d points at block %d, past the disk\n", inum, b)
		return
	}
	if freeBlocks.InUse(b) {
		util.DPrintf(0, "mount: block %d claimed twice (inode %d)\n", b, inum)
		return
	}
	freeBlocks.MarkUsed(b)
}
