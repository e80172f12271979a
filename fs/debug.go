package fs

import (
	"fmt"
	"io"
	"os"

	"github.com/simple-fs/simplefs/common"
	"github.com/simple-fs/simplefs/disk"
	"github.com/simple-fs/simplefs/layout"
)

// Debug prints the superblock and every valid inode to standard
// output. It reads the image directly and never mutates it, so it
// works on mounted and unmounted disks alike.
func Debug(d *disk.Disk) error {
	return fdebug(os.Stdout, d)
}

func fdebug(w io.Writer, d *disk.Disk) error {
	blk := make(common.Block, common.BlockSize)
	if err := d.Read(0, blk); err != nil {
		return err
	}
	sb := layout.DecodeSuperBlock(blk)

	fmt.Fprintf(w, "SuperBlock:\n")
	if sb.Magic == common.MAGIC {
		fmt.Fprintf(w, "    magic number is valid\n")
	} else {
		fmt.Fprintf(w, "    magic number is invalid\n")
	}
	fmt.Fprintf(w, "    %d blocks\n", sb.Blocks)
	fmt.Fprintf(w, "    %d inode blocks\n", sb.InodeBlocks)
	fmt.Fprintf(w, "    %d inodes\n", sb.Inodes)
	if sb.Magic != common.MAGIC {
		return nil
	}

	ptrs := make(common.Block, common.BlockSize)
	for b := common.Bnum(1); b < sb.DataStart(); b++ {
		if err := d.Read(b, blk); err != nil {
			return err
		}
		for slot := uint64(0); slot < common.INODEBLK; slot++ {
			ino := layout.GetInode(blk, slot)
			if ino.Valid == 0 {
				continue
			}
			inum := (uint64(b)-1)*common.INODEBLK + slot
			fmt.Fprintf(w, "Inode %d:\n", inum)
			fmt.Fprintf(w, "    size: %d bytes\n", ino.Size)
			fmt.Fprintf(w, "    direct blocks:%s\n", directList(ino))
			if ino.Indirect == uint32(common.NULLBNUM) {
				continue
			}
			fmt.Fprintf(w, "    indirect block: %d\n", ino.Indirect)
			if err := d.Read(common.Bnum(ino.Indirect), ptrs); err != nil {
				return err
			}
			fmt.Fprintf(w, "    indirect data blocks:%s\n", pointerList(ptrs))
		}
	}
	return nil
}

func directList(ino layout.Inode) string {
	s := ""
	for _, p := range ino.Direct {
		if common.Bnum(p) != common.NULLBNUM {
			s += fmt.Sprintf(" %d", p)
		}
	}
	return s
}

func pointerList(ptrs common.Block) string {
	s := ""
	for slot := uint64(0); slot < common.NINDIRECT; slot++ {
		if p := layout.GetPointer(ptrs, slot); p != common.NULLBNUM {
			s += fmt.Sprintf(" %d", p)
		}
	}
	return s
}
