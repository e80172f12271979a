// Package common holds the on-disk format constants and the integer
// types shared by every layer of the file system. Changing any of the
// constants breaks compatibility with existing images.
package common

import (
	"github.com/tchajed/goose/machine/disk"
)

// Block is one BlockSize-byte unit of disk I/O.
type Block = disk.Block

const (
	// BlockSize is the atomic granularity of disk reads and writes.
	BlockSize uint64 = disk.BlockSize

	// MAGIC identifies a formatted image, stored little-endian
	// in the first word of block 0.
	MAGIC uint32 = 0xf0f03410

	INODEBLK  uint64 = 128
	NDIRECT   uint64 = 5
	NINDIRECT uint64 = BlockSize / 4

	// INODESZ is the on-disk size of one inode record.
	INODESZ uint64 = 32

	// INODERATIO reserves one inode block per this many total
	// blocks, rounded up.
	INODERATIO uint64 = 10
)

type Inum = uint64
type Bnum = uint64

// NULLBNUM marks an unallocated pointer slot. Block 0 always holds
// the superblock, so no data pointer can legally be 0.
const NULLBNUM Bnum = 0
