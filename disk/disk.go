// Package disk emulates a block device on top of a backing store:
// whole-block reads and writes, a block-count bound, mount-state
// tracking, and observational I/O counters.
package disk

import (
	"errors"
	"fmt"

	goosedisk "github.com/tchajed/goose/machine/disk"
	"golang.org/x/sys/unix"

	"github.com/simple-fs/simplefs/common"
	"github.com/simple-fs/simplefs/util"
)

var (
	ErrClosed     = errors.New("disk: closed")
	ErrOutOfRange = errors.New("disk: block out of range")
	ErrBadBuffer  = errors.New("disk: buffer is not block-sized")
	ErrShortIO    = errors.New("disk: short transfer")
)

// store is the raw backing for a disk image. Implementations transfer
// exactly one block or fail.
type store interface {
	readBlock(a uint64, buf common.Block) error
	writeBlock(a uint64, buf common.Block) error
	close() error
}

// Disk provides bounds-checked access to a fixed number of blocks.
// The mounted flag is owned by the file system layer; reads and
// writes count successful transfers only.
type Disk struct {
	store   store
	blocks  uint64
	mounted bool
	reads   uint64
	writes  uint64
}

// Open opens or creates the backing file at path and truncates it to
// blocks*BlockSize bytes.
func Open(path string, blocks uint64) (*Disk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %v", path, err)
	}
	if err := unix.Ftruncate(fd, int64(blocks*common.BlockSize)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("disk: truncate %s: %v", path, err)
	}
	util.DPrintf(1, "disk: open %s with %d blocks\n", path, blocks)
	return &Disk{store: &fileStore{fd: fd}, blocks: blocks}, nil
}

// NewMemDisk returns a memory-backed disk of the given size, for
// tests and throwaway images.
func NewMemDisk(blocks uint64) *Disk {
	return &Disk{store: &memStore{d: goosedisk.NewMemDisk(blocks)}, blocks: blocks}
}

func (d *Disk) sanity(a uint64, buf common.Block) error {
	if d == nil || d.store == nil {
		return ErrClosed
	}
	if a >= d.blocks {
		return fmt.Errorf("%w: block %d on a %d-block disk", ErrOutOfRange, a, d.blocks)
	}
	if buf == nil || uint64(len(buf)) != common.BlockSize {
		return ErrBadBuffer
	}
	return nil
}

// Read fills buf with the contents of block a.
func (d *Disk) Read(a uint64, buf common.Block) error {
	if err := d.sanity(a, buf); err != nil {
		return err
	}
	if err := d.store.readBlock(a, buf); err != nil {
		return err
	}
	d.reads++
	return nil
}

// Write stores buf as the contents of block a.
func (d *Disk) Write(a uint64, buf common.Block) error {
	if err := d.sanity(a, buf); err != nil {
		return err
	}
	if err := d.store.writeBlock(a, buf); err != nil {
		return err
	}
	d.writes++
	return nil
}

// Size reports how big the disk is, in blocks.
func (d *Disk) Size() uint64 {
	return d.blocks
}

func (d *Disk) Mounted() bool {
	return d.mounted
}

func (d *Disk) SetMounted(m bool) {
	d.mounted = m
}

func (d *Disk) Reads() uint64 {
	return d.reads
}

func (d *Disk) Writes() uint64 {
	return d.writes
}

// Close releases the backing store and reports the cumulative I/O
// counts. Further operations fail with ErrClosed.
func (d *Disk) Close() error {
	if d.store == nil {
		return ErrClosed
	}
	util.DPrintf(0, "disk: %d reads, %d writes\n", d.reads, d.writes)
	err := d.store.close()
	d.store = nil
	return err
}

type fileStore struct {
	fd int
}

func (s *fileStore) readBlock(a uint64, buf common.Block) error {
	n, err := unix.Pread(s.fd, buf, int64(a*common.BlockSize))
	if err != nil {
		return fmt.Errorf("disk: read block %d: %v", a, err)
	}
	if uint64(n) != common.BlockSize {
		return fmt.Errorf("%w: read %d/%d bytes of block %d", ErrShortIO, n, common.BlockSize, a)
	}
	return nil
}

func (s *fileStore) writeBlock(a uint64, buf common.Block) error {
	n, err := unix.Pwrite(s.fd, buf, int64(a*common.BlockSize))
	if err != nil {
		return fmt.Errorf("disk: write block %d: %v", a, err)
	}
	if uint64(n) != common.BlockSize {
		return fmt.Errorf("%w: wrote %d/%d bytes of block %d", ErrShortIO, n, common.BlockSize, a)
	}
	return nil
}

func (s *fileStore) close() error {
	return unix.Close(s.fd)
}

// blockStore matches the goose machine/disk surface the memory store
// relies on.
type blockStore interface {
	Read(a uint64) goosedisk.Block
	Write(a uint64, v goosedisk.Block)
	Size() uint64
}

type memStore struct {
	d blockStore
}

func (s *memStore) readBlock(a uint64, buf common.Block) error {
	copy(buf, s.d.Read(a))
	return nil
}

func (s *memStore) writeBlock(a uint64, buf common.Block) error {
	s.d.Write(a, buf)
	return nil
}

func (s *memStore) close() error {
	return nil
}
