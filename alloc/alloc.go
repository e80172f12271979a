// Package alloc implements the in-memory free maps for data blocks
// and inode slots. The maps are rebuilt from the inode table at mount
// and released at unmount; nothing here touches the disk.
package alloc

// Alloc tracks which of n numbers are in use. Allocation always
// returns the lowest free number.
type Alloc struct {
	used  []bool
	nfree uint64
}

// MkAlloc returns a map of n numbers, all free.
func MkAlloc(n uint64) *Alloc {
	return &Alloc{
		used:  make([]bool, n),
		nfree: n,
	}
}

// MarkUsed reserves n. Reserving an already-reserved number is a
// no-op.
func (a *Alloc) MarkUsed(n uint64) {
	if a.used[n] {
		return
	}
	a.used[n] = true
	a.nfree--
}

// FreeNum releases n. Releasing a free number is a no-op.
func (a *Alloc) FreeNum(n uint64) {
	if !a.used[n] {
		return
	}
	a.used[n] = false
	a.nfree++
}

// AllocNum reserves and returns the lowest free number; ok is false
// when the map is exhausted.
func (a *Alloc) AllocNum() (uint64, bool) {
	for i := uint64(0); i < uint64(len(a.used)); i++ {
		if !a.used[i] {
			a.used[i] = true
			a.nfree--
			return i, true
		}
	}
	return 0, false
}

func (a *Alloc) InUse(n uint64) bool {
	return a.used[n]
}

func (a *Alloc) NumFree() uint64 {
	return a.nfree
}

// Len is the total number of tracked numbers.
func (a *Alloc) Len() uint64 {
	return uint64(len(a.used))
}
