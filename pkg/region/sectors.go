package region

import (
	"github.com/bits-and-blooms/bitset"
)

// sectorTracker tracks which sectors of the backing file are currently in
// use. It is rebuilt from the header when a region is opened and mutated
// incrementally afterwards; its length always equals fileLength/sectorLength.
type sectorTracker struct {
	bits  *bitset.BitSet
	count uint32
}

// newSectorTracker creates a tracker over total sectors with the two header
// sectors reserved. They are never released.
func newSectorTracker(total uint32) *sectorTracker {
	t := &sectorTracker{
		bits:  bitset.New(uint(total)),
		count: total,
	}
	t.bits.Set(0)
	t.bits.Set(1)
	return t
}

// Len returns the amount of sectors currently within file bounds.
func (t *sectorTracker) Len() uint32 {
	return t.count
}

// Used returns the amount of occupied sectors.
func (t *sectorTracker) Used() uint32 {
	return uint32(t.bits.Count())
}

// InUse reports whether the given sector is occupied.
func (t *sectorTracker) InUse(index uint32) bool {
	return index < t.count && t.bits.Test(uint(index))
}

// MarkRange sets or clears occupancy for sectors [start, start+n). Indices
// beyond the file's current length are skipped: a stale header may reference
// sectors of a since-truncated file.
func (t *sectorTracker) MarkRange(start uint32, n uint8, used bool) {
	for i := uint32(0); i < uint32(n); i++ {
		index := start + i
		if index >= t.count {
			continue
		}
		if used {
			t.bits.Set(uint(index))
		} else {
			t.bits.Clear(uint(index))
		}
	}
}

// FirstFit scans ascending from sector 0 for the first run of n free
// sectors. When no run is long enough it reports ok=false along with the
// length of the free run touching the end of the file, which the caller can
// reuse when growing.
func (t *sectorTracker) FirstFit(n uint8) (start uint32, trailing uint32, ok bool) {
	needed := uint32(n)
	free := uint32(0)

	for index := uint32(0); index < t.count; index++ {
		if t.bits.Test(uint(index)) {
			free = 0
			continue
		}

		free++
		if free == needed {
			return index + 1 - needed, 0, true
		}
	}

	return 0, free, false
}

// Grow appends n occupied sectors. The caller extends the backing file to
// match; the file only ever grows, never shrinks.
func (t *sectorTracker) Grow(n uint32) {
	for i := uint32(0); i < n; i++ {
		t.bits.Set(uint(t.count))
		t.count++
	}
}
