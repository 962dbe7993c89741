// Package pmem implements the persistent memory allocator (spec §4.1,
// component C1): a durable pool of page-aligned physical regions, with its
// own free bitmap kept durable alongside the pages it describes.
package pmem

import "unsafe"

// PageSize is the allocator's native granularity. The checkpoint core only
// ever deals in whole pages.
const PageSize = 4096

// Allocator hands out page-aligned physical regions from pool, a
// caller-owned byte slice standing in for a mapped persistent memory range.
// Deallocation is supported (spec §4.1: "supported but not required by the
// checkpoint core") but nothing in this module calls FreePages outside its
// tests.
type Allocator struct {
	pool     []byte
	base     uintptr
	pageSize uint64
	numPages uint64
	bits     *bitSet
	flusher  Flusher
}

// metadataPages is how many whole pages at the front of the pool are
// reserved for the free bitmap, rounded up from the bitmap's byte size.
func metadataPages(totalPages uint64) uint64 {
	bitmapBytes := ((totalPages + 63) / 64) * 8
	return (bitmapBytes + PageSize - 1) / PageSize
}

// NewAllocator carves an Allocator out of pool. Its first metadataPages()
// pages are reserved for the durable free bitmap and are never handed out;
// pool must hold at least one page beyond those (so at least two pages), or
// NewAllocator returns nil.
func NewAllocator(pool []byte, flusher Flusher) *Allocator {
	if len(pool) < PageSize {
		return nil
	}
	base := uintptr(unsafe.Pointer(&pool[0]))
	totalPages := uint64(len(pool)) / PageSize
	metaPages := metadataPages(totalPages)
	if metaPages >= totalPages {
		return nil
	}
	dataPages := totalPages - metaPages
	bits := newBitSet(unsafe.Pointer(&pool[0]), dataPages, flusher)
	return &Allocator{
		pool:     pool,
		base:     base + uintptr(metaPages*PageSize),
		pageSize: PageSize,
		numPages: dataPages,
		bits:     bits,
		flusher:  flusher,
	}
}

// AllocPages returns the physical address of a run of nPages contiguous,
// page-aligned pages drawn from the pool, or ErrExhausted if no run of that
// size is free. Successive allocations never overlap (spec §4.1).
func (a *Allocator) AllocPages(nPages uint64) (uint64, error) {
	if nPages == 0 {
		return 0, ErrBadRequest
	}
	start := a.bits.firstFreeRun(nPages)
	if start < 0 {
		return 0, ErrExhausted
	}
	for i := uint64(0); i < nPages; i++ {
		a.bits.set(uint64(start) + i)
	}
	return uint64(a.base) + uint64(start)*a.pageSize, nil
}

// FreePages returns a previously allocated run to the pool. It is not used
// by the checkpoint core; checkpoints reuse pre-allocated segments for the
// lifetime of the process.
func (a *Allocator) FreePages(paddr uint64, nPages uint64) error {
	if paddr < uint64(a.base) {
		return ErrBadRequest
	}
	offset := (paddr - uint64(a.base)) / a.pageSize
	if offset+nPages > a.numPages {
		return ErrBadRequest
	}
	for i := uint64(0); i < nPages; i++ {
		a.bits.clear(offset + i)
	}
	return nil
}

// TotalPages reports how many pages are available for allocation (excluding
// the pages reserved for the allocator's own metadata).
func (a *Allocator) TotalPages() uint64 { return a.numPages }
