package segment

import (
	"unsafe"

	"liumos/internal/pmem"
)

// Attr packs the x86-64 page attribute bits that spec §6 requires this
// package to respect: Present, Writable, User, Write-through, Cache-
// disable, No-execute.
type Attr uint64

const (
	Present      Attr = 1 << 0
	Writable     Attr = 1 << 1
	User         Attr = 1 << 2
	WriteThrough Attr = 1 << 3
	CacheDisable Attr = 1 << 4
	NoExecute    Attr = 1 << 63

	physAddrMask = 0x000f_ffff_ffff_f000 // bits 51:12

	entriesPerTable = 512
	tableBytes      = entriesPerTable * 8

	pml4Shift = 39
	pdptShift = 30
	pdShift   = 21
	ptShift   = 12
	idxMask   = entriesPerTable - 1
)

// TableAllocator supplies fresh, page-aligned physical pages for new
// intermediate page-table levels. *pmem.Allocator satisfies this directly.
type TableAllocator interface {
	AllocPages(nPages uint64) (uint64, error)
}

// PageTable is the root of a 4-level x86-64 page table (PML4 -> PDPT -> PD
// -> PT -> 4KiB page), addressed by its physical base.
type PageTable struct {
	Root uint64 // physical address of the PML4, page-aligned
}

// NewPageTable allocates a fresh, zeroed PML4 from alloc.
func NewPageTable(alloc TableAllocator, flusher pmem.Flusher) (*PageTable, error) {
	root, err := alloc.AllocPages(1)
	if err != nil {
		return nil, err
	}
	zeroPage(root)
	flusher.FlushRange(uintptr(root), pmem.PageSize)
	return &PageTable{Root: root}, nil
}

func zeroPage(paddr uint64) {
	p := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(paddr))), pmem.PageSize)
	for i := range p {
		p[i] = 0
	}
}

func entryAddr(tablePhys uint64, index uint64) uintptr {
	return uintptr(tablePhys) + uintptr(index*8)
}

func readEntry(tablePhys uint64, index uint64) uint64 {
	return *(*uint64)(unsafe.Pointer(entryAddr(tablePhys, index)))
}

func writeEntry(tablePhys uint64, index uint64, value uint64, flusher pmem.Flusher, shouldFlush bool) {
	*(*uint64)(unsafe.Pointer(entryAddr(tablePhys, index))) = value
	if shouldFlush {
		flusher.FlushRange(entryAddr(tablePhys, index), 8)
	}
}

// walkOrCreate returns the physical address of the next-level table
// referenced by tablePhys[index], allocating and linking a fresh one if the
// entry isn't present yet.
func walkOrCreate(tablePhys uint64, index uint64, alloc TableAllocator, flusher pmem.Flusher, shouldFlush bool) (uint64, error) {
	entry := readEntry(tablePhys, index)
	if entry&uint64(Present) != 0 {
		return entry & physAddrMask, nil
	}
	next, err := alloc.AllocPages(1)
	if err != nil {
		return 0, err
	}
	zeroPage(next)
	flusher.FlushRange(uintptr(next), pmem.PageSize)
	flags := uint64(Present | Writable | User)
	writeEntry(tablePhys, index, (next&physAddrMask)|flags, flusher, shouldFlush)
	return next, nil
}

// Map installs page-table entries covering [vaddr, vaddr+mapSize) ->
// [paddr, paddr+mapSize) in pt, with attrs plus Present. A null segment
// (Paddr == 0) is skipped (spec §4.2).
func (s *SegmentMapping) Map(pt *PageTable, alloc TableAllocator, flusher pmem.Flusher, attrs Attr, shouldFlush bool) error {
	if s.Paddr == 0 {
		return nil
	}
	for off := uint64(0); off < s.MapSize; off += pmem.PageSize {
		vaddr := s.Vaddr + off
		paddr := s.Paddr + off

		pdpt, err := walkOrCreate(pt.Root, (vaddr>>pml4Shift)&idxMask, alloc, flusher, shouldFlush)
		if err != nil {
			return err
		}
		pd, err := walkOrCreate(pdpt, (vaddr>>pdptShift)&idxMask, alloc, flusher, shouldFlush)
		if err != nil {
			return err
		}
		pt4, err := walkOrCreate(pd, (vaddr>>pdShift)&idxMask, alloc, flusher, shouldFlush)
		if err != nil {
			return err
		}
		leaf := (paddr & physAddrMask) | uint64(attrs|Present)
		writeEntry(pt4, (vaddr>>ptShift)&idxMask, leaf, flusher, shouldFlush)
	}
	return nil
}

// Translate walks pt and returns the physical address mapped for vaddr, or
// ok=false if no mapping is present. Used by tests to confirm Map installed
// what was asked.
func (pt *PageTable) Translate(vaddr uint64) (paddr uint64, ok bool) {
	entry := readEntry(pt.Root, (vaddr>>pml4Shift)&idxMask)
	if entry&uint64(Present) == 0 {
		return 0, false
	}
	pdpt := entry & physAddrMask

	entry = readEntry(pdpt, (vaddr>>pdptShift)&idxMask)
	if entry&uint64(Present) == 0 {
		return 0, false
	}
	pd := entry & physAddrMask

	entry = readEntry(pd, (vaddr>>pdShift)&idxMask)
	if entry&uint64(Present) == 0 {
		return 0, false
	}
	pt4 := entry & physAddrMask

	entry = readEntry(pt4, (vaddr>>ptShift)&idxMask)
	if entry&uint64(Present) == 0 {
		return 0, false
	}
	pageOffset := vaddr & (pmem.PageSize - 1)
	return (entry & physAddrMask) | pageOffset, true
}
