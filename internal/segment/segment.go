// Package segment implements the segment mapping and process mapping info
// data types (spec §4.2/§4.3, components C2/C3): the value types linking a
// process's virtual address ranges to durable physical ranges, and the
// x86-64 page-table materialiser that turns them into live mappings.
package segment

import (
	"unsafe"

	"liumos/internal/pmem"
)

// SegmentMapping is three durable 64-bit words describing one contiguous
// virtual range backed 1:1 by a contiguous physical range. Either all three
// fields are zero (unused) or Paddr != 0, MapSize > 0, and MapSize is a
// multiple of pmem.PageSize.
type SegmentMapping struct {
	Vaddr   uint64
	Paddr   uint64
	MapSize uint64
}

// Set assigns all three fields and flushes the record so the triple becomes
// durable as a unit.
func (s *SegmentMapping) Set(vaddr, paddr, size uint64, flusher pmem.Flusher) {
	s.Vaddr = vaddr
	s.Paddr = paddr
	s.MapSize = size
	flusher.FlushRange(uintptr(unsafe.Pointer(s)), unsafe.Sizeof(*s))
}

// Clear zeroes the record and flushes it.
func (s *SegmentMapping) Clear(flusher pmem.Flusher) {
	s.Vaddr = 0
	s.Paddr = 0
	s.MapSize = 0
	flusher.FlushRange(uintptr(unsafe.Pointer(s)), unsafe.Sizeof(*s))
}

// setPhysAddr updates only Paddr and flushes only that field. It exists
// because AllocFromPersistentMemory learns the physical address after
// MapSize (and usually Vaddr) are already set and durable; re-flushing the
// whole record would be correct but wasteful. Preserved from the original
// C++ SegmentMapping::SetPhysAddr (see SPEC_FULL.md §12).
func (s *SegmentMapping) setPhysAddr(paddr uint64, flusher pmem.Flusher) {
	s.Paddr = paddr
	flusher.FlushRange(uintptr(unsafe.Pointer(&s.Paddr)), unsafe.Sizeof(s.Paddr))
}

// AllocFromPersistentMemory draws MapSize bytes from the allocator and sets
// Paddr. MapSize (and usually Vaddr) must already be set.
func (s *SegmentMapping) AllocFromPersistentMemory(a *pmem.Allocator, flusher pmem.Flusher) error {
	if s.MapSize == 0 {
		return ErrBadSegment
	}
	nPages := (s.MapSize + pmem.PageSize - 1) / pmem.PageSize
	paddr, err := a.AllocPages(nPages)
	if err != nil {
		return err
	}
	s.setPhysAddr(paddr, flusher)
	return nil
}

// CopyDataFrom copies src.MapSize bytes from src.Paddr to s.Paddr, flushing
// each destination cache line as it is written, and accumulates the number
// of bytes copied into copiedBytes. This is how the checkpoint engine
// brings the working slot's data/stack segments into sync with the slot
// that was just promoted to valid (spec §4.2).
func (s *SegmentMapping) CopyDataFrom(src *SegmentMapping, flusher pmem.Flusher, copiedBytes *uint64) error {
	if s.MapSize < src.MapSize {
		return ErrShortDest
	}
	if s.Paddr == 0 || src.Paddr == 0 {
		return ErrBadSegment
	}
	n := src.MapSize
	dst := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(s.Paddr))), n)
	source := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(src.Paddr))), n)
	copy(dst, source)
	flusher.FlushRange(uintptr(s.Paddr), uintptr(n))
	*copiedBytes += n
	return nil
}

// Flush forces every cache line of the segment's physical range back to
// persistent memory, accumulating the number of flushes issued into
// flushCount.
func (s *SegmentMapping) Flush(flusher pmem.Flusher, flushCount *uint64) {
	if s.Paddr == 0 {
		return
	}
	*flushCount += uint64(flusher.FlushRange(uintptr(s.Paddr), uintptr(s.MapSize)))
}

// VirtEnd is the address one past the end of the segment's virtual range.
func (s *SegmentMapping) VirtEnd() uint64 { return s.Vaddr + s.MapSize }

// Overlaps reports whether s and other's virtual ranges intersect. Two
// unused (zero) segments never overlap.
func (s *SegmentMapping) Overlaps(other *SegmentMapping) bool {
	if s.MapSize == 0 || other.MapSize == 0 {
		return false
	}
	return s.Vaddr < other.VirtEnd() && other.Vaddr < s.VirtEnd()
}

// ProcessMappingInfo aggregates the four segments describing a process's
// address space (spec C3). The four virtual ranges must be pairwise
// disjoint within a single address space.
type ProcessMappingInfo struct {
	Code  SegmentMapping
	Data  SegmentMapping
	Stack SegmentMapping
	Heap  SegmentMapping
}

func (m *ProcessMappingInfo) segments() [4]*SegmentMapping {
	return [4]*SegmentMapping{&m.Code, &m.Data, &m.Stack, &m.Heap}
}

// Clear clears all four segments.
func (m *ProcessMappingInfo) Clear(flusher pmem.Flusher) {
	for _, s := range m.segments() {
		s.Clear(flusher)
	}
}

// Disjoint reports whether the four virtual ranges are pairwise disjoint
// (spec §8 property 2).
func (m *ProcessMappingInfo) Disjoint() bool {
	segs := m.segments()
	for i := 0; i < len(segs); i++ {
		for j := i + 1; j < len(segs); j++ {
			if segs[i].Overlaps(segs[j]) {
				return false
			}
		}
	}
	return true
}

// Flush flushes every segment. Spec §4.3 describes ExecutionContext.Flush
// as flushing "every segment"; see SPEC_FULL.md §12 for how this differs
// from (and supersedes) the original C++ implementation, which omitted the
// stack segment.
func (m *ProcessMappingInfo) Flush(flusher pmem.Flusher, flushCount *uint64) {
	for _, s := range m.segments() {
		s.Flush(flusher, flushCount)
	}
}

// Map installs this process's four segments into pt, using allocator to
// draw fresh pages for any page-table levels that don't exist yet.
func (m *ProcessMappingInfo) Map(pt *PageTable, alloc TableAllocator, flusher pmem.Flusher, attrs Attr, shouldFlush bool) error {
	attrFor := map[*SegmentMapping]Attr{
		&m.Code:  attrs &^ Writable,
		&m.Data:  attrs | Writable | NoExecute,
		&m.Stack: attrs | Writable | NoExecute,
		&m.Heap:  attrs | Writable | NoExecute,
	}
	for _, s := range m.segments() {
		if err := s.Map(pt, alloc, flusher, attrFor[s], shouldFlush); err != nil {
			return err
		}
	}
	return nil
}
