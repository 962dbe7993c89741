package execctx

import (
	"unsafe"

	"liumos/internal/segment"
)

// segmentBytes returns a byte slice viewing a segment's live physical
// backing, for the rare case the checkpoint core needs to read or write
// through a segment directly (e.g. laying out an initial stack image).
func segmentBytes(s *segment.SegmentMapping) []byte {
	if s.Paddr == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(s.Paddr))), s.MapSize)
}
