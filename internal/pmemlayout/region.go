package pmemlayout

import (
	"unsafe"

	"liumos/internal/checkpoint"
	"liumos/internal/pmem"
)

// RecordsOffset is where the fixed-size PersistentProcessInfo array starts
// within the reserved PMEM region R (spec §6): one page in, leaving room
// for the descriptor header on the first page. The allocator arena begins
// right after the record array.
const RecordsOffset = uintptr(pmem.PageSize)

// RawHeader is the on-disk shape of the descriptor page's first bytes.
type RawHeader struct {
	Magic uint64
	Count uint64
}

// HeaderAt casts region's first bytes to a RawHeader, the same way the
// allocator and segment packages cast a byte pool directly onto their value
// types.
func HeaderAt(region []byte) *RawHeader {
	return (*RawHeader)(unsafe.Pointer(&region[0]))
}

// RecordAt returns a pointer to the i'th PersistentProcessInfo slot in
// region's fixed-size record array.
func RecordAt(region []byte, i int) *checkpoint.PersistentProcessInfo {
	sz := unsafe.Sizeof(checkpoint.PersistentProcessInfo{})
	off := RecordsOffset + uintptr(i)*sz
	return (*checkpoint.PersistentProcessInfo)(unsafe.Pointer(&region[off]))
}

// Arena returns the sub-slice of region reserved for the allocator, after
// the descriptor header and the fixed record array.
func Arena(region []byte) []byte {
	recordTableBytes := RecordsOffset + MaxRecords*unsafe.Sizeof(checkpoint.PersistentProcessInfo{})
	return region[recordTableBytes:]
}

// DescriptorFromRegion builds a Descriptor pointing at every record region's
// header claims to hold, without validating any of them — Recover does that.
func DescriptorFromRegion(region []byte) *Descriptor {
	d := NewDescriptor()
	hdr := HeaderAt(region)
	for i := uint64(0); i < hdr.Count && i < MaxRecords; i++ {
		d.AddRecord(RecordAt(region, int(i)))
	}
	return d
}
