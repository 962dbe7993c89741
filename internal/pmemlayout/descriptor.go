// Package pmemlayout implements the PMEM descriptor page (spec §6, "External
// interfaces: persistent memory layout") and the cold-boot recovery walk
// (spec §4.6) that turns a descriptor's records back into running processes.
package pmemlayout

import (
	"liumos/internal/checkpoint"
)

// Magic is the descriptor page's signature, a 64-bit value whose bytes in
// x86 little-endian memory order spell ASCII "liumOSPO", the same constant the checkpoint package uses for individual
// PersistentProcessInfo records (spec §6).
const Magic = checkpoint.Magic

// MaxRecords bounds how many PersistentProcessInfo pointers the descriptor
// page tracks, matching the scheduler's own process-table cap.
const MaxRecords = 256

// Descriptor is the first page of the reserved PMEM region R (spec §6): a
// magic number and pointers to every PersistentProcessInfo record the
// allocator arena holds. It is itself not double-buffered — only the
// records it points to are.
type Descriptor struct {
	Magic   uint64
	Count   int
	Records [MaxRecords]*checkpoint.PersistentProcessInfo
}

// NewDescriptor returns a fresh, empty descriptor (spec §6: "if absent, the
// kernel initialises a fresh descriptor").
func NewDescriptor() *Descriptor {
	return &Descriptor{Magic: Magic}
}

// IsValid reports whether d carries the expected signature.
func (d *Descriptor) IsValid() bool {
	return d.Magic == Magic
}

// AddRecord appends a PersistentProcessInfo pointer to the descriptor, or
// reports false if MaxRecords has been reached.
func (d *Descriptor) AddRecord(p *checkpoint.PersistentProcessInfo) bool {
	if d.Count >= MaxRecords {
		return false
	}
	d.Records[d.Count] = p
	d.Count++
	return true
}
