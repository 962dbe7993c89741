//go:build amd64

package pmem

import "unsafe"

// clflushLine flushes the cache line containing addr to memory. Implemented
// in flush_amd64.s: CLFLUSH has no Go intrinsic, the same reason low-level
// kernel code drops into Plan 9 assembly for single instructions the
// runtime doesn't expose.
//
//go:noescape
func clflushLine(addr unsafe.Pointer)
