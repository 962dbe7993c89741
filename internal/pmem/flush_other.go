//go:build !amd64

package pmem

import "unsafe"

// clflushLine has no implementation outside amd64; liumOS only targets
// x86-64, and CLFlusher is not constructed on other architectures outside
// of tests (which use RecordingFlusher instead).
func clflushLine(addr unsafe.Pointer) {
	panic("pmem: CLFLUSH is only available on amd64")
}
