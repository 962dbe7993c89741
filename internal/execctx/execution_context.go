package execctx

import (
	"liumos/internal/pmem"
	"liumos/internal/segment"
)

// ExecutionContext is CPUContext + ProcessMappingInfo + kernel_rsp +
// heap_used_size (spec §3, component C4). heap_used_size is the high-water
// mark of the user heap within the heap segment: 0 <= heap_used_size <=
// heap.map_size.
type ExecutionContext struct {
	CPU          CPUContext
	Mapping      segment.ProcessMappingInfo
	KernelRSP    uint64
	HeapUsedSize uint64
}

// SetRegisters initialises the CPU interrupt frame, forces RFlags bit 1
// set, and resets HeapUsedSize to 0 (spec §4.3).
func (e *ExecutionContext) SetRegisters(rip, cs, rsp, ss, cr3, rflags, kernelRSP uint64) {
	e.CPU.Int.RIP = rip
	e.CPU.Int.CS = cs
	e.CPU.Int.RSP = rsp
	e.CPU.Int.SS = ss
	e.CPU.Int.RFlags = rflags | rflagsInterruptEnable
	e.CPU.CR3 = cr3
	e.KernelRSP = kernelRSP
	e.HeapUsedSize = 0
}

// stackBytes returns the live backing bytes of the stack segment, used to
// materialise an initial user-stack image before first dispatch.
func (e *ExecutionContext) stackBytes() []byte {
	return segmentBytes(&e.Mapping.Stack)
}

// PushToStack decrements RSP by len(data) and writes data at the new RSP,
// mirroring an x86 `push`: the stack grows down. The stack segment must
// already be backed by persistent memory (Paddr != 0).
func (e *ExecutionContext) PushToStack(data []byte) {
	e.CPU.Int.RSP -= uint64(len(data))
	offset := e.CPU.Int.RSP - e.Mapping.Stack.Vaddr
	copy(e.stackBytes()[offset:], data)
}

// AlignStack rounds RSP down to the given alignment, as required before
// transferring control per the platform's calling convention.
func (e *ExecutionContext) AlignStack(alignment uint64) {
	e.CPU.Int.RSP &^= (alignment - 1)
}

// ExpandHeap adjusts HeapUsedSize by delta (which may be negative),
// checking the result stays within [0, heap.MapSize]. On a violation the
// watermark is left unchanged and an error is returned (spec §8 property
// 3: "the first violating call fails and the counter is unchanged").
func (e *ExecutionContext) ExpandHeap(delta int64) error {
	next := int64(e.HeapUsedSize) + delta
	if next < 0 {
		return ErrHeapUnderflow
	}
	if uint64(next) > e.Mapping.Heap.MapSize {
		return ErrHeapOverflow
	}
	e.HeapUsedSize = uint64(next)
	return nil
}

// HeapEndVirtAddr is the high-water mark expressed as a virtual address.
func (e *ExecutionContext) HeapEndVirtAddr() uint64 {
	return e.Mapping.Heap.Vaddr + e.HeapUsedSize
}

// CopyContextFrom copies the entire CPU context (preserving this context's
// own CR3, which is per-address-space and never copied) and copies the
// data and stack segment contents. Heap and code are not copied: code is
// read-only and shared-identical between slots, and heap is explicitly
// persisted by the user through ExpandHeap plus direct writes (spec §4.3).
func (e *ExecutionContext) CopyContextFrom(src *ExecutionContext, flusher pmem.Flusher, copiedBytes *uint64) error {
	cr3 := e.CPU.CR3
	e.CPU = src.CPU
	e.CPU.CR3 = cr3

	if err := e.Mapping.Data.CopyDataFrom(&src.Mapping.Data, flusher, copiedBytes); err != nil {
		return err
	}
	if err := e.Mapping.Stack.CopyDataFrom(&src.Mapping.Stack, flusher, copiedBytes); err != nil {
		return err
	}
	return nil
}

// Flush flushes every segment of this context's mapping info.
func (e *ExecutionContext) Flush(flusher pmem.Flusher, flushCount *uint64) {
	e.Mapping.Flush(flusher, flushCount)
}
