// Package checkpoint implements the persistent process info double-buffer
// and the checkpoint engine that promotes one of its two slots to valid
// (spec §4.4, components C5/C6): the atomic durable unit of recovery.
package checkpoint

import (
	"unsafe"

	"liumos/internal/execctx"
	"liumos/internal/pmem"
)

// Magic identifies a PersistentProcessInfo record in PMEM. It is the same
// constant spec §6 uses for the top-level descriptor page ("liumOSPO").
const Magic uint64 = 0x4F50_534F_6D75_696C

// sentinelCtxIdx is the valid-context index meaning "uninitialised"
// (spec §3: "the sentinel value kNumOfExecutionContext").
const sentinelCtxIdx = numContexts
const numContexts = 2

// PersistentProcessInfo is the atomic durable unit of recovery: two
// execution context slots, an index saying which is authoritative, and a
// signature identifying the record.
type PersistentProcessInfo struct {
	Ctx         [numContexts]execctx.ExecutionContext
	ValidCtxIdx int
	Signature   uint64
}

// Init sets ValidCtxIdx to the sentinel and flushes it, then sets Signature
// and flushes that — two separate flushed stores, following the original
// implementation's Init() (see SPEC_FULL.md §12), not one combined flush of
// the whole record.
func (p *PersistentProcessInfo) Init(flusher pmem.Flusher) {
	p.ValidCtxIdx = sentinelCtxIdx
	flusher.FlushRange(uintptr(unsafe.Pointer(&p.ValidCtxIdx)), unsafe.Sizeof(p.ValidCtxIdx))
	p.Signature = Magic
	flusher.FlushRange(uintptr(unsafe.Pointer(&p.Signature)), unsafe.Sizeof(p.Signature))
}

// IsValidSignature reports whether Signature matches Magic.
func (p *PersistentProcessInfo) IsValidSignature() bool {
	return p.Signature == Magic
}

// HasValidContext reports whether ValidCtxIdx names a real slot (0 or 1)
// rather than the uninitialised sentinel.
func (p *PersistentProcessInfo) HasValidContext() bool {
	return p.ValidCtxIdx == 0 || p.ValidCtxIdx == 1
}

// ValidContext returns the authoritative execution context. Callers must
// check HasValidContext first.
func (p *PersistentProcessInfo) ValidContext() *execctx.ExecutionContext {
	return &p.Ctx[p.ValidCtxIdx]
}

// WorkingContext returns the slot currently accumulating new work.
func (p *PersistentProcessInfo) WorkingContext() *execctx.ExecutionContext {
	return &p.Ctx[1-p.ValidCtxIdx]
}

// setValidContextIndex performs the commit store: it assigns w and flushes
// the single word holding it. This is the commit point of spec §4.4 — a
// crash before this flush leaves the previous valid index intact, a crash
// after leaves the new one as the truth.
//
// On real hardware, a value that has not reached a flushed cache line is
// never observably durable: a power loss before the flush completes leaves
// PMEM holding whatever it held before, regardless of what the CPU cache
// was holding. FlushRange panicking mid-call stands in for that power loss,
// so the store it was flushing must not be left visible — the old index is
// restored before the panic is allowed to propagate.
func (p *PersistentProcessInfo) setValidContextIndex(w int, flusher pmem.Flusher) {
	old := p.ValidCtxIdx
	p.ValidCtxIdx = w
	defer func() {
		if r := recover(); r != nil {
			p.ValidCtxIdx = old
			panic(r)
		}
	}()
	flusher.FlushRange(uintptr(unsafe.Pointer(&p.ValidCtxIdx)), unsafe.Sizeof(p.ValidCtxIdx))
}
