// Package execctx implements the CPU and execution context data types
// (spec §4.3, component C4): the architectural register file plus mapping
// info that makes a checkpoint resumable.
package execctx

// GeneralRegisters holds the callee/caller-saved general purpose registers
// that must survive a context switch. These are opaque to the checkpoint
// core: it never interprets them, only copies and persists them.
type GeneralRegisters struct {
	RAX, RBX, RCX, RDX uint64
	RSI, RDI, RBP       uint64
	R8, R9, R10, R11    uint64
	R12, R13, R14, R15  uint64
}

// InterruptFrame is what an `iret` consumes to resume user execution: the
// instruction pointer, code segment, stack pointer, stack segment, and
// flags (spec §3: "interrupt frame (rip, cs, rsp, ss, rflags)").
type InterruptFrame struct {
	RIP    uint64
	CS     uint64
	RSP    uint64
	SS     uint64
	RFlags uint64
}

// rflagsInterruptEnable is bit 1 of RFLAGS, which spec §3 requires to
// always be set in a valid CPUContext.
const rflagsInterruptEnable = 1 << 1

// FPUState is the FXSAVE/XSAVE area for FPU/SSE register state. It is
// opaque: the checkpoint core copies and persists it byte for byte.
type FPUState struct {
	Data [512]byte
}

// CPUContext is the full architectural register file needed to resume a
// process via interrupt return (spec §3, component C4 base).
type CPUContext struct {
	GPRs GeneralRegisters
	Int  InterruptFrame
	CR3  uint64 // physical address of the root page table to install on resume
	FPU  FPUState
}
