package checkpoint

import "liumos/internal/pmem"

// SwitchContext runs the checkpoint engine's commit protocol (spec §4.4):
//
//  1. let v = ValidCtxIdx, w = 1-v (v must be 0 or 1, else ErrUninitialized)
//  2. flush the working context's data
//  3. commit: store ValidCtxIdx = w and flush that word
//  4. copy the new valid context back into the (now stale) other slot, so
//     the next working copy starts from a known-good image
//
// flushedLines accumulates the lines flushed in step 2 and copiedBytes the
// bytes copied in step 4; the commit flush in step 3 is not counted. Both
// are additive so callers can sum them across many checkpoints.
func SwitchContext(p *PersistentProcessInfo, flusher pmem.Flusher, copiedBytes, flushedLines *uint64) error {
	if !p.HasValidContext() {
		return ErrUninitialized
	}
	v := p.ValidCtxIdx
	w := 1 - v

	p.Ctx[w].Flush(flusher, flushedLines)

	p.setValidContextIndex(w, flusher) // commit point

	return p.Ctx[v].CopyContextFrom(&p.Ctx[w], flusher, copiedBytes)
}
