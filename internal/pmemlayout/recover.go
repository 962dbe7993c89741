package pmemlayout

import (
	"liumos/internal/checkpoint"
	"liumos/internal/klog"
	"liumos/internal/pmem"
	"liumos/internal/sched"
	"liumos/internal/segment"
)

// Recovered describes one process materialised during cold-boot recovery.
type Recovered struct {
	Process   *sched.Process
	PageTable *segment.PageTable
}

// Recover walks d's records (spec §4.6): for each record whose signature and
// valid_ctx_idx pass validation, it materialises a fresh root page table
// from the resumable context's mapping, registers a new Process with it, and
// returns the result. A record with a matching signature but an out-of-range
// valid_ctx_idx is CORRUPT_PMEM — it is logged and left untouched rather than
// aborting the whole walk, per spec §7's propagation policy.
func Recover(d *Descriptor, alloc segment.TableAllocator, flusher pmem.Flusher, attrs segment.Attr, sc *sched.Scheduler, log *klog.Logger) ([]Recovered, error) {
	if log == nil {
		log = klog.Discard
	}
	var out []Recovered
	for i := 0; i < d.Count; i++ {
		rec := d.Records[i]
		if rec == nil || !rec.IsValidSignature() {
			continue
		}
		if !rec.HasValidContext() {
			log.Errorf("pmemlayout: record %d: %s", i, checkpoint.ErrCorruptPMEM)
			continue
		}

		pt, err := segment.NewPageTable(alloc, flusher)
		if err != nil {
			return out, err
		}
		ctx := rec.ValidContext()
		if err := ctx.Mapping.Map(pt, alloc, flusher, attrs, true); err != nil {
			return out, err
		}
		ctx.CPU.CR3 = pt.Root

		p := sched.NewProcess(rec)
		if sc != nil {
			if err := sc.RegisterProcess(p); err != nil {
				return out, err
			}
		}
		out = append(out, Recovered{Process: p, PageTable: pt})
	}
	return out, nil
}
