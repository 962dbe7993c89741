// Package kernel assembles the checkpoint core's components into one boot
// sequence. Spec §9 re-architects the original's process-wide `liumos`
// singleton as an explicit context value threaded through constructors;
// Context is that value, and Boot is the only place that constructs one.
package kernel

import (
	"fmt"

	"liumos/internal/klog"
	"liumos/internal/pmem"
	"liumos/internal/pmemlayout"
	"liumos/internal/sched"
	"liumos/internal/segment"
)

// Context aggregates every subsystem handle a running kernel needs. Unlike
// the original's singleton, nothing here is package-level state — callers
// receive a *Context from Boot and pass it to whatever needs it.
type Context struct {
	Log        *klog.Logger
	Flusher    pmem.Flusher
	Allocator  *pmem.Allocator
	Descriptor *pmemlayout.Descriptor
	Scheduler  *sched.Scheduler
	Recovered  []pmemlayout.Recovered
}

// Boot runs cold-start recovery (spec §4.6) over region, a byte slice
// standing in for the mapped PMEM range R: it parses the descriptor page
// and fixed record table at the front of region, builds an allocator over
// the remaining arena, seeds a scheduler with a root process, and recovers
// every valid record it finds onto freshly built page tables.
func Boot(region []byte, flusher pmem.Flusher, log *klog.Logger) (*Context, error) {
	if log == nil {
		log = klog.Discard
	}

	alloc := pmem.NewAllocator(pmemlayout.Arena(region), flusher)
	if alloc == nil {
		return nil, fmt.Errorf("kernel: PMEM region too small for an allocator arena")
	}

	hdr := pmemlayout.HeaderAt(region)
	var d *pmemlayout.Descriptor
	if hdr.Magic == pmemlayout.Magic {
		d = pmemlayout.DescriptorFromRegion(region)
		log.Infof("boot: found descriptor with %d record(s)", d.Count)
	} else {
		d = pmemlayout.NewDescriptor()
		log.Infof("boot: no descriptor found, initialising a fresh one")
	}

	root := sched.NewRootProcess()
	s := sched.NewScheduler(root, flusher)

	recovered, err := pmemlayout.Recover(d, alloc, flusher, segment.Present|segment.User, s, log)
	if err != nil {
		return nil, fmt.Errorf("kernel: recovery: %w", err)
	}
	log.Infof("boot: recovered %d process(es); %d total registered", len(recovered), s.GetNumOfProcess())

	return &Context{
		Log:        log,
		Flusher:    flusher,
		Allocator:  alloc,
		Descriptor: d,
		Scheduler:  s,
		Recovered:  recovered,
	}, nil
}
