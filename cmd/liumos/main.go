// Command liumos is the kernel's boot entry point. It is the only place
// that constructs a *kernel.Context (spec §9: "re-architect as an explicit
// context value threaded through constructors; only the boot entry creates
// it") and it drives the scheduler's round-robin loop by hand until every
// registered process has exited, standing in for the timer-interrupt-driven
// loop a real kernel would run.
package main

import (
	"os"

	"liumos/internal/kernel"
	"liumos/internal/klog"
	"liumos/internal/pmem"
)

// defaultRegionSize is used only when no PMEM region has been handed off by
// the boot loader, so the kernel has somewhere to initialise a fresh
// descriptor into (spec §6: "if absent, the kernel initialises a fresh
// descriptor").
const defaultRegionSize = 64 << 20

func main() {
	region := mapPMEMRegion()

	log := klog.NewLogger(os.Stderr)
	ctx, err := kernel.Boot(region, pmem.CLFlusher{}, log)
	if err != nil {
		log.Fatalf(1, "boot failed: %v", err)
	}

	log.Infof("boot complete: %d process(es) runnable", ctx.Scheduler.GetNumOfProcess())
	runUntilOnlyRootRemains(ctx)
}

// mapPMEMRegion locates the reserved PMEM region R (spec §6). A real boot
// loader passes this as a physical address via a well-known register; that
// handoff is an external collaborator (spec §6) outside this module's
// scope, so this always falls back to a freshly zeroed region of
// defaultRegionSize.
func mapPMEMRegion() []byte {
	return make([]byte, defaultRegionSize)
}

// runUntilOnlyRootRemains drives the scheduler until the only process left
// is the root process seeded at boot, the way a real kernel would keep
// switching until idle.
func runUntilOnlyRootRemains(ctx *kernel.Context) {
	for ctx.Scheduler.GetNumOfProcess() > 1 {
		if _, err := ctx.Scheduler.SwitchProcess(); err != nil {
			ctx.Log.Errorf("switch_process: %v", err)
			return
		}
	}
}
