package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liumos/internal/pmem"
	"liumos/internal/pmemlayout"
	"liumos/internal/sched"
	"liumos/internal/segment"
)

// runRecovery replays spec §4.6's boot-time recovery walk over im, returning
// the scheduler it populated (seeded with a root process, per spec §4.5)
// and the set of processes recovered.
func runRecovery(im *image) (*sched.Scheduler, []pmemlayout.Recovered, error) {
	flusher := pmem.CLFlusher{}
	alloc := pmem.NewAllocator(im.arena(), flusher)
	if alloc == nil {
		return nil, nil, fmt.Errorf("liumosctl: image arena too small for an allocator")
	}
	s := sched.NewScheduler(sched.NewRootProcess(), flusher)
	d := pmemlayout.DescriptorFromRegion(im.pool)
	recovered, err := pmemlayout.Recover(d, alloc, flusher, segment.Present|segment.User, s, nil)
	return s, recovered, err
}

var recoverCmd = &cobra.Command{
	Use:   "recover <image>",
	Short: "Replay the kernel's boot-time recovery walk over a PMEM image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		im, err := loadImage(args[0])
		if err != nil {
			return err
		}
		s, recovered, err := runRecovery(im)
		if err != nil {
			return err
		}
		fmt.Printf("recovered %d process(es); %d total registered\n", len(recovered), s.GetNumOfProcess())
		for _, r := range recovered {
			fmt.Printf("  pid=%s cr3=0x%x\n", r.Process.ID, r.PageTable.Root)
		}
		return nil
	},
}
