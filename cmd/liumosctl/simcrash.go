package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liumos/internal/checkpoint"
	"liumos/internal/pmem"
)

var (
	simCrashRecordIdx int
	simCrashAfterCall int
)

// simCrashCmd exercises the commit-atomicity property (spec §8 property 1)
// against a real image on disk: it runs one checkpoint on the chosen record
// with a crash injected at flush call number simCrashAfterCall, then reports
// which slot the record's valid_ctx_idx settled on — a scriptable way to
// probe recovery behavior without real power-loss hardware.
var simCrashCmd = &cobra.Command{
	Use:   "sim-crash <image>",
	Short: "Inject a simulated crash mid-checkpoint and report the surviving slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		im, err := loadImage(args[0])
		if err != nil {
			return err
		}
		rec := im.record(simCrashRecordIdx)
		if !rec.HasValidContext() {
			return fmt.Errorf("liumosctl: record %d has no valid context to checkpoint", simCrashRecordIdx)
		}
		before := rec.ValidCtxIdx

		flusher := &pmem.RecordingFlusher{CrashAfter: simCrashAfterCall}
		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Printf("simulated crash: %v\n", r)
				}
			}()
			var copied, flushed uint64
			if err := checkpoint.SwitchContext(rec, flusher, &copied, &flushed); err != nil {
				fmt.Println("switch_context:", err)
			}
		}()

		fmt.Printf("valid_ctx_idx before=%d after=%d\n", before, rec.ValidCtxIdx)
		return nil
	},
}

func init() {
	simCrashCmd.Flags().IntVar(&simCrashRecordIdx, "record", 0, "index of the record to checkpoint")
	simCrashCmd.Flags().IntVar(&simCrashAfterCall, "crash-after", 0, "flush call number to crash at (0 disables)")
}
