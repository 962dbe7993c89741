package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liumos/internal/checkpoint"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <image>",
	Short: "Print the descriptor page and every record's checkpoint state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		im, err := loadImage(args[0])
		if err != nil {
			return err
		}
		d := im.descriptor()
		fmt.Printf("descriptor: magic=0x%x valid=%v count=%d\n", d.Magic, d.Magic == checkpoint.Magic, d.Count)

		for i := uint64(0); i < d.Count && i < maxRecordsOnDisk; i++ {
			rec := im.record(int(i))
			fmt.Printf("  record[%d]: signature_valid=%v valid_ctx_idx=%d\n", i, rec.IsValidSignature(), rec.ValidCtxIdx)
			if rec.HasValidContext() {
				ctx := rec.ValidContext()
				fmt.Printf("    rip=0x%x cr3=0x%x heap_used=%d\n", ctx.CPU.Int.RIP, ctx.CPU.CR3, ctx.HeapUsedSize)
			}
		}
		return nil
	},
}
