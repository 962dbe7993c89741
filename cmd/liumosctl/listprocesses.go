package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listProcessesCmd = &cobra.Command{
	Use:   "list-processes <image>",
	Short: "Recover an image and list the processes the scheduler ends up with",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		im, err := loadImage(args[0])
		if err != nil {
			return err
		}
		s, _, err := runRecovery(im)
		if err != nil {
			return err
		}
		for i := 0; i < s.GetNumOfProcess(); i++ {
			p := s.GetProcess(i)
			fmt.Printf("%d\t%s\t%s\n", i, p.ID, p.Status)
		}
		return nil
	},
}
