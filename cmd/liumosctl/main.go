// Command liumosctl is an operator tool for inspecting and manipulating a
// liumOS PMEM image offline: dumping its descriptor and records, forcing
// recovery the way the kernel would at boot, listing registered processes,
// and injecting a simulated crash mid-checkpoint for testing (spec §6's
// "CLI / boot command line" external collaborator, extended to an operator
// surface).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
