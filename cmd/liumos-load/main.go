// Command liumos-load is the host side of the boot command line (spec §6:
// "the boot loader passes a pointer to the PMEM descriptor page via a
// well-known register; if absent, the kernel initialises a fresh
// descriptor"). It pushes a freshly built PMEM image over a serial line
// using a small line-oriented protocol, and waits for the board's ack after
// each line — modeled on the reference corpus's ELF-over-serial loader
// (boot/anticipation/cmd/release).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

var (
	ttyPathFlag = flag.String("p", "", "serial device to load over, e.g. /dev/ttyUSB0")
	verboseFlag = flag.Bool("v", false, "log each line as it's sent")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s -p <tty device> <pmem image>\n", os.Args[0])
	os.Exit(2)
}

func main() {
	flag.Parse()
	if *ttyPathFlag == "" || flag.NArg() != 1 {
		usage()
	}

	image, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("liumos-load: reading image: %v", err)
	}

	recv, err := newTTYReceiver(*ttyPathFlag)
	if err != nil {
		log.Fatalf("liumos-load: %v", err)
	}
	defer recv.close()

	if err := loadImage(recv, image, *verboseFlag); err != nil {
		log.Fatalf("liumos-load: %v", err)
	}
}

// loadImage streams image over recv in dataLineSize chunks, waiting for an
// "OK" ack after every line before sending the next, then sends the
// end-of-file marker.
func loadImage(recv *ttyReceiver, image []byte, verbose bool) error {
	for off := 0; off < len(image); off += dataLineSize {
		end := off + dataLineSize
		if end > len(image) {
			end = len(image)
		}
		line := encodeDataLine(uint64(off), image[off:end])
		if verbose {
			log.Printf("-> %s", line)
		}
		if err := recv.sendLine(line); err != nil {
			return fmt.Errorf("sending offset 0x%x: %w", off, err)
		}
		ack, err := recv.readAck()
		if err != nil {
			return fmt.Errorf("waiting for ack at offset 0x%x: %w", off, err)
		}
		if ack != "OK" {
			return fmt.Errorf("board rejected line at offset 0x%x: %s", off, ack)
		}
	}
	return recv.sendLine(encodeEOFLine())
}
