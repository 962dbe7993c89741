package main

import (
	"bufio"
	"fmt"
	"log"
	"strings"

	tty "github.com/mattn/go-tty"
)

// ttyReceiver is the host side of the boot protocol: it opens the serial
// device once, in raw mode, and writes/reads lines to it. Modeled on the
// reference corpus's ttyReceiver (boot/anticipation/cmd/release/outhandler.go).
type ttyReceiver struct {
	io      *tty.TTY
	reader  *bufio.Reader
	restore func() error
}

func newTTYReceiver(devTTYPath string) (*ttyReceiver, error) {
	ttyObj, err := tty.OpenDevice(devTTYPath)
	if err != nil {
		return nil, fmt.Errorf("liumos-load: opening %s: %w", devTTYPath, err)
	}
	restore, err := ttyObj.Raw()
	if err != nil {
		return nil, fmt.Errorf("liumos-load: setting raw mode: %w", err)
	}
	return &ttyReceiver{io: ttyObj, reader: bufio.NewReader(ttyObj.Input()), restore: restore}, nil
}

func (t *ttyReceiver) sendLine(s string) error {
	_, err := t.io.Output().WriteString(s + "\n")
	return err
}

// readAck blocks for a single acknowledgement line from the board. It skips
// blank lines and returns the first non-blank line, trimmed; other console
// output is not filtered and comes back as the ack.
func (t *ttyReceiver) readAck() (string, error) {
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return line, nil
	}
}

func (t *ttyReceiver) close() {
	if t.restore != nil {
		if err := t.restore(); err != nil {
			log.Printf("liumos-load: restoring tty mode: %v", err)
		}
	}
	if err := t.io.Close(); err != nil {
		log.Printf("liumos-load: closing tty: %v", err)
	}
}
