package main

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// dataLineSize is the number of payload bytes per encoded line, small enough
// to stay well under typical serial line buffers.
const dataLineSize = 0x40

// encodeDataLine formats one line of the boot protocol: a record type
// ('D' for data, 'E' for end-of-file), the payload's starting offset, the
// hex-encoded payload, and a one-byte XOR checksum — an Intel-HEX-style
// line format simplified to a single record shape.
func encodeDataLine(offset uint64, payload []byte) string {
	sum := byte(len(payload)) ^ byte(offset)
	for _, b := range payload {
		sum ^= b
	}
	return fmt.Sprintf("D%08x%s%02x", offset, hex.EncodeToString(payload), sum)
}

func encodeEOFLine() string {
	return "E0000000000"
}

// decodeDataLine parses a line produced by encodeDataLine, verifying its
// checksum.
func decodeDataLine(line string) (offset uint64, payload []byte, err error) {
	line = strings.TrimSpace(line)
	if len(line) < 11 || line[0] != 'D' {
		return 0, nil, fmt.Errorf("liumos-load: malformed line %q", line)
	}
	if _, err := fmt.Sscanf(line[1:9], "%08x", &offset); err != nil {
		return 0, nil, fmt.Errorf("liumos-load: bad offset in %q: %w", line, err)
	}
	body := line[9 : len(line)-2]
	payload, err = hex.DecodeString(body)
	if err != nil {
		return 0, nil, fmt.Errorf("liumos-load: bad hex payload in %q: %w", line, err)
	}
	wantSum, err := hex.DecodeString(line[len(line)-2:])
	if err != nil || len(wantSum) != 1 {
		return 0, nil, fmt.Errorf("liumos-load: bad checksum in %q", line)
	}
	sum := byte(len(payload)) ^ byte(offset)
	for _, b := range payload {
		sum ^= b
	}
	if sum != wantSum[0] {
		return 0, nil, fmt.Errorf("liumos-load: checksum mismatch on line %q", line)
	}
	return offset, payload, nil
}
