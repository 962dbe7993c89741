package checkpoint

import "fmt"

// Error follows the packed-uint64 scheme shared across this module.
type Error uint64

const (
	checkpointSubsystem = 4

	errUninitialized = iota + 1
	errCorruptPMEM
)

// ErrUninitialized is returned by SwitchContext when ValidCtxIdx is still
// the sentinel kNumOfExecutionContext (spec §7: "UNINITIALIZED").
var ErrUninitialized = newError(errUninitialized, "persistent process info has no valid context yet")

// ErrCorruptPMEM is the error recovery logs when a record's signature matches
// but ValidCtxIdx is out of range (spec §7: "CORRUPT_PMEM"). Recovery skips
// such a record and goes on; it does not return this error.
var ErrCorruptPMEM = newError(errCorruptPMEM, "signature matched but valid_ctx_idx is out of range")

var messages = map[uint64]string{}

func newError(num uint16, msg string) Error {
	v := Error((uint64(checkpointSubsystem) << 48) | uint64(num))
	messages[uint64(v)] = msg
	return v
}

func (e Error) Error() string {
	if msg, ok := messages[uint64(e)]; ok {
		return fmt.Sprintf("checkpoint: %s", msg)
	}
	return "checkpoint: unknown error"
}
