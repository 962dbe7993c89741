package sched

import (
	"github.com/google/uuid"

	"liumos/internal/checkpoint"
)

// Status is a Process's scheduling state (spec §4.5 "runtime handle carrying
// a status").
type Status int

const (
	NotInitialized Status = iota
	Ready
	Running
	Sleeping
	Killed
)

func (s Status) String() string {
	switch s {
	case NotInitialized:
		return "NotInitialized"
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Sleeping:
		return "Sleeping"
	case Killed:
		return "Killed"
	default:
		return "Unknown"
	}
}

// Process is a runtime handle carrying scheduling bookkeeping and a
// back-reference to the durable record it resumes from. Info is nil for a
// process with no persistent state to checkpoint (spec §4.5: "if the
// outgoing process is persistent").
type Process struct {
	ID       uuid.UUID
	Status   Status
	Info     *checkpoint.PersistentProcessInfo
	ExitCode int
}

// NewProcess returns a Process in the NotInitialized state, ready to be
// handed to Scheduler.RegisterProcess.
func NewProcess(info *checkpoint.PersistentProcessInfo) *Process {
	return &Process{ID: uuid.New(), Info: info, Status: NotInitialized}
}

// NewRootProcess returns the Process the scheduler is seeded with at
// construction (spec §4.5: "the current process pointer is never null once
// the scheduler is constructed; it is seeded with a root process"). The root
// process has no persistent info — it is never checkpointed.
func NewRootProcess() *Process {
	return &Process{ID: uuid.New(), Status: Running}
}
