// Package sched implements the round-robin scheduler (spec §4.5, component
// C7): it walks a fixed-capacity ring of processes and invokes the
// checkpoint engine on any outgoing process that carries persistent state.
package sched

import (
	"liumos/internal/checkpoint"
	"liumos/internal/pmem"
)

// MaxProcesses bounds the scheduler's process table (spec §4.5: "fixed
// capacity array of process pointers (up to 256)").
const MaxProcesses = 256

// Scheduler round-robins across its registered processes. It holds
// non-owning back-references only; a Process never points back at its
// Scheduler (spec §9 "cyclic references").
type Scheduler struct {
	procs   [MaxProcesses]*Process
	n       int
	current int
	flusher pmem.Flusher

	// CopiedBytes and FlushedLines accumulate checkpoint-engine statistics
	// across every SwitchProcess call that triggers a checkpoint.
	CopiedBytes  uint64
	FlushedLines uint64
}

// NewScheduler constructs a Scheduler seeded with root, matching spec §4.5's
// invariant that the current process pointer is never null.
func NewScheduler(root *Process, flusher pmem.Flusher) *Scheduler {
	root.Status = Running
	s := &Scheduler{flusher: flusher}
	s.procs[0] = root
	s.n = 1
	return s
}

// RegisterProcess appends p to the ring and marks it Ready, or fails with
// ErrSchedFull if the table is saturated.
func (s *Scheduler) RegisterProcess(p *Process) error {
	if s.n >= MaxProcesses {
		return ErrSchedFull
	}
	p.Status = Ready
	s.procs[s.n] = p
	s.n++
	return nil
}

// GetCurrentProcess returns the process presently occupying the CPU.
func (s *Scheduler) GetCurrentProcess() *Process { return s.procs[s.current] }

// GetNumOfProcess returns how many processes are registered.
func (s *Scheduler) GetNumOfProcess() int { return s.n }

// GetProcess returns the i'th registered process in ring order.
func (s *Scheduler) GetProcess(i int) *Process {
	if i < 0 || i >= s.n {
		return nil
	}
	return s.procs[i]
}

// nextRunnableIndex returns the ring index of the next process, starting
// just after current, whose status is Ready or Running. Ties are broken by
// insertion order (spec §4.5) since the ring itself is insertion-ordered.
func (s *Scheduler) nextRunnableIndex() (int, bool) {
	for step := 1; step <= s.n; step++ {
		idx := (s.current + step) % s.n
		switch s.procs[idx].Status {
		case Ready, Running:
			return idx, true
		}
	}
	return 0, false
}

// SwitchProcess runs one round-robin step: if the outgoing process carries
// persistent state, the checkpoint engine commits it before the address
// space changes (spec §4.5). It returns the process now current.
func (s *Scheduler) SwitchProcess() (*Process, error) {
	outgoing := s.procs[s.current]
	next, ok := s.nextRunnableIndex()
	if !ok {
		return nil, ErrNoRunnableProcess
	}

	if outgoing.Info != nil {
		err := checkpoint.SwitchContext(outgoing.Info, s.flusher, &s.CopiedBytes, &s.FlushedLines)
		if err != nil && err != checkpoint.ErrUninitialized {
			return nil, err
		}
	}
	if outgoing.Status == Running {
		outgoing.Status = Ready
	}

	s.current = next
	incoming := s.procs[next]
	incoming.Status = Running
	return incoming, nil
}

// removeAt drops the process at ring index idx, compacting the array and
// keeping s.current pointing at the same logical process it pointed at
// before the removal (the caller is responsible for re-pointing current when
// idx == s.current).
func (s *Scheduler) removeAt(idx int) {
	for i := idx; i < s.n-1; i++ {
		s.procs[i] = s.procs[i+1]
	}
	s.procs[s.n-1] = nil
	s.n--
	if s.current > idx {
		s.current--
	} else if s.current >= s.n && s.n > 0 {
		s.current = s.n - 1
	}
}

// KillCurrentProcess marks the current process Killed, removes it from the
// ring, and immediately switches to the next runnable process (spec §4.5:
// "removes it from the ring, and immediately yields"). A killed process's
// segments are not freed — PMEM reclamation is out of scope.
func (s *Scheduler) KillCurrentProcess(exitCode int) (*Process, error) {
	cur := s.procs[s.current]
	cur.Status = Killed
	cur.ExitCode = exitCode

	next, hasNext := s.nextRunnableIndex()
	var nextProc *Process
	if hasNext {
		nextProc = s.procs[next]
	}

	idx := s.current
	s.removeAt(idx)

	if nextProc == nil {
		return nil, ErrNoRunnableProcess
	}
	for i := 0; i < s.n; i++ {
		if s.procs[i] == nextProc {
			s.current = i
			break
		}
	}
	nextProc.Status = Running
	return nextProc, nil
}

// LaunchAndWaitUntilExit registers p, marks it Ready, and drives
// SwitchProcess in a loop until p has been killed, returning its exit code.
// step is invoked after every switch so callers can simulate the process
// actually running (and, eventually, calling KillCurrentProcess on itself);
// it exists because this scheduler has no real CPU to hand control to.
func (s *Scheduler) LaunchAndWaitUntilExit(p *Process, step func(current *Process) error) (int, error) {
	if err := s.RegisterProcess(p); err != nil {
		return 0, err
	}
	for p.Status != Killed {
		if _, err := s.SwitchProcess(); err != nil {
			return 0, err
		}
		if step != nil {
			if err := step(s.GetCurrentProcess()); err != nil {
				return 0, err
			}
		}
	}
	return p.ExitCode, nil
}
