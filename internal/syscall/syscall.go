// Package syscall is the thin shim the kernel's syscall dispatch exposes to
// user processes (spec §6: "scheduler-visible process API"). Each call here
// is a direct rename of a scheduler or execution-context operation — the
// dispatch table mapping raw syscall numbers to these functions lives
// outside this module's scope.
package syscall

import (
	"liumos/internal/sched"
)

// Exit terminates the calling process with code (spec: "exit(code) ->
// kill_current").
func Exit(s *sched.Scheduler, code int) (*sched.Process, error) {
	return s.KillCurrentProcess(code)
}

// Yield gives up the remainder of the calling process's time slice (spec:
// "yield() -> switch_process").
func Yield(s *sched.Scheduler) (*sched.Process, error) {
	return s.SwitchProcess()
}

// Brk grows or shrinks the calling process's heap by delta bytes (spec:
// "brk(delta) -> expand_heap"). It operates on the process's working
// execution context, since that is the copy accumulating new state. A
// process with no persistent info has no heap to grow.
func Brk(p *sched.Process, delta int64) error {
	if p.Info == nil {
		return sched.ErrNotPersistent
	}
	ctx := p.Info.WorkingContext()
	return ctx.ExpandHeap(delta)
}
