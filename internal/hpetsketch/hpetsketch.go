// Package hpetsketch is a minimal stand-in for the HPET-driven timer tick
// that drives preemption (spec §2's control-flow row: "timer interrupt ->
// scheduler selects next runnable process"). It is sketched only to the
// depth spec §6 specifies an interface for — a tick source that calls
// SwitchProcess — not a full HPET comparator/counter driver.
package hpetsketch

import "liumos/internal/sched"

// Ticker counts elapsed ticks and invokes SwitchProcess once every Period
// ticks, standing in for a programmed HPET comparator interrupt.
type Ticker struct {
	Scheduler *sched.Scheduler
	Period    uint64

	elapsed uint64
}

// NewTicker returns a Ticker that fires SwitchProcess every period ticks.
// A period of zero fires on every tick.
func NewTicker(s *sched.Scheduler, period uint64) *Ticker {
	return &Ticker{Scheduler: s, Period: period}
}

// Tick advances the counter by one and, once Period ticks have elapsed,
// invokes SwitchProcess and resets the counter. It returns the process
// switched to, or nil if this tick didn't trigger a switch.
func (t *Ticker) Tick() (*sched.Process, error) {
	t.elapsed++
	if t.elapsed < t.Period {
		return nil, nil
	}
	t.elapsed = 0
	return t.Scheduler.SwitchProcess()
}
