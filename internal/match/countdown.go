package match

import (
	"github.com/phasestarra7/GroundZero/internal/tick"
)

// countdown announces remaining, remaining-1 .. 1 one step apart, then calls
// onZero one tick after the last step. It is driven by one-shot tasks so
// cancelling the scheduler stops it between steps.
type countdown struct {
	sched     *tick.Scheduler
	remaining int
	step      int
	onStep    func(n int)
	onZero    func()
}

func newCountdown(sched *tick.Scheduler, seconds, stepTicks int, onStep func(int), onZero func()) *countdown {
	return &countdown{
		sched:     sched,
		remaining: seconds,
		step:      stepTicks,
		onStep:    onStep,
		onZero:    onZero,
	}
}

func (c *countdown) start() {
	c.advance()
}

func (c *countdown) advance() {
	if c.remaining <= 0 {
		c.sched.After(1, c.onZero)
		return
	}
	c.onStep(c.remaining)
	c.remaining--
	c.sched.After(c.step, c.advance)
}
