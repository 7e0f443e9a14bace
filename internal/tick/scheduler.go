package tick

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

type TaskID int

type task struct {
	id     TaskID
	due    int
	period int
	fn     func()
}

// Scheduler is the single logical thread of the match core. Step advances
// one host tick and runs every task that is due; Run drives Step from a
// ticker and executes closures posted from other goroutines between ticks.
type Scheduler struct {
	logger   *slog.Logger
	interval time.Duration
	now      int
	nextID   TaskID
	tasks    map[TaskID]*task
	inbox    chan func()
}

func NewScheduler(tickRate int, logger *slog.Logger) *Scheduler {
	if tickRate <= 0 {
		tickRate = 20
	}
	return &Scheduler{
		logger:   logger,
		interval: time.Second / time.Duration(tickRate),
		tasks:    make(map[TaskID]*task),
		inbox:    make(chan func(), 256),
	}
}

// Now returns the number of host ticks stepped so far.
func (s *Scheduler) Now() int {
	return s.now
}

// After runs fn once, delay ticks from now. Delays below one run on the next step.
func (s *Scheduler) After(delay int, fn func()) TaskID {
	return s.add(delay, 0, fn)
}

// Every runs fn each period ticks, first after one period.
func (s *Scheduler) Every(period int, fn func()) TaskID {
	if period < 1 {
		period = 1
	}
	return s.add(period, period, fn)
}

func (s *Scheduler) add(delay, period int, fn func()) TaskID {
	if delay < 1 {
		delay = 1
	}
	s.nextID++
	s.tasks[s.nextID] = &task{
		id:     s.nextID,
		due:    s.now + delay,
		period: period,
		fn:     fn,
	}
	return s.nextID
}

func (s *Scheduler) Cancel(id TaskID) {
	delete(s.tasks, id)
}

func (s *Scheduler) CancelAll() {
	s.tasks = make(map[TaskID]*task)
}

func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Step advances one tick. Tasks run in due order, then scheduling order.
// A task cancelled by an earlier task in the same step does not run.
func (s *Scheduler) Step() {
	s.now++

	var due []*task
	for _, t := range s.tasks {
		if t.due <= s.now {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].id < due[j].id
	})

	for _, t := range due {
		if s.tasks[t.id] != t {
			continue
		}
		if t.period > 0 {
			t.due = s.now + t.period
		} else {
			delete(s.tasks, t.id)
		}
		s.run(t.id, t.fn)
	}
}

// Advance steps n ticks.
func (s *Scheduler) Advance(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

func (s *Scheduler) run(id TaskID, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked", "task", id, "tick", s.now, "panic", r)
		}
	}()
	fn()
}

// Post queues fn to run on the scheduler goroutine. It is safe to call from
// any goroutine and returns false when the inbox is full.
func (s *Scheduler) Post(fn func()) bool {
	select {
	case s.inbox <- fn:
		return true
	default:
		s.logger.Warn("scheduler inbox full, dropping event")
		return false
	}
}

// Drain runs every closure currently queued by Post.
func (s *Scheduler) Drain() {
	for {
		select {
		case fn := <-s.inbox:
			s.run(0, fn)
		default:
			return
		}
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped", "tick", s.now)
			s.Drain()
			return nil
		case fn := <-s.inbox:
			s.run(0, fn)
		case <-ticker.C:
			s.Step()
		}
	}
}
