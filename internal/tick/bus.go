package tick

import (
	"fmt"
	"log/slog"
)

// Subscriber receives one OnTick call per bus tick. Implementations must be
// comparable (typically pointers) so registration can be deduplicated.
type Subscriber interface {
	OnTick(tick int)
}

// Bus fans every tick out to its subscribers in registration order. Each
// tick iterates over a snapshot, so subscribers may register or unregister
// others (or stop the bus) from inside OnTick.
type Bus struct {
	sched   *Scheduler
	logger  *slog.Logger
	subs    []Subscriber
	tick    int
	running bool
	task    TaskID
}

func NewBus(sched *Scheduler, logger *slog.Logger) *Bus {
	return &Bus{
		sched:  sched,
		logger: logger,
	}
}

func (b *Bus) Register(sub Subscriber) {
	for _, s := range b.subs {
		if s == sub {
			return
		}
	}
	b.subs = append(b.subs, sub)
}

func (b *Bus) Unregister(sub Subscriber) {
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) Subscribers() int {
	return len(b.subs)
}

func (b *Bus) Start() {
	if b.running {
		return
	}
	b.running = true
	b.task = b.sched.Every(1, b.fire)
}

// Stop halts firing, clears every subscriber and resets the tick count.
func (b *Bus) Stop() {
	if b.running {
		b.sched.Cancel(b.task)
	}
	b.running = false
	b.subs = nil
	b.tick = 0
}

func (b *Bus) Running() bool {
	return b.running
}

// Now returns the current bus tick. It doubles as the clock for combat
// attribution while a match is running.
func (b *Bus) Now() int {
	return b.tick
}

func (b *Bus) fire() {
	if !b.running {
		return
	}
	b.tick++
	current := b.tick

	snapshot := make([]Subscriber, len(b.subs))
	copy(snapshot, b.subs)

	for _, sub := range snapshot {
		if !b.running {
			return
		}
		b.dispatch(sub, current)
	}
}

func (b *Bus) dispatch(sub Subscriber, tick int) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("tick subscriber panicked", "subscriber", fmt.Sprintf("%T", sub), "tick", tick, "panic", r)
		}
	}()
	sub.OnTick(tick)
}
