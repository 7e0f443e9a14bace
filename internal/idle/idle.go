package idle

import (
	"github.com/google/uuid"

	"github.com/phasestarra7/GroundZero/internal/callbacks"
	"github.com/phasestarra7/GroundZero/internal/host"
	"github.com/phasestarra7/GroundZero/internal/notify"
	"github.com/phasestarra7/GroundZero/internal/session"
)

// Config thresholds are in ticks.
type Config struct {
	Grace          int
	WarnAt         int
	FirstPenaltyAt int
	Interval       int
	Percent        float64
	MaxStacks      int
}

func (c Config) normalized() Config {
	if c.Grace < 1 {
		c.Grace = 1
	}
	if c.WarnAt < 0 {
		c.WarnAt = 0
	}
	if c.FirstPenaltyAt < 1 {
		c.FirstPenaltyAt = 1
	}
	if c.Interval < 1 {
		c.Interval = 1
	}
	if c.Percent < 0 {
		c.Percent = 0
	}
	if c.MaxStacks < 1 {
		c.MaxStacks = 1
	}
	return c
}

type state struct {
	idle    int
	warned  bool
	applied int
}

// Service tracks ticks since each participant's last combat event and burns
// score once a participant has been idle past the configured thresholds.
type Service struct {
	sess     *session.Session
	cfg      Config
	announce *notify.Announcer
	hooks    callbacks.Callbacks
	players  map[session.PlayerID]*state
	lastTick int
}

func New(sess *session.Session, cfg Config, announce *notify.Announcer, hooks callbacks.Callbacks) *Service {
	if hooks == nil {
		hooks = &callbacks.DefaultCallbacks{}
	}
	return &Service{
		sess:     sess,
		cfg:      cfg.normalized(),
		announce: announce,
		hooks:    hooks,
		players:  make(map[session.PlayerID]*state),
	}
}

func (s *Service) get(id session.PlayerID) *state {
	st, ok := s.players[id]
	if !ok {
		st = &state{}
		s.players[id] = st
	}
	return st
}

// Reset forgets every counter. Called when a match starts or is torn down.
func (s *Service) Reset() {
	s.players = make(map[session.PlayerID]*state)
	s.lastTick = 0
}

// OnCombat puts every given participant back into negative grace and clears
// their warning. The applied penalty step is kept.
func (s *Service) OnCombat(ids ...session.PlayerID) {
	for _, id := range ids {
		if id == uuid.Nil || !s.sess.IsParticipant(id) {
			continue
		}
		st := s.get(id)
		st.idle = -s.cfg.Grace
		st.warned = false
	}
}

func (s *Service) IdleTicks(id session.PlayerID) int {
	if st, ok := s.players[id]; ok {
		return st.idle
	}
	return 0
}

func (s *Service) AppliedSteps(id session.PlayerID) int {
	if st, ok := s.players[id]; ok {
		return st.applied
	}
	return 0
}

// OnTick advances every participant's counter by the ticks elapsed since the
// previous call, so a gap in ticks is accounted for in full.
func (s *Service) OnTick(tick int) {
	if s.sess.Phase() != session.PhaseRunning {
		return
	}

	elapsed := tick - s.lastTick
	if s.lastTick == 0 || elapsed < 1 {
		elapsed = 1
	}
	s.lastTick = tick

	for _, id := range s.sess.Participants() {
		s.advance(id, elapsed)
	}
}

func (s *Service) advance(id session.PlayerID, elapsed int) {
	st := s.get(id)
	prev := st.idle
	now := prev + elapsed
	st.idle = now

	if !st.warned && prev < s.cfg.WarnAt && now >= s.cfg.WarnAt {
		st.warned = true
		if s.announce != nil {
			s.announce.Broadcast([]session.PlayerID{id}, host.CueError,
				"You have not fought for a while. Camping penalties start soon!")
		}
		s.hooks.OnIdleWarning(id)
	}

	if now < s.cfg.FirstPenaltyAt {
		return
	}

	step := 1 + (now-s.cfg.FirstPenaltyAt)/s.cfg.Interval
	for k := st.applied + 1; k <= step; k++ {
		stacks := k
		if stacks > s.cfg.MaxStacks {
			stacks = s.cfg.MaxStacks
		}
		current, ok := s.sess.Score(id)
		if !ok {
			break
		}
		burn := current * s.cfg.Percent * float64(stacks)
		if burn > current {
			burn = current
		}
		s.sess.SetScore(id, current-burn)

		if s.announce != nil {
			s.announce.Broadcast([]session.PlayerID{id}, host.CueError,
				"Camping penalty (step %d): -%.2f", k, burn)
		}
		s.hooks.OnIdlePenalty(id, k, burn)
	}
	if step > st.applied {
		st.applied = step
	}
}
