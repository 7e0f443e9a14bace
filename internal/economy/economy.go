// Package economy runs the match clock and passive income while a match is
// running.
package economy

import (
	"github.com/phasestarra7/GroundZero/internal/session"
)

// Service is a tick subscriber. Each tick it counts the match clock down and
// calls onExpire when it reaches zero; every ticksPerSecond ticks it credits
// each participant's per-second income into their plasma balance.
type Service struct {
	sess           *session.Session
	ticksPerSecond int
	onExpire       func()
}

func New(sess *session.Session, ticksPerSecond int, onExpire func()) *Service {
	if ticksPerSecond < 1 {
		ticksPerSecond = 1
	}
	return &Service{
		sess:           sess,
		ticksPerSecond: ticksPerSecond,
		onExpire:       onExpire,
	}
}

func (s *Service) OnTick(tick int) {
	if s.sess.Phase() != session.PhaseRunning {
		return
	}

	if s.sess.DecrementRemaining() == 0 {
		if s.onExpire != nil {
			s.onExpire()
		}
		return
	}

	if tick%s.ticksPerSecond != 0 {
		return
	}
	for _, id := range s.sess.Participants() {
		s.sess.AddPlasma(id, s.sess.IncomeRate(id))
	}
}
