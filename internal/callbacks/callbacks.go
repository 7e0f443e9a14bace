package callbacks

import (
	"github.com/phasestarra7/GroundZero/internal/session"
	"github.com/phasestarra7/GroundZero/internal/vote"
)

// Callbacks observes match events. Hooks run on the scheduler goroutine and
// must not block.
type Callbacks interface {
	OnPhaseChange(from, to session.Phase)
	OnVoteCast(kind vote.Kind, voter session.PlayerID, key string)
	OnVoteResolved(kind vote.Kind, key string, ties int)
	OnMatchStart(participants []session.PlayerID)
	OnKill(attacker, victim session.PlayerID, gain, loss float64)
	OnDeath(victim session.PlayerID, loss float64)
	OnIdleWarning(id session.PlayerID)
	OnIdlePenalty(id session.PlayerID, step int, burn float64)
	OnMatchEnd(standings []session.Standing)
}

type DefaultCallbacks struct{}

func (d *DefaultCallbacks) OnPhaseChange(from, to session.Phase)                          {}
func (d *DefaultCallbacks) OnVoteCast(kind vote.Kind, voter session.PlayerID, key string) {}
func (d *DefaultCallbacks) OnVoteResolved(kind vote.Kind, key string, ties int)           {}
func (d *DefaultCallbacks) OnMatchStart(participants []session.PlayerID)                  {}
func (d *DefaultCallbacks) OnKill(attacker, victim session.PlayerID, gain, loss float64)  {}
func (d *DefaultCallbacks) OnDeath(victim session.PlayerID, loss float64)                 {}
func (d *DefaultCallbacks) OnIdleWarning(id session.PlayerID)                             {}
func (d *DefaultCallbacks) OnIdlePenalty(id session.PlayerID, step int, burn float64)     {}
func (d *DefaultCallbacks) OnMatchEnd(standings []session.Standing)                       {}

type CallbackChain struct {
	callbacks []Callbacks
}

func NewCallbackChain() *CallbackChain {
	return &CallbackChain{
		callbacks: make([]Callbacks, 0),
	}
}

func (c *CallbackChain) Register(cb Callbacks) {
	if cb == nil {
		return
	}
	c.callbacks = append(c.callbacks, cb)
}

func (c *CallbackChain) Len() int {
	return len(c.callbacks)
}

func (c *CallbackChain) OnPhaseChange(from, to session.Phase) {
	for _, cb := range c.callbacks {
		cb.OnPhaseChange(from, to)
	}
}

func (c *CallbackChain) OnVoteCast(kind vote.Kind, voter session.PlayerID, key string) {
	for _, cb := range c.callbacks {
		cb.OnVoteCast(kind, voter, key)
	}
}

func (c *CallbackChain) OnVoteResolved(kind vote.Kind, key string, ties int) {
	for _, cb := range c.callbacks {
		cb.OnVoteResolved(kind, key, ties)
	}
}

func (c *CallbackChain) OnMatchStart(participants []session.PlayerID) {
	for _, cb := range c.callbacks {
		cb.OnMatchStart(participants)
	}
}

func (c *CallbackChain) OnKill(attacker, victim session.PlayerID, gain, loss float64) {
	for _, cb := range c.callbacks {
		cb.OnKill(attacker, victim, gain, loss)
	}
}

func (c *CallbackChain) OnDeath(victim session.PlayerID, loss float64) {
	for _, cb := range c.callbacks {
		cb.OnDeath(victim, loss)
	}
}

func (c *CallbackChain) OnIdleWarning(id session.PlayerID) {
	for _, cb := range c.callbacks {
		cb.OnIdleWarning(id)
	}
}

func (c *CallbackChain) OnIdlePenalty(id session.PlayerID, step int, burn float64) {
	for _, cb := range c.callbacks {
		cb.OnIdlePenalty(id, step, burn)
	}
}

func (c *CallbackChain) OnMatchEnd(standings []session.Standing) {
	for _, cb := range c.callbacks {
		cb.OnMatchEnd(standings)
	}
}
