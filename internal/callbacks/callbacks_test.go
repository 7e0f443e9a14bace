package callbacks

import (
	"testing"

	"github.com/google/uuid"

	"github.com/phasestarra7/GroundZero/internal/session"
)

type counting struct {
	DefaultCallbacks
	kills  int
	phases []session.Phase
}

func (c *counting) OnKill(attacker, victim session.PlayerID, gain, loss float64) {
	c.kills++
}

func (c *counting) OnPhaseChange(from, to session.Phase) {
	c.phases = append(c.phases, to)
}

func TestChainFansOut(t *testing.T) {
	chain := NewCallbackChain()
	a, b := &counting{}, &counting{}
	chain.Register(a)
	chain.Register(nil)
	chain.Register(b)
	if chain.Len() != 2 {
		t.Fatalf("nil callbacks should be ignored, got %d", chain.Len())
	}

	chain.OnKill(uuid.New(), uuid.New(), 1, 2)
	chain.OnPhaseChange(session.PhaseIdle, session.PhaseCountdownBeforeVote)
	chain.OnDeath(uuid.New(), 3)

	for _, c := range []*counting{a, b} {
		if c.kills != 1 {
			t.Fatalf("expected one kill, got %d", c.kills)
		}
		if len(c.phases) != 1 || c.phases[0] != session.PhaseCountdownBeforeVote {
			t.Fatalf("unexpected phases %v", c.phases)
		}
	}
}
