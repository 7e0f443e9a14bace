package economy

import (
	"testing"

	"github.com/google/uuid"

	"github.com/phasestarra7/GroundZero/internal/session"
)

func runningSession(remaining int, ids ...session.PlayerID) *session.Session {
	s := session.New()
	for _, id := range ids {
		s.RegisterJoin(id)
	}
	s.SnapshotParticipants(session.Base{Plasma: 0, Income: 10, Score: 100})
	s.SetRemainingTicks(remaining)
	s.SetPhase(session.PhaseRunning)
	return s
}

func TestIncomeCreditedOncePerSecond(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	s := runningSession(1000, a, b)
	s.ApplyIncomeRate(15)
	svc := New(s, 20, nil)

	for tick := 1; tick <= 59; tick++ {
		svc.OnTick(tick)
	}
	if s.Plasma(a) != 30 || s.Plasma(b) != 30 {
		t.Fatalf("after 59 ticks expected 30 plasma, got %v and %v", s.Plasma(a), s.Plasma(b))
	}
	svc.OnTick(60)
	if s.Plasma(a) != 45 {
		t.Fatalf("expected third credit at tick 60, got %v", s.Plasma(a))
	}
	if s.RemainingTicks() != 940 {
		t.Fatalf("expected 940 ticks left, got %d", s.RemainingTicks())
	}
}

func TestExpiryEndsMatchWithoutIncome(t *testing.T) {
	a := uuid.New()
	s := runningSession(20, a)
	ended := 0
	svc := New(s, 20, func() {
		ended++
		s.SetPhase(session.PhaseEnded)
	})

	for tick := 1; tick <= 25; tick++ {
		svc.OnTick(tick)
	}
	if ended != 1 {
		t.Fatalf("expected exactly one expiry, got %d", ended)
	}
	if s.Plasma(a) != 0 {
		t.Fatalf("income credited on the expiring tick: %v", s.Plasma(a))
	}
}

func TestIgnoredOutsideRunning(t *testing.T) {
	a := uuid.New()
	s := runningSession(100, a)
	s.SetPhase(session.PhaseVotingIncome)
	svc := New(s, 1, func() { t.Fatalf("expiry outside running") })
	svc.OnTick(1)
	if s.RemainingTicks() != 100 || s.Plasma(a) != 0 {
		t.Fatalf("service mutated session outside running")
	}
}
