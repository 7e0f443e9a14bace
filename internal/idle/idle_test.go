package idle

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/phasestarra7/GroundZero/internal/callbacks"
	"github.com/phasestarra7/GroundZero/internal/session"
)

type recorder struct {
	callbacks.DefaultCallbacks
	warnings  int
	penalties []int
}

func (r *recorder) OnIdleWarning(id session.PlayerID) { r.warnings++ }
func (r *recorder) OnIdlePenalty(id session.PlayerID, step int, burn float64) {
	r.penalties = append(r.penalties, step)
}

var testConfig = Config{
	Grace:          5,
	WarnAt:         10,
	FirstPenaltyAt: 20,
	Interval:       5,
	Percent:        0.1,
	MaxStacks:      3,
}

func setup(cfg Config) (*Service, *session.Session, *recorder, session.PlayerID) {
	s := session.New()
	id := uuid.New()
	s.RegisterJoin(id)
	s.SnapshotParticipants(session.Base{Score: 100})
	s.SetPhase(session.PhaseRunning)
	rec := &recorder{}
	return New(s, cfg, nil, rec), s, rec, id
}

func score(t *testing.T, s *session.Session, id session.PlayerID) float64 {
	t.Helper()
	v, ok := s.Score(id)
	if !ok {
		t.Fatalf("no score for %s", id)
	}
	return v
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEscalatingPenalties(t *testing.T) {
	svc, s, rec, id := setup(testConfig)

	for tick := 1; tick <= 19; tick++ {
		svc.OnTick(tick)
	}
	if rec.warnings != 1 {
		t.Fatalf("expected one warning before the first penalty, got %d", rec.warnings)
	}
	if score(t, s, id) != 100 {
		t.Fatalf("penalty applied too early")
	}

	want := []float64{90, 72, 50.4, 35.28}
	for i, tick := range []int{20, 25, 30, 35} {
		for ; svc.lastTick < tick; svc.OnTick(svc.lastTick + 1) {
		}
		if got := score(t, s, id); !near(got, want[i]) {
			t.Fatalf("after tick %d expected score %v, got %v", tick, want[i], got)
		}
	}
	if svc.AppliedSteps(id) != 4 {
		t.Fatalf("expected 4 applied steps, got %d", svc.AppliedSteps(id))
	}
	if rec.warnings != 1 {
		t.Fatalf("warning repeated within one idle episode")
	}
}

func TestCatchUpAppliesEveryMissedStep(t *testing.T) {
	svc, s, rec, id := setup(testConfig)

	svc.OnTick(1)
	svc.OnTick(35)

	if got := score(t, s, id); !near(got, 35.28) {
		t.Fatalf("catch-up should reach the same score as ticking, got %v", got)
	}
	if len(rec.penalties) != 4 {
		t.Fatalf("expected 4 penalty steps, got %v", rec.penalties)
	}
	for i, step := range rec.penalties {
		if step != i+1 {
			t.Fatalf("steps applied out of order: %v", rec.penalties)
		}
	}
	if rec.warnings != 1 {
		t.Fatalf("expected the warning during catch-up, got %d", rec.warnings)
	}

	svc.OnTick(36)
	if len(rec.penalties) != 4 {
		t.Fatalf("a step was applied twice: %v", rec.penalties)
	}
}

func TestCombatResetsGraceButKeepsSteps(t *testing.T) {
	svc, s, rec, id := setup(testConfig)

	for tick := 1; tick <= 25; tick++ {
		svc.OnTick(tick)
	}
	if svc.AppliedSteps(id) != 2 {
		t.Fatalf("expected 2 steps, got %d", svc.AppliedSteps(id))
	}

	svc.OnCombat(id, uuid.Nil)
	if svc.IdleTicks(id) != -5 {
		t.Fatalf("combat should set negative grace, got %d", svc.IdleTicks(id))
	}

	before := score(t, s, id)
	previous := svc.AppliedSteps(id)
	for tick := 26; tick <= 50; tick++ {
		svc.OnTick(tick)
		if svc.AppliedSteps(id) < previous {
			t.Fatalf("applied step decreased")
		}
		previous = svc.AppliedSteps(id)
	}
	if rec.warnings != 2 {
		t.Fatalf("warning should re-arm after combat, got %d", rec.warnings)
	}
	if got := score(t, s, id); got != before {
		t.Fatalf("escalation should resume past the last applied step, score moved %v -> %v", before, got)
	}

	for tick := 51; tick <= 60; tick++ {
		svc.OnTick(tick)
	}
	if svc.AppliedSteps(id) != 3 {
		t.Fatalf("expected escalation to resume at step 3, got %d", svc.AppliedSteps(id))
	}
	if got := score(t, s, id); !near(got, before*0.7) {
		t.Fatalf("step 3 should burn 30%%, got %v from %v", got, before)
	}
}

func TestScoreNeverNegative(t *testing.T) {
	cfg := testConfig
	cfg.Percent = 0.5
	svc, s, _, id := setup(cfg)

	svc.OnTick(1)
	svc.OnTick(200)
	if got := score(t, s, id); got < 0 {
		t.Fatalf("score went negative: %v", got)
	}
	if got := score(t, s, id); got != 0 {
		t.Fatalf("150%% burn should floor at zero, got %v", got)
	}
}

func TestIgnoresNonParticipantsAndOtherPhases(t *testing.T) {
	svc, s, rec, id := setup(testConfig)
	stranger := uuid.New()
	svc.OnCombat(stranger)
	if svc.IdleTicks(stranger) != 0 {
		t.Fatalf("non-participant got an idle counter")
	}

	s.SetPhase(session.PhaseEnded)
	svc.OnTick(1)
	svc.OnTick(100)
	if score(t, s, id) != 100 || len(rec.penalties) != 0 {
		t.Fatalf("penalties applied outside running")
	}
}

func TestConfigClamps(t *testing.T) {
	c := Config{WarnAt: -3, FirstPenaltyAt: 0, Interval: 0, Percent: -1, MaxStacks: 0}.normalized()
	if c.WarnAt != 0 || c.FirstPenaltyAt != 1 || c.Interval != 1 || c.Percent != 0 || c.MaxStacks != 1 || c.Grace != 1 {
		t.Fatalf("unexpected clamps %+v", c)
	}
}
