package combat

import (
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/phasestarra7/GroundZero/internal/host"
	"github.com/phasestarra7/GroundZero/internal/notify"
	"github.com/phasestarra7/GroundZero/internal/option"
	"github.com/phasestarra7/GroundZero/internal/session"
	"github.com/phasestarra7/GroundZero/pkg/config"
)

type fakeClock struct{ now int }

func (c *fakeClock) Now() int { return c.now }

type combatLog struct{ ids []session.PlayerID }

func (l *combatLog) OnCombat(ids ...session.PlayerID) { l.ids = append(l.ids, ids...) }

type names map[session.PlayerID]string

func (n names) Name(id session.PlayerID) string { return n[id] }

type sink struct{ lines []string }

func (s *sink) Broadcast(to []session.PlayerID, message string, cue host.Cue) {
	s.lines = append(s.lines, message)
}
func (s *sink) Message(session.PlayerID, string, bool) {}

var defaultRules = Rules{
	KillSteal:             0.10,
	DeathPenalty:          0.10,
	NonPlayerDeathPenalty: 0.10,
	StealBase:             config.StealFromVictim,
}

type fixture struct {
	sess     *session.Session
	clock    *fakeClock
	log      *combatLog
	out      *sink
	tracker  *Tracker
	resolver *Resolver
	victim   session.PlayerID
	attacker session.PlayerID
}

func newFixture(rules Rules) *fixture {
	f := &fixture{
		sess:     session.New(),
		clock:    &fakeClock{},
		log:      &combatLog{},
		out:      &sink{},
		victim:   uuid.New(),
		attacker: uuid.New(),
	}
	f.sess.RegisterJoin(f.victim)
	f.sess.RegisterJoin(f.attacker)
	f.sess.SnapshotParticipants(session.Base{Score: 100})
	f.sess.SetScore(f.attacker, 50)
	f.sess.SetPhase(session.PhaseRunning)

	n := names{f.victim: "vic", f.attacker: "att"}
	f.tracker = NewTracker(f.sess, f.clock, 200, f.log)
	f.resolver = NewResolver(f.sess, f.tracker, f.clock, rules, n, notify.NewAnnouncer(f.out, "en"), nil)
	return f
}

func (f *fixture) hitAt(tick int, attacker session.PlayerID) {
	f.clock.now = tick
	f.tracker.RecordHit(f.victim, attacker, KindProjectile, "bow", 4)
}

func (f *fixture) dieAt(t *testing.T, tick int) Outcome {
	t.Helper()
	f.clock.now = tick
	out, ok := f.resolver.HandleDeath(f.victim)
	if !ok {
		t.Fatalf("death at tick %d was ignored", tick)
	}
	return out
}

func (f *fixture) score(id session.PlayerID) float64 {
	v, _ := f.sess.Score(id)
	return v
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestWindowBoundary(t *testing.T) {
	tests := []struct {
		name     string
		hit      int
		death    int
		credited bool
	}{
		{"just inside", 100, 100 + 200 - 1, true},
		{"at window", 100, 100 + 200, false},
		{"clearly inside", 100, 150, true},
		{"clearly outside", 100, 400, false},
		{"same tick", 100, 100, true},
		{"clock went backwards", 100, 99, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(defaultRules)
			f.hitAt(tt.hit, f.attacker)
			out := f.dieAt(t, tt.death)
			if out.Credited != tt.credited {
				t.Fatalf("credited=%v, want %v", out.Credited, tt.credited)
			}
		})
	}
}

func TestCreditedKillStealsFromVictim(t *testing.T) {
	f := newFixture(defaultRules)
	f.hitAt(10, f.attacker)
	out := f.dieAt(t, 20)

	if !out.Credited || out.Attacker != f.attacker {
		t.Fatalf("expected credited kill, got %+v", out)
	}
	if !near(f.score(f.victim), 90) || !near(f.score(f.attacker), 60) {
		t.Fatalf("victim=%v attacker=%v, want 90 and 60", f.score(f.victim), f.score(f.attacker))
	}
	if len(f.out.lines) != 1 || !strings.Contains(f.out.lines[0], "att killed vic (+10.00 / -10.00)") {
		t.Fatalf("unexpected announcement %q", f.out.lines)
	}
}

func TestCreditedKillStealsFromAttacker(t *testing.T) {
	rules := defaultRules
	rules.StealBase = config.StealFromAttacker
	f := newFixture(rules)
	f.hitAt(10, f.attacker)
	f.dieAt(t, 20)

	if !near(f.score(f.victim), 90) || !near(f.score(f.attacker), 55) {
		t.Fatalf("victim=%v attacker=%v, want 90 and 55", f.score(f.victim), f.score(f.attacker))
	}
}

func TestUncreditedDeaths(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		f := newFixture(defaultRules)
		f.hitAt(10, uuid.Nil)
		out := f.dieAt(t, 11)
		if out.Credited || !near(out.Loss, 10) || !near(f.score(f.victim), 90) {
			t.Fatalf("unexpected outcome %+v score=%v", out, f.score(f.victim))
		}
		if !strings.Contains(f.out.lines[0], "vic died (penalty -10.00)") {
			t.Fatalf("unexpected announcement %q", f.out.lines)
		}
	})

	t.Run("no hit", func(t *testing.T) {
		f := newFixture(defaultRules)
		out := f.dieAt(t, 50)
		if out.Credited || out.HadHit {
			t.Fatalf("unexpected outcome %+v", out)
		}
	})

	t.Run("self inflicted", func(t *testing.T) {
		f := newFixture(defaultRules)
		f.hitAt(10, f.victim)
		if out := f.dieAt(t, 11); out.Credited {
			t.Fatalf("self kill should not be credited")
		}
	})

	t.Run("attacker not in match", func(t *testing.T) {
		f := newFixture(defaultRules)
		f.hitAt(10, uuid.New())
		if out := f.dieAt(t, 11); out.Credited {
			t.Fatalf("kill by a non participant should not be credited")
		}
	})

	t.Run("hit consumed", func(t *testing.T) {
		f := newFixture(defaultRules)
		f.hitAt(10, f.attacker)
		f.dieAt(t, 11)
		if out := f.dieAt(t, 12); out.Credited {
			t.Fatalf("one hit credited two deaths")
		}
	})
}

func TestDisconnectedAttackerStillCredited(t *testing.T) {
	f := newFixture(defaultRules)
	f.hitAt(10, f.attacker)
	f.sess.Remove(f.attacker)

	out := f.dieAt(t, 20)
	if !out.Credited || !near(f.score(f.attacker), 60) {
		t.Fatalf("offline attacker lost kill credit: %+v", out)
	}
}

func TestLatestHitWins(t *testing.T) {
	f := newFixture(defaultRules)
	other := uuid.New()
	f.sess.MoveToParticipant(other)

	f.hitAt(10, f.attacker)
	f.hitAt(15, uuid.Nil)
	if out := f.dieAt(t, 16); out.Credited {
		t.Fatalf("environmental hit should replace the earlier player hit")
	}
	if len(f.log.ids) != 4 {
		t.Fatalf("expected attacker and victim reported for both hits, got %d ids", len(f.log.ids))
	}
}

func TestHardcoreDoublesPenalties(t *testing.T) {
	f := newFixture(defaultRules)
	f.sess.SetGameMode(option.GameModeHardcore)

	f.hitAt(10, f.attacker)
	out := f.dieAt(t, 11)
	if !near(out.Loss, 20) || !near(out.Gain, 10) {
		t.Fatalf("expected loss 20 gain 10, got %+v", out)
	}
}

func TestScoresFloorAtZero(t *testing.T) {
	rules := Rules{KillSteal: 1, DeathPenalty: 3, NonPlayerDeathPenalty: 3}
	f := newFixture(rules)
	f.hitAt(10, f.attacker)
	f.dieAt(t, 11)
	if f.score(f.victim) != 0 {
		t.Fatalf("victim score %v", f.score(f.victim))
	}
	f.dieAt(t, 12)
	if f.score(f.victim) != 0 {
		t.Fatalf("victim score went below zero: %v", f.score(f.victim))
	}
}

func TestIgnoredOutsideRunning(t *testing.T) {
	f := newFixture(defaultRules)
	f.sess.SetPhase(session.PhaseVotingMapSize)
	if f.tracker.RecordHit(f.victim, f.attacker, KindMelee, "", 1) {
		t.Fatalf("hit recorded outside running")
	}
	if _, ok := f.resolver.HandleDeath(f.victim); ok {
		t.Fatalf("death handled outside running")
	}
	if len(f.log.ids) != 0 {
		t.Fatalf("combat listener notified outside running")
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"vanilla": KindMelee, "TNT": KindArea, "arrow": KindProjectile, "poison": KindPoison, "lava": KindOther} {
		if got := ParseKind(in); got != want {
			t.Fatalf("ParseKind(%q) = %v, want %v", in, got, want)
		}
	}
}
