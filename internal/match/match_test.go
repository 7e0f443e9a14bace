package match

import (
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"

	"github.com/phasestarra7/GroundZero/internal/callbacks"
	"github.com/phasestarra7/GroundZero/internal/combat"
	"github.com/phasestarra7/GroundZero/internal/host"
	"github.com/phasestarra7/GroundZero/internal/host/mocks"
	"github.com/phasestarra7/GroundZero/internal/notify"
	"github.com/phasestarra7/GroundZero/internal/option"
	"github.com/phasestarra7/GroundZero/internal/player"
	"github.com/phasestarra7/GroundZero/internal/session"
	"github.com/phasestarra7/GroundZero/internal/tick"
	"github.com/phasestarra7/GroundZero/internal/vote"
	"github.com/phasestarra7/GroundZero/pkg/config"
)

type fakeMenu struct {
	opened      int
	updates     int
	retained    map[vote.Kind][]string
	highlighted map[vote.Kind]string
	closed      int
}

func newFakeMenu() *fakeMenu {
	return &fakeMenu{
		retained:    make(map[vote.Kind][]string),
		highlighted: make(map[vote.Kind]string),
	}
}

func (f *fakeMenu) Open(session.PlayerID, vote.Kind, []host.MenuItem) {
	f.opened++
}

func (f *fakeMenu) Update(vote.Kind, []host.MenuItem) {
	f.updates++
}

func (f *fakeMenu) Retain(kind vote.Kind, keys []string) {
	f.retained[kind] = keys
}

func (f *fakeMenu) Highlight(kind vote.Kind, key string) {
	f.highlighted[kind] = key
}

func (f *fakeMenu) CloseAll() {
	f.closed++
}

type fakeNotifier struct {
	broadcasts []string
	messages   []string
}

func (f *fakeNotifier) Broadcast(to []session.PlayerID, message string, cue host.Cue) {
	f.broadcasts = append(f.broadcasts, message)
}

func (f *fakeNotifier) Message(to session.PlayerID, message string, isError bool) {
	f.messages = append(f.messages, message)
}

func (f *fakeNotifier) saw(substr string) bool {
	for _, m := range append(f.broadcasts, f.messages...) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

type phaseLog struct {
	callbacks.DefaultCallbacks
	phases []session.Phase
	ended  []session.Standing
}

func (p *phaseLog) OnPhaseChange(from, to session.Phase) {
	p.phases = append(p.phases, to)
}

func (p *phaseLog) OnMatchEnd(s []session.Standing) {
	p.ended = s
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.TickRate = 2
	cfg.Match.DurationSeconds = 10
	cfg.Match.ResetDelaySeconds = 1
	cfg.Countdown.PreVoteSeconds = 2
	cfg.Countdown.PreStartSeconds = 2
	cfg.Voting.WindowSeconds = 3
	cfg.Voting.ReminderSeconds = 1
	cfg.Voting.ResolveDelaySeconds = 1
	cfg.Voting.AdvanceDelaySeconds = 1
	cfg.Combat.WindowSeconds = 5
	return cfg
}

type fixture struct {
	m      *Manager
	sched  *tick.Scheduler
	env    *mocks.MockEnvironment
	menu   *fakeMenu
	out    *fakeNotifier
	phases *phaseLog
	a, b   session.PlayerID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig()

	f := &fixture{
		sched:  tick.NewScheduler(cfg.Server.TickRate, logger),
		env:    mocks.NewMockEnvironment(ctrl),
		menu:   newFakeMenu(),
		out:    &fakeNotifier{},
		phases: &phaseLog{},
		a:      uuid.New(),
		b:      uuid.New(),
	}
	m, err := New(Deps{
		Config:      cfg,
		Logger:      logger,
		Scheduler:   f.sched,
		Bus:         tick.NewBus(f.sched, logger),
		Session:     session.New(),
		Roster:      player.NewManager(),
		Environment: f.env,
		Menu:        f.menu,
		Announcer:   notify.NewAnnouncer(f.out, "en"),
		Hooks:       f.phases,
		Rand:        rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.m = m
	f.m.Join(f.a, "alice")
	f.m.Join(f.b, "bob")
	return f
}

func (f *fixture) expectWorld() {
	f.env.EXPECT().Capture(gomock.Any()).Return(session.Arena{World: "world"}, nil).AnyTimes()
	f.env.EXPECT().Prepare(gomock.Any(), gomock.Any()).AnyTimes()
	f.env.EXPECT().Place(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	f.env.EXPECT().Restore(gomock.Any()).AnyTimes()
}

func (f *fixture) advanceUntil(t *testing.T, phase session.Phase) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if f.m.Phase() == phase {
			return
		}
		f.sched.Step()
	}
	t.Fatalf("phase %s never reached, stuck in %s", phase, f.m.Phase())
}

func TestFullMatchLifecycle(t *testing.T) {
	f := newFixture(t)
	f.expectWorld()

	if !f.m.Start(Console) {
		t.Fatalf("start refused")
	}
	if f.m.Phase() != session.PhaseCountdownBeforeVote {
		t.Fatalf("expected pre-vote countdown, got %s", f.m.Phase())
	}
	if !f.out.saw("Participants : alice, bob") || !f.out.saw("GroundZero starting in 2") {
		t.Fatalf("missing start announcements: %q", f.out.broadcasts)
	}

	f.advanceUntil(t, session.PhaseVotingMapSize)
	if f.menu.opened != 2 {
		t.Fatalf("expected a menu per participant, got %d", f.menu.opened)
	}
	f.m.CastVote(vote.KindMapSize, f.a, "200")
	f.m.CastVote(vote.KindMapSize, f.b, "200")

	f.advanceUntil(t, session.PhaseVotingIncome)
	if size, _ := f.m.Session().MapSize(); size != option.MapSize200 {
		t.Fatalf("map size %v, want 200", size)
	}
	if f.menu.highlighted[vote.KindMapSize] != "200" {
		t.Fatalf("winner not highlighted: %v", f.menu.highlighted)
	}
	if !f.out.saw("Map size selected : 200×200") {
		t.Fatalf("missing selection broadcast")
	}
	f.m.CastVote(vote.KindIncome, f.a, "x2")

	f.advanceUntil(t, session.PhaseVotingGameMode)
	f.advanceUntil(t, session.PhaseCountdownBeforeStart)
	if _, ok := f.m.Session().GameMode(); !ok {
		t.Fatalf("game mode not resolved")
	}

	f.advanceUntil(t, session.PhaseRunning)
	if f.m.RemainingTicks() != 20 {
		t.Fatalf("remaining ticks %d, want 20", f.m.RemainingTicks())
	}

	f.sched.Step()
	f.m.RecordHit(f.b, f.a, combat.KindMelee, "sword", 5)
	f.sched.Step()
	out, ok := f.m.HandleDeath(f.b)
	if !ok || !out.Credited {
		t.Fatalf("expected credited kill, got %+v", out)
	}

	f.advanceUntil(t, session.PhaseEnded)
	if got := f.m.Session().Plasma(f.a); got != 180 {
		t.Fatalf("plasma %v, want 9 payouts of 20", got)
	}
	if len(f.phases.ended) != 2 || f.phases.ended[0].ID != f.a {
		t.Fatalf("unexpected standings %+v", f.phases.ended)
	}
	if !f.out.saw("GroundZero ended.") || !f.out.saw("#1 alice") {
		t.Fatalf("missing results: %q", f.out.broadcasts)
	}

	f.advanceUntil(t, session.PhaseIdle)
	if f.m.Session().ParticipantCount() != 0 || len(f.m.Session().Spectators()) != 2 {
		t.Fatalf("players were not rebucketed as spectators")
	}

	want := []session.Phase{
		session.PhaseCountdownBeforeVote,
		session.PhaseVotingMapSize,
		session.PhaseVotingIncome,
		session.PhaseVotingGameMode,
		session.PhaseCountdownBeforeStart,
		session.PhaseRunning,
		session.PhaseEnded,
		session.PhaseIdle,
	}
	if len(f.phases.phases) != len(want) {
		t.Fatalf("phases %v, want %v", f.phases.phases, want)
	}
	for i := range want {
		if f.phases.phases[i] != want[i] {
			t.Fatalf("phases %v, want %v", f.phases.phases, want)
		}
	}
}

func TestStartFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.env.EXPECT().Capture(gomock.Any()).Return(session.Arena{}, host.ErrMixedWorlds)

	if f.m.Start(f.a) {
		t.Fatalf("start should fail")
	}
	if f.m.Phase() != session.PhaseIdle {
		t.Fatalf("phase %s after failed start", f.m.Phase())
	}
	if f.m.Session().ParticipantCount() != 0 || len(f.m.Session().Spectators()) != 2 {
		t.Fatalf("spectators not restored")
	}
	if !f.out.saw("GroundZero start failed: players are in different worlds.") {
		t.Fatalf("missing failure broadcast: %q", f.out.broadcasts)
	}
}

func TestStartWithoutPlayers(t *testing.T) {
	f := newFixture(t)
	f.m.Leave(f.a)
	f.m.Leave(f.b)

	if f.m.Start(Console) {
		t.Fatalf("start with nobody online should fail")
	}
	if !f.out.saw("no participants") {
		t.Fatalf("requester not told why: %q", f.out.messages)
	}
}

func TestStartIsRejectedWhileBusy(t *testing.T) {
	f := newFixture(t)
	f.expectWorld()
	f.m.Start(Console)

	if f.m.Start(f.a) || !f.out.saw("The game is already starting.") {
		t.Fatalf("second start during countdown was accepted")
	}
	f.advanceUntil(t, session.PhaseRunning)
	if f.m.Start(f.a) || !f.out.saw("The game is already running.") {
		t.Fatalf("start during running was accepted")
	}
}

func TestParticipantLeavingTerminatesFormingMatch(t *testing.T) {
	f := newFixture(t)
	f.expectWorld()
	f.m.Start(Console)
	f.advanceUntil(t, session.PhaseVotingIncome)

	f.m.Leave(f.b)
	if f.m.Phase() != session.PhaseIdle {
		t.Fatalf("phase %s after participant left", f.m.Phase())
	}
	if !f.out.saw("Player bob has left. Terminating GroundZero.") {
		t.Fatalf("missing termination broadcast")
	}
	if f.sched.Pending() != 0 {
		t.Fatalf("%d tasks survived the teardown", f.sched.Pending())
	}
	spectators := f.m.Session().Spectators()
	if len(spectators) != 1 || spectators[0] != f.a {
		t.Fatalf("unexpected spectators %v", spectators)
	}
}

func TestParticipantLeavingRunningMatchKeepsScore(t *testing.T) {
	f := newFixture(t)
	f.expectWorld()
	f.m.Start(Console)
	f.advanceUntil(t, session.PhaseRunning)

	f.m.Leave(f.b)
	if f.m.Phase() != session.PhaseRunning {
		t.Fatalf("running match stopped when a participant left")
	}
	if _, ok := f.m.ScoreOf(f.b); !ok {
		t.Fatalf("score entry dropped for disconnected participant")
	}

	late := uuid.New()
	f.m.Join(late, "carol")
	if !f.m.Session().IsSpectator(late) {
		t.Fatalf("late joiner should spectate")
	}
	f.m.Join(f.b, "bob")
	if !f.m.Session().IsParticipant(f.b) {
		t.Fatalf("rejoining participant lost its slot")
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	f.expectWorld()

	if f.m.Cancel(f.a) || !f.out.saw("There is no game starting.") {
		t.Fatalf("cancel from idle accepted")
	}

	f.m.Start(Console)
	f.advanceUntil(t, session.PhaseVotingMapSize)
	if !f.m.Cancel(f.a) {
		t.Fatalf("cancel during voting refused")
	}
	if f.m.Phase() != session.PhaseIdle || !f.out.saw("GroundZero cancelled by alice") {
		t.Fatalf("cancel did not reset: %s", f.m.Phase())
	}
	if f.menu.closed == 0 {
		t.Fatalf("menus left open")
	}

	f.m.Start(Console)
	f.advanceUntil(t, session.PhaseRunning)
	if f.m.Cancel(f.a) || f.m.Phase() != session.PhaseRunning {
		t.Fatalf("running match was cancelled")
	}
}

func TestVoteGating(t *testing.T) {
	f := newFixture(t)
	f.expectWorld()

	if f.m.VoteMapSize(f.a, option.MapSize50) {
		t.Fatalf("vote accepted while idle")
	}

	f.m.Start(Console)
	f.advanceUntil(t, session.PhaseVotingMapSize)

	stranger := uuid.New()
	f.m.Join(stranger, "carol")
	if f.m.VoteMapSize(stranger, option.MapSize50) {
		t.Fatalf("spectator vote accepted")
	}
	if f.m.VoteIncome(f.a, option.IncomeDouble) {
		t.Fatalf("vote for a closed round accepted")
	}
	if f.m.CastVote(vote.KindMapSize, f.a, "75") || !f.out.saw("unknown") {
		t.Fatalf("bad key accepted")
	}

	f.m.VoteMapSize(f.a, option.MapSize50)
	f.m.VoteMapSize(f.a, option.MapSize400)
	if f.m.mapVote.Votes(option.MapSize50) != 0 || f.m.mapVote.Votes(option.MapSize400) != 1 {
		t.Fatalf("revote did not replace the earlier ballot")
	}
	if f.menu.updates != 2 {
		t.Fatalf("menu updates %d, want 2", f.menu.updates)
	}

	f.advanceUntil(t, session.PhaseVotingIncome)
	if keys := f.menu.retained[vote.KindMapSize]; len(keys) != 1 || keys[0] != "400" {
		t.Fatalf("menu should keep only the leader, got %v", keys)
	}
}

func TestEndGameAndReset(t *testing.T) {
	f := newFixture(t)
	f.expectWorld()

	if f.m.EndGame(f.a) || !f.out.saw("The game is not running.") {
		t.Fatalf("end accepted while idle")
	}

	f.m.Start(Console)
	f.advanceUntil(t, session.PhaseRunning)
	if !f.m.EndGame(f.a) || f.m.Phase() != session.PhaseEnded {
		t.Fatalf("end refused")
	}
	if _, ok := f.m.Session().Arena(); ok {
		t.Fatalf("arena kept after the match ended")
	}

	f.m.ForceResetToIdle(f.a)
	if f.m.Phase() != session.PhaseIdle || !f.out.saw("GroundZero reset by alice") {
		t.Fatalf("reset failed")
	}
	if f.sched.Pending() != 0 {
		t.Fatalf("results timer survived reset")
	}
}

func TestShutdownSkipsResultsDelay(t *testing.T) {
	f := newFixture(t)
	f.expectWorld()
	f.m.Start(Console)
	f.advanceUntil(t, session.PhaseRunning)

	f.m.Shutdown()
	if f.m.Phase() != session.PhaseIdle {
		t.Fatalf("phase %s after shutdown", f.m.Phase())
	}
	if len(f.phases.ended) != 2 {
		t.Fatalf("results not published on shutdown")
	}
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	f.expectWorld()
	f.m.Start(Console)
	f.advanceUntil(t, session.PhaseRunning)

	lines := f.m.Status()
	if lines[0] != "Phase : running" || lines[1] != "Time left : 00:10" {
		t.Fatalf("unexpected header %q", lines[:2])
	}
	var players int
	for _, l := range lines {
		if strings.HasPrefix(l, "#") {
			players++
		}
	}
	if players != 2 {
		t.Fatalf("expected two standings lines, got %q", lines)
	}
}

func TestFormatClock(t *testing.T) {
	for ticks, want := range map[int]string{0: "00:00", 19: "00:00", 20: "00:01", 20 * 125: "02:05", -5: "00:00"} {
		if got := formatClock(ticks, 20); got != want {
			t.Fatalf("formatClock(%d) = %q, want %q", ticks, got, want)
		}
	}
}
