package match

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phasestarra7/GroundZero/internal/callbacks"
	"github.com/phasestarra7/GroundZero/internal/combat"
	"github.com/phasestarra7/GroundZero/internal/economy"
	"github.com/phasestarra7/GroundZero/internal/host"
	"github.com/phasestarra7/GroundZero/internal/idle"
	"github.com/phasestarra7/GroundZero/internal/notify"
	"github.com/phasestarra7/GroundZero/internal/option"
	"github.com/phasestarra7/GroundZero/internal/player"
	"github.com/phasestarra7/GroundZero/internal/session"
	"github.com/phasestarra7/GroundZero/internal/tick"
	"github.com/phasestarra7/GroundZero/internal/vote"
	"github.com/phasestarra7/GroundZero/pkg/config"
)

// Console identifies requests that do not come from a player.
var Console = uuid.Nil

type Deps struct {
	Config      *config.Config
	Logger      *slog.Logger
	Scheduler   *tick.Scheduler
	Bus         *tick.Bus
	Session     *session.Session
	Roster      *player.Manager
	Environment host.Environment
	Menu        host.Menu
	Announcer   *notify.Announcer
	Hooks       callbacks.Callbacks
	Rand        *rand.Rand
}

// Manager sequences the match lifecycle. Every method must be called from
// the scheduler goroutine.
type Manager struct {
	cfg      *config.Config
	logger   *slog.Logger
	sched    *tick.Scheduler
	bus      *tick.Bus
	sess     *session.Session
	roster   *player.Manager
	env      host.Environment
	menu     host.Menu
	announce *notify.Announcer
	hooks    callbacks.Callbacks
	rng      *rand.Rand

	economy  *economy.Service
	idle     *idle.Service
	tracker  *combat.Tracker
	resolver *combat.Resolver

	mapVote    *vote.Round[option.MapSize]
	incomeVote *vote.Round[option.Income]
	modeVote   *vote.Round[option.GameMode]

	shuttingDown bool
}

func New(d Deps) (*Manager, error) {
	switch {
	case d.Config == nil:
		return nil, errors.New("match: config is required")
	case d.Scheduler == nil || d.Bus == nil:
		return nil, errors.New("match: scheduler and bus are required")
	case d.Session == nil || d.Roster == nil:
		return nil, errors.New("match: session and roster are required")
	case d.Environment == nil || d.Menu == nil || d.Announcer == nil:
		return nil, errors.New("match: environment, menu and announcer are required")
	}

	stealBase, err := config.ParseStealBase(d.Config.Combat.StealBase)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}

	m := &Manager{
		cfg:        d.Config,
		logger:     d.Logger,
		sched:      d.Scheduler,
		bus:        d.Bus,
		sess:       d.Session,
		roster:     d.Roster,
		env:        d.Environment,
		menu:       d.Menu,
		announce:   d.Announcer,
		hooks:      d.Hooks,
		rng:        d.Rand,
		mapVote:    vote.NewRound[option.MapSize](vote.KindMapSize),
		incomeVote: vote.NewRound[option.Income](vote.KindIncome),
		modeVote:   vote.NewRound[option.GameMode](vote.KindGameMode),
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.hooks == nil {
		m.hooks = &callbacks.DefaultCallbacks{}
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	cfg := d.Config
	m.economy = economy.New(m.sess, cfg.Server.TickRate, m.expire)
	m.idle = idle.New(m.sess, idle.Config{
		Grace:          cfg.CombatWindowTicks(),
		WarnAt:         cfg.Ticks(cfg.Idle.WarnSeconds),
		FirstPenaltyAt: cfg.Ticks(cfg.Idle.FirstPenaltySeconds),
		Interval:       cfg.Ticks(cfg.Idle.PenaltyIntervalSeconds),
		Percent:        cfg.Idle.PenaltyPercent,
		MaxStacks:      cfg.Idle.MaxStacks,
	}, m.announce, m.hooks)
	m.tracker = combat.NewTracker(m.sess, m.bus, cfg.CombatWindowTicks(), m.idle)
	m.resolver = combat.NewResolver(m.sess, m.tracker, m.bus, combat.Rules{
		KillSteal:             cfg.Combat.KillStealPercent,
		DeathPenalty:          cfg.Combat.DeathPenaltyPercent,
		NonPlayerDeathPenalty: cfg.Combat.NonPlayerDeathPenaltyPercent,
		StealBase:             stealBase,
	}, m.roster, m.announce, m.hooks)

	return m, nil
}

func (m *Manager) Phase() session.Phase {
	return m.sess.Phase()
}

func (m *Manager) Participants() []session.PlayerID {
	return m.sess.Participants()
}

func (m *Manager) ScoreOf(id session.PlayerID) (float64, bool) {
	return m.sess.Score(id)
}

func (m *Manager) RemainingTicks() int {
	return m.sess.RemainingTicks()
}

func (m *Manager) Session() *session.Session {
	return m.sess
}

func (m *Manager) Roster() *player.Manager {
	return m.roster
}

func (m *Manager) nameOf(id session.PlayerID) string {
	if id == Console {
		return "Console"
	}
	return m.roster.Name(id)
}

func (m *Manager) names(ids []session.PlayerID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = m.nameOf(id)
	}
	return strings.Join(parts, ", ")
}

func (m *Manager) audience() []session.PlayerID {
	return m.roster.Online()
}

// broadcast reaches every online player, or only the requester when
// nobody is online.
func (m *Manager) broadcast(requester session.PlayerID, cue host.Cue, format string, args ...any) {
	if aud := m.audience(); len(aud) > 0 {
		m.announce.Broadcast(aud, cue, format, args...)
		return
	}
	m.announce.Tell(requester, format, args...)
}

func (m *Manager) setPhase(to session.Phase) {
	from := m.sess.Phase()
	if from == to {
		return
	}
	m.sess.SetPhase(to)
	m.phaseChanged(from, to)
}

func (m *Manager) phaseChanged(from, to session.Phase) {
	m.logger.Info("phase changed", "from", from, "to", to)
	m.hooks.OnPhaseChange(from, to)
}

func (m *Manager) base() session.Base {
	return session.Base{
		Plasma: m.cfg.Match.BasePlasma,
		Income: m.cfg.Match.BaseIncomePerSecond,
		Score:  m.cfg.Match.BaseScore,
	}
}

// Join registers a connected player. Anyone who is not already playing in
// the current match watches as spectator.
func (m *Manager) Join(id session.PlayerID, name string) {
	m.roster.Join(id, name)
	m.sess.RegisterJoin(id)
	m.logger.Info("player joined", "player", name, "id", id, "participant", m.sess.IsParticipant(id))
}

// Leave handles a disconnect. A participant leaving before the match runs
// terminates the attempt; during a running match its scores are kept.
func (m *Manager) Leave(id session.PlayerID) {
	wasParticipant := m.sess.IsParticipant(id)
	if !m.roster.Leave(id) {
		return
	}
	phase := m.sess.Phase()
	m.logger.Info("player left", "player", m.nameOf(id), "phase", phase)

	switch {
	case phase.Forming() && wasParticipant:
		m.broadcast(Console, host.CueError, "Player %s has left. Terminating GroundZero.", m.nameOf(id))
		m.teardown()
	case phase.Live() && wasParticipant:
	default:
		m.sess.Remove(id)
	}
}

// Start begins a match attempt from Idle with every online spectator as
// participant.
func (m *Manager) Start(requester session.PlayerID) bool {
	switch phase := m.sess.Phase(); {
	case phase.Forming():
		m.announce.Error(requester, "The game is already starting.")
		return false
	case phase.Live():
		m.announce.Error(requester, "The game is already running.")
		return false
	}

	previous := m.sess.Spectators()
	m.sess.SnapshotParticipants(m.base())
	participants := m.sess.Participants()

	arena, err := m.capture(participants)
	if err != nil {
		m.sess.ResetToSpectators(previous)
		m.logger.Warn("match start aborted", "requester", m.nameOf(requester), "error", err)
		m.broadcast(requester, host.CueError, "GroundZero start failed: %v.", err)
		return false
	}
	m.sess.SetArena(arena)

	m.logger.Info("match starting", "requester", m.nameOf(requester), "participants", len(participants), "world", arena.World)
	m.announce.Broadcast(m.audience(), host.CueBell, "Participants : %s", m.names(participants))
	m.enterCountdownBeforeVote()
	return true
}

func (m *Manager) capture(ids []session.PlayerID) (session.Arena, error) {
	if len(ids) == 0 {
		return session.Arena{}, host.ErrNoParticipants
	}
	arena, err := m.env.Capture(ids)
	if err != nil {
		return session.Arena{}, err
	}
	return arena, nil
}

func (m *Manager) countdownStep(n int) {
	m.announce.Broadcast(m.audience(), host.CueClick, "GroundZero starting in %d", n)
}

func (m *Manager) enterCountdownBeforeVote() {
	m.setPhase(session.PhaseCountdownBeforeVote)
	newCountdown(m.sched, m.cfg.Countdown.PreVoteSeconds, m.cfg.Ticks(1), m.countdownStep, m.enterMapSizeVote).start()
}

func (m *Manager) enterMapSizeVote() {
	runRound(m, round[option.MapSize]{
		phase:   session.PhaseVotingMapSize,
		votes:   m.mapVote,
		options: option.MapSizes(),
		apply:   m.sess.SetMapSize,
		next:    m.enterIncomeVote,
	})
}

func (m *Manager) enterIncomeVote() {
	runRound(m, round[option.Income]{
		phase:   session.PhaseVotingIncome,
		votes:   m.incomeVote,
		options: option.Incomes(),
		apply:   m.applyIncome,
		next:    m.enterGameModeVote,
	})
}

func (m *Manager) applyIncome(i option.Income) {
	m.sess.SetIncome(i)
	m.sess.ApplyIncomeRate(m.cfg.Match.BaseIncomePerSecond * i.Multiplier())
}

func (m *Manager) enterGameModeVote() {
	runRound(m, round[option.GameMode]{
		phase:   session.PhaseVotingGameMode,
		votes:   m.modeVote,
		options: option.GameModes(),
		apply:   m.sess.SetGameMode,
		next:    m.enterCountdownBeforeStart,
	})
}

func (m *Manager) enterCountdownBeforeStart() {
	m.setPhase(session.PhaseCountdownBeforeStart)
	newCountdown(m.sched, m.cfg.Countdown.PreStartSeconds, m.cfg.Ticks(1), m.countdownStep, m.enterRunning).start()
}

func (m *Manager) enterRunning() {
	mapSize, ok := m.sess.MapSize()
	if !ok {
		mapSize = option.MapSize100
		m.sess.SetMapSize(mapSize)
	}
	income, ok := m.sess.Income()
	if !ok {
		income = option.IncomeNormal
		m.applyIncome(income)
	}
	mode, ok := m.sess.GameMode()
	if !ok {
		mode = option.GameModeStandard
		m.sess.SetGameMode(mode)
	}
	arena, _ := m.sess.Arena()
	participants := m.sess.Participants()

	m.sess.SetRemainingTicks(m.cfg.MatchDurationTicks())
	m.tracker.Reset()
	m.idle.Reset()

	m.env.Prepare(arena, mapSize.Size())
	for _, id := range participants {
		m.env.Place(id, arena, mapSize.Size())
	}

	m.setPhase(session.PhaseRunning)
	m.bus.Register(m.economy)
	m.bus.Register(m.idle)
	m.bus.Start()

	aud := m.audience()
	m.announce.Broadcast(aud, host.CueLevelUp, "GroundZero started!")
	m.announce.Broadcast(aud, host.CueNone, "Map size : %s", mapSize.Label())
	m.announce.Broadcast(aud, host.CueNone, "Income : %s", income.Label())
	m.announce.Broadcast(aud, host.CueNone, "Game mode : %s", mode.Label())
	m.hooks.OnMatchStart(participants)
}

// Cancel aborts a match that has not started running yet.
func (m *Manager) Cancel(requester session.PlayerID) bool {
	switch phase := m.sess.Phase(); {
	case phase == session.PhaseIdle:
		m.announce.Error(requester, "There is no game starting.")
		return false
	case phase.Live():
		m.announce.Error(requester, "The game is already running.")
		return false
	}

	m.logger.Info("match cancelled", "requester", m.nameOf(requester))
	m.broadcast(requester, host.CueError, "GroundZero cancelled by %s", m.nameOf(requester))
	m.teardown()
	return true
}

// EndGame finishes a running match early.
func (m *Manager) EndGame(requester session.PlayerID) bool {
	if m.sess.Phase() != session.PhaseRunning {
		m.announce.Error(requester, "The game is not running.")
		return false
	}
	m.logger.Info("match ended early", "requester", m.nameOf(requester))
	m.finish()
	return true
}

// ForceResetToIdle tears down whatever is in progress.
func (m *Manager) ForceResetToIdle(requester session.PlayerID) {
	if m.sess.Phase() != session.PhaseIdle {
		m.broadcast(requester, host.CueError, "GroundZero reset by %s", m.nameOf(requester))
	}
	m.logger.Info("forced reset", "requester", m.nameOf(requester), "phase", m.sess.Phase())
	m.teardown()
}

// Shutdown ends any match immediately, skipping the results delay.
func (m *Manager) Shutdown() {
	m.shuttingDown = true
	switch m.sess.Phase() {
	case session.PhaseIdle:
	case session.PhaseRunning:
		m.finish()
	default:
		m.teardown()
	}
}

func (m *Manager) expire() {
	m.logger.Info("match time is up")
	m.finish()
}

func (m *Manager) finish() {
	m.bus.Stop()
	m.sched.CancelAll()
	if arena, ok := m.sess.Arena(); ok {
		m.env.Restore(arena)
		m.sess.ClearArena()
	}
	m.menu.CloseAll()

	standings := m.sess.Standings()
	aud := m.audience()
	m.announce.Broadcast(aud, host.CueLevelUp, "GroundZero ended.")
	for i, s := range standings {
		m.announce.Broadcast(aud, host.CueNone, "#%d %s  %.2f", i+1, m.nameOf(s.ID), s.Score)
	}

	m.setPhase(session.PhaseEnded)
	m.hooks.OnMatchEnd(standings)

	if m.shuttingDown {
		m.teardown()
		return
	}
	m.sched.After(m.cfg.Ticks(m.cfg.Match.ResetDelaySeconds), m.teardown)
}

// teardown stops tick subscribers first so no tick observes a half-reset
// session, then restores the world and rebuckets online players.
func (m *Manager) teardown() {
	m.bus.Stop()
	m.sched.CancelAll()

	if arena, ok := m.sess.Arena(); ok {
		m.env.Restore(arena)
	}
	m.menu.CloseAll()
	m.tracker.Reset()
	m.idle.Reset()

	from := m.sess.Phase()
	m.roster.Prune()
	m.sess.ResetToSpectators(m.roster.Online())
	if from != session.PhaseIdle {
		m.phaseChanged(from, session.PhaseIdle)
	}
}

// RecordHit attributes damage to a participant. attacker is uuid.Nil for
// environmental damage.
func (m *Manager) RecordHit(victim, attacker session.PlayerID, kind combat.Kind, weapon string, amount float64) bool {
	return m.tracker.RecordHit(victim, attacker, kind, weapon, amount)
}

func (m *Manager) HandleDeath(victim session.PlayerID) (combat.Outcome, bool) {
	return m.resolver.HandleDeath(victim)
}

// CastVote parses key for the given round and records the ballot.
func (m *Manager) CastVote(kind vote.Kind, voter session.PlayerID, key string) bool {
	var err error
	switch kind {
	case vote.KindMapSize:
		var opt option.MapSize
		if opt, err = option.ParseMapSize(key); err == nil {
			return m.VoteMapSize(voter, opt)
		}
	case vote.KindIncome:
		var opt option.Income
		if opt, err = option.ParseIncome(key); err == nil {
			return m.VoteIncome(voter, opt)
		}
	case vote.KindGameMode:
		var opt option.GameMode
		if opt, err = option.ParseGameMode(key); err == nil {
			return m.VoteGameMode(voter, opt)
		}
	default:
		err = fmt.Errorf("unknown vote %v", kind)
	}
	m.announce.Error(voter, "%v", err)
	return false
}

func (m *Manager) VoteMapSize(voter session.PlayerID, opt option.MapSize) bool {
	return castVote(m, session.PhaseVotingMapSize, m.mapVote, voter, opt)
}

func (m *Manager) VoteIncome(voter session.PlayerID, opt option.Income) bool {
	return castVote(m, session.PhaseVotingIncome, m.incomeVote, voter, opt)
}

func (m *Manager) VoteGameMode(voter session.PlayerID, opt option.GameMode) bool {
	return castVote(m, session.PhaseVotingGameMode, m.modeVote, voter, opt)
}
